package repository

import (
	"context"
	"sync"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
)

// Users - карта username -> User.
type Users struct {
	store *storage.Store
	mu    sync.Mutex
}

func (r *Users) GetAll(ctx context.Context) (map[string]*domain.User, error) {
	users, err := storage.Load(ctx, r.store, KeyUsers, func() map[string]*domain.User {
		return map[string]*domain.User{}
	})
	if err != nil {
		return nil, err
	}
	for name, u := range users {
		if u == nil {
			delete(users, name)
			continue
		}
		u.Username = name
	}
	return users, nil
}

func (r *Users) Save(ctx context.Context, users map[string]*domain.User) error {
	return r.store.Set(ctx, KeyUsers, users)
}

// Update выполняет read-modify-write карты пользователей под блокировкой.
// Если fn вернула ошибку, ничего не сохраняется.
func (r *Users) Update(ctx context.Context, fn func(users map[string]*domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(users); err != nil {
		return err
	}
	return r.Save(ctx, users)
}
