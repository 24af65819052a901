package repository

import (
	"context"
	"sync"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
)

// Comments - карта postId -> комментарии в порядке добавления.
type Comments struct {
	store *storage.Store
	mu    sync.Mutex
}

func (r *Comments) GetAll(ctx context.Context) (map[string][]*domain.Comment, error) {
	return storage.Load(ctx, r.store, KeyComments, func() map[string][]*domain.Comment {
		return map[string][]*domain.Comment{}
	})
}

func (r *Comments) Save(ctx context.Context, comments map[string][]*domain.Comment) error {
	return r.store.Set(ctx, KeyComments, comments)
}

// Update выполняет read-modify-write карты комментариев под блокировкой.
func (r *Comments) Update(ctx context.Context, fn func(comments map[string][]*domain.Comment) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(comments); err != nil {
		return err
	}
	return r.Save(ctx, comments)
}
