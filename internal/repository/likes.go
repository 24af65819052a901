package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
)

// Likes - карта "user:postId" -> bool.
type Likes struct {
	store *storage.Store
	mu    sync.Mutex
}

// GetAll читает лайки. Записи, значение которых не булево, отбрасываются.
func (r *Likes) GetAll(ctx context.Context) (domain.Likes, error) {
	var raw map[string]json.RawMessage
	found, err := r.store.Get(ctx, KeyLikes, &raw)
	if errors.Is(err, domain.ErrCorruptStorage) {
		r.store.Recover(KeyLikes, err)
		return domain.Likes{}, nil
	}
	if err != nil {
		return nil, err
	}

	likes := make(domain.Likes, len(raw))
	if !found {
		return likes, nil
	}
	for k, v := range raw {
		var liked bool
		if err := json.Unmarshal(v, &liked); err != nil {
			continue
		}
		likes[k] = liked
	}
	return likes, nil
}

func (r *Likes) Save(ctx context.Context, likes domain.Likes) error {
	return r.store.Set(ctx, KeyLikes, likes)
}

// Update выполняет read-modify-write карты лайков под блокировкой.
func (r *Likes) Update(ctx context.Context, fn func(likes domain.Likes) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	likes, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(likes); err != nil {
		return err
	}
	return r.Save(ctx, likes)
}
