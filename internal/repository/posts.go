package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/util"
)

// Posts - последовательность постов в порядке вставки.
type Posts struct {
	store *storage.Store
	clock util.Clock
	mu    sync.Mutex
}

// defaultPosts - посты, которыми заполняется пустое хранилище.
func (r *Posts) defaultPosts() []*domain.Post {
	now := r.clock.NowUtc()
	return []*domain.Post{
		{
			ID:        domain.NewPostID(),
			Author:    "Alice",
			Text:      "Welcome to Mini Facebook!",
			CreatedAt: now.Add(-6 * time.Hour),
		},
		{
			ID:        domain.NewPostID(),
			Author:    "Bob",
			Text:      "Share updates, like, comment.",
			CreatedAt: now.Add(-30 * time.Minute),
		},
	}
}

// GetAll возвращает посты. При первом обращении к пустому хранилищу
// сохраняет два примера, чтобы их ID не менялись между вызовами.
// Испорченное значение заменяется примерами без перезаписи.
func (r *Posts) GetAll(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	found, err := r.store.Get(ctx, KeyPosts, &posts)
	switch {
	case errors.Is(err, domain.ErrCorruptStorage):
		r.store.Recover(KeyPosts, err)
		return r.defaultPosts(), nil
	case err != nil:
		return nil, err
	case !found:
		return r.seed(ctx)
	}

	out := posts[:0]
	for _, p := range posts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Posts) seed(ctx context.Context) ([]*domain.Post, error) {
	posts := r.defaultPosts()
	if err := r.Save(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Posts) Save(ctx context.Context, posts []*domain.Post) error {
	return r.store.Set(ctx, KeyPosts, posts)
}

// Update выполняет read-modify-write списка постов под блокировкой.
func (r *Posts) Update(ctx context.Context, fn func(posts []*domain.Post) ([]*domain.Post, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	posts, err = fn(posts)
	if err != nil {
		return err
	}
	return r.Save(ctx, posts)
}
