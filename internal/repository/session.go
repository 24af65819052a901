package repository

import (
	"context"
	"strings"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
)

// Session хранит имя текущего пользователя строкой, без JSON.
type Session struct {
	store *storage.Store
}

func (r *Session) GetCurrent(ctx context.Context) (string, error) {
	v, err := r.store.GetString(ctx, KeySession)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// SetCurrent запоминает пользователя. Пустое имя удаляет ключ.
func (r *Session) SetCurrent(ctx context.Context, username string) error {
	if username == "" {
		return r.store.Delete(ctx, KeySession)
	}
	return r.store.SetString(ctx, KeySession, username)
}

// Current возвращает текущую сессию как значение для движка ленты.
func (r *Session) Current(ctx context.Context) (domain.Session, error) {
	name, err := r.GetCurrent(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Username: name}, nil
}
