package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если по ключу нет значения.
var ErrNotFound = errors.New("key not found")

// Backend определяет контракт для хранилищ: плоское пространство ключей с
// сырыми значениями.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Closer реализуют хранилища, держащие соединение.
type Closer interface {
	Close(ctx context.Context) error
}
