package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/minifeed/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Store реализует storage.Backend поверх Redis.
type Store struct {
	rdb *redis.Client
}

// New подключается к Redis и проверяет соединение.
func New(ctx context.Context, addr, password string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	return val, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.rdb.Close()
}
