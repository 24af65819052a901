package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UkralStul/minifeed/internal/storage"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Store реализует storage.Backend поверх JetStream KeyValue.
type Store struct {
	nc *libnats.Conn
	kv jetstream.KeyValue
}

// New подключается к NATS и создает бакет, если его еще нет.
func New(ctx context.Context, url, bucket string) (*Store, error) {
	nc, err := libnats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create key-value bucket %s: %w", bucket, err)
	}

	return &Store{nc: nc, kv: kv}, nil
}

// В ключах JetStream недопустимо двоеточие, поэтому заменяем его точкой.
func subject(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, subject(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value(), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, subject(key), value); err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, subject(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.nc.Drain()
}
