package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/metrics"
)

// Store - адаптер над Backend: JSON-сериализация и пространство имен ключей.
type Store struct {
	backend   Backend
	namespace string
	logger    *slog.Logger
}

// New создает адаптер. Пустой namespace оставляет ключи как есть.
func New(backend Backend, namespace string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, namespace: namespace, logger: logger}
}

func (s *Store) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Get читает значение ключа в dst. found=false, если значения нет или
// сохранен JSON null. Неразборчивые данные возвращаются как ErrCorruptStorage.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.backend.Get(ctx, s.key(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrCorruptStorage, key, err)
	}
	return true, nil
}

// Set сохраняет значение в виде JSON.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, s.key(key), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// GetString читает значение без JSON-декодирования.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	raw, err := s.backend.Get(ctx, s.key(key))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(raw), nil
}

// SetString сохраняет строку как есть.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	if err := s.backend.Put(ctx, s.key(key), []byte(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа ошибкой не считается.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.backend.Delete(ctx, s.key(key))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Load читает ключ или возвращает def(), если значения нет или оно испорчено.
// Ошибки самого хранилища (сеть, БД) возвращаются вызывающему.
func Load[T any](ctx context.Context, s *Store, key string, def func() T) (T, error) {
	var v T
	found, err := s.Get(ctx, key, &v)
	if errors.Is(err, domain.ErrCorruptStorage) {
		s.Recover(key, err)
		return def(), nil
	}
	if err != nil {
		var zero T
		return zero, err
	}
	if !found {
		return def(), nil
	}
	return v, nil
}

// Recover фиксирует подмену испорченного значения значением по умолчанию.
func (s *Store) Recover(key string, err error) {
	s.logger.Warn("stored value is corrupt, using default", "key", key, "error", err)
	metrics.StoreRecoveries.WithLabelValues(key).Inc()
}
