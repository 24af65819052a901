package storage_test

import (
	"context"
	"testing"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*storage.Store, *inmemory.Store) {
	t.Helper()
	backend := inmemory.New()
	return storage.New(backend, "test", nil), backend
}

func TestStore_SetAndGet(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "numbers", []int{1, 2, 3}))

	var got []int
	found, err := store.Get(ctx, "numbers", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{1, 2, 3}, got)

	// Ключ хранится с префиксом пространства имен
	raw, err := backend.Get(ctx, "test:numbers")
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", string(raw))
}

func TestStore_GetCorrupt(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "test:broken", []byte("{not json")))

	var got map[string]int
	found, err := store.Get(ctx, "broken", &got)
	assert.False(t, found)
	assert.ErrorIs(t, err, domain.ErrCorruptStorage)
}

func TestLoad_Fallbacks(t *testing.T) {
	def := func() map[string]int { return map[string]int{"default": 1} }

	tests := []struct {
		name   string
		stored *string
		want   map[string]int
	}{
		{name: "missing", stored: nil, want: def()},
		{name: "corrupt", stored: strPtr("[[["), want: def()},
		{name: "null", stored: strPtr("null"), want: def()},
		{name: "wrong shape", stored: strPtr(`["a"]`), want: def()},
		{name: "valid", stored: strPtr(`{"a":2}`), want: map[string]int{"a": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, backend := newTestStore(t)
			ctx := context.Background()
			if tt.stored != nil {
				require.NoError(t, backend.Put(ctx, "test:value", []byte(*tt.stored)))
			}

			got, err := storage.Load(ctx, store, "value", def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Strings(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	v, err := store.GetString(ctx, "session")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.SetString(ctx, "session", "alice"))
	raw, err := backend.Get(ctx, "test:session")
	require.NoError(t, err)
	assert.Equal(t, "alice", string(raw))

	require.NoError(t, store.Delete(ctx, "session"))
	require.NoError(t, store.Delete(ctx, "session"))
	v, err = store.GetString(ctx, "session")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func strPtr(s string) *string { return &s }
