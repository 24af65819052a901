// internal/storage/inmemory/store_test.go

package inmemory

import (
	"context"
	"testing"

	"github.com/UkralStul/minifeed/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "posts", []byte(`[]`)))

	v, err := store.Get(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
}

func TestStore_GetMissing(t *testing.T) {
	store := New()

	_, err := store.Get(context.Background(), "non-existent-key")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Overwrite(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("first")))
	require.NoError(t, store.Put(ctx, "k", []byte("second")))

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(v))
	assert.Len(t, store.Keys(), 1)
}

func TestStore_Delete(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))
	// Повторное удаление не ошибка
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ValuesAreCopied(t *testing.T) {
	store := New()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", in))
	in[0] = 'x'

	out, err := store.Get(ctx, "k")
	require.NoError(t, err)
	out[1] = 'y'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
