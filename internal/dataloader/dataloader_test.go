package dataloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/UkralStul/minifeed/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	calls atomic.Int32
	users map[string]*domain.User
}

func (f *fakeUsers) GetAll(ctx context.Context) (map[string]*domain.User, error) {
	f.calls.Add(1)
	return f.users, nil
}

func TestLoaders_BatchesPrimedKeys(t *testing.T) {
	users := &fakeUsers{users: map[string]*domain.User{
		"alice": {Username: "alice", DisplayName: "Alice"},
	}}
	loaders := NewLoaders(users)
	ctx := context.Background()

	loaders.Prime(ctx, "alice", "Bob", "alice")

	alice, err := loaders.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.DisplayName)

	bob, err := loaders.User(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{Username: "Bob", DisplayName: "Bob"}, bob)

	assert.Equal(t, int32(1), users.calls.Load())
}

func TestLoaders_EmptyDisplayNameFallsBackToUsername(t *testing.T) {
	stored := &domain.User{Username: "carol", Bio: "hi"}
	loaders := NewLoaders(&fakeUsers{users: map[string]*domain.User{"carol": stored}})

	carol, err := loaders.User(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{Username: "carol", DisplayName: "carol", Bio: "hi"}, carol)
	// Хранимая запись не меняется
	assert.Empty(t, stored.DisplayName)
}

func TestMiddleware_InjectsLoaders(t *testing.T) {
	var got *Loaders
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	})

	rec := httptest.NewRecorder()
	Middleware(&fakeUsers{}, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotNil(t, got)
	assert.Nil(t, For(context.Background()))
}
