package app

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/UkralStul/minifeed/internal/config"
	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"
	"github.com/UkralStul/minifeed/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend(context.Background(), &config.Config{Storage: config.StorageInMemory})
	require.NoError(t, err)
	assert.IsType(t, &inmemory.Store{}, backend)
}

func TestOpenBackend_Errors(t *testing.T) {
	_, err := OpenBackend(context.Background(), &config.Config{Storage: config.StoragePostgres})
	assert.Error(t, err)

	_, err = OpenBackend(context.Background(), &config.Config{Storage: "sqlite"})
	assert.Error(t, err)
}

func TestBuild_SharesBackendAcrossServices(t *testing.T) {
	ctx := context.Background()
	clock := util.NewStubClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	a := Build(inmemory.New(), "test", clock, slog.Default())

	_, err := a.Accounts.Register(ctx, "carol", "secret")
	require.NoError(t, err)

	resolver := a.Resolver()
	sess, err := resolver.Sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Username: "carol"}, sess)

	post, err := a.Feed.CreatePost(ctx, sess, "hello")
	require.NoError(t, err)

	items, err := a.Feed.ListFeed(ctx, sess)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, post.ID, items[0].ID)

	assert.NoError(t, a.Close(ctx))
}
