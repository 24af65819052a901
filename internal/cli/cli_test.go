package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/minifeed/internal/app"
	"github.com/UkralStul/minifeed/internal/config"
	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"
	"github.com/UkralStul/minifeed/internal/util"
)

// useBackend подменяет открытие хранилища: каждая команда получает
// новое приложение поверх общего in-memory хранилища, как отдельный запуск.
func useBackend(t *testing.T) *inmemory.Store {
	t.Helper()
	color.NoColor = true

	backend := inmemory.New()
	clock := util.NewStubClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	prev := openApp
	openApp = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
		return app.Build(backend, "test", clock, logger), nil
	}
	t.Cleanup(func() { openApp = prev })
	return backend
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, c := range RootCmd.Commands() {
		resetFlags(c)
	}

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestFeed_ShowsSeededPosts(t *testing.T) {
	useBackend(t)

	out, err := run(t, "feed")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to Mini Facebook!")
	assert.Contains(t, out, "Share updates, like, comment.")
	assert.Less(t, strings.Index(out, "Share updates"), strings.Index(out, "Welcome"))
}

func TestLike_RequiresLogin(t *testing.T) {
	useBackend(t)

	_, err := run(t, "like", "1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSessionPersistsAcrossCommands(t *testing.T) {
	useBackend(t)

	_, err := run(t, "register", "alice", "pw")
	require.NoError(t, err)

	out, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice (@alice)")

	out, err = run(t, "like", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Liked")

	out, err = run(t, "like", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Like removed")

	_, err = run(t, "comment", "1", "great", "post")
	require.NoError(t, err)

	out, err = run(t, "feed")
	require.NoError(t, err)
	assert.Contains(t, out, "alice: great post")

	_, err = run(t, "logout")
	require.NoError(t, err)

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestComment_Blank(t *testing.T) {
	useBackend(t)

	_, err := run(t, "register", "bob", "pw")
	require.NoError(t, err)

	_, err = run(t, "comment", "1", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestLike_UnknownIndex(t *testing.T) {
	useBackend(t)

	_, err := run(t, "register", "bob", "pw")
	require.NoError(t, err)

	_, err = run(t, "like", "7")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostAndProfile(t *testing.T) {
	useBackend(t)

	_, err := run(t, "register", "carol", "pw")
	require.NoError(t, err)

	out, err := run(t, "post", "hello", "world")
	require.NoError(t, err)
	assert.Contains(t, out, "Posted")

	out, err = run(t, "feed")
	require.NoError(t, err)
	assert.Contains(t, out, "hello world")

	out, err = run(t, "profile", "--bio", "just here")
	require.NoError(t, err)
	assert.Contains(t, out, "carol (@carol)\njust here")

	out, err = run(t, "profile", "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob (@Bob)")
}
