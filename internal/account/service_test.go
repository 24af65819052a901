package account

import (
	"context"
	"testing"
	"time"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/repository"
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"
	"github.com/UkralStul/minifeed/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	store := storage.New(inmemory.New(), "", nil)
	repos := repository.New(store, util.NewStubClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	return NewService(repos, nil), repos
}

func currentUser(t *testing.T, repos *repository.Repositories) string {
	t.Helper()
	name, err := repos.Session.GetCurrent(context.Background())
	require.NoError(t, err)
	return name
}

func TestRegister_LogsIn(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " alice ", " secret ")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{Username: "alice", Password: "secret", DisplayName: "alice"}, user)
	assert.Equal(t, "alice", currentUser(t, repos))

	users, err := repos.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, users["alice"])
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "empty username", username: "  ", password: "pw", wantErr: domain.ErrEmptyInput},
		{name: "empty password", username: "alice", password: "", wantErr: domain.ErrEmptyInput},
		{name: "space in username", username: "al ice", password: "pw", wantErr: domain.ErrInvalidUsername},
		{name: "tab in username", username: "al\tice", password: "pw", wantErr: domain.ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repos := newTestService(t)

			_, err := svc.Register(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, currentUser(t, repos))
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "one")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice", "two")
	assert.ErrorIs(t, err, domain.ErrUserExists)

	// Пароль первой регистрации не перезаписан
	_, err = svc.Login(ctx, "alice", "one")
	assert.NoError(t, err)
}

func TestLoginLogout(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))
	assert.Empty(t, currentUser(t, repos))

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, currentUser(t, repos))

	user, err := svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", currentUser(t, repos))
}

func TestSaveProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	sess := domain.Session{Username: "alice"}

	user, err := svc.SaveProfile(ctx, sess, " Alice A. ", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", user.DisplayName)
	assert.Equal(t, "hello", user.Bio)
	assert.Equal(t, "secret", user.Password)

	// Пустое имя заменяется на username
	user, err = svc.SaveProfile(ctx, sess, "   ", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)
	assert.Empty(t, user.Bio)

	profile, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user, profile)
}

func TestSaveProfile_Unauthenticated(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SaveProfile(context.Background(), domain.Session{}, "x", "y")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestProfile_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	profile, err := svc.Profile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{Username: "ghost", DisplayName: "ghost"}, profile)
}

func TestRestore_CreatesMissingUser(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	require.NoError(t, repos.Session.SetCurrent(ctx, "carol"))
	sess, err = svc.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carol", sess.Username)

	users, err := repos.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{Username: "carol", DisplayName: "carol"}, users["carol"])
}
