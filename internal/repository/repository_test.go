package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"
	"github.com/UkralStul/minifeed/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestRepos создает репозитории над пустым in-memory хранилищем
func newTestRepos(t *testing.T) (*Repositories, *inmemory.Store) {
	t.Helper()
	backend := inmemory.New()
	store := storage.New(backend, "", nil)
	return New(store, util.NewStubClock(testNow)), backend
}

func TestUsers_RoundTrip(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	users := map[string]*domain.User{
		"alice": {Username: "alice", Password: "secret", DisplayName: "Alice", Bio: "hi"},
		"bob":   {Username: "bob", Password: "pw", DisplayName: "bob"},
	}
	require.NoError(t, repos.Users.Save(ctx, users))

	got, err := repos.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, users, got)
}

func TestUsers_StoredWithoutUsername(t *testing.T) {
	repos, backend := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Users.Save(ctx, map[string]*domain.User{
		"alice": {Username: "alice", Password: "p", DisplayName: "Alice"},
	}))

	raw, err := backend.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"alice":{"password":"p","displayName":"Alice","bio":""}}`, string(raw))
}

func TestUsers_UpdateErrorDoesNotSave(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Users.Update(ctx, func(users map[string]*domain.User) error {
		users["carol"] = &domain.User{Password: "x"}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	users, err := repos.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSession_SetAndClear(t *testing.T) {
	repos, backend := newTestRepos(t)
	ctx := context.Background()

	current, err := repos.Session.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Empty(t, current)

	require.NoError(t, repos.Session.SetCurrent(ctx, "alice"))
	sess, err := repos.Session.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Username: "alice"}, sess)

	// Имя хранится обычной строкой
	raw, err := backend.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(raw))

	require.NoError(t, repos.Session.SetCurrent(ctx, ""))
	_, err = backend.Get(ctx, KeySession)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPosts_SeedOnFirstAccess(t *testing.T) {
	repos, backend := newTestRepos(t)
	ctx := context.Background()

	posts, err := repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Alice", posts[0].Author)
	assert.Equal(t, testNow.Add(-6*time.Hour), posts[0].CreatedAt)
	assert.Equal(t, "Bob", posts[1].Author)
	assert.Equal(t, testNow.Add(-30*time.Minute), posts[1].CreatedAt)

	// Примеры сохранены, поэтому повторное чтение возвращает те же ID
	_, err = backend.Get(ctx, KeyPosts)
	require.NoError(t, err)
	again, err := repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, posts, again)
}

func TestPosts_CorruptIsNotOverwritten(t *testing.T) {
	repos, backend := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, KeyPosts, []byte("oops")))

	posts, err := repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	raw, err := backend.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, "oops", string(raw))
}

func TestPosts_RoundTrip(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	posts := []*domain.Post{
		{ID: "p1", Author: "alice", Text: "one", CreatedAt: testNow},
		{ID: "p2", Author: "bob", Text: "two", CreatedAt: testNow.Add(time.Second)},
	}
	require.NoError(t, repos.Posts.Save(ctx, posts))

	got, err := repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, posts, got)
}

func TestPosts_EmptyListIsNotReseeded(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Posts.Save(ctx, []*domain.Post{}))

	got, err := repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLikes_RoundTrip(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	likes := domain.Likes{"alice:p1": true, "bob:p1": false}
	require.NoError(t, repos.Likes.Save(ctx, likes))

	got, err := repos.Likes.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, likes, got)
}

func TestLikes_DropsNonBooleanValues(t *testing.T) {
	repos, backend := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, KeyLikes, []byte(`{"alice:p1":true,"bob:p1":{"postId":"p1"},"carol:p1":1,"dave:p1":false}`)))

	got, err := repos.Likes.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Likes{"alice:p1": true, "dave:p1": false}, got)
}

func TestComments_RoundTrip(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	comments := map[string][]*domain.Comment{
		"p1": {
			{Author: "alice", Text: "first", CreatedAt: testNow},
			{Author: "bob", Text: "second", CreatedAt: testNow.Add(time.Minute)},
		},
	}
	require.NoError(t, repos.Comments.Save(ctx, comments))

	got, err := repos.Comments.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, comments, got)
}

func TestComments_CorruptFallsBackToEmpty(t *testing.T) {
	repos, backend := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, KeyComments, []byte(`{"p1": "nope"}`)))

	got, err := repos.Comments.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
