package feed

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

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type countingNotifier struct{ calls int }

func (n *countingNotifier) FeedChanged() { n.calls++ }

type testEnv struct {
	svc      *Service
	repos    *repository.Repositories
	backend  *inmemory.Store
	clock    *util.StubClock
	notifier *countingNotifier
}

// newTestService создает движок над пустым хранилищем
func newTestService(t *testing.T) *testEnv {
	t.Helper()
	backend := inmemory.New()
	clock := util.NewStubClock(testNow)
	repos := repository.New(storage.New(backend, "", nil), clock)
	notifier := &countingNotifier{}
	return &testEnv{
		svc:      NewService(repos, clock, notifier, nil),
		repos:    repos,
		backend:  backend,
		clock:    clock,
		notifier: notifier,
	}
}

func alice() domain.Session { return domain.Session{Username: "alice"} }
func bob() domain.Session   { return domain.Session{Username: "bob"} }

func firstPostID(t *testing.T, env *testEnv) string {
	t.Helper()
	items, err := env.svc.ListFeed(context.Background(), domain.Session{})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	return items[0].ID
}

func TestListFeed_EmptyStoreSeedsTwoPosts(t *testing.T) {
	env := newTestService(t)

	items, err := env.svc.ListFeed(context.Background(), domain.Session{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Сначала пост 30-минутной давности, затем 6-часовой
	assert.Equal(t, "Bob", items[0].Author)
	assert.Equal(t, testNow.Add(-30*time.Minute), items[0].CreatedAt)
	assert.Equal(t, "Alice", items[1].Author)
	assert.Equal(t, testNow.Add(-6*time.Hour), items[1].CreatedAt)
	for _, it := range items {
		assert.Zero(t, it.LikeCount)
		assert.False(t, it.LikedByViewer)
		assert.NotNil(t, it.Comments)
		assert.Empty(t, it.Comments)
	}
}

func TestListFeed_SortedNewestFirst(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	require.NoError(t, env.repos.Posts.Save(ctx, []*domain.Post{
		{ID: "a", Author: "x", Text: "a", CreatedAt: testNow.Add(-time.Hour)},
		{ID: "b", Author: "x", Text: "b", CreatedAt: testNow.Add(time.Hour)},
		{ID: "c", Author: "x", Text: "c", CreatedAt: testNow},
		{ID: "d", Author: "x", Text: "d", CreatedAt: testNow.Add(-2 * time.Hour)},
	}))

	items, err := env.svc.ListFeed(ctx, alice())
	require.NoError(t, err)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}
}

func TestListFeed_DoesNotMutateStore(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.ListFeed(ctx, alice())
	require.NoError(t, err)
	before, err := env.backend.Get(ctx, repository.KeyPosts)
	require.NoError(t, err)

	_, err = env.svc.ListFeed(ctx, alice())
	require.NoError(t, err)
	after, err := env.backend.Get(ctx, repository.KeyPosts)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Zero(t, env.notifier.calls)
}

func TestListFeed_CountsOnlyTrueLikes(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	raw := `{"alice:` + postID + `":true,"bob:` + postID + `":false,"carol:` + postID + `":"yes","dave:other":true,"broken":true}`
	require.NoError(t, env.backend.Put(ctx, repository.KeyLikes, []byte(raw)))

	item, err := env.svc.GetPost(ctx, alice(), postID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.LikeCount)
	assert.True(t, item.LikedByViewer)

	item, err = env.svc.GetPost(ctx, bob(), postID)
	require.NoError(t, err)
	assert.False(t, item.LikedByViewer)
}

func TestToggleLike_Parity(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	for n := 1; n <= 7; n++ {
		liked, err := env.svc.ToggleLike(ctx, alice(), postID)
		require.NoError(t, err)
		assert.Equal(t, n%2 == 1, liked, "after %d toggles", n)

		item, err := env.svc.GetPost(ctx, alice(), postID)
		require.NoError(t, err)
		assert.Equal(t, n%2 == 1, item.LikedByViewer)
	}
	assert.Equal(t, 7, env.notifier.calls)
}

func TestToggleLike_Unauthenticated(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	liked, err := env.svc.ToggleLike(ctx, domain.Session{}, postID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.False(t, liked)

	_, err = env.backend.Get(ctx, repository.KeyLikes)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, env.notifier.calls)
}

func TestToggleLike_TwiceRestoresCount(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	_, err := env.svc.ToggleLike(ctx, alice(), postID)
	require.NoError(t, err)
	before, err := env.svc.GetPost(ctx, bob(), postID)
	require.NoError(t, err)
	require.Equal(t, 1, before.LikeCount)

	_, err = env.svc.ToggleLike(ctx, bob(), postID)
	require.NoError(t, err)
	liked, err := env.svc.ToggleLike(ctx, bob(), postID)
	require.NoError(t, err)
	assert.False(t, liked)

	after, err := env.svc.GetPost(ctx, bob(), postID)
	require.NoError(t, err)
	assert.False(t, after.LikedByViewer)
	assert.Equal(t, before.LikeCount, after.LikeCount)
}

func TestLikeCount_DistinctUsersInLikedState(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	toggles := map[string]int{"alice": 1, "bob": 2, "carol": 3, "dave": 4, "erin": 5}
	for user, n := range toggles {
		for i := 0; i < n; i++ {
			_, err := env.svc.ToggleLike(ctx, domain.Session{Username: user}, postID)
			require.NoError(t, err)
		}
	}

	item, err := env.svc.GetPost(ctx, alice(), postID)
	require.NoError(t, err)
	// alice, carol и erin переключали нечетное число раз
	assert.Equal(t, 3, item.LikeCount)
}

func TestAddComment_AppendsInOrder(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	_, err := env.svc.AddComment(ctx, postID, "alice", "first")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	c, err := env.svc.AddComment(ctx, postID, "bob", "  second  ")
	require.NoError(t, err)
	assert.Equal(t, "second", c.Text)
	assert.Equal(t, testNow.Add(time.Minute), c.CreatedAt)

	item, err := env.svc.GetPost(ctx, alice(), postID)
	require.NoError(t, err)
	require.Len(t, item.Comments, 2)
	assert.Equal(t, "first", item.Comments[0].Text)
	assert.Equal(t, "alice", item.Comments[0].Author)
	assert.Equal(t, "second", item.Comments[1].Text)
	assert.Equal(t, 2, env.notifier.calls)
}

func TestAddComment_BlankText(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	_, err := env.svc.AddComment(ctx, postID, "alice", "kept")
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := env.svc.AddComment(ctx, postID, "alice", text)
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	}

	comments, err := env.repos.Comments.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, comments[postID], 1)
	assert.Equal(t, "kept", comments[postID][0].Text)
	assert.Equal(t, 1, env.notifier.calls)
}

func TestCreatePost(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	post, err := env.svc.CreatePost(ctx, alice(), "  hello world ")
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "alice", post.Author)
	assert.Equal(t, "hello world", post.Text)

	items, err := env.svc.ListFeed(ctx, alice())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, post.ID, items[0].ID)

	// Новый пост вставляется в начало списка
	posts, err := env.repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestCreatePost_Errors(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.CreatePost(ctx, domain.Session{}, "hello")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = env.svc.CreatePost(ctx, alice(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Zero(t, env.notifier.calls)
}

func TestGetPost_NotFound(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.GetPost(context.Background(), alice(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTap(t *testing.T) {
	tests := []struct {
		name      string
		gap       time.Duration
		preLiked  bool
		wantLiked bool
		wantState bool
	}{
		{name: "double tap likes", gap: 200 * time.Millisecond, wantLiked: true, wantState: true},
		{name: "slow taps do nothing", gap: DoubleTapWindow, wantLiked: false, wantState: false},
		{name: "same instant is not a double tap", gap: 0, wantLiked: false, wantState: false},
		{name: "never unlikes", gap: 100 * time.Millisecond, preLiked: true, wantLiked: false, wantState: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestService(t)
			ctx := context.Background()
			postID := firstPostID(t, env)

			if tt.preLiked {
				_, err := env.svc.ToggleLike(ctx, alice(), postID)
				require.NoError(t, err)
			}

			liked, err := env.svc.Tap(ctx, alice(), postID)
			require.NoError(t, err)
			assert.False(t, liked)

			env.clock.Advance(tt.gap)
			liked, err = env.svc.Tap(ctx, alice(), postID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLiked, liked)

			item, err := env.svc.GetPost(ctx, alice(), postID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, item.LikedByViewer)
		})
	}
}

func TestTap_ForgetsOldTaps(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	postID := firstPostID(t, env)

	_, err := env.svc.Tap(ctx, alice(), postID)
	require.NoError(t, err)
	require.Len(t, env.svc.lastTaps, 1)

	// Касание alice устарело и вычищается при следующем касании
	env.clock.Advance(DoubleTapWindow)
	_, err = env.svc.Tap(ctx, bob(), postID)
	require.NoError(t, err)
	assert.Len(t, env.svc.lastTaps, 1)
	assert.NotContains(t, env.svc.lastTaps, domain.LikeKey{Username: "alice", PostID: postID}.String())

	// Сработавшее двойное касание не оставляет записи
	env.clock.Advance(100 * time.Millisecond)
	liked, err := env.svc.Tap(ctx, bob(), postID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Empty(t, env.svc.lastTaps)
}

func TestTap_Unauthenticated(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.Tap(context.Background(), domain.Session{}, "p1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
