package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UkralStul/minifeed/internal/account"
	"github.com/UkralStul/minifeed/internal/dataloader"
	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/feed"
	"github.com/UkralStul/minifeed/internal/repository"
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"
	"github.com/UkralStul/minifeed/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path"`
	Extensions map[string]interface{} `json:"extensions"`
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

type feedItemJSON struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	Text          string `json:"text"`
	CreatedAt     string `json:"createdAt"`
	LikeCount     int    `json:"likeCount"`
	LikedByViewer bool   `json:"likedByViewer"`
	AuthorProfile *struct {
		DisplayName string `json:"displayName"`
	} `json:"authorProfile"`
	Comments []struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	} `json:"comments"`
}

// newTestServer собирает GraphQL-хендлер над пустым in-memory хранилищем
func newTestServer(t *testing.T) (http.Handler, *Resolver) {
	t.Helper()
	clock := util.NewStubClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	repos := repository.New(storage.New(inmemory.New(), "", nil), clock)
	observer := NewFeedObserver()

	resolver := &Resolver{
		Feed:     feed.NewService(repos, clock, observer, nil),
		Accounts: account.NewService(repos, nil),
		Sessions: repos.Session,
		Users:    repos.Users,
		Observer: observer,
	}
	return dataloader.Middleware(repos.Users, NewServer(resolver)), resolver
}

func do(t *testing.T, h http.Handler, query string, vars map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func feedOf(t *testing.T, resp gqlResponse, field string) []feedItemJSON {
	t.Helper()
	require.Empty(t, resp.Errors)
	var items []feedItemJSON
	require.NoError(t, json.Unmarshal(resp.Data[field], &items))
	return items
}

const feedQuery = `{ feed { id author text createdAt likeCount likedByViewer authorProfile { displayName } comments { author text } } }`

func TestFeedQuery_SeededPosts(t *testing.T) {
	h, _ := newTestServer(t)

	items := feedOf(t, do(t, h, feedQuery, nil), "feed")
	require.Len(t, items, 2)
	assert.Equal(t, "Bob", items[0].Author)
	assert.Equal(t, "2024-05-01T11:30:00Z", items[0].CreatedAt)
	assert.Equal(t, "Alice", items[1].Author)
	require.NotNil(t, items[0].AuthorProfile)
	assert.Equal(t, "Bob", items[0].AuthorProfile.DisplayName)
	assert.Empty(t, items[0].Comments)
}

func TestToggleLike_RequiresSession(t *testing.T) {
	h, _ := newTestServer(t)
	items := feedOf(t, do(t, h, feedQuery, nil), "feed")

	resp := do(t, h, `mutation($id: ID!) { toggleLike(postId: $id) }`, map[string]interface{}{"id": items[0].ID})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "UNAUTHENTICATED", resp.Errors[0].Extensions["code"])
	assert.Equal(t, []interface{}{"toggleLike"}, resp.Errors[0].Path)
	assert.JSONEq(t, `null`, string(resp.Data["toggleLike"]))

	after := feedOf(t, do(t, h, feedQuery, nil), "feed")
	assert.Zero(t, after[0].LikeCount)
}

func TestLikeAndCommentFlow(t *testing.T) {
	h, _ := newTestServer(t)
	postID := feedOf(t, do(t, h, feedQuery, nil), "feed")[0].ID

	resp := do(t, h, `mutation { register(username: "alice", password: "pw") { username displayName } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"username":"alice","displayName":"alice"}`, string(resp.Data["register"]))

	resp = do(t, h, `mutation($id: ID!) { first: toggleLike(postId: $id) }`, map[string]interface{}{"id": postID})
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `true`, string(resp.Data["first"]))

	resp = do(t, h, `mutation($id: ID!) { addComment(postId: $id, text: "  nice  ") { author text } }`, map[string]interface{}{"id": postID})
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"author":"alice","text":"nice"}`, string(resp.Data["addComment"]))

	resp = do(t, h, `mutation($id: ID!) { addComment(postId: $id, text: "   ") { text } }`, map[string]interface{}{"id": postID})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "EMPTY_INPUT", resp.Errors[0].Extensions["code"])

	items := feedOf(t, do(t, h, feedQuery, nil), "feed")
	assert.Equal(t, 1, items[0].LikeCount)
	assert.True(t, items[0].LikedByViewer)
	require.Len(t, items[0].Comments, 1)
	assert.Equal(t, "nice", items[0].Comments[0].Text)
}

func TestCreatePostAndProfile(t *testing.T) {
	h, _ := newTestServer(t)

	resp := do(t, h, `mutation { register(username: "bob", password: "pw") { username } }`, nil)
	require.Empty(t, resp.Errors)

	resp = do(t, h, `mutation { updateProfile(bio: "hello") { displayName bio } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"displayName":"bob","bio":"hello"}`, string(resp.Data["updateProfile"]))

	resp = do(t, h, `mutation { createPost(text: "my post") { author text likeCount } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"author":"bob","text":"my post","likeCount":0}`, string(resp.Data["createPost"]))

	resp = do(t, h, `{ me { username bio } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"username":"bob","bio":"hello"}`, string(resp.Data["me"]))

	resp = do(t, h, `mutation { logout }`, nil)
	require.Empty(t, resp.Errors)
	resp = do(t, h, `{ me { username } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `null`, string(resp.Data["me"]))
}

func TestPostQuery_NotFound(t *testing.T) {
	h, _ := newTestServer(t)

	resp := do(t, h, `{ post(id: "missing") { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
}

func TestTypenameAndFragments(t *testing.T) {
	h, _ := newTestServer(t)

	resp := do(t, h, `{ __typename feed { ...item } } fragment item on FeedItem { __typename author }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `"Query"`, string(resp.Data["__typename"]))
	assert.JSONEq(t, `[{"__typename":"FeedItem","author":"Bob"},{"__typename":"FeedItem","author":"Alice"}]`, string(resp.Data["feed"]))
}

func TestFeedObserver_CoalescesSignals(t *testing.T) {
	o := NewFeedObserver()
	id, ch := o.subscribe()

	o.FeedChanged()
	o.FeedChanged()

	<-ch
	select {
	case <-ch:
		t.Fatal("signals should be coalesced")
	default:
	}

	o.unsubscribe(id)
	assert.Empty(t, o.subs)
}

func TestIntrospection(t *testing.T) {
	h, _ := newTestServer(t)

	resp := do(t, h, `{
		__schema { queryType { name } subscriptionType { name } }
		__type(name: "FeedItem") { kind fields { name } }
	}`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"queryType":{"name":"Query"},"subscriptionType":{"name":"Subscription"}}`, string(resp.Data["__schema"]))
	assert.JSONEq(t, `{"kind":"OBJECT","fields":[
		{"name":"id"},{"name":"author"},{"name":"authorProfile"},{"name":"text"},
		{"name":"createdAt"},{"name":"likeCount"},{"name":"likedByViewer"},{"name":"comments"}
	]}`, string(resp.Data["__type"]))
}

func TestComplexityLimit(t *testing.T) {
	h, _ := newTestServer(t)

	var b strings.Builder
	b.WriteString("{")
	for i := 0; i <= ComplexityLimit; i++ {
		fmt.Fprintf(&b, " f%d: __typename", i)
	}
	b.WriteString(" }")

	resp := do(t, h, b.String(), nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "COMPLEXITY_LIMIT_EXCEEDED", resp.Errors[0].Extensions["code"])
	assert.Nil(t, resp.Data)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", ErrorCode(fmt.Errorf("post p1: %w", domain.ErrNotFound)))
	assert.Equal(t, "USER_EXISTS", ErrorCode(domain.ErrUserExists))
	assert.Empty(t, ErrorCode(fmt.Errorf("boom")))
}

func subscriberCount(o *FeedObserver) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

func TestFeedUpdated_StreamsChanges(t *testing.T) {
	_, resolver := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := resolver.Accounts.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	updates, err := resolver.Subscription().FeedUpdated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, subscriberCount(resolver.Observer))

	next := func() []*domain.FeedItem {
		t.Helper()
		select {
		case items, ok := <-updates:
			require.True(t, ok, "subscription closed early")
			return items
		case <-time.After(time.Second):
			require.FailNow(t, "no feed update")
			return nil
		}
	}

	items := next()
	require.Len(t, items, 2)
	postID := items[0].ID
	assert.False(t, items[0].LikedByViewer)

	liked, err := resolver.Mutation().ToggleLike(ctx, postID)
	require.NoError(t, err)
	require.True(t, *liked)
	items = next()
	assert.True(t, items[0].LikedByViewer)
	assert.Equal(t, 1, items[0].LikeCount)

	_, err = resolver.Mutation().AddComment(ctx, postID, "nice")
	require.NoError(t, err)
	items = next()
	require.Len(t, items[0].Comments, 1)
	assert.Equal(t, "alice", items[0].Comments[0].Author)
	assert.Equal(t, "nice", items[0].Comments[0].Text)

	_, err = resolver.Mutation().CreatePost(ctx, "fresh post")
	require.NoError(t, err)
	items = next()
	require.Len(t, items, 3)
	assert.Equal(t, "fresh post", items[0].Text)
	assert.Equal(t, "alice", items[0].Author)

	cancel()
	select {
	case _, ok := <-updates:
		assert.False(t, ok)
	case <-time.After(time.Second):
		require.FailNow(t, "subscription was not closed")
	}
	assert.Zero(t, subscriberCount(resolver.Observer))
}
