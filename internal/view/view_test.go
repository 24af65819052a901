package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/UkralStul/minifeed/internal/domain"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0s"},
		{59 * time.Second, "59s"},
		{time.Minute, "1m"},
		{30 * time.Minute, "30m"},
		{6 * time.Hour, "6h"},
		{23*time.Hour + 59*time.Minute, "23h"},
		{49 * time.Hour, "2d"},
		{-time.Minute, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(now, now.Add(-tt.ago)))
		})
	}
}

func TestLikeLabel(t *testing.T) {
	assert.Equal(t, "0 likes", LikeLabel(0))
	assert.Equal(t, "1 like", LikeLabel(1))
	assert.Equal(t, "2 likes", LikeLabel(2))
}

func TestRenderFeed(t *testing.T) {
	color.NoColor = true
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	items := []*domain.FeedItem{
		{
			Post:          domain.Post{ID: "p1", Author: "Bob", Text: "Share updates", CreatedAt: now.Add(-30 * time.Minute)},
			LikeCount:     1,
			LikedByViewer: true,
			Comments:      []*domain.Comment{{Author: "alice", Text: "nice", CreatedAt: now.Add(-5 * time.Second)}},
		},
	}

	var buf bytes.Buffer
	RenderFeed(&buf, items, now)

	out := buf.String()
	assert.Contains(t, out, "Share updates")
	assert.Contains(t, out, "30m")
	assert.Contains(t, out, "♥ 1 like")
	assert.Contains(t, out, "alice: nice")
}

func TestRenderFeed_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderFeed(&buf, nil, time.Now())
	assert.Equal(t, "No posts yet\n", buf.String())
}

func TestRenderProfile(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	RenderProfile(&buf, &domain.User{Username: "bob", DisplayName: "Bobby", Bio: "hi"})
	assert.Equal(t, "Bobby (@bob)\nhi\n", buf.String())
}
