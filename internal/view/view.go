package view

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/UkralStul/minifeed/internal/domain"
)

// TimeAgo форматирует прошедшее время в короткой форме: 42s, 5m, 3h, 2d.
func TimeAgo(now, t time.Time) string {
	s := int(now.Sub(t).Seconds())
	if s < 0 {
		s = 0
	}
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	m := s / 60
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	h := m / 60
	if h < 24 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dd", h/24)
}

func LikeLabel(n int) string {
	if n == 1 {
		return "1 like"
	}
	return strconv.Itoa(n) + " likes"
}

// RenderFeed печатает ленту таблицей, комментарии идут строками под постом.
func RenderFeed(w io.Writer, items []*domain.FeedItem, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No posts yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Author", "Post", "Posted", "Likes"})

	for i, item := range items {
		likes := LikeLabel(item.LikeCount)
		if item.LikedByViewer {
			likes = color.New(color.Bold, color.FgHiRed).Sprint("♥ " + likes)
		}

		table.Append([]string{
			strconv.Itoa(i + 1),
			color.New(color.Bold).Sprint(item.Author),
			item.Text,
			TimeAgo(now, item.CreatedAt),
			likes,
		})

		for _, c := range item.Comments {
			table.Append([]string{
				"",
				"",
				color.New(color.FgHiBlack).Sprintf("%s: %s", c.Author, c.Text),
				TimeAgo(now, c.CreatedAt),
				"",
			})
		}
	}

	table.Render()
}

func RenderProfile(w io.Writer, user *domain.User) {
	fmt.Fprintf(w, "%s (@%s)\n", color.New(color.Bold).Sprint(user.DisplayName), user.Username)
	if user.Bio != "" {
		fmt.Fprintln(w, user.Bio)
	}
}

// Success печатает подтверждение действия.
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.New(color.FgGreen).Sprint("✓ ")+fmt.Sprintf(format, args...))
}
