package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного пользователя.
// Username является ключом в карте пользователей и внутри записи не хранится.
type User struct {
	Username    string `json:"-"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

// Session определяет, кто смотрит ленту. Пустой Username - никто не вошел.
type Session struct {
	Username string
}

// Authenticated сообщает, принадлежит ли сессия пользователю.
func (s Session) Authenticated() bool {
	return s.Username != ""
}

// Post представляет пост в ленте. После создания не меняется.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPostID генерирует ID поста: UUIDv7 упорядочен по времени создания
// и содержит случайную часть.
func NewPostID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Comment представляет комментарий к посту.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeKey идентифицирует лайк пары (пользователь, пост).
type LikeKey struct {
	Username string
	PostID   string
}

// String возвращает ключ в сохраняемом виде "<user>:<postId>".
func (k LikeKey) String() string {
	return k.Username + ":" + k.PostID
}

// ParseLikeKey разбирает сохраненный ключ лайка.
// ID поста не содержит двоеточий, поэтому делим по последнему.
func ParseLikeKey(s string) (LikeKey, bool) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return LikeKey{}, false
	}
	return LikeKey{Username: s[:i], PostID: s[i+1:]}, true
}

// Likes - карта map["user:postId"]bool.
type Likes map[string]bool

// FeedItem - пост, готовый к отрисовке в ленте.
type FeedItem struct {
	Post
	LikeCount     int
	LikedByViewer bool
	Comments      []*Comment
}
