package repository

import (
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/util"
)

// Ключи хранилища. Каждая сущность хранится целиком под своим ключом.
const (
	KeyUsers    = "users"
	KeySession  = "current-session"
	KeyPosts    = "posts"
	KeyLikes    = "user-likes"
	KeyComments = "comments"
)

// Repositories содержит типизированные репозитории поверх одного хранилища.
type Repositories struct {
	Users    *Users
	Session  *Session
	Posts    *Posts
	Likes    *Likes
	Comments *Comments
}

// New создает все репозитории над store.
func New(store *storage.Store, clock util.Clock) *Repositories {
	return &Repositories{
		Users:    &Users{store: store},
		Session:  &Session{store: store},
		Posts:    &Posts{store: store, clock: clock},
		Likes:    &Likes{store: store},
		Comments: &Comments{store: store},
	}
}
