package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// UserReader - источник пользователей для лоадера.
type UserReader interface {
	GetAll(ctx context.Context) (map[string]*domain.User, error)
}

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	UserByName *dataloader.Loader
}

// NewLoaders создает лоадеры. Профили авторов всех постов и комментариев
// запроса читаются одним обращением к хранилищу.
func NewLoaders(users UserReader) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		all, err := users.GetAll(ctx)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		for i, k := range keys {
			name := k.String()
			u, ok := all[name]
			if !ok {
				// Автор без учетной записи (например, посты-примеры)
				u = &domain.User{Username: name, DisplayName: name}
			} else if u.DisplayName == "" {
				cp := *u
				cp.DisplayName = name
				u = &cp
			}
			results[i] = &dataloader.Result{Data: u}
		}
		return results
	}

	return &Loaders{
		UserByName: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond*1)),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(users UserReader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLoaders(r.Context(), NewLoaders(users))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLoaders помещает лоадеры в контекст.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста. Возвращает nil, если их там нет.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// Prime ставит загрузку профилей в очередь, чтобы они попали в один батч.
func (l *Loaders) Prime(ctx context.Context, usernames ...string) {
	for _, name := range usernames {
		l.UserByName.Load(ctx, dataloader.StringKey(name))
	}
}

// User возвращает профиль пользователя.
func (l *Loaders) User(ctx context.Context, username string) (*domain.User, error) {
	v, err := l.UserByName.Load(ctx, dataloader.StringKey(username))()
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}
