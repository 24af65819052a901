// graph/resolver.go

package graph

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/UkralStul/minifeed/internal/account"
	"github.com/UkralStul/minifeed/internal/dataloader"
	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/feed"
	"github.com/UkralStul/minifeed/internal/metrics"
)

// FeedObserver хранит каналы подписчиков на обновления ленты.
// Сигнал не несет данных: подписчик сам пересчитывает ленту.
type FeedObserver struct {
	mu sync.RWMutex
	//   map[subscriberID] channel
	subs map[string]chan struct{}
}

// NewFeedObserver - конструктор для нашего наблюдателя.
func NewFeedObserver() *FeedObserver {
	return &FeedObserver{
		subs: make(map[string]chan struct{}),
	}
}

// FeedChanged будит всех подписчиков. Канал с буфером 1, поэтому серия
// изменений сливается в один сигнал для медленного клиента.
func (o *FeedObserver) FeedChanged() {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, ch := range o.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (o *FeedObserver) subscribe() (string, <-chan struct{}) {
	ch := make(chan struct{}, 1)
	id := uuid.NewString()

	o.mu.Lock()
	o.subs[id] = ch
	o.mu.Unlock()
	metrics.FeedSubscribers.Inc()
	return id, ch
}

func (o *FeedObserver) unsubscribe(id string) {
	o.mu.Lock()
	delete(o.subs, id)
	o.mu.Unlock()
	metrics.FeedSubscribers.Dec()
}

// SessionSource отдает текущую сессию хранилища.
type SessionSource interface {
	Current(ctx context.Context) (domain.Session, error)
}

// Resolver - это корневая структура резолвера.
// Она содержит все зависимости, которые нужны для выполнения запросов.
type Resolver struct {
	Feed     *feed.Service
	Accounts *account.Service
	Sessions SessionSource
	Users    dataloader.UserReader
	Observer *FeedObserver
}
