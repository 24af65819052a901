package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/metrics"
	"github.com/UkralStul/minifeed/internal/repository"
	"github.com/UkralStul/minifeed/internal/util"
)

// DoubleTapWindow - максимальный интервал между двумя касаниями поста,
// при котором они считаются двойным касанием.
const DoubleTapWindow = 400 * time.Millisecond

// Notifier получает сигнал после каждого изменения ленты. Подписчики сами
// пересчитывают ленту целиком.
type Notifier interface {
	FeedChanged()
}

type nopNotifier struct{}

func (nopNotifier) FeedChanged() {}

// Service - движок ленты: собирает посты, лайки и комментарии в модели
// представления и выполняет лайки, комментарии и публикацию постов.
type Service struct {
	repos    *repository.Repositories
	clock    util.Clock
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	lastTaps map[string]time.Time // map[LikeKey] время последнего касания
}

// NewService создает движок ленты. notifier может быть nil.
func NewService(repos *repository.Repositories, clock util.Clock, notifier Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:    repos,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
		lastTaps: make(map[string]time.Time),
	}
}

// ListFeed возвращает ленту от новых постов к старым с числом лайков,
// отметкой лайка зрителя и комментариями. Хранилище не меняется.
func (s *Service) ListFeed(ctx context.Context, sess domain.Session) ([]*domain.FeedItem, error) {
	posts, err := s.repos.Posts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	likes, err := s.repos.Likes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	comments, err := s.repos.Comments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	sorted := make([]*domain.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	counts := likeCounts(likes)

	items := lo.Map(sorted, func(p *domain.Post, _ int) *domain.FeedItem {
		postComments := make([]*domain.Comment, 0, len(comments[p.ID]))
		postComments = append(postComments, lo.Filter(comments[p.ID], func(c *domain.Comment, _ int) bool {
			return c != nil
		})...)

		return &domain.FeedItem{
			Post:          *p,
			LikeCount:     counts[p.ID],
			LikedByViewer: sess.Authenticated() && likes[domain.LikeKey{Username: sess.Username, PostID: p.ID}.String()],
			Comments:      postComments,
		}
	})

	metrics.FeedRenders.Inc()
	return items, nil
}

// likeCounts считает лайки по постам: учитываются только значения true.
func likeCounts(likes domain.Likes) map[string]int {
	counts := make(map[string]int)
	for k := range lo.PickBy(likes, func(_ string, liked bool) bool { return liked }) {
		key, ok := domain.ParseLikeKey(k)
		if !ok {
			continue
		}
		counts[key.PostID]++
	}
	return counts
}

// GetPost возвращает один пост ленты.
func (s *Service) GetPost(ctx context.Context, sess domain.Session, postID string) (*domain.FeedItem, error) {
	items, err := s.ListFeed(ctx, sess)
	if err != nil {
		return nil, err
	}
	item, ok := lo.Find(items, func(it *domain.FeedItem) bool { return it.ID == postID })
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", postID, domain.ErrNotFound)
	}
	return item, nil
}

// ToggleLike переключает лайк зрителя на посте и возвращает новое состояние.
// Повторные вызовы чередуют состояние.
func (s *Service) ToggleLike(ctx context.Context, sess domain.Session, postID string) (bool, error) {
	if !sess.Authenticated() {
		return false, domain.ErrUnauthenticated
	}

	key := domain.LikeKey{Username: sess.Username, PostID: postID}.String()
	var liked bool
	err := s.repos.Likes.Update(ctx, func(likes domain.Likes) error {
		liked = !likes[key]
		likes[key] = liked
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	metrics.LikesToggled.WithLabelValues(likeState(liked)).Inc()
	s.logger.Debug("like toggled", "user", sess.Username, "post", postID, "liked", liked)
	s.notifier.FeedChanged()
	return liked, nil
}

// Tap регистрирует касание поста. Второе касание в пределах DoubleTapWindow
// ставит лайк, если зритель его еще не поставил; снять лайк так нельзя.
// Возвращает true, если лайк был поставлен.
func (s *Service) Tap(ctx context.Context, sess domain.Session, postID string) (bool, error) {
	if !sess.Authenticated() {
		return false, domain.ErrUnauthenticated
	}

	key := domain.LikeKey{Username: sess.Username, PostID: postID}.String()
	now := s.clock.NowUtc()

	s.mu.Lock()
	last, seen := s.lastTaps[key]
	// Касания старше окна уже не могут стать двойными
	for k, at := range s.lastTaps {
		if now.Sub(at) >= DoubleTapWindow {
			delete(s.lastTaps, k)
		}
	}
	elapsed := now.Sub(last)
	double := seen && elapsed > 0 && elapsed < DoubleTapWindow
	if double {
		delete(s.lastTaps, key)
	} else {
		s.lastTaps[key] = now
	}
	s.mu.Unlock()

	if !double {
		return false, nil
	}

	var liked bool
	err := s.repos.Likes.Update(ctx, func(likes domain.Likes) error {
		if likes[key] {
			return nil
		}
		likes[key] = true
		liked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to like: %w", err)
	}
	if !liked {
		return false, nil
	}

	metrics.LikesToggled.WithLabelValues(likeState(true)).Inc()
	s.logger.Debug("post liked by double tap", "user", sess.Username, "post", postID)
	s.notifier.FeedChanged()
	return true, nil
}

// AddComment добавляет комментарий в конец списка комментариев поста.
func (s *Service) AddComment(ctx context.Context, postID, author, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment: %w", domain.ErrEmptyInput)
	}

	comment := &domain.Comment{
		Author:    author,
		Text:      text,
		CreatedAt: s.clock.NowUtc(),
	}
	err := s.repos.Comments.Update(ctx, func(comments map[string][]*domain.Comment) error {
		comments[postID] = append(comments[postID], comment)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	metrics.CommentsAdded.Inc()
	s.logger.Debug("comment added", "author", author, "post", postID)
	s.notifier.FeedChanged()
	return comment, nil
}

// CreatePost публикует пост от имени зрителя.
func (s *Service) CreatePost(ctx context.Context, sess domain.Session, text string) (*domain.Post, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("post: %w", domain.ErrEmptyInput)
	}

	post := &domain.Post{
		ID:        domain.NewPostID(),
		Author:    sess.Username,
		Text:      text,
		CreatedAt: s.clock.NowUtc(),
	}
	err := s.repos.Posts.Update(ctx, func(posts []*domain.Post) ([]*domain.Post, error) {
		return append([]*domain.Post{post}, posts...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	metrics.PostsCreated.Inc()
	s.logger.Info("post created", "author", post.Author, "id", post.ID)
	s.notifier.FeedChanged()
	return post, nil
}

func likeState(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}
