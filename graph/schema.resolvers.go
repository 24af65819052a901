package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/UkralStul/minifeed/graph/generated"
	"github.com/UkralStul/minifeed/internal/dataloader"
	"github.com/UkralStul/minifeed/internal/domain"
)

// === Comment Resolvers ===

// AuthorProfile is the resolver for the authorProfile field.
func (r *commentResolver) AuthorProfile(ctx context.Context, obj *domain.Comment) (*domain.User, error) {
	return r.authorProfile(ctx, obj.Author)
}

// === FeedItem Resolvers ===

// AuthorProfile is the resolver for the authorProfile field.
func (r *feedItemResolver) AuthorProfile(ctx context.Context, obj *domain.FeedItem) (*domain.User, error) {
	return r.authorProfile(ctx, obj.Author)
}

// === Mutation Resolvers ===

// Register is the resolver for the register field.
func (r *mutationResolver) Register(ctx context.Context, username string, password string) (*domain.User, error) {
	return r.Accounts.Register(ctx, username, password)
}

// Login is the resolver for the login field.
func (r *mutationResolver) Login(ctx context.Context, username string, password string) (*domain.User, error) {
	return r.Accounts.Login(ctx, username, password)
}

// Logout is the resolver for the logout field.
func (r *mutationResolver) Logout(ctx context.Context) (*bool, error) {
	if err := r.Accounts.Logout(ctx); err != nil {
		return nil, err
	}
	return lo.ToPtr(true), nil
}

// UpdateProfile меняет только переданные поля.
func (r *mutationResolver) UpdateProfile(ctx context.Context, displayName *string, bio *string) (*domain.User, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	current, err := r.Accounts.Profile(ctx, sess.Username)
	if err != nil {
		return nil, err
	}
	name, about := current.DisplayName, current.Bio
	if displayName != nil {
		name = *displayName
	}
	if bio != nil {
		about = *bio
	}
	return r.Accounts.SaveProfile(ctx, sess, name, about)
}

// CreatePost is the resolver for the createPost field.
func (r *mutationResolver) CreatePost(ctx context.Context, text string) (*domain.FeedItem, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	post, err := r.Feed.CreatePost(ctx, sess, text)
	if err != nil {
		return nil, err
	}
	return r.Feed.GetPost(ctx, sess, post.ID)
}

// ToggleLike is the resolver for the toggleLike field.
func (r *mutationResolver) ToggleLike(ctx context.Context, postID string) (*bool, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	liked, err := r.Feed.ToggleLike(ctx, sess, postID)
	if err != nil {
		return nil, err
	}
	return &liked, nil
}

// Tap is the resolver for the tap field.
func (r *mutationResolver) Tap(ctx context.Context, postID string) (*bool, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	liked, err := r.Feed.Tap(ctx, sess, postID)
	if err != nil {
		return nil, err
	}
	return &liked, nil
}

// AddComment публикует комментарий от имени текущего пользователя.
func (r *mutationResolver) AddComment(ctx context.Context, postID string, text string) (*domain.Comment, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return r.Feed.AddComment(ctx, postID, sess.Username, text)
}

// === Query Resolvers ===

// Me is the resolver for the me field.
func (r *queryResolver) Me(ctx context.Context) (*domain.User, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil || !sess.Authenticated() {
		return nil, err
	}
	return r.Accounts.Profile(ctx, sess.Username)
}

// Feed is the resolver for the feed field.
func (r *queryResolver) Feed(ctx context.Context) ([]*domain.FeedItem, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	return r.Resolver.Feed.ListFeed(ctx, sess)
}

// Post is the resolver for the post field.
func (r *queryResolver) Post(ctx context.Context, id string) (*domain.FeedItem, error) {
	sess, err := r.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	return r.Resolver.Feed.GetPost(ctx, sess, id)
}

// User is the resolver for the user field.
func (r *queryResolver) User(ctx context.Context, username string) (*domain.User, error) {
	return r.Accounts.Profile(ctx, username)
}

// === Subscription Resolvers ===

// FeedUpdated сразу отдает текущую ленту, а затем пересчитывает ее целиком
// после каждого изменения.
func (r *subscriptionResolver) FeedUpdated(ctx context.Context) (<-chan []*domain.FeedItem, error) {
	id, signals := r.Observer.subscribe()
	out := make(chan []*domain.FeedItem, 1)

	// Горутина живет до отключения клиента
	go func() {
		defer close(out)
		defer r.Observer.unsubscribe(id)

		for {
			sess, err := r.Sessions.Current(ctx)
			if err != nil {
				slog.Error("feed subscription: failed to read session", "error", err)
				return
			}
			items, err := r.Resolver.Feed.ListFeed(ctx, sess)
			if err != nil {
				slog.Error("feed subscription: failed to render feed", "error", fmt.Errorf("list feed: %w", err))
				return
			}

			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
			select {
			case <-signals:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// authorProfile грузит профиль автора через Dataloader, чтобы не читать
// пользователей на каждый пост. Вне HTTP-запроса загрузчика нет.
func (r *Resolver) authorProfile(ctx context.Context, author string) (*domain.User, error) {
	if loaders := dataloader.For(ctx); loaders != nil {
		return loaders.User(ctx, author)
	}
	return r.Accounts.Profile(ctx, author)
}

// === Boilerplate: Связывание резолверов с сгенерированным интерфейсом ===

// Comment returns generated.CommentResolver implementation.
func (r *Resolver) Comment() generated.CommentResolver { return &commentResolver{r} }

// FeedItem returns generated.FeedItemResolver implementation.
func (r *Resolver) FeedItem() generated.FeedItemResolver { return &feedItemResolver{r} }

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

// Subscription returns generated.SubscriptionResolver implementation.
func (r *Resolver) Subscription() generated.SubscriptionResolver { return &subscriptionResolver{r} }

type commentResolver struct{ *Resolver }
type feedItemResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
