package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minifeed_store_recoveries_total",
		Help: "Stored values replaced by their default because they could not be parsed.",
	}, []string{"key"})

	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minifeed_likes_toggled_total",
		Help: "Like toggles, labelled by the resulting state.",
	}, []string{"state"})

	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minifeed_comments_added_total",
		Help: "Comments appended to posts.",
	})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minifeed_posts_created_total",
		Help: "Posts created.",
	})

	FeedRenders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minifeed_feed_renders_total",
		Help: "Feed view models computed.",
	})

	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minifeed_feed_subscribers",
		Help: "Active live feed subscriptions.",
	})
)
