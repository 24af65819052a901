package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UkralStul/minifeed/graph"
	"github.com/UkralStul/minifeed/internal/account"
	"github.com/UkralStul/minifeed/internal/config"
	"github.com/UkralStul/minifeed/internal/feed"
	"github.com/UkralStul/minifeed/internal/repository"
	"github.com/UkralStul/minifeed/internal/storage"
	"github.com/UkralStul/minifeed/internal/storage/inmemory"
	"github.com/UkralStul/minifeed/internal/storage/minio"
	"github.com/UkralStul/minifeed/internal/storage/mongo"
	"github.com/UkralStul/minifeed/internal/storage/nats"
	"github.com/UkralStul/minifeed/internal/storage/postgres"
	"github.com/UkralStul/minifeed/internal/storage/redis"
	"github.com/UkralStul/minifeed/internal/util"
)

// App собирает все зависимости приложения поверх выбранного хранилища.
type App struct {
	Backend  storage.Backend
	Repos    *repository.Repositories
	Feed     *feed.Service
	Accounts *account.Service
	Observer *graph.FeedObserver
	Clock    util.Clock
	Logger   *slog.Logger
}

// OpenBackend подключается к хранилищу, указанному в конфигурации.
func OpenBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage {
	case config.StorageInMemory:
		return inmemory.New(), nil
	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set for postgres storage")
		}
		return postgres.New(cfg.DatabaseURL)
	case config.StorageRedis:
		return redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	case config.StorageNATS:
		return nats.New(ctx, cfg.NATSURL, cfg.NATSBucket)
	case config.StorageMongo:
		return mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.StorageMinio:
		return minio.New(ctx, minio.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage)
	}
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}
	logger.Info("storage opened", "type", cfg.Storage, "namespace", cfg.Namespace)

	return Build(backend, cfg.Namespace, util.NewRealClock(), logger), nil
}

// Build собирает приложение над уже открытым хранилищем.
func Build(backend storage.Backend, namespace string, clock util.Clock, logger *slog.Logger) *App {
	repos := repository.New(storage.New(backend, namespace, logger), clock)
	observer := graph.NewFeedObserver()

	return &App{
		Backend:  backend,
		Repos:    repos,
		Feed:     feed.NewService(repos, clock, observer, logger),
		Accounts: account.NewService(repos, logger),
		Observer: observer,
		Clock:    clock,
		Logger:   logger,
	}
}

// Resolver возвращает корневой резолвер GraphQL.
func (a *App) Resolver() *graph.Resolver {
	return &graph.Resolver{
		Feed:     a.Feed,
		Accounts: a.Accounts,
		Sessions: a.Repos.Session,
		Users:    a.Repos.Users,
		Observer: a.Observer,
	}
}

func (a *App) Close(ctx context.Context) error {
	if c, ok := a.Backend.(storage.Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
