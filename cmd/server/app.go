package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/config"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/database"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/service"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/session"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/storage"
)

// app holds every backend handle. The process owns their lifecycle.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    database.Store
	blobs    *storage.FilesystemStorage
	sessions session.Store
	enqueuer queue.Enqueuer
	memQueue *queue.MemoryQueue
	files    *service.FileManager

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		blobs:  storage.NewFilesystemStorage(cfg.Storage.FolderPath),
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, func() error { return store.Close(context.Background()) })

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)
	}

	switch cfg.Session.Driver {
	case "redis":
		a.sessions = session.NewRedisStore(rdb, cfg.Session.TTL)
	default:
		a.sessions = session.NewMemoryStore(cfg.Session.MemorySize, cfg.Session.TTL)
	}

	switch cfg.Queue.Driver {
	case "asynq":
		q := queue.NewAsynqQueue(asynq.NewClient(redisOpt(cfg.Redis)), cfg.Queue.MaxRetry)
		a.enqueuer = q
		a.closers = append(a.closers, q.Close)
	default:
		a.memQueue = queue.NewMemoryQueue(cfg.Queue.Buffer)
		a.enqueuer = a.memQueue
	}

	a.files = service.NewFileManager(a.store, a.blobs, a.sessions, a.enqueuer, logger, service.Options{
		PageSize:             cfg.Server.PageSize,
		MaxConcurrentUploads: cfg.Server.MaxUploads,
	})

	logger.Info("backends ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("session", cfg.Session.Driver),
		zap.String("queue", cfg.Queue.Driver),
		zap.String("folder", cfg.Storage.FolderPath),
	)
	return a, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (database.Store, error) {
	switch cfg.Driver {
	case "mongo":
		return database.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "postgres":
		db, err := database.NewPostgresDB(cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close(ctx)
			return nil, err
		}
		return db, nil
	case "memory":
		return database.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Close releases backends in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
