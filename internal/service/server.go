package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/database"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/session"
)

// BlobStore is where file bytes go.
type BlobStore interface {
	Put(data []byte) (string, error)
	Get(localPath string) ([]byte, error)
}

type Options struct {
	PageSize int
	// MaxConcurrentUploads bounds simultaneous blob writes.
	MaxConcurrentUploads int64
}

// FileManager validates requests, keeps the tree consistent and schedules
// thumbnails. All collaborators are injected; their lifecycle belongs to the
// caller.
type FileManager struct {
	store     database.Store
	blobs     BlobStore
	sessions  session.Store
	queue     queue.Enqueuer
	logger    *zap.Logger
	pageSize  int
	uploadSem *semaphore.Weighted
}

func NewFileManager(store database.Store, blobs BlobStore, sessions session.Store, q queue.Enqueuer, logger *zap.Logger, opts Options) *FileManager {
	if opts.PageSize <= 0 {
		opts.PageSize = database.DefaultPageSize
	}
	if opts.MaxConcurrentUploads <= 0 {
		opts.MaxConcurrentUploads = 16
	}
	return &FileManager{
		store:     store,
		blobs:     blobs,
		sessions:  sessions,
		queue:     q,
		logger:    logger,
		pageSize:  opts.PageSize,
		uploadSem: semaphore.NewWeighted(opts.MaxConcurrentUploads),
	}
}

// Status reports backend liveness.
type Status struct {
	DB       bool `json:"db"`
	Sessions bool `json:"sessions"`
}

type Stats struct {
	Files int64 `json:"files"`
}

func (m *FileManager) Status(ctx context.Context) Status {
	return Status{
		DB:       m.store.Ping(ctx) == nil,
		Sessions: m.sessions.Ping(ctx) == nil,
	}
}

func (m *FileManager) Stats(ctx context.Context) (*Stats, error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return nil, m.internal("stats", err)
	}
	return &Stats{Files: n}, nil
}
