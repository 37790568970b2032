package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
)

// ProcessingWorker feeds thumbnail jobs from a queue into an ImageProcessor.
type ProcessingWorker struct {
	proc   *ImageProcessor
	logger *zap.Logger
}

func NewProcessingWorker(proc *ImageProcessor, logger *zap.Logger) *ProcessingWorker {
	return &ProcessingWorker{proc: proc, logger: logger}
}

// Handler registers the thumbnail task handler for an asynq server.
func (pw *ProcessingWorker) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeThumbnail, pw.handleThumbnail)
	return mux
}

func (pw *ProcessingWorker) handleThumbnail(ctx context.Context, task *asynq.Task) error {
	job, err := queue.DecodeThumbnailJob(task.Payload())
	if err != nil {
		pw.logger.Error("rejecting malformed thumbnail job", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	err = pw.processJob(ctx, job)
	if errors.Is(err, models.ErrFatalJob) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	// Write failures are retried; rewriting finished widths is harmless.
	return err
}

// RunLocal consumes jobs from an in-process channel with the given number of
// goroutines until ctx is cancelled or jobs is closed.
func (pw *ProcessingWorker) RunLocal(ctx context.Context, jobs <-chan queue.ThumbnailJob, concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					pw.processJob(ctx, job)
				}
			}
		}()
	}
	pw.logger.Info("processing worker started", zap.Int("concurrency", concurrency))
	wg.Wait()
	pw.logger.Info("processing worker stopped")
}

func (pw *ProcessingWorker) processJob(ctx context.Context, job queue.ThumbnailJob) error {
	log := pw.logger.With(zap.String("file_id", job.FileID.String()), zap.String("user_id", job.OwnerID))

	res, err := pw.proc.Process(ctx, job)
	if err != nil {
		if errors.Is(err, models.ErrFatalJob) {
			log.Warn("thumbnail job rejected", zap.Error(err))
		} else {
			log.Error("thumbnail job failed", zap.Error(err))
		}
		return err
	}
	if err := res.Err(); err != nil {
		if res.Written() == 0 && errors.Is(err, models.ErrFatalJob) {
			log.Warn("thumbnail job rejected", zap.Error(err))
			return err
		}
		log.Warn("thumbnail job partially failed",
			zap.Int("written", res.Written()),
			zap.Int("widths", len(res.Derivatives)),
			zap.Error(err),
		)
		return err
	}
	log.Info("generated thumbnails", zap.Int("widths", len(res.Derivatives)))
	return nil
}
