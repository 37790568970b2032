package main

import (
	"errors"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/worker"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume thumbnail jobs from Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			logger := a.logger
			defer logger.Sync()

			if a.cfg.Queue.Driver != "asynq" {
				return errors.New("worker needs queue.driver=asynq; the memory queue runs inside serve")
			}

			srv := asynq.NewServer(redisOpt(a.cfg.Redis), asynq.Config{
				Concurrency: a.cfg.Queue.Concurrency,
				Queues:      map[string]int{queue.QueueName: 1},
				Logger:      logger.Sugar(),
			})
			proc := worker.NewImageProcessor(a.store, a.blobs, logger)
			mux := worker.NewProcessingWorker(proc, logger).Handler()

			go func() {
				<-ctx.Done()
				srv.Shutdown()
			}()

			logger.Info("starting thumbnail worker", zap.Int("concurrency", a.cfg.Queue.Concurrency))
			return srv.Run(mux)
		},
	}
}
