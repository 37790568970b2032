package main

import (
	"context"
	"net"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/observability"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/server"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC API and metrics endpoint",
		Long: `serve runs the FileService gRPC API. With queue.driver=memory the thumbnail
worker runs in the same process; with asynq start "filetree worker" separately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger
	defer logger.Sync()

	mc, err := observability.InitMetrics()
	if err != nil {
		return err
	}
	metricsSrv := observability.StartMetricsServer(a.cfg.Server.MetricsAddr, mc, logger)

	var opts []grpc.ServerOption
	if a.cfg.Tracing.Enabled {
		tp, err := observability.InitTracerProvider(ctx, logger)
		if err != nil {
			return err
		}
		defer observability.ShutdownTracerProvider(context.Background(), tp, logger)
		opts = append(opts, observability.GRPCServerOption(tp))
	}

	grpcServer := server.NewGRPCServer(a.files, logger, mc, a.cfg.Server.MaxMessageBytes, opts...)

	lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if a.memQueue != nil {
		proc := worker.NewImageProcessor(a.store, a.blobs, logger)
		pw := worker.NewProcessingWorker(proc, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pw.RunLocal(workerCtx, a.memQueue.Consume(), a.cfg.Queue.Concurrency)
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting gRPC server", zap.String("addr", a.cfg.Server.GRPCAddr))
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("gRPC server stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
	stopWorker()
	wg.Wait()
	return err
}
