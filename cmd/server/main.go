package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/config"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/observability"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "filetree: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filetree",
		Short: "File metadata service with an async thumbnail pipeline",
		Long: `filetree stores user files and folders, serves their metadata over gRPC,
and generates image thumbnails in the background.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment variables FILETREE_* override it)")
	cmd.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newTokenCmd(),
	)
	return cmd
}

// bootstrap loads config, builds the logger and opens every backend.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := observability.InitLogger(cfg.Logging.Dev, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open backends", zap.Error(err))
		logger.Sync()
		return nil, err
	}
	return a, nil
}
