package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/scholarship-directory/internal/app"
	"github.com/samvad-hq/scholarship-directory/internal/config"
	"github.com/samvad-hq/scholarship-directory/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "directory start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("directory starting", "config", map[string]any{
		"app_env":          cfg.Env,
		"sources_file":     cfg.SourcesFile,
		"active_source":    cfg.ActiveSource,
		"publishers_file":  cfg.PublishersFile,
		"refresh_interval": cfg.RefreshInterval.String(),
		"http_addr":        cfg.HTTPAddr,
		"storage_type":     cfg.StorageType,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	directory, err := app.NewDirectory(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize directory", "error", err)
		return err
	}

	if err := directory.Run(ctx); err != nil {
		return fmt.Errorf("directory run: %w", err)
	}
	return nil
}
