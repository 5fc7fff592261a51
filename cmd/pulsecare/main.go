package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/target/pulsecare-portal/config"
	"github.com/target/pulsecare-portal/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) (err error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	store, err := bootstrap.BuildKVStore(ctx, bootstrap.StorageDeps{
		Storage: cfg.Storage,
		Redis:   cfg.Redis,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close storage failed", "error", cerr)
			err = errors.Join(err, cerr)
		}
	}()

	services, err := bootstrap.NewServices(ctx, &bootstrap.ServiceDeps{
		Config: &cfg,
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close services failed", "error", cerr)
		}
	}()

	return bootstrap.Run(ctx, &bootstrap.RunConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting pulsecare portal",
		"addr", cfg.HTTP.Addr,
		"identity_base_url", cfg.Identity.BaseURL,
		"transport", cfg.Identity.Strategy,
		"storage_backend", cfg.Storage.Backend,
		"dev", cfg.IsDev)
}
