package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/target/pulsecare-portal/config"
)

// RunConfig groups what Run needs.
type RunConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// Run starts the session restore and the HTTP server, then blocks until SIGINT/SIGTERM, ctx
// cancellation, or a server failure. The server is shut down gracefully before returning.
func Run(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("run config requires config and services")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := cfg.Services.Sessions
	sessions.Start(ctx)

	errCh := make(chan error, 1)
	server, err := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	}, errCh)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, werr := sessions.Wait(gctx)
		if werr != nil {
			return nil //nolint:nilerr // shutdown before the restore settled is not a failure
		}
		logger.InfoContext(gctx, "session restore settled", "status", snap.Status, "role", snap.Role())
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case serr := <-errCh:
			return serr
		}
	})

	runErr := g.Wait()
	if runErr == nil {
		logger.Info("shutting down portal...")
	} else {
		logger.Error("service error", "error", runErr)
	}

	shutdownErr := ShutdownHTTPServer(ShutdownConfig{
		Context: context.WithoutCancel(ctx),
		Server:  server,
		Timeout: cfg.Config.HTTP.ShutdownTimeout,
		Logger:  logger,
	})
	return errors.Join(runErr, shutdownErr)
}
