package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/target/pulsecare-portal/config"
	"github.com/target/pulsecare-portal/internal/adapters/identityhttp"
	"github.com/target/pulsecare-portal/internal/observability/metrics"
	"github.com/target/pulsecare-portal/internal/observability/statsd"
	"github.com/target/pulsecare-portal/internal/ports"
	"github.com/target/pulsecare-portal/internal/service/rolememory"
	"github.com/target/pulsecare-portal/internal/service/session"
)

// ServiceContainer holds the portal's wired services.
type ServiceContainer struct {
	Sessions *session.Machine
	Identity *identityhttp.Client
	Roles    *rolememory.Memory
	Metrics  statsd.Sink

	closers []func() error
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Store  ports.KeyValueStore
	Logger *slog.Logger
	// HTTPTransport overrides the identity client's round tripper. Optional.
	HTTPTransport http.RoundTripper
}

// NewServices builds the identity client, role memory, and session machine, and connects the
// client's 401 hook to the machine.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("key-value store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	sink, closeSink := buildMetricsSink(ctx, cfg.Observability.Metrics, logger)
	c := &ServiceContainer{Metrics: sink}
	if closeSink != nil {
		c.closers = append(c.closers, closeSink)
	}

	client, err := identityhttp.NewClient(identityhttp.Options{
		BaseURL:       cfg.Identity.BaseURL,
		Strategy:      identityhttp.Strategy(cfg.Identity.Strategy),
		Timeout:       cfg.Identity.RequestTimeout,
		IdentityPath:  cfg.Identity.UserPath,
		TokenPath:     cfg.Identity.TokenPath,
		BaseTransport: deps.HTTPTransport,
		Logger:        logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("identity client: %w", err), c.Close())
	}
	c.Identity = client

	c.Roles = rolememory.New(deps.Store, logger)

	machine, err := session.New(session.Options{
		Transport:      client,
		Store:          deps.Store,
		Roles:          c.Roles,
		PersistToken:   cfg.Identity.PersistsToken(),
		RestoreTimeout: cfg.Identity.RestoreTimeout,
		Logger:         logger,
		Observers:      []session.Observer{metrics.SessionObserver(sink)},
		OnAttempt:      metrics.AuthAttemptRecorder(sink),
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("session machine: %w", err), c.Close())
	}
	c.Sessions = machine
	c.closers = append([]func() error{func() error { machine.Close(); return nil }}, c.closers...)

	client.SetUnauthorizedHandler(machine.HandleUnauthorized)

	logger.InfoContext(ctx, "portal services ready",
		"identity_base_url", cfg.Identity.BaseURL,
		"transport", cfg.Identity.Strategy,
		"metrics_enabled", cfg.Observability.Metrics.IsEnabled(),
	)
	return c, nil
}

// Close stops the session machine and releases the metrics connection.
func (c *ServiceContainer) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// buildMetricsSink dials StatsD when metrics are enabled. A failed dial is logged and metrics are
// discarded rather than failing startup.
func buildMetricsSink(
	ctx context.Context,
	cfg config.ObservabilityMetricsConfig,
	logger *slog.Logger,
) (statsd.Sink, func() error) {
	if !cfg.IsEnabled() {
		return statsd.Noop{}, nil
	}

	obsLogger := logger.With("component", "observability")
	client, err := statsd.Dial(ctx, statsd.Config{
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  obsLogger,
	})
	if err != nil {
		obsLogger.ErrorContext(ctx, "failed to initialise statsd client", "error", err)
		return statsd.Noop{}, nil
	}
	return client, client.Close
}
