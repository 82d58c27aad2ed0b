package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marlinprotocol/oyster-watchdog/config"
	"github.com/marlinprotocol/oyster-watchdog/internal/adapters/watcher"
	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	"github.com/marlinprotocol/oyster-watchdog/internal/data"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/metrics"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/notify"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/notify/slack"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/statsd"
	"github.com/marlinprotocol/oyster-watchdog/internal/service"
)

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Watcher       *service.WatcherService
	Failures      core.FailureRepository
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink *statsd.Client
	Metrics     *metrics.Recorder
	Notifier    notify.Sink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Chain       core.ChainSource
	Logger      *slog.Logger
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var (
		metricsSink *statsd.Client
		sink        statsd.Sink
	)
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "watchdog",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
			sink = client
		}
	}

	var notifier notify.Sink
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Notifications.Slack.WebhookURL,
			Channel:    cfg.Notifications.Slack.Channel,
			Username:   cfg.Notifications.Slack.Username,
			Timeout:    cfg.Notifications.Timeout,
			RetryLimit: cfg.Notifications.RetryLimit,
		})
		if err != nil {
			obsLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			notifier = client
		}
	}

	return ObservabilityContainer{
		MetricsSink: metricsSink,
		Metrics:     metrics.NewRecorder(sink, nil),
		Notifier:    notifier,
	}
}

// NewServices wires the verification pipeline from configuration and
// infrastructure handles.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := deps.Config
	observability := buildObservability(logger, cfg.Observability)
	failures := data.NewFailureRepo(deps.DB)

	container := ServiceContainer{
		Failures:      failures,
		Observability: observability,
	}

	if !cfg.IsWatcherEnabled() {
		return container, nil
	}
	if deps.Chain == nil {
		return ServiceContainer{}, errors.New("chain source is required for the watcher service")
	}

	watcherSvc, err := buildWatcher(deps, failures, observability, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	container.Watcher = watcherSvc

	return container, nil
}

func buildWatcher(
	deps *ServiceDeps,
	failures core.FailureRepository,
	observability ObservabilityContainer,
	logger *slog.Logger,
) (*service.WatcherService, error) {
	cfg := deps.Config

	recorder, err := service.NewFailureRecorderService(service.FailureRecorderOptions{
		Repo:     failures,
		Logger:   logger,
		Metrics:  observability.Metrics,
		Notifier: observability.Notifier,
	})
	if err != nil {
		return nil, fmt.Errorf("build failure recorder: %w", err)
	}

	resolver, err := service.NewHTTPAddressResolver(service.AddressResolverOptions{
		Config: cfg.Verifier,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build address resolver: %w", err)
	}

	probe, err := service.NewTCPProbe(service.TCPProbeOptions{
		Port:    cfg.Verifier.ProbePort,
		Timeout: cfg.Verifier.ProbeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build reachability probe: %w", err)
	}

	crossChecker, err := service.NewGatewayCrossChecker(service.GatewayCrossCheckerOptions{
		Config: cfg.Verifier,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build cross checker: %w", err)
	}

	verifier, err := service.NewVerifierService(service.VerifierServiceOptions{
		Resolver:     resolver,
		Probe:        probe,
		CrossChecker: crossChecker,
		Recorder:     recorder,
		StartupGrace: cfg.Verifier.StartupGrace,
		Logger:       logger,
		Metrics:      observability.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build verifier: %w", err)
	}

	filter, err := service.NewMetadataFilter(service.MetadataFilterOptions{
		AllowedImages: cfg.Verifier.AllowedImages,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build metadata filter: %w", err)
	}

	cursor, err := buildCursor(deps, logger)
	if err != nil {
		return nil, err
	}

	watcherSvc, err := service.NewWatcherService(service.WatcherServiceOptions{
		Chain:       deps.Chain,
		Filter:      filter,
		Verifier:    verifier,
		Cursor:      cursor,
		MaxInFlight: cfg.Verifier.MaxInFlight,
		Logger:      logger,
		Metrics:     observability.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build watcher: %w", err)
	}

	return watcherSvc, nil
}

// buildCursor returns the durable watermark cursor, or nil when disabled.
func buildCursor(deps *ServiceDeps, logger *slog.Logger) (core.CursorRepository, error) {
	cfg := deps.Config.Chain
	if !cfg.CursorEnabled {
		return nil, nil
	}
	if deps.RedisClient == nil {
		return nil, errors.New("watermark cursor is enabled but no redis client is available")
	}

	repo, err := data.NewRedisCursorRepo(deps.RedisClient, cfg.CursorKey)
	if err != nil {
		return nil, fmt.Errorf("build watermark cursor: %w", err)
	}
	if logger != nil {
		logger.Info("durable watermark cursor enabled", "key", cfg.CursorKey)
	}
	return repo, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)

	httpServer := startHTTPServerIfEnabled(cfg, logger)
	watcherDone := startWatcherIfEnabled(serviceCtx, cfg, logger, errCh)

	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  httpServer,
		watcherDone: watcherDone,
		logger:      logger,
	})
}

func startWatcherIfEnabled(
	ctx context.Context,
	cfg *ServiceOrchestrationConfig,
	logger *slog.Logger,
	errCh chan<- error,
) <-chan struct{} {
	if !cfg.Config.IsWatcherEnabled() || cfg.Services.Watcher == nil {
		return nil
	}

	runner, err := watcher.NewRunner(watcher.RunnerOptions{
		Watcher:  cfg.Services.Watcher,
		Interval: cfg.Config.Chain.PollInterval,
		Logger:   logger,
		Metrics:  cfg.Services.Observability.Metrics,
	})
	if err != nil {
		failed := make(chan struct{})
		close(failed)
		errCh <- fmt.Errorf("build watcher runner: %w", err)
		return failed
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := runner.Run(ctx); err != nil {
			select {
			case errCh <- fmt.Errorf("watcher failed: %w", err):
			case <-ctx.Done():
			}
		}
	}()

	logger.InfoContext(ctx, "background service started", "service", "watcher")
	return done
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	watcherDone <-chan struct{}
	logger      *slog.Logger
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	if cfg.watcherDone != nil {
		select {
		case <-cfg.watcherDone:
			cfg.logger.Info("watcher stopped")
		case <-time.After(shutdownWaitTimeout):
			cfg.logger.Warn("timeout waiting for watcher to stop")
		}
	}

	return nil
}
