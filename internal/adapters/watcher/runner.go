// Package watcher provides the adapter that runs the block watcher loop.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marlinprotocol/oyster-watchdog/internal/observability/metrics"
	"github.com/marlinprotocol/oyster-watchdog/internal/service"
)

// tickSource is the subset of the watcher service the runner drives.
type tickSource interface {
	Bootstrap(ctx context.Context) error
	Tick(ctx context.Context) (int, error)
	Drain()
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Watcher  *service.WatcherService // Required: the watcher service
	Interval time.Duration           // Optional: poll interval, defaults to 10s
	Logger   *slog.Logger            // Optional: structured logger
	Metrics  *metrics.Recorder       // Optional: metrics recorder

	// Optional source override for tests.
	Source tickSource
}

// Runner drives the watcher's poll loop on a fixed timer. A failed tick is
// logged and retried on the next interval; the loop only stops when the
// context is cancelled.
type Runner struct {
	source   tickSource
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// NewRunner creates a watcher runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	source := opts.Source
	if source == nil {
		source = opts.Watcher
	}

	return &Runner{
		source:   source,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "watcher_runner"),
		metrics:  opts.Metrics,
	}, nil
}

func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Watcher == nil && opts.Source == nil {
		return errors.New("watcher service is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run bootstraps the watermark and polls until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting watcher runner", "interval", r.interval)

	if err := r.source.Bootstrap(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "watcher runner stopping", "reason", ctx.Err())
			r.drainWorkers()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			start := time.Now()
			dispatched, err := r.source.Tick(ctx)
			elapsed := time.Since(start)

			r.metrics.Tick(elapsed, dispatched, err)

			if err != nil {
				if isContextCancellation(err) {
					continue
				}
				// Watermark untouched; the same range is re-queried next tick.
				r.logger.Error("watcher tick failed", "error", err)
			}
		}
	}
}

// drainWorkers waits briefly for in-flight verifications to wind down so a
// shutdown doesn't drop records that were about to be written.
func (r *Runner) drainWorkers() {
	done := make(chan struct{})
	go func() {
		r.source.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		r.logger.Warn("shutdown drain timed out with verifications in flight")
	}
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
