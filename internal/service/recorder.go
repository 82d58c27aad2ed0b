package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/metrics"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/notify"
)

// notifyTimeout bounds the best-effort notification delivery so a slow
// webhook cannot hold a verification worker.
const notifyTimeout = 10 * time.Second

// FailureRecorderOptions groups dependencies for FailureRecorderService.
type FailureRecorderOptions struct {
	Repo     core.FailureRepository // Required: failure persistence
	Logger   *slog.Logger           // Optional: structured logger
	Metrics  *metrics.Recorder      // Optional: metrics recorder
	Notifier notify.Sink            // Optional: failure notification sink
}

// FailureRecorderService persists verification failures. Writes are strictly
// best-effort: a persistence or notification error is logged and swallowed so
// telemetry can never break the verification pipeline.
type FailureRecorderService struct {
	repo     core.FailureRepository
	logger   *slog.Logger
	metrics  *metrics.Recorder
	notifier notify.Sink
}

var _ core.Recorder = (*FailureRecorderService)(nil)

// NewFailureRecorderService constructs a FailureRecorderService.
func NewFailureRecorderService(opts FailureRecorderOptions) (*FailureRecorderService, error) {
	if opts.Repo == nil {
		return nil, errors.New("FailureRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "failure_recorder")
	}

	return &FailureRecorderService{
		repo:     opts.Repo,
		logger:   logger,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
	}, nil
}

// Record persists one failure and fans out the notification. Errors never
// propagate to the caller.
func (s *FailureRecorderService) Record(ctx context.Context, req *model.CreateFailureRequest) {
	if req == nil {
		return
	}

	record, err := s.repo.Insert(ctx, req)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failure record write failed",
				"kind", req.Kind,
				"job", req.Job,
				"operator", req.Operator,
				"error", err,
			)
		}
		return
	}

	s.metrics.FailureRecorded(string(record.Kind))
	if s.logger != nil {
		s.logger.Info("verification failure recorded",
			"kind", record.Kind,
			"job", record.Job,
			"operator", record.Operator,
			"ip", record.IP,
			"reason", record.Error,
		)
	}

	s.sendNotification(ctx, record)
}

func (s *FailureRecorderService) sendNotification(ctx context.Context, record *model.FailureRecord) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	err := s.notifier.NotifyFailure(ctx, notify.VerificationFailure{
		Job:      record.Job,
		Operator: record.Operator,
		IP:       record.IP,
		Kind:     string(record.Kind),
		Reason:   record.Error,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("failure notification delivery failed",
			"job", record.Job,
			"error", err,
		)
	}
}
