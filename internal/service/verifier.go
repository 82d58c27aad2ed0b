package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/metrics"
)

// verificationState names the stage a verification worker is in, for logs.
type verificationState string

const (
	stateAwaitingStartup verificationState = "awaiting_startup"
	stateResolving       verificationState = "resolving_address"
	stateProbing         verificationState = "probing_reachability"
	stateCrossChecking   verificationState = "cross_checking"
	stateDone            verificationState = "done"
)

// VerifierServiceOptions groups dependencies for VerifierService.
type VerifierServiceOptions struct {
	Resolver     core.AddressResolver   // Required: instance address discovery
	Probe        core.ReachabilityProbe // Required: point-in-time connectivity test
	CrossChecker core.EndpointChecker   // Required: second-source gateway check
	Recorder     core.Recorder          // Required: best-effort failure persistence
	StartupGrace time.Duration          // Optional: unconditional boot delay
	Logger       *slog.Logger           // Optional: structured logger
	Metrics      *metrics.Recorder      // Optional: metrics recorder
}

// VerifierService runs the per-job verification workflow: wait out the boot
// grace period, resolve the instance address, probe reachability, then
// cross-check the operator gateway. A stage failure records a diagnostic but
// only resolution failure short-circuits the remaining stages; a failed probe
// still proceeds to the cross-check because the two investigate different
// failure axes.
type VerifierService struct {
	resolver     core.AddressResolver
	probe        core.ReachabilityProbe
	crossChecker core.EndpointChecker
	recorder     core.Recorder
	startupGrace time.Duration
	logger       *slog.Logger
	metrics      *metrics.Recorder
}

// NewVerifierService constructs a VerifierService.
func NewVerifierService(opts VerifierServiceOptions) (*VerifierService, error) {
	if opts.Resolver == nil {
		return nil, errors.New("AddressResolver is required")
	}
	if opts.Probe == nil {
		return nil, errors.New("ReachabilityProbe is required")
	}
	if opts.CrossChecker == nil {
		return nil, errors.New("EndpointChecker is required")
	}
	if opts.Recorder == nil {
		return nil, errors.New("Recorder is required")
	}

	grace := opts.StartupGrace
	if grace < 0 {
		grace = 0
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "verifier")
	}

	return &VerifierService{
		resolver:     opts.Resolver,
		probe:        opts.Probe,
		crossChecker: opts.CrossChecker,
		recorder:     opts.Recorder,
		startupGrace: grace,
		logger:       logger,
		metrics:      opts.Metrics,
	}, nil
}

// Verify runs the workflow for one task to completion. It never returns an
// error: verification failures are the system's product and are persisted,
// not propagated.
func (s *VerifierService) Verify(ctx context.Context, task *model.VerificationTask) {
	if task == nil {
		return
	}

	start := time.Now()
	result := metrics.ResultOK

	s.logState(ctx, task, stateAwaitingStartup)
	if !s.awaitStartup(ctx) {
		s.metrics.Verification(metrics.ResultSkipped, time.Since(start))
		return
	}

	s.logState(ctx, task, stateResolving)
	address, err := s.resolver.Resolve(ctx, task)
	if err != nil {
		// No address to probe or cross-check; record and terminate.
		s.recorder.Record(ctx, &model.CreateFailureRequest{
			Kind:     model.FailureKindReachability,
			Job:      task.JobID,
			Operator: task.OperatorText(),
			IP:       model.IPUnknown,
			Error:    err.Error(),
		})
		s.logState(ctx, task, stateDone)
		s.metrics.Verification(metrics.ResultReachability, time.Since(start))
		return
	}

	s.logState(ctx, task, stateProbing)
	if err := s.probe.Probe(ctx, address); err != nil {
		s.recorder.Record(ctx, &model.CreateFailureRequest{
			Kind:     model.FailureKindReachability,
			Job:      task.JobID,
			Operator: task.OperatorText(),
			IP:       address,
			Error:    "instance reachability test failed: " + err.Error(),
		})
		result = metrics.ResultReachability
	}

	s.logState(ctx, task, stateCrossChecking)
	if _, err := s.crossChecker.Check(ctx, task.JobID); err != nil {
		s.recorder.Record(ctx, &model.CreateFailureRequest{
			Kind:     model.FailureKindEndpoint,
			Job:      task.JobID,
			Operator: task.OperatorText(),
			IP:       address,
			Error:    err.Error(),
		})
		if result == metrics.ResultOK {
			result = metrics.ResultEndpoint
		}
	}

	s.logState(ctx, task, stateDone)
	s.metrics.Verification(result, time.Since(start))
}

// awaitStartup waits out the boot grace period. Returns false when the
// process is shutting down before the wait completed.
func (s *VerifierService) awaitStartup(ctx context.Context) bool {
	if s.startupGrace <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(s.startupGrace)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *VerifierService) logState(ctx context.Context, task *model.VerificationTask, state verificationState) {
	if s.logger == nil {
		return
	}
	s.logger.DebugContext(ctx, "verification state",
		"attempt", task.AttemptID,
		"job", task.JobID,
		"state", state,
	)
}
