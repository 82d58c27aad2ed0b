package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	"github.com/marlinprotocol/oyster-watchdog/internal/observability/metrics"
)

// TaskVerifier runs the verification workflow for one dispatched task.
type TaskVerifier interface {
	Verify(ctx context.Context, task *model.VerificationTask)
}

// WatcherServiceOptions groups dependencies for WatcherService.
type WatcherServiceOptions struct {
	Chain       core.ChainSource      // Required: market contract view
	Filter      *MetadataFilter       // Required: in-scope decision
	Verifier    TaskVerifier          // Required: per-task workflow
	Cursor      core.CursorRepository // Optional: durable watermark storage
	MaxInFlight int64                 // Optional: concurrent verification cap
	Logger      *slog.Logger          // Optional: structured logger
	Metrics     *metrics.Recorder     // Optional: metrics recorder
}

// WatcherService owns the block watermark and turns new chain blocks into
// dispatched verification tasks. The watermark advances only after every
// in-scope event of a range has been handed to a worker, so a failed tick
// re-queries the same range next time and delivery is at-least-once.
type WatcherService struct {
	chain    core.ChainSource
	filter   *MetadataFilter
	verifier TaskVerifier
	cursor   core.CursorRepository
	sem      *semaphore.Weighted
	logger   *slog.Logger
	metrics  *metrics.Recorder

	// watermark is touched only by Bootstrap and Tick, which the runner
	// calls from a single goroutine.
	watermark uint64

	wg sync.WaitGroup
}

// NewWatcherService constructs a WatcherService.
func NewWatcherService(opts WatcherServiceOptions) (*WatcherService, error) {
	if opts.Chain == nil {
		return nil, errors.New("ChainSource is required")
	}
	if opts.Filter == nil {
		return nil, errors.New("MetadataFilter is required")
	}
	if opts.Verifier == nil {
		return nil, errors.New("TaskVerifier is required")
	}

	maxInFlight := opts.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "watcher")
	}

	return &WatcherService{
		chain:    opts.Chain,
		filter:   opts.Filter,
		verifier: opts.Verifier,
		cursor:   opts.Cursor,
		sem:      semaphore.NewWeighted(maxInFlight),
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// Bootstrap initializes the watermark: from the durable cursor when one is
// stored, otherwise from the current chain head ("from now"). Events between
// the last saved cursor and a crash-free shutdown are replayed; without a
// cursor, events emitted while the process was down are skipped.
func (s *WatcherService) Bootstrap(ctx context.Context) error {
	if s.cursor != nil {
		height, ok, err := s.cursor.Load(ctx)
		if err != nil {
			return fmt.Errorf("load watermark cursor: %w", err)
		}
		if ok {
			s.watermark = height
			if s.logger != nil {
				s.logger.InfoContext(ctx, "watermark restored from cursor", "height", height)
			}
			return nil
		}
	}

	head, err := s.chain.HeadBlock(ctx)
	if err != nil {
		return fmt.Errorf("query chain head: %w", err)
	}
	s.watermark = head
	if s.logger != nil {
		s.logger.InfoContext(ctx, "watermark initialized from chain head", "height", head)
	}
	return nil
}

// Watermark returns the last fully-processed block height.
func (s *WatcherService) Watermark() uint64 {
	return s.watermark
}

// Tick processes one poll cycle and returns the number of dispatched tasks.
// On any error the watermark is untouched and the same range is re-queried
// on the next tick.
func (s *WatcherService) Tick(ctx context.Context) (int, error) {
	head, err := s.chain.HeadBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("query chain head: %w", err)
	}
	if head <= s.watermark {
		return 0, nil
	}

	from, to := s.watermark+1, head
	events, err := s.chain.JobOpenedEvents(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("query events [%d, %d]: %w", from, to, err)
	}

	tasks, err := s.buildTasks(ctx, events)
	if err != nil {
		return 0, err
	}

	for _, task := range tasks {
		if err := s.dispatch(ctx, task); err != nil {
			return 0, err
		}
	}

	s.watermark = head
	s.metrics.Watermark(head)
	s.saveCursor(ctx, head)

	if s.logger != nil && len(tasks) > 0 {
		s.logger.InfoContext(ctx, "dispatched verification tasks",
			"count", len(tasks),
			"from", from,
			"to", to,
		)
	}

	return len(tasks), nil
}

// Drain blocks until all in-flight verification workers have finished.
func (s *WatcherService) Drain() {
	s.wg.Wait()
}

// buildTasks filters the events and resolves operator control-plane URLs.
// Provider lookups are chain RPCs, so a failure aborts the whole tick before
// anything is dispatched.
func (s *WatcherService) buildTasks(ctx context.Context, events []model.JobEvent) ([]*model.VerificationTask, error) {
	tasks := make([]*model.VerificationTask, 0, len(events))
	providerURLs := make(map[common.Address]string)

	for _, event := range events {
		meta, ok := s.filter.Evaluate(event)
		if !ok {
			continue
		}

		controlPlane, cached := providerURLs[event.Operator]
		if !cached {
			url, err := s.chain.ProviderURL(ctx, event.Operator)
			if err != nil {
				return nil, fmt.Errorf("resolve provider url for %s: %w", event.Operator.Hex(), err)
			}
			providerURLs[event.Operator] = url
			controlPlane = url
		}

		if controlPlane == "" {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "skipping job with unregistered operator",
					"job", event.JobID,
					"operator", event.Operator.Hex(),
				)
			}
			continue
		}

		tasks = append(tasks, &model.VerificationTask{
			AttemptID:       uuid.NewString(),
			JobID:           event.JobID,
			Operator:        event.Operator,
			ControlPlaneURL: controlPlane,
			Region:          meta.RegionOrDefault(),
		})
	}

	return tasks, nil
}

// dispatch hands a task to a worker goroutine without waiting for completion.
// The semaphore bounds in-flight verifications so a burst of qualifying
// events cannot grow tasks without limit.
func (s *WatcherService) dispatch(ctx context.Context, task *model.VerificationTask) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker slot: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)
		s.verifier.Verify(ctx, task)
	}()

	return nil
}

func (s *WatcherService) saveCursor(ctx context.Context, height uint64) {
	if s.cursor == nil {
		return
	}
	if err := s.cursor.Save(ctx, height); err != nil && s.logger != nil {
		// The in-memory watermark still advanced; a restart replays from the
		// last saved height, which is at-least-once.
		s.logger.WarnContext(ctx, "watermark cursor save failed",
			"height", height,
			"error", err,
		)
	}
}
