package watcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	bootstrapErr error
	tickErr      error
	bootstraps   atomic.Int32
	ticks        atomic.Int32
	drains       atomic.Int32
}

func (s *fakeSource) Bootstrap(context.Context) error {
	s.bootstraps.Add(1)
	return s.bootstrapErr
}

func (s *fakeSource) Tick(context.Context) (int, error) {
	s.ticks.Add(1)
	return 1, s.tickErr
}

func (s *fakeSource) Drain() {
	s.drains.Add(1)
}

func TestNewRunnerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(RunnerOptions{})
	require.Error(t, err)

	runner, err := NewRunner(RunnerOptions{Source: &fakeSource{}})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, runner.interval)
}

func TestRunStopsOnBootstrapFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{bootstrapErr: errors.New("rpc down")}
	runner, err := NewRunner(RunnerOptions{Source: source, Interval: time.Millisecond})
	require.NoError(t, err)

	err = runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), source.bootstraps.Load())
	assert.Zero(t, source.ticks.Load())
}

func TestRunTicksUntilCancelled(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	runner, err := NewRunner(RunnerOptions{Source: source, Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool {
		return source.ticks.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), source.drains.Load())
}

// Tick failures never stop the loop.
func TestRunSurvivesTickErrors(t *testing.T) {
	t.Parallel()

	source := &fakeSource{tickErr: errors.New("rpc timeout")}
	runner, err := NewRunner(RunnerOptions{Source: source, Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool {
		return source.ticks.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
