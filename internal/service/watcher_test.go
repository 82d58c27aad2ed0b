package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
)

type blockRange struct {
	from, to uint64
}

type fakeChain struct {
	mu       sync.Mutex
	head     uint64
	headErr  error
	events   map[blockRange][]model.JobEvent
	queryErr error
	queried  []blockRange

	providerURL string
	providerErr error
}

func (c *fakeChain) HeadBlock(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headErr != nil {
		return 0, c.headErr
	}
	return c.head, nil
}

func (c *fakeChain) JobOpenedEvents(_ context.Context, from, to uint64) ([]model.JobEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	r := blockRange{from: from, to: to}
	c.queried = append(c.queried, r)
	return c.events[r], nil
}

func (c *fakeChain) ProviderURL(context.Context, common.Address) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.providerErr != nil {
		return "", c.providerErr
	}
	return c.providerURL, nil
}

func (c *fakeChain) ranges() []blockRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]blockRange(nil), c.queried...)
}

type dispatchRecorder struct {
	mu    sync.Mutex
	tasks []*model.VerificationTask
}

func (d *dispatchRecorder) Verify(_ context.Context, task *model.VerificationTask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
}

func (d *dispatchRecorder) dispatched() []*model.VerificationTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*model.VerificationTask(nil), d.tasks...)
}

type memoryCursor struct {
	mu      sync.Mutex
	height  uint64
	stored  bool
	loadErr error
	saveErr error
}

func (c *memoryCursor) Load(context.Context) (uint64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return 0, false, c.loadErr
	}
	return c.height, c.stored, nil
}

func (c *memoryCursor) Save(_ context.Context, height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.height = height
	c.stored = true
	return nil
}

func inScopeEvent(jobID string, block uint64) model.JobEvent {
	return model.JobEvent{
		JobID:       jobID,
		Operator:    testOperator(),
		Metadata:    `{"url":"` + allowedImage + `","region":"us-east"}`,
		BlockNumber: block,
	}
}

func newTestWatcher(t *testing.T, chain *fakeChain, verifier TaskVerifier, cursor *memoryCursor) *WatcherService {
	t.Helper()

	opts := WatcherServiceOptions{
		Chain:    chain,
		Filter:   newTestFilter(t),
		Verifier: verifier,
	}
	if cursor != nil {
		opts.Cursor = cursor
	}

	watcher, err := NewWatcherService(opts)
	require.NoError(t, err)
	return watcher
}

func TestNewWatcherServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewWatcherService(WatcherServiceOptions{})
	require.Error(t, err)

	_, err = NewWatcherService(WatcherServiceOptions{Chain: &fakeChain{}})
	require.Error(t, err)
}

func TestBootstrapFromChainHead(t *testing.T) {
	t.Parallel()

	chain := &fakeChain{head: 100, providerURL: "https://cp.example.com"}
	watcher := newTestWatcher(t, chain, &dispatchRecorder{}, nil)

	require.NoError(t, watcher.Bootstrap(context.Background()))
	assert.Equal(t, uint64(100), watcher.Watermark())
}

func TestBootstrapFromCursor(t *testing.T) {
	t.Parallel()

	chain := &fakeChain{head: 100, providerURL: "https://cp.example.com"}
	cursor := &memoryCursor{height: 80, stored: true}
	watcher := newTestWatcher(t, chain, &dispatchRecorder{}, cursor)

	require.NoError(t, watcher.Bootstrap(context.Background()))
	assert.Equal(t, uint64(80), watcher.Watermark())
}

func TestBootstrapEmptyCursorFallsBackToHead(t *testing.T) {
	t.Parallel()

	chain := &fakeChain{head: 100, providerURL: "https://cp.example.com"}
	cursor := &memoryCursor{}
	watcher := newTestWatcher(t, chain, &dispatchRecorder{}, cursor)

	require.NoError(t, watcher.Bootstrap(context.Background()))
	assert.Equal(t, uint64(100), watcher.Watermark())
}

// Successive ticks cover the block range exactly once, with no gaps and no
// overlaps, and the watermark follows the observed head.
func TestTickRangesCoverChainWithoutGaps(t *testing.T) {
	t.Parallel()

	verifier := &dispatchRecorder{}
	chain := &fakeChain{
		head:        100,
		providerURL: "https://cp.example.com",
		events: map[blockRange][]model.JobEvent{
			{from: 101, to: 103}: {inScopeEvent("0xabc123", 102)},
			{from: 104, to: 110}: {inScopeEvent("0xdef456", 105), inScopeEvent("0xfeed99", 110)},
		},
	}
	watcher := newTestWatcher(t, chain, verifier, nil)
	require.NoError(t, watcher.Bootstrap(context.Background()))

	// Head unchanged since bootstrap: no-op tick.
	count, err := watcher.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, uint64(100), watcher.Watermark())

	chain.mu.Lock()
	chain.head = 103
	chain.mu.Unlock()
	count, err = watcher.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, uint64(103), watcher.Watermark())

	chain.mu.Lock()
	chain.head = 110
	chain.mu.Unlock()
	count, err = watcher.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, uint64(110), watcher.Watermark())

	assert.Equal(t, []blockRange{{from: 101, to: 103}, {from: 104, to: 110}}, chain.ranges())

	watcher.Drain()
	dispatched := verifier.dispatched()
	require.Len(t, dispatched, 3)
	for _, task := range dispatched {
		assert.NotEmpty(t, task.AttemptID)
		assert.Equal(t, "https://cp.example.com", task.ControlPlaneURL)
		assert.Equal(t, "us-east", task.Region)
	}
}

// A failed tick leaves the watermark untouched so the next tick re-queries
// the same range: at-least-once delivery.
func TestTickFailureLeavesWatermarkUntouched(t *testing.T) {
	t.Parallel()

	verifier := &dispatchRecorder{}
	chain := &fakeChain{
		head:        100,
		providerURL: "https://cp.example.com",
		events: map[blockRange][]model.JobEvent{
			{from: 101, to: 105}: {inScopeEvent("0xabc123", 104)},
		},
	}
	watcher := newTestWatcher(t, chain, verifier, nil)
	require.NoError(t, watcher.Bootstrap(context.Background()))

	chain.mu.Lock()
	chain.head = 105
	chain.queryErr = errors.New("rpc timeout")
	chain.mu.Unlock()

	_, err := watcher.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, uint64(100), watcher.Watermark())

	chain.mu.Lock()
	chain.queryErr = nil
	chain.mu.Unlock()

	count, err := watcher.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, uint64(105), watcher.Watermark())
}

func TestTickProviderLookupFailureAbortsBeforeDispatch(t *testing.T) {
	t.Parallel()

	verifier := &dispatchRecorder{}
	chain := &fakeChain{
		head:        100,
		providerErr: errors.New("rpc down"),
		events: map[blockRange][]model.JobEvent{
			{from: 101, to: 105}: {inScopeEvent("0xabc123", 104)},
		},
	}
	watcher := newTestWatcher(t, chain, verifier, nil)
	require.NoError(t, watcher.Bootstrap(context.Background()))

	chain.mu.Lock()
	chain.head = 105
	chain.mu.Unlock()

	_, err := watcher.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, uint64(100), watcher.Watermark())
	watcher.Drain()
	assert.Empty(t, verifier.dispatched())
}

// Out-of-scope jobs spawn no workers and write no records.
func TestTickFiltersOutOfScopeEvents(t *testing.T) {
	t.Parallel()

	verifier := &dispatchRecorder{}
	chain := &fakeChain{
		head:        100,
		providerURL: "https://cp.example.com",
		events: map[blockRange][]model.JobEvent{
			{from: 101, to: 105}: {
				{JobID: "0x01", Operator: testOperator(), Metadata: `{"region":"us-east"}`},
				{JobID: "0x02", Operator: testOperator(), Metadata: `{"url":"https://evil.example.com/x.eif"}`},
				{JobID: "0x03", Operator: testOperator(), Metadata: `not json`},
			},
		},
	}
	watcher := newTestWatcher(t, chain, verifier, nil)
	require.NoError(t, watcher.Bootstrap(context.Background()))

	chain.mu.Lock()
	chain.head = 105
	chain.mu.Unlock()

	count, err := watcher.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	// The range still counts as processed.
	assert.Equal(t, uint64(105), watcher.Watermark())
	watcher.Drain()
	assert.Empty(t, verifier.dispatched())
}

func TestTickPersistsCursor(t *testing.T) {
	t.Parallel()

	chain := &fakeChain{head: 100, providerURL: "https://cp.example.com"}
	cursor := &memoryCursor{}
	watcher := newTestWatcher(t, chain, &dispatchRecorder{}, cursor)
	require.NoError(t, watcher.Bootstrap(context.Background()))

	chain.mu.Lock()
	chain.head = 105
	chain.mu.Unlock()

	_, err := watcher.Tick(context.Background())
	require.NoError(t, err)

	height, ok, err := cursor.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(105), height)
}

// A cursor write failure is logged but never fails the tick.
func TestTickSurvivesCursorSaveFailure(t *testing.T) {
	t.Parallel()

	chain := &fakeChain{head: 100, providerURL: "https://cp.example.com"}
	cursor := &memoryCursor{saveErr: errors.New("redis down")}
	watcher := newTestWatcher(t, chain, &dispatchRecorder{}, cursor)
	require.NoError(t, watcher.Bootstrap(context.Background()))

	chain.mu.Lock()
	chain.head = 105
	chain.mu.Unlock()

	_, err := watcher.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(105), watcher.Watermark())
}
