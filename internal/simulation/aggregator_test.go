package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanonhq/kanon/internal/log"
)

// recordingStore captures SetItem calls for assertions.
type recordingStore struct {
	mu       sync.Mutex
	items    map[string]any
	failWith error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{items: make(map[string]any)}
}

func (s *recordingStore) SetItem(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.items[key] = value
	return nil
}

func (s *recordingStore) get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

func testStrategies(n int) []RequestStrategy {
	out := make([]RequestStrategy, n)
	for i := range out {
		out[i] = RequestStrategy{
			ID:    fmt.Sprintf("strategy-%d", i+1),
			Title: fmt.Sprintf("Strategy %d", i+1),
		}
	}
	return out
}

func runEvent(strategyID, runID string, score float64) *Event {
	return &Event{
		Type:       EventRunComplete,
		StrategyID: strategyID,
		Run:        &RawRun{RunID: runID, Variation: "Standard Approach", Score: Score(score)},
	}
}

func TestAggregator_HappyPath(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	agg := NewAggregator(store, log.NewNop())
	ctx := context.Background()

	strategies := testStrategies(3)
	agg.Begin(strategies)
	assert.Equal(t, StateRequesting, agg.State())
	assert.Equal(t, 9, agg.TotalRuns())

	agg.StreamStarted()
	assert.Equal(t, StateStreaming, agg.State())
	assert.Equal(t, 5, agg.Progress())

	for _, s := range strategies {
		for r := range RunsPerStrategy {
			ev := runEvent(s.ID, fmt.Sprintf("%s-run-%d", s.ID, r), 7)
			require.NoError(t, agg.Apply(ctx, ev))
		}
		require.NoError(t, agg.Apply(ctx, &Event{
			Type:     EventStrategyComplete,
			Strategy: &StrategyResult{StrategyTitle: s.Title, AverageScore: 7, WinsCount: 3, TotalRuns: 3},
		}))
	}

	assert.Equal(t, 9, agg.CompletedRuns())
	assert.Equal(t, 9, agg.RunCount())
	assert.Equal(t, 95, agg.Progress(), "progress stays below 100 until the terminal event")

	results := []StrategyResult{{StrategyTitle: "Strategy 1", AverageScore: 7, WinsCount: 3, TotalRuns: 3}}
	require.NoError(t, agg.Apply(ctx, &Event{Type: EventComplete, Results: results}))

	assert.Equal(t, StateDone, agg.State())
	assert.Equal(t, 100, agg.Progress())
	assert.Equal(t, results, agg.Results())

	stored, ok := store.get(ResultsKey)
	require.True(t, ok, "results must be written durably on complete")
	assert.Equal(t, results, stored)
}

func TestAggregator_ProgressMonotonic(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()

	strategies := testStrategies(4)
	agg.Begin(strategies)
	agg.StreamStarted()

	prev := agg.Progress()
	for _, s := range strategies {
		for r := range RunsPerStrategy {
			require.NoError(t, agg.Apply(ctx, runEvent(s.ID, fmt.Sprintf("%s-run-%d", s.ID, r), 5)))
			p := agg.Progress()
			assert.GreaterOrEqual(t, p, prev)
			assert.LessOrEqual(t, p, 99)
			prev = p
		}
	}

	require.NoError(t, agg.Apply(ctx, &Event{Type: EventComplete}))
	assert.Equal(t, 100, agg.Progress())
}

func TestAggregator_ProgressFormula(t *testing.T) {
	t.Parallel()

	// 3 strategies, 9 runs: round(k/9*90)+5.
	want := []int{15, 25, 35, 45, 55, 65, 75, 85, 95}

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(3))
	agg.StreamStarted()

	for k, p := range want {
		require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", fmt.Sprintf("r%d", k), 5)))
		assert.Equal(t, p, agg.Progress(), "after run %d", k+1)
	}
}

func TestAggregator_RunsBucketedPerStrategy(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(2))
	agg.StreamStarted()

	// Interleaved arrival across strategies; order within each bucket must
	// match emission order.
	require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", "a", 7)))
	require.NoError(t, agg.Apply(ctx, runEvent("strategy-2", "b", 4)))
	require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", "c", 8)))

	first := agg.RunsForStrategy("strategy-1")
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].RunID)
	assert.Equal(t, "c", first[1].RunID)
	assert.Len(t, agg.RunsForStrategy("strategy-2"), 1)
}

func TestAggregator_UnknownStrategyStillBucketed(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(1))
	agg.StreamStarted()

	require.NoError(t, agg.Apply(ctx, runEvent("strategy-99", "x", 6)))

	assert.Len(t, agg.RunsForStrategy("strategy-99"), 1)
	assert.Equal(t, 1, agg.CompletedRuns())
}

func TestAggregator_ErrorEventShortCircuits(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	agg := NewAggregator(store, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(2))
	agg.StreamStarted()

	require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", "a", 7)))

	err := agg.Apply(ctx, &Event{Type: EventError, Error: "model quota exhausted"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "model quota exhausted")
	assert.Equal(t, StateFailed, agg.State())
	assert.ErrorIs(t, agg.Err(), ErrUpstream)

	// Frames after the terminal error are ignored.
	require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", "b", 7)))
	assert.Equal(t, 1, agg.CompletedRuns())

	_, ok := store.get(ResultsKey)
	assert.False(t, ok, "no durable write on failure")
}

func TestAggregator_FramesAfterDoneIgnored(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(1))
	agg.StreamStarted()

	require.NoError(t, agg.Apply(ctx, &Event{Type: EventComplete}))
	require.Equal(t, StateDone, agg.State())

	require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", "late", 7)))
	assert.Zero(t, agg.CompletedRuns())
	assert.Equal(t, 100, agg.Progress())
}

func TestAggregator_StoreWriteFailure(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	store.failWith = errors.New("disk full")
	agg := NewAggregator(store, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(1))
	agg.StreamStarted()

	err := agg.Apply(ctx, &Event{Type: EventComplete, Results: []StrategyResult{{StrategyTitle: "s"}}})
	require.Error(t, err)
	assert.Equal(t, StateFailed, agg.State())
	assert.NotEqual(t, 100, agg.Progress())
}

func TestAggregator_UnknownEventTypeIgnored(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(1))
	agg.StreamStarted()

	require.NoError(t, agg.Apply(ctx, &Event{Type: "heartbeat"}))
	assert.Equal(t, StateStreaming, agg.State())
	assert.Zero(t, agg.CompletedRuns())
}

func TestAggregator_ResetReturnsToIdle(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	agg := NewAggregator(store, log.NewNop())
	ctx := context.Background()

	agg.Begin(testStrategies(2))
	agg.StreamStarted()
	require.NoError(t, agg.Apply(ctx, runEvent("strategy-1", "a", 7)))
	agg.Fail(errors.New("connection reset"))
	require.Equal(t, StateFailed, agg.State())

	agg.Reset()
	assert.Equal(t, StateIdle, agg.State())
	assert.Zero(t, agg.Progress())
	assert.Zero(t, agg.CompletedRuns())
	assert.Zero(t, agg.TotalRuns())
	assert.Empty(t, agg.RunsForStrategy("strategy-1"))
	assert.NoError(t, agg.Err())

	// Reset is idempotent, and a fresh Begin starts clean.
	agg.Reset()
	agg.Begin(testStrategies(1))
	assert.Equal(t, StateRequesting, agg.State())
	assert.Equal(t, 3, agg.TotalRuns())
	assert.Zero(t, agg.RunCount())
}

func TestAggregator_FailAfterDoneIsNoOp(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, log.NewNop())
	ctx := context.Background()
	agg.Begin(testStrategies(1))
	agg.StreamStarted()
	require.NoError(t, agg.Apply(ctx, &Event{Type: EventComplete}))

	agg.Fail(errors.New("late transport error"))
	assert.Equal(t, StateDone, agg.State())
	assert.NoError(t, agg.Err())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "failed", StateFailed.String())
}
