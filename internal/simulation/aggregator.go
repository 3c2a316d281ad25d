package simulation

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/kanonhq/kanon/internal/log"
)

// State is the aggregator lifecycle state.
type State int

// Lifecycle states. Failed is terminal alongside Done; both reset to Idle
// on the next Begin or Reset.
const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateFinalizing
	StateDone
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ResultsKey is the durable-store key under which finalized results are
// persisted for the export step.
const ResultsKey = "simulationResults"

// Progress bar split: the first 5% covers request setup, the last 5%
// finalization; run completions scale across the middle 90%.
const (
	progressStreamStart = 5
	progressRunSpan     = 90
	progressCeiling     = 99
)

// ResultStore is the durable sink for finalized simulation results. It is
// written exactly once per successful run, on the complete event.
type ResultStore interface {
	SetItem(ctx context.Context, key string, value any) error
}

// Aggregator folds stream events into per-strategy run collections, tracking
// progress and lifecycle state. Buckets are append-only for the duration of
// one simulation session; runs keep server emission order.
//
// Aggregator is safe for concurrent use: the consuming loop mutates state
// while observers read it from other goroutines. Locks are held only for the
// duration of a state transition, never across I/O.
type Aggregator struct {
	mu     sync.Mutex
	store  ResultStore
	logger log.Logger

	state         State
	totalRuns     int
	completedRuns int
	progress      int
	submitted     map[string]bool
	buckets       map[string][]Run
	results       []StrategyResult
	failure       error
}

// NewAggregator creates an idle aggregator. store may be nil, in which case
// finalized results are kept in memory only.
func NewAggregator(store ResultStore, logger log.Logger) *Aggregator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Aggregator{
		store:     store,
		logger:    logger,
		submitted: make(map[string]bool),
		buckets:   make(map[string][]Run),
	}
}

// Begin resets all accumulated state and enters the requesting state for a
// simulation of the given strategies. totalRuns is fixed here and never
// changes mid-stream.
func (a *Aggregator) Begin(strategies []RequestStrategy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	a.state = StateRequesting
	a.totalRuns = len(strategies) * RunsPerStrategy
	for _, s := range strategies {
		a.submitted[s.ID] = true
	}
}

// StreamStarted marks the first byte of the response body. Progress jumps to
// the 5% setup mark.
func (a *Aggregator) StreamStarted() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRequesting {
		return
	}
	a.state = StateStreaming
	a.progress = progressStreamStart
}

// Apply folds one event into the aggregator. It returns a non-nil error only
// for fatal conditions (an error event, or a durable-write failure on
// complete); malformed or unknown events are ignored.
func (a *Aggregator) Apply(ctx context.Context, ev *Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateStreaming && a.state != StateRequesting {
		// Late frames after done/failed produce no further effects.
		return nil
	}

	switch ev.Type {
	case EventRunComplete:
		a.applyRunLocked(ev)
		return nil

	case EventStrategyComplete:
		if ev.Strategy != nil {
			a.logger.Debug("strategy complete",
				"title", ev.Strategy.StrategyTitle,
				"averageScore", ev.Strategy.AverageScore)
		}
		return nil

	case EventComplete:
		return a.finalizeLocked(ctx, ev.Results)

	case EventError:
		msg := ev.Error
		if msg == "" {
			msg = "simulation failed"
		}
		a.failure = fmt.Errorf("%w: %s", ErrUpstream, msg)
		a.state = StateFailed
		return a.failure

	default:
		a.logger.Debug("ignoring unknown event type", "type", ev.Type)
		return nil
	}
}

// applyRunLocked handles a run_complete event. An event referencing a
// strategyId the client never submitted still gets a bucket; dropping it
// would hide upstream runs from the operator. The mismatch is logged.
func (a *Aggregator) applyRunLocked(ev *Event) {
	if ev.Run == nil {
		a.logger.Warn("run_complete event without run payload", "strategyId", ev.StrategyID)
		return
	}
	if !a.submitted[ev.StrategyID] {
		a.logger.Warn("run_complete for unsubmitted strategy, bucketing anyway",
			"strategyId", ev.StrategyID)
	}

	run := NormalizeRun(ev.Run)
	a.buckets[ev.StrategyID] = append(a.buckets[ev.StrategyID], run)
	a.completedRuns++
	a.progress = runProgress(a.completedRuns, a.totalRuns)
}

// finalizeLocked handles the terminal complete event: results become the
// authoritative dataset and are written durably before the state flips to
// done. A failed write leaves the aggregator failed rather than presenting
// partial state as complete.
func (a *Aggregator) finalizeLocked(ctx context.Context, results []StrategyResult) error {
	a.state = StateFinalizing
	a.results = results

	if a.store != nil {
		if err := a.store.SetItem(ctx, ResultsKey, results); err != nil {
			a.failure = fmt.Errorf("persisting results: %w", err)
			a.state = StateFailed
			return a.failure
		}
	}

	a.progress = 100
	a.state = StateDone
	return nil
}

// Fail records a transport-level failure (network error, non-2xx status,
// unreadable body) and moves to the failed state. No durable write happens.
func (a *Aggregator) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateDone || a.state == StateFailed {
		return
	}
	a.failure = err
	a.state = StateFailed
}

// Reset returns the aggregator to idle, clearing all buckets and progress.
// Resetting an idle aggregator is a no-op.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *Aggregator) resetLocked() {
	a.state = StateIdle
	a.totalRuns = 0
	a.completedRuns = 0
	a.progress = 0
	a.submitted = make(map[string]bool)
	a.buckets = make(map[string][]Run)
	a.results = nil
	a.failure = nil
}

// State returns the current lifecycle state.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Progress returns the rounded progress percentage in [0,100].
func (a *Aggregator) Progress() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

// CompletedRuns returns the number of run_complete events processed.
func (a *Aggregator) CompletedRuns() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.completedRuns
}

// TotalRuns returns the expected run count fixed at Begin.
func (a *Aggregator) TotalRuns() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalRuns
}

// RunsForStrategy returns the normalized runs accumulated for a strategy, in
// server emission order. The returned slice is a copy.
func (a *Aggregator) RunsForStrategy(strategyID string) []Run {
	a.mu.Lock()
	defer a.mu.Unlock()
	bucket := a.buckets[strategyID]
	out := make([]Run, len(bucket))
	copy(out, bucket)
	return out
}

// RunCount returns the total number of accumulated runs across all buckets.
func (a *Aggregator) RunCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, bucket := range a.buckets {
		n += len(bucket)
	}
	return n
}

// Results returns the finalized per-strategy results, non-nil only after a
// complete event was processed.
func (a *Aggregator) Results() []StrategyResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.results
}

// Err returns the recorded failure, non-nil only in the failed state.
func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failure
}

// runProgress maps completed/total onto the reserved 5/90/5 progress split,
// clamped below 100 until the terminal event arrives.
func runProgress(completed, total int) int {
	if total <= 0 {
		return progressStreamStart
	}
	p := int(math.Round(float64(completed)/float64(total)*progressRunSpan)) + progressStreamStart
	if p > progressCeiling {
		p = progressCeiling
	}
	return p
}
