package simulation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Wire event type discriminators.
const (
	EventRunComplete      = "run_complete"
	EventStrategyComplete = "strategy_complete"
	EventComplete         = "complete"
	EventError            = "error"
)

// Request is the simulation request submitted once per invocation. It is
// immutable for the duration of a run.
type Request struct {
	Strategies        []RequestStrategy `json:"strategies"`
	CaseFacts         string            `json:"caseFacts"`
	ExtractedText     string            `json:"extractedText,omitempty"`
	JudgeName         string            `json:"judgeName,omitempty"`
	StateAttorneyName string            `json:"stateAttorneyName,omitempty"`
}

// RequestStrategy is one strategy submitted for simulation. Each strategy
// produces exactly RunsPerStrategy runs.
type RequestStrategy struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Advantages     []string `json:"advantages,omitempty"`
	Considerations []string `json:"considerations,omitempty"`
}

// RunsPerStrategy is the fixed number of variation runs per strategy.
const RunsPerStrategy = 3

// TotalRuns returns the number of run_complete events expected for req.
func (req *Request) TotalRuns() int {
	return len(req.Strategies) * RunsPerStrategy
}

// Validate checks that the request can be simulated.
func (req *Request) Validate() error {
	if len(req.Strategies) == 0 {
		return ErrNoStrategies
	}
	for i, s := range req.Strategies {
		if s.ID == "" {
			return fmt.Errorf("%w: strategy %d has no id", ErrInvalidRequest, i)
		}
	}
	return nil
}

// Event is one decoded wire record, discriminated by Type. Fields other than
// Type are populated per variant; unknown variants carry only Type.
type Event struct {
	Type       string           `json:"type"`
	StrategyID string           `json:"strategyId,omitempty"`
	Run        *RawRun          `json:"run,omitempty"`
	Strategy   *StrategyResult  `json:"strategy,omitempty"`
	Results    []StrategyResult `json:"results,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// ParseEvent decodes a single data: payload into an Event.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parsing event: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: missing type field", ErrMalformedEvent)
	}
	return &ev, nil
}

// RawRun is a run result exactly as the upstream emits it. Optional fields
// stay optional here; NormalizeRun produces the shape the rest of the system
// consumes.
type RawRun struct {
	RunID             string      `json:"runId"`
	Variation         string      `json:"variation"`
	Score             Score       `json:"score,omitempty"`
	Winner            string      `json:"winner,omitempty"`
	DefenseArgument   string      `json:"defenseArgument,omitempty"`
	PlaintiffArgument string      `json:"plaintiffArgument,omitempty"`
	JudgmentSummary   string      `json:"judgmentSummary,omitempty"`
	Error             string      `json:"error,omitempty"`
	Evaluation        *Evaluation `json:"evaluation,omitempty"`
}

// Evaluation is the optional qualitative signal attached to a run.
type Evaluation struct {
	Rationale  string   `json:"rationale,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// Score is a 0-10 judge score that tolerates sloppy upstream encodings:
// absent, null, numeric strings and outright garbage all decode without
// failing the enclosing frame. Garbage decodes to 0.
type Score float64

// UnmarshalJSON implements tolerant decoding for Score.
func (s *Score) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = 0
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		*s = Score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*s = Score(f)
			return nil
		}
	}
	*s = 0
	return nil
}

// StrategyResult is the finalized per-strategy summary carried by
// strategy_complete and complete events.
type StrategyResult struct {
	StrategyID    string  `json:"strategyId,omitempty"`
	StrategyTitle string  `json:"strategyTitle"`
	AverageScore  float64 `json:"averageScore"`
	WinsCount     int     `json:"winsCount"`
	TotalRuns     int     `json:"totalRuns"`
	Runs          []Run   `json:"runs,omitempty"`
}
