// Package wizard persists per-session state for the legal-strategy wizard.
//
// Each session owns one value per well-known key (see KnownKeys), stored as
// raw JSON. The Store interface abstracts the backing medium: PostgreSQL
// for deployments, a lock-guarded file for single-user CLI use, and memory
// for tests. Session binds a Store to one session ID and is the durable
// setItem collaborator the simulation aggregator writes through.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kanonhq/kanon/internal/simulation"
)

// StateVersion is written into every assembled State snapshot. Bump on
// incompatible shape changes.
const StateVersion = 1

// Store is a per-session key/value store for wizard state. Implementations
// are safe for concurrent use.
type Store interface {
	// Get returns the raw JSON stored under (sessionID, key).
	// Returns ErrNotFound when the slot is empty.
	Get(ctx context.Context, sessionID uuid.UUID, key string) (json.RawMessage, error)

	// Put stores raw JSON under (sessionID, key), replacing any prior value.
	Put(ctx context.Context, sessionID uuid.UUID, key string, value json.RawMessage) error

	// Delete removes the value under (sessionID, key). Deleting an empty
	// slot is not an error.
	Delete(ctx context.Context, sessionID uuid.UUID, key string) error
}

// CaseIntake is the first wizard step: the facts of the case and the named
// courtroom participants.
type CaseIntake struct {
	Description       string   `json:"description"`
	ExtractedText     string   `json:"extractedText,omitempty"`
	JudgeName         string   `json:"judgeName,omitempty"`
	StateAttorneyName string   `json:"stateAttorneyName,omitempty"`
	UploadedFiles     []string `json:"uploadedFiles,omitempty"`
}

// TwinSelection names the digital-twin profiles chosen for the simulation.
type TwinSelection struct {
	JudgeName         string `json:"judgeName"`
	StateAttorneyName string `json:"stateAttorneyName"`
}

// State is the assembled wizard snapshot across all steps. Absent steps are
// zero-valued; precondition helpers gate step transitions.
type State struct {
	Version           int                          `json:"version"`
	LegalCase         *CaseIntake                  `json:"legalCase,omitempty"`
	SelectedCases     json.RawMessage              `json:"selectedCases,omitempty"`
	Strategies        []simulation.RequestStrategy `json:"strategies,omitempty"`
	DigitalTwins      *TwinSelection               `json:"digitalTwins,omitempty"`
	SimulationResults []simulation.StrategyResult  `json:"simulationResults,omitempty"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

// CanGenerateStrategies checks the strategy-synthesis precondition.
func (s *State) CanGenerateStrategies() error {
	if s.LegalCase == nil || s.LegalCase.Description == "" {
		return ErrMissingIntake
	}
	return nil
}

// CanRunSimulation checks the simulation precondition.
func (s *State) CanRunSimulation() error {
	if err := s.CanGenerateStrategies(); err != nil {
		return err
	}
	if len(s.Strategies) == 0 {
		return ErrMissingStrategies
	}
	return nil
}

// CanExport checks the report-export precondition.
func (s *State) CanExport() error {
	if len(s.SimulationResults) == 0 {
		return ErrMissingResults
	}
	return nil
}

// Session binds a Store to one session ID, giving typed access to the
// session's slots. It implements simulation.ResultStore.
type Session struct {
	store Store
	id    uuid.UUID
}

// NewSession binds store to the given session ID.
func NewSession(store Store, id uuid.UUID) *Session {
	return &Session{store: store, id: id}
}

// ID returns the bound session ID.
func (s *Session) ID() uuid.UUID { return s.id }

// SetItem marshals value and stores it under key. This is the durable write
// the simulation aggregator performs on its terminal event.
func (s *Session) SetItem(ctx context.Context, key string, value any) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.store.Put(ctx, s.id, key, raw)
}

// GetItem unmarshals the value stored under key into dst. Returns
// ErrNotFound when the slot is empty.
func (s *Session) GetItem(ctx context.Context, key string, dst any) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	raw, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes the value stored under key.
func (s *Session) RemoveItem(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.store.Delete(ctx, s.id, key)
}

// State assembles the full wizard snapshot from the session's slots. Empty
// slots stay zero-valued; only decode failures are errors.
func (s *Session) State(ctx context.Context) (*State, error) {
	st := &State{Version: StateVersion, UpdatedAt: time.Now().UTC()}

	var intake CaseIntake
	if err := s.GetItem(ctx, KeyLegalCase, &intake); err == nil {
		st.LegalCase = &intake
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if raw, err := s.store.Get(ctx, s.id, KeySelectedCases); err == nil {
		st.SelectedCases = raw
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.GetItem(ctx, KeyStrategies, &st.Strategies); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var twins TwinSelection
	if err := s.GetItem(ctx, KeyDigitalTwins, &twins); err == nil {
		st.DigitalTwins = &twins
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.GetItem(ctx, KeySimulationResults, &st.SimulationResults); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return st, nil
}
