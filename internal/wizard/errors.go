package wizard

import "errors"

// Well-known state keys, one per wizard step. They mirror the browser
// storage slots the web client historically used, so existing clients keep
// working against the explicit store.
const (
	KeyLegalCase         = "legalCase"
	KeySelectedCases     = "selectedCases"
	KeyStrategies        = "strategies"
	KeyDigitalTwins      = "digitalTwins"
	KeySimulationResults = "simulationResults"
)

// KnownKeys lists every valid state key.
var KnownKeys = []string{
	KeyLegalCase,
	KeySelectedCases,
	KeyStrategies,
	KeyDigitalTwins,
	KeySimulationResults,
}

// Sentinel errors for store operations, checkable with errors.Is().
var (
	// ErrNotFound indicates no value is stored under the requested key.
	ErrNotFound = errors.New("wizard state not found")

	// ErrUnknownKey indicates a key outside KnownKeys.
	ErrUnknownKey = errors.New("unknown wizard state key")

	// ErrMissingIntake indicates a step that requires case intake ran first.
	ErrMissingIntake = errors.New("case intake required")

	// ErrMissingStrategies indicates simulation was requested before any
	// strategies were accepted.
	ErrMissingStrategies = errors.New("accepted strategies required")

	// ErrMissingResults indicates export was requested before a completed
	// simulation.
	ErrMissingResults = errors.New("simulation results required")
)

// ValidKey reports whether key is one of the known state keys.
func ValidKey(key string) bool {
	for _, k := range KnownKeys {
		if k == key {
			return true
		}
	}
	return false
}
