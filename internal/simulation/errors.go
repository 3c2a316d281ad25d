package simulation

import "errors"

// Sentinel errors for simulation operations. Check with errors.Is().
var (
	// ErrNoStrategies indicates a simulation request without strategies.
	ErrNoStrategies = errors.New("no strategies to simulate")

	// ErrInvalidRequest indicates a structurally invalid simulation request.
	ErrInvalidRequest = errors.New("invalid simulation request")

	// ErrMalformedEvent indicates a data: payload that parsed as JSON but is
	// not a usable event. Malformed events are skipped, never fatal.
	ErrMalformedEvent = errors.New("malformed stream event")

	// ErrUpstream indicates the stream carried an error event. The upstream
	// message is attached via fmt.Errorf wrapping.
	ErrUpstream = errors.New("upstream simulation error")

	// ErrStreamTruncated indicates the stream ended before a complete event.
	ErrStreamTruncated = errors.New("stream ended before completion")

	// ErrNotIdle indicates a simulation was started while one is in flight.
	ErrNotIdle = errors.New("simulation already in progress")
)
