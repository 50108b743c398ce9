package photosync

import "errors"

// State is the lifecycle of a Batch.
type State int

const (
	Idle State = iota
	Submitting
	Complete
	PartiallyFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Complete:
		return "complete"
	case PartiallyFailed:
		return "partially failed"
	default:
		return "unknown"
	}
}

// ErrInFlight is returned when a batch is submitted while it is still
// Submitting.
var ErrInFlight = errors.New("photo batch already submitting")

// ErrComplete is returned when a Complete batch is submitted again.
var ErrComplete = errors.New("photo batch already complete")
