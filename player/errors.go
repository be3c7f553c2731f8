package player

import "errors"

var (
	// ErrElementUnavailable means a decode or output capability is missing.
	ErrElementUnavailable = errors.New("element unavailable")
	// ErrProperty means the source could not be bound to the graph.
	ErrProperty = errors.New("invalid property")
	// ErrPlayback means the engine rejected a state change.
	ErrPlayback = errors.New("playback error")
)

// ElementUnavailableError names the missing capability. It matches
// ErrElementUnavailable with errors.Is.
type ElementUnavailableError struct {
	Name string
}

func (e *ElementUnavailableError) Error() string {
	return "missing element " + e.Name
}

func (e *ElementUnavailableError) Is(target error) bool {
	return target == ErrElementUnavailable
}
