package player

import (
	"context"

	"github.com/brucemc/rplayer/analysis"
)

// GraphState is the state a decode/output graph reports.
type GraphState int

const (
	GraphNull GraphState = iota
	GraphPaused
	GraphPlaying
)

func (s GraphState) String() string {
	switch s {
	case GraphPaused:
		return "paused"
	case GraphPlaying:
		return "playing"
	default:
		return "null"
	}
}

// Graph is one decode -> (output + analysis) chain.
type Graph interface {
	// SetState moves the graph. GraphNull releases everything it holds.
	SetState(GraphState) error
	// State returns the last state the graph accepted.
	State() GraphState
	// Done is closed when the stream ends or the graph is released.
	Done() <-chan struct{}
	// Err returns the error that ended the stream, if any. It is only
	// meaningful once Done is closed.
	Err() error
}

// Engine builds graphs. The tap is called on the audio thread once per
// ready buffer and must stop sending once ctx is done.
type Engine interface {
	Build(ctx context.Context, path string, tap *analysis.Tap) (Graph, error)
}
