// Package player owns the playback lifecycle of one decode/output graph
// with an analysis tap:
//
//	[Decode] -> [Resample] -> [Volume] -> [PCM Tap] -> [Speaker]
//	                                          |
//	                                          +-> analyzers -> feature channels
package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/brucemc/rplayer/analysis"
)

// State is the controller's view of playback.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	Faulted
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Faulted:
		return "faulted"
	default:
		return "stopped"
	}
}

// Player is the playback state machine. It is the only owner of the graph
// and the sole source of truth for whether audio is flowing. Methods are
// meant to be called from the display loop.
type Player struct {
	mu     sync.Mutex
	engine Engine
	log    *log.Logger

	source string
	probes []analysis.Probe

	graph  Graph
	cancel context.CancelFunc
	state  State
	fault  string
}

// New creates a stopped Player driving the given engine. Graphs built by
// Play feed probes.
func New(engine Engine, logger *log.Logger, probes ...analysis.Probe) *Player {
	if logger == nil {
		logger = log.Default()
	}
	return &Player{
		engine: engine,
		log:    logger.WithPrefix("player"),
		probes: probes,
	}
}

// Create builds a graph for path, replacing any existing graph. When
// probes are given they replace the ones the tap feeds. The graph is not
// flowing until Play.
func (p *Player) Create(path string, probes ...analysis.Probe) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseLocked()
	p.state = Stopped
	p.fault = ""
	p.source = path
	if len(probes) > 0 {
		p.probes = probes
	}
	return p.createLocked()
}

func (p *Player) createLocked() error {
	ctx, cancel := context.WithCancel(context.Background())
	g, err := p.engine.Build(ctx, p.source, analysis.NewTap(p.probes...))
	if err != nil {
		cancel()
		p.log.Error("create graph", "path", p.source, "err", err)
		return err
	}
	p.graph = g
	p.cancel = cancel
	p.log.Debug("graph created", "path", p.source, "probes", len(p.probes))
	return nil
}

// SetSource replaces the source used when Play has to build a graph.
// A running graph is stopped.
func (p *Player) SetSource(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if path == p.source {
		return
	}
	p.releaseLocked()
	p.state = Stopped
	p.fault = ""
	p.source = path
}

// Source returns the current source path.
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Play starts or resumes playback, building the graph first if none
// exists. On failure the graph is released and the player is Stopped.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pollLocked()
	if p.state == Playing {
		return nil
	}
	if p.graph == nil {
		p.fault = ""
		if err := p.createLocked(); err != nil {
			p.state = Stopped
			return err
		}
	}
	return p.transitionLocked(GraphPlaying, Playing)
}

// PlayPause toggles between Playing and Paused. With no graph it behaves
// like Play.
func (p *Player) PlayPause() error {
	p.mu.Lock()
	p.pollLocked()
	switch p.state {
	case Playing:
		defer p.mu.Unlock()
		return p.transitionLocked(GraphPaused, Paused)
	case Paused:
		defer p.mu.Unlock()
		return p.transitionLocked(GraphPlaying, Playing)
	}
	p.mu.Unlock()
	return p.Play()
}

func (p *Player) transitionLocked(gs GraphState, s State) error {
	if err := p.graph.SetState(gs); err != nil {
		p.log.Error("state change rejected", "want", gs, "err", err)
		p.releaseLocked()
		p.state = Stopped
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	p.log.Debug("state", "from", p.state, "to", s)
	p.state = s
	return nil
}

// Stop tears down the graph from any state and leaves the player Stopped.
// It is safe while the audio thread is blocked sending a frame.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.releaseLocked()
	if p.state != Stopped {
		p.log.Debug("state", "from", p.state, "to", Stopped)
	}
	p.state = Stopped
	p.fault = ""
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}

// releaseLocked cancels the tap context before tearing the graph down so
// that a producer blocked on a full channel is released first.
func (p *Player) releaseLocked() error {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.graph == nil {
		return nil
	}
	g := p.graph
	p.graph = nil
	if err := g.SetState(GraphNull); err != nil {
		p.log.Warn("teardown", "err", err)
		return err
	}
	return nil
}

// pollLocked notices a graph that ended on its own.
func (p *Player) pollLocked() {
	if p.graph == nil || (p.state != Playing && p.state != Paused) {
		return
	}
	select {
	case <-p.graph.Done():
	default:
		return
	}
	err := p.graph.Err()
	p.releaseLocked()
	if err != nil {
		p.log.Error("stream failed", "path", p.source, "err", err)
		p.state = Faulted
		p.fault = err.Error()
		return
	}
	p.log.Debug("end of stream", "path", p.source)
	p.state = Stopped
}

// State returns the current playback state without waiting on the audio
// thread.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pollLocked()
	return p.state
}

// Fault returns the message of the error that moved the player to
// Faulted, or "".
func (p *Player) Fault() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fault
}

// Close stops playback and releases the graph.
func (p *Player) Close() error {
	return p.Stop()
}
