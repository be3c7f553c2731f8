package player

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/brucemc/rplayer/analysis"
)

type fakeGraph struct {
	mu       sync.Mutex
	state    GraphState
	reject   map[GraphState]error
	history  []GraphState
	done     chan struct{}
	doneOnce sync.Once
	err      error
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{reject: map[GraphState]error{}, done: make(chan struct{})}
}

func (g *fakeGraph) SetState(s GraphState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, s)
	if err := g.reject[s]; err != nil {
		return err
	}
	g.state = s
	if s == GraphNull {
		g.end(nil)
	}
	return nil
}

func (g *fakeGraph) State() GraphState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *fakeGraph) Done() <-chan struct{} { return g.done }

func (g *fakeGraph) Err() error {
	select {
	case <-g.done:
		return g.err
	default:
		return nil
	}
}

func (g *fakeGraph) end(err error) {
	g.doneOnce.Do(func() {
		g.err = err
		close(g.done)
	})
}

type fakeEngine struct {
	buildErr error
	reject   map[GraphState]error
	graphs   []*fakeGraph
	ctxs     []context.Context
	paths    []string
}

func (e *fakeEngine) Build(ctx context.Context, path string, _ *analysis.Tap) (Graph, error) {
	e.paths = append(e.paths, path)
	if e.buildErr != nil {
		return nil, e.buildErr
	}
	g := newFakeGraph()
	for s, err := range e.reject {
		g.reject[s] = err
	}
	e.graphs = append(e.graphs, g)
	e.ctxs = append(e.ctxs, ctx)
	return g, nil
}

func (e *fakeEngine) last() *fakeGraph { return e.graphs[len(e.graphs)-1] }

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newTestPlayer(e *fakeEngine) *Player {
	p := New(e, quietLogger())
	p.SetSource("song.mp3")
	return p
}

func TestPlayer_InitialState(t *testing.T) {
	t.Parallel()

	p := New(&fakeEngine{}, quietLogger())
	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
	if p.Fault() != "" {
		t.Errorf("Fault() = %q, want empty", p.Fault())
	}
}

func TestPlayer_PlayFromStopped(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	p := newTestPlayer(e)

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if p.State() != Playing {
		t.Fatalf("State() = %v, want playing", p.State())
	}
	if len(e.graphs) != 1 || e.paths[0] != "song.mp3" {
		t.Fatalf("Build calls = %v, want one for song.mp3", e.paths)
	}
	if e.last().State() != GraphPlaying {
		t.Errorf("graph state = %v, want playing", e.last().State())
	}

	// Playing again is a no-op.
	if err := p.Play(); err != nil || len(e.graphs) != 1 {
		t.Errorf("second Play() = %v with %d graphs", err, len(e.graphs))
	}
}

func TestPlayer_CreateThenPlay(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	p := New(e, quietLogger())

	probe, _ := analysis.NewProbe(analysis.Loudness{})
	if err := p.Create("a.wav", probe); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.State() != Stopped {
		t.Fatalf("State() after Create = %v, want stopped", p.State())
	}
	if e.last().State() != GraphNull {
		t.Fatalf("graph flowing before Play: %v", e.last().State())
	}

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if len(e.graphs) != 1 {
		t.Errorf("Play() rebuilt the graph: %d builds", len(e.graphs))
	}
	if p.Source() != "a.wav" {
		t.Errorf("Source() = %q", p.Source())
	}
}

func TestPlayer_PlayInvalidSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing decoder", &ElementUnavailableError{Name: "xyz decoder"}, ErrElementUnavailable},
		{"bad location", ErrProperty, ErrProperty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newTestPlayer(&fakeEngine{buildErr: tt.err})
			err := p.Play()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Play() error = %v, want %v", err, tt.want)
			}
			if p.State() != Stopped {
				t.Errorf("State() = %v, want stopped", p.State())
			}
		})
	}
}

func TestPlayer_PlayRejectedReleasesGraph(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{reject: map[GraphState]error{GraphPlaying: errors.New("unreadable")}}
	p := newTestPlayer(e)

	err := p.Play()
	if !errors.Is(err, ErrPlayback) {
		t.Fatalf("Play() error = %v, want ErrPlayback", err)
	}
	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
	g := e.last()
	if g.history[len(g.history)-1] != GraphNull {
		t.Errorf("graph not released: history %v", g.history)
	}
	if e.ctxs[0].Err() == nil {
		t.Error("tap context not cancelled on release")
	}
}

func TestPlayer_PlayPauseToggles(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	p := newTestPlayer(e)

	// No graph: behaves like Play.
	if err := p.PlayPause(); err != nil {
		t.Fatalf("PlayPause() error = %v", err)
	}
	if p.State() != Playing {
		t.Fatalf("State() = %v, want playing", p.State())
	}

	if err := p.PlayPause(); err != nil {
		t.Fatalf("PlayPause() error = %v", err)
	}
	if p.State() != Paused || e.last().State() != GraphPaused {
		t.Fatalf("State() = %v / graph %v, want paused", p.State(), e.last().State())
	}

	if err := p.Play(); err != nil {
		t.Fatalf("Play() from paused error = %v", err)
	}
	if p.State() != Playing || len(e.graphs) != 1 {
		t.Fatalf("resume: State() = %v, builds = %d", p.State(), len(e.graphs))
	}
}

func TestPlayer_PauseRejected(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{reject: map[GraphState]error{GraphPaused: errors.New("nope")}}
	p := newTestPlayer(e)
	p.Play()

	if err := p.PlayPause(); !errors.Is(err, ErrPlayback) {
		t.Fatalf("PlayPause() error = %v, want ErrPlayback", err)
	}
	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
}

func TestPlayer_StopFromEveryState(t *testing.T) {
	t.Parallel()

	setups := map[State]func(p *Player, e *fakeEngine){
		Stopped: func(*Player, *fakeEngine) {},
		Playing: func(p *Player, _ *fakeEngine) { p.Play() },
		Paused: func(p *Player, _ *fakeEngine) {
			p.Play()
			p.PlayPause()
		},
		Faulted: func(p *Player, e *fakeEngine) {
			p.Play()
			e.last().end(errors.New("decode failed"))
		},
	}

	for from, setup := range setups {
		t.Run(from.String(), func(t *testing.T) {
			t.Parallel()

			e := &fakeEngine{}
			p := newTestPlayer(e)
			setup(p, e)
			if got := p.State(); got != from {
				t.Fatalf("setup reached %v, want %v", got, from)
			}

			if err := p.Stop(); err != nil {
				t.Fatalf("Stop() error = %v", err)
			}
			if p.State() != Stopped {
				t.Errorf("State() = %v, want stopped", p.State())
			}
			if err := p.Stop(); err != nil || p.State() != Stopped {
				t.Errorf("second Stop() = %v, state %v", err, p.State())
			}
			for i, ctx := range e.ctxs {
				if ctx.Err() == nil {
					t.Errorf("graph %d context still live after Stop", i)
				}
			}
		})
	}
}

func TestPlayer_StreamFault(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	p := newTestPlayer(e)
	p.Play()

	e.last().end(errors.New("corrupt frame"))

	if p.State() != Faulted {
		t.Fatalf("State() = %v, want faulted", p.State())
	}
	if p.Fault() != "corrupt frame" {
		t.Errorf("Fault() = %q", p.Fault())
	}

	// Play rebuilds from a faulted state.
	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if p.State() != Playing || len(e.graphs) != 2 {
		t.Errorf("State() = %v with %d builds, want playing with 2", p.State(), len(e.graphs))
	}
	if p.Fault() != "" {
		t.Errorf("Fault() = %q after successful Play", p.Fault())
	}
}

func TestPlayer_EndOfStream(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	p := newTestPlayer(e)
	p.Play()

	e.last().end(nil)

	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
	if p.Fault() != "" {
		t.Errorf("Fault() = %q, want empty", p.Fault())
	}
}

func TestPlayer_SetSourceStopsPlayback(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	p := newTestPlayer(e)
	p.Play()

	p.SetSource("other.flac")
	if p.State() != Stopped {
		t.Fatalf("State() = %v, want stopped", p.State())
	}
	p.Play()
	if e.paths[len(e.paths)-1] != "other.flac" {
		t.Errorf("Build path = %q, want other.flac", e.paths[len(e.paths)-1])
	}
}
