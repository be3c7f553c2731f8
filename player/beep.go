package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/brucemc/rplayer/analysis"
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

type decoder struct {
	name   string
	decode decodeFunc
}

// decoders are keyed by lower-case file extension.
var decoders = map[string]decoder{
	".mp3": {"mp3 decoder", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(f)
	}},
	".wav": {"wav decoder", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(f)
	}},
	".ogg": {"vorbis decoder", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(f)
	}},
	".flac": {"flac decoder", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	}},
}

func lookupDecoder(path string) (decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	d, ok := decoders[ext]
	if !ok {
		name := strings.TrimPrefix(ext, ".")
		if name == "" {
			name = "unknown"
		}
		return decoder{}, &ElementUnavailableError{Name: name + " decoder"}
	}
	return d, nil
}

// BeepEngine builds graphs on the beep speaker. Only one graph plays at a
// time since the speaker mixer is process-wide.
type BeepEngine struct {
	sr     beep.SampleRate
	frames int
	log    *log.Logger

	mu     sync.Mutex
	volume float64 // dB, range [-30, +6]
}

// NewBeepEngine initializes the speaker at sr. The analysis tap receives
// blocks of the given number of frames.
func NewBeepEngine(sr beep.SampleRate, frames int, logger *log.Logger) (*BeepEngine, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("%w: %w", &ElementUnavailableError{Name: "audio sink"}, err)
	}
	return &BeepEngine{sr: sr, frames: frames, log: logger.WithPrefix("engine")}, nil
}

// Build binds path to a new graph. Nothing is opened until the graph
// leaves GraphNull.
func (e *BeepEngine) Build(ctx context.Context, path string, tap *analysis.Tap) (Graph, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty location", ErrProperty)
	}
	dec, err := lookupDecoder(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: location %q: %w", ErrProperty, path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: location %q is a directory", ErrProperty, path)
	}
	return &beepGraph{
		engine: e,
		ctx:    ctx,
		path:   path,
		dec:    dec,
		tap:    tap,
		done:   make(chan struct{}),
	}, nil
}

// SetVolume sets the gain in dB, clamped to [-30, +6].
func (e *BeepEngine) SetVolume(db float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = max(min(db, 6), -30)
}

// Volume returns the gain in dB.
func (e *BeepEngine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *BeepEngine) gain() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return math.Pow(10, e.volume/20)
}

type beepGraph struct {
	engine *BeepEngine
	ctx    context.Context
	path   string
	dec    decoder
	tap    *analysis.Tap

	mu       sync.Mutex
	state    GraphState
	file     *os.File
	streamer beep.StreamSeekCloser
	pcm      *pcmTap

	bufErrors atomic.Int64
	doneOnce  sync.Once
	done      chan struct{}
	err       error
}

func (g *beepGraph) SetState(s GraphState) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s == GraphNull {
		return g.teardownLocked()
	}
	if g.state == GraphNull {
		if err := g.startLocked(s == GraphPaused); err != nil {
			return err
		}
		g.state = s
		return nil
	}
	g.pcm.SetPaused(s == GraphPaused)
	g.state = s
	return nil
}

func (g *beepGraph) startLocked(paused bool) error {
	select {
	case <-g.done:
		return fmt.Errorf("graph for %q already released", g.path)
	default:
	}

	f, err := os.Open(g.path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	streamer, format, err := g.dec.decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", g.dec.name, err)
	}
	g.file = f
	g.streamer = streamer

	var s beep.Streamer = streamer
	if format.SampleRate != g.engine.sr {
		s = beep.Resample(4, format.SampleRate, g.engine.sr, s)
	}
	s = &volumeStreamer{s: s, engine: g.engine}

	g.pcm = newPCMTap(g.ctx, s, g.tap, g.engine.frames, g.bufferError)
	g.pcm.SetPaused(paused)

	g.engine.log.Debug("graph start", "path", g.path, "rate", format.SampleRate, "channels", format.NumChannels)
	speaker.Play(beep.Seq(g.pcm, beep.Callback(func() {
		g.finish(streamer.Err())
	})))
	return nil
}

// bufferError reports a buffer the analyzers rejected. Only that buffer is
// affected.
func (g *beepGraph) bufferError(err error) {
	n := g.bufErrors.Add(1)
	g.engine.log.Warn("analysis buffer rejected", "path", g.path, "count", n, "err", err)
}

// finish runs on the speaker goroutine; it must not take g.mu.
func (g *beepGraph) finish(err error) {
	g.doneOnce.Do(func() {
		g.err = err
		close(g.done)
	})
}

func (g *beepGraph) teardownLocked() error {
	if g.streamer == nil {
		g.finish(nil)
		g.state = GraphNull
		return nil
	}
	speaker.Clear()

	err := g.streamer.Close()
	// mp3 and vorbis streamers close the file themselves.
	if cerr := g.file.Close(); err == nil && !errors.Is(cerr, os.ErrClosed) {
		err = cerr
	}
	g.streamer = nil
	g.file = nil
	g.pcm = nil
	g.state = GraphNull
	g.finish(nil)
	g.engine.log.Debug("graph released", "path", g.path)
	return err
}

func (g *beepGraph) State() GraphState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *beepGraph) Done() <-chan struct{} { return g.done }

func (g *beepGraph) Err() error {
	select {
	case <-g.done:
		return g.err
	default:
		return nil
	}
}

// volumeStreamer applies the engine's dB gain to an audio stream.
type volumeStreamer struct {
	s      beep.Streamer
	engine *BeepEngine
}

func (v *volumeStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := v.s.Stream(samples)
	gain := v.engine.gain()
	if gain == 1 {
		return n, ok
	}
	for i := range n {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

func (v *volumeStreamer) Err() error { return v.s.Err() }
