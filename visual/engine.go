// Package visual holds the display-side state of the visualizer: the
// spectrum envelopes, the spectrogram history and the loudness history.
// All of it is owned by the display loop and mutated only from Tick.
package visual

import (
	"time"

	"github.com/brucemc/rplayer/feature"
)

const (
	// WaterfallSize is the number of spectrogram rows kept.
	WaterfallSize = 100
	// LoudnessSize is the number of loudness samples kept.
	LoudnessSize = 250

	currentRelease = 0.97
	peakOvershoot  = 1.05
	peakRelease    = 0.998
	silenceDecay   = 0.94
)

// Trace is the pair of spectrum envelopes. Both slices always have the
// engine's bin count.
type Trace struct {
	Current []float64 // instant attack, slow release
	Peak    []float64 // overshooting peak hold, slower release
}

func newTrace(n int) Trace {
	return Trace{Current: make([]float64, n), Peak: make([]float64, n)}
}

func (t *Trace) update(values []float64) {
	for i, v := range values {
		if v > t.Current[i] {
			t.Current[i] = v
		} else {
			t.Current[i] *= currentRelease
		}
		if v > t.Peak[i] {
			t.Peak[i] = v * peakOvershoot
		} else {
			t.Peak[i] *= peakRelease
		}
	}
}

func (t *Trace) decay(factor float64) {
	for i := range t.Current {
		t.Current[i] *= factor
		t.Peak[i] *= factor
	}
}

// Engine consumes feature frames once per display tick.
type Engine struct {
	bins      int
	trace     Trace
	waterfall *Waterfall
	loudness  *LoudnessHistory
	row       []float64

	spectrumIn *feature.Channel
	loudnessIn *feature.Channel
}

// NewEngine creates an Engine plotting bins spectrum bins.
func NewEngine(bins int) *Engine {
	return &Engine{
		bins:      bins,
		trace:     newTrace(bins),
		waterfall: NewWaterfall(WaterfallSize),
		loudness:  NewLoudnessHistory(LoudnessSize),
		row:       make([]float64, bins),
	}
}

// Listen sets the channels polled by Tick. Either may be nil.
func (e *Engine) Listen(spectrum, loudness *feature.Channel) {
	e.spectrumIn = spectrum
	e.loudnessIn = loudness
}

// Tick performs one poll. The spectrum channel, if any, is waited on for
// up to d. An empty poll fades the traces unless playing is set, in which
// case the next frame is simply late. The loudness channel is then polled
// without waiting, or for up to d when it is the only source.
// It reports whether any frame was applied.
func (e *Engine) Tick(d time.Duration, playing bool) bool {
	got := false
	if e.spectrumIn != nil {
		if f, ok := e.spectrumIn.ReceiveTimeout(d); ok {
			e.Apply(f)
			got = true
		} else if !playing {
			e.Decay()
		}
		d = 0
	}
	if e.loudnessIn != nil {
		if f, ok := e.loudnessIn.ReceiveTimeout(d); ok {
			e.Apply(f)
			got = true
		}
	}
	return got
}

// Apply folds one frame into the display state.
func (e *Engine) Apply(f feature.Frame) {
	switch f.Kind {
	case feature.KindLoudness:
		e.loudness.Push(f.Loudness)
	case feature.KindSpectrum:
		e.applySpectrum(f.Spectrum)
	}
}

// applySpectrum drops bin 0, reverses bins 1..N into the row, updates the
// envelopes and pushes the row onto the spectrogram.
func (e *Engine) applySpectrum(bins []float64) {
	clear(e.row)
	n := min(len(bins)-1, e.bins)
	for j := 0; j < n; j++ {
		e.row[j] = bins[n-j]
	}
	e.trace.update(e.row)
	e.waterfall.Push(e.row)
}

// Decay fades both envelopes toward silence.
func (e *Engine) Decay() {
	e.trace.decay(silenceDecay)
}

// Bins returns the number of plotted bins.
func (e *Engine) Bins() int { return e.bins }

// Trace returns the envelopes. Callers must not modify them.
func (e *Engine) Trace() Trace { return e.trace }

// Waterfall returns the spectrogram history.
func (e *Engine) Waterfall() *Waterfall { return e.waterfall }

// Loudness returns the loudness history.
func (e *Engine) Loudness() *LoudnessHistory { return e.loudness }
