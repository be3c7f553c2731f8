package analysis

import (
	"math"
	"math/cmplx"

	"github.com/madelynnblue/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/brucemc/rplayer/feature"
)

const (
	// FFTSize is the default transform length. Plotted resolution is half
	// of it.
	FFTSize = 1024
	// Bins is the number of plotted spectrum bins at FFTSize.
	Bins = FFTSize / 2

	// floorDB lifts magnitudes so that -80 dBFS maps to zero.
	floorDB = 80
)

// Spectrum computes a decibel magnitude spectrum of a buffer's mono mix.
// Frames carry size/2+1 bins, DC first.
type Spectrum struct {
	size   int
	window []float64
	buf    []float64 // reusable FFT input
}

// NewSpectrum creates a Spectrum for the given transform size.
func NewSpectrum(size int) *Spectrum {
	if size < 2 {
		size = FFTSize
	}
	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}
	return &Spectrum{
		size:   size,
		window: window.Hann(w),
		buf:    make([]float64, size),
	}
}

func (s *Spectrum) Kind() feature.Kind { return feature.KindSpectrum }

// Size returns the transform length.
func (s *Spectrum) Size() int { return s.size }

// Bins returns the number of plotted bins, size/2. Frames carry one more.
func (s *Spectrum) Bins() int { return s.size / 2 }

// Analyze returns one spectrum frame for buf. Buffers shorter than the
// transform are zero-padded; longer ones are truncated.
func (s *Spectrum) Analyze(buf Buffer) (feature.Frame, error) {
	if err := buf.validate(); err != nil {
		return feature.Frame{}, err
	}

	clear(s.buf)
	frames := min(buf.Frames(), s.size)
	for i := range frames {
		var sum float64
		for ch := range buf.Channels {
			sum += float64(buf.Sample(i*buf.Channels + ch))
		}
		s.buf[i] = sum / float64(buf.Channels) / math.MaxInt16 * s.window[i]
	}

	coeffs := fft.FFTReal(s.buf)

	bins := make([]float64, s.size/2+1)
	for k := range bins {
		mag := cmplx.Abs(coeffs[k]) * 2 / float64(s.size)
		if mag <= 0 {
			continue
		}
		bins[k] = max(0, 20*math.Log10(mag)+floorDB)
	}
	return feature.SpectrumFrame(bins), nil
}
