// Package feature carries analysis results from the audio thread to the
// display loop over a bounded, ordered channel.
package feature

// Kind identifies which feature a Frame carries.
type Kind int

const (
	KindLoudness Kind = iota
	KindSpectrum
)

func (k Kind) String() string {
	switch k {
	case KindLoudness:
		return "loudness"
	case KindSpectrum:
		return "spectrum"
	default:
		return "unknown"
	}
}

// Frame is the result of analyzing exactly one audio buffer.
type Frame struct {
	Kind     Kind
	Loudness float64   // RMS in [0,1], set when Kind == KindLoudness
	Spectrum []float64 // magnitude bins, set when Kind == KindSpectrum
}

// LoudnessFrame wraps a loudness scalar.
func LoudnessFrame(v float64) Frame {
	return Frame{Kind: KindLoudness, Loudness: v}
}

// SpectrumFrame wraps a magnitude vector. The slice is not copied; the
// producer must not reuse it after sending.
func SpectrumFrame(bins []float64) Frame {
	return Frame{Kind: KindSpectrum, Spectrum: bins}
}
