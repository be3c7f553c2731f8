package analysis

import (
	"math"

	"github.com/brucemc/rplayer/feature"
)

// Loudness computes the root mean square of a buffer, normalized to [0,1].
type Loudness struct{}

func (Loudness) Kind() feature.Kind { return feature.KindLoudness }

// Analyze returns one loudness frame for buf.
func (Loudness) Analyze(buf Buffer) (feature.Frame, error) {
	if err := buf.validate(); err != nil {
		return feature.Frame{}, err
	}
	n := buf.Samples()
	var sum float64
	for i := range n {
		f := float64(buf.Sample(i)) / math.MaxInt16
		sum += f * f
	}
	// -32768 maps slightly past -1
	rms := min(math.Sqrt(sum/float64(n)), 1)
	return feature.LoudnessFrame(rms), nil
}
