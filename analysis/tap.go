package analysis

import (
	"context"
	"fmt"

	"github.com/brucemc/rplayer/feature"
)

// Probe pairs an analyzer with the channel its frames go to.
type Probe struct {
	Analyzer Analyzer
	Sink     feature.Sender
}

// NewProbe creates a channel sized for a's frame kind and returns the probe
// feeding it together with the channel the display loop reads from.
func NewProbe(a Analyzer) (Probe, *feature.Channel) {
	ch := feature.NewChannel(feature.CapacityFor(a.Kind()))
	return Probe{Analyzer: a, Sink: ch.Sender()}, ch
}

// Tap is the buffer-ready callback installed into a decode/output graph.
// Its only visible effect is sending frames to its probes' channels.
type Tap struct {
	probes []Probe
	frames []feature.Frame
}

// NewTap creates a Tap feeding the given probes.
func NewTap(probes ...Probe) *Tap {
	return &Tap{
		probes: probes,
		frames: make([]feature.Frame, len(probes)),
	}
}

// Probes returns the number of installed probes.
func (t *Tap) Probes() int { return len(t.probes) }

// Process analyzes buf with every probe and sends one frame to each. If any
// analyzer rejects the buffer nothing is sent. Sends block while a channel
// is full; ctx being done aborts the send and is reported as an error.
func (t *Tap) Process(ctx context.Context, buf Buffer) error {
	for i, p := range t.probes {
		f, err := p.Analyzer.Analyze(buf)
		if err != nil {
			return fmt.Errorf("%s analysis: %w", p.Analyzer.Kind(), err)
		}
		t.frames[i] = f
	}
	for i, p := range t.probes {
		if err := p.Sink.Send(ctx, t.frames[i]); err != nil {
			return err
		}
		t.frames[i] = feature.Frame{}
	}
	return nil
}
