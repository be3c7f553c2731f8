package player

import (
	"context"
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/brucemc/rplayer/analysis"
)

// pcmTap is a streamer wrapper that converts the stereo output to S16LE
// PCM and hands fixed-size blocks to the analysis tap. It sits between the
// volume stage and the speaker and doubles as the pause gate, so pausing
// never waits on the speaker lock while the tap may be blocked on a send.
type pcmTap struct {
	s       beep.Streamer
	ctx     context.Context
	tap     *analysis.Tap
	block   []byte
	pos     int
	paused  atomic.Bool
	onError func(error)
}

// newPCMTap wraps s, analyzing blocks of the given number of frames.
func newPCMTap(ctx context.Context, s beep.Streamer, tap *analysis.Tap, frames int, onError func(error)) *pcmTap {
	if frames < 1 {
		frames = analysis.FFTSize
	}
	return &pcmTap{
		s:       s,
		ctx:     ctx,
		tap:     tap,
		block:   make([]byte, frames*4),
		onError: onError,
	}
}

// Stream passes audio through while filling the analysis block. Paused
// output is silence and does not advance the source.
func (t *pcmTap) Stream(samples [][2]float64) (int, bool) {
	if t.paused.Load() {
		clear(samples)
		return len(samples), true
	}
	n, ok := t.s.Stream(samples)
	if t.ctx.Err() != nil {
		return n, ok
	}
	for i := range n {
		binary.LittleEndian.PutUint16(t.block[t.pos:], uint16(toS16(samples[i][0])))
		binary.LittleEndian.PutUint16(t.block[t.pos+2:], uint16(toS16(samples[i][1])))
		t.pos += 4
		if t.pos == len(t.block) {
			t.flush()
		}
	}
	if !ok && t.pos > 0 {
		t.flush()
	}
	return n, ok
}

func (t *pcmTap) flush() {
	buf := analysis.Buffer{PCM: t.block[:t.pos], Channels: 2}
	t.pos = 0
	if err := t.tap.Process(t.ctx, buf); err != nil && t.ctx.Err() == nil && t.onError != nil {
		t.onError(err)
	}
}

// Err returns the underlying streamer's error.
func (t *pcmTap) Err() error {
	return t.s.Err()
}

// SetPaused gates the output.
func (t *pcmTap) SetPaused(paused bool) {
	t.paused.Store(paused)
}

func toS16(v float64) int16 {
	v = max(-1, min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
