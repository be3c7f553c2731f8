// Package analysis turns blocks of raw PCM into feature frames. It runs on
// the audio-producing thread, so analyzers keep per-call allocation to the
// frame they emit.
package analysis

import (
	"errors"

	"github.com/brucemc/rplayer/feature"
)

// ErrBufferFormat is returned when a buffer is not interleaved signed
// 16-bit little-endian PCM of the declared channel count.
var ErrBufferFormat = errors.New("buffer is not S16LE PCM")

// Buffer is one ready block of interleaved signed 16-bit little-endian PCM.
type Buffer struct {
	PCM      []byte
	Channels int
}

// Samples returns the number of int16 values in the buffer.
func (b Buffer) Samples() int { return len(b.PCM) / 2 }

// Frames returns the number of multi-channel frames in the buffer.
func (b Buffer) Frames() int {
	if b.Channels < 1 {
		return 0
	}
	return b.Samples() / b.Channels
}

// Sample returns the i-th interleaved sample.
func (b Buffer) Sample(i int) int16 {
	return int16(uint16(b.PCM[2*i]) | uint16(b.PCM[2*i+1])<<8)
}

func (b Buffer) validate() error {
	if b.Channels < 1 || len(b.PCM) == 0 || len(b.PCM)%(2*b.Channels) != 0 {
		return ErrBufferFormat
	}
	return nil
}

// Analyzer extracts one feature frame from one buffer.
type Analyzer interface {
	Kind() feature.Kind
	Analyze(buf Buffer) (feature.Frame, error)
}
