package feature

import (
	"context"
	"time"
)

// Channel capacities sized to absorb bursts from the audio thread.
const (
	LoudnessCapacity = 220
	SpectrumCapacity = 22000
)

// Channel is a fixed-capacity FIFO between one producer (the analysis tap)
// and one consumer (the display loop). Sends block when full; frames are
// never dropped.
type Channel struct {
	c chan Frame
}

// NewChannel creates a Channel with the given capacity. A capacity below
// one is raised to one.
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel{c: make(chan Frame, capacity)}
}

// CapacityFor returns the default capacity for frames of kind k.
func CapacityFor(k Kind) int {
	if k == KindSpectrum {
		return SpectrumCapacity
	}
	return LoudnessCapacity
}

// Sender returns the producer handle. It is the only way to put frames on
// the channel and may be copied into the audio callback.
func (c *Channel) Sender() Sender {
	return Sender{c: c.c}
}

// ReceiveTimeout returns the oldest pending frame, waiting at most d for
// one to arrive. ok is false if nothing arrived in time.
func (c *Channel) ReceiveTimeout(d time.Duration) (f Frame, ok bool) {
	if d <= 0 {
		return c.TryReceive()
	}
	select {
	case f = <-c.c:
		return f, true
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case f = <-c.c:
		return f, true
	case <-timer.C:
		return Frame{}, false
	}
}

// TryReceive returns the oldest pending frame without waiting.
func (c *Channel) TryReceive() (Frame, bool) {
	select {
	case f := <-c.c:
		return f, true
	default:
		return Frame{}, false
	}
}

// Len returns the number of frames waiting to be received.
func (c *Channel) Len() int { return len(c.c) }

// Cap returns the fixed capacity.
func (c *Channel) Cap() int { return cap(c.c) }

// Sender is the producer side of a Channel.
type Sender struct {
	c chan<- Frame
}

// Send enqueues f, blocking while the channel is full. It returns
// ctx.Err() if ctx is done before there is room; that is how graph
// teardown releases a stalled producer.
func (s Sender) Send(ctx context.Context, f Frame) error {
	select {
	case s.c <- f:
		return nil
	default:
	}
	select {
	case s.c <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Valid reports whether the sender is attached to a channel.
func (s Sender) Valid() bool { return s.c != nil }
