package analysis

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/brucemc/rplayer/feature"
)

// pcm encodes samples as interleaved S16LE.
func pcm(samples ...int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

func sine(frames, bin, size int, amp float64) []int16 {
	out := make([]int16, frames)
	for i := range out {
		out[i] = int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(size)))
	}
	return out
}

func TestLoudness_Analyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		buf     Buffer
		want    float64
		wantErr error
	}{
		{"silence", Buffer{PCM: pcm(0, 0, 0, 0), Channels: 1}, 0, nil},
		{"full scale", Buffer{PCM: pcm(math.MaxInt16, -math.MaxInt16), Channels: 1}, 1, nil},
		{"negative clip stays in range", Buffer{PCM: pcm(math.MinInt16, math.MinInt16), Channels: 1}, 1, nil},
		{"half scale stereo", Buffer{PCM: pcm(16384, -16384, 16384, -16384), Channels: 2}, 16384.0 / 32767.0, nil},
		{"empty", Buffer{Channels: 1}, 0, ErrBufferFormat},
		{"odd byte count", Buffer{PCM: []byte{1, 2, 3}, Channels: 1}, 0, ErrBufferFormat},
		{"partial stereo frame", Buffer{PCM: pcm(1, 2, 3), Channels: 2}, 0, ErrBufferFormat},
		{"no channels", Buffer{PCM: pcm(1, 2), Channels: 0}, 0, ErrBufferFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := Loudness{}.Analyze(tt.buf)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Analyze() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if f.Kind != feature.KindLoudness {
				t.Errorf("Kind = %v, want loudness", f.Kind)
			}
			if math.Abs(f.Loudness-tt.want) > 1e-9 {
				t.Errorf("Loudness = %v, want %v", f.Loudness, tt.want)
			}
		})
	}
}

func TestSpectrum_SinePeak(t *testing.T) {
	t.Parallel()

	const bin = 64
	s := NewSpectrum(FFTSize)
	f, err := s.Analyze(Buffer{PCM: pcm(sine(FFTSize, bin, FFTSize, 0.5)...), Channels: 1})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if f.Kind != feature.KindSpectrum {
		t.Fatalf("Kind = %v, want spectrum", f.Kind)
	}
	if len(f.Spectrum) != Bins+1 {
		t.Fatalf("len(Spectrum) = %d, want %d", len(f.Spectrum), Bins+1)
	}

	peak := 0
	for i, v := range f.Spectrum {
		if v < 0 {
			t.Fatalf("bin %d = %v, want non-negative", i, v)
		}
		if v > f.Spectrum[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Errorf("peak bin = %d, want %d", peak, bin)
	}
	// 0.5 amplitude through a Hann window is about -12 dBFS.
	if got := f.Spectrum[bin]; got < 60 || got > 75 {
		t.Errorf("peak magnitude = %v, want about 68", got)
	}
}

func TestSpectrum_SilenceAndPadding(t *testing.T) {
	t.Parallel()

	s := NewSpectrum(FFTSize)
	f, err := s.Analyze(Buffer{PCM: pcm(make([]int16, 2*100)...), Channels: 2})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for i, v := range f.Spectrum {
		if v != 0 {
			t.Fatalf("bin %d = %v for silence, want 0", i, v)
		}
	}

	// A second call must not see the previous frame's slice.
	g, _ := s.Analyze(Buffer{PCM: pcm(sine(FFTSize, 10, FFTSize, 0.9)...), Channels: 1})
	if &f.Spectrum[0] == &g.Spectrum[0] {
		t.Error("consecutive frames share a backing array")
	}
}

func TestSpectrum_RejectsBadBuffer(t *testing.T) {
	t.Parallel()

	s := NewSpectrum(FFTSize)
	if _, err := s.Analyze(Buffer{PCM: []byte{0}, Channels: 1}); !errors.Is(err, ErrBufferFormat) {
		t.Errorf("Analyze() error = %v, want ErrBufferFormat", err)
	}
}

func TestTap_ProcessSendsOneFramePerProbe(t *testing.T) {
	t.Parallel()

	lp, lch := NewProbe(Loudness{})
	sp, sch := NewProbe(NewSpectrum(FFTSize))
	if lch.Cap() != feature.LoudnessCapacity || sch.Cap() != feature.SpectrumCapacity {
		t.Fatalf("capacities = %d/%d, want %d/%d", lch.Cap(), sch.Cap(), feature.LoudnessCapacity, feature.SpectrumCapacity)
	}
	tap := NewTap(lp, sp)

	buf := Buffer{PCM: pcm(sine(512, 8, FFTSize, 0.3)...), Channels: 1}
	if err := tap.Process(context.Background(), buf); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if f, ok := lch.ReceiveTimeout(time.Millisecond); !ok || f.Kind != feature.KindLoudness {
		t.Errorf("loudness channel = %v, %v", f, ok)
	}
	if f, ok := sch.ReceiveTimeout(time.Millisecond); !ok || f.Kind != feature.KindSpectrum {
		t.Errorf("spectrum channel = %v, %v", f, ok)
	}
	if lch.Len() != 0 || sch.Len() != 0 {
		t.Error("Process() sent more than one frame per probe")
	}
}

func TestTap_ProcessRejectsMalformedBuffer(t *testing.T) {
	t.Parallel()

	lp, lch := NewProbe(Loudness{})
	tap := NewTap(lp)

	err := tap.Process(context.Background(), Buffer{PCM: []byte{1, 2, 3}, Channels: 1})
	if !errors.Is(err, ErrBufferFormat) {
		t.Fatalf("Process() error = %v, want ErrBufferFormat", err)
	}
	if lch.Len() != 0 {
		t.Error("malformed buffer produced a frame")
	}
}

func TestTap_ProcessAbortsOnCancel(t *testing.T) {
	t.Parallel()

	ch := feature.NewChannel(1)
	tap := NewTap(Probe{Analyzer: Loudness{}, Sink: ch.Sender()})
	buf := Buffer{PCM: pcm(1, 2), Channels: 1}

	ctx, cancel := context.WithCancel(context.Background())
	if err := tap.Process(ctx, buf); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	cancel()
	if err := tap.Process(ctx, buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() on full channel after cancel = %v, want context.Canceled", err)
	}
}
