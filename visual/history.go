package visual

import colorful "github.com/lucasb-eyer/go-colorful"

// Row is one spectrogram line: the levels it was built from and their
// gradient colours.
type Row struct {
	Levels []float64
	Colors []colorful.Color
}

// Waterfall keeps the most recent rows, newest first, in a fixed ring.
type Waterfall struct {
	rows []Row
	head int // slot of the newest row
	n    int
}

// NewWaterfall creates an empty Waterfall holding at most size rows.
func NewWaterfall(size int) *Waterfall {
	if size < 1 {
		size = WaterfallSize
	}
	return &Waterfall{rows: make([]Row, size), head: -1}
}

// Push adds a row built from levels at the front, evicting the oldest row
// once the ring is full. levels is copied.
func (w *Waterfall) Push(levels []float64) {
	w.head = (w.head + 1) % len(w.rows)
	r := &w.rows[w.head]
	if cap(r.Levels) < len(levels) {
		r.Levels = make([]float64, len(levels))
		r.Colors = make([]colorful.Color, len(levels))
	}
	r.Levels = r.Levels[:len(levels)]
	r.Colors = r.Colors[:len(levels)]
	copy(r.Levels, levels)
	for i, v := range levels {
		r.Colors[i] = Gradient(v / gradientScale)
	}
	if w.n < len(w.rows) {
		w.n++
	}
}

// Len returns the number of rows held.
func (w *Waterfall) Len() int { return w.n }

// Cap returns the maximum number of rows.
func (w *Waterfall) Cap() int { return len(w.rows) }

// Row returns the i-th row, 0 being the newest.
func (w *Waterfall) Row(i int) Row {
	if i < 0 || i >= w.n {
		return Row{}
	}
	return w.rows[(w.head-i+len(w.rows))%len(w.rows)]
}

// Rows returns all rows newest first. The rows alias internal storage and
// are valid until the next Push.
func (w *Waterfall) Rows() []Row {
	out := make([]Row, w.n)
	for i := range out {
		out[i] = w.Row(i)
	}
	return out
}

// LoudnessHistory is a fixed-length FIFO of loudness samples, oldest first.
// It starts filled with zeros and never changes length.
type LoudnessHistory struct {
	buf  []float64
	head int // slot of the oldest sample
}

// NewLoudnessHistory creates a zero-filled history of the given length.
func NewLoudnessHistory(size int) *LoudnessHistory {
	if size < 1 {
		size = LoudnessSize
	}
	return &LoudnessHistory{buf: make([]float64, size)}
}

// Push appends v and drops the oldest sample.
func (h *LoudnessHistory) Push(v float64) {
	h.buf[h.head] = v
	h.head = (h.head + 1) % len(h.buf)
}

// Len always equals the size the history was created with.
func (h *LoudnessHistory) Len() int { return len(h.buf) }

// At returns the i-th sample, 0 being the oldest.
func (h *LoudnessHistory) At(i int) float64 {
	return h.buf[(h.head+i)%len(h.buf)]
}

// Latest returns the newest sample.
func (h *LoudnessHistory) Latest() float64 {
	return h.At(len(h.buf) - 1)
}

// Values returns a copy of the history, oldest first.
func (h *LoudnessHistory) Values() []float64 {
	out := make([]float64, len(h.buf))
	n := copy(out, h.buf[h.head:])
	copy(out[n:], h.buf[:h.head])
	return out
}
