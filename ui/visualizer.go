package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brucemc/rplayer/visual"
)

// Unicode block elements for bar height (9 levels including space)
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Plotted magnitude range of the spectrum traces.
const (
	traceFloor = 2.0
	traceCeil  = 75.0
)

// loudnessGain lifts typical music RMS (0.1-0.3) into the plot.
const loudnessGain = 2.5

// columns reduces n values to cols columns, keeping the loudest value of
// each column's range and its index.
func columns(values []float64, cols int) (levels []float64, idx []int) {
	levels = make([]float64, cols)
	idx = make([]int, cols)
	n := len(values)
	if n == 0 || cols == 0 {
		return levels, idx
	}
	for c := range cols {
		lo := c * n / cols
		hi := max((c+1)*n/cols, lo+1)
		best := lo
		for i := lo; i < hi && i < n; i++ {
			if values[i] > values[best] {
				best = i
			}
		}
		levels[c] = values[best]
		idx[c] = best
	}
	return levels, idx
}

// cellCache memoizes rendered half-block cells by colour pair; the
// spectrogram reuses a small palette heavily.
type cellCache map[[2]string]string

func (cc cellCache) cell(top, bottom string) string {
	key := [2]string{top, bottom}
	if s, ok := cc[key]; ok {
		return s
	}
	st := lipgloss.NewStyle()
	if top != "" {
		st = st.Foreground(lipgloss.Color(top))
	}
	if bottom != "" {
		st = st.Background(lipgloss.Color(bottom))
	}
	s := st.Render("▀")
	cc[key] = s
	return s
}

// rowColors returns the hex colour of each column for one spectrogram row.
func rowColors(r visual.Row, cols int) []string {
	out := make([]string, cols)
	if len(r.Levels) == 0 {
		return out
	}
	_, idx := columns(r.Levels, cols)
	for c, i := range idx {
		out[c] = r.Colors[i].Hex()
	}
	return out
}

// renderWaterfall draws the newest rows at the top, two rows per line.
func renderWaterfall(w *visual.Waterfall, cc cellCache, cols, lines int) string {
	var sb strings.Builder
	blank := strings.Repeat(" ", cols)
	for l := range lines {
		if l > 0 {
			sb.WriteByte('\n')
		}
		top, bottom := 2*l, 2*l+1
		if top >= w.Len() {
			sb.WriteString(blank)
			continue
		}
		tc := rowColors(w.Row(top), cols)
		bc := rowColors(w.Row(bottom), cols)
		for c := range cols {
			sb.WriteString(cc.cell(tc[c], bc[c]))
		}
	}
	return sb.String()
}

func traceFrac(v float64) float64 {
	return max(0, min(1, (v-traceFloor)/(traceCeil-traceFloor)))
}

// renderSpectrum draws the current envelope as bars and the peak envelope
// as a marker above them.
func renderSpectrum(tr visual.Trace, cols, lines int) string {
	cur, _ := columns(tr.Current, cols)
	peak, _ := columns(tr.Peak, cols)

	var sb strings.Builder
	for l := range lines {
		if l > 0 {
			sb.WriteByte('\n')
		}
		floor := float64(lines - 1 - l)
		for c := range cols {
			h := traceFrac(cur[c]) * float64(lines)
			p := traceFrac(peak[c]) * float64(lines)
			fill := h - floor
			switch {
			case p > h && p > 0 && int(p) == int(floor):
				sb.WriteString(peakStyle.Render("▔"))
			case fill >= 1:
				sb.WriteString(traceStyle.Render(barBlocks[len(barBlocks)-1]))
			case fill > 0:
				sb.WriteString(traceStyle.Render(barBlocks[int(fill*float64(len(barBlocks)-1))]))
			default:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// renderLoudness draws the newest cols samples of the history, oldest on
// the left.
func renderLoudness(h *visual.LoudnessHistory, cols, lines int) string {
	vals := h.Values()
	if len(vals) > cols {
		vals = vals[len(vals)-cols:]
	}
	pad := cols - len(vals)

	var sb strings.Builder
	for l := range lines {
		if l > 0 {
			sb.WriteByte('\n')
		}
		floor := float64(lines - 1 - l)
		sb.WriteString(strings.Repeat(" ", pad))
		for _, v := range vals {
			fill := min(1, v*loudnessGain)*float64(lines) - floor
			switch {
			case fill >= 1:
				sb.WriteString(levelStyle.Render(barBlocks[len(barBlocks)-1]))
			case fill > 0:
				sb.WriteString(levelStyle.Render(barBlocks[int(fill*float64(len(barBlocks)-1))]))
			default:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}
