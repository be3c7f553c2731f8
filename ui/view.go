package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brucemc/rplayer/player"
)

const (
	panelWidth    = 60 // default usable inner width
	minPanelWidth = 28
	frameOverhead = 6 // border (2) + padding (2×2)

	waterfallLines = 12 // two spectrogram rows per line
	spectrumLines  = 8
	loudnessLines  = 4
)

// pw returns the usable inner panel width for the current terminal.
func (m Model) pw() int {
	if m.width == 0 {
		return panelWidth
	}
	return max(m.width-frameOverhead, minPanelWidth)
}

// View renders the full TUI frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderTitle(),
		m.renderTransport(),
		m.renderFile(),
		"",
	}
	if m.mode.Spectrum() {
		sections = append(sections,
			renderWaterfall(m.vis.Waterfall(), m.cells, m.pw(), waterfallLines),
			renderSpectrum(m.vis.Trace(), m.pw(), spectrumLines),
			"",
		)
	}
	if m.mode.Loudness() {
		sections = append(sections,
			renderLoudness(m.vis.Loudness(), m.pw(), loudnessLines),
			"",
		)
	}
	sections = append(sections, m.renderHelp())

	if m.status != "" {
		sections = append(sections, errorStyle.Render(m.status))
	}

	return frameStyle.Width(m.pw() + frameOverhead - 2).Render(strings.Join(sections, "\n"))
}

func (m Model) renderTitle() string {
	return titleStyle.Render("R P L A Y E R")
}

// renderTransport shows the play/pause button glyph, the state and the
// volume bar.
func (m Model) renderTransport() string {
	state := m.state

	button := "▶"
	if state == player.Playing {
		button = "⏸"
	}
	left := labelStyle.Render(button+" ⏹") + "  " + statusStyle.Render(stateLabel(state))

	right := ""
	if m.volume != nil {
		vol := m.volume.Volume()
		frac := max(0, min(1, (vol+30)/36))
		barW := 12
		filled := int(frac * float64(barW))
		right = labelStyle.Render("VOL ") +
			volBarStyle.Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("░", barW-filled)) +
			dimStyle.Render(fmt.Sprintf(" %+.0fdB", vol))
	}

	gap := max(m.pw()-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func stateLabel(s player.State) string {
	switch s {
	case player.Playing:
		return "Playing"
	case player.Paused:
		return "Paused"
	case player.Faulted:
		return "Faulted"
	default:
		return "Stopped"
	}
}

func (m Model) renderFile() string {
	if m.focus == focusFile {
		return labelStyle.Render("File: ") + m.file.View()
	}
	name := m.player.Source()
	if name == "" {
		return labelStyle.Render("File: ") + dimStyle.Render("none (tab to enter a path)")
	}
	maxW := m.pw() - 6
	if r := []rune(name); len(r) > maxW {
		name = "…" + string(r[len(r)-maxW+1:])
	}
	return labelStyle.Render("File: ") + fileStyle.Render(name)
}

func (m Model) renderHelp() string {
	if m.focus == focusFile {
		return helpStyle.Render("[Enter]Load+Play [Esc]Cancel")
	}
	return helpStyle.Render("[Spc]Play/Pause [S]Stop [+-]Vol [Tab]File [Q]Quit")
}
