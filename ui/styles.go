package ui

import "github.com/charmbracelet/lipgloss"

// Color palette using standard ANSI terminal colors (0-15) so the frame
// adapts to the user's terminal theme. Spectrogram cells use true colour.
var (
	colorBorder  = lipgloss.ANSIColor(8)  // bright black (dark gray)
	colorTitle   = lipgloss.ANSIColor(10) // bright green
	colorText    = lipgloss.ANSIColor(7)  // white (light gray)
	colorDim     = lipgloss.ANSIColor(8)  // bright black (dark gray)
	colorAccent  = lipgloss.ANSIColor(11) // bright yellow
	colorPlaying = lipgloss.ANSIColor(10) // bright green
	colorVolume  = lipgloss.ANSIColor(2)  // green

	colorTrace = lipgloss.ANSIColor(15) // bright white
	colorPeak  = lipgloss.ANSIColor(9)  // bright red
	colorLevel = lipgloss.ANSIColor(14) // bright cyan
)

// Lip Gloss styles
var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorPlaying).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	volBarStyle = lipgloss.NewStyle().Foreground(colorVolume)

	traceStyle = lipgloss.NewStyle().Foreground(colorTrace)
	peakStyle  = lipgloss.NewStyle().Foreground(colorPeak)
	levelStyle = lipgloss.NewStyle().Foreground(colorLevel)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.ANSIColor(9)) // bright red
)
