// Package ui implements the Bubbletea TUI: transport controls, a file path
// field and the spectrogram, spectrum and loudness traces.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/brucemc/rplayer/config"
	"github.com/brucemc/rplayer/player"
	"github.com/brucemc/rplayer/visual"
)

type focusArea int

const (
	focusControls focusArea = iota
	focusFile
)

type tickMsg time.Time

// VolumeControl is implemented by engines with an output gain stage.
type VolumeControl interface {
	SetVolume(db float64)
	Volume() float64
}

// Model is the Bubbletea model. It is the display loop: every tick polls
// the feature channels once through the visual engine.
type Model struct {
	player *player.Player
	volume VolumeControl
	vis    *visual.Engine
	mode   config.Mode
	tick   time.Duration
	poll   time.Duration
	log    *log.Logger

	state  player.State // last observed in Update; View never polls
	file   textinput.Model
	focus  focusArea
	cells  cellCache
	status string // last error, kept until the next success

	quitting bool
	width    int
	height   int
}

// NewModel creates a Model wired to the given player and visual engine.
// vol may be nil.
func NewModel(p *player.Player, vis *visual.Engine, vol VolumeControl, cfg config.Config, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/file.mp3"
	ti.SetValue(p.Source())
	ti.Prompt = ""
	ti.CharLimit = 4096
	ti.Width = panelWidth - 6

	return Model{
		player: p,
		volume: vol,
		vis:    vis,
		mode:   cfg.Mode,
		tick:   cfg.Tick,
		poll:   cfg.Poll,
		log:    logger.WithPrefix("ui"),
		state:  p.State(),
		file:   ti,
		cells:  cellCache{},
	}
}

// Init starts the tick timer and requests the terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), tea.WindowSize())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages: key presses, ticks, and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.state = m.player.State()
		if m.quitting {
			return m, tea.Quit
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.state = m.player.State()
		if m.vis.Tick(m.poll, m.state == player.Playing) {
			m.status = ""
		}
		if m.state == player.Faulted {
			m.status = "Error: " + m.player.Fault()
		}
		return m, m.tickCmd()
	}

	if m.focus == focusFile {
		var cmd tea.Cmd
		m.file, cmd = m.file.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return nil
	}

	if m.focus == focusFile {
		switch msg.String() {
		case "enter":
			m.player.SetSource(m.file.Value())
			m.blurFile()
			m.play()
			return nil
		case "esc", "tab":
			m.file.SetValue(m.player.Source())
			m.blurFile()
			return nil
		}
		var cmd tea.Cmd
		m.file, cmd = m.file.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
	case " ", "p":
		m.playPause()
	case "s":
		m.stop()
	case "+", "=":
		m.nudgeVolume(1)
	case "-":
		m.nudgeVolume(-1)
	case "tab":
		m.focus = focusFile
		return m.file.Focus()
	}
	return nil
}

func (m *Model) blurFile() {
	m.file.Blur()
	m.focus = focusControls
}

func (m *Model) play() {
	if err := m.player.Play(); err != nil {
		m.fail("could not play", err)
		return
	}
	m.status = ""
}

func (m *Model) playPause() {
	if err := m.player.PlayPause(); err != nil {
		m.fail("could not play", err)
		return
	}
	m.status = ""
}

func (m *Model) stop() {
	if err := m.player.Stop(); err != nil {
		m.fail("could not stop", err)
		return
	}
	m.status = ""
}

func (m *Model) fail(what string, err error) {
	m.log.Error(what, "err", err)
	m.status = "Error: " + what + ". " + err.Error()
}

func (m *Model) nudgeVolume(db float64) {
	if m.volume == nil {
		return
	}
	m.volume.SetVolume(m.volume.Volume() + db)
}
