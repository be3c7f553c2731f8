// Package main is the entry point for rplayer, a terminal audio player
// with a live spectrogram and loudness trace.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"

	"github.com/brucemc/rplayer/analysis"
	"github.com/brucemc/rplayer/config"
	"github.com/brucemc/rplayer/feature"
	"github.com/brucemc/rplayer/player"
	"github.com/brucemc/rplayer/ui"
	"github.com/brucemc/rplayer/visual"
)

// newLogger writes to the configured file since the TUI owns the terminal.
func newLogger(cfg config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.LogFile == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := tea.LogToFile(cfg.LogFile, "")
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "rplayer",
		Level:           level,
	})
	return logger, func() { f.Close() }, nil
}

// newAnalysis builds one probe and channel per extracted feature and the
// visual engine reading them. The transform spans a whole block so that
// every analyzed buffer reaches the spectrum.
func newAnalysis(cfg config.Config) ([]analysis.Probe, *visual.Engine) {
	var (
		probes             []analysis.Probe
		spectrum, loudness *feature.Channel
	)
	bins := analysis.Bins
	if cfg.Mode.Spectrum() {
		s := analysis.NewSpectrum(cfg.BlockFrames)
		bins = s.Bins()
		var p analysis.Probe
		p, spectrum = analysis.NewProbe(s)
		probes = append(probes, p)
	}
	if cfg.Mode.Loudness() {
		var p analysis.Probe
		p, loudness = analysis.NewProbe(analysis.Loudness{})
		probes = append(probes, p)
	}

	vis := visual.NewEngine(bins)
	vis.Listen(spectrum, loudness)
	return probes, vis
}

func run() error {
	cfg := config.Load()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	probes, vis := newAnalysis(cfg)

	engine, err := player.NewBeepEngine(beep.SampleRate(cfg.SampleRate), cfg.BlockFrames, logger)
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	p := player.New(engine, logger, probes...)
	defer p.Close()

	var source string
	if len(os.Args) > 1 {
		source = os.Args[1]
	}
	p.SetSource(source)

	logger.Info("starting", "mode", cfg.Mode, "rate", cfg.SampleRate, "block", cfg.BlockFrames, "source", source)

	m := ui.NewModel(p, vis, engine, cfg, logger)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
