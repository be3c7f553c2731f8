// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode selects which features the analysis tap extracts.
type Mode string

const (
	ModeSpectrum Mode = "spectrum"
	ModeLoudness Mode = "loudness"
	ModeBoth     Mode = "both"
)

// Spectrum reports whether spectral frames are produced.
func (m Mode) Spectrum() bool { return m == ModeSpectrum || m == ModeBoth }

// Loudness reports whether loudness frames are produced.
func (m Mode) Loudness() bool { return m == ModeLoudness || m == ModeBoth }

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	Mode        Mode
	SampleRate  int           // output rate in Hz
	BlockFrames int           // frames per analyzed buffer
	Tick        time.Duration // display tick cadence
	Poll        time.Duration // receive timeout per tick

	LogFile  string
	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Mode:        parseMode(envStr("RPLAYER_MODE", string(ModeSpectrum))),
		SampleRate:  envInt("RPLAYER_SAMPLE_RATE", 44100),
		BlockFrames: envInt("RPLAYER_BLOCK", 1024),
		Tick:        envDuration("RPLAYER_TICK", 15*time.Millisecond),
		Poll:        envDuration("RPLAYER_POLL", time.Millisecond),
		LogFile:     envStr("RPLAYER_LOG", ""),
		LogLevel:    envStr("RPLAYER_LOG_LEVEL", "info"),
	}
}

func parseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLoudness, ModeBoth:
		return m
	default:
		return ModeSpectrum
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
