package main

import (
	"strings"

	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/tuning"
	"github.com/pkg/errors"
)

// Config is a temporary struct to define parameters
type config struct {
	// Backend is the backend name from list-backends
	backend string
	// Device is the device name from list-devices
	device string
	// SampleRate is the rate at which samples are read
	sampleRate float64
	// SampleSize is how many samples one audio read holds
	sampleSize int
	// ChannelCount is the number of channels mixed down to mono
	channelCount int
	// Capture geometry and frame rate for cameras and detectors
	width       int
	height      int
	captureRate int
	// Command is the detector command line for the handpose backend
	command string
	// Preset is the name of the base tuning
	preset string
	// TuningFile overrides preset values from a YAML file
	tuningFile string
	// SamplesDir holds the piano and violin sample folders
	samplesDir string
	// Synth plays oscillators instead of samples
	synth bool
	// NoSound disables playback
	noSound bool
	// Raw prints the control state instead of drawing
	raw bool
	// Every prints one of this many ticks in raw mode
	every int
	// LogFile receives the log, the terminal belongs to the display
	logFile string
}

// NewZeroConfig returns a zero config
// it is the "default"
func newZeroConfig() config {
	return config{
		sampleRate:   44100,
		sampleSize:   1024,
		channelCount: 1,
		width:        640,
		height:       480,
		preset:       "default",
		samplesDir:   "samples",
		every:        1,
	}
}

// Sanitize cleans things up
func (cfg *config) Sanitize() error {
	if _, ok := tuning.Presets[cfg.preset]; !ok {
		return errors.Errorf("unknown preset %q; check list-presets", cfg.preset)
	}

	if cfg.backend == "" {
		cfg.backend = input.DefaultBackend()
	}

	if cfg.backend == "" {
		return errors.New("no usable backend; check list-backends")
	}

	if cfg.every < 1 {
		cfg.every = 1
	}

	cfg.command = strings.TrimSpace(cfg.command)

	return nil
}

// loadTuning builds the preset and applies the tuning file over it.
func (cfg *config) loadTuning() (tuning.Tuning, error) {
	preset, ok := tuning.Presets[cfg.preset]
	if !ok {
		return tuning.Tuning{}, errors.Errorf("unknown preset %q; check list-presets", cfg.preset)
	}

	t := preset()

	if cfg.tuningFile == "" {
		return t, nil
	}

	return tuning.Load(cfg.tuningFile, t)
}

// commandArgs splits the detector command line on spaces.
func (cfg *config) commandArgs() []string {
	return strings.Fields(cfg.command)
}
