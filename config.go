package handwave

import (
	"context"
	"log"

	"github.com/noriah/handwave/processor"
	"github.com/noriah/handwave/sound"
	"github.com/noriah/handwave/tuning"
	"github.com/pkg/errors"
)

// Limits on the capture settings.
const (
	MaxFrameSize  = 2
	MaxSampleSize = 1 << 14
	MinSampleSize = 4
)

type Config struct {
	// The name of the backend from the input package
	Backend string
	// The name of the device to pull data from
	Device string
	// The rate that samples are read, for audio backends
	SampleRate float64
	// The number of samples per batch, for audio backends
	SampleSize int
	// The number of interleaved channels to read
	FrameSize int
	// Capture geometry and rate, for video and landmark backends
	Width, Height, CaptureRate int
	// Detector command line, for the handpose backend
	Command []string

	// Every constant of the pipeline
	Tuning tuning.Tuning

	// Function to call when setting up the pipeline
	SetupFunc SetupFunc
	// Function to call when starting the pipeline
	StartFunc StartFunc
	// Function to call when cleaning up the pipeline
	CleanupFunc CleanupFunc
	// Function to call with a message for the user, like a failed input
	NoticeFunc NoticeFunc
	// Where to send the control state
	Output processor.Output
	// Where to send the notes, nil plays nothing
	Player sound.Player
	// Where to log, nil discards
	Logger *log.Logger
}

type (
	SetupFunc   func() error
	StartFunc   func(ctx context.Context) (context.Context, error)
	CleanupFunc func() error
	NoticeFunc  func(msg string)
)

func NewZeroConfig() Config {
	return Config{
		SampleRate: 44100,
		SampleSize: 1024,
		FrameSize:  1,
		Width:      640,
		Height:     480,
		Tuning:     tuning.Default(),
	}
}

func (cfg *Config) Validate() error {
	if cfg.SampleRate < float64(cfg.SampleSize) {
		return errors.New("sample rate lower than sample size")
	}

	switch {
	case cfg.SampleSize < MinSampleSize:
		return errors.Errorf("sample size too small (%d+ required)", MinSampleSize)

	case cfg.SampleSize > MaxSampleSize:
		return errors.Errorf("sample size too large (%d max)", MaxSampleSize)

	case cfg.FrameSize > MaxFrameSize:
		return errors.Errorf("too many channels (%d max)", MaxFrameSize)

	case cfg.FrameSize < 1:
		return errors.New("too few channels (1 min)")

	case cfg.Width < 0 || cfg.Height < 0 || cfg.CaptureRate < 0:
		return errors.New("negative capture size or rate")
	}

	return errors.Wrap(cfg.Tuning.Validate(), "invalid tuning")
}
