package ffmpeg

import (
	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/input/parec"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-pulse", Pulse{})
}

// Pulse is the pulse input for FFmpeg. It lists devices like parec.
type Pulse struct {
	parec.Backend
}

func (p Pulse) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(parec.PulseDevice)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewSession(PulseInput(dv), cfg)
}

// PulseInput is a pulse source as an ffmpeg input.
type PulseInput string

func (d PulseInput) InputArgs() []string {
	return []string{"-f", "pulse", "-i", string(d)}
}
