// Package parec captures a PulseAudio source through the parec command.
package parec

import (
	"fmt"

	"github.com/lawl/pulseaudio"
	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("parec", Backend{})
}

type Backend struct{}

func (p Backend) Init() error {
	return nil
}

func (p Backend) Close() error {
	return nil
}

func (p Backend) Kind() input.Kind {
	return input.KindSamples
}

func (p Backend) Devices() ([]input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	defer c.Close()

	s, err := c.Sources()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sources")
	}

	var devices = make([]input.Device, len(s))
	for i, source := range s {
		devices[i] = PulseDevice(source.Name)
	}

	return devices, nil
}

func (p Backend) DefaultDevice() (input.Device, error) {
	return PulseDevice("default"), nil
}

func (p Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

type PulseDevice string

func (d PulseDevice) String() string {
	return string(d)
}

// Argv returns the parec command line for a session.
func Argv(dv PulseDevice, cfg input.SessionConfig) []string {
	argv := []string{
		"parec",
		"--format=float32le",
		fmt.Sprintf("--rate=%.0f", cfg.SampleRate),
		fmt.Sprintf("--channels=%d", cfg.FrameSize),
		// keep parec from buffering a second of audio ahead of us
		fmt.Sprintf("--latency=%d", cfg.SampleSize*cfg.FrameSize*4),
	}

	if dv != "default" {
		argv = append(argv, "-d", dv.String())
	}

	return argv
}

func NewSession(cfg input.SessionConfig) (*execread.Session, error) {
	dv, ok := cfg.Device.(PulseDevice)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.FrameSize < 1 {
		cfg.FrameSize = 1
	}

	if cfg.FrameSize > 2 {
		return nil, errors.New("channel count not supported, mono/stereo only")
	}

	return execread.NewSession(Argv(dv, cfg), true, cfg), nil
}
