package parec

import (
	"testing"

	"github.com/noriah/handwave/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgv(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 1, SampleSize: 1024, SampleRate: 44100}

	assert.Equal(t, []string{
		"parec", "--format=float32le", "--rate=44100", "--channels=1", "--latency=4096",
	}, Argv("default", cfg))

	argv := Argv("alsa_input.usb", cfg)
	assert.Equal(t, []string{"-d", "alsa_input.usb"}, argv[len(argv)-2:])
}

func TestNewSessionRejects(t *testing.T) {
	_, err := NewSession(input.SessionConfig{Device: fakeDevice{}})
	require.Error(t, err)

	_, err = NewSession(input.SessionConfig{Device: PulseDevice("default"), FrameSize: 6})
	require.Error(t, err)

	s, err := NewSession(input.SessionConfig{Device: PulseDevice("default"), SampleSize: 512, SampleRate: 44100})
	require.NoError(t, err)
	assert.NotNil(t, s.Samples())
}

type fakeDevice struct{}

func (fakeDevice) String() string { return "fake" }
