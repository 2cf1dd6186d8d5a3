// Package ffmpeg captures audio and video through the ffmpeg command.
package ffmpeg

import (
	"fmt"

	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/input/common/execread"
)

type FFmpegBackend interface {
	InputArgs() []string
}

// AudioArgv is the ffmpeg command line writing float32le frames to stdout.
func AudioArgv(b FFmpegBackend, cfg input.SessionConfig) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, b.InputArgs()...)
	args = append(args,
		"-ar", fmt.Sprintf("%.0f", cfg.SampleRate),
		"-ac", fmt.Sprintf("%d", cfg.FrameSize),
		"-f", "f32le",
		"-",
	)
	return args
}

func NewSession(b FFmpegBackend, cfg input.SessionConfig) (*execread.Session, error) {
	if cfg.FrameSize < 1 {
		cfg.FrameSize = 1
	}
	return execread.NewSession(AudioArgv(b, cfg), true, cfg), nil
}
