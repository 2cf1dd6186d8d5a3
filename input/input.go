// Package input adapts sensor streams (camera frames, hand landmarks,
// microphone samples) into single-slot mailboxes the control tick reads
// without blocking.
package input

import (
	"context"
)

// Sample is a single audio sample.
type Sample = float64

// Device is a capture device a backend can open.
type Device interface {
	String() string
}

// SessionConfig configures a capture session. Audio backends read the sample
// fields, video backends the geometry, process backends the command.
type SessionConfig struct {
	Device Device

	FrameSize  int     // number of channels per frame
	SampleSize int     // number of frames per buffer
	SampleRate float64 // sample rate

	Width     int // requested capture width
	Height    int // requested capture height
	FrameRate int // requested capture rate

	Command []string // argv of an external producer, if any
}

// Session is a running capture. Start blocks while the session feeds its
// mailbox and returns when ctx is done, the device fails or the producer
// exits. Stop may be called more than once.
type Session interface {
	Start(ctx context.Context) error
	Stop() error
}

// SampleSource is a session producing mono sample buffers.
type SampleSource interface {
	Session
	Samples() *Latest[[]Sample]
}

// FrameSource is a session producing video frames.
type FrameSource interface {
	Session
	Frames() *Latest[Frame]
}

// LandmarkSource is a session producing hand landmarks.
type LandmarkSource interface {
	Session
	Landmarks() *Latest[Landmarks]
}

// MixDown averages interleaved frames of frameSize channels into dst and
// returns the number of frames written.
func MixDown(dst []Sample, interleaved []float64, frameSize int) int {
	if frameSize < 1 {
		frameSize = 1
	}

	n := len(interleaved) / frameSize
	if n > len(dst) {
		n = len(dst)
	}

	scale := 1 / float64(frameSize)

	for i := 0; i < n; i++ {
		sum := 0.0
		for ch := 0; ch < frameSize; ch++ {
			sum += interleaved[i*frameSize+ch]
		}
		dst[i] = sum * scale
	}

	return n
}
