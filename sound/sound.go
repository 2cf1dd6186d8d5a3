// Package sound renders the note events of the pipeline. Every side owns
// one instrument and each note becomes a finite beep streamer. Package
// speaker mixes them onto the sound card.
package sound

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/mapper"
	"github.com/pkg/errors"
)

// SampleRate is the output rate of the engine.
const SampleRate beep.SampleRate = 44100

// Format is the stream format every instrument renders in.
var Format = beep.Format{
	SampleRate:  SampleRate,
	NumChannels: 2,
	Precision:   4,
}

var (
	// ErrNotReady is returned while the device or the instrument of a side
	// is still starting.
	ErrNotReady = errors.New("sound not ready")

	// ErrNoteOutOfRange is returned for notes an instrument cannot play.
	ErrNoteOutOfRange = errors.New("note out of range")
)

// Event is one note to play.
type Event struct {
	Side     control.Side
	Note     mapper.Note
	Velocity float64 // [0, 1]
}

// Voice shapes a note of one side.
type Voice struct {
	Duration time.Duration // held length, before the release
	Attack   time.Duration
	Release  time.Duration
}

// DefaultVoices are the note lengths by side index. The left side plays
// eighth notes and the right side quarter notes at 120 bpm.
func DefaultVoices() [2]Voice {
	return [2]Voice{
		{Duration: 250 * time.Millisecond, Attack: 4 * time.Millisecond, Release: 900 * time.Millisecond},
		{Duration: 500 * time.Millisecond, Attack: 10 * time.Millisecond, Release: 1400 * time.Millisecond},
	}
}

// Instrument renders notes.
type Instrument interface {
	// Ready reports whether the instrument can play.
	Ready() bool

	// Voice returns a finite streamer in Format playing note with v.
	Voice(note mapper.Note, velocity float64, v Voice) (beep.Streamer, error)
}

// Player is what the pipeline needs from the engine.
type Player interface {
	Ready(side control.Side) bool
	Play(ev Event) error
}
