package sound

import (
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/noriah/handwave/mapper"
	"github.com/pkg/errors"
)

// audible range of the synth
const (
	minFreq = 20.0
	maxFreq = 20000.0
)

// Synth is an oscillator instrument. It needs no samples and is always
// ready.
type Synth struct {
	Harmonic float64 // weight of the octave overtone
	Level    float64 // peak amplitude
}

// NewSynth returns a soft sine voice.
func NewSynth() *Synth {
	return &Synth{Harmonic: 0.25, Level: 0.5}
}

// Ready is always true.
func (sy *Synth) Ready() bool {
	return true
}

// Voice returns an oscillator at the frequency of note.
func (sy *Synth) Voice(note mapper.Note, velocity float64, v Voice) (beep.Streamer, error) {
	freq := note.Frequency()
	if freq < minFreq || freq > maxFreq || freq*2 > float64(SampleRate)/2 {
		return nil, errors.Wrapf(ErrNoteOutOfRange, "synth cannot play %s", note)
	}

	return shape(sy.oscillator(freq), velocity, v), nil
}

func (sy *Synth) oscillator(freq float64) beep.Streamer {
	step := 2 * math.Pi * freq / float64(SampleRate)
	norm := sy.Level / (1 + math.Abs(sy.Harmonic))

	var phase float64

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := norm * (math.Sin(phase) + sy.Harmonic*math.Sin(2*phase))
			samples[i][0] = v
			samples[i][1] = v

			phase += step
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}
		return len(samples), true
	})
}
