package sound

import (
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

// envelope shapes a streamer with a linear attack, a hold and a linear
// release. It ends after hold plus release samples.
type envelope struct {
	s beep.Streamer

	attack  int
	hold    int
	release int
	pos     int
}

func newEnvelope(s beep.Streamer, v Voice) *envelope {
	return &envelope{
		s:       s,
		attack:  Format.SampleRate.N(v.Attack),
		hold:    Format.SampleRate.N(v.Duration),
		release: Format.SampleRate.N(v.Release),
	}
}

// shape wraps s in the envelope of v and scales it by velocity.
func shape(s beep.Streamer, velocity float64, v Voice) beep.Streamer {
	return &effects.Gain{
		Streamer: newEnvelope(s, v),
		Gain:     clamp01(velocity) - 1,
	}
}

func (e *envelope) level(pos int) float64 {
	g := 1.0
	if pos < e.attack {
		g = float64(pos) / float64(e.attack)
	}
	return g
}

func (e *envelope) gain(pos int) float64 {
	if pos < e.hold {
		return e.level(pos)
	}

	if e.release <= 0 {
		return 0
	}

	g := e.level(e.hold) * (1 - float64(pos-e.hold)/float64(e.release))
	if g < 0 {
		return 0
	}
	return g
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	left := e.hold + e.release - e.pos
	if left <= 0 {
		return 0, false
	}

	if len(samples) > left {
		samples = samples[:left]
	}

	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gain(e.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}

	return n, ok
}

func (e *envelope) Err() error {
	return e.s.Err()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
