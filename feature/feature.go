// Package feature turns raw sensor data into per-tick observations of a
// position and an intensity.
package feature

import (
	"sync/atomic"
	"time"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/input"
)

// Status tells the smoother what to do with an observation.
type Status int

const (
	// Absent means nothing was observed. The smoother decays to neutral.
	Absent Status = iota
	// Present carries a new raw observation.
	Present
	// Pending means the source has delivered nothing new since the last
	// tick. The smoother holds its values.
	Pending
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case Pending:
		return "pending"
	default:
		return "absent"
	}
}

// Hand is one detected hand after extraction.
type Hand struct {
	X, Y   float64 // palm position
	Spread float64 // thumb to pinky distance, scaled into [0, 1]
	Side   control.Side
}

// Observation is the output of one extraction.
type Observation struct {
	Status Status

	X, Y      float64 // raw centre, [0, 1]
	Intensity float64 // raw intensity, [0, 1]

	// FromSpread marks Intensity as a hand spread, still to be combined
	// with the vertical speed.
	FromSpread bool

	Hue    float64 // set by sources with their own colour, like audio
	HasHue bool

	Hands []Hand // sides assigned, ordered left to right
}

// Extractor produces one observation per control tick. It must not block.
type Extractor interface {
	Extract(now time.Time) Observation
}

// Idle never observes anything. It stands in for a source that failed.
type Idle struct{}

func (Idle) Extract(time.Time) Observation {
	return Observation{Status: Absent, X: 0.5, Y: 0.5}
}

// poller tracks which deliveries of a mailbox were already consumed.
type poller[T any] struct {
	box        *input.Latest[T]
	seq        uint64
	staleAfter time.Duration
}

// poll returns the mailbox value and whether it is new. A value that is not
// new but younger than staleAfter is Pending. Anything else is Absent.
func (p *poller[T]) poll(now time.Time) (v T, status Status) {
	v, stamp, ok := p.box.Load()
	if !ok {
		return v, Absent
	}

	if stamp.Seq != p.seq {
		p.seq = stamp.Seq
		return v, Present
	}

	if p.staleAfter > 0 && now.Sub(stamp.At) > p.staleAfter {
		return v, Absent
	}

	return v, Pending
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Swap is an extractor whose source can be replaced while the pipeline
// runs. It extracts nothing until Set is called.
type Swap struct {
	cur atomic.Pointer[Extractor]
}

// Set replaces the extractor. A nil extractor becomes Idle.
func (sw *Swap) Set(ex Extractor) {
	if ex == nil {
		ex = Idle{}
	}
	sw.cur.Store(&ex)
}

func (sw *Swap) Extract(now time.Time) Observation {
	if ex := sw.cur.Load(); ex != nil {
		return (*ex).Extract(now)
	}
	return Idle{}.Extract(now)
}
