// Package control holds the control state threaded through every tick.
package control

import "fmt"

// Side identifies a logical trigger channel. Each side is bound to its own
// throttle timer and its own instrument.
type Side int

// Sides
const (
	SideUnknown Side = iota
	SideLeft
	SideRight
)

// Sides lists the sides that can carry sound events.
var Sides = [...]Side{SideLeft, SideRight}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Index returns the slot of the side in per-side arrays, or -1.
func (s Side) Index() int {
	switch s {
	case SideLeft:
		return 0
	case SideRight:
		return 1
	default:
		return -1
	}
}

// ParseSide parses the output of Side.String.
func ParseSide(name string) (Side, error) {
	switch name {
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	}
	return SideUnknown, fmt.Errorf("unknown side %q", name)
}

// State is the control record produced once per tick.
type State struct {
	CenterX   float64 // [0, 1]
	CenterY   float64 // [0, 1], 0 is the top of the frame
	Intensity float64 // [0, 1]
	Direction int     // -1 or +1
	Hue       float64 // [0, 360)
	Speed     float64 // smoothed vertical speed [0, 1]
	Dynamics  float64 // velocity and amplitude [0, 1]
	Side      Side    // side the centre currently sits on
	Note      string  // scale note under the centre
	Active    bool    // the last tick carried an observation
}

// Neutral returns the resting state used before the first observation.
func Neutral(restIntensity, hue float64) State {
	return State{
		CenterX:   0.5,
		CenterY:   0.5,
		Intensity: restIntensity,
		Direction: 1,
		Hue:       hue,
	}
}
