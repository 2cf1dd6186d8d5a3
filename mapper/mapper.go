// Package mapper derives secondary control values from smoothed primitives.
package mapper

import (
	"math"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/tuning"
)

// Direction is a one bit hysteresis on the horizontal offset from the
// midline. Inside the dead zone the committed sign is kept.
type Direction struct {
	deadZone float64
	sign     int
}

// NewDirection returns a direction committed to +1.
func NewDirection(deadZone float64) *Direction {
	return &Direction{deadZone: deadZone, sign: 1}
}

// Update feeds a centre position and returns the committed sign.
func (d *Direction) Update(centerX float64) int {
	offset := centerX - 0.5

	if math.IsNaN(offset) || math.Abs(offset) < d.deadZone {
		return d.sign
	}

	switch {
	case offset > 0:
		d.sign = 1
	case offset < 0:
		d.sign = -1
	}

	return d.sign
}

// SideClassifier assigns a single position to a side. Once committed it
// only flips after crossing the split by more than the band.
type SideClassifier struct {
	split float64
	band  float64
	side  control.Side
}

// NewSideClassifier returns a classifier with no prior side.
func NewSideClassifier(split, band float64) *SideClassifier {
	return &SideClassifier{split: split, band: band}
}

// Classify feeds x and returns the committed side.
func (sc *SideClassifier) Classify(x float64) control.Side {
	if math.IsNaN(x) {
		return sc.side
	}

	switch {
	case x < sc.split-sc.band:
		sc.side = control.SideLeft
	case x > sc.split+sc.band:
		sc.side = control.SideRight
	case sc.side == control.SideUnknown:
		if x < sc.split {
			sc.side = control.SideLeft
		} else {
			sc.side = control.SideRight
		}
	}

	return sc.side
}

// Mapper bundles the stateful mappers with the tuning they read.
type Mapper struct {
	cfg       tuning.Mapper
	scale     Scale
	direction *Direction
	side      *SideClassifier
}

// New builds a mapper. The scale names must parse.
func New(cfg tuning.Mapper) (*Mapper, error) {
	sc, err := NewScale(cfg.Scale)
	if err != nil {
		return nil, err
	}

	return &Mapper{
		cfg:       cfg,
		scale:     sc,
		direction: NewDirection(cfg.DeadZone),
		side:      NewSideClassifier(cfg.SideSplit, cfg.SideBand),
	}, nil
}

// Scale returns the note scale.
func (m *Mapper) Scale() Scale {
	return m.scale
}

// Direction feeds centerX to the direction hysteresis.
func (m *Mapper) Direction(centerX float64) int {
	return m.direction.Update(centerX)
}

// Side feeds centerX to the side classifier.
func (m *Mapper) Side(centerX float64) control.Side {
	return m.side.Classify(centerX)
}

// Note quantizes a vertical position onto the scale.
func (m *Mapper) Note(centerY float64) Note {
	return m.scale.Quantize(centerY)
}

// Dynamics combines intensity and vertical speed into a velocity.
func (m *Mapper) Dynamics(intensity, speed float64) float64 {
	return clamp01(m.cfg.VelocityBase + intensity*m.cfg.VelocityGain + speed*m.cfg.SpeedGain)
}

// Hue derives a colour angle from a position. Higher positions are warmer.
func (m *Mapper) Hue(centerX, centerY float64) float64 {
	return tuning.WrapHue(m.cfg.HueBase + (1-centerY)*m.cfg.HueSpan + (centerX-0.5)*m.cfg.HueTilt)
}

// Apply fills the derived fields of s from its smoothed primitives.
func (m *Mapper) Apply(s *control.State) {
	s.Direction = m.Direction(s.CenterX)
	s.Side = m.Side(s.CenterX)
	s.Dynamics = m.Dynamics(s.Intensity, s.Speed)
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

// HandIntensity combines a hand spread with the vertical speed into a raw
// intensity observation.
func HandIntensity(cfg tuning.Hands, spread, speed float64) float64 {
	return clamp01(spread*cfg.SpreadWeight + speed*cfg.SpeedWeight)
}
