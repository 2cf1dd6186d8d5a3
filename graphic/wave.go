// Package graphic draws the layered wave.
package graphic

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/tuning"
)

// harmonicRate is the phase rate of the half frequency overtone.
const harmonicRate = 0.6

// Params are the control values the wave reads.
type Params struct {
	CenterX   float64
	CenterY   float64
	Intensity float64
	Hue       float64
}

// ParamsFrom picks the wave parameters out of a control state.
func ParamsFrom(s control.State) Params {
	return Params{
		CenterX:   s.CenterX,
		CenterY:   s.CenterY,
		Intensity: s.Intensity,
		Hue:       s.Hue,
	}
}

// Point is a position on the drawing surface.
type Point struct {
	X, Y float64
}

// Stroke is one layer of the wave, ready to draw.
type Stroke struct {
	Points []Point
	Width  float64
	Alpha  float64
	Color  colorful.Color
}

// Phase integrates the travelling phase of the wave. The speed follows the
// intensity and the sign follows the committed direction, so the wave never
// jumps when the direction holds.
type Phase struct {
	cfg     tuning.Wave
	value   float64
	last    time.Time
	started bool
}

// NewPhase returns a phase at zero.
func NewPhase(cfg tuning.Wave) *Phase {
	return &Phase{cfg: cfg}
}

// Advance moves the phase to now and returns it. The first call only sets
// the clock. Long stalls advance by at most MaxStep.
func (p *Phase) Advance(now time.Time, intensity float64, direction int) float64 {
	if !p.started {
		p.started = true
		p.last = now
		return p.value
	}

	dt := now.Sub(p.last)
	p.last = now

	switch {
	case dt < 0:
		dt = 0
	case dt > p.cfg.MaxStep:
		dt = p.cfg.MaxStep
	}

	sign := 1.0
	if direction < 0 {
		sign = -1
	}

	freq := p.cfg.BaseFreq + p.cfg.FreqGain*clamp01(intensity)
	p.value += 2 * math.Pi * freq * sign * dt.Seconds()

	// keep precision over long runs
	p.value = math.Mod(p.value, 2*math.Pi*1e6)

	return p.value
}

// Value returns the current phase in radians.
func (p *Phase) Value() float64 {
	return p.value
}

// Layers computes the strokes of the wave on a w by h surface. It is pure.
//
// Every layer shares the phase. The amplitude is a quiet base that grows
// with intensity plus a peak that grows with height, concentrated around
// the centre by a Gaussian bulge.
func Layers(p Params, phase float64, w, h float64, cfg tuning.Wave) []Stroke {
	if w <= 0 || h <= 0 {
		return nil
	}

	mid := h / 2
	xc := clamp01(p.CenterX) * w
	yInv := 1 - clamp01(p.CenterY)

	baseA := (cfg.BaseAmp + cfg.BaseGain*clamp01(p.Intensity)) * h
	peakA := (cfg.PeakAmp + cfg.PeakGain*yInv) * h

	sigma := cfg.Sigma * w
	k := 2 * math.Pi / w

	strokes := make([]Stroke, 0, len(cfg.Layers))

	for _, l := range cfg.Layers {
		step := float64(l.Step)
		if step < 1 {
			step = 1
		}

		pts := make([]Point, 0, int(w/step)+1)

		for x := 0.0; x <= w; x += step {
			dx := x - xc
			boost := math.Exp(-(dx * dx) / (2 * sigma * sigma))
			a := l.Amplitude * (baseA + peakA*boost)

			y := mid + a*math.Sin(k*l.Frequency*x+phase*l.PhaseRate)
			if l.Harmonic != 0 {
				y += l.Harmonic * a * math.Sin(k*l.Frequency*0.5*x+phase*harmonicRate)
			}

			pts = append(pts, Point{X: x, Y: y})
		}

		strokes = append(strokes, Stroke{
			Points: pts,
			Width:  l.Width,
			Alpha:  l.Alpha,
			Color:  StrokeColor(p.Hue, l),
		})
	}

	return strokes
}

// StrokeColor is the colour of a layer at hue.
func StrokeColor(hue float64, l tuning.Layer) colorful.Color {
	return colorful.Hsl(tuning.WrapHue(hue), l.Saturation, l.Lightness)
}

// Background is the faint tint behind the wave.
func Background(hue float64) colorful.Color {
	return colorful.Hsl(tuning.WrapHue(hue), 0.55, 0.06)
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
