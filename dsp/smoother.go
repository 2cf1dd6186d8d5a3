package dsp

import (
	"math"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/tuning"
	"github.com/noriah/handwave/util"
)

// ChannelConfig configures one smoothed control value.
type ChannelConfig struct {
	Active float64 // blend factor toward an observation
	Idle   float64 // blend factor toward Rest without an observation
	Rest   float64 // neutral value
	Min    float64
	Max    float64
	Window int // moving average length before the blend, 0 disables it
}

// Channel is one smoothed control value.
//
// Observations are clamped to [Min, Max], optionally averaged over the last
// Window observations, then blended into the value. Since the value and the
// blend target both sit inside the bounds, the value never leaves them.
type Channel struct {
	cfg    ChannelConfig
	value  float64
	window *util.MovingWindow
	pre    float64 // last pre-smoothed observation
}

// NewChannel returns a channel resting at cfg.Rest.
func NewChannel(cfg ChannelConfig) *Channel {
	ch := &Channel{cfg: cfg}

	if cfg.Window > 0 {
		ch.window = util.NewMovingWindow(cfg.Window)
	}

	ch.Reset()
	return ch
}

// Observe blends v into the channel and returns the new value. Non finite
// observations are ignored.
func (ch *Channel) Observe(v float64) float64 {
	if !finite(v) {
		return ch.value
	}

	v = clamp(v, ch.cfg.Min, ch.cfg.Max)

	if ch.window != nil {
		v = ch.window.Update(v)
	}

	ch.pre = v
	ch.value = ch.blend(v, ch.cfg.Active)

	return ch.value
}

// Decay moves the channel toward its rest value and returns the new value.
func (ch *Channel) Decay() float64 {
	ch.value = ch.blend(ch.cfg.Rest, ch.cfg.Idle)
	return ch.value
}

func (ch *Channel) blend(target, factor float64) float64 {
	return clamp(lerp(ch.value, target, factor), ch.cfg.Min, ch.cfg.Max)
}

// Value returns the smoothed value.
func (ch *Channel) Value() float64 {
	return ch.value
}

// PreSmoothed returns the last observation after the moving average.
func (ch *Channel) PreSmoothed() float64 {
	return ch.pre
}

// Reset returns the channel to rest and clears the moving average.
func (ch *Channel) Reset() {
	ch.value = clamp(ch.cfg.Rest, ch.cfg.Min, ch.cfg.Max)
	ch.pre = ch.value

	if ch.window != nil {
		ch.window.Reset()
	}
}

// HueChannel smooths an angle in degrees along the shortest arc.
type HueChannel struct {
	active float64
	idle   float64
	rest   float64
	value  float64
}

// NewHueChannel returns a hue channel resting at rest degrees.
func NewHueChannel(active, idle, rest float64) *HueChannel {
	rest = tuning.WrapHue(rest)
	return &HueChannel{active: active, idle: idle, rest: rest, value: rest}
}

// Observe blends the angle h into the channel.
func (hc *HueChannel) Observe(h float64) float64 {
	if !finite(h) {
		return hc.value
	}
	hc.value = tuning.WrapHue(hc.value + arc(hc.value, h)*hc.active)
	return hc.value
}

// Decay moves the hue toward rest.
func (hc *HueChannel) Decay() float64 {
	hc.value = tuning.WrapHue(hc.value + arc(hc.value, hc.rest)*hc.idle)
	return hc.value
}

// Set forces the hue.
func (hc *HueChannel) Set(h float64) {
	if finite(h) {
		hc.value = tuning.WrapHue(h)
	}
}

// Value returns the smoothed hue in [0, 360).
func (hc *HueChannel) Value() float64 {
	return hc.value
}

// arc is the signed shortest rotation from a to b, in (-180, 180].
func arc(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}

// Smoother is the bank of channels behind the control state.
type Smoother struct {
	X         *Channel
	Y         *Channel
	Intensity *Channel
	Speed     *Channel
	Hue       *HueChannel

	sideY [2]*Channel

	speedScale float64
	lastY      float64
	hasLastY   bool
}

// NewSmoother builds the bank. speedScale converts the per tick change of
// the averaged vertical position into a [0, 1] speed.
func NewSmoother(cfg tuning.Smoothing, speedScale float64) *Smoother {
	position := ChannelConfig{
		Active: cfg.PositionActive,
		Idle:   cfg.PositionIdle,
		Rest:   0.5,
		Min:    0,
		Max:    1,
		Window: cfg.PositionWindow,
	}

	sm := &Smoother{
		X: NewChannel(position),
		Y: NewChannel(position),
		Intensity: NewChannel(ChannelConfig{
			Active: cfg.IntensityActive,
			Idle:   cfg.IntensityIdle,
			Rest:   cfg.IntensityRest,
			Min:    0,
			Max:    1,
		}),
		Speed: NewChannel(ChannelConfig{
			Active: cfg.SpeedActive,
			Idle:   cfg.SpeedIdle,
			Rest:   0,
			Min:    0,
			Max:    1,
		}),
		Hue:        NewHueChannel(cfg.HueActive, cfg.HueIdle, cfg.NeutralHue),
		speedScale: speedScale,
	}

	for i := range sm.sideY {
		sm.sideY[i] = NewChannel(position)
	}

	return sm
}

// ObservePosition blends an observed centre into X and Y and returns the raw
// vertical speed of the averaged position, in [0, 1].
func (sm *Smoother) ObservePosition(x, y float64) float64 {
	if !finite(x) || !finite(y) {
		return 0
	}

	sm.X.Observe(x)
	sm.Y.Observe(y)

	avgY := sm.Y.PreSmoothed()
	speed := 0.0
	if sm.hasLastY {
		speed = clamp(math.Abs(avgY-sm.lastY)*sm.speedScale, 0, 1)
	}

	sm.lastY = avgY
	sm.hasLastY = true

	sm.Speed.Observe(speed)

	return speed
}

// ObserveSide blends the vertical position of one side's hand.
func (sm *Smoother) ObserveSide(side control.Side, y float64) float64 {
	idx := side.Index()
	if idx < 0 {
		return sm.Y.Value()
	}
	return sm.sideY[idx].Observe(y)
}

// SideY returns the smoothed vertical position for a side.
func (sm *Smoother) SideY(side control.Side) float64 {
	idx := side.Index()
	if idx < 0 {
		return sm.Y.Value()
	}
	return sm.sideY[idx].Value()
}

// DecaySide relaxes a side's vertical position.
func (sm *Smoother) DecaySide(side control.Side) {
	if idx := side.Index(); idx >= 0 {
		sm.sideY[idx].Decay()
	}
}

// Decay relaxes every channel toward neutral.
func (sm *Smoother) Decay() {
	sm.X.Decay()
	sm.Y.Decay()
	sm.Intensity.Decay()
	sm.Speed.Decay()
	sm.Hue.Decay()

	for _, ch := range sm.sideY {
		ch.Decay()
	}
}

// Fill copies the smoothed primitives into s.
func (sm *Smoother) Fill(s *control.State) {
	s.CenterX = sm.X.Value()
	s.CenterY = sm.Y.Value()
	s.Intensity = sm.Intensity.Value()
	s.Speed = sm.Speed.Value()
	s.Hue = sm.Hue.Value()
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
