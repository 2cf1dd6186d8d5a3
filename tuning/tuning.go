// Package tuning holds every constant that shapes how the installation
// responds. The variants of the piece differ only in these numbers, so none
// of them are hard coded in the pipeline.
package tuning

import (
	"math"
	"time"
)

// Smoothing configures the temporal smoother.
type Smoothing struct {
	PositionActive  float64 `yaml:"position_active"`  // blend toward an observed position
	PositionIdle    float64 `yaml:"position_idle"`    // decay toward the centre
	PositionWindow  int     `yaml:"position_window"`  // moving average length
	IntensityActive float64 `yaml:"intensity_active"` // blend toward an observed intensity
	IntensityIdle   float64 `yaml:"intensity_idle"`   // decay toward IntensityRest
	IntensityRest   float64 `yaml:"intensity_rest"`   // idle floor, never zero
	SpeedActive     float64 `yaml:"speed_active"`
	SpeedIdle       float64 `yaml:"speed_idle"`
	HueActive       float64 `yaml:"hue_active"`
	HueIdle         float64 `yaml:"hue_idle"`
	NeutralHue      float64 `yaml:"neutral_hue"`
}

// Mapper configures the parameter mapper.
type Mapper struct {
	DeadZone     float64  `yaml:"dead_zone"`     // direction hysteresis half width
	SideSplit    float64  `yaml:"side_split"`    // left/right boundary
	SideBand     float64  `yaml:"side_band"`     // side hysteresis half width
	Scale        []string `yaml:"scale"`         // notes from low to high
	VelocityBase float64  `yaml:"velocity_base"` // velocity at zero intensity
	VelocityGain float64  `yaml:"velocity_gain"`
	SpeedGain    float64  `yaml:"speed_gain"` // vertical speed contribution to dynamics
	HueBase      float64  `yaml:"hue_base"`
	HueSpan      float64  `yaml:"hue_span"` // hue added from bottom to top
	HueTilt      float64  `yaml:"hue_tilt"` // hue added per unit of horizontal offset
}

// Trigger configures the trigger throttle.
type Trigger struct {
	BaseGap time.Duration `yaml:"base_gap"` // gap at full intensity
	Spread  time.Duration `yaml:"spread"`   // gap added at zero intensity

	// SilentIdle stops the resting notes played while nothing is observed.
	SilentIdle bool `yaml:"silent_idle"`
}

// Motion configures the frame differencing extractor.
type Motion struct {
	Scale     int     `yaml:"scale"`     // integer downsample factor
	Block     int     `yaml:"block"`     // block edge in downsampled pixels
	Threshold float64 `yaml:"threshold"` // mean luminance delta for a hit
	Gain      float64 `yaml:"gain"`      // hit ratio to intensity
	Mirror    bool    `yaml:"mirror"`
}

// Hands configures the hand landmark extractor.
type Hands struct {
	Palm         int           `yaml:"palm"`
	Thumb        int           `yaml:"thumb"`
	Pinky        int           `yaml:"pinky"`
	MaxHands     int           `yaml:"max_hands"`
	SpreadScale  float64       `yaml:"spread_scale"`
	SpreadWeight float64       `yaml:"spread_weight"`
	SpeedScale   float64       `yaml:"speed_scale"`
	SpeedWeight  float64       `yaml:"speed_weight"`
	StaleAfter   time.Duration `yaml:"stale_after"`
	Mirror       bool          `yaml:"mirror"`
}

// Audio configures the microphone extractor.
type Audio struct {
	LevelGain    float64 `yaml:"level_gain"`    // rms to intensity
	SilenceFloor float64 `yaml:"silence_floor"` // rms below this is silence
	LowFreq      float64 `yaml:"low_freq"`
	HighFreq     float64 `yaml:"high_freq"`
	HueLow       float64 `yaml:"hue_low"`
	HueHigh      float64 `yaml:"hue_high"`
}

// Layer is one stroke of the wave.
type Layer struct {
	Amplitude float64 `yaml:"amplitude"` // fraction of the full amplitude
	Frequency float64 `yaml:"frequency"` // spatial frequency multiplier
	PhaseRate float64 `yaml:"phase_rate"`
	Harmonic  float64 `yaml:"harmonic"` // half frequency overtone weight
	Step      int     `yaml:"step"`     // columns between points
	Width     float64 `yaml:"width"`
	Alpha     float64 `yaml:"alpha"`

	Saturation float64 `yaml:"saturation"` // stroke colour, [0, 1]
	Lightness  float64 `yaml:"lightness"`
}

// Wave configures the renderer.
type Wave struct {
	BaseFreq  float64       `yaml:"base_freq"` // cycles per second at rest
	FreqGain  float64       `yaml:"freq_gain"` // cycles per second added at full intensity
	MaxStep   time.Duration `yaml:"max_step"`  // longest dt integrated in one tick
	Sigma     float64       `yaml:"sigma"`     // bulge width as a fraction of the width
	BaseAmp   float64       `yaml:"base_amp"`  // fractions of the surface height
	BaseGain  float64       `yaml:"base_gain"`
	PeakAmp   float64       `yaml:"peak_amp"`
	PeakGain  float64       `yaml:"peak_gain"`
	Layers    []Layer       `yaml:"layers"`
	FrameRate int           `yaml:"frame_rate"`
}

// Tuning is the full set of constants.
type Tuning struct {
	Smoothing Smoothing `yaml:"smoothing"`
	Mapper    Mapper    `yaml:"mapper"`
	Trigger   Trigger   `yaml:"trigger"`
	Motion    Motion    `yaml:"motion"`
	Hands     Hands     `yaml:"hands"`
	Audio     Audio     `yaml:"audio"`
	Wave      Wave      `yaml:"wave"`
}

// DefaultScale is a two octave C major pentatonic.
var DefaultScale = []string{"C4", "D4", "E4", "G4", "A4", "C5", "D5", "E5", "G5", "A5"}

// Default returns the tuning of the hand tracking piece.
func Default() Tuning {
	return Tuning{
		Smoothing: Smoothing{
			PositionActive:  0.25,
			PositionIdle:    0.05,
			PositionWindow:  5,
			IntensityActive: 0.25,
			IntensityIdle:   0.05,
			IntensityRest:   0.1,
			SpeedActive:     0.3,
			SpeedIdle:       0.1,
			HueActive:       0.2,
			HueIdle:         0.02,
			NeutralHue:      200,
		},
		Mapper: Mapper{
			DeadZone:     0.04,
			SideSplit:    0.5,
			SideBand:     0.06,
			Scale:        append([]string(nil), DefaultScale...),
			VelocityBase: 0.25,
			VelocityGain: 0.9,
			SpeedGain:    0,
			HueBase:      200,
			HueSpan:      130,
			HueTilt:      10,
		},
		Trigger: Trigger{
			BaseGap: 180 * time.Millisecond,
			Spread:  350 * time.Millisecond,
		},
		Motion: Motion{
			Scale:     4,
			Block:     8,
			Threshold: 18,
			Gain:      3.0,
		},
		Hands: Hands{
			Palm:         9,
			Thumb:        4,
			Pinky:        20,
			MaxHands:     2,
			SpreadScale:  3.0,
			SpreadWeight: 0.8,
			SpeedScale:   8,
			SpeedWeight:  0.4,
			StaleAfter:   500 * time.Millisecond,
		},
		Audio: Audio{
			LevelGain:    4.0,
			SilenceFloor: 0.005,
			LowFreq:      150,
			HighFreq:     3000,
			HueLow:       200,
			HueHigh:      330,
		},
		Wave: Wave{
			BaseFreq: 0.6,
			FreqGain: 1.8,
			MaxStep:  50 * time.Millisecond,
			Sigma:    0.18,
			BaseAmp:  0.02,
			BaseGain: 0.085,
			PeakAmp:  0.08,
			PeakGain: 0.2,
			Layers: []Layer{
				{Amplitude: 1, Frequency: 1, PhaseRate: 1, Harmonic: 0.35, Step: 3, Width: 6, Alpha: 1, Saturation: 0.8, Lightness: 0.7},
				{Amplitude: 0.55, Frequency: 0.75, PhaseRate: 0.85, Step: 4, Width: 3.5, Alpha: 0.9, Saturation: 0.75, Lightness: 0.78},
				{Amplitude: 0.3, Frequency: 0.45, PhaseRate: 0.65, Step: 5, Width: 2.2, Alpha: 0.8, Saturation: 0.85, Lightness: 0.88},
			},
			FrameRate: 60,
		},
	}
}

// Calm smooths harder and triggers less often.
func Calm() Tuning {
	t := Default()
	t.Smoothing.PositionActive = 0.15
	t.Smoothing.IntensityActive = 0.18
	t.Smoothing.PositionIdle = 0.02
	t.Smoothing.IntensityIdle = 0.02
	t.Smoothing.IntensityRest = 0.15
	t.Smoothing.PositionWindow = 6
	t.Trigger.BaseGap = 260 * time.Millisecond
	t.Trigger.Spread = 450 * time.Millisecond
	t.Mapper.Scale = []string{"C4", "E4", "G4", "C5"}
	return t
}

// Lively trusts new readings more and triggers densely.
func Lively() Tuning {
	t := Default()
	t.Smoothing.PositionActive = 0.3
	t.Smoothing.IntensityActive = 0.3
	t.Smoothing.PositionIdle = 0.06
	t.Smoothing.IntensityIdle = 0.06
	t.Trigger.BaseGap = 120 * time.Millisecond
	t.Trigger.Spread = 250 * time.Millisecond
	t.Mapper.SpeedGain = 0.3
	return t
}

// Presets maps preset names to constructors.
var Presets = map[string]func() Tuning{
	"default": Default,
	"calm":    Calm,
	"lively":  Lively,
}

// FrameInterval is the time between control ticks.
func (t Tuning) FrameInterval() time.Duration {
	if t.Wave.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(t.Wave.FrameRate)
}

// WrapHue folds any angle into [0, 360).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// -tiny + 360 rounds to 360
	if h >= 360 {
		h = 0
	}
	return h
}
