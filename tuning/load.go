package tuning

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML tuning file and applies it over base. Keys missing from
// the file keep the value from base.
func Load(path string, base Tuning) (Tuning, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, errors.Wrap(err, "failed to open tuning file")
	}
	defer f.Close()

	return Decode(f, base)
}

// Decode is Load for an arbitrary reader.
func Decode(r io.Reader, base Tuning) (Tuning, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return base, errors.Wrap(err, "failed to read tuning")
	}

	out := base
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	if err := dec.Decode(&out); err != nil {
		return base, errors.Wrap(err, "failed to decode tuning")
	}

	if err := out.Validate(); err != nil {
		return base, err
	}

	return out, nil
}

// Encode writes t as YAML.
func Encode(w io.Writer, t Tuning) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(t); err != nil {
		return errors.Wrap(err, "failed to encode tuning")
	}

	return enc.Close()
}

func unit(name string, v float64) error {
	if v < 0 || v > 1 {
		return errors.Errorf("%s must be within [0, 1], got %g", name, v)
	}
	return nil
}

// Validate checks every constant against its bounds.
func (t Tuning) Validate() error {
	s := t.Smoothing
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"smoothing.position_active", s.PositionActive},
		{"smoothing.position_idle", s.PositionIdle},
		{"smoothing.intensity_active", s.IntensityActive},
		{"smoothing.intensity_idle", s.IntensityIdle},
		{"smoothing.intensity_rest", s.IntensityRest},
		{"smoothing.speed_active", s.SpeedActive},
		{"smoothing.speed_idle", s.SpeedIdle},
		{"smoothing.hue_active", s.HueActive},
		{"smoothing.hue_idle", s.HueIdle},
		{"mapper.side_split", t.Mapper.SideSplit},
		{"mapper.velocity_base", t.Mapper.VelocityBase},
	} {
		if err := unit(c.name, c.v); err != nil {
			return err
		}
	}

	if s.IntensityRest <= 0 {
		return errors.New("smoothing.intensity_rest must be above zero")
	}

	if s.PositionWindow < 1 {
		return errors.New("smoothing.position_window must be at least 1")
	}

	if t.Mapper.DeadZone < 0 || t.Mapper.DeadZone >= 0.5 {
		return errors.Errorf("mapper.dead_zone out of range: %g", t.Mapper.DeadZone)
	}

	if t.Mapper.SideBand < 0 || t.Mapper.SideBand >= 0.5 {
		return errors.Errorf("mapper.side_band out of range: %g", t.Mapper.SideBand)
	}

	if len(t.Mapper.Scale) == 0 {
		return errors.New("mapper.scale is empty")
	}

	if t.Trigger.BaseGap < 0 || t.Trigger.Spread < 0 {
		return errors.New("trigger gaps must not be negative")
	}

	switch {
	case t.Motion.Scale < 1:
		return errors.New("motion.scale must be at least 1")
	case t.Motion.Block < 1:
		return errors.New("motion.block must be at least 1")
	case t.Motion.Threshold < 0:
		return errors.New("motion.threshold must not be negative")
	}

	for _, idx := range []int{t.Hands.Palm, t.Hands.Thumb, t.Hands.Pinky} {
		if idx < 0 {
			return errors.Errorf("hands: negative landmark index %d", idx)
		}
	}

	if t.Hands.MaxHands < 1 || t.Hands.MaxHands > 2 {
		return errors.Errorf("hands.max_hands must be 1 or 2, got %d", t.Hands.MaxHands)
	}

	if t.Audio.LowFreq <= 0 || t.Audio.HighFreq <= t.Audio.LowFreq {
		return errors.New("audio: low_freq must be positive and below high_freq")
	}

	if t.Wave.MaxStep <= 0 {
		return errors.New("wave.max_step must be positive")
	}

	if t.Wave.Sigma <= 0 {
		return errors.New("wave.sigma must be positive")
	}

	if len(t.Wave.Layers) == 0 {
		return errors.New("wave.layers is empty")
	}

	for i, l := range t.Wave.Layers {
		if l.Step < 1 {
			return errors.Errorf("wave.layers[%d].step must be at least 1", i)
		}

		for name, v := range map[string]float64{
			"alpha":      l.Alpha,
			"saturation": l.Saturation,
			"lightness":  l.Lightness,
		} {
			if err := unit(fmt.Sprintf("wave.layers[%d].%s", i, name), v); err != nil {
				return err
			}
		}
	}

	return nil
}
