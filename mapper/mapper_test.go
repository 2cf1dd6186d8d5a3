package mapper

import (
	"math"
	"testing"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionHoldsInsideDeadZone(t *testing.T) {
	d := NewDirection(0.04)
	require.Equal(t, 1, d.Update(0.9))

	for i := 0; i < 500; i++ {
		offset := -0.0399 + float64(i%80)*0.001
		require.Equal(t, 1, d.Update(0.5+offset), "offset %f flipped direction", offset)
	}

	assert.Equal(t, -1, d.Update(0.5-0.041))

	for _, off := range []float64{0.039, -0.039, 0, 0.02} {
		assert.Equal(t, -1, d.Update(0.5+off))
	}

	assert.Equal(t, 1, d.Update(0.5+0.05))
}

func TestDirectionStartsPositive(t *testing.T) {
	d := NewDirection(0.04)
	assert.Equal(t, 1, d.Update(0.5))
	assert.Equal(t, 1, d.Update(math.NaN()))
}

func TestSideClassifierHysteresis(t *testing.T) {
	sc := NewSideClassifier(0.5, 0.06)

	assert.Equal(t, control.SideLeft, sc.Classify(0.3))

	for _, x := range []float64{0.45, 0.5, 0.55, 0.559, 0.44} {
		assert.Equal(t, control.SideLeft, sc.Classify(x), "x=%f", x)
	}

	assert.Equal(t, control.SideRight, sc.Classify(0.561))

	for _, x := range []float64{0.55, 0.5, 0.45, 0.441} {
		assert.Equal(t, control.SideRight, sc.Classify(x), "x=%f", x)
	}

	assert.Equal(t, control.SideLeft, sc.Classify(0.43))
}

func TestSideClassifierFromUnknownInsideBand(t *testing.T) {
	sc := NewSideClassifier(0.5, 0.06)
	assert.Equal(t, control.SideRight, sc.Classify(0.52))

	sc = NewSideClassifier(0.5, 0.06)
	assert.Equal(t, control.SideLeft, sc.Classify(0.48))
}

func TestScaleQuantizeEnds(t *testing.T) {
	sc, err := NewScale(tuning.DefaultScale)
	require.NoError(t, err)

	assert.Equal(t, "A5", sc.Quantize(0.0).Name)
	assert.Equal(t, "C4", sc.Quantize(1.0).Name)
	assert.Equal(t, "C4", sc.Quantize(7).Name)
	assert.Equal(t, "A5", sc.Quantize(-3).Name)
}

func TestScaleQuantizeMembership(t *testing.T) {
	sc, err := NewScale([]string{"C4", "E4", "G4", "C5"})
	require.NoError(t, err)

	for i := -20; i <= 120; i++ {
		y := float64(i) / 100
		assert.True(t, sc.Contains(sc.Quantize(y)), "y=%f", y)
	}

	assert.True(t, sc.Contains(sc.Quantize(math.NaN())))
	assert.Equal(t, "E4", sc.Quantize(0.6).Name)
}

func TestSingleNoteScale(t *testing.T) {
	sc, err := NewScale([]string{"A4"})
	require.NoError(t, err)
	assert.Equal(t, "A4", sc.Quantize(0.2).Name)
}

func TestParseNote(t *testing.T) {
	cases := map[string]int{
		"C4":  60,
		"A4":  69,
		"F#3": 54,
		"Bb5": 82,
		"c5":  72,
		"C-1": 0,
	}

	for name, midi := range cases {
		n, err := ParseNote(name)
		require.NoError(t, err, name)
		assert.Equal(t, midi, n.MIDI, name)
	}

	for _, bad := range []string{"", "H4", "C", "C#x", "4C"} {
		_, err := ParseNote(bad)
		assert.Error(t, err, bad)
	}
}

func TestNoteFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, MustParseNote("A4").Frequency(), 1e-9)
	assert.InDelta(t, 261.6256, MustParseNote("C4").Frequency(), 1e-3)
	assert.Equal(t, "A#4", NoteFromMIDI(70).Name)
	assert.Equal(t, "B3", NoteFromMIDI(59).Name)
}

func TestMapperDynamicsAndHue(t *testing.T) {
	m, err := New(tuning.Default().Mapper)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, m.Dynamics(0, 0), 1e-12)
	assert.InDelta(t, 0.7, m.Dynamics(0.5, 0), 1e-12)
	assert.Equal(t, 1.0, m.Dynamics(1, 0))

	assert.InDelta(t, 265, m.Hue(0.5, 0.5), 1e-9)
	assert.InDelta(t, 330+5, m.Hue(1, 0), 1e-9)

	for i := 0; i <= 10; i++ {
		h := m.Hue(float64(i)/10, float64(10-i)/10)
		assert.True(t, h >= 0 && h < 360)
	}
}

func TestMapperApply(t *testing.T) {
	m, err := New(tuning.Default().Mapper)
	require.NoError(t, err)

	s := control.State{CenterX: 0.2, CenterY: 0.5, Intensity: 0.5}
	m.Apply(&s)

	assert.Equal(t, -1, s.Direction)
	assert.Equal(t, control.SideLeft, s.Side)
	assert.InDelta(t, 0.7, s.Dynamics, 1e-12)
}

func TestNewRejectsBadScale(t *testing.T) {
	cfg := tuning.Default().Mapper
	cfg.Scale = []string{"C4", "Q9"}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestHandIntensity(t *testing.T) {
	cfg := tuning.Default().Hands

	assert.InDelta(t, 0.24, HandIntensity(cfg, 0.3, 0), 1e-12)
	assert.InDelta(t, 0.64, HandIntensity(cfg, 0.3, 1), 1e-12)
	assert.Equal(t, 1.0, HandIntensity(cfg, 1, 1))
	assert.Equal(t, 0.0, HandIntensity(cfg, -1, 0))
}
