package sound

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/noriah/handwave/mapper"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ones streams a constant 1 forever.
var ones = beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{1, 1}
	}
	return len(samples), true
})

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

func samplesOf(d time.Duration) int {
	return SampleRate.N(d)
}

func TestEnvelopeShape(t *testing.T) {
	v := Voice{Attack: 10 * time.Millisecond, Duration: 20 * time.Millisecond, Release: 10 * time.Millisecond}
	out := drain(newEnvelope(ones, v))

	attack, hold, release := samplesOf(v.Attack), samplesOf(v.Duration), samplesOf(v.Release)
	require.Len(t, out, hold+release)

	assert.Equal(t, 0.0, out[0][0])
	assert.InDelta(t, 0.5, out[attack/2][0], 0.01)
	assert.Equal(t, 1.0, out[attack][0])
	assert.Equal(t, 1.0, out[hold-1][1])
	assert.InDelta(t, 0.5, out[hold+release/2][0], 0.01)
	assert.InDelta(t, 0.0, out[len(out)-1][0], 0.01)
}

func TestEnvelopeReleaseFromAttack(t *testing.T) {
	// a note shorter than its attack releases from where the ramp got to
	v := Voice{Attack: 40 * time.Millisecond, Duration: 10 * time.Millisecond, Release: 10 * time.Millisecond}
	out := drain(newEnvelope(ones, v))

	hold := samplesOf(v.Duration)
	assert.InDelta(t, 0.25, out[hold][0], 0.01)
}

func TestShapeVelocity(t *testing.T) {
	v := Voice{Duration: 5 * time.Millisecond}
	out := drain(shape(ones, 0.4, v))

	require.NotEmpty(t, out)
	assert.InDelta(t, 0.4, out[10][0], 1e-9)
}

func TestSynthVoice(t *testing.T) {
	sy := NewSynth()
	assert.True(t, sy.Ready())

	v := DefaultVoices()[0]
	s, err := sy.Voice(mapper.MustParseNote("A4"), 1, v)
	require.NoError(t, err)

	out := drain(s)
	assert.Len(t, out, samplesOf(v.Duration)+samplesOf(v.Release))

	peak := 0.0
	for _, f := range out {
		peak = math.Max(peak, math.Abs(f[0]))
	}
	assert.Greater(t, peak, 0.3)
	assert.LessOrEqual(t, peak, 0.5+1e-9)
}

func TestSynthRejectsInaudibleNotes(t *testing.T) {
	sy := NewSynth()

	_, err := sy.Voice(mapper.NoteFromMIDI(5), 1, DefaultVoices()[0])
	assert.True(t, errors.Is(err, ErrNoteOutOfRange))

	_, err = sy.Voice(mapper.NoteFromMIDI(140), 1, DefaultVoices()[0])
	assert.True(t, errors.Is(err, ErrNoteOutOfRange))
}

// writeSample writes a short sine at note to dir as a mono wav file.
func writeSample(t *testing.T, dir, name string, rate beep.SampleRate) {
	t.Helper()

	freq := mapper.MustParseNote(name).Frequency()
	var phase float64
	sine := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.5 * math.Sin(phase)
			samples[i] = [2]float64{v, v}
			phase += 2 * math.Pi * freq / float64(rate)
		}
		return len(samples), true
	})

	f, err := os.Create(filepath.Join(dir, "test"+name+".wav"))
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(rate.N(200*time.Millisecond), sine), format))
}

func testSampler(t *testing.T, notes ...string) *Sampler {
	t.Helper()

	dir := t.TempDir()
	for _, n := range notes {
		writeSample(t, dir, n, 22050)
	}

	sp := NewSampler(SamplerConfig{
		Name:     "test",
		Dir:      dir,
		Prefix:   "test",
		Notes:    notes,
		MaxShift: 5,
	})
	return sp
}

func TestSamplerNotReadyUntilLoaded(t *testing.T) {
	sp := testSampler(t, "C4", "G4")
	assert.False(t, sp.Ready())

	_, err := sp.Voice(mapper.MustParseNote("C4"), 1, DefaultVoices()[0])
	assert.Equal(t, ErrNotReady, err)

	sp.Load()
	require.NoError(t, sp.Wait())
	assert.True(t, sp.Ready())
}

func TestSamplerResamplesToEngineRate(t *testing.T) {
	sp := testSampler(t, "C4")
	sp.Load()
	require.NoError(t, sp.Wait())

	_, buf, ok := sp.nearest(60)
	require.True(t, ok)
	assert.InDelta(t, samplesOf(200*time.Millisecond), buf.Len(), 64)
}

func TestSamplerNearestNote(t *testing.T) {
	sp := testSampler(t, "C4", "G4")
	sp.Load()
	require.NoError(t, sp.Wait())

	for name, want := range map[string]int{"C4": 60, "D4": 60, "E4": 67, "A4": 67, "B3": 60} {
		got, _, ok := sp.nearest(mapper.MustParseNote(name).MIDI)
		assert.True(t, ok)
		assert.Equal(t, want, got, name)
	}
}

func TestSamplerRepitches(t *testing.T) {
	sp := testSampler(t, "C4")
	sp.Load()
	require.NoError(t, sp.Wait())

	v := Voice{Duration: time.Second}

	same, err := sp.Voice(mapper.MustParseNote("C4"), 1, v)
	require.NoError(t, err)

	up, err := sp.Voice(mapper.MustParseNote("F4"), 1, v)
	require.NoError(t, err)

	// a higher note plays the sample faster and ends sooner
	assert.Less(t, len(drain(up)), len(drain(same)))
}

func TestSamplerOutOfRange(t *testing.T) {
	sp := testSampler(t, "C4")
	sp.Load()
	require.NoError(t, sp.Wait())

	_, err := sp.Voice(mapper.MustParseNote("C5"), 1, DefaultVoices()[0])
	assert.True(t, errors.Is(err, ErrNoteOutOfRange))
}

func TestSamplerMissingFiles(t *testing.T) {
	sp := NewSampler(Piano(t.TempDir()))
	sp.Load()

	assert.Error(t, sp.Wait())
	assert.False(t, sp.Ready())
}

func TestSamplerPartialLoad(t *testing.T) {
	sp := testSampler(t, "C4")
	sp.cfg.Notes = append(sp.cfg.Notes, "E4")
	sp.Load()

	assert.Error(t, sp.Wait())
	assert.True(t, sp.Ready())
}
