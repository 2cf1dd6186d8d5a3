package speaker

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/mapper"
	"github.com/noriah/handwave/sound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lateInstrument is a synth that reports ready only once loaded is set.
type lateInstrument struct {
	*sound.Synth
	loaded atomic.Bool
}

func (li *lateInstrument) Ready() bool {
	return li.loaded.Load()
}

func samplesOf(d time.Duration) int {
	return sound.SampleRate.N(d)
}

func c4() mapper.Note {
	return mapper.MustParseNote("C4")
}

func playing(e *Engine) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mixer.Len()
}

func newTestEngine() *Engine {
	e := New(sound.NewSynth(), sound.NewSynth())
	e.device.Store(true)
	return e
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 0.5, limit(0.5))
	assert.Equal(t, -0.8, limit(-0.8))
	assert.Less(t, limit(3), 1.0)
	assert.Greater(t, limit(3), 0.9)
	assert.Equal(t, -limit(2), limit(-2))
	assert.Greater(t, limit(1.2), limit(1.1))
}

func TestEngineNotReadyBeforeDevice(t *testing.T) {
	e := New(sound.NewSynth(), sound.NewSynth())

	assert.False(t, e.Ready(control.SideLeft))
	assert.Equal(t, sound.ErrNotReady, e.Play(sound.Event{Side: control.SideLeft, Note: c4(), Velocity: 1}))
}

func TestEngineUnknownSide(t *testing.T) {
	e := newTestEngine()

	assert.False(t, e.Ready(control.SideUnknown))
	assert.True(t, e.Ready(control.SideRight))
}

func TestEngineWaitsForInstrument(t *testing.T) {
	late := &lateInstrument{Synth: sound.NewSynth()}
	e := New(sound.NewSynth(), late)
	e.device.Store(true)

	assert.True(t, e.Ready(control.SideLeft))
	assert.False(t, e.Ready(control.SideRight))

	late.loaded.Store(true)
	assert.True(t, e.Ready(control.SideRight))
}

func TestEngineMixesVoices(t *testing.T) {
	e := newTestEngine()

	require.NoError(t, e.Play(sound.Event{Side: control.SideLeft, Note: c4(), Velocity: 1}))
	require.NoError(t, e.Play(sound.Event{Side: control.SideRight, Note: mapper.MustParseNote("G4"), Velocity: 1}))
	assert.Equal(t, 2, playing(e))

	p := make([]byte, 8*2048)
	n, err := e.Read(p)
	require.NoError(t, err)
	require.Equal(t, len(p), n)

	peak := 0.0
	for i := 0; i < n; i += 4 {
		v := float64(math.Float32frombits(binary.LittleEndian.Uint32(p[i:])))
		assert.LessOrEqual(t, math.Abs(v), 1.0)
		peak = math.Max(peak, math.Abs(v))
	}
	assert.Greater(t, peak, 0.1)

	// drain both notes, the mixer drops them and goes silent
	total := samplesOf(1900 * time.Millisecond)
	for read := 2048; read < total; read += 2048 {
		_, err = e.Read(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, playing(e))

	_, err = e.Read(p)
	require.NoError(t, err)
	for i := 0; i < len(p); i++ {
		assert.Zero(t, p[i])
	}
}

func TestEngineShortVoiceDrains(t *testing.T) {
	e := newTestEngine()
	e.voices[0] = sound.Voice{Duration: 10 * time.Millisecond}

	require.NoError(t, e.Play(sound.Event{Side: control.SideLeft, Note: c4(), Velocity: 1}))

	p := make([]byte, 8*samplesOf(20*time.Millisecond))
	_, err := e.Read(p)
	require.NoError(t, err)
	_, err = e.Read(p[:8])
	require.NoError(t, err)
	assert.Equal(t, 0, playing(e))
}

func TestEngineReadShortBuffer(t *testing.T) {
	e := New(sound.NewSynth(), sound.NewSynth())
	n, err := e.Read(make([]byte, 5))
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEngineSuspendSilences(t *testing.T) {
	e := newTestEngine()

	require.NoError(t, e.Play(sound.Event{Side: control.SideLeft, Note: c4(), Velocity: 1}))
	require.Equal(t, 1, playing(e))

	require.NoError(t, e.Suspend())
	assert.True(t, e.Suspended())
	assert.Equal(t, 0, playing(e))
	assert.False(t, e.Ready(control.SideLeft))
	assert.Equal(t, sound.ErrNotReady, e.Play(sound.Event{Side: control.SideLeft, Note: c4(), Velocity: 1}))

	require.NoError(t, e.Resume())
	assert.False(t, e.Suspended())
	assert.True(t, e.Ready(control.SideLeft))
	assert.NoError(t, e.Play(sound.Event{Side: control.SideLeft, Note: c4(), Velocity: 1}))
}

func TestEngineCloseWithoutInit(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Close())
	assert.False(t, e.Ready(control.SideLeft))
}
