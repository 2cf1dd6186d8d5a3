// Package speaker plays sound events on the sound card through oto.
package speaker

import (
	"encoding/binary"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/hajimehoshi/oto/v2"
	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/sound"
	"github.com/pkg/errors"
)

// limiter knee, samples below it pass unchanged
const knee = 0.8

// Engine mixes the voices of both sides into one oto player.
type Engine struct {
	Logger *log.Logger

	voices      [2]sound.Voice
	instruments [2]sound.Instrument

	mu    sync.Mutex
	mixer beep.Mixer
	buf   [][2]float64

	ctx    *oto.Context
	player oto.Player

	initOnce  sync.Once
	initErr   error
	device    atomic.Bool
	suspended atomic.Bool
}

// New returns an engine playing left and right with the given instruments.
// No device is opened until Init.
func New(left, right sound.Instrument) *Engine {
	return &Engine{
		Logger:      log.New(io.Discard, "", 0),
		voices:      sound.DefaultVoices(),
		instruments: [2]sound.Instrument{left, right},
	}
}

// Init opens the audio device. It stands for the user gesture that unlocks
// sound and only runs once; later calls return the first result.
func (e *Engine) Init() error {
	e.initOnce.Do(func() {
		ctx, ready, err := oto.NewContext(int(sound.SampleRate), sound.Format.NumChannels, oto.FormatFloat32LE)
		if err != nil {
			e.initErr = errors.Wrap(err, "failed to open audio device")
			return
		}

		e.ctx = ctx
		e.player = ctx.NewPlayer(e)

		go func() {
			<-ready
			e.player.Play()
			e.device.Store(true)
			e.Logger.Println("audio device ready")
		}()
	})

	return e.initErr
}

// Ready reports whether a note on side would sound.
func (e *Engine) Ready(side control.Side) bool {
	i := side.Index()
	if i < 0 || e.instruments[i] == nil {
		return false
	}
	return e.device.Load() && !e.suspended.Load() && e.instruments[i].Ready()
}

// Play starts a note. It never blocks on the device.
func (e *Engine) Play(ev sound.Event) error {
	if !e.Ready(ev.Side) {
		return sound.ErrNotReady
	}

	i := ev.Side.Index()

	voice, err := e.instruments[i].Voice(ev.Note, ev.Velocity, e.voices[i])
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.mixer.Add(voice)
	e.mu.Unlock()

	return nil
}

// Read fills p with float32 little endian stereo frames. The oto player
// pulls from it.
func (e *Engine) Read(p []byte) (int, error) {
	const frameSize = 8

	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}

	e.mu.Lock()

	if cap(e.buf) < frames {
		e.buf = make([][2]float64, frames)
	}
	buf := e.buf[:frames]

	n, _ := e.mixer.Stream(buf)
	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}

	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*frameSize:], math.Float32bits(float32(limit(s[0]))))
		binary.LittleEndian.PutUint32(p[i*frameSize+4:], math.Float32bits(float32(limit(s[1]))))
	}

	e.mu.Unlock()

	return frames * frameSize, nil
}

// Suspend pauses the device and drops the sounding voices. Notes played
// while suspended return sound.ErrNotReady.
func (e *Engine) Suspend() error {
	e.suspended.Store(true)

	e.mu.Lock()
	e.mixer.Clear()
	e.mu.Unlock()

	if e.ctx == nil {
		return nil
	}
	return errors.Wrap(e.ctx.Suspend(), "failed to suspend audio device")
}

// Resume restarts the device after Suspend.
func (e *Engine) Resume() error {
	e.suspended.Store(false)

	if e.ctx == nil {
		return nil
	}
	return errors.Wrap(e.ctx.Resume(), "failed to resume audio device")
}

// Suspended reports whether the engine is paused.
func (e *Engine) Suspended() bool {
	return e.suspended.Load()
}

// Close stops playback.
func (e *Engine) Close() error {
	e.device.Store(false)

	e.mu.Lock()
	e.mixer.Clear()
	e.mu.Unlock()

	if e.player != nil {
		return e.player.Close()
	}
	return nil
}

// limit soft clips the master bus.
func limit(x float64) float64 {
	a := math.Abs(x)
	if a <= knee {
		return x
	}

	y := knee + (1-knee)*math.Tanh((a-knee)/(1-knee))
	return math.Copysign(y, x)
}
