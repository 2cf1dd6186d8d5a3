// Package processor runs the control pipeline once per tick.
package processor

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/dsp"
	"github.com/noriah/handwave/feature"
	"github.com/noriah/handwave/graphic"
	"github.com/noriah/handwave/mapper"
	"github.com/noriah/handwave/sound"
	"github.com/noriah/handwave/trigger"
	"github.com/noriah/handwave/tuning"
	"github.com/pkg/errors"
)

// Output receives the control state and the wave phase once per tick.
type Output interface {
	Write(s control.State, phase float64) error
}

// Config holds the collaborators of a pipeline.
type Config struct {
	Tuning    tuning.Tuning
	Extractor feature.Extractor
	Output    Output           // may be nil
	Player    sound.Player     // may be nil
	Clock     func() time.Time // defaults to time.Now
	Logger    *log.Logger      // defaults to discarding
}

// Pipeline owns every piece of state carried between ticks.
type Pipeline struct {
	cfg tuning.Tuning

	extractor feature.Extractor
	out       Output
	player    sound.Player
	clock     func() time.Time
	logger    *log.Logger

	smoother *dsp.Smoother
	mapper   *mapper.Mapper
	throttle *trigger.Throttle
	phase    *graphic.Phase

	// hue follows the smoothed position until a source brings its own
	posHue bool

	mu    sync.Mutex
	state control.State

	running atomic.Bool

	stopMu sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a pipeline at rest.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Extractor == nil {
		return nil, errors.New("pipeline needs an extractor")
	}

	m, err := mapper.New(cfg.Tuning.Mapper)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build mapper")
	}

	p := &Pipeline{
		cfg:       cfg.Tuning,
		extractor: cfg.Extractor,
		out:       cfg.Output,
		player:    cfg.Player,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		smoother:  dsp.NewSmoother(cfg.Tuning.Smoothing, cfg.Tuning.Hands.SpeedScale),
		mapper:    m,
		throttle:  trigger.New(cfg.Tuning.Trigger),
		phase:     graphic.NewPhase(cfg.Tuning.Wave),
		posHue:    true,
	}

	if p.clock == nil {
		p.clock = time.Now
	}

	if p.logger == nil {
		p.logger = log.New(io.Discard, "", 0)
	}

	p.state = control.Neutral(cfg.Tuning.Smoothing.IntensityRest, cfg.Tuning.Smoothing.NeutralHue)
	p.state.Note = m.Note(p.state.CenterY).Name

	p.smoother.Hue.Set(m.Hue(p.state.CenterX, p.state.CenterY))
	p.state.Hue = p.smoother.Hue.Value()

	return p, nil
}

// Start runs the tick loop until ctx ends or Stop is called. The returned
// context ends with the loop. A second call returns the running context.
func (p *Pipeline) Start(ctx context.Context) context.Context {
	p.stopMu.Lock()
	defer p.stopMu.Unlock()

	if p.ctx != nil {
		return p.ctx
	}

	ctx, cancel := context.WithCancel(ctx)

	p.ctx, p.cancel = ctx, cancel
	p.done = make(chan struct{})

	go p.loop(ctx)

	return ctx
}

func (p *Pipeline) loop(ctx context.Context) {
	defer close(p.done)

	dur := p.cfg.FrameInterval()
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		p.Tick(p.clock())
	}
}

// Stop cancels the loop and waits for the tick in flight. It is safe to
// call more than once, and before Start.
func (p *Pipeline) Stop() {
	p.stopMu.Lock()
	cancel, done := p.cancel, p.done
	p.stopMu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// State returns a copy of the control state.
func (p *Pipeline) State() control.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Tick runs one control tick at now. A call made while another tick is
// running returns false without doing anything.
func (p *Pipeline) Tick(now time.Time) bool {
	if !p.running.CompareAndSwap(false, true) {
		return false
	}
	defer p.running.Store(false)

	obs := p.extractor.Extract(now)
	p.smooth(obs)

	var s control.State
	p.smoother.Fill(&s)
	p.mapper.Apply(&s)
	s.Note = p.mapper.Note(s.CenterY).Name
	s.Active = obs.Status == feature.Present

	p.mu.Lock()
	p.state = s
	p.mu.Unlock()

	phase := p.phase.Advance(now, s.Intensity, s.Direction)

	if p.out != nil {
		if err := p.out.Write(s, phase); err != nil {
			p.logger.Printf("output: %v", err)
		}
	}

	if obs.Status == feature.Present || !p.cfg.Trigger.SilentIdle {
		p.fire(now, s, obs)
	}

	return true
}

// smooth feeds one observation into the smoother.
func (p *Pipeline) smooth(obs feature.Observation) {
	sm := p.smoother

	switch obs.Status {
	case feature.Present:
		speed := sm.ObservePosition(obs.X, obs.Y)

		intensity := obs.Intensity
		if obs.FromSpread {
			intensity = mapper.HandIntensity(p.cfg.Hands, obs.Intensity, speed)
		}
		sm.Intensity.Observe(intensity)

		p.posHue = !obs.HasHue
		if obs.HasHue {
			sm.Hue.Observe(obs.Hue)
		}

		seen := [2]bool{}
		for _, h := range obs.Hands {
			if i := h.Side.Index(); i >= 0 {
				sm.ObserveSide(h.Side, h.Y)
				seen[i] = true
			}
		}
		for i, side := range control.Sides {
			if !seen[i] {
				sm.DecaySide(side)
			}
		}

	case feature.Absent:
		sm.Decay()

	case feature.Pending:
		// hold
	}

	if p.posHue {
		sm.Hue.Set(p.mapper.Hue(sm.X.Value(), sm.Y.Value()))
	}
}

// fire emits at most one note per side, gated by the throttle. Without a
// hand the centre plays on its side, resting notes included.
func (p *Pipeline) fire(now time.Time, s control.State, obs feature.Observation) {
	if p.player == nil {
		return
	}

	if len(obs.Hands) == 0 {
		p.play(now, s, s.Side, p.mapper.Note(s.CenterY))
		return
	}

	// every hand plays the note under its own height
	for _, h := range obs.Hands {
		p.play(now, s, h.Side, p.mapper.Note(p.smoother.SideY(h.Side)))
	}
}

func (p *Pipeline) play(now time.Time, s control.State, side control.Side, note mapper.Note) {
	if side == control.SideUnknown || !p.player.Ready(side) {
		return
	}

	if !p.throttle.Allow(side, now, s.Intensity) {
		return
	}

	err := p.player.Play(sound.Event{Side: side, Note: note, Velocity: s.Dynamics})
	if err != nil && !errors.Is(err, sound.ErrNotReady) {
		p.logger.Printf("play %s on %s: %v", note, side, err)
	}
}
