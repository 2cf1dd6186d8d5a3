// Package trigger rate limits discrete sound events per side.
package trigger

import (
	"math"
	"time"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/tuning"
)

// Throttle is a leaky gate with one timer per side. An attempt inside the
// minimum gap is dropped, never queued.
type Throttle struct {
	cfg  tuning.Trigger
	last map[control.Side]time.Time
}

// New returns a throttle with no side fired yet.
func New(cfg tuning.Trigger) *Throttle {
	return &Throttle{
		cfg:  cfg,
		last: make(map[control.Side]time.Time, len(control.Sides)+1),
	}
}

// MinGap is the shortest allowed time between two events on one side.
// Louder play allows denser events.
func (t *Throttle) MinGap(intensity float64) time.Duration {
	switch {
	case intensity < 0 || math.IsNaN(intensity):
		intensity = 0
	case intensity > 1:
		intensity = 1
	}

	return t.cfg.BaseGap + time.Duration((1-intensity)*float64(t.cfg.Spread))
}

// Ready reports whether side would fire at now, without recording it.
func (t *Throttle) Ready(side control.Side, now time.Time, intensity float64) bool {
	last, ok := t.last[side]
	return !ok || now.Sub(last) >= t.MinGap(intensity)
}

// Allow fires side at now if the gap has passed, and reports whether it did.
func (t *Throttle) Allow(side control.Side, now time.Time, intensity float64) bool {
	if !t.Ready(side, now, intensity) {
		return false
	}

	t.last[side] = now
	return true
}
