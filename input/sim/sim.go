// Package sim generates synthetic hand landmarks, for running the piece
// without a camera or detector.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/noriah/handwave/input"
	"github.com/pkg/errors"
)

// Landmark layout of a generated hand.
const (
	Points = 21
	Palm   = 9
	Thumb  = 4
	Pinky  = 20
)

func init() {
	input.RegisterBackend("sim", Backend{})
}

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Kind() input.Kind {
	return input.KindLandmarks
}

func (b Backend) Devices() ([]input.Device, error) {
	return []input.Device{OneHand, TwoHands}, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return OneHand, nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// Device selects how many hands are generated.
type Device int

const (
	OneHand  Device = 1
	TwoHands Device = 2
)

func (d Device) String() string {
	if d == TwoHands {
		return "two-hands"
	}
	return "one-hand"
}

// Pose returns the generated hands at offset t. Each hand drifts on a slow
// Lissajous path and opens and closes its fingers.
func Pose(t time.Duration, hands int) input.Landmarks {
	s := t.Seconds()
	out := make(input.Landmarks, 0, hands)

	for i := 0; i < hands; i++ {
		fi := float64(i)

		// two hands keep to their own half of the frame
		cx := 0.5 + 0.3*math.Sin(s*0.37+fi*math.Pi)
		if hands == 2 {
			cx = 0.28 + 0.44*fi + 0.1*math.Sin(s*0.41+fi)
		}
		cy := 0.5 + 0.3*math.Sin(s*0.53+fi*1.3)
		spread := 0.05 + 0.12*(0.5+0.5*math.Sin(s*1.7+fi*2.1))

		out = append(out, hand(cx, cy, spread))
	}

	return out
}

func hand(cx, cy, spread float64) input.Hand {
	h := make(input.Hand, Points)

	for i := range h {
		// fan the points around the palm, tips furthest out
		a := math.Pi * (0.15 + 0.7*float64(i)/float64(Points-1))
		r := spread * (0.4 + 0.6*float64(i%4)/3)
		h[i] = input.Point{X: cx + r*math.Cos(a), Y: cy - r*math.Sin(a)}
	}

	h[Palm] = input.Point{X: cx, Y: cy}
	h[Thumb] = input.Point{X: cx - spread, Y: cy}
	h[Pinky] = input.Point{X: cx + spread, Y: cy}

	return h
}

// Session publishes generated poses at the configured rate.
type Session struct {
	hands int
	rate  time.Duration

	out input.Latest[input.Landmarks]

	stopOnce sync.Once
	done     chan struct{}
}

var _ input.LandmarkSource = (*Session)(nil)

func NewSession(cfg input.SessionConfig) (*Session, error) {
	hands := OneHand
	if cfg.Device != nil {
		d, ok := cfg.Device.(Device)
		if !ok {
			return nil, errors.Errorf("invalid device type %T", cfg.Device)
		}
		hands = d
	}

	// detectors run slower than the display
	fps := cfg.FrameRate
	if fps <= 0 {
		fps = 24
	}

	return &Session{
		hands: int(hands),
		rate:  time.Second / time.Duration(fps),
		done:  make(chan struct{}),
	}, nil
}

func (s *Session) Landmarks() *input.Latest[input.Landmarks] {
	return &s.out
}

func (s *Session) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case now := <-ticker.C:
			s.out.Store(Pose(now.Sub(start), s.hands), now)
		}
	}
}

func (s *Session) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}
