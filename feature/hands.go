package feature

import (
	"math"
	"sort"
	"time"

	"github.com/noriah/handwave/control"
	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/mapper"
	"github.com/noriah/handwave/tuning"
)

// Hands is the pose landmark strategy.
type Hands struct {
	cfg  tuning.Hands
	poll poller[input.Landmarks]

	// side of a lone hand
	side *mapper.SideClassifier
}

// NewHands returns a hand extractor reading landmarks from src. A lone hand
// is given a side with a hysteresis classifier split at split.
func NewHands(cfg tuning.Hands, split, band float64, src *input.Latest[input.Landmarks]) *Hands {
	return &Hands{
		cfg:  cfg,
		poll: poller[input.Landmarks]{box: src, staleAfter: cfg.StaleAfter},
		side: mapper.NewSideClassifier(split, band),
	}
}

func (hx *Hands) Extract(now time.Time) Observation {
	lm, status := hx.poll.poll(now)
	if status != Present {
		return Observation{Status: status, X: 0.5, Y: 0.5}
	}

	return hx.Process(lm)
}

// Process extracts the hands of one detector delivery.
func (hx *Hands) Process(lm input.Landmarks) Observation {
	if hx.cfg.Mirror {
		lm = lm.Mirror()
	}

	hands := make([]Hand, 0, len(lm))

	for _, raw := range lm {
		if hx.cfg.MaxHands > 0 && len(hands) == hx.cfg.MaxHands {
			break
		}

		if h, ok := hx.hand(raw); ok {
			hands = append(hands, h)
		}
	}

	obs := Observation{X: 0.5, Y: 0.5}

	switch len(hands) {
	case 0:
		obs.Status = Absent
		return obs

	case 1:
		hands[0].Side = hx.side.Classify(hands[0].X)

	default:
		sort.SliceStable(hands, func(i, j int) bool {
			return hands[i].X < hands[j].X
		})
		hands[0].Side = control.SideLeft
		hands[len(hands)-1].Side = control.SideRight
	}

	obs.Status = Present
	obs.FromSpread = true
	obs.Hands = hands

	sumX, sumY := 0.0, 0.0
	for _, h := range hands {
		sumX += h.X
		sumY += h.Y
		obs.Intensity = math.Max(obs.Intensity, h.Spread)
	}

	obs.X = sumX / float64(len(hands))
	obs.Y = sumY / float64(len(hands))

	return obs
}

func (hx *Hands) hand(raw input.Hand) (Hand, bool) {
	need := max(hx.cfg.Palm, hx.cfg.Thumb, hx.cfg.Pinky)
	if len(raw) <= need {
		return Hand{}, false
	}

	palm := raw[hx.cfg.Palm]
	thumb, pinky := raw[hx.cfg.Thumb], raw[hx.cfg.Pinky]

	spread := math.Hypot(thumb.X-pinky.X, thumb.Y-pinky.Y) * hx.cfg.SpreadScale

	if !finite(palm.X) || !finite(palm.Y) || !finite(spread) {
		return Hand{}, false
	}

	return Hand{
		X:      clamp01(palm.X),
		Y:      clamp01(palm.Y),
		Spread: clamp01(spread),
		Side:   control.SideUnknown,
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
