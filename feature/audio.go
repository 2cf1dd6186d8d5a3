package feature

import (
	"time"

	"github.com/noriah/handwave/dsp"
	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/tuning"
)

// Audio is the microphone strategy. Loudness drives intensity and the
// spectral centroid drives colour and horizontal position.
type Audio struct {
	cfg  tuning.Audio
	rate float64
	poll poller[[]input.Sample]

	az   *dsp.Analyzer
	size int
}

// NewAudio returns an audio extractor for sample buffers at rate Hz.
func NewAudio(cfg tuning.Audio, rate float64, src *input.Latest[[]input.Sample], staleAfter time.Duration) *Audio {
	return &Audio{
		cfg:  cfg,
		rate: rate,
		poll: poller[[]input.Sample]{box: src, staleAfter: staleAfter},
	}
}

func (ax *Audio) Extract(now time.Time) Observation {
	buf, status := ax.poll.poll(now)
	if status != Present {
		return Observation{Status: status, X: 0.5, Y: 0.5}
	}

	return ax.Process(buf)
}

// Process analyzes one sample buffer.
func (ax *Audio) Process(buf []input.Sample) Observation {
	idle := Observation{Status: Absent, X: 0.5, Y: 0.5}

	if len(buf) < 4 || ax.rate <= 0 {
		return idle
	}

	rms := dsp.RMS(buf)
	if !finite(rms) || rms < ax.cfg.SilenceFloor {
		return idle
	}

	if ax.az == nil || ax.size != len(buf) {
		ax.size = len(buf)
		ax.az = dsp.NewAnalyzer(dsp.AnalyzerConfig{
			SampleRate: ax.rate,
			SampleSize: len(buf),
		})
	}

	hz, ok := ax.az.Centroid(buf)
	if !ok {
		return idle
	}

	level := clamp01(rms * ax.cfg.LevelGain)
	bright := ax.Brightness(hz)

	return Observation{
		Status:    Present,
		X:         bright,
		Y:         1 - level,
		Intensity: level,
		Hue:       tuning.WrapHue(ax.cfg.HueLow + bright*(ax.cfg.HueHigh-ax.cfg.HueLow)),
		HasHue:    true,
	}
}

// Brightness maps a centroid frequency linearly onto [0, 1].
func (ax *Audio) Brightness(hz float64) float64 {
	span := ax.cfg.HighFreq - ax.cfg.LowFreq
	if span <= 0 {
		return 0.5
	}
	return clamp01((hz - ax.cfg.LowFreq) / span)
}
