// Package dsp turns raw features into stable control values, and holds the
// spectral analysis behind the microphone strategy.
//
// Some notes:
//
// https://en.wikipedia.org/wiki/Spectral_centroid
// https://en.wikipedia.org/wiki/Exponential_smoothing
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/noriah/handwave/dsp/window"
	"github.com/noriah/handwave/fft"
)

// AnalyzerConfig configures the spectral analyzer.
type AnalyzerConfig struct {
	SampleRate float64         // audio sample rate
	SampleSize int             // number of samples per buffer
	Window     window.Function // applied before the transform, Hann if nil
}

// Analyzer computes level and brightness features from one sample buffer.
// It owns its scratch buffers so a tick does not allocate.
type Analyzer struct {
	cfg     AnalyzerConfig
	scratch []float64
	coeffs  []complex128
	mags    []float64
	table   window.Table
	plan    *fft.Plan
	fftSize int
}

// NewAnalyzer returns an analyzer for buffers of cfg.SampleSize samples.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.Window == nil {
		cfg.Window = window.Hann
	}

	az := &Analyzer{
		cfg:     cfg,
		scratch: make([]float64, cfg.SampleSize),
		fftSize: cfg.SampleSize/2 + 1,
		table:   window.NewTable(cfg.Window, cfg.SampleSize),
	}

	az.coeffs = make([]complex128, az.fftSize)
	az.mags = make([]float64, az.fftSize)
	fft.InitPlan(&az.plan, az.scratch, az.coeffs)

	return az
}

// RMS returns the root mean square of buf, or 0 for an empty buffer.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range buf {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(buf)))
}

// Magnitudes transforms buf and returns the magnitude of every bin. Short
// buffers are zero padded, long ones truncated. The returned slice is reused
// by the next call.
func (az *Analyzer) Magnitudes(buf []float64) []float64 {
	n := copy(az.scratch, buf)
	for i := n; i < len(az.scratch); i++ {
		az.scratch[i] = 0
	}

	az.table.Apply(az.scratch)
	az.plan.Execute()

	for i, c := range az.coeffs {
		az.mags[i] = cmplx.Abs(c)
	}

	return az.mags
}

// Centroid returns the magnitude weighted mean frequency of buf in Hz. ok is
// false when the spectrum carries no energy.
func (az *Analyzer) Centroid(buf []float64) (hz float64, ok bool) {
	mags := az.Magnitudes(buf)

	num, den := 0.0, 0.0
	for i, m := range mags {
		num += m * az.BinFrequency(i)
		den += m
	}

	if den <= 1e-12 || math.IsNaN(num) {
		return 0, false
	}

	return num / den, true
}

// BinFrequency returns the centre frequency of bin idx.
func (az *Analyzer) BinFrequency(idx int) float64 {
	return float64(idx) * az.cfg.SampleRate / float64(az.cfg.SampleSize)
}
