package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, rate float64, n int, amp float64) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return buf
}

func TestRMS(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
	assert.InDelta(t, 0.5, RMS([]float64{0.5, -0.5, 0.5, -0.5}), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, RMS(sine(1000, 48000, 4800, 1)), 1e-3)
}

func TestCentroidOfPureTone(t *testing.T) {
	az := NewAnalyzer(AnalyzerConfig{SampleRate: 44100, SampleSize: 2048})

	hz, ok := az.Centroid(sine(1000, 44100, 2048, 0.5))
	require.True(t, ok)

	// leakage pulls the centroid a little, it stays close to the tone
	assert.InDelta(t, 1000, hz, 120)
}

func TestCentroidRisesWithBrightness(t *testing.T) {
	az := NewAnalyzer(AnalyzerConfig{SampleRate: 44100, SampleSize: 1024})

	low, ok := az.Centroid(sine(200, 44100, 1024, 0.5))
	require.True(t, ok)

	high, ok := az.Centroid(sine(2500, 44100, 1024, 0.5))
	require.True(t, ok)

	assert.Greater(t, high, low)
}

func TestCentroidOfSilence(t *testing.T) {
	az := NewAnalyzer(AnalyzerConfig{SampleRate: 44100, SampleSize: 512})

	_, ok := az.Centroid(make([]float64, 512))
	assert.False(t, ok)

	_, ok = az.Centroid(nil)
	assert.False(t, ok)
}

func TestShortBufferIsPadded(t *testing.T) {
	az := NewAnalyzer(AnalyzerConfig{SampleRate: 8000, SampleSize: 256})

	mags := az.Magnitudes(sine(500, 8000, 100, 1))
	assert.Len(t, mags, 129)
}

func TestBinFrequency(t *testing.T) {
	az := NewAnalyzer(AnalyzerConfig{SampleRate: 48000, SampleSize: 1024})

	assert.Equal(t, 0.0, az.BinFrequency(0))
	assert.InDelta(t, 46.875, az.BinFrequency(1), 1e-9)
	assert.InDelta(t, 24000, az.BinFrequency(512), 1e-9)
}

func BenchmarkCentroid(b *testing.B) {
	az := NewAnalyzer(AnalyzerConfig{SampleRate: 44100, SampleSize: 1024})
	buf := sine(440, 44100, 1024, 0.3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		az.Centroid(buf)
	}
}
