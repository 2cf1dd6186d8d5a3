package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingWindowBounded(t *testing.T) {
	mw := NewMovingWindow(5)

	for i := 1; i <= 12; i++ {
		mw.Update(float64(i))
		require.LessOrEqual(t, mw.Len(), 5)
	}

	assert.Equal(t, 5, mw.Len())
	assert.InDelta(t, 10.0, mw.Mean(), 1e-12)
}

func TestMovingWindowPartialMean(t *testing.T) {
	mw := NewMovingWindow(6)

	assert.InDelta(t, 0.2, mw.Update(0.2), 1e-12)
	assert.InDelta(t, 0.3, mw.Update(0.4), 1e-12)
	assert.Equal(t, 2, mw.Len())
}

func TestMovingWindowReset(t *testing.T) {
	mw := NewMovingWindow(3)
	for _, v := range []float64{1, 2, 3, 4} {
		mw.Update(v)
	}

	mw.Reset()
	assert.Equal(t, 0, mw.Len())
	assert.Equal(t, 0.0, mw.Mean())

	assert.InDelta(t, 7.0, mw.Update(7), 1e-12)
	assert.Equal(t, 1, mw.Len())
}

func TestMovingWindowMinimumSize(t *testing.T) {
	mw := NewMovingWindow(0)
	mw.Update(1)
	mw.Update(2)

	assert.Equal(t, 1, mw.Len())
	assert.Equal(t, 2.0, mw.Mean())
}

func BenchmarkMovingWindow(b *testing.B) {
	mw := NewMovingWindow(6)

	for i := 0; i < b.N; i++ {
		mw.Update(float64(i & 0xff))
	}
}
