package input

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestKeepsOnlyNewest(t *testing.T) {
	var l Latest[int]

	_, _, ok := l.Load()
	assert.False(t, ok)

	at := time.Unix(10, 0)
	l.Store(1, at)
	l.Store(2, at.Add(time.Second))

	v, stamp, ok := l.Load()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, Stamp{Seq: 2, At: at.Add(time.Second)}, stamp)

	// loading does not consume
	v, _, _ = l.Load()
	assert.Equal(t, 2, v)
}

func TestLatestConcurrentWriters(t *testing.T) {
	var l Latest[int]
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				l.Store(i, time.Now())
				l.Load()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, uint64(8000), l.Stamp().Seq)
}

func TestFrameLuma(t *testing.T) {
	bgr := Frame{Width: 2, Height: 1, Order: OrderBGR, Pix: []byte{255, 0, 0, 0, 0, 255}}
	require.True(t, bgr.Valid())

	assert.InDelta(t, 0.114*255, bgr.Luma(0, 0), 1e-9)
	assert.InDelta(t, 0.299*255, bgr.Luma(1, 0), 1e-9)

	rgb := Frame{Width: 1, Height: 1, Order: OrderRGBA, Pix: []byte{255, 0, 0, 255}}
	assert.InDelta(t, 0.299*255, rgb.Luma(0, 0), 1e-9)

	gray := Frame{Width: 1, Height: 1, Order: OrderGray, Pix: []byte{42}}
	assert.Equal(t, 42.0, gray.Luma(0, 0))
}

func TestFrameValid(t *testing.T) {
	assert.False(t, Frame{}.Valid())
	assert.False(t, Frame{Width: 2, Height: 2, Pix: make([]byte, 11)}.Valid())
	assert.True(t, Frame{Width: 2, Height: 2, Pix: make([]byte, 12)}.Valid())
}

func TestMixDown(t *testing.T) {
	dst := make([]Sample, 3)

	n := MixDown(dst, []float64{1, 0, 0.5, 0.5, -1, 1, 9, 9}, 2)
	assert.Equal(t, 3, n)
	assert.Equal(t, []Sample{0.5, 0.5, 0}, dst)

	n = MixDown(dst, []float64{0.25}, 0)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0.25, dst[0])
}

func TestLandmarksMirror(t *testing.T) {
	l := Landmarks{{{X: 0.2, Y: 0.3}}}
	m := l.Mirror()

	assert.InDelta(t, 0.8, m[0][0].X, 1e-12)
	assert.Equal(t, 0.3, m[0][0].Y)
	assert.Equal(t, 0.2, l[0][0].X)
}
