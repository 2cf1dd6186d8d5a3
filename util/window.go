package util

// MovingWindow is a bounded FIFO of the most recent samples.
//
// Samples live in a fixed ring. Once the ring is full every Update evicts the
// oldest sample, so Len never exceeds Cap. The running sum is kept up to
// date on insert and eviction.
type MovingWindow struct {
	ring []float64
	head int // index of the oldest sample

	length int

	sum float64
}

// NewMovingWindow returns a new moving window holding at most size samples.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		ring: make([]float64, size),
	}
}

// Update pushes value into the window and returns the new mean.
func (mw *MovingWindow) Update(value float64) float64 {
	if mw.length < len(mw.ring) {
		mw.ring[(mw.head+mw.length)%len(mw.ring)] = value
		mw.length++
	} else {
		old := mw.ring[mw.head]
		mw.sum -= old

		mw.ring[mw.head] = value
		mw.head = (mw.head + 1) % len(mw.ring)
	}

	mw.sum += value

	return mw.Mean()
}

// Reset empties the window.
func (mw *MovingWindow) Reset() {
	mw.head = 0
	mw.length = 0
	mw.sum = 0
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Mean is the moving window average. An empty window has a mean of 0.
func (mw *MovingWindow) Mean() float64 {
	if mw.length == 0 {
		return 0
	}

	return mw.sum / float64(mw.length)
}
