package feature

import (
	"time"

	"github.com/noriah/handwave/input"
	"github.com/noriah/handwave/tuning"
)

// Motion is the frame differencing strategy. It compares each downsampled
// luminance frame to the previous one block by block.
type Motion struct {
	cfg  tuning.Motion
	poll poller[input.Frame]

	// downsampled geometry of prev
	w, h int
	prev []float64
	cur  []float64

	primed bool
}

// NewMotion returns a motion extractor reading frames from src.
func NewMotion(cfg tuning.Motion, src *input.Latest[input.Frame], staleAfter time.Duration) *Motion {
	if cfg.Scale < 1 {
		cfg.Scale = 1
	}
	if cfg.Block < 1 {
		cfg.Block = 1
	}

	return &Motion{
		cfg:  cfg,
		poll: poller[input.Frame]{box: src, staleAfter: staleAfter},
	}
}

func (m *Motion) Extract(now time.Time) Observation {
	f, status := m.poll.poll(now)
	if status != Present {
		return Observation{Status: status, X: 0.5, Y: 0.5}
	}

	return m.Process(f)
}

// Process compares f with the previous frame. The first frame of a
// geometry only primes the previous buffer.
func (m *Motion) Process(f input.Frame) Observation {
	idle := Observation{Status: Absent, X: 0.5, Y: 0.5}

	if !f.Valid() {
		return idle
	}

	scale := m.cfg.Scale
	w, h := f.Width/scale, f.Height/scale
	if w == 0 || h == 0 {
		return idle
	}

	if w != m.w || h != m.h {
		m.w, m.h = w, h
		m.prev = make([]float64, w*h)
		m.cur = make([]float64, w*h)
		m.primed = false
	}

	for y := 0; y < h; y++ {
		row := m.cur[y*w : (y+1)*w]
		for x := range row {
			sx := x
			if m.cfg.Mirror {
				sx = w - 1 - x
			}
			row[x] = f.Luma(sx*scale, y*scale)
		}
	}

	if !m.primed {
		copy(m.prev, m.cur)
		m.primed = true
		return idle
	}

	hits, sumX, sumY, total := m.grid()

	copy(m.prev, m.cur)

	if hits == 0 || total == 0 {
		return idle
	}

	return Observation{
		Status:    Present,
		X:         sumX / float64(hits),
		Y:         sumY / float64(hits),
		Intensity: clamp01(float64(hits) / float64(total) * m.cfg.Gain),
	}
}

// grid counts the moving blocks of cur against prev. Partial blocks at the
// right and bottom edges are ignored.
func (m *Motion) grid() (hits int, sumX, sumY float64, total int) {
	b := m.cfg.Block
	bx, by := m.w/b, m.h/b
	total = bx * by

	area := float64(b * b)
	half := float64(b) / 2

	for j := 0; j < by; j++ {
		for i := 0; i < bx; i++ {
			x0, y0 := i*b, j*b

			sum := 0.0
			for y := y0; y < y0+b; y++ {
				off := y * m.w
				for x := x0; x < x0+b; x++ {
					d := m.cur[off+x] - m.prev[off+x]
					if d < 0 {
						d = -d
					}
					sum += d
				}
			}

			if sum/area > m.cfg.Threshold {
				hits++
				sumX += (float64(x0) + half) / float64(m.w)
				sumY += (float64(y0) + half) / float64(m.h)
			}
		}
	}

	return
}
