// Package window provides window functions applied to an audio buffer before
// it is transformed.
//
// See https://wikipedia.org/wiki/Window_function
package window

import (
	"math"

	"github.com/pkg/errors"
)

// Function scales buf in place.
type Function func(buf []float64)

// Rectangle leaves the buffer untouched.
func Rectangle(buf []float64) {}

// CosSum applies a two term cosine sum window with coefficient a0.
func CosSum(buf []float64, a0 float64) {
	size := len(buf)
	if size < 2 {
		return
	}

	a1 := 1.0 - a0
	coef := 2.0 * math.Pi / float64(size-1)

	for n := range buf {
		buf[n] *= a0 - a1*math.Cos(coef*float64(n))
	}
}

// Hann applies a Hann window.
func Hann(buf []float64) {
	CosSum(buf, 0.5)
}

// Hamming applies a Hamming window.
func Hamming(buf []float64) {
	CosSum(buf, 25.0/46.0)
}

// Blackman applies a three term Blackman window.
func Blackman(buf []float64) {
	size := len(buf)
	if size < 2 {
		return
	}

	coef := 2.0 * math.Pi / float64(size-1)
	for n := range buf {
		x := coef * float64(n)
		buf[n] *= 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
}

// Table precomputes a window so it can be applied with one multiply per
// sample on every tick.
type Table []float64

// NewTable evaluates fn over size samples.
func NewTable(fn Function, size int) Table {
	t := make(Table, size)
	for i := range t {
		t[i] = 1
	}
	fn(t)
	return t
}

// Apply multiplies buf by the table. buf may be shorter than the table.
func (t Table) Apply(buf []float64) {
	for i := range buf {
		if i >= len(t) {
			return
		}
		buf[i] *= t[i]
	}
}

// Lookup returns a window function by name.
func Lookup(name string) (Function, error) {
	switch name {
	case "", "hann":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "rectangle", "none":
		return Rectangle, nil
	}
	return nil, errors.Errorf("unknown window %q", name)
}
