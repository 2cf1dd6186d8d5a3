package fft

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanFindsTone(t *testing.T) {
	const n = 256
	in := make([]float64, n)
	out := make([]complex128, n/2+1)

	// exactly 16 cycles over the buffer
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 16 * float64(i) / n)
	}

	plan := NewPlan(in, out)
	plan.Execute()

	peak := 0
	for i := range out {
		if cmplx.Abs(out[i]) > cmplx.Abs(out[peak]) {
			peak = i
		}
	}

	assert.Equal(t, 16, peak)
	assert.Equal(t, n, plan.Size())
}

func Benchmark(b *testing.B) {
	reals := generateReals()
	cmplxs := make([]complex128, len(reals)/2+1)

	var plan *Plan
	InitPlan(&plan, reals, cmplxs)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		plan.Execute()
	}
}

const numReals = 2048

func generateReals() []float64 {
	input := make([]float64, numReals)

	c := 3.1
	for i := range input {
		c += 0.3
		input[i] = 2*c - c*c
	}

	return input
}
