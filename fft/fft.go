// Package fft wraps the real to complex transform used by the audio analyzer.
package fft

import "gonum.org/v1/gonum/dsp/fourier"

// Plan transforms a fixed real input buffer into a fixed complex output
// buffer. The output holds len(input)/2+1 coefficients.
type Plan struct {
	input  []float64
	output []complex128
	fft    *fourier.FFT
}

// NewPlan returns a plan bound to in and out.
func NewPlan(in []float64, out []complex128) *Plan {
	return &Plan{
		input:  in,
		output: out,
		fft:    fourier.NewFFT(len(in)),
	}
}

// InitPlan sets pointer to a new plan bound to in and out.
func InitPlan(pointer **Plan, in []float64, out []complex128) {
	*pointer = NewPlan(in, out)
}

// Execute runs the transform.
func (p *Plan) Execute() {
	p.fft.Coefficients(p.output, p.input)
}

// Size is the length of the real input.
func (p *Plan) Size() int {
	return len(p.input)
}
