package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// NewLowpass creates a resonant lowpass biquad filter.
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	b := &Biquad{}
	b.SetLowpass(cutoff, sampleRate, q)
	return b
}

// SetLowpass recomputes RBJ lowpass coefficients in place, keeping the filter
// history so cutoff sweeps stay click free. Cutoff is clamped below Nyquist.
func (b *Biquad) SetLowpass(cutoff, sampleRate, q float32) {
	if sampleRate <= 0 {
		return
	}
	maxCutoff := 0.49 * sampleRate
	if cutoff > maxCutoff {
		cutoff = maxCutoff
	}
	if cutoff < 10 {
		cutoff = 10
	}
	if q < 0.1 {
		q = 0.1
	}
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	a0 := 1.0 + alpha
	b.b0 = float32((1.0 - cosw0) / 2.0 / a0)
	b.b1 = float32((1.0 - cosw0) / a0)
	b.b2 = b.b0
	b.a1 = float32(-2.0 * cosw0 / a0)
	b.a2 = float32((1.0 - alpha) / a0)
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = float32(dspcore.FlushDenormals(float64(output)))

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// LagrangeInterpolator provides fractional-position interpolation between
// neighbouring samples.
type LagrangeInterpolator struct {
	order int
}

// NewLagrangeInterpolator creates a new Lagrange interpolator
// order: 1 = linear, 3 = cubic
func NewLagrangeInterpolator(order int) *LagrangeInterpolator {
	if order != 3 {
		order = 1
	}
	return &LagrangeInterpolator{
		order: order,
	}
}

// Order reports the interpolation order (1 or 3).
func (l *LagrangeInterpolator) Order() int {
	return l.order
}

// Interpolate evaluates the polynomial through four neighbouring samples
// s0..s3 at frac in [0,1) between s1 and s2. Order 1 only uses s1 and s2.
func (l *LagrangeInterpolator) Interpolate(s0, s1, s2, s3, frac float32) float32 {
	if l.order != 3 {
		return s1 + frac*(s2-s1)
	}
	d := frac
	c0 := s1
	c1 := s2 - s0/3.0 - s1/2.0 - s3/6.0
	c2 := s0/2.0 - s1 + s2/2.0
	c3 := s1/2.0 - s2/2.0 + (s3-s0)/6.0
	return c0 + d*(c1+d*(c2+d*c3))
}
