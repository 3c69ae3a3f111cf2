package dsp

import (
	"math"
	"testing"
)

func sineRMS(b *Biquad, hz, sr float64, n int) float64 {
	b.Reset()
	var sum float64
	count := 0
	for i := 0; i < n; i++ {
		y := b.Process(float32(math.Sin(2 * math.Pi * hz * float64(i) / sr)))
		if i >= n/2 {
			sum += float64(y) * float64(y)
			count++
		}
	}
	return math.Sqrt(sum / float64(count))
}

func TestLowpassPassesLowAndCutsHigh(t *testing.T) {
	const sr = 48000.0
	b := NewLowpass(1000, sr, 0.7071)
	low := sineRMS(b, 100, sr, 9600)
	high := sineRMS(b, 10000, sr, 9600)
	if math.Abs(low-math.Sqrt2/2) > 0.02 {
		t.Fatalf("passband rms = %f, want about 0.707", low)
	}
	if high > 0.02 {
		t.Fatalf("stopband rms = %f, want strong attenuation", high)
	}
}

func TestSetLowpassClampsCutoff(t *testing.T) {
	b := NewLowpass(1e6, 48000, 0.01)
	for i := 0; i < 1000; i++ {
		y := b.Process(1)
		if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
			t.Fatalf("unstable output at %d", i)
		}
	}
	b.SetLowpass(1000, 0, 1)
	if y := b.Process(1); math.IsNaN(float64(y)) {
		t.Fatalf("zero sample rate must keep previous coefficients")
	}
}

func TestLagrangeLinear(t *testing.T) {
	l := NewLagrangeInterpolator(2)
	if l.Order() != 1 {
		t.Fatalf("unsupported order should fall back to linear, got %d", l.Order())
	}
	if got := l.Interpolate(100, 1, 3, -100, 0.25); got != 1.5 {
		t.Fatalf("linear = %f, want 1.5", got)
	}
}

func TestLagrangeCubicIsExactForCubics(t *testing.T) {
	l := NewLagrangeInterpolator(3)
	f := func(x float64) float64 { return 0.5*x*x*x - x*x + 2*x - 1 }
	s0, s1, s2, s3 := float32(f(-1)), float32(f(0)), float32(f(1)), float32(f(2))
	for _, frac := range []float64{0, 0.25, 0.5, 0.9} {
		got := l.Interpolate(s0, s1, s2, s3, float32(frac))
		if math.Abs(float64(got)-f(frac)) > 1e-5 {
			t.Fatalf("cubic at %f = %f, want %f", frac, got, f(frac))
		}
	}
}
