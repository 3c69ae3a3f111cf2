package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// MaxFFTSize caps the analysis window used by the spectral helpers.
const MaxFFTSize = 1 << 16

// Spectrum holds a Hann-windowed magnitude spectrum.
type Spectrum struct {
	SampleRate int
	Size       int
	Mag        []float64 // bins 0..Size/2
}

// BinHz returns the frequency spacing between bins.
func (s Spectrum) BinHz() float64 {
	if s.Size == 0 {
		return 0
	}
	return float64(s.SampleRate) / float64(s.Size)
}

// MagnitudeSpectrum analyses the largest power-of-two prefix of samples.
func MagnitudeSpectrum(samples []float32, sampleRate int) (Spectrum, error) {
	n := fftSizeFor(len(samples))
	if n < 16 {
		return Spectrum{SampleRate: sampleRate}, nil
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return Spectrum{}, err
	}
	buf := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = float64(samples[i]) * w
	}
	bins := make([]complex128, n/2+1)
	plan.Forward(bins, buf)
	mag := make([]float64, len(bins))
	for k, c := range bins {
		mag[k] = cmplx.Abs(c)
	}
	return Spectrum{SampleRate: sampleRate, Size: n, Mag: mag}, nil
}

// PeakFrequency returns the frequency of the strongest bin above DC, refined
// by parabolic interpolation. It returns 0 for silent or short input.
func PeakFrequency(samples []float32, sampleRate int) float64 {
	s, err := MagnitudeSpectrum(samples, sampleRate)
	if err != nil || len(s.Mag) < 3 {
		return 0
	}
	best := 1
	for k := 2; k < len(s.Mag)-1; k++ {
		if s.Mag[k] > s.Mag[best] {
			best = k
		}
	}
	if s.Mag[best] <= 1e-12 {
		return 0
	}
	offset := 0.0
	if best > 0 && best < len(s.Mag)-1 {
		a, b, c := s.Mag[best-1], s.Mag[best], s.Mag[best+1]
		den := a - 2*b + c
		if den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	return (float64(best) + offset) * s.BinHz()
}

// SpectralCentroid returns the magnitude-weighted mean frequency in Hz.
func SpectralCentroid(samples []float32, sampleRate int) float64 {
	s, err := MagnitudeSpectrum(samples, sampleRate)
	if err != nil || len(s.Mag) < 2 {
		return 0
	}
	var num, den float64
	for k := 1; k < len(s.Mag); k++ {
		f := float64(k) * s.BinHz()
		num += f * s.Mag[k]
		den += s.Mag[k]
	}
	if den <= 1e-12 {
		return 0
	}
	return num / den
}

func fftSizeFor(n int) int {
	size := 1
	for size*2 <= n && size*2 <= MaxFFTSize {
		size *= 2
	}
	return size
}
