package analysis

import (
	"math"
	"testing"
)

func sine32(n int, hz float64, sr int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * hz * float64(i) / float64(sr)))
	}
	return out
}

func TestPeakFrequencyFindsSine(t *testing.T) {
	for _, hz := range []float64{110, 440, 1234.5, 5000} {
		got := PeakFrequency(sine32(16384, hz, 48000), 48000)
		if math.Abs(got-hz) > 1.0 {
			t.Fatalf("peak for %f Hz: got %f", hz, got)
		}
	}
}

func TestPeakFrequencySilenceIsZero(t *testing.T) {
	if got := PeakFrequency(make([]float32, 4096), 48000); got != 0 {
		t.Fatalf("expected 0 for silence, got %f", got)
	}
	if got := PeakFrequency(make([]float32, 4), 48000); got != 0 {
		t.Fatalf("expected 0 for short input, got %f", got)
	}
}

func TestSpectralCentroidRisesWithFrequency(t *testing.T) {
	low := SpectralCentroid(sine32(8192, 300, 48000), 48000)
	high := SpectralCentroid(sine32(8192, 3000, 48000), 48000)
	if high <= low*5 {
		t.Fatalf("centroid should follow frequency: low=%f high=%f", low, high)
	}
}

func TestMagnitudeSpectrumUsesPowerOfTwoPrefix(t *testing.T) {
	s, err := MagnitudeSpectrum(make([]float32, 5000), 48000)
	if err != nil {
		t.Fatalf("spectrum: %v", err)
	}
	if s.Size != 4096 || len(s.Mag) != 2049 {
		t.Fatalf("unexpected size %d bins %d", s.Size, len(s.Mag))
	}
}
