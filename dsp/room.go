package dsp

import (
	"fmt"
	"math"
	"math/rand"
)

// RoomConfig describes a synthetic stereo room impulse response: sparse
// early reflections followed by a two-band decaying noise tail.
type RoomConfig struct {
	SampleRate int
	Length     float64 // seconds
	Seed       int64

	Reflections  int
	TailLevel    float64
	Width        float64 // 0 mono .. 1 wide
	LowDecay     float64 // seconds to -60 dB below the crossover
	HighDecay    float64 // seconds to -60 dB above the crossover
	Crossover    float64 // Hz
	FadeOut      float64 // seconds
	PeakNormalTo float64
}

// DefaultRoomConfig returns a medium room at sampleRate.
func DefaultRoomConfig(sampleRate int) RoomConfig {
	return RoomConfig{
		SampleRate:   sampleRate,
		Length:       1.2,
		Seed:         1,
		Reflections:  24,
		TailLevel:    0.08,
		Width:        0.6,
		LowDecay:     1.2,
		HighDecay:    0.35,
		Crossover:    2500,
		FadeOut:      0.02,
		PeakNormalTo: 0.9,
	}
}

// Validate reports the first out-of-range field.
func (c RoomConfig) Validate() error {
	switch {
	case c.SampleRate < 8000:
		return fmt.Errorf("room: sample rate too low: %d", c.SampleRate)
	case c.Length <= 0:
		return fmt.Errorf("room: length must be > 0")
	case c.Reflections < 0:
		return fmt.Errorf("room: reflections must be >= 0")
	case c.TailLevel < 0:
		return fmt.Errorf("room: tail level must be >= 0")
	case c.Width < 0 || c.Width > 1:
		return fmt.Errorf("room: width must be in [0,1]")
	case c.LowDecay <= 0 || c.HighDecay <= 0:
		return fmt.Errorf("room: decay times must be > 0")
	case c.Crossover <= 0 || c.Crossover >= 0.5*float64(c.SampleRate):
		return fmt.Errorf("room: crossover must be in (0, nyquist)")
	case c.PeakNormalTo <= 0:
		return fmt.Errorf("room: peak must be > 0")
	}
	return nil
}

// GenerateRoomIR synthesizes a stereo room response. The direct sound is
// not included; mix it back in with the dry level of StereoConvolver.
func GenerateRoomIR(cfg RoomConfig) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	sr := float64(cfg.SampleRate)
	n := max(int(math.Round(cfg.Length*sr)), 1)
	left := make([]float32, n)
	right := make([]float32, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	for i := 0; i < cfg.Reflections; i++ {
		t := 0.002 + 0.058*rng.Float64()
		idx := int(t * sr)
		if idx >= n {
			continue
		}
		amp := (0.1 + 0.3*rng.Float64()) * math.Exp(-t*25)
		pan := (2*rng.Float64() - 1) * cfg.Width
		left[idx] += float32(amp * math.Cos((pan+1)*math.Pi/4))
		right[idx] += float32(amp * math.Sin((pan+1)*math.Pi/4))
	}

	if cfg.TailLevel > 0 {
		lowL := NewLowpass(float32(cfg.Crossover), float32(sr), 0.7071)
		lowR := NewLowpass(float32(cfg.Crossover), float32(sr), 0.7071)
		// -60 dB over the decay time.
		kLow := math.Log(1000) / (cfg.LowDecay * sr)
		kHigh := math.Log(1000) / (cfg.HighDecay * sr)
		onset := int(0.01 * sr)
		for i := onset; i < n; i++ {
			nl := float32(rng.NormFloat64())
			nr := float32(rng.NormFloat64())
			nr = float32(cfg.Width)*nr + float32(1-cfg.Width)*nl
			ll, lr := lowL.Process(nl), lowR.Process(nr)
			gLow := float32(cfg.TailLevel * math.Exp(-kLow*float64(i)))
			gHigh := float32(cfg.TailLevel * math.Exp(-kHigh*float64(i)))
			left[i] += gLow*ll + gHigh*(nl-ll)
			right[i] += gLow*lr + gHigh*(nr-lr)
		}
	}

	if fade := int(cfg.FadeOut * sr); fade > 0 {
		fade = min(fade, n)
		for i := 0; i < fade; i++ {
			g := float32(0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(max(fade-1, 1)))))
			left[n-fade+i] *= g
			right[n-fade+i] *= g
		}
	}

	var peak float32
	for i := range left {
		peak = max(peak, left[i], -left[i], right[i], -right[i])
	}
	if peak > 0 {
		s := float32(cfg.PeakNormalTo) / peak
		for i := range left {
			left[i] *= s
			right[i] *= s
		}
	}
	return left, right, nil
}
