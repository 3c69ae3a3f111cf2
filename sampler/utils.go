package sampler

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// NoteHz converts a MIDI note number to its equal-tempered frequency in Hz.
func NoteHz(note int) float64 {
	return 440.0 * math.Pow(2.0, float64(note-69)/12.0)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func semitonesToRatio(semitones float32) float32 {
	if semitones == 0 {
		return 1
	}
	return pow2Approx(semitones / 12.0)
}

func dbToGain(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// equalPowerPan returns left/right gains for pan in [-1,1]; centre gives
// 1/sqrt(2) on both sides.
func equalPowerPan(pan float32) (float32, float32) {
	pan = clampf(pan, -1, 1)
	theta := float64(pan+1) * math.Pi / 4
	return float32(math.Cos(theta)), float32(math.Sin(theta))
}

// balancePan attenuates one side only, leaving centre at unity.
func balancePan(pan float32) (float32, float32) {
	pan = clampf(pan, -1, 1)
	left, right := float32(1), float32(1)
	if pan > 0 {
		left = 1 - pan
	} else if pan < 0 {
		right = 1 + pan
	}
	return left, right
}
