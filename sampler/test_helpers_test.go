package sampler

import (
	"math"
	"testing"
)

const testSampleRate = 48000

func constantBuffer(frames int, value float32) [][]float32 {
	ch := make([]float32, frames)
	for i := range ch {
		ch[i] = value
	}
	return [][]float32{ch}
}

func sineBuffer(frames int, hz float64, sampleRate int) [][]float32 {
	ch := make([]float32, frames)
	for i := range ch {
		ch[i] = float32(0.5 * math.Sin(2*math.Pi*hz*float64(i)/float64(sampleRate)))
	}
	return [][]float32{ch}
}

func stereoRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}
	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(interleaved)))
}

func leftChannel(interleaved []float32) []float32 {
	out := make([]float32, len(interleaved)/2)
	for i := range out {
		out[i] = interleaved[i*2]
	}
	return out
}

// newTestEngine builds an engine with one full-range constant region at
// root note 60 and instant envelopes.
func newTestEngine(t *testing.T, voices int) *Engine {
	t.Helper()
	p := NewDefaultParams()
	e := NewEngine(testSampleRate, voices, p)
	desc := FullRangeDescriptor(60)
	desc.Looping = true
	if _, err := e.LoadRegion(constantBuffer(testSampleRate, 1), testSampleRate, desc); err != nil {
		t.Fatalf("load region: %v", err)
	}
	e.BuildKeyMap(PolicyExactRange)
	return e
}

func countState(e *Engine, state VoiceState) int {
	n := 0
	for i := range e.voices {
		if e.voices[i].state == state {
			n++
		}
	}
	return n
}

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
