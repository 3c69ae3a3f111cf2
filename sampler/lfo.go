package sampler

import "math"

// LFO is a sine modulation source with output in [-1,1]. Depth and routing
// are applied by the caller.
type LFO struct {
	sampleRate float64
	rate       float64
	phase      float64 // cycles, [0,1)
	inc        float64
}

// NewLFO creates an LFO at rate Hz starting at phase zero.
func NewLFO(sampleRate int, rate float64) *LFO {
	l := &LFO{sampleRate: float64(sampleRate)}
	l.SetRate(rate)
	return l
}

// SetRate changes the frequency without resetting the phase.
func (l *LFO) SetRate(hz float64) {
	if hz < 0 || math.IsNaN(hz) {
		hz = 0
	}
	l.rate = hz
	if l.sampleRate > 0 {
		l.inc = hz / l.sampleRate
	}
}

// Rate reports the frequency in Hz.
func (l *LFO) Rate() float64 {
	return l.rate
}

// Reset puts the oscillator back to phase zero.
func (l *LFO) Reset() {
	l.phase = 0
}

// Value returns the output at the current phase.
func (l *LFO) Value() float32 {
	return float32(math.Sin(2 * math.Pi * l.phase))
}

// Next returns the current output and advances one frame.
func (l *LFO) Next() float32 {
	v := l.Value()
	l.step(l.inc)
	return v
}

// Advance moves n frames forward and returns the output there.
func (l *LFO) Advance(n int) float32 {
	l.step(l.inc * float64(n))
	return l.Value()
}

func (l *LFO) step(d float64) {
	l.phase += d
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
	}
}
