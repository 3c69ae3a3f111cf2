package sampler

import "math"

// EnvelopePhase is the segment an envelope is currently producing.
type EnvelopePhase int

const (
	PhaseIdle EnvelopePhase = iota
	PhaseAttack
	PhaseHold
	PhaseDecay
	PhaseSustain
	PhaseReleaseHold
	PhaseRelease
)

func (p EnvelopePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAttack:
		return "attack"
	case PhaseHold:
		return "hold"
	case PhaseDecay:
		return "decay"
	case PhaseSustain:
		return "sustain"
	case PhaseReleaseHold:
		return "release hold"
	case PhaseRelease:
		return "release"
	default:
		return "unknown"
	}
}

// DefaultEnvelopeCurve is the number of exponential time constants packed
// into each attack, decay and release segment. Higher values bend the curve
// harder; every segment still reaches its target exactly at its duration.
const DefaultEnvelopeCurve = 4.0

// EnvelopeParams holds segment durations in seconds and the sustain level.
// ReleaseHold holds the level after Release before the release segment.
type EnvelopeParams struct {
	Attack      float32
	Hold        float32
	Decay       float32
	Sustain     float32
	Release     float32
	ReleaseHold float32
}

// Envelope is an attack/hold/decay/sustain/release generator. Its internal
// value is in [0,1]; Scale maps it to the caller's unit (1 for amplitude and
// filter, semitones for pitch).
type Envelope struct {
	sampleRate float32
	params     EnvelopeParams
	curve      float32
	Scale      float32

	phase EnvelopePhase
	value float32

	// current segment
	start     float32
	target    float32
	remaining int
	u         float32
	coef      float32
	floor     float32
	norm      float32
}

// NewEnvelope creates an idle envelope.
func NewEnvelope(sampleRate int, params EnvelopeParams) *Envelope {
	e := &Envelope{
		sampleRate: float32(sampleRate),
		curve:      DefaultEnvelopeCurve,
		Scale:      1,
	}
	e.SetParams(params)
	return e
}

// SetParams updates segment settings. Running segments keep their timing; a
// sustaining envelope moves to a new sustain level through a decay segment.
func (e *Envelope) SetParams(p EnvelopeParams) {
	p.Attack = maxf(p.Attack, 0)
	p.Hold = maxf(p.Hold, 0)
	p.Decay = maxf(p.Decay, 0)
	p.Release = maxf(p.Release, 0)
	p.ReleaseHold = maxf(p.ReleaseHold, 0)
	p.Sustain = clampf(p.Sustain, 0, 1)
	old := e.params.Sustain
	e.params = p
	if e.phase == PhaseSustain && old != p.Sustain {
		e.enter(PhaseDecay)
	}
}

// Params returns the current settings.
func (e *Envelope) Params() EnvelopeParams {
	return e.params
}

// SetCurve changes the curvature used for new segments.
func (e *Envelope) SetCurve(k float32) {
	if k < 0.01 {
		k = 0.01
	}
	e.curve = k
}

// Phase reports the current phase.
func (e *Envelope) Phase() EnvelopePhase {
	return e.phase
}

// Value returns the current scaled output without advancing.
func (e *Envelope) Value() float32 {
	return e.value * e.Scale
}

// Level returns the current unscaled value in [0,1].
func (e *Envelope) Level() float32 {
	return e.value
}

// Finished reports whether the envelope is idle.
func (e *Envelope) Finished() bool {
	return e.phase == PhaseIdle
}

// Trigger restarts the attack from the current value.
func (e *Envelope) Trigger() {
	e.enter(PhaseAttack)
}

// Release moves any active phase into release, through the release hold
// when one is set. It is a no-op when already releasing or idle.
func (e *Envelope) Release() {
	switch e.phase {
	case PhaseIdle, PhaseReleaseHold, PhaseRelease:
		return
	}
	e.enter(PhaseReleaseHold)
}

// FastRelease ramps to zero over at most frames samples, shortening a
// running release if needed.
func (e *Envelope) FastRelease(frames int) {
	if e.phase == PhaseIdle {
		return
	}
	if e.phase == PhaseRelease && e.remaining <= frames {
		return
	}
	e.phase = PhaseRelease
	e.beginSegment(0, frames)
	if e.remaining == 0 {
		e.value = 0
		e.phase = PhaseIdle
	}
}

// Reset forces the envelope to zero and idle.
func (e *Envelope) Reset() {
	e.phase = PhaseIdle
	e.value = 0
	e.remaining = 0
}

// Next advances one frame and returns the scaled value.
func (e *Envelope) Next() float32 {
	switch e.phase {
	case PhaseIdle, PhaseSustain:
		return e.value * e.Scale
	case PhaseHold, PhaseReleaseHold:
		e.remaining--
	default:
		e.u *= e.coef
		e.value = e.target + (e.start-e.target)*(e.u-e.floor)*e.norm
		e.remaining--
	}
	if e.remaining <= 0 {
		e.value = e.target
		e.enter(e.nextPhase())
	}
	return e.value * e.Scale
}

// Advance steps n frames and returns the scaled value.
func (e *Envelope) Advance(n int) float32 {
	for i := 0; i < n; i++ {
		if e.phase == PhaseIdle || e.phase == PhaseSustain {
			break
		}
		e.Next()
	}
	return e.value * e.Scale
}

func (e *Envelope) nextPhase() EnvelopePhase {
	switch e.phase {
	case PhaseAttack:
		return PhaseHold
	case PhaseHold:
		return PhaseDecay
	case PhaseDecay:
		return PhaseSustain
	case PhaseReleaseHold:
		return PhaseRelease
	default:
		return PhaseIdle
	}
}

// enter starts phase p, skipping zero-length segments in the same call.
func (e *Envelope) enter(p EnvelopePhase) {
	for {
		e.phase = p
		switch p {
		case PhaseIdle:
			e.value = 0
			e.remaining = 0
			return
		case PhaseSustain:
			e.value = e.params.Sustain
			e.remaining = 0
			return
		case PhaseAttack:
			e.beginSegment(1, e.frames(e.params.Attack))
		case PhaseHold:
			e.start, e.target = e.value, e.value
			e.remaining = e.frames(e.params.Hold)
		case PhaseReleaseHold:
			e.start, e.target = e.value, e.value
			e.remaining = e.frames(e.params.ReleaseHold)
		case PhaseDecay:
			e.beginSegment(e.params.Sustain, e.frames(e.params.Decay))
		case PhaseRelease:
			e.beginSegment(0, e.frames(e.params.Release))
		}
		if e.remaining > 0 {
			return
		}
		e.value = e.target
		p = e.nextPhase()
	}
}

func (e *Envelope) beginSegment(target float32, frames int) {
	e.start = e.value
	e.target = target
	e.remaining = frames
	if frames <= 0 {
		return
	}
	k := float64(e.curve)
	e.coef = float32(math.Exp(-k / float64(frames)))
	e.floor = float32(math.Exp(-k))
	e.norm = 1 / (1 - e.floor)
	e.u = 1
}

func (e *Envelope) frames(seconds float32) int {
	if seconds <= 0 {
		return 0
	}
	return int(seconds*e.sampleRate + 0.5)
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
