package sampler

import (
	"math"
	"testing"
)

func TestEnvelopeContinuousAcrossPhaseBoundaries(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Attack: 0.01, Hold: 0.005, Decay: 0.02, Sustain: 0.6, Release: 0.02})
	e.Trigger()

	prev := e.Value()
	prevPhase := e.Phase()
	transitions := 0
	// largest per-sample step inside a segment bounds the jump we accept at a boundary
	const eps = 0.01
	for i := 0; i < testSampleRate/10; i++ {
		v := e.Next()
		if e.Phase() != prevPhase {
			transitions++
			if math.Abs(float64(v-prev)) > eps {
				t.Fatalf("jump %f at %s->%s", v-prev, prevPhase, e.Phase())
			}
			prevPhase = e.Phase()
		}
		prev = v
	}
	if e.Phase() != PhaseSustain {
		t.Fatalf("expected sustain, got %s", e.Phase())
	}
	if transitions != 3 {
		t.Fatalf("expected attack->hold->decay->sustain, saw %d transitions", transitions)
	}
	if !approxEqual(float64(e.Value()), 0.6, 1e-6) {
		t.Fatalf("sustain level: got %f", e.Value())
	}
}

func TestEnvelopeSegmentsLandOnTarget(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Attack: 0.01, Sustain: 0.5, Decay: 0.01})
	e.Trigger()
	attackFrames := int(0.01 * testSampleRate)
	e.Advance(attackFrames - 1)
	if e.Phase() != PhaseAttack {
		t.Fatalf("attack ended early: %s", e.Phase())
	}
	if v := e.Next(); v != 1 {
		t.Fatalf("attack should end exactly at 1, got %f", v)
	}
}

func TestEnvelopeCurveIsExponential(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Attack: 0.1, Sustain: 1})
	e.Trigger()
	half := int(0.05 * testSampleRate)
	v := e.Advance(half)
	if v <= 0.55 || v >= 1 {
		t.Fatalf("expected concave attack above linear midpoint, got %f", v)
	}
}

func TestEnvelopeRetriggerKeepsCurrentValue(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Attack: 0.1, Sustain: 1, Release: 0.1})
	e.Trigger()
	mid := e.Advance(int(0.03 * testSampleRate))
	if mid <= 0 {
		t.Fatalf("attack did not rise")
	}
	e.Trigger()
	if e.Phase() != PhaseAttack {
		t.Fatalf("retrigger should restart attack, got %s", e.Phase())
	}
	if e.Value() != mid {
		t.Fatalf("retrigger zeroed value: before=%f after=%f", mid, e.Value())
	}
	if next := e.Next(); next < mid {
		t.Fatalf("restarted attack should rise from current value: %f -> %f", mid, next)
	}
}

func TestEnvelopeZeroDurationSegmentsDoNotStall(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 0.7})
	e.Trigger()
	if e.Phase() != PhaseSustain {
		t.Fatalf("zero attack/hold/decay should land in sustain immediately, got %s", e.Phase())
	}
	if e.Value() != 0.7 {
		t.Fatalf("expected sustain level 0.7, got %f", e.Value())
	}
	e.Release()
	if e.Phase() != PhaseIdle || !e.Finished() {
		t.Fatalf("zero release should finish immediately, got %s", e.Phase())
	}
}

func TestEnvelopeReleaseReachesIdle(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 1, Release: 0.05})
	e.Trigger()
	e.Release()
	if e.Phase() != PhaseRelease {
		t.Fatalf("expected release, got %s", e.Phase())
	}
	e.Advance(int(0.05*testSampleRate) + 1)
	if !e.Finished() || e.Value() != 0 {
		t.Fatalf("expected idle at zero, got %s %f", e.Phase(), e.Value())
	}
}

func TestEnvelopeReleaseHoldKeepsLevel(t *testing.T) {
	hold := int(0.01 * testSampleRate)
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 0.6, Release: 0.05, ReleaseHold: 0.01})
	e.Trigger()
	e.Release()
	if e.Phase() != PhaseReleaseHold {
		t.Fatalf("expected release hold, got %s", e.Phase())
	}
	e.Advance(hold - 1)
	e.Release()
	if e.Phase() != PhaseReleaseHold || e.Value() != 0.6 {
		t.Fatalf("level should hold at sustain, got %s %f", e.Phase(), e.Value())
	}
	e.Advance(1)
	if e.Phase() != PhaseRelease {
		t.Fatalf("expected release after the hold, got %s", e.Phase())
	}
	e.Advance(int(0.05*testSampleRate) + 1)
	if !e.Finished() {
		t.Fatalf("expected idle, got %s", e.Phase())
	}

	e.Trigger()
	e.Release()
	e.FastRelease(StealFadeFrames)
	e.Advance(StealFadeFrames)
	if !e.Finished() {
		t.Fatalf("fast release should cut the hold short, got %s", e.Phase())
	}
}

func TestEnvelopeReleaseIsNoOpWhenReleasingOrIdle(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 1, Release: 0.1})
	e.Release()
	if e.Phase() != PhaseIdle {
		t.Fatalf("release from idle should stay idle")
	}
	e.Trigger()
	e.Release()
	e.Advance(100)
	before := e.Value()
	e.Release()
	if e.Value() != before || e.Phase() != PhaseRelease {
		t.Fatalf("second release restarted the segment")
	}
}

func TestEnvelopeFastReleaseIsBounded(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 1, Release: 5})
	e.Trigger()
	e.FastRelease(StealFadeFrames)
	e.Advance(StealFadeFrames)
	if !e.Finished() {
		t.Fatalf("fast release not done after %d frames: %s %f", StealFadeFrames, e.Phase(), e.Value())
	}
}

func TestEnvelopeResetForcesZero(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 1, Release: 1})
	e.Trigger()
	e.Reset()
	if e.Value() != 0 || e.Phase() != PhaseIdle {
		t.Fatalf("reset should force 0/idle")
	}
}

func TestEnvelopeScaleMapsToSemitones(t *testing.T) {
	e := NewEnvelope(testSampleRate, EnvelopeParams{Sustain: 1})
	e.Scale = -7
	e.Trigger()
	if e.Value() != -7 || e.Level() != 1 {
		t.Fatalf("expected scaled value -7 at level 1, got %f/%f", e.Value(), e.Level())
	}
}
