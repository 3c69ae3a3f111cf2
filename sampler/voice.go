package sampler

import (
	"math"

	"github.com/cwbudde/algo-sampler/dsp"
)

// VoiceState is the lifecycle state of a voice.
type VoiceState int

const (
	VoiceFree VoiceState = iota
	VoicePlaying
	VoiceReleasing
)

func (s VoiceState) String() string {
	switch s {
	case VoiceFree:
		return "free"
	case VoicePlaying:
		return "playing"
	case VoiceReleasing:
		return "releasing"
	default:
		return "unknown"
	}
}

const (
	// StealFadeFrames is the fade applied to a stolen voice before it starts
	// its new note.
	StealFadeFrames = 128

	filterControlInterval = 16
	butterworthQ          = 0.70710678
)

// modulation carries per-frame global modulation for one block.
type modulation struct {
	pitch  []float32 // semitones
	gain   []float32 // linear factor
	filter []float32 // octaves
}

// pendingNote is the note a stolen voice starts once its fade completes.
type pendingNote struct {
	region   *SampleRegion
	hz       float64
	velocity int
	released bool
}

// Voice is one playback unit: a region cursor with three envelopes, a
// vibrato LFO, glide state and an optional resonant lowpass.
type Voice struct {
	sampleRate int
	index      int

	state    VoiceState
	region   *SampleRegion
	note     int
	velocity int
	channel  int
	stamp    uint64

	pos float64

	// pitch increment in log2 frames per output frame, with glide
	curLog2    float64
	targetLog2 float64
	glideCoef  float64
	baseInc    float64

	amp       Envelope
	filterEnv Envelope
	pitchEnv  Envelope
	vibrato   LFO

	filterL, filterR dsp.Biquad
	filterCountdown  int
	linear, cubic    *dsp.LagrangeInterpolator

	gain       float32
	panL, panR float32
	velScale   float32

	pending    pendingNote
	hasPending bool

	params *Params
}

func newVoice(sampleRate, index int) *Voice {
	v := &Voice{
		sampleRate: sampleRate,
		index:      index,
		linear:     dsp.NewLagrangeInterpolator(1),
		cubic:      dsp.NewLagrangeInterpolator(3),
	}
	v.amp = *NewEnvelope(sampleRate, EnvelopeParams{Sustain: 1})
	v.filterEnv = *NewEnvelope(sampleRate, EnvelopeParams{Sustain: 1})
	v.pitchEnv = *NewEnvelope(sampleRate, EnvelopeParams{Sustain: 1})
	v.vibrato = *NewLFO(sampleRate, 5)
	return v
}

// State reports the lifecycle state.
func (v *Voice) State() VoiceState { return v.state }

// Note reports the note the voice is assigned to.
func (v *Voice) Note() int { return v.note }

// Channel reports the MIDI channel the voice is assigned to.
func (v *Voice) Channel() int { return v.channel }

// Stamp reports the allocation timestamp.
func (v *Voice) Stamp() uint64 { return v.stamp }

// Position reports the playback cursor in source frames.
func (v *Voice) Position() float64 { return v.pos }

// Region reports the region currently playing.
func (v *Voice) Region() *SampleRegion { return v.region }

// Stealing reports whether the voice is fading out before a pending note.
func (v *Voice) Stealing() bool { return v.hasPending }

// Amplitude returns the amplitude envelope.
func (v *Voice) Amplitude() *Envelope { return &v.amp }

// FilterEnvelope returns the filter envelope.
func (v *Voice) FilterEnvelope() *Envelope { return &v.filterEnv }

// PitchEnvelope returns the pitch envelope.
func (v *Voice) PitchEnvelope() *Envelope { return &v.pitchEnv }

// start activates the voice on a region. glideFrom is the previous pitch in
// log2 increments when gliding, NaN otherwise.
func (v *Voice) start(r *SampleRegion, note, velocity, channel int, stamp uint64, hz float64, p *Params, glideFrom float64) {
	v.region = r
	v.note = note
	v.velocity = velocity
	v.channel = channel
	v.stamp = stamp
	v.state = VoicePlaying
	v.hasPending = false
	v.pos = r.StartPoint

	v.applyParams(p)
	v.setRegionGain(r, velocity, p)
	v.setPitch(r, hz, p, glideFrom)

	v.amp.Trigger()
	v.filterEnv.Trigger()
	v.pitchEnv.Trigger()
	if p.RestartVoiceLFO {
		v.vibrato.Reset()
	}
	v.filterL.Reset()
	v.filterR.Reset()
	v.filterCountdown = 0
}

// legato moves a playing voice to a new note without touching the cursor or
// the amplitude envelope.
func (v *Voice) legato(note, velocity, channel int, hz float64, p *Params) {
	v.note = note
	v.velocity = velocity
	v.channel = channel
	v.applyParams(p)
	v.setPitch(v.region, hz, p, v.curLog2)
	if p.FilterEnvelopeCoupling.RetriggerOnLegato {
		v.filterEnv.Trigger()
	}
	if p.PitchEnvelopeCoupling.RetriggerOnLegato {
		v.pitchEnv.Trigger()
	}
}

// steal fades the current sound out and queues a new note behind it.
func (v *Voice) steal(r *SampleRegion, note, velocity, channel int, stamp uint64, hz float64) {
	v.note = note
	v.velocity = velocity
	v.channel = channel
	v.stamp = stamp
	v.state = VoicePlaying
	v.pending = pendingNote{region: r, hz: hz, velocity: velocity}
	v.hasPending = true
	v.amp.FastRelease(StealFadeFrames)
}

// noteOff releases the voice. A stolen voice still fading keeps the release
// for when its pending note starts.
func (v *Voice) noteOff(p *Params) {
	if v.hasPending {
		v.pending.released = true
		return
	}
	if v.state != VoicePlaying {
		return
	}
	v.state = VoiceReleasing
	v.amp.Release()
	if p.FilterEnvelopeCoupling.ReleaseOnNoteOff {
		v.filterEnv.Release()
	}
	if p.PitchEnvelopeCoupling.ReleaseOnNoteOff {
		v.pitchEnv.Release()
	}
}

// fadeOut releases the voice over StealFadeFrames, dropping any pending
// note.
func (v *Voice) fadeOut() {
	v.hasPending = false
	v.state = VoiceReleasing
	v.amp.FastRelease(StealFadeFrames)
}

// kill silences the voice immediately and returns it to the pool.
func (v *Voice) kill() {
	v.state = VoiceFree
	v.hasPending = false
	v.amp.Reset()
	v.filterEnv.Reset()
	v.pitchEnv.Reset()
	v.filterL.Reset()
	v.filterR.Reset()
}

func (v *Voice) applyParams(p *Params) {
	if v.params == p {
		return
	}
	v.params = p
	v.amp.SetParams(p.ampEnvelope())
	v.filterEnv.SetParams(p.filterEnvelope())
	v.pitchEnv.SetParams(p.pitchEnvelope())
	v.pitchEnv.Scale = p.PitchEnvelopeSemitones
	v.vibrato.SetRate(float64(p.VoiceVibratoFrequency))
}

func (v *Voice) setRegionGain(r *SampleRegion, velocity int, p *Params) {
	vel := float32(velocity) / 127
	sens := p.VelocitySensitivity
	v.gain = r.Gain * (1 - sens + sens*vel)
	fevs := p.FilterEnvelopeVelocityScaling
	v.velScale = 1 - fevs + fevs*vel
	v.panL, v.panR = equalPowerPan(r.Pan)
}

func (v *Voice) setPitch(r *SampleRegion, hz float64, p *Params, glideFrom float64) {
	ratio := hz * math.Pow(2, float64(r.Detune)/1200) / r.RootFrequency
	ratio *= r.SampleRate / float64(v.sampleRate)
	v.targetLog2 = math.Log2(ratio)

	if p.GlideRate > 0 && !math.IsNaN(glideFrom) && glideFrom != v.targetLog2 {
		octaves := math.Abs(v.targetLog2 - glideFrom)
		tau := float64(p.GlideRate) * octaves * float64(v.sampleRate)
		v.curLog2 = glideFrom
		v.glideCoef = math.Exp(-1 / tau)
	} else {
		v.curLog2 = v.targetLog2
		v.glideCoef = 0
	}
	v.baseInc = math.Exp2(v.curLog2)
}

// pitchLog2 is the current pitch before per-frame modulation.
func (v *Voice) pitchLog2() float64 {
	return v.curLog2
}

// render mixes nFrames into left/right. The voice frees itself when its
// amplitude envelope finishes or its output turns non-finite.
func (v *Voice) render(left, right []float32, mod modulation, p *Params) {
	v.applyParams(p)
	interp := v.linear
	if p.CubicInterpolation {
		interp = v.cubic
	}

	for i := range left {
		if v.amp.Finished() {
			if !v.hasPending {
				v.state = VoiceFree
				return
			}
			v.startPending(p)
		}
		r := v.region

		if v.glideCoef != 0 {
			v.curLog2 = v.targetLog2 + (v.curLog2-v.targetLog2)*v.glideCoef
			if math.Abs(v.curLog2-v.targetLog2) < 1e-6 {
				v.curLog2 = v.targetLog2
				v.glideCoef = 0
			}
			v.baseInc = math.Exp2(v.curLog2)
		}

		semis := mod.pitch[i] + v.pitchEnv.Next()
		if p.VoiceVibratoDepth > 0 {
			semis += v.vibrato.Next() * p.VoiceVibratoDepth
		} else {
			v.vibrato.Next()
		}
		inc := v.baseInc * float64(semitonesToRatio(semis))

		looping := r.Looping && (v.state == VoicePlaying || p.LoopThruRelease)
		idx := int(v.pos)
		frac := float32(v.pos - float64(idx))
		sL := v.read(r.Data[0], idx, frac, looping, interp)
		sR := sL
		if len(r.Data) > 1 {
			sR = v.read(r.Data[1], idx, frac, looping, interp)
		}

		fenv := v.filterEnv.Next()
		if p.FilterEnable {
			if v.filterCountdown <= 0 {
				v.updateFilter(fenv, mod.filter[i], p)
				v.filterCountdown = filterControlInterval
			}
			v.filterCountdown--
			sL = v.filterL.Process(sL)
			sR = v.filterR.Process(sR)
		}

		g := v.amp.Next() * v.gain * mod.gain[i]
		outL := sL * g * v.panL
		outR := sR * g * v.panR
		if !isFinite(outL) || !isFinite(outR) {
			v.kill()
			return
		}
		left[i] += outL
		right[i] += outR

		if !v.advance(inc, r, looping) {
			if v.hasPending {
				v.amp.Reset()
				continue
			}
			v.kill()
			return
		}
	}
}

// advance moves the cursor and reports false once the voice has run out of
// sample data. A looping region released without loop-thru-release holds
// the cursor at LoopEnd while the amplitude envelope finishes.
func (v *Voice) advance(inc float64, r *SampleRegion, looping bool) bool {
	v.pos += inc
	if looping {
		if v.pos >= r.LoopEnd {
			span := r.LoopEnd - r.LoopStart
			v.pos = r.LoopStart + math.Mod(v.pos-r.LoopStart, span)
		}
		return true
	}
	if r.Looping && v.state == VoiceReleasing {
		if v.pos >= r.LoopEnd {
			v.pos = r.LoopEnd
		}
		return true
	}
	if v.pos >= r.EndPoint {
		v.pos = r.EndPoint
		return false
	}
	return true
}

func (v *Voice) read(data []float32, idx int, frac float32, looping bool, interp *dsp.LagrangeInterpolator) float32 {
	s1 := v.frameAt(data, idx, looping)
	s2 := v.frameAt(data, idx+1, looping)
	if interp.Order() == 1 {
		return interp.Interpolate(s1, s1, s2, s2, frac)
	}
	s0 := v.frameAt(data, idx-1, looping)
	s3 := v.frameAt(data, idx+2, looping)
	return interp.Interpolate(s0, s1, s2, s3, frac)
}

func (v *Voice) frameAt(data []float32, idx int, looping bool) float32 {
	r := v.region
	if looping {
		ls, le := int(r.LoopStart), int(r.LoopEnd)
		if idx >= le && le > ls {
			idx = ls + (idx-le)%(le-ls)
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(data) {
		idx = len(data) - 1
	}
	return data[idx]
}

func (v *Voice) updateFilter(fenv, lfoOctaves float32, p *Params) {
	octaves := float64(v.note-60)*float64(p.KeyTrackingFraction)/12 + float64(lfoOctaves)
	cutoff := float64(p.FilterCutoff) * math.Exp2(octaves)
	cutoff *= 1 + float64(p.FilterStrength*fenv*v.velScale)
	nyq := 0.45 * float64(v.sampleRate)
	if cutoff > nyq {
		cutoff = nyq
	}
	if cutoff < 20 {
		cutoff = 20
	}
	q := float32(butterworthQ * dbToGain(float64(p.FilterResonance)))
	v.filterL.SetLowpass(float32(cutoff), float32(v.sampleRate), q)
	v.filterR.SetLowpass(float32(cutoff), float32(v.sampleRate), q)
}

func (v *Voice) startPending(p *Params) {
	pn := v.pending
	v.hasPending = false
	v.start(pn.region, v.note, pn.velocity, v.channel, v.stamp, pn.hz, p, math.NaN())
	if pn.released {
		v.noteOff(p)
	}
}
