package sampler

// EnvelopeCoupling decides how a filter or pitch envelope follows note events
// relative to the amplitude envelope.
type EnvelopeCoupling struct {
	// RetriggerOnLegato restarts the envelope on a legato note change even
	// though the amplitude envelope keeps running.
	RetriggerOnLegato bool
	// ReleaseOnNoteOff releases the envelope together with the amplitude
	// envelope. When false it holds its sustain level until the voice ends.
	ReleaseOnNoteOff bool
}

// Params holds the global engine parameters. Updates go through
// Engine.SetParams or Engine.SetParameter, which clamp to the descriptor
// ranges.
type Params struct {
	OverallGainDB float32
	Pan           float32
	MasterVolume  float32

	PitchBend      float32 // semitones
	PitchBendRange float32 // semitones covered by a full MIDI pitch-bend message

	VibratoDepth          float32 // semitones, global oscillator
	VibratoFrequency      float32
	VoiceVibratoDepth     float32 // semitones, per-voice oscillator
	VoiceVibratoFrequency float32
	RestartVoiceLFO       bool

	FilterEnable                  bool
	FilterCutoff                  float32 // Hz at note 60
	FilterStrength                float32 // cutoff multiplier at full filter envelope
	FilterResonance               float32 // dB
	KeyTrackingFraction           float32
	FilterEnvelopeVelocityScaling float32

	GlideRate float32 // seconds per octave

	AttackDuration  float32
	HoldDuration    float32
	DecayDuration   float32
	SustainLevel    float32
	ReleaseDuration float32

	// ReleaseHoldDuration keeps the level after note-off before the
	// release segment starts.
	ReleaseHoldDuration float32

	FilterAttackDuration  float32
	FilterDecayDuration   float32
	FilterSustainLevel    float32
	FilterReleaseDuration float32

	PitchAttackDuration    float32
	PitchDecayDuration     float32
	PitchSustainLevel      float32
	PitchReleaseDuration   float32
	PitchEnvelopeSemitones float32

	FilterEnvelopeCoupling EnvelopeCoupling
	PitchEnvelopeCoupling  EnvelopeCoupling

	LoopThruRelease bool
	IsMonophonic    bool
	IsLegato        bool

	LFORate         float32
	LFODepth        float32
	LFOTargetPitch  bool
	LFOTargetGain   bool
	LFOTargetFilter bool

	VelocitySensitivity float32
	CubicInterpolation  bool
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	p := &Params{}
	for _, d := range descriptors {
		d.set(p, d.Default)
	}
	return p
}

// Clone returns a copy of p.
func (p *Params) Clone() *Params {
	c := *p
	return &c
}

// Clamp forces every field into its declared range.
func (p *Params) Clamp() {
	for _, d := range descriptors {
		d.set(p, d.clamp(d.get(p)))
	}
}

// Set writes one parameter, clamping to its range. Unknown ids are ignored.
func (p *Params) Set(id ParamID, value float64) bool {
	d, ok := DescriptorFor(id)
	if !ok {
		return false
	}
	d.set(p, d.clamp(value))
	return true
}

// Get reads one parameter.
func (p *Params) Get(id ParamID) (float64, bool) {
	d, ok := DescriptorFor(id)
	if !ok {
		return 0, false
	}
	return d.get(p), true
}

func (p *Params) ampEnvelope() EnvelopeParams {
	return EnvelopeParams{
		Attack:      p.AttackDuration,
		Hold:        p.HoldDuration,
		Decay:       p.DecayDuration,
		Sustain:     p.SustainLevel,
		Release:     p.ReleaseDuration,
		ReleaseHold: p.ReleaseHoldDuration,
	}
}

func (p *Params) filterEnvelope() EnvelopeParams {
	return EnvelopeParams{
		Attack:  p.FilterAttackDuration,
		Decay:   p.FilterDecayDuration,
		Sustain: p.FilterSustainLevel,
		Release: p.FilterReleaseDuration,
	}
}

func (p *Params) pitchEnvelope() EnvelopeParams {
	return EnvelopeParams{
		Attack:  p.PitchAttackDuration,
		Decay:   p.PitchDecayDuration,
		Sustain: p.PitchSustainLevel,
		Release: p.PitchReleaseDuration,
	}
}
