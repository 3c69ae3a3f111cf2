package sampler

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/GeoffreyPlitt/debuggo"
)

var engineDebug = debuggo.Debug("sampler:engine")

const (
	// DefaultMaxPolyphony is the voice pool size used when none is given.
	DefaultMaxPolyphony = 64
	// MaxBlockFrames is the largest block rendered in one pass; longer
	// requests are split.
	MaxBlockFrames = 4096
)

// keyMapSnapshot is the immutable region set and map the render actor reads.
type keyMapSnapshot struct {
	keymap *KeyMap
}

// Engine is a polyphonic sample player. Control methods may be called from
// any goroutine; the Render methods belong to a single render goroutine and
// never block or allocate.
type Engine struct {
	sampleRate int

	store  *SampleStore
	keymap atomic.Pointer[keyMapSnapshot]
	tuning atomic.Pointer[[128]float64]

	params   atomic.Pointer[Params]
	paramsMu sync.Mutex

	events  eventQueue
	silence atomic.Bool
	active  atomic.Int32

	// render actor state
	voices   []Voice
	stamp    uint64
	pedal    pedalLogic
	bend     float32
	vibrato  LFO
	lfo      LFO
	resolved []RegionID

	modPitch  []float32
	modGain   []float32
	modFilter []float32
	left      []float32
	right     []float32
}

// NewEngine creates an engine with a fixed voice pool. maxPolyphony <= 0
// selects DefaultMaxPolyphony; params nil selects NewDefaultParams.
func NewEngine(sampleRate int, maxPolyphony int, params *Params) *Engine {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	if maxPolyphony <= 0 {
		maxPolyphony = DefaultMaxPolyphony
	}
	if params == nil {
		params = NewDefaultParams()
	}

	e := &Engine{
		sampleRate: sampleRate,
		store:      NewSampleStore(),
		voices:     make([]Voice, maxPolyphony),
		resolved:   make([]RegionID, 0, 128),
		modPitch:   make([]float32, MaxBlockFrames),
		modGain:    make([]float32, MaxBlockFrames),
		modFilter:  make([]float32, MaxBlockFrames),
		left:       make([]float32, MaxBlockFrames),
		right:      make([]float32, MaxBlockFrames),
	}
	for i := range e.voices {
		e.voices[i] = *newVoice(sampleRate, i)
	}
	e.vibrato = *NewLFO(sampleRate, 5)
	e.lfo = *NewLFO(sampleRate, 5)

	var tuning [128]float64
	for n := range tuning {
		tuning[n] = NoteHz(n)
	}
	e.tuning.Store(&tuning)
	e.keymap.Store(&keyMapSnapshot{keymap: BuildKeyMap(nil, PolicyExactRange)})
	e.SetParams(params)

	engineDebug("new engine sr=%d voices=%d", sampleRate, maxPolyphony)
	return e
}

// SampleRate reports the render sample rate.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// MaxPolyphony reports the voice pool size.
func (e *Engine) MaxPolyphony() int {
	return len(e.voices)
}

// Store exposes the sample store.
func (e *Engine) Store() *SampleStore {
	return e.store
}

// LoadRegion adds a planar region to the store. It becomes audible after the
// next BuildKeyMap.
func (e *Engine) LoadRegion(data [][]float32, sampleRate float64, desc SampleDescriptor) (RegionID, error) {
	return e.store.AddRegion(data, sampleRate, desc)
}

// LoadInterleavedRegion adds an interleaved region to the store.
func (e *Engine) LoadInterleavedRegion(data []float32, channels int, sampleRate float64, desc SampleDescriptor) (RegionID, error) {
	return e.store.AddInterleaved(data, channels, sampleRate, desc)
}

// LoadEncodedRegion decodes and adds a region to the store.
func (e *Engine) LoadEncodedRegion(encoded []byte, desc SampleDescriptor, dec Decoder) (RegionID, error) {
	return e.store.AddEncoded(encoded, desc, dec)
}

// ClearRegions empties the store. Voices already sounding keep their regions;
// the current map stays active until the next BuildKeyMap.
func (e *Engine) ClearRegions() {
	e.store.Clear()
}

// BuildKeyMap snapshots the store and swaps in a new map for the next block.
func (e *Engine) BuildKeyMap(policy KeyMapPolicy) {
	regions := e.store.Snapshot()
	e.keymap.Store(&keyMapSnapshot{keymap: BuildKeyMap(regions, policy)})
	engineDebug("built %s key map over %d regions", policy, len(regions))
}

// KeyMap returns the map currently used for note-on resolution.
func (e *Engine) KeyMap() *KeyMap {
	return e.keymap.Load().keymap
}

// SetNoteFrequency retunes one note. Sounding voices keep their pitch.
func (e *Engine) SetNoteFrequency(note int, hz float64) {
	if note < 0 || note > 127 || !(hz > 0) {
		return
	}
	e.paramsMu.Lock()
	defer e.paramsMu.Unlock()
	next := *e.tuning.Load()
	next[note] = hz
	e.tuning.Store(&next)
}

// NoteFrequency reports the tuned frequency of note.
func (e *Engine) NoteFrequency(note int) float64 {
	if note < 0 || note > 127 {
		return 0
	}
	return e.tuning.Load()[note]
}

// SetParams replaces the global parameters. Values are clamped.
func (e *Engine) SetParams(p *Params) {
	next := p.Clone()
	next.Clamp()
	e.paramsMu.Lock()
	e.params.Store(next)
	e.paramsMu.Unlock()
}

// Params returns a copy of the current parameters.
func (e *Engine) Params() *Params {
	return e.params.Load().Clone()
}

// SetParameter sets one parameter, clamped to its range.
func (e *Engine) SetParameter(id ParamID, value float64) bool {
	e.paramsMu.Lock()
	defer e.paramsMu.Unlock()
	next := e.params.Load().Clone()
	if !next.Set(id, value) {
		return false
	}
	e.params.Store(next)
	return true
}

// Parameter reads one parameter.
func (e *Engine) Parameter(id ParamID) (float64, bool) {
	return e.params.Load().Get(id)
}

// Send queues an event for the next render block. It returns false when the
// queue is full.
func (e *Engine) Send(ev Event) bool {
	if !e.events.push(ev) {
		engineDebug("event queue full, dropped %s", ev.Kind)
		return false
	}
	return true
}

// HandleMIDI decodes and queues a raw MIDI message.
func (e *Engine) HandleMIDI(msg []byte) bool {
	ev, ok := FromMIDI(msg)
	if !ok {
		return false
	}
	return e.Send(ev)
}

// NoteOn queues a note-on.
func (e *Engine) NoteOn(note, velocity, channel int) bool {
	return e.Send(NoteOnEvent(note, velocity, channel))
}

// NoteOff queues a note-off.
func (e *Engine) NoteOff(note, channel int) bool {
	return e.Send(NoteOffEvent(note, channel))
}

// SustainPedal queues a sustain pedal change.
func (e *Engine) SustainPedal(down bool) bool {
	value := 0
	if down {
		value = 127
	}
	return e.Send(ControlChangeEvent(CCSustainPedal, value, 0))
}

// PitchBend queues a pitch bend in [-1,1], scaled by Params.PitchBendRange.
func (e *Engine) PitchBend(bend float32) bool {
	return e.Send(PitchBendEvent(bend, 0))
}

// AllNotesOff silences every voice at the start of the next block, bypassing
// release. It cannot be lost to a full queue.
func (e *Engine) AllNotesOff() {
	e.silence.Store(true)
	e.Send(ControlChangeEvent(CCAllNotesOff, 0, 0))
}

// ActiveVoices reports how many voices were sounding at the end of the last
// rendered block. It is safe to call from any goroutine.
func (e *Engine) ActiveVoices() int {
	return int(e.active.Load())
}

// Process renders numFrames and returns stereo interleaved samples. It
// allocates and is meant for offline tools.
func (e *Engine) Process(numFrames int) []float32 {
	if numFrames <= 0 {
		return nil
	}
	out := make([]float32, numFrames*2)
	e.RenderInto(out)
	return out
}

// RenderInto fills out with stereo interleaved samples.
func (e *Engine) RenderInto(out []float32) {
	frames := len(out) / 2
	for off := 0; off < frames; off += MaxBlockFrames {
		n := min(MaxBlockFrames, frames-off)
		e.renderBlock(e.left[:n], e.right[:n])
		for i := 0; i < n; i++ {
			out[(off+i)*2] = e.left[i]
			out[(off+i)*2+1] = e.right[i]
		}
	}
}

// RenderPlanar fills left and right; the shorter length wins.
func (e *Engine) RenderPlanar(left, right []float32) {
	frames := min(len(left), len(right))
	for off := 0; off < frames; off += MaxBlockFrames {
		n := min(MaxBlockFrames, frames-off)
		e.renderBlock(left[off:off+n], right[off:off+n])
	}
}

func (e *Engine) renderBlock(left, right []float32) {
	n := len(left)
	p := e.params.Load()
	km := e.keymap.Load().keymap

	if e.silence.Swap(false) {
		e.killAll()
	}
	for {
		ev, ok := e.events.pop()
		if !ok {
			break
		}
		e.dispatch(ev, p, km)
	}

	clear(left)
	clear(right)
	mod := e.computeModulation(n, p)

	active := int32(0)
	for i := range e.voices {
		v := &e.voices[i]
		if v.state != VoiceFree {
			v.render(left, right, mod, p)
		}
		if v.state != VoiceFree {
			active++
		}
	}
	e.active.Store(active)

	gain := float32(dbToGain(float64(p.OverallGainDB))) * p.MasterVolume
	panL, panR := balancePan(p.Pan)
	gl, gr := gain*panL, gain*panR
	for i := 0; i < n; i++ {
		left[i] *= gl
		right[i] *= gr
	}
}

func (e *Engine) computeModulation(n int, p *Params) modulation {
	e.vibrato.SetRate(float64(p.VibratoFrequency))
	e.lfo.SetRate(float64(p.LFORate))
	bend := p.PitchBend + e.bend*p.PitchBendRange

	for i := 0; i < n; i++ {
		pitch := bend
		if p.VibratoDepth > 0 {
			pitch += e.vibrato.Next() * p.VibratoDepth
		} else {
			e.vibrato.Next()
		}
		gain := float32(1)
		filter := float32(0)
		l := e.lfo.Next() * p.LFODepth
		if p.LFOTargetPitch {
			pitch += 12 * l
		}
		if p.LFOTargetGain {
			gain = maxf(0, 1+l)
		}
		if p.LFOTargetFilter {
			filter = 2 * l
		}
		e.modPitch[i] = pitch
		e.modGain[i] = gain
		e.modFilter[i] = filter
	}
	return modulation{pitch: e.modPitch[:n], gain: e.modGain[:n], filter: e.modFilter[:n]}
}

// dispatch applies one event on the render actor.
func (e *Engine) dispatch(ev Event, p *Params, km *KeyMap) {
	ch, key := int(ev.Channel), int(ev.Key)
	switch ev.Kind {
	case EventNoteOn:
		if ev.Value == 0 {
			e.noteOff(key, ch, p, km)
			return
		}
		e.noteOn(key, int(ev.Value), ch, p, km)
	case EventNoteOff:
		e.noteOff(key, ch, p, km)
	case EventControlChange:
		switch key {
		case CCSustainPedal:
			e.sustain(ev.Value >= 64, p, km)
		case CCAllSoundOff, CCAllNotesOff:
			e.killAll()
		}
	case EventPitchBend:
		e.bend = ev.Bend
	}
}

func (e *Engine) noteOn(note, velocity, ch int, p *Params, km *KeyMap) {
	stopFirst := e.pedal.keyPress(ch, note, velocity)
	if p.IsMonophonic {
		e.monoNoteOn(note, velocity, ch, p, km)
		return
	}
	if stopFirst {
		e.releaseNote(note, ch, p)
	}
	e.resolved = km.ResolveInto(e.resolved, note, velocity)
	hz := e.tuning.Load()[note]
	for _, id := range e.resolved {
		r := km.Region(id)
		e.stamp++
		v, stolen := e.allocate()
		if stolen {
			v.steal(r, note, velocity, ch, e.stamp, hz)
			continue
		}
		v.start(r, note, velocity, ch, e.stamp, hz, p, math.NaN())
	}
}

func (e *Engine) noteOff(note, ch int, p *Params, km *KeyMap) {
	if !validKey(ch, note) {
		return
	}
	if !e.pedal.keyRelease(ch, note) {
		return
	}
	if p.IsMonophonic {
		e.monoNoteOff(note, ch, p, km)
		return
	}
	e.releaseNote(note, ch, p)
}

func (e *Engine) sustain(down bool, p *Params, km *KeyMap) {
	if down {
		e.pedal.pedalDown()
		return
	}
	if !e.pedal.down {
		return
	}
	for ch := 0; ch < midiChannels; ch++ {
		for note := 0; note < 128; note++ {
			if !e.pedal.isSustaining(ch, note) {
				continue
			}
			if p.IsMonophonic {
				e.monoNoteOff(note, ch, p, km)
			} else {
				e.releaseNote(note, ch, p)
			}
		}
	}
	e.pedal.pedalUp()
}

// releaseNote releases every playing voice on note/channel.
func (e *Engine) releaseNote(note, ch int, p *Params) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoicePlaying && v.note == note && v.channel == ch {
			v.noteOff(p)
		}
	}
}

// killAll forces every voice to idle and forgets held keys.
func (e *Engine) killAll() {
	for i := range e.voices {
		e.voices[i].kill()
	}
	e.pedal.reset()
	engineDebug("all notes off")
}
