package sampler

import "math"

// allocate picks a voice for a new polyphonic note: a free voice if any,
// else the oldest releasing voice, else the oldest voice overall. stolen
// reports whether the voice was still sounding.
func (e *Engine) allocate() (v *Voice, stolen bool) {
	for i := range e.voices {
		if e.voices[i].state == VoiceFree {
			return &e.voices[i], false
		}
	}

	var oldestReleasing, oldest *Voice
	for i := range e.voices {
		c := &e.voices[i]
		if c.state == VoiceReleasing && !c.hasPending {
			if oldestReleasing == nil || c.stamp < oldestReleasing.stamp {
				oldestReleasing = c
			}
		}
		if oldest == nil || c.stamp < oldest.stamp {
			oldest = c
		}
	}
	if oldestReleasing != nil {
		return oldestReleasing, true
	}
	return oldest, true
}

// monoNoteOn plays note on voice 0 and fades out any voice left over from
// polyphonic mode. Legato mode slides a playing voice to the new pitch;
// otherwise the envelopes retrigger from their current level.
func (e *Engine) monoNoteOn(note, velocity, ch int, p *Params, km *KeyMap) {
	e.resolved = km.ResolveInto(e.resolved, note, velocity)
	if len(e.resolved) == 0 {
		return
	}
	r := km.Region(e.resolved[0])
	hz := e.tuning.Load()[note]
	v := &e.voices[0]
	for i := 1; i < len(e.voices); i++ {
		if o := &e.voices[i]; o.state != VoiceFree {
			o.fadeOut()
		}
	}

	if p.IsLegato && v.state == VoicePlaying && !v.hasPending {
		v.legato(note, velocity, ch, hz, p)
		return
	}

	glideFrom := math.NaN()
	if v.state != VoiceFree && !v.hasPending {
		glideFrom = v.pitchLog2()
	}
	e.stamp++
	v.start(r, note, velocity, ch, e.stamp, hz, p, glideFrom)
}

// monoNoteOff releases the mono voice when it plays note/channel. If another
// key is still held the voice returns to the most recently pressed one.
func (e *Engine) monoNoteOff(note, ch int, p *Params, km *KeyMap) {
	v := &e.voices[0]
	if v.state == VoiceFree || v.note != note || v.channel != ch {
		return
	}
	if heldCh, heldNote, heldVel, ok := e.pedal.lastHeld(); ok {
		e.monoNoteOn(heldNote, heldVel, heldCh, p, km)
		return
	}
	v.noteOff(p)
}
