package sampler

const midiChannels = 16

// pedalLogic tracks held keys and the sustain pedal so note-offs can be
// deferred while the pedal is down. It also remembers key order for
// last-note priority in monophonic mode.
type pedalLogic struct {
	down     bool
	keyDown  [midiChannels][128]bool
	sounding [midiChannels][128]bool
	velocity [midiChannels][128]uint8
	order    [midiChannels][128]uint64
	counter  uint64
}

// keyPress records a pressed key. It reports true when the same note is still
// sounding under the pedal and should be released before playing again.
func (k *pedalLogic) keyPress(ch, note, velocity int) bool {
	if !validKey(ch, note) {
		return false
	}
	stopFirst := k.down && !k.keyDown[ch][note] && k.sounding[ch][note]
	k.counter++
	k.keyDown[ch][note] = true
	k.sounding[ch][note] = true
	k.velocity[ch][note] = uint8(velocity)
	k.order[ch][note] = k.counter
	return stopFirst
}

// keyRelease records a released key and reports whether the note should stop
// now; with the pedal down it keeps sounding.
func (k *pedalLogic) keyRelease(ch, note int) bool {
	if !validKey(ch, note) {
		return false
	}
	k.keyDown[ch][note] = false
	if k.down {
		return false
	}
	k.sounding[ch][note] = false
	return true
}

func (k *pedalLogic) pedalDown() {
	k.down = true
}

// pedalUp lifts the pedal. Callers release every sustaining note first.
func (k *pedalLogic) pedalUp() {
	for ch := range k.sounding {
		for note := range k.sounding[ch] {
			if !k.keyDown[ch][note] {
				k.sounding[ch][note] = false
			}
		}
	}
	k.down = false
}

func (k *pedalLogic) isSustaining(ch, note int) bool {
	return k.sounding[ch][note] && !k.keyDown[ch][note]
}

// lastHeld returns the most recently pressed key still held on any channel.
func (k *pedalLogic) lastHeld() (ch, note, velocity int, ok bool) {
	var best uint64
	for c := range k.keyDown {
		for n := range k.keyDown[c] {
			if k.keyDown[c][n] && k.order[c][n] > best {
				best = k.order[c][n]
				ch, note, velocity, ok = c, n, int(k.velocity[c][n]), true
			}
		}
	}
	return ch, note, velocity, ok
}

func (k *pedalLogic) reset() {
	*k = pedalLogic{}
}

func validKey(ch, note int) bool {
	return ch >= 0 && ch < midiChannels && note >= 0 && note < 128
}
