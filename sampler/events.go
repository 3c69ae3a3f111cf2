package sampler

import (
	"gitlab.com/gomidi/midi/v2"
)

// EventKind tags an Event.
type EventKind uint8

const (
	EventNoteOn EventKind = iota + 1
	EventNoteOff
	EventControlChange
	EventPitchBend
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventControlChange:
		return "control-change"
	case EventPitchBend:
		return "pitch-bend"
	default:
		return "invalid"
	}
}

// Controller numbers with engine-level meaning.
const (
	CCSustainPedal = 64
	CCAllSoundOff  = 120
	CCAllNotesOff  = 123
)

// Event is one transport event consumed by the render actor.
type Event struct {
	Kind    EventKind
	Channel uint8
	Key     uint8 // note number or controller number
	Value   uint8 // velocity or controller value
	Bend    float32
}

// NoteOnEvent builds a note-on. Velocity 0 is treated as note-off when dispatched.
func NoteOnEvent(note, velocity, channel int) Event {
	return Event{Kind: EventNoteOn, Channel: uint8(channel & 0x0f), Key: uint8(note & 0x7f), Value: uint8(velocity & 0x7f)}
}

// NoteOffEvent builds a note-off.
func NoteOffEvent(note, channel int) Event {
	return Event{Kind: EventNoteOff, Channel: uint8(channel & 0x0f), Key: uint8(note & 0x7f)}
}

// ControlChangeEvent builds a controller event.
func ControlChangeEvent(controller, value, channel int) Event {
	return Event{Kind: EventControlChange, Channel: uint8(channel & 0x0f), Key: uint8(controller & 0x7f), Value: uint8(value & 0x7f)}
}

// PitchBendEvent builds a pitch-bend with bend in [-1,1].
func PitchBendEvent(bend float32, channel int) Event {
	return Event{Kind: EventPitchBend, Channel: uint8(channel & 0x0f), Bend: clampf(bend, -1, 1)}
}

// FromMIDI decodes a raw channel-voice message. Unsupported messages return false.
func FromMIDI(msg []byte) (Event, bool) {
	m := midi.Message(msg)
	var ch, key, vel, ctl, val uint8
	var rel int16
	var abs uint16
	switch {
	case m.GetNoteStart(&ch, &key, &vel):
		return Event{Kind: EventNoteOn, Channel: ch, Key: key, Value: vel}, true
	case m.GetNoteEnd(&ch, &key):
		return Event{Kind: EventNoteOff, Channel: ch, Key: key}, true
	case m.GetControlChange(&ch, &ctl, &val):
		return Event{Kind: EventControlChange, Channel: ch, Key: ctl, Value: val}, true
	case m.GetPitchBend(&ch, &rel, &abs):
		return Event{Kind: EventPitchBend, Channel: ch, Bend: clampf(float32(rel)/8192, -1, 1)}, true
	}
	return Event{}, false
}
