package sampler

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestFromMIDIDecodesChannelVoiceMessages(t *testing.T) {
	cases := []struct {
		name string
		msg  []byte
		want Event
	}{
		{"note on", midi.NoteOn(3, 60, 100), Event{Kind: EventNoteOn, Channel: 3, Key: 60, Value: 100}},
		{"note off", midi.NoteOff(1, 64), Event{Kind: EventNoteOff, Channel: 1, Key: 64}},
		{"note on velocity zero", midi.NoteOn(0, 62, 0), Event{Kind: EventNoteOff, Channel: 0, Key: 62}},
		{"sustain", midi.ControlChange(0, CCSustainPedal, 127), Event{Kind: EventControlChange, Key: CCSustainPedal, Value: 127}},
		{"pitch bend up", []byte{0xE0, 0x7F, 0x7F}, Event{Kind: EventPitchBend, Bend: 8191.0 / 8192}},
		{"pitch bend centre", []byte{0xE2, 0x00, 0x40}, Event{Kind: EventPitchBend, Channel: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FromMIDI(tc.msg)
			if !ok {
				t.Fatalf("message %x not decoded", tc.msg)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestFromMIDIIgnoresUnsupportedMessages(t *testing.T) {
	if _, ok := FromMIDI([]byte{0xC0, 5}); ok {
		t.Fatalf("program change should not decode")
	}
	if _, ok := FromMIDI(nil); ok {
		t.Fatalf("empty message should not decode")
	}
}

func TestEventConstructorsMaskRanges(t *testing.T) {
	ev := NoteOnEvent(200, 300, 20)
	if ev.Key > 127 || ev.Value > 127 || ev.Channel > 15 {
		t.Fatalf("values not masked: %+v", ev)
	}
	if b := PitchBendEvent(3, 0); b.Bend != 1 {
		t.Fatalf("bend not clamped: %f", b.Bend)
	}
}

func TestEventQueueFIFO(t *testing.T) {
	var q eventQueue
	for i := 0; i < 10; i++ {
		if !q.push(NoteOnEvent(i, 100, 0)) {
			t.Fatalf("push %d failed", i)
		}
	}
	if q.len() != 10 {
		t.Fatalf("len = %d", q.len())
	}
	for i := 0; i < 10; i++ {
		ev, ok := q.pop()
		if !ok || int(ev.Key) != i {
			t.Fatalf("pop %d: got %+v %v", i, ev, ok)
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatalf("queue should be empty")
	}
}

func TestEventQueueWrapsAround(t *testing.T) {
	var q eventQueue
	for round := 0; round < 3; round++ {
		for i := 0; i < eventQueueSize; i++ {
			if !q.push(ControlChangeEvent(1, i&0x7f, 0)) {
				t.Fatalf("round %d push %d failed", round, i)
			}
		}
		if q.push(ControlChangeEvent(1, 0, 0)) {
			t.Fatalf("full queue accepted an event")
		}
		for i := 0; i < eventQueueSize; i++ {
			if _, ok := q.pop(); !ok {
				t.Fatalf("round %d pop %d failed", round, i)
			}
		}
	}
}
