package midifile

import (
	"bytes"
	"testing"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want []byte
	}{
		{"note on", NoteOn{Channel: 1, Key: 0x3C, Velocity: 0x40}, []byte{0x91, 0x3C, 0x40}},
		{"note off keeps velocity", NoteOff{Channel: 0, Key: 0x3C, Velocity: 0x20}, []byte{0x80, 0x3C, 0x20}},
		{"poly aftertouch", PolyphonicAftertouch{Channel: 2, Key: 60, Pressure: 5}, []byte{0xA2, 60, 5}},
		{"control change", ControlChange{Channel: 15, Controller: 7, Value: 100}, []byte{0xBF, 7, 100}},
		{"program change", ProgramChange{Channel: 9, Program: 0}, []byte{0xC9, 0}},
		{"channel aftertouch", ChannelAftertouch{Channel: 3, Pressure: 64}, []byte{0xD3, 64}},
		{"pitch bend center", PitchBend{Channel: 0, Value: PitchBendCenter, High7: 0x40}, []byte{0xE0, 0x00, 0x40}},
		{"pitch bend max", PitchBend{Channel: 4, Value: 0x3FFF, Low7: 0x7F, High7: 0x7F}, []byte{0xE4, 0x7F, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Message(tt.ev)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Message(%+v) = % X, want % X", tt.ev, []byte(got), tt.want)
			}
		})
	}
}

func TestMessage_NonChannelEvents(t *testing.T) {
	for _, ev := range []Event{
		Tempo{MicrosecondsPerQuarterNote: 500000},
		SeqName{Text: "x"},
		Unhandled{Status: 0xF0},
	} {
		if got := Message(ev); got != nil {
			t.Errorf("Message(%T) = % X, want nil", ev, []byte(got))
		}
	}
}

func TestWithTextEncoding(t *testing.T) {
	enc, err := LookupEncoding("windows-1252")
	if err != nil {
		t.Fatalf("LookupEncoding failed: %v", err)
	}
	data := buildFile(96, track(ev(0, 0xFF, 0x03, 0x04, 'C', 'a', 'f', 0xE9)))

	r, err := NewReader(data, WithTextEncoding(enc))
	if err != nil {
		t.Fatal(err)
	}
	drain(t, r)
	if r.SongName() != "Café" {
		t.Errorf("song name = %q, want Café", r.SongName())
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "auto", " AUTO "} {
		enc, err := LookupEncoding(name)
		if err != nil || enc != nil {
			t.Errorf("LookupEncoding(%q) = %v, %v; want nil, nil", name, enc, err)
		}
	}
	if enc, err := LookupEncoding("Shift_JIS"); err != nil || enc == nil {
		t.Errorf("LookupEncoding(Shift_JIS) = %v, %v", enc, err)
	}
	if _, err := LookupEncoding("klingon"); err == nil {
		t.Error("expected an error for an unknown label")
	}
}
