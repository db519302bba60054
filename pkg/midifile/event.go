package midifile

import "fmt"

// Kind identifies an event variant.
type Kind uint8

// Event kinds, one per variant.
const (
	KindUnhandled Kind = iota
	KindNoteOff
	KindNoteOn
	KindPolyphonicAftertouch
	KindControlChange
	KindProgramChange
	KindChannelAftertouch
	KindPitchBend
	KindText
	KindCopyright
	KindSeqName
	KindTempo
	KindTimeSignature
)

var kindNames = [...]string{
	KindUnhandled:            "Unhandled",
	KindNoteOff:              "NoteOff",
	KindNoteOn:               "NoteOn",
	KindPolyphonicAftertouch: "PolyphonicAftertouch",
	KindControlChange:        "ControlChange",
	KindProgramChange:        "ProgramChange",
	KindChannelAftertouch:    "ChannelAftertouch",
	KindPitchBend:            "PitchBend",
	KindText:                 "Text",
	KindCopyright:            "Copyright",
	KindSeqName:              "SeqName",
	KindTempo:                "Tempo",
	KindTimeSignature:        "TimeSignature",
}

// String returns the variant name, e.g. "NoteOn".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is one decoded track event. The set of implementations is closed:
// every variant is declared in this file.
type Event interface {
	Kind() Kind
	// Delta returns the ticks since the previous event on the same track.
	Delta() uint32
	// TrackIndex returns the index of the track that produced the event.
	TrackIndex() int
	sealed()
}

// ChannelEvent is implemented by the channel voice variants.
type ChannelEvent interface {
	Event
	// ChannelNo returns the channel (0-15) the event addresses.
	ChannelNo() uint8
}

// Base carries the fields shared by every event.
type Base struct {
	DeltaTime uint32
	Track     int
}

// Delta returns DeltaTime.
func (b Base) Delta() uint32 { return b.DeltaTime }

// TrackIndex returns Track.
func (b Base) TrackIndex() int { return b.Track }

func (Base) sealed() {}

// NoteOff releases Key on Channel.
type NoteOff struct {
	Base
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// NoteOn presses Key on Channel. A velocity of 0 is a release by
// convention, but the event keeps its NoteOn kind.
type NoteOn struct {
	Base
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// PolyphonicAftertouch is the pressure on one held key.
type PolyphonicAftertouch struct {
	Base
	Channel  uint8
	Key      uint8
	Pressure uint8
}

// ControlChange sets Controller to Value on Channel.
type ControlChange struct {
	Base
	Channel    uint8
	Controller uint8
	Value      uint8
}

// ProgramChange selects the instrument for Channel.
type ProgramChange struct {
	Base
	Channel uint8
	Program uint8
}

// ChannelAftertouch is the pressure applied to the whole channel.
type ChannelAftertouch struct {
	Base
	Channel  uint8
	Pressure uint8
}

// PitchBend carries the 14-bit wire value (0..16383, center 8192) along with
// the two raw data bytes it was built from.
type PitchBend struct {
	Base
	Channel uint8
	Value   uint16
	Low7    uint8
	High7   uint8
}

// Signed returns the bend relative to center (-8192..8191).
func (e PitchBend) Signed() int16 {
	return int16(e.Value) - PitchBendCenter
}

// Text is a text-like meta event (types 0x01 and 0x04 through 0x07).
type Text struct {
	Base
	MetaType uint8
	Text     string
}

// Copyright is the copyright notice meta event (type 0x02).
type Copyright struct {
	Base
	Text string
}

// SeqName is the sequence or track name meta event (type 0x03).
type SeqName struct {
	Base
	Text string
}

// Tempo is the set tempo meta event (type 0x51).
type Tempo struct {
	Base
	MicrosecondsPerQuarterNote uint32
}

// BPM converts the tempo to beats per minute.
func (e Tempo) BPM() float64 {
	if e.MicrosecondsPerQuarterNote == 0 {
		return 0
	}
	return 60_000_000 / float64(e.MicrosecondsPerQuarterNote)
}

// TimeSignature is the time signature meta event (type 0x58). Denominator
// holds the actual note value (4 for quarter notes), not the exponent.
type TimeSignature struct {
	Base
	Numerator   uint8
	Denominator uint8
}

// Unhandled stands in for system exclusive, escape, system common and
// unrecognised meta events. Only the timing is kept.
type Unhandled struct {
	Base
	Status   uint8 // leading status byte (0xFF for meta)
	MetaType uint8 // meta type when Status is 0xFF
}

func (NoteOff) Kind() Kind              { return KindNoteOff }
func (NoteOn) Kind() Kind               { return KindNoteOn }
func (PolyphonicAftertouch) Kind() Kind { return KindPolyphonicAftertouch }
func (ControlChange) Kind() Kind        { return KindControlChange }
func (ProgramChange) Kind() Kind        { return KindProgramChange }
func (ChannelAftertouch) Kind() Kind    { return KindChannelAftertouch }
func (PitchBend) Kind() Kind            { return KindPitchBend }
func (Text) Kind() Kind                 { return KindText }
func (Copyright) Kind() Kind            { return KindCopyright }
func (SeqName) Kind() Kind              { return KindSeqName }
func (Tempo) Kind() Kind                { return KindTempo }
func (TimeSignature) Kind() Kind        { return KindTimeSignature }
func (Unhandled) Kind() Kind            { return KindUnhandled }

func (e NoteOff) ChannelNo() uint8              { return e.Channel }
func (e NoteOn) ChannelNo() uint8               { return e.Channel }
func (e PolyphonicAftertouch) ChannelNo() uint8 { return e.Channel }
func (e ControlChange) ChannelNo() uint8        { return e.Channel }
func (e ProgramChange) ChannelNo() uint8        { return e.Channel }
func (e ChannelAftertouch) ChannelNo() uint8    { return e.Channel }
func (e PitchBend) ChannelNo() uint8            { return e.Channel }
