package midifile

import "maps"

const (
	// ChannelCount is the number of MIDI channels.
	ChannelCount = 16

	// KeyCount is the number of keys per channel.
	KeyCount = 128

	// PitchBendCenter is the 14-bit wire value meaning "no bend".
	PitchBendCenter = 8192
)

// KeyStatus is one entry of a channel's key table.
type KeyStatus struct {
	Pressed  bool
	Velocity uint8
}

// ChannelView is the read-only surface of a ChannelState.
type ChannelView interface {
	Key(key uint8) KeyStatus
	Keys() [KeyCount]KeyStatus
	Pressed() KeyMask
	ControlValue(cc uint8) uint8
	SignedControlValue(cc uint8) int8
	Controls() map[uint8]uint8
	Program() uint8
	PitchBend() uint16
	PitchBendSigned() int16
	Clone() *ChannelState
}

// ChannelState is the performance state of one MIDI channel.
//
// The pressed mask always agrees with the key table: bit k is set exactly
// when keys[k].Pressed is true. Key numbers are masked to 7 bits.
type ChannelState struct {
	keys      [KeyCount]KeyStatus
	pressed   KeyMask
	controls  map[uint8]uint8
	program   uint8
	pitchBend uint16
}

// NewChannelState returns a channel with no keys down, no controllers set,
// program 0 and a centered pitch bend.
func NewChannelState() *ChannelState {
	return &ChannelState{
		controls:  make(map[uint8]uint8),
		pitchBend: PitchBendCenter,
	}
}

// NoteOn records a key press. A zero velocity releases the key.
func (s *ChannelState) NoteOn(key, velocity uint8) {
	key &= 0x7F
	if velocity == 0 {
		s.NoteOff(key)
		return
	}
	s.keys[key] = KeyStatus{Pressed: true, Velocity: velocity}
	s.pressed.Set(key)
}

// NoteOff releases key and forgets its velocity.
func (s *ChannelState) NoteOff(key uint8) {
	key &= 0x7F
	s.keys[key] = KeyStatus{}
	s.pressed.Clear(key)
}

// SetControl stores value for controller cc.
func (s *ChannelState) SetControl(cc, value uint8) {
	if s.controls == nil {
		s.controls = make(map[uint8]uint8)
	}
	s.controls[cc] = value
}

// SetProgram stores the current program number.
func (s *ChannelState) SetProgram(program uint8) {
	s.program = program
}

// SetPitchBend stores the raw 14-bit wire value.
func (s *ChannelState) SetPitchBend(value uint16) {
	s.pitchBend = value & 0x3FFF
}

// Key returns the table entry for key.
func (s *ChannelState) Key(key uint8) KeyStatus {
	return s.keys[key&0x7F]
}

// Keys returns a copy of the whole key table.
func (s *ChannelState) Keys() [KeyCount]KeyStatus {
	return s.keys
}

// Pressed returns the mask of keys currently down.
func (s *ChannelState) Pressed() KeyMask {
	return s.pressed
}

// ControlValue returns the last value of controller cc, or 0 if it was
// never set.
func (s *ChannelState) ControlValue(cc uint8) uint8 {
	return s.controls[cc]
}

// SignedControlValue reinterprets the controller value as a signed byte.
func (s *ChannelState) SignedControlValue(cc uint8) int8 {
	return int8(s.controls[cc])
}

// Controls returns a copy of every controller that has been set.
func (s *ChannelState) Controls() map[uint8]uint8 {
	return maps.Clone(s.controls)
}

// Program returns the last program change, 0 by default.
func (s *ChannelState) Program() uint8 {
	return s.program
}

// PitchBend returns the raw 14-bit wire value.
func (s *ChannelState) PitchBend() uint16 {
	return s.pitchBend
}

// PitchBendSigned returns the bend relative to center (-8192..8191).
func (s *ChannelState) PitchBendSigned() int16 {
	return int16(s.pitchBend) - PitchBendCenter
}

// Clone returns a fully detached copy.
func (s *ChannelState) Clone() *ChannelState {
	c := *s
	c.controls = maps.Clone(s.controls)
	if c.controls == nil {
		c.controls = make(map[uint8]uint8)
	}
	return &c
}
