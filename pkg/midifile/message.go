package midifile

import "gitlab.com/gomidi/midi/v2"

// Message converts a channel event to its wire form so it can be forwarded
// to a synthesizer or an output port. It returns nil for events that have
// no channel message.
func Message(ev Event) midi.Message {
	switch e := ev.(type) {
	case NoteOff:
		return midi.NoteOffVelocity(e.Channel, e.Key, e.Velocity)
	case NoteOn:
		return midi.NoteOn(e.Channel, e.Key, e.Velocity)
	case PolyphonicAftertouch:
		return midi.PolyAfterTouch(e.Channel, e.Key, e.Pressure)
	case ControlChange:
		return midi.ControlChange(e.Channel, e.Controller, e.Value)
	case ProgramChange:
		return midi.ProgramChange(e.Channel, e.Program)
	case ChannelAftertouch:
		return midi.AfterTouch(e.Channel, e.Pressure)
	case PitchBend:
		return midi.Pitchbend(e.Channel, e.Signed())
	}
	return nil
}
