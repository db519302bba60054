package midifile

// Status bytes and meta types understood by the decoder.
const (
	statusMeta          = 0xFF
	statusSysEx         = 0xF0
	statusEscape        = 0xF7
	statusTimeCode      = 0xF1
	statusSongPosition  = 0xF2
	statusSongSelect    = 0xF3
	statusSystemMinimum = 0xF0

	metaText          = 0x01
	metaCopyright     = 0x02
	metaSeqName       = 0x03
	metaInstrument    = 0x04
	metaLyric         = 0x05
	metaMarker        = 0x06
	metaCuePoint      = 0x07
	metaTempo         = 0x51
	metaTimeSignature = 0x58
)

// Channel voice message types (high nibble of the status byte).
const (
	typeNoteOff           = 0x80
	typeNoteOn            = 0x90
	typePolyAftertouch    = 0xA0
	typeControlChange     = 0xB0
	typeProgramChange     = 0xC0
	typeChannelAftertouch = 0xD0
	typePitchBend         = 0xE0
)

// timeSignatureDenominators maps the power-of-two exponent stored in the
// file to the denominator. Unknown exponents fall back to 4.
var timeSignatureDenominators = map[uint8]uint8{
	1: 2,
	2: 4,
	3: 8,
	4: 16,
	5: 32,
	6: 64,
	7: 128,
}

// decodeEvent reads one event (delta-time and payload) for the given track.
// status is the track's running status; the returned byte is the running
// status to use for the next event.
func decodeEvent(c *byteCursor, track int, status uint8, text textDecoder) (Event, uint8, error) {
	delta, err := c.readVarint()
	if err != nil {
		return nil, status, err
	}
	base := Base{DeltaTime: delta, Track: track}

	b, err := c.readByte()
	if err != nil {
		return nil, status, err
	}

	switch {
	case b == statusMeta:
		ev, err := decodeMeta(c, base, text)
		return ev, status, err

	case b == statusSysEx || b == statusEscape:
		length, err := c.readVarint()
		if err != nil {
			return nil, status, err
		}
		if err := c.skip(int(length)); err != nil {
			return nil, status, err
		}
		return Unhandled{Base: base, Status: b}, status, nil

	case b >= statusSystemMinimum:
		// System common and real-time messages have fixed payload sizes.
		var size int
		switch b {
		case statusSongPosition:
			size = 2
		case statusSongSelect, statusTimeCode:
			size = 1
		}
		if err := c.skip(size); err != nil {
			return nil, status, err
		}
		return Unhandled{Base: base, Status: b}, status, nil
	}

	if b&0x80 == 0 {
		if status == 0 {
			return nil, status, ErrMissingStatus
		}
		c.unreadByte()
		b = status
	} else {
		status = b
	}

	ev, err := decodeChannel(c, base, b)
	return ev, status, err
}

func decodeChannel(c *byteCursor, base Base, status uint8) (Event, error) {
	channel := status & 0x0F
	msgType := status & 0xF0

	data1, err := c.readByte()
	if err != nil {
		return nil, err
	}
	if msgType == typeProgramChange {
		return ProgramChange{Base: base, Channel: channel, Program: data1}, nil
	}
	if msgType == typeChannelAftertouch {
		return ChannelAftertouch{Base: base, Channel: channel, Pressure: data1}, nil
	}

	data2, err := c.readByte()
	if err != nil {
		return nil, err
	}
	switch msgType {
	case typeNoteOff:
		return NoteOff{Base: base, Channel: channel, Key: data1, Velocity: data2}, nil
	case typeNoteOn:
		return NoteOn{Base: base, Channel: channel, Key: data1, Velocity: data2}, nil
	case typePolyAftertouch:
		return PolyphonicAftertouch{Base: base, Channel: channel, Key: data1, Pressure: data2}, nil
	case typeControlChange:
		return ControlChange{Base: base, Channel: channel, Controller: data1, Value: data2}, nil
	default: // typePitchBend
		low, high := data1&0x7F, data2&0x7F
		return PitchBend{
			Base:    base,
			Channel: channel,
			Value:   uint16(high)<<7 | uint16(low),
			Low7:    low,
			High7:   high,
		}, nil
	}
}

func decodeMeta(c *byteCursor, base Base, text textDecoder) (Event, error) {
	metaType, err := c.readByte()
	if err != nil {
		return nil, err
	}
	length, err := c.readVarint()
	if err != nil {
		return nil, err
	}
	payload, err := c.read(int(length))
	if err != nil {
		return nil, err
	}

	switch metaType {
	case metaText, metaInstrument, metaLyric, metaMarker, metaCuePoint:
		return Text{Base: base, MetaType: metaType, Text: text(payload)}, nil
	case metaCopyright:
		return Copyright{Base: base, Text: text(payload)}, nil
	case metaSeqName:
		return SeqName{Base: base, Text: text(payload)}, nil
	case metaTempo:
		if len(payload) == 3 {
			us := uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
			return Tempo{Base: base, MicrosecondsPerQuarterNote: us}, nil
		}
	case metaTimeSignature:
		if len(payload) == 4 {
			denominator, ok := timeSignatureDenominators[payload[1]]
			if !ok {
				denominator = 4
			}
			return TimeSignature{Base: base, Numerator: payload[0], Denominator: denominator}, nil
		}
	}
	return Unhandled{Base: base, Status: statusMeta, MetaType: metaType}, nil
}
