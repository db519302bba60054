package midifile

// exhausted marks a track that will produce no further events.
const exhausted = -1

// TrackCursor is the decode state of one track.
type TrackCursor struct {
	index     int
	rng       TrackRange
	pos       int
	status    uint8 // running status, 0 until the first channel event
	remaining int64 // ticks until pending is due, or exhausted
	pending   Event // decoded but not yet applied
}

func newTrackCursor(index int, rng TrackRange) *TrackCursor {
	c := &TrackCursor{index: index, rng: rng, pos: rng.Offset}
	if rng.Length == 0 {
		c.remaining = exhausted
	}
	return c
}

// Index returns the track number.
func (t *TrackCursor) Index() int { return t.index }

// Offset returns the absolute offset of the next undecoded byte.
func (t *TrackCursor) Offset() int { return t.pos }

// Remaining returns the ticks until the next event, or -1 once exhausted.
func (t *TrackCursor) Remaining() int64 { return t.remaining }

// Exhausted reports whether the track has no more events.
func (t *TrackCursor) Exhausted() bool { return t.remaining == exhausted }

// atEnd reports whether every byte of the track has been decoded.
func (t *TrackCursor) atEnd() bool {
	return t.pos >= t.rng.End()
}

// next decodes the event at the cursor and advances past it.
func (t *TrackCursor) next(data []byte, text textDecoder) (Event, error) {
	c := byteCursor{data: data, pos: t.pos, end: t.rng.End()}
	ev, status, err := decodeEvent(&c, t.index, t.status, text)
	if err != nil {
		return nil, &DecodeError{Track: t.index, Offset: t.pos, Err: err}
	}
	t.pos = c.pos
	t.status = status
	return ev, nil
}
