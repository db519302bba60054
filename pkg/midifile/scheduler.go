package midifile

// ReadNextEvents applies every event due at the current tick, across all
// tracks, and returns them appended to dst together with the number of ticks
// until the next event. Zero ticks means the file has ended; further calls
// return zero again and change nothing.
//
// Events due at the same tick on different tracks are applied in track
// order. A decode error ends the session: it is returned now and on every
// later call.
func (r *Reader) ReadNextEvents(dst []Event) ([]Event, uint32, error) {
	if r.err != nil {
		return dst, 0, r.err
	}

	for _, c := range r.cursors {
		for c.remaining == 0 {
			if c.pending != nil {
				r.apply(c.pending)
				dst = append(dst, c.pending)
				c.pending = nil
			}
			if c.atEnd() {
				c.remaining = exhausted
				r.log.Debug("track exhausted", "track", c.index, "tick", r.tick)
				break
			}
			ev, err := c.next(r.data, r.text)
			if err != nil {
				r.err = err
				r.log.Debug("decode failed", "track", c.index, "tick", r.tick, "error", err)
				return dst, 0, err
			}
			c.pending = ev
			c.remaining = int64(ev.Delta())
		}
	}

	var wait int64
	for _, c := range r.cursors {
		if c.remaining > 0 && (wait == 0 || c.remaining < wait) {
			wait = c.remaining
		}
	}
	if wait == 0 {
		return dst, 0, nil
	}

	for _, c := range r.cursors {
		if c.remaining > 0 {
			c.remaining -= wait
		}
	}
	r.tick += uint64(wait)
	return dst, uint32(wait), nil
}

// Advance is ReadNextEvents for callers that only need the state.
func (r *Reader) Advance() (uint32, error) {
	_, wait, err := r.ReadNextEvents(nil)
	return wait, err
}

// apply folds one event into the session state.
func (r *Reader) apply(ev Event) {
	r.eventCount++

	switch e := ev.(type) {
	case NoteOn:
		r.noteCount++
		r.channels[e.Channel].NoteOn(e.Key, e.Velocity)
	case NoteOff:
		r.channels[e.Channel].NoteOff(e.Key)
	case ControlChange:
		r.channels[e.Channel].SetControl(e.Controller, e.Value)
	case ProgramChange:
		r.channels[e.Channel].SetProgram(e.Program)
	case PitchBend:
		r.channels[e.Channel].SetPitchBend(e.Value)
	case SeqName:
		if e.Track == 0 {
			r.songName = e.Text
		}
	case Copyright:
		r.copyright = e.Text
	case Tempo:
		if e.MicrosecondsPerQuarterNote == 0 {
			r.log.Debug("ignoring zero tempo", "track", e.Track, "tick", r.tick)
			return
		}
		r.tempo = e.MicrosecondsPerQuarterNote
	case TimeSignature:
		r.numerator = e.Numerator
		r.denominator = e.Denominator
	case Unhandled:
		if e.Status == statusMeta && (e.MetaType == metaTempo || e.MetaType == metaTimeSignature) {
			r.log.Debug("malformed meta event skipped", "track", e.Track, "type", e.MetaType, "tick", r.tick)
		}
	case PolyphonicAftertouch, ChannelAftertouch, Text:
	}
}
