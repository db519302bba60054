package midifile

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/encoding"
)

const (
	// DefaultMicrosecondsPerQuarterNote is 120 BPM, used until the first
	// tempo event.
	DefaultMicrosecondsPerQuarterNote = 500_000

	defaultNumerator   = 4
	defaultDenominator = 4
)

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithTextEncoding decodes meta text with enc instead of the default
// UTF-8/Shift_JIS detection. A nil enc keeps the default.
func WithTextEncoding(enc encoding.Encoding) Option {
	return func(r *Reader) {
		if enc != nil {
			r.text = decodeWith(enc)
		}
	}
}

// Reader is a playback session over one MIDI file. It is not safe for
// concurrent use: callers that share state with other goroutines must hand
// them a Snapshot instead.
type Reader struct {
	data     []byte
	header   HeaderInfo
	ranges   []TrackRange
	cursors  []*TrackCursor
	channels [ChannelCount]*ChannelState

	tick        uint64
	tempo       uint32
	numerator   uint8
	denominator uint8
	songName    string
	copyright   string
	noteCount   uint64
	eventCount  uint64

	err  error
	log  *slog.Logger
	text textDecoder
}

// NewReader indexes data and prepares a session positioned at tick 0. data
// must not be modified while the Reader is in use.
func NewReader(data []byte, opts ...Option) (*Reader, error) {
	r := &Reader{
		data:        data,
		tempo:       DefaultMicrosecondsPerQuarterNote,
		numerator:   defaultNumerator,
		denominator: defaultDenominator,
		log:         slog.Default(),
		text:        autoDecode,
	}
	for _, opt := range opts {
		opt(r)
	}

	header, ranges, err := LoadChunkIndex(data)
	if err != nil {
		return nil, err
	}
	r.header = header
	r.ranges = ranges

	r.cursors = make([]*TrackCursor, len(ranges))
	for i, rng := range ranges {
		r.cursors[i] = newTrackCursor(i, rng)
	}
	for i := range r.channels {
		r.channels[i] = NewChannelState()
	}

	r.log.Debug("MIDI file indexed",
		"format", header.Format,
		"tracks", header.TrackCount,
		"tpq", header.TicksPerQuarterNote,
		"bytes", len(data))
	return r, nil
}

// ReadFrom reads all of src and calls NewReader.
func ReadFrom(src io.Reader, opts ...Option) (*Reader, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI data: %w", err)
	}
	return NewReader(data, opts...)
}

// Header returns the parsed MThd fields.
func (r *Reader) Header() HeaderInfo { return r.header }

// Tracks returns the byte range of every track.
func (r *Reader) Tracks() []TrackRange {
	return append([]TrackRange(nil), r.ranges...)
}

// Cursor returns the decode state of track i.
func (r *Reader) Cursor(i int) *TrackCursor { return r.cursors[i] }

// TicksPerQuarterNote returns the file's time division.
func (r *Reader) TicksPerQuarterNote() int { return r.header.TicksPerQuarterNote }

// CurrentTick returns the absolute tick reached so far.
func (r *Reader) CurrentTick() uint64 { return r.tick }

// MicrosecondsPerQuarterNote returns the current tempo, 500000 until a tempo
// event is applied.
func (r *Reader) MicrosecondsPerQuarterNote() uint32 { return r.tempo }

// BPM returns the current tempo in beats per minute.
func (r *Reader) BPM() float64 {
	return 60_000_000 / float64(r.tempo)
}

// TimeSignature returns the current numerator and denominator.
func (r *Reader) TimeSignature() (numerator, denominator uint8) {
	return r.numerator, r.denominator
}

// MillisecondsPerTick returns the length of one tick at the current tempo.
func (r *Reader) MillisecondsPerTick() float64 {
	return float64(r.tempo) / float64(r.header.TicksPerQuarterNote) / 1000
}

// TickDuration is MillisecondsPerTick as a time.Duration.
func (r *Reader) TickDuration() time.Duration {
	return time.Duration(r.tempo) * time.Microsecond / time.Duration(r.header.TicksPerQuarterNote)
}

// SongName returns the last sequence name seen on track 0.
func (r *Reader) SongName() string { return r.songName }

// Copyright returns the last copyright notice seen on any track.
func (r *Reader) Copyright() string { return r.copyright }

// NoteCount returns the number of NoteOn events applied so far, including
// those with velocity 0.
func (r *Reader) NoteCount() uint64 { return r.noteCount }

// EventCount returns the number of events applied so far.
func (r *Reader) EventCount() uint64 { return r.eventCount }

// Channel returns a read-only view of channel i (0-15). The view reflects
// live state and changes on the next Advance.
func (r *Reader) Channel(i int) ChannelView {
	return r.channels[i]
}

// Err returns the decode error that ended the session, if any.
func (r *Reader) Err() error { return r.err }

// Done reports whether every track is exhausted or the session failed.
func (r *Reader) Done() bool {
	if r.err != nil {
		return true
	}
	for _, c := range r.cursors {
		if !c.Exhausted() {
			return false
		}
	}
	return true
}

// Snapshot is a detached copy of the session's observable state.
type Snapshot struct {
	Tick                       uint64
	MicrosecondsPerQuarterNote uint32
	BPM                        float64
	Numerator                  uint8
	Denominator                uint8
	TicksPerQuarterNote        int
	SongName                   string
	Copyright                  string
	NoteCount                  uint64
	EventCount                 uint64
	Channels                   [ChannelCount]*ChannelState
	// Pressed is the union of every channel's pressed keys.
	Pressed KeyMask
	Done    bool
}

// Snapshot deep-copies the current state.
func (r *Reader) Snapshot() Snapshot {
	s := Snapshot{
		Tick:                       r.tick,
		MicrosecondsPerQuarterNote: r.tempo,
		BPM:                        r.BPM(),
		Numerator:                  r.numerator,
		Denominator:                r.denominator,
		TicksPerQuarterNote:        r.header.TicksPerQuarterNote,
		SongName:                   r.songName,
		Copyright:                  r.copyright,
		NoteCount:                  r.noteCount,
		EventCount:                 r.eventCount,
		Done:                       r.Done(),
	}
	for i, ch := range r.channels {
		s.Channels[i] = ch.Clone()
		s.Pressed = s.Pressed.Or(ch.Pressed())
	}
	return s
}
