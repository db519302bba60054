// Package midifile decodes Standard MIDI Files and advances their playback
// state tick by tick across all tracks.
package midifile

import (
	"errors"
	"fmt"
)

// Load and decode errors. Every error returned by this package wraps one of
// these, so callers can match with errors.Is.
var (
	// ErrBadMagic is returned when the header chunk id is not "MThd".
	ErrBadMagic = errors.New("bad chunk id")

	// ErrUnsupportedFormat is returned for SMF formats other than 0 and 1.
	ErrUnsupportedFormat = errors.New("unsupported MIDI format")

	// ErrNoTracks is returned when the header declares zero tracks.
	ErrNoTracks = errors.New("MIDI file contains no tracks")

	// ErrUnsupportedTiming is returned for SMPTE or non-positive divisions.
	ErrUnsupportedTiming = errors.New("unsupported time division")

	// ErrTruncatedStream is returned when fewer bytes are available than a
	// field or payload declares.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrMalformedVarint is returned when a variable-length quantity needs
	// more than four bytes.
	ErrMalformedVarint = errors.New("malformed variable-length quantity")

	// ErrMissingStatus is returned when a track starts with a data byte and
	// there is no running status to apply it to.
	ErrMissingStatus = errors.New("data byte without running status")
)

// DecodeError reports a failure while decoding a track's event stream.
type DecodeError struct {
	Track  int   // index of the track being decoded
	Offset int   // absolute byte offset of the event that failed
	Err    error // one of the package sentinels
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("track %d at offset %d: %v", e.Track, e.Offset, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
