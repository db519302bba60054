package midifile

import (
	"bytes"
	"fmt"
)

var (
	headerChunkID = []byte("MThd")
	trackChunkID  = []byte("MTrk")
)

// minHeaderLength covers the format, track count and division fields.
const minHeaderLength = 6

// HeaderInfo holds the fields of the MThd chunk.
type HeaderInfo struct {
	Format              uint16 // 0 or 1
	TrackCount          int    // number of MTrk chunks, at least 1
	TicksPerQuarterNote int    // always positive
}

// String formats the header for logs.
func (h HeaderInfo) String() string {
	return fmt.Sprintf("format %d, %d track(s), %d ticks per quarter note",
		h.Format, h.TrackCount, h.TicksPerQuarterNote)
}

// TrackRange locates one track's event bytes inside the file.
type TrackRange struct {
	Offset int // first byte after the chunk's length field
	Length int
}

// End returns the offset one past the track's last byte.
func (r TrackRange) End() int {
	return r.Offset + r.Length
}

// LoadChunkIndex parses the header chunk and finds the byte range of every
// track chunk without decoding any events.
//
// Chunks whose id is not "MTrk" are skipped using their declared length.
func LoadChunkIndex(data []byte) (HeaderInfo, []TrackRange, error) {
	var info HeaderInfo
	c := &byteCursor{data: data, end: len(data)}

	id, err := c.read(4)
	if err != nil {
		return info, nil, fmt.Errorf("%w: reading header chunk id", err)
	}
	if !bytes.Equal(id, headerChunkID) {
		return info, nil, fmt.Errorf("%w: expected %q, got %q", ErrBadMagic, headerChunkID, id)
	}

	headerLength, err := c.readUint32()
	if err != nil {
		return info, nil, fmt.Errorf("%w: reading header length", err)
	}
	if headerLength < minHeaderLength {
		return info, nil, fmt.Errorf("%w: header length %d", ErrTruncatedStream, headerLength)
	}
	payloadStart := c.pos

	format, err := c.readUint16()
	if err != nil {
		return info, nil, fmt.Errorf("%w: reading format", err)
	}
	if format != 0 && format != 1 {
		return info, nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}

	trackCount, err := c.readUint16()
	if err != nil {
		return info, nil, fmt.Errorf("%w: reading track count", err)
	}
	if trackCount == 0 {
		return info, nil, ErrNoTracks
	}

	division, err := c.readUint16()
	if err != nil {
		return info, nil, fmt.Errorf("%w: reading division", err)
	}
	// A set top bit means SMPTE frames; read as signed it is negative.
	if int16(division) <= 0 {
		return info, nil, fmt.Errorf("%w: division 0x%04x", ErrUnsupportedTiming, division)
	}

	info = HeaderInfo{
		Format:              format,
		TrackCount:          int(trackCount),
		TicksPerQuarterNote: int(division),
	}

	if int64(headerLength) > int64(len(data)-payloadStart) {
		return info, nil, fmt.Errorf("%w: header length %d", ErrTruncatedStream, headerLength)
	}
	c.pos = payloadStart + int(headerLength)

	ranges := make([]TrackRange, 0, info.TrackCount)
	for len(ranges) < info.TrackCount {
		chunkID, err := c.read(4)
		if err != nil {
			return info, nil, fmt.Errorf("%w: found %d of %d tracks", err, len(ranges), info.TrackCount)
		}
		length, err := c.readUint32()
		if err != nil {
			return info, nil, fmt.Errorf("%w: reading chunk length", err)
		}
		if int64(length) > int64(c.remaining()) {
			return info, nil, fmt.Errorf("%w: chunk %q declares %d bytes, %d available",
				ErrTruncatedStream, chunkID, length, c.remaining())
		}
		if bytes.Equal(chunkID, trackChunkID) {
			ranges = append(ranges, TrackRange{Offset: c.pos, Length: int(length)})
		}
		c.pos += int(length)
	}

	return info, ranges, nil
}
