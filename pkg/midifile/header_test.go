package midifile

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestLoadChunkIndex(t *testing.T) {
	body0 := track(ev(0, 0x90, 60, 100))
	body1 := track(ev(10, 0x80, 60, 0))
	data := buildFile(480, body0, body1)

	info, ranges, err := LoadChunkIndex(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Format != 1 || info.TrackCount != 2 || info.TicksPerQuarterNote != 480 {
		t.Errorf("unexpected header: %+v", info)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 track ranges, got %d", len(ranges))
	}
	if ranges[0].Offset != 22 || ranges[0].Length != len(body0) {
		t.Errorf("track 0 range = %+v", ranges[0])
	}
	if ranges[1].Offset != ranges[0].End()+8 || ranges[1].Length != len(body1) {
		t.Errorf("track 1 range = %+v", ranges[1])
	}
}

func TestLoadChunkIndex_Validation(t *testing.T) {
	oneTrack := chunk("MTrk", track())

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", append([]byte("RIFF"), header(0, 1, 96)[4:]...), ErrBadMagic},
		{"format 2", append(header(2, 1, 96), oneTrack...), ErrUnsupportedFormat},
		{"no tracks", header(0, 0, 96), ErrNoTracks},
		{"SMPTE division", append(header(0, 1, 0xE728), oneTrack...), ErrUnsupportedTiming},
		{"zero division", append(header(0, 1, 0), oneTrack...), ErrUnsupportedTiming},
		{"short header", []byte("MThd\x00\x00"), ErrTruncatedStream},
		{"missing track chunk", header(1, 2, 96), ErrTruncatedStream},
		{"track longer than file", append(header(0, 1, 96), "MTrk\x00\x00\x00\xFF\x00"...), ErrTruncatedStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadChunkIndex(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadChunkIndex_LongHeader(t *testing.T) {
	// Eight-byte header payload: the two extra bytes must be skipped.
	data := []byte("MThd")
	data = binary.BigEndian.AppendUint32(data, 8)
	data = binary.BigEndian.AppendUint16(data, 0)
	data = binary.BigEndian.AppendUint16(data, 1)
	data = binary.BigEndian.AppendUint16(data, 96)
	data = append(data, 0xAA, 0xBB)
	data = append(data, chunk("MTrk", track())...)

	_, ranges, err := LoadChunkIndex(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranges[0].Offset != 24 {
		t.Errorf("expected track at offset 24, got %d", ranges[0].Offset)
	}
}

func TestLoadChunkIndex_SkipsAlienChunks(t *testing.T) {
	body := track(ev(0, 0x90, 60, 100))
	data := header(0, 1, 96)
	data = append(data, chunk("XFIH", []byte("MTrk-looking junk"))...)
	data = append(data, chunk("MTrk", body)...)

	_, ranges, err := LoadChunkIndex(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 1 || ranges[0].Length != len(body) {
		t.Fatalf("unexpected ranges: %+v", ranges)
	}
	if got := data[ranges[0].Offset]; got != 0x00 {
		t.Errorf("track should start at its first delta-time, got byte %#x", got)
	}
}
