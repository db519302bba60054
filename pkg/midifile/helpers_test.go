package midifile

import (
	"encoding/binary"
	"testing"
)

// encodeVarint is the inverse of readVarint, used only to build fixtures.
func encodeVarint(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

// header returns a 14-byte MThd chunk.
func header(format, tracks, division uint16) []byte {
	b := []byte("MThd")
	b = binary.BigEndian.AppendUint32(b, 6)
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, tracks)
	b = binary.BigEndian.AppendUint16(b, division)
	return b
}

// chunk wraps body in a chunk with the given id.
func chunk(id string, body []byte) []byte {
	b := []byte(id)
	b = binary.BigEndian.AppendUint32(b, uint32(len(body)))
	return append(b, body...)
}

// buildFile returns a format 1 file with one MTrk chunk per body.
func buildFile(tpq uint16, bodies ...[]byte) []byte {
	format := uint16(1)
	if len(bodies) == 1 {
		format = 0
	}
	data := header(format, uint16(len(bodies)), tpq)
	for _, body := range bodies {
		data = append(data, chunk("MTrk", body)...)
	}
	return data
}

// ev concatenates a delta-time and raw event bytes.
func ev(delta uint32, raw ...byte) []byte {
	return append(encodeVarint(delta), raw...)
}

// track concatenates events and appends an end-of-track meta event.
func track(events ...[]byte) []byte {
	var body []byte
	for _, e := range events {
		body = append(body, e...)
	}
	return append(body, ev(0, 0xFF, 0x2F, 0x00)...)
}

func mustReader(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewReader(data)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	return r
}

// drain advances r until the end of data and returns every event.
func drain(t *testing.T, r *Reader) []Event {
	t.Helper()
	var events []Event
	for i := 0; i < 100000; i++ {
		var wait uint32
		var err error
		events, wait, err = r.ReadNextEvents(events)
		if err != nil {
			t.Fatalf("ReadNextEvents failed: %v", err)
		}
		if wait == 0 {
			return events
		}
	}
	t.Fatal("session did not reach end of data")
	return nil
}
