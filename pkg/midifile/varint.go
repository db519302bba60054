package midifile

import "encoding/binary"

// maxVarintLen is the longest variable-length quantity allowed in an SMF
// file. Four bytes carry 28 significant bits (up to 0x0FFFFFFF).
const maxVarintLen = 4

// byteCursor reads from data[pos:end]. It never reads past end, so a track's
// decoder cannot run into the next chunk.
type byteCursor struct {
	data []byte
	pos  int
	end  int
}

func (c *byteCursor) remaining() int {
	return c.end - c.pos
}

func (c *byteCursor) readByte() (byte, error) {
	if c.pos >= c.end {
		return 0, ErrTruncatedStream
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// unreadByte rewinds the cursor by one byte. Only valid right after a
// successful readByte.
func (c *byteCursor) unreadByte() {
	c.pos--
}

func (c *byteCursor) read(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, ErrTruncatedStream
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *byteCursor) skip(n int) error {
	_, err := c.read(n)
	return err
}

func (c *byteCursor) readUint16() (uint16, error) {
	b, err := c.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *byteCursor) readUint32() (uint32, error) {
	b, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// readVarint decodes one big-endian base-128 quantity.
func (c *byteCursor) readVarint() (uint32, error) {
	var value uint32
	for i := 0; i < maxVarintLen; i++ {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, ErrMalformedVarint
}

// ReadVarint decodes a MIDI variable-length quantity from the start of data.
// It returns the value and the number of bytes consumed.
func ReadVarint(data []byte) (uint32, int, error) {
	c := byteCursor{data: data, end: len(data)}
	v, err := c.readVarint()
	if err != nil {
		return 0, 0, err
	}
	return v, c.pos, nil
}
