package midifile

import "math/bits"

// KeyMask is a 128-bit set of MIDI keys. Masks from several channels can be
// merged with Or.
type KeyMask [2]uint64

// Has reports whether key is set.
func (m KeyMask) Has(key uint8) bool {
	key &= 0x7F
	return m[key>>6]&(1<<(key&63)) != 0
}

// Set adds key to the mask.
func (m *KeyMask) Set(key uint8) {
	key &= 0x7F
	m[key>>6] |= 1 << (key & 63)
}

// Clear removes key from the mask.
func (m *KeyMask) Clear(key uint8) {
	key &= 0x7F
	m[key>>6] &^= 1 << (key & 63)
}

// Or returns the union of m and other.
func (m KeyMask) Or(other KeyMask) KeyMask {
	return KeyMask{m[0] | other[0], m[1] | other[1]}
}

// Any reports whether at least one key is set.
func (m KeyMask) Any() bool {
	return m[0]|m[1] != 0
}

// Count returns the number of set keys.
func (m KeyMask) Count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1])
}

// Keys lists the set keys in ascending order.
func (m KeyMask) Keys() []uint8 {
	keys := make([]uint8, 0, m.Count())
	for word := 0; word < 2; word++ {
		w := m[word]
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			keys = append(keys, uint8(word*64+bit))
			w &= w - 1
		}
	}
	return keys
}
