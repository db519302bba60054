package midifile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// textDecoder turns a meta event payload into a string.
type textDecoder func([]byte) string

// autoDecode keeps valid UTF-8 as is and otherwise assumes Shift_JIS, which
// is what most non-ASCII SMF files in the wild use.
func autoDecode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return decodeWith(japanese.ShiftJIS)(b)
}

// decodeWith returns a textDecoder for enc. Undecodable input is returned
// byte for byte.
func decodeWith(enc encoding.Encoding) textDecoder {
	return func(b []byte) string {
		out, _, err := transform.Bytes(enc.NewDecoder(), b)
		if err != nil {
			return string(b)
		}
		return string(out)
	}
}

// LookupEncoding resolves a WHATWG encoding label such as "shift_jis" or
// "windows-1252". An empty name or "auto" returns nil, which selects the
// default UTF-8/Shift_JIS detection.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" || name == "auto" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	return enc, nil
}
