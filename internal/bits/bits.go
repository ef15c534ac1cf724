// Package bits converts between byte strings and the MSB-first bit sequences
// carried by the audio codec. A bit is a byte holding 0 or 1.
package bits

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBit is returned when a bit value or character is neither 0 nor 1.
var ErrInvalidBit = errors.New("invalid bit")

// ToBits expands data into 8*len(data) bits, most significant bit first.
func ToBits(data []byte) []byte {
	out := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			out = append(out, (b>>uint(i))&1)
		}
	}
	return out
}

// ToBytes packs bits into bytes, most significant bit first. A trailing group
// of fewer than eight bits is zero-padded on the right. Any value other than
// 0 or 1 yields ErrInvalidBit.
func ToBytes(bits []byte) ([]byte, error) {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		switch bit {
		case 0:
		case 1:
			out[i/8] |= 1 << uint(7-i%8)
		default:
			return nil, fmt.Errorf("%w: value %d at index %d", ErrInvalidBit, bit, i)
		}
	}
	return out, nil
}

// String renders bits as a string of '0' and '1' characters.
func String(bits []byte) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, bit := range bits {
		if bit == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// Parse reads a string of '0' and '1' characters.
func Parse(s string) ([]byte, error) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("%w: %q at index %d", ErrInvalidBit, s[i], i)
		}
	}
	return out, nil
}
