// Package fec defines the forward error correction hook applied to the framed
// payload before it is embedded. A repetition code and a Reed-Solomon code
// implement it.
package fec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Alfariz11/Kriptografi/internal/bits"
)

var (
	// ErrInvalidLength is returned when encoded data is not a whole number of
	// code words.
	ErrInvalidLength = errors.New("invalid encoded length")

	// ErrUnknownCorrector is returned by Parse for an unrecognised name.
	ErrUnknownCorrector = errors.New("unknown corrector")
)

// Corrector adds and removes redundancy around a byte string.
type Corrector interface {
	// Name identifies the corrector in a receipt. Parse(Name()) must return
	// an equivalent corrector.
	Name() string
	// Encode returns data with redundancy added.
	Encode(data []byte) []byte
	// Decode recovers the original data, correcting errors where it can.
	Decode(data []byte) ([]byte, error)
	// Overhead returns the encoded size of n input bytes.
	Overhead(n int) int
}

const repetitionPrefix = "repetition-"

// Repetition repeats every bit N times and decodes by majority vote. It
// corrects up to (N-1)/2 flipped bits in each group.
type Repetition struct {
	N int
}

// NewRepetition returns a repetition code with n copies per bit. n must be odd
// and at least 3.
func NewRepetition(n int) (*Repetition, error) {
	if n < 3 || n%2 == 0 {
		return nil, fmt.Errorf("fec: repetition factor must be odd and >= 3, got %d", n)
	}
	return &Repetition{N: n}, nil
}

func (r *Repetition) Name() string {
	return repetitionPrefix + strconv.Itoa(r.N)
}

func (r *Repetition) Overhead(n int) int {
	return n * r.N
}

// Encode repeats each bit of data N times in place, so a byte becomes N bytes.
func (r *Repetition) Encode(data []byte) []byte {
	in := bits.ToBits(data)
	out := make([]byte, 0, len(in)*r.N)
	for _, b := range in {
		for range r.N {
			out = append(out, b)
		}
	}
	// Every value is 0 or 1 and the length is a multiple of 8.
	packed, _ := bits.ToBytes(out)
	return packed
}

func (r *Repetition) Decode(data []byte) ([]byte, error) {
	if len(data)%r.N != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(data), r.N)
	}

	in := bits.ToBits(data)
	out := make([]byte, len(in)/r.N)
	for i := range out {
		ones := 0
		for _, b := range in[i*r.N : (i+1)*r.N] {
			ones += int(b)
		}
		if 2*ones > r.N {
			out[i] = 1
		}
	}
	return bits.ToBytes(out)
}

// Parse returns the corrector named by name, either repetition-N or
// reedsolomon-K-N. The empty string means no correction and yields a nil
// Corrector.
func Parse(name string) (Corrector, error) {
	if name == "" {
		return nil, nil
	}

	if n, ok := strings.CutPrefix(name, repetitionPrefix); ok {
		factor, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCorrector, name)
		}
		r, err := NewRepetition(factor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownCorrector, err)
		}
		return r, nil
	}
	if params, ok := strings.CutPrefix(name, reedSolomonPrefix); ok {
		return parseReedSolomon(name, params)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCorrector, name)
}
