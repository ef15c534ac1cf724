package fec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vivint/infectious"
)

const reedSolomonPrefix = "reedsolomon-"

// lengthPrefix is the size of the big-endian data length stored ahead of the
// data inside the code, so padding up to a multiple of K can be stripped.
const lengthPrefix = 4

// ErrTooManyErrors is returned when a stripe holds more corrupted shares than
// the code can correct.
var ErrTooManyErrors = errors.New("too many errors to correct")

// ReedSolomon stripes data across N shares of which any K reconstruct it.
// Decoding runs Berlekamp-Welch over each stripe, so up to (N-K)/2 corrupted
// shares per byte column are corrected without knowing where they are.
//
// The encoded form is the N shares concatenated. A burst of flipped bits
// stays inside one share and touches each stripe at most once. Build one
// with NewReedSolomon.
type ReedSolomon struct {
	K, N int

	fec *infectious.FEC
}

// NewReedSolomon returns a K-of-N Reed-Solomon code over GF(2^8). n must
// exceed k by at least 2 and may not exceed 256.
func NewReedSolomon(k, n int) (*ReedSolomon, error) {
	if k < 1 || n-k < 2 || n > 256 {
		return nil, fmt.Errorf("fec: reed-solomon needs 1 <= k and k+2 <= n <= 256, got k=%d n=%d", k, n)
	}
	f, err := infectious.NewFEC(k, n)
	if err != nil {
		return nil, fmt.Errorf("fec: %w", err)
	}
	return &ReedSolomon{K: k, N: n, fec: f}, nil
}

func (r *ReedSolomon) Name() string {
	return reedSolomonPrefix + strconv.Itoa(r.K) + "-" + strconv.Itoa(r.N)
}

// Overhead returns N shares of ceil((n+4)/K) bytes each.
func (r *ReedSolomon) Overhead(n int) int {
	return r.shareSize(n) * r.N
}

func (r *ReedSolomon) shareSize(n int) int {
	return (n + lengthPrefix + r.K - 1) / r.K
}

// Encode prefixes data with its length, pads it to a multiple of K and returns
// the N shares back to back.
func (r *ReedSolomon) Encode(data []byte) []byte {
	size := r.shareSize(len(data))
	in := make([]byte, size*r.K)
	binary.BigEndian.PutUint32(in, uint32(len(data)))
	copy(in[lengthPrefix:], data)

	out := make([]byte, size*r.N)
	err := r.fec.Encode(in, func(s infectious.Share) {
		copy(out[s.Number*size:], s.Data)
	})
	if err != nil {
		// The input is always a whole number of stripes.
		panic(fmt.Sprintf("fec: reed-solomon encode: %v", err))
	}
	return out
}

func (r *ReedSolomon) Decode(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%r.N != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(data), r.N)
	}

	// Decode corrects shares in place, so work on a copy.
	buf := append([]byte(nil), data...)
	size := len(buf) / r.N
	shares := make([]infectious.Share, r.N)
	for i := range shares {
		shares[i] = infectious.Share{Number: i, Data: buf[i*size : (i+1)*size]}
	}

	out, err := r.fec.Decode(nil, shares)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTooManyErrors, err)
	}
	if len(out) < lengthPrefix {
		return nil, fmt.Errorf("%w: %d decoded bytes", ErrInvalidLength, len(out))
	}
	n := binary.BigEndian.Uint32(out)
	if uint64(n) > uint64(len(out)-lengthPrefix) {
		return nil, fmt.Errorf("%w: length %d exceeds %d decoded bytes", ErrTooManyErrors, n, len(out)-lengthPrefix)
	}
	return out[lengthPrefix : lengthPrefix+int(n)], nil
}

func parseReedSolomon(name, params string) (Corrector, error) {
	ks, ns, ok := strings.Cut(params, "-")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorrector, name)
	}
	k, err := strconv.Atoi(ks)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorrector, name)
	}
	n, err := strconv.Atoi(ns)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorrector, name)
	}
	rs, err := NewReedSolomon(k, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCorrector, err)
	}
	return rs, nil
}
