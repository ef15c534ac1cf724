package kriptografi

import (
	"encoding/binary"
	"fmt"
)

// headerSize is the width of the length header in bytes.
const headerSize = 4

// frameBlock prefixes frame with its length in bits as a big-endian uint32.
// The header measures the serialized frame only; error-correction parity is
// added around the whole block afterwards.
func frameBlock(frame []byte) ([]byte, error) {
	bitLen := uint64(len(frame)) * 8
	if bitLen > 0xffffffff {
		return nil, fmt.Errorf("%w: frame of %d bytes overflows the length header", ErrFraming, len(frame))
	}

	block := make([]byte, headerSize, headerSize+len(frame))
	binary.BigEndian.PutUint32(block, uint32(bitLen))
	return append(block, frame...), nil
}

// unframeBlock reads the length header and returns the frame bytes it
// describes. Trailing padding after the frame is discarded.
func unframeBlock(block []byte) ([]byte, error) {
	if len(block) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the length header", ErrFraming, len(block))
	}

	bitLen := binary.BigEndian.Uint32(block)
	if bitLen%8 != 0 {
		return nil, fmt.Errorf("%w: header declares %d bits, not a whole number of bytes", ErrFraming, bitLen)
	}

	n := uint64(bitLen / 8)
	if n == 0 || n > uint64(len(block)-headerSize) {
		return nil, fmt.Errorf("%w: header declares %d bytes, %d available", ErrFraming, n, len(block)-headerSize)
	}

	return block[headerSize : headerSize+int(n)], nil
}
