package crypto

import (
	"encoding/binary"
	"fmt"
)

// FrameVersion is the current binary frame format version.
const FrameVersion = 1

var frameMagic = [2]byte{'K', 'F'}

const (
	flagExchange byte = 1 << iota
	flagTag
)

// frameHeaderSize is magic (2) + version (1) + flags (1).
const frameHeaderSize = 4

// Frame is the serialized unit exchanged between the envelope and the bit codec.
type Frame struct {
	// WrappedKey is the RSA-OAEP ciphertext of the session key. Its length
	// equals the RSA modulus size.
	WrappedKey []byte
	// Encapsulation is the exchange-layer KEM ciphertext, empty when the
	// layer is disabled.
	Encapsulation []byte
	// IV is the AES-CBC initialization vector.
	IV []byte
	// Ciphertext is the padded AES-CBC ciphertext.
	Ciphertext []byte
	// Tag is the HMAC-SHA-256 integrity tag, empty when integrity is disabled.
	Tag []byte
}

// Validate checks the structural invariants of the frame.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}
	if len(f.WrappedKey) == 0 {
		return fmt.Errorf("%w: missing wrapped key", ErrInvalidFrame)
	}
	if len(f.IV) != BlockSize {
		return fmt.Errorf("%w: IV size %d, want %d", ErrInvalidFrame, len(f.IV), BlockSize)
	}
	if len(f.Ciphertext) == 0 || len(f.Ciphertext)%BlockSize != 0 {
		return fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d",
			ErrInvalidFrame, len(f.Ciphertext), BlockSize)
	}
	if len(f.Tag) != 0 && len(f.Tag) != MACSize {
		return fmt.Errorf("%w: tag size %d, want %d", ErrInvalidFrame, len(f.Tag), MACSize)
	}
	return nil
}

// MarshalBinary encodes the frame as
// magic || version || flags || field*, where each field is a 4-byte
// big-endian length followed by its bytes. Optional fields are present only
// when their flag is set.
func (f *Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var flags byte
	fields := [][]byte{f.WrappedKey}
	if len(f.Encapsulation) > 0 {
		flags |= flagExchange
		fields = append(fields, f.Encapsulation)
	}
	fields = append(fields, f.IV, f.Ciphertext)
	if len(f.Tag) > 0 {
		flags |= flagTag
		fields = append(fields, f.Tag)
	}

	size := frameHeaderSize
	for _, field := range fields {
		size += 4 + len(field)
	}

	out := make([]byte, 0, size)
	out = append(out, frameMagic[0], frameMagic[1], FrameVersion, flags)
	for _, field := range fields {
		out = binary.BigEndian.AppendUint32(out, uint32(len(field)))
		out = append(out, field...)
	}
	return out, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary. Trailing bytes are
// rejected.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < frameHeaderSize {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidFrame, len(data))
	}
	if data[0] != frameMagic[0] || data[1] != frameMagic[1] {
		return fmt.Errorf("%w: bad magic", ErrInvalidFrame)
	}
	if data[2] != FrameVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidFrame, data[2])
	}

	flags := data[3]
	if flags&^(flagExchange|flagTag) != 0 {
		return fmt.Errorf("%w: unknown flags %#x", ErrInvalidFrame, flags)
	}

	r := fieldReader{buf: data[frameHeaderSize:]}
	var out Frame
	out.WrappedKey = r.next()
	if flags&flagExchange != 0 {
		out.Encapsulation = r.next()
	}
	out.IV = r.next()
	out.Ciphertext = r.next()
	if flags&flagTag != 0 {
		out.Tag = r.next()
	}

	if r.err != nil {
		return r.err
	}
	if len(r.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidFrame, len(r.buf))
	}
	if err := out.Validate(); err != nil {
		return err
	}

	*f = out
	return nil
}

// String returns the frame as standard base64 of its binary encoding.
// An invalid frame yields an empty string.
func (f *Frame) String() string {
	data, err := f.MarshalBinary()
	if err != nil {
		return ""
	}
	return ToBase64(data)
}

// ParseFrame decodes the base64 form produced by Frame.String.
func ParseFrame(s string) (*Frame, error) {
	data, err := FromBase64(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	var f Frame
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &f, nil
}

type fieldReader struct {
	buf []byte
	err error
}

func (r *fieldReader) next() []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < 4 {
		r.err = fmt.Errorf("%w: truncated field length", ErrInvalidFrame)
		return nil
	}
	n := binary.BigEndian.Uint32(r.buf)
	r.buf = r.buf[4:]
	if uint64(n) > uint64(len(r.buf)) {
		r.err = fmt.Errorf("%w: field length %d exceeds remaining %d bytes", ErrInvalidFrame, n, len(r.buf))
		return nil
	}
	field := make([]byte, n)
	copy(field, r.buf[:n])
	r.buf = r.buf[n:]
	return field
}
