package bits

import (
	"bytes"
	"errors"
	"testing"
)

func TestToBits(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, ""},
		{"A", []byte("A"), "01000001"},
		{"two bytes", []byte{0xff, 0x01}, "1111111100000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBits(tt.data)
			if len(got) != 8*len(tt.data) {
				t.Errorf("len(ToBits()) = %d, want %d", len(got), 8*len(tt.data))
			}
			if String(got) != tt.want {
				t.Errorf("ToBits() = %s, want %s", String(got), tt.want)
			}
		})
	}
}

func TestToBytes(t *testing.T) {
	tests := []struct {
		name string
		bits string
		want []byte
	}{
		{"empty", "", []byte{}},
		{"A", "01000001", []byte("A")},
		{"partial group padded", "101", []byte{0xa0}},
		{"nine bits", "111111111", []byte{0xff, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Parse(tt.bits)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ToBytes(in)
			if err != nil {
				t.Fatalf("ToBytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ToBytes() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestToBytes_InvalidBit(t *testing.T) {
	_, err := ToBytes([]byte{0, 1, 2})
	if !errors.Is(err, ErrInvalidBit) {
		t.Errorf("expected ErrInvalidBit, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	data := []byte("Kriptografi \x00\xff")
	got, err := ToBytes(ToBits(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip = %q, want %q", got, data)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"012", "0 1", "x"} {
		if _, err := Parse(s); !errors.Is(err, ErrInvalidBit) {
			t.Errorf("Parse(%q) expected ErrInvalidBit, got %v", s, err)
		}
	}
}
