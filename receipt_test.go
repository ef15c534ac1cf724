package kriptografi

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func validReceipt() *Receipt {
	return &Receipt{
		Version:     ReceiptVersion,
		BitCount:    2048,
		Wavelet:     "db2",
		Level:       1,
		Alpha:       0.001,
		Exchange:    "X25519",
		Corrector:   "repetition-3",
		FrameDigest: strings.Repeat("ab", 32),
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestReceipt_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Receipt)
	}{
		{"bad version", func(r *Receipt) { r.Version = 2 }},
		{"zero bits", func(r *Receipt) { r.BitCount = 0 }},
		{"partial byte", func(r *Receipt) { r.BitCount = 12 }},
		{"unknown wavelet", func(r *Receipt) { r.Wavelet = "sym5" }},
		{"zero level", func(r *Receipt) { r.Level = 0 }},
		{"zero alpha", func(r *Receipt) { r.Alpha = 0 }},
		{"negative alpha", func(r *Receipt) { r.Alpha = -0.5 }},
		{"unknown scheme", func(r *Receipt) { r.Exchange = "rot13" }},
		{"unknown corrector", func(r *Receipt) { r.Corrector = "hamming-7-4" }},
		{"short digest", func(r *Receipt) { r.FrameDigest = "abcd" }},
		{"non-hex digest", func(r *Receipt) { r.FrameDigest = strings.Repeat("zz", 32) }},
	}

	if err := validReceipt().Validate(); err != nil {
		t.Fatalf("Validate() on a valid receipt: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReceipt()
			tt.mutate(r)
			if err := r.Validate(); !errors.Is(err, ErrInvalidReceipt) {
				t.Errorf("expected ErrInvalidReceipt, got %v", err)
			}
		})
	}

	var nilReceipt *Receipt
	if err := nilReceipt.Validate(); !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("nil receipt: expected ErrInvalidReceipt, got %v", err)
	}
}

func TestReceipt_OptionalFields(t *testing.T) {
	r := validReceipt()
	r.Exchange = ""
	r.Corrector = ""
	r.FrameDigest = ""

	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestReceiptFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.json")
	want := validReceipt()

	if err := WriteReceiptFile(want, path); err != nil {
		t.Fatalf("WriteReceiptFile() error = %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("file permissions = %o, want 0600", perm)
		}
	}

	got, err := ReadReceiptFile(path)
	if err != nil {
		t.Fatalf("ReadReceiptFile() error = %v", err)
	}

	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	if *got != *want {
		t.Errorf("ReadReceiptFile() = %+v, want %+v", got, want)
	}
}

func TestReadReceiptFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadReceiptFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	badJSON := filepath.Join(dir, "bad.json")
	os.WriteFile(badJSON, []byte("{not json"), 0600)
	if _, err := ReadReceiptFile(badJSON); !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("bad JSON: expected ErrInvalidReceipt, got %v", err)
	}

	badVersion := filepath.Join(dir, "version.json")
	os.WriteFile(badVersion, []byte(`{"version":9,"bitCount":8,"wavelet":"db2","level":1,"alpha":0.001}`), 0600)
	if _, err := ReadReceiptFile(badVersion); !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("bad version: expected ErrInvalidReceipt, got %v", err)
	}
}

func TestWriteReceiptFile_Nil(t *testing.T) {
	err := WriteReceiptFile(nil, filepath.Join(t.TempDir(), "r.json"))
	if !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("expected ErrInvalidReceipt, got %v", err)
	}
}
