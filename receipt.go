package kriptografi

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Alfariz11/Kriptografi/internal/crypto"
	"github.com/Alfariz11/Kriptografi/internal/fec"
	"github.com/Alfariz11/Kriptografi/internal/wavelet"
)

// ReceiptVersion is the current receipt format version.
const ReceiptVersion = 1

// Receipt carries everything besides the private key that extraction needs.
// It travels out of band next to the stego audio and holds no key material.
type Receipt struct {
	// Version is the receipt format version. MUST be 1.
	Version int `json:"version"`
	// BitCount is the number of bits embedded in the carrier, after error
	// correction. A multiple of 8.
	BitCount int `json:"bitCount"`
	// Wavelet is the wavelet basis used for embedding.
	Wavelet string `json:"wavelet"`
	// Level is the decomposition level.
	Level int `json:"level"`
	// Alpha is the QIM embedding strength.
	Alpha float64 `json:"alpha"`
	// Exchange is the exchange-layer scheme, empty when the layer is off.
	Exchange string `json:"exchange,omitempty"`
	// Corrector names the error-correction code, empty when none was used.
	Corrector string `json:"corrector,omitempty"`
	// FrameDigest is the SHA-256 of the serialized frame (hex).
	FrameDigest string `json:"frameDigest,omitempty"`
	// CreatedAt is the embedding timestamp. Informational only.
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks that the receipt describes a usable embedding.
func (r *Receipt) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil receipt", ErrInvalidReceipt)
	}

	if r.Version != ReceiptVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidReceipt, r.Version, ReceiptVersion)
	}

	if r.BitCount <= 0 || r.BitCount%8 != 0 {
		return fmt.Errorf("%w: bitCount must be a positive multiple of 8, got %d", ErrInvalidReceipt, r.BitCount)
	}

	if _, err := wavelet.Lookup(r.Wavelet); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}

	if r.Level < 1 {
		return fmt.Errorf("%w: level must be >= 1, got %d", ErrInvalidReceipt, r.Level)
	}

	if !(r.Alpha > 0) || math.IsInf(r.Alpha, 0) {
		return fmt.Errorf("%w: alpha must be positive, got %v", ErrInvalidReceipt, r.Alpha)
	}

	if _, err := crypto.ParseScheme(r.Exchange); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}

	if _, err := fec.Parse(r.Corrector); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}

	if r.FrameDigest != "" {
		sum, err := hex.DecodeString(r.FrameDigest)
		if err != nil || len(sum) != crypto.DigestSize {
			return fmt.Errorf("%w: frameDigest must be %d hex bytes", ErrInvalidReceipt, crypto.DigestSize)
		}
	}

	return nil
}

// WriteReceiptFile writes r as indented JSON with owner-only permissions.
func WriteReceiptFile(r *Receipt, filePath string) error {
	if r == nil {
		return fmt.Errorf("%w: nil receipt", ErrInvalidReceipt)
	}

	jsonData, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err) //coverage:ignore
	}

	if err := os.WriteFile(filePath, jsonData, 0600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// ReadReceiptFile reads and validates a receipt written by WriteReceiptFile.
func ReadReceiptFile(filePath string) (*Receipt, error) {
	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var r Receipt
	if err := json.Unmarshal(jsonData, &r); err != nil {
		return nil, fmt.Errorf("%w: parse receipt: %v", ErrInvalidReceipt, err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &r, nil
}
