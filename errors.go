package kriptografi

import (
	"errors"
	"fmt"

	"github.com/Alfariz11/Kriptografi/internal/bits"
	"github.com/Alfariz11/Kriptografi/internal/crypto"
	"github.com/Alfariz11/Kriptografi/internal/fec"
	"github.com/Alfariz11/Kriptografi/internal/wavelet"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyMismatch is returned when the session key cannot be unwrapped with
	// the supplied private key.
	ErrKeyMismatch = crypto.ErrKeyMismatch

	// ErrLayerMismatch is returned when the exchange layer cannot be removed.
	ErrLayerMismatch = crypto.ErrLayerMismatch

	// ErrCorruptedPayload is returned when the ciphertext fails its integrity
	// tag or padding check after a successful unwrap.
	ErrCorruptedPayload = crypto.ErrCorruptedPayload

	// ErrKeyParse is returned when key text cannot be parsed.
	ErrKeyParse = crypto.ErrKeyParse

	// ErrInvalidFrame is returned when the extracted bytes are not a frame.
	ErrInvalidFrame = crypto.ErrInvalidFrame

	// ErrUnsupportedScheme is returned for an unknown exchange scheme.
	ErrUnsupportedScheme = crypto.ErrUnsupportedScheme

	// ErrCapacityExceeded is returned when the carrier cannot hold the payload.
	ErrCapacityExceeded = wavelet.ErrCapacityExceeded

	// ErrShapeMismatch is returned for audio or coefficients of unusable shape.
	ErrShapeMismatch = wavelet.ErrShapeMismatch

	// ErrUnknownWavelet is returned for an unsupported wavelet name.
	ErrUnknownWavelet = wavelet.ErrUnknownWavelet

	// ErrInvalidAlpha is returned for a non-positive embedding strength.
	ErrInvalidAlpha = wavelet.ErrInvalidAlpha

	// ErrInvalidBit is returned when a bit string holds something other than 0 or 1.
	ErrInvalidBit = bits.ErrInvalidBit

	// ErrUnknownCorrector is returned for an unrecognised error-correction name.
	ErrUnknownCorrector = fec.ErrUnknownCorrector

	// ErrFraming is returned when the length header or block layout read back
	// from the carrier is inconsistent.
	ErrFraming = errors.New("framing error")

	// ErrInvalidReceipt is returned when a receipt fails validation.
	ErrInvalidReceipt = errors.New("invalid receipt")

	// ErrInvalidConfig is returned when options or environment settings are invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// KriptografiError is implemented by all errors returned from the pipeline.
type KriptografiError interface {
	error
	KriptografiError() // marker method
}

// Stage names the pipeline step that failed.
type Stage string

const (
	// StageCrypto covers sealing, opening and key handling.
	StageCrypto Stage = "crypto"
	// StageFraming covers the length header, error correction and frame decoding.
	StageFraming Stage = "framing"
	// StageCodec covers wavelet decomposition, extraction and reconstruction.
	StageCodec Stage = "codec"
	// StageCapacity is reported when the payload does not fit the carrier.
	StageCapacity Stage = "capacity"
)

// StageError reports which pipeline stage failed. The underlying error stays
// reachable through errors.Is and errors.As.
type StageError struct {
	Op    string // "embed" or "extract"
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed at %s stage: %v", e.Op, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// KriptografiError implements the KriptografiError interface.
func (e *StageError) KriptografiError() {}

// CapacityError reports how many bits the carrier can hold. It matches
// ErrCapacityExceeded.
type CapacityError = wavelet.CapacityError

// stageErr wraps err for op at stage. A nil err stays nil.
func stageErr(op string, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Op: op, Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, or "" when err did not come
// from the pipeline.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
