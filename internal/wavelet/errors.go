package wavelet

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownWavelet is returned for a wavelet name outside the supported family.
	ErrUnknownWavelet = errors.New("unknown wavelet")

	// ErrShapeMismatch is returned when a signal or coefficient set cannot be
	// decomposed or reconstructed with the requested shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrCapacityExceeded is returned when more bits are requested than the
	// finest detail band can hold.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidAlpha is returned for a non-positive or non-finite QIM step.
	ErrInvalidAlpha = errors.New("invalid alpha")
)

// CapacityError reports the number of bits the carrier can hold.
type CapacityError struct {
	Capacity  int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d bits requested, carrier holds %d", e.Requested, e.Capacity)
}

// Is implements errors.Is for sentinel comparison.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
