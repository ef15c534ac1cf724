package wavelet

import (
	"fmt"
	"math"
	"slices"
)

func checkAlpha(alpha float64) error {
	if !(alpha > 0) || math.IsInf(alpha, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAlpha, alpha)
	}
	return nil
}

// Embed writes bits into the finest detail band by quantization index
// modulation with step 2*alpha: a 1 moves |c| onto the odd lattice
// (k*2α + α), a 0 onto the even lattice (k*2α). The sign of c is kept.
// Any non-zero bit value is treated as 1.
//
// coeffs is not modified; the result shares all bands except the finest.
// More bits than Capacity yields a *CapacityError.
func Embed(coeffs *Coefficients, bits []byte, alpha float64) (*Coefficients, error) {
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}
	if coeffs.Levels() < 1 {
		return nil, fmt.Errorf("%w: no detail band", ErrShapeMismatch)
	}

	capacity := coeffs.Capacity()
	if len(bits) > capacity {
		return nil, &CapacityError{Capacity: capacity, Requested: len(bits)}
	}

	step := 2 * alpha
	finest := slices.Clone(coeffs.Finest())
	for i, bit := range bits {
		c := finest[i]
		sign := 1.0
		if c < 0 {
			sign = -1.0
		}
		mag := math.Abs(c)
		m := math.Mod(mag, step)

		target := 0.0
		if bit != 0 {
			target = alpha
		}
		finest[i] = sign * (mag + target - m)
	}

	return coeffs.withFinest(finest), nil
}

// Extract reads up to n bits from the finest detail band. A coefficient
// decodes as 1 when |c| mod 2α lies within [0.25, 0.75] of the step, that is
// m in [0.5α, 1.5α], within α/2 of the odd lattice. n is clamped to Capacity.
//
// Other implementations of this scheme decode 1 over the wider band
// [0.4α, 1.6α]. Bits embedded exactly on the lattice read the same under
// both, but a coefficient displaced so that m falls in [0.4α, 0.5α) or
// (1.5α, 1.6α] decodes as 0 here and as 1 there.
func Extract(coeffs *Coefficients, n int, alpha float64) ([]byte, error) {
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}

	finest := coeffs.Finest()
	n = max(0, min(n, len(finest)))

	step := 2 * alpha
	lo, hi := 0.25*step, 0.75*step
	out := make([]byte, n)
	for i := range n {
		m := math.Mod(math.Abs(finest[i]), step)
		if m >= lo && m <= hi {
			out[i] = 1
		}
	}
	return out, nil
}
