package wavelet

import (
	"fmt"
	"slices"
)

// Coefficients is a multilevel decomposition of one channel, ordered
// [cA_n, cD_n, ..., cD_1].
type Coefficients struct {
	// Wavelet is the filter bank the bands were produced with.
	Wavelet string
	// Bands holds the approximation followed by detail bands, coarsest first.
	Bands [][]float64
}

// Approximation returns the coarsest approximation band.
func (c *Coefficients) Approximation() []float64 {
	if c == nil || len(c.Bands) == 0 {
		return nil
	}
	return c.Bands[0]
}

// Finest returns the finest detail band, the embedding target.
func (c *Coefficients) Finest() []float64 {
	if c == nil || len(c.Bands) < 2 {
		return nil
	}
	return c.Bands[len(c.Bands)-1]
}

// Capacity is the number of bits the finest detail band can carry.
func (c *Coefficients) Capacity() int {
	return len(c.Finest())
}

// Levels returns the decomposition depth.
func (c *Coefficients) Levels() int {
	if c == nil || len(c.Bands) == 0 {
		return 0
	}
	return len(c.Bands) - 1
}

// withFinest returns a copy of c sharing every band except the finest, which
// is replaced by finest.
func (c *Coefficients) withFinest(finest []float64) *Coefficients {
	bands := slices.Clone(c.Bands)
	bands[len(bands)-1] = finest
	return &Coefficients{Wavelet: c.Wavelet, Bands: bands}
}

// Decompose runs a multilevel DWT over the first channel of samples, which is
// indexed [frame][channel].
func Decompose(samples [][]float64, wavelet string, level int) (*Coefficients, error) {
	f, err := Lookup(wavelet)
	if err != nil {
		return nil, err
	}

	signal, err := firstChannel(samples)
	if err != nil {
		return nil, err
	}

	bands, err := Wavedec(signal, f, level)
	if err != nil {
		return nil, err
	}
	return &Coefficients{Wavelet: f.Name, Bands: bands}, nil
}

// Reconstruct inverts coeffs into a new sample array shaped like original.
// Channel 0 carries the reconstructed signal; other channels are copied from
// original. The result has min(len(reconstructed), len(original)) frames.
func Reconstruct(coeffs *Coefficients, original [][]float64) ([][]float64, error) {
	if coeffs == nil {
		return nil, fmt.Errorf("%w: nil coefficients", ErrShapeMismatch)
	}

	f, err := Lookup(coeffs.Wavelet)
	if err != nil {
		return nil, err
	}

	if _, err := firstChannel(original); err != nil {
		return nil, err
	}

	rec, err := Waverec(coeffs.Bands, f)
	if err != nil {
		return nil, err
	}

	n := min(len(rec), len(original))
	out := make([][]float64, n)
	for i := range n {
		frame := slices.Clone(original[i])
		frame[0] = rec[i]
		out[i] = frame
	}
	return out, nil
}

func firstChannel(samples [][]float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrShapeMismatch)
	}

	signal := make([]float64, len(samples))
	for i, frame := range samples {
		if len(frame) == 0 {
			return nil, fmt.Errorf("%w: frame %d has no channels", ErrShapeMismatch, i)
		}
		signal[i] = frame[0]
	}
	return signal, nil
}
