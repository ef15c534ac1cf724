package wavelet

import "fmt"

// symIndex maps an out-of-range index into [0, n) by half-sample symmetric
// reflection: x[-1] = x[0], x[n] = x[n-1].
func symIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		} else {
			i = 2*n - 1 - i
		}
	}
	return i
}

// dwt performs a single-level decomposition with symmetric extension. Both
// outputs have length floor((len(x)+F-1)/2).
func dwt(x []float64, f *Filter) (approx, detail []float64) {
	n := len(x)
	taps := f.Len()
	out := (n + taps - 1) / 2

	approx = make([]float64, out)
	detail = make([]float64, out)
	for o := range out {
		var a, d float64
		base := 2*o + 1
		for j := range taps {
			v := x[symIndex(base-j, n)]
			a += f.DecLo[j] * v
			d += f.DecHi[j] * v
		}
		approx[o], detail[o] = a, d
	}
	return approx, detail
}

// idwt inverts dwt. approx and detail must have the same length N; the
// result has length 2N-F+2.
func idwt(approx, detail []float64, f *Filter) []float64 {
	n := len(approx)
	taps := f.Len()
	size := 2*n - taps + 2
	if size <= 0 {
		return nil
	}

	y := make([]float64, size)
	for k := range size {
		pos := k + taps - 2
		var sum float64
		// pos-2i must fall inside [0, taps).
		lo := (pos - taps + 2) / 2
		if lo < 0 {
			lo = 0
		}
		hi := pos / 2
		if hi > n-1 {
			hi = n - 1
		}
		for i := lo; i <= hi; i++ {
			j := pos - 2*i
			if j < 0 || j >= taps {
				continue
			}
			sum += approx[i]*f.RecLo[j] + detail[i]*f.RecHi[j]
		}
		y[k] = sum
	}
	return y
}

// MaxLevel returns the deepest useful decomposition level for a signal of n
// samples: the largest L with (F-1)*2^L <= n. It returns 0 when no level fits.
func MaxLevel(n int, f *Filter) int {
	width := f.Len() - 1
	if n <= 0 || width <= 0 {
		return 0
	}
	level := 0
	for width<<(level+1) <= n {
		level++
	}
	return level
}

// Wavedec performs a multilevel decomposition and returns
// [cA_level, cD_level, ..., cD_1].
func Wavedec(signal []float64, f *Filter, level int) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrShapeMismatch)
	}
	if maxLevel := MaxLevel(len(signal), f); level < 1 || level > maxLevel {
		return nil, fmt.Errorf("%w: level %d outside [1, %d] for %d samples with %s",
			ErrShapeMismatch, level, maxLevel, len(signal), f.Name)
	}

	bands := make([][]float64, level+1)
	approx := signal
	for l := level; l >= 1; l-- {
		var detail []float64
		approx, detail = dwt(approx, f)
		bands[l] = detail
	}
	bands[0] = approx
	return bands, nil
}

// Waverec reconstructs a signal from Wavedec output. At each level an
// approximation one sample longer than its detail band is trimmed; any other
// length difference is a shape mismatch.
func Waverec(bands [][]float64, f *Filter) ([]float64, error) {
	if len(bands) < 2 {
		return nil, fmt.Errorf("%w: need at least one detail band, have %d bands", ErrShapeMismatch, len(bands))
	}

	approx := bands[0]
	for l, detail := range bands[1:] {
		if len(approx) == len(detail)+1 {
			approx = approx[:len(detail)]
		}
		if len(approx) != len(detail) || len(detail) == 0 {
			return nil, fmt.Errorf("%w: band %d has %d coefficients, approximation has %d",
				ErrShapeMismatch, l+1, len(detail), len(approx))
		}
		approx = idwt(approx, detail, f)
	}
	return approx, nil
}
