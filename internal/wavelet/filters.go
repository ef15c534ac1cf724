package wavelet

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Filter is an orthogonal wavelet filter bank.
type Filter struct {
	Name  string
	DecLo []float64
	DecHi []float64
	RecLo []float64
	RecHi []float64
}

// Len returns the number of taps.
func (f *Filter) Len() int {
	return len(f.RecLo)
}

// Daubechies reconstruction low-pass filters. db2 is computed in closed form
// at init; db3 and db4 carry enough digits to round to the nearest float64.
var (
	db3RecLo = []float64{
		0.3326705529500826159985115891390056300129233992450683597084705,
		0.8068915093110925764944936040887134905192973949948236181650920,
		0.4598775021184915700951519421476167208081101774314923066433867,
		-0.1350110200102545886963899066993744805622198452237811919756862,
		-0.08544127388202666169281916918177331153619763898808662976351748,
		0.03522629188570953660274066471551002932775838791743161039893406,
	}
	db4RecLo = []float64{
		0.2303778133088965008632911830440708500016152482483092977910968,
		0.7148465705529156470899219552739926037076084010993081758450110,
		0.6308807679298589078817163383006152202032229226771951174057473,
		-0.02798376941685985421141374718007538541198732022449175284003358,
		-0.1870348117190930840795706727890814195845441743745800912057770,
		0.03084138183556076362721936253495905017031482172003403341821219,
		0.03288301166688519973540751354924438866454194113754971259727278,
		-0.01059740178506903210488320852402722918109996490637641983484974,
	}
)

var filters = map[string]*Filter{}

func init() {
	s2 := math.Sqrt2
	s3 := math.Sqrt(3)
	d := 4 * s2

	db1 := newFilter("db1", []float64{1 / s2, 1 / s2})
	filters["db1"] = db1
	filters["haar"] = &Filter{Name: "haar", DecLo: db1.DecLo, DecHi: db1.DecHi, RecLo: db1.RecLo, RecHi: db1.RecHi}
	filters["db2"] = newFilter("db2", []float64{(1 + s3) / d, (3 + s3) / d, (3 - s3) / d, (1 - s3) / d})
	filters["db3"] = newFilter("db3", db3RecLo)
	filters["db4"] = newFilter("db4", db4RecLo)
}

// newFilter derives the quadrature mirror bank from a reconstruction low-pass.
func newFilter(name string, recLo []float64) *Filter {
	n := len(recLo)
	recHi := make([]float64, n)
	for k := range recHi {
		v := recLo[n-1-k]
		if k%2 == 1 {
			v = -v
		}
		recHi[k] = v
	}

	decLo := slices.Clone(recLo)
	slices.Reverse(decLo)
	decHi := slices.Clone(recHi)
	slices.Reverse(decHi)

	return &Filter{Name: name, DecLo: decLo, DecHi: decHi, RecLo: slices.Clone(recLo), RecHi: recHi}
}

// Lookup returns the filter bank for name. Names are case-insensitive.
func Lookup(name string) (*Filter, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWavelet, name)
	}
	return f, nil
}

// EdgeGuard returns the number of finest-band coefficients at each end that
// depend on the symmetric extension or on the truncated tail sample. Bits
// embedded there may not survive Reconstruct.
func EdgeGuard(name string) (int, error) {
	f, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return f.Len() - 1, nil
}

// Names lists the supported wavelets in a stable order.
func Names() []string {
	return []string{"haar", "db1", "db2", "db3", "db4"}
}
