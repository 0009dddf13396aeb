package colorscale

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Quantiles returns the k-1 breakpoints that split sorted into k buckets of
// roughly equal count. sorted must be ascending and non-empty.
func Quantiles(sorted []float64, k int) []float64 {
	if k < 2 || len(sorted) == 0 {
		return nil
	}
	qs := make([]float64, k-1)
	for i := range qs {
		p := float64(i+1) / float64(k)
		qs[i] = stat.Quantile(p, stat.LinInterp, sorted, nil)
	}
	return qs
}

// Equalize builds a scale whose stops sit at the minimum, the k-1 equal-count
// quantiles and the maximum of values, k being the palette size. Stop i gets
// the palette color at i/k, so each bucket covers an equal share of the
// palette no matter how skewed the data is.
//
// Non-finite values are ignored. Without any finite value the result maps
// everything to a single color.
func Equalize(values []float64, p Palette) *Scale {
	if len(p) == 0 {
		p = Spectral
	}
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		s, _ := New(Stop{Value: 0, Color: p.At(0.5)})
		return s
	}
	if !sort.Float64sAreSorted(sorted) {
		sort.Float64s(sorted)
	}
	k := len(p)
	if k < 2 {
		s, _ := New(Stop{Value: sorted[0], Color: p[0]})
		return s
	}

	domain := make([]float64, 0, k+1)
	domain = append(domain, sorted[0])
	domain = append(domain, Quantiles(sorted, k)...)
	domain = append(domain, sorted[len(sorted)-1])

	stops := make([]Stop, len(domain))
	for i, v := range domain {
		stops[i] = Stop{Value: v, Color: p.At(float64(i) / float64(k))}
	}
	s, _ := New(stops...)
	return s
}
