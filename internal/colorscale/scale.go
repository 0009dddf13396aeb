package colorscale

import (
	"errors"
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"gridmap/internal/grid"
)

// Stop anchors a color at a domain value.
type Stop struct {
	Value float64
	Color colorful.Color
}

// Scale maps values to colors by linear interpolation between adjacent stops.
// Values outside the domain clamp to the outer colors.
type Scale struct {
	stops  []Stop
	values []float64
}

var ErrNoStops = errors.New("colorscale: scale needs at least one stop")

// New returns a scale over stops, which must be ordered by non-decreasing
// value.
func New(stops ...Stop) (*Scale, error) {
	if len(stops) == 0 {
		return nil, ErrNoStops
	}
	s := &Scale{stops: make([]Stop, len(stops)), values: make([]float64, len(stops))}
	for i, st := range stops {
		if i > 0 && st.Value < stops[i-1].Value {
			return nil, fmt.Errorf("colorscale: stop %d (%g) is below stop %d (%g)", i, st.Value, i-1, stops[i-1].Value)
		}
		s.stops[i] = st
		s.values[i] = st.Value
	}
	return s, nil
}

// Linear spreads a palette evenly over [lo, hi].
func Linear(lo, hi float64, p Palette) *Scale {
	if len(p) == 0 {
		p = YellowRed
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	stops := make([]Stop, len(p))
	for i, c := range p {
		v := lo
		if len(p) > 1 {
			v = lo + (hi-lo)*float64(i)/float64(len(p)-1)
		}
		stops[i] = Stop{Value: v, Color: c}
	}
	s, _ := New(stops...)
	return s
}

// Map returns the color for v.
func (s *Scale) Map(v float64) color.Color {
	return s.At(v)
}

// At is Map with the concrete color type.
func (s *Scale) At(v float64) colorful.Color {
	n := len(s.stops)
	i := grid.Locate(s.values, v, grid.Ascending)
	switch {
	case i <= 0:
		return s.stops[0].Color
	case i >= n:
		return s.stops[n-1].Color
	}
	// values[i-1] <= v < values[i], so the segment has positive width
	a, b := s.stops[i-1], s.stops[i]
	t := (v - a.Value) / (b.Value - a.Value)
	return a.Color.BlendRgb(b.Color, t).Clamped()
}

// Stops returns a copy of the scale's stops.
func (s *Scale) Stops() []Stop {
	out := make([]Stop, len(s.stops))
	copy(out, s.stops)
	return out
}

// Domain returns the first and last stop values.
func (s *Scale) Domain() (lo, hi float64) {
	return s.values[0], s.values[len(s.values)-1]
}
