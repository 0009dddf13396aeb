// Package colorscale builds piecewise-linear color scales and equalizes them
// against skewed value distributions.
package colorscale

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of colors evenly spaced on [0, 1].
type Palette []colorful.Color

// Spectral is the 11-step diverging ColorBrewer palette, low to high.
var Spectral = MustPalette(
	"#5e4fa2", "#3288bd", "#66c2a5", "#abdda4", "#e6f598", "#ffffbf",
	"#fee08b", "#fdae61", "#f46d43", "#d53e4f", "#9e0142",
)

// YellowRed is the two-color ramp used before any data is equalized.
var YellowRed = MustPalette("#ffff00", "#ff0000")

// ParsePalette parses hex colors ("#rrggbb" or "#rgb").
func ParsePalette(hexes ...string) (Palette, error) {
	p := make(Palette, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colorscale: palette color %q: %w", h, err)
		}
		p = append(p, c)
	}
	return p, nil
}

// MustPalette is like ParsePalette but panics on malformed input.
func MustPalette(hexes ...string) Palette {
	p, err := ParsePalette(hexes...)
	if err != nil {
		panic(err)
	}
	return p
}

// At returns the gradient color at position t in [0, 1], blending the two
// neighbouring palette entries in RGB.
func (p Palette) At(t float64) colorful.Color {
	switch len(p) {
	case 0:
		return colorful.Color{}
	case 1:
		return p[0]
	}
	n := t * float64(len(p)-1)
	ip, fr := math.Modf(n)
	i := int(ip)
	if i < 0 || n < 0 {
		return p[0]
	}
	if i >= len(p)-1 {
		return p[len(p)-1]
	}
	return p[i].BlendRgb(p[i+1], fr).Clamped()
}
