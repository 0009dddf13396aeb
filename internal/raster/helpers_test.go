package raster

import (
	"image/color"
	"testing"

	"gridmap/internal/grid"
)

type op struct {
	Kind       string
	X, Y, W, H float64
	Color      color.Color
}

// recorder is a Canvas that remembers draw calls since the last Clear.
type recorder struct {
	width, height int
	clears        int
	ops           []op
}

func (r *recorder) Resize(w, h int) { r.width, r.height = w, h }
func (r *recorder) Clear()          { r.clears++; r.ops = nil }

func (r *recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.ops = append(r.ops, op{Kind: "rect", X: x, Y: y, W: w, H: h, Color: c})
}

func (r *recorder) FillCircle(x, y, radius float64, c color.Color) {
	r.ops = append(r.ops, op{Kind: "circle", X: x, Y: y, W: radius, H: radius, Color: c})
}

// fiveByFive is the 5×5 grid from lat 10..-10 and lon -10..10 in steps of 5.
func fiveByFive(t *testing.T, values [][]float64) *grid.Grid {
	t.Helper()
	if values == nil {
		values = make([][]float64, 5)
		for i := range values {
			values[i] = make([]float64, 5)
			for j := range values[i] {
				values[i][j] = float64(i*5 + j)
			}
		}
	}
	g, err := grid.New(
		[]float64{10, 5, 0, -5, -10},
		[]float64{-10, -5, 0, 5, 10},
		values,
	)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func wideGrid(t *testing.T, cols int) *grid.Grid {
	t.Helper()
	lon := make([]float64, cols)
	step := 360.0 / float64(cols)
	for i := range lon {
		lon[i] = -180 + float64(i)*step
	}
	lat := []float64{1, 0, -1}
	values := make([][]float64, len(lat))
	for i := range values {
		values[i] = make([]float64, cols)
	}
	g, err := grid.New(lat, lon, values)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}
