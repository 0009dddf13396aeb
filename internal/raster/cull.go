package raster

import (
	"fmt"
	"math"

	"gridmap/internal/grid"
)

// Window is the visible part of a grid: insertion indices of the four
// viewport edges plus the decimation stride shared by rows and columns.
type Window struct {
	North, South int // on the descending latitude axis
	West, East   int // on the ascending longitude axis
	Skip         int

	rows, cols int
}

func (w Window) String() string {
	return fmt.Sprintf("rows %d..%d cols %d..%d skip %d", w.North, w.South, w.West, w.East, w.Skip)
}

// Cull computes the visible window of g for vp.
func Cull(g *grid.Grid, vp Viewport) Window {
	w := Window{
		North: grid.Locate(g.Lat, vp.North(), grid.Descending),
		South: grid.Locate(g.Lat, vp.South(), grid.Descending),
		West:  grid.Locate(g.Lon, vp.West(), grid.Ascending),
		East:  grid.Locate(g.Lon, vp.East(), grid.Ascending),
		rows:  len(g.Lat),
		cols:  len(g.Lon),
	}
	w.Skip = SkipFactor(w.East-w.West, vp.Width)
	return w
}

// SkipFactor returns the sampling stride for span visible columns on a
// surface width pixels wide: ceil((span-1) / width * 2), at least 1. The
// number of sampled columns therefore depends on the pixel width only, never
// on the grid resolution.
func SkipFactor(span, width int) int {
	if width <= 0 {
		return 1
	}
	s := int(math.Ceil(float64(span-1) / float64(width) * 2))
	if s < 1 {
		return 1
	}
	return s
}

// Rows returns the sampled row indices, north to south.
func (w Window) Rows() []int {
	return sample(w.North, w.South, w.Skip, w.rows)
}

// Cols returns the sampled column indices, west to east.
func (w Window) Cols() []int {
	return sample(w.West, w.East, w.Skip, w.cols)
}

// sample steps from one index before from up to (excluding) to, clamping
// each index into [0, n-1]. Starting one early keeps the edge cell visible
// while panning.
func sample(from, to, step, n int) []int {
	if n == 0 || step < 1 {
		return nil
	}
	var out []int
	for i := from - 1; i < to; i += step {
		idx := clamp(i, 0, n-1)
		if len(out) > 0 && out[len(out)-1] == idx {
			continue
		}
		out = append(out, idx)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
