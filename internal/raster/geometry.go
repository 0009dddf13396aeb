package raster

import (
	"math"

	"gridmap/internal/grid"
)

// DefaultPad is added to every cell extent so neighbouring cells overlap
// instead of leaving sub-pixel seams.
const DefaultPad = 2.0

// cellGeometry projects sampled grid points and infers cell extents from the
// distance to the next sampled point, so cells follow the projection even
// where it is nonlinear.
type cellGeometry struct {
	vp   Viewport
	g    *grid.Grid
	skip int
	pad  float64
}

// span returns the pair of indices whose projected distance sizes the cell at
// i: i and the next sample one stride on, or, where that would run past the
// last index, the previous stride ending at i.
func (c cellGeometry) span(i, n int) (a, b int) {
	switch {
	case i+c.skip <= n-1:
		return i, i + c.skip
	case i-c.skip >= 0:
		return i - c.skip, i
	}
	return 0, n - 1
}

// rowHeight is the pixel height of row latIdx, measured along column lonIdx.
func (c cellGeometry) rowHeight(latIdx, lonIdx int) float64 {
	lon := c.g.Lon[lonIdx]
	a, b := c.span(latIdx, len(c.g.Lat))
	_, y0 := c.vp.Project(c.g.Lat[a], lon)
	_, y1 := c.vp.Project(c.g.Lat[b], lon)
	return math.Ceil(extent(y0, y1, c.pad))
}

// cell returns the pixel center and width of a grid point.
func (c cellGeometry) cell(latIdx, lonIdx int) (x, y, w float64) {
	lat := c.g.Lat[latIdx]
	x, y = c.vp.Project(lat, c.g.Lon[lonIdx])
	a, b := c.span(lonIdx, len(c.g.Lon))
	x0, _ := c.vp.Project(lat, c.g.Lon[a])
	x1, _ := c.vp.Project(lat, c.g.Lon[b])
	return x, y, extent(x0, x1, c.pad)
}

// extent is the padded distance between a and b, never less than one pixel
// before padding.
func extent(a, b, pad float64) float64 {
	return math.Max(math.Abs(b-a), 1) + pad
}
