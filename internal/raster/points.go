package raster

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"gridmap/internal/grid"
)

// Point is a point feature carrying a magnitude, drawn by marker layers.
type Point struct {
	Lat, Lon  float64
	Magnitude float64
	ID        string
	Name      string

	seq int
}

// pointTolerance is the half-size of the degenerate rectangle a point
// occupies in the R-tree.
const pointTolerance = 1e-9

// Bounds implements rtreego.Spatial.
func (p *Point) Bounds() rtreego.Rect {
	return rtreego.Point{p.Lon, p.Lat}.ToRect(pointTolerance)
}

// pointIndex is an R-tree over point features for viewport queries.
type pointIndex struct {
	tree *rtreego.Rtree
	max  float64
	n    int
}

func newPointIndex(pts []Point) *pointIndex {
	owned := make([]Point, len(pts))
	copy(owned, pts)
	objs := make([]rtreego.Spatial, 0, len(owned))
	ix := &pointIndex{}
	for i := range owned {
		p := &owned[i]
		p.seq = i
		if grid.IsMissing(p.Magnitude) || math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
			continue
		}
		if p.Magnitude > ix.max {
			ix.max = p.Magnitude
		}
		objs = append(objs, p)
	}
	ix.n = len(objs)
	ix.tree = rtreego.NewTree(2, 25, 50, objs...)
	return ix
}

// within returns the points inside b in input order.
func (ix *pointIndex) within(b orb.Bound) []*Point {
	if ix.n == 0 {
		return nil
	}
	w := math.Max(b.Right()-b.Left(), pointTolerance)
	h := math.Max(b.Top()-b.Bottom(), pointTolerance)
	rect, err := rtreego.NewRect(rtreego.Point{b.Left(), b.Bottom()}, []float64{w, h})
	if err != nil {
		Logger().Warn("point query rejected", "bounds", b, "err", err)
		return nil
	}
	hits := ix.tree.SearchIntersect(rect)
	out := make([]*Point, 0, len(hits))
	for _, s := range hits {
		out = append(out, s.(*Point))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
