// Package grid holds the raster grid data model and the binary-search index
// used to map geographic coordinates onto grid rows and columns.
package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Missing is the sentinel marker for cells without data.
const Missing = -999.0

var (
	ErrDimension = errors.New("grid: dimension mismatch")
	ErrAxis      = errors.New("grid: invalid axis")
)

// DimensionError reports a values array that does not match the axes.
type DimensionError struct {
	Row       int // -1 when the row count itself is wrong
	Want, Got int
}

func (e *DimensionError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("grid: values has %d rows, lat axis has %d entries", e.Got, e.Want)
	}
	return fmt.Sprintf("grid: row %d has %d values, lon axis has %d entries", e.Row, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimension }

// AxisError reports an axis that is empty or not strictly monotonic.
type AxisError struct {
	Axis  string
	Index int
	Want  Direction
}

func (e *AxisError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("grid: %s axis is empty", e.Axis)
	}
	return fmt.Sprintf("grid: %s axis is not strictly %s at index %d", e.Axis, e.Want, e.Index)
}

func (e *AxisError) Unwrap() error { return ErrAxis }

// Grid is an immutable raster: Lat runs north to south, Lon west to east and
// Values is indexed [latIndex][lonIndex].
type Grid struct {
	Lat    []float64
	Lon    []float64
	Values [][]float64

	unique   []float64
	min, max float64
}

// New validates the axes and values and returns a Grid. The slices are
// retained, not copied; callers must not modify them afterwards.
func New(lat, lon []float64, values [][]float64) (*Grid, error) {
	if err := checkAxis("lat", lat, Descending); err != nil {
		return nil, err
	}
	if err := checkAxis("lon", lon, Ascending); err != nil {
		return nil, err
	}
	if len(values) != len(lat) {
		return nil, &DimensionError{Row: -1, Want: len(lat), Got: len(values)}
	}
	for i, row := range values {
		if len(row) != len(lon) {
			return nil, &DimensionError{Row: i, Want: len(lon), Got: len(row)}
		}
	}
	g := &Grid{Lat: lat, Lon: lon, Values: values}
	g.unique = uniqueFinite(values)
	if len(g.unique) > 0 {
		g.min, g.max = g.unique[0], g.unique[len(g.unique)-1]
	}
	return g, nil
}

func checkAxis(name string, axis []float64, dir Direction) error {
	if len(axis) == 0 {
		return &AxisError{Axis: name, Index: -1, Want: dir}
	}
	for i := 1; i < len(axis); i++ {
		ok := axis[i] > axis[i-1]
		if dir == Descending {
			ok = axis[i] < axis[i-1]
		}
		if !ok {
			return &AxisError{Axis: name, Index: i, Want: dir}
		}
	}
	return nil
}

// IsMissing reports whether v carries no data: the sentinel or NaN (JSON null
// is decoded as NaN).
func IsMissing(v float64) bool {
	return v == Missing || math.IsNaN(v)
}

func uniqueFinite(values [][]float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, row := range values {
		for _, v := range row {
			if IsMissing(v) || math.IsInf(v, 0) {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Rows returns the number of latitude rows.
func (g *Grid) Rows() int { return len(g.Lat) }

// Cols returns the number of longitude columns.
func (g *Grid) Cols() int { return len(g.Lon) }

// UniqueValues returns the sorted distinct finite values. The slice is shared.
func (g *Grid) UniqueValues() []float64 { return g.unique }

// Extent returns the smallest and largest finite value; ok is false when the
// grid holds no data at all.
func (g *Grid) Extent() (min, max float64, ok bool) {
	return g.min, g.max, len(g.unique) > 0
}

// Bounds returns the grid coverage as north, south, east, west.
func (g *Grid) Bounds() (north, south, east, west float64) {
	return g.Lat[0], g.Lat[len(g.Lat)-1], g.Lon[len(g.Lon)-1], g.Lon[0]
}

// Index returns the nearest row and column for a coordinate.
func (g *Grid) Index(lat, lon float64) (row, col int) {
	return Nearest(g.Lat, lat, Descending), Nearest(g.Lon, lon, Ascending)
}

// ValueAt returns the value of the cell nearest to a coordinate. ok is false
// when the coordinate lies outside the grid coverage or the cell is missing.
func (g *Grid) ValueAt(lat, lon float64) (v float64, ok bool) {
	north, south, east, west := g.Bounds()
	if lat > north || lat < south || lon < west || lon > east {
		return Missing, false
	}
	row, col := g.Index(lat, lon)
	v = g.Values[row][col]
	return v, !IsMissing(v)
}
