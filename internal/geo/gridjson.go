package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"gridmap/internal/grid"
)

// gridDoc is the JSON grid document. Null values decode to NaN. An
// uniqueValues member, if present, is ignored: the grid derives its own.
type gridDoc struct {
	Lat    []float64    `json:"lat"`
	Lon    []float64    `json:"lon"`
	Values [][]*float64 `json:"values"`
}

// ParseGridJSON decodes a grid document. Axes given in the opposite order
// (latitude ascending, longitude descending) are flipped along with the
// values.
func ParseGridJSON(r io.Reader) (*grid.Grid, error) {
	var doc gridDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	values := make([][]float64, len(doc.Values))
	for i, row := range doc.Values {
		values[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				values[i][j] = math.NaN()
				continue
			}
			values[i][j] = *v
		}
	}
	lat, lon := doc.Lat, doc.Lon
	if len(lat) > 1 && lat[0] < lat[1] {
		slices.Reverse(lat)
		slices.Reverse(values)
	}
	if len(lon) > 1 && lon[0] > lon[1] {
		slices.Reverse(lon)
		for _, row := range values {
			slices.Reverse(row)
		}
	}
	g, err := grid.New(lat, lon, values)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	return g, nil
}

// LoadGridJSON reads a grid document from a file.
func LoadGridJSON(path string) (*grid.Grid, error) {
	var g *grid.Grid
	err := withReader(path, func(r io.Reader) (err error) {
		g, err = ParseGridJSON(r)
		return err
	})
	return g, err
}
