package geo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"gridmap/internal/raster"
)

// ParseWKTPoints reads one WKT geometry per line and keeps the vertices of
// POINT and MULTIPOINT geometries, each with magnitude 1. Blank lines are
// skipped.
func ParseWKTPoints(r io.Reader) ([]raster.Point, error) {
	var pts []raster.Point
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		g, err := wkt.Unmarshal(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		switch g := g.(type) {
		case orb.Point:
			pts = append(pts, at(raster.Point{Magnitude: 1}, g))
		case orb.MultiPoint:
			for _, p := range g {
				pts = append(pts, at(raster.Point{Magnitude: 1}, p))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, errors.New("wkt: no points found")
	}
	return pts, nil
}

// LoadWKTPoints reads point geometries from a WKT file.
func LoadWKTPoints(path string) ([]raster.Point, error) {
	var pts []raster.Point
	err := withReader(path, func(r io.Reader) (err error) {
		pts, err = ParseWKTPoints(r)
		return err
	})
	return pts, err
}
