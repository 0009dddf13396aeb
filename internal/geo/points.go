package geo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"gridmap/internal/raster"
)

// magnitudeKeys are the property or column names read as a point's
// magnitude, in order of preference. Matching is case-insensitive.
var magnitudeKeys = []string{"magnitude", "mag", "generatingcapacity", "capacity", "value"}

// ParseGeoJSONPoints extracts Point and MultiPoint features from a GeoJSON
// feature collection. Other geometries are skipped. Features without a
// numeric magnitude property get magnitude 1.
func ParseGeoJSONPoints(data []byte) ([]raster.Point, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	var pts []raster.Point
	for _, f := range fc.Features {
		base := raster.Point{
			Magnitude: magnitude(f.Properties),
			ID:        featureID(f),
			Name:      stringProp(f.Properties, "name"),
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			pts = append(pts, at(base, g))
		case orb.MultiPoint:
			for _, p := range g {
				pts = append(pts, at(base, p))
			}
		}
	}
	return pts, nil
}

func at(p raster.Point, ll orb.Point) raster.Point {
	p.Lon, p.Lat = ll.Lon(), ll.Lat()
	return p
}

func magnitude(props geojson.Properties) float64 {
	for _, key := range magnitudeKeys {
		for k, v := range props {
			if strings.EqualFold(k, key) {
				if f, ok := v.(float64); ok {
					return f
				}
			}
		}
	}
	return 1
}

func stringProp(props geojson.Properties, key string) string {
	for k, v := range props {
		if strings.EqualFold(k, key) && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func featureID(f *geojson.Feature) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return stringProp(f.Properties, "id")
}

// LoadGeoJSONPoints reads point features from a GeoJSON file.
func LoadGeoJSONPoints(path string) ([]raster.Point, error) {
	var pts []raster.Point
	err := withReader(path, func(r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		pts, err = ParseGeoJSONPoints(data)
		return err
	})
	return pts, err
}

// ParseCSVPoints reads points from CSV with a header row.
// Column detection: lat|latitude|y and lon|lng|long|longitude|x, plus an
// optional magnitude column and id/name columns (case-insensitive). Rows
// with unparsable coordinates are skipped.
func ParseCSVPoints(r io.Reader) ([]raster.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}
	cols := map[string]int{"lat": -1, "lon": -1, "mag": -1, "id": -1, "name": -1}
	magRank := len(magnitudeKeys)
	for i, h := range recs[0] {
		lh := strings.ToLower(strings.TrimSpace(h))
		switch lh {
		case "lat", "latitude", "y":
			if cols["lat"] == -1 {
				cols["lat"] = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if cols["lon"] == -1 {
				cols["lon"] = i
			}
		case "id", "name":
			if cols[lh] == -1 {
				cols[lh] = i
			}
		}
		for rank, key := range magnitudeKeys {
			if lh == key && rank < magRank {
				cols["mag"], magRank = i, rank
			}
		}
	}
	if cols["lat"] == -1 || cols["lon"] == -1 {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}

	field := func(row []string, key string) string {
		if i := cols[key]; i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	var pts []raster.Point
	for _, row := range recs[1:] {
		lat, err1 := strconv.ParseFloat(field(row, "lat"), 64)
		lon, err2 := strconv.ParseFloat(field(row, "lon"), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		p := raster.Point{Lat: lat, Lon: lon, Magnitude: 1, ID: field(row, "id"), Name: field(row, "name")}
		if m, err := strconv.ParseFloat(field(row, "mag"), 64); err == nil {
			p.Magnitude = m
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return nil, errors.New("csv: no valid points parsed")
	}
	return pts, nil
}

// LoadCSVPoints reads point features from a CSV file.
func LoadCSVPoints(path string) ([]raster.Point, error) {
	var pts []raster.Point
	err := withReader(path, func(r io.Reader) (err error) {
		pts, err = ParseCSVPoints(r)
		return err
	})
	return pts, err
}

// LoadPoints reads a GeoJSON, CSV, KML or WKT point file.
func LoadPoints(path string) ([]raster.Point, error) {
	switch DetectFormat(path) {
	case FormatGeoJSON:
		return LoadGeoJSONPoints(path)
	case FormatCSV:
		return LoadCSVPoints(path)
	case FormatKML:
		return LoadKMLPoints(path)
	case FormatWKT:
		return LoadWKTPoints(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return nil, &FileError{Path: path, Err: errors.New("not a point file")}
}

// LoadPointFiles loads several point files concurrently and returns their
// points concatenated in argument order. The first error cancels the rest.
func LoadPointFiles(ctx context.Context, paths []string) ([]raster.Point, error) {
	results := make([][]raster.Point, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pts, err := LoadPoints(path)
			if err != nil {
				return err
			}
			results[i] = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []raster.Point
	for _, pts := range results {
		all = append(all, pts...)
	}
	return all, nil
}
