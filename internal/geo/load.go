// Package geo loads grids and point features from files.
package geo

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gridmap/internal/grid"
)

// FileError annotates a load failure with the offending file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("geo: %s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// Format identifies a file format by extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatGridJSON
	FormatEsriASCII
	FormatGeoJSON
	FormatCSV
	FormatKML
	FormatWKT
)

// DetectFormat guesses the format from the file name, ignoring a trailing .gz.
func DetectFormat(path string) Format {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(name) {
	case ".json":
		return FormatGridJSON
	case ".asc":
		return FormatEsriASCII
	case ".geojson":
		return FormatGeoJSON
	case ".csv":
		return FormatCSV
	case ".kml":
		return FormatKML
	case ".wkt":
		return FormatWKT
	}
	return FormatUnknown
}

// IsGrid reports whether path names a grid file.
func IsGrid(path string) bool {
	f := DetectFormat(path)
	return f == FormatGridJSON || f == FormatEsriASCII
}

// IsPoints reports whether path names a point feature file.
func IsPoints(path string) bool {
	f := DetectFormat(path)
	return f == FormatGeoJSON || f == FormatCSV || f == FormatKML || f == FormatWKT
}

// LoadGrid reads a grid JSON or Esri ASCII raster, optionally gzipped.
func LoadGrid(path string) (*grid.Grid, error) {
	var parse func(io.Reader) (*grid.Grid, error)
	switch DetectFormat(path) {
	case FormatGridJSON:
		parse = ParseGridJSON
	case FormatEsriASCII:
		parse = ParseEsriASCII
	default:
		return nil, &FileError{Path: path, Err: fmt.Errorf("not a grid file")}
	}
	var g *grid.Grid
	err := withReader(path, func(r io.Reader) (err error) {
		g, err = parse(r)
		return err
	})
	return g, err
}

// withReader opens path, transparently decompressing .gz files, and hands
// the stream to fn. Errors are wrapped in a FileError.
func withReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return &FileError{Path: path, Err: err}
		}
		defer gz.Close()
		r = gz
	}
	if err := fn(r); err != nil {
		return &FileError{Path: path, Err: err}
	}
	return nil
}
