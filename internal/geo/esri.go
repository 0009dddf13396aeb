package geo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gridmap/internal/grid"
)

// esriHeader holds the Esri ASCII raster header. Exactly one of the
// center/corner pairs is set.
type esriHeader struct {
	ncols, nrows     int
	xcenter, ycenter *float64
	xcorner, ycorner *float64
	cellSize         float64
	noData           *float64
}

func (h *esriHeader) set(key, value string) error {
	if key == "NCOLS" || key == "NROWS" {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		if key == "NCOLS" {
			h.ncols = n
		} else {
			h.nrows = n
		}
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	switch key {
	case "XLLCENTER":
		h.xcenter = &f
	case "YLLCENTER":
		h.ycenter = &f
	case "XLLCORNER":
		h.xcorner = &f
	case "YLLCORNER":
		h.ycorner = &f
	case "CELLSIZE":
		if f <= 0 {
			return errors.New("CELLSIZE must be greater than 0")
		}
		h.cellSize = f
	case "NODATA_VALUE":
		h.noData = &f
	default:
		return fmt.Errorf("unknown header keyword %q", key)
	}
	return nil
}

// origin returns the center of the south-west cell.
func (h *esriHeader) origin() (x, y float64, err error) {
	switch {
	case h.ncols == 0 || h.nrows == 0 || h.cellSize == 0:
		return 0, 0, errors.New("missing NCOLS, NROWS or CELLSIZE")
	case h.xcenter != nil && h.ycenter != nil:
		return *h.xcenter, *h.ycenter, nil
	case h.xcorner != nil && h.ycorner != nil:
		return *h.xcorner + h.cellSize/2, *h.ycorner + h.cellSize/2, nil
	}
	return 0, 0, errors.New("missing lower-left center or corner")
}

// ParseEsriASCII decodes an Esri ASCII raster. Axes are placed on cell
// centers with the first data row at the north edge, and NODATA cells
// become grid.Missing.
func ParseEsriASCII(r io.Reader) (*grid.Grid, error) {
	var h esriHeader
	var values [][]float64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	header := true
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if header {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				if len(fields) != 2 {
					return nil, fmt.Errorf("header line %q must have two fields", sc.Text())
				}
				if err := h.set(strings.ToUpper(fields[0]), fields[1]); err != nil {
					return nil, err
				}
				continue
			}
			header = false
			if _, _, err := h.origin(); err != nil {
				return nil, err
			}
			values = make([][]float64, 0, h.nrows)
		}
		if len(values) == h.nrows {
			break
		}
		row, err := h.parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(values), err)
		}
		values = append(values, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if header {
		return nil, errors.New("no data rows")
	}
	if len(values) != h.nrows {
		return nil, fmt.Errorf("got %d data rows, header says %d", len(values), h.nrows)
	}

	x0, y0, _ := h.origin()
	lon := make([]float64, h.ncols)
	for j := range lon {
		lon[j] = x0 + float64(j)*h.cellSize
	}
	lat := make([]float64, h.nrows)
	for i := range lat {
		lat[i] = y0 + float64(h.nrows-1-i)*h.cellSize
	}
	return grid.New(lat, lon, values)
}

func (h *esriHeader) parseRow(fields []string) ([]float64, error) {
	if len(fields) != h.ncols {
		return nil, fmt.Errorf("%d values, want %d", len(fields), h.ncols)
	}
	row := make([]float64, h.ncols)
	for j := range row {
		f, err := strconv.ParseFloat(fields[j], 64)
		if err != nil {
			return nil, err
		}
		if h.noData != nil && f == *h.noData {
			f = grid.Missing
		}
		row[j] = f
	}
	return row, nil
}

