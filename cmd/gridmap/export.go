package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"github.com/paulmach/orb"
	"golang.org/x/image/draw"

	"gridmap/internal/canvas"
	"gridmap/internal/colorscale"
	"gridmap/internal/geo"
	"gridmap/internal/raster"
)

type exportOptions struct {
	gridPath      string
	points        []raster.Point
	out           string
	width, height int
	bounds        string
	proj          raster.ProjectionKind
	thumbs        []int
	pad           float64
	palette       colorscale.Palette
}

// export renders the grid and markers headlessly and writes the PNG plus
// any requested thumbnails.
func export(o exportOptions) error {
	if o.width <= 0 || o.height <= 0 {
		return fmt.Errorf("invalid size %dx%d", o.width, o.height)
	}
	opts := []raster.Option{
		raster.WithBackdrop(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x4d}),
		raster.WithPad(o.pad),
	}
	if o.palette != nil {
		opts = append(opts, raster.WithPalette(o.palette))
	}
	cells := raster.NewLayer(raster.CellRaster, opts...)
	markers := raster.NewLayer(raster.PointMarker).SetPoints(o.points)
	if o.gridPath != "" {
		g, err := geo.LoadGrid(o.gridPath)
		if err != nil {
			return err
		}
		cells.SetData(g)
	}

	b, err := exportBounds(o, cells)
	if err != nil {
		return err
	}
	vp := o.proj.Viewport(b, o.width, o.height)

	cellImg, markerImg := canvas.NewImage(o.width, o.height), canvas.NewImage(o.width, o.height)
	defer cellImg.Close()
	defer markerImg.Close()
	cells.Attach(cellImg)
	markers.Attach(markerImg)
	for _, l := range []*raster.Layer{cells, markers} {
		stats, err := l.Render(vp)
		if err != nil {
			return err
		}
		raster.Logger().Info("exported layer", "kind", l.Kind(), "drawn", stats.Drawn, "skipped", stats.Skipped)
	}
	if err := errors.Join(cellImg.Err(), markerImg.Err()); err != nil {
		return err
	}

	img := composite(cellImg.Image(), markerImg.Image())
	if err := savePNG(o.out, img); err != nil {
		return err
	}
	for _, size := range o.thumbs {
		thumb := resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
		if err := savePNG(thumbPath(o.out, size), thumb); err != nil {
			return err
		}
	}
	return nil
}

// exportBounds resolves the -bounds flag, falling back to the data extent.
func exportBounds(o exportOptions, cells *raster.Layer) (orb.Bound, error) {
	if o.bounds != "" {
		return parseBounds(o.bounds)
	}
	if g := cells.Grid(); g != nil {
		return raster.Bound(g.Bounds()), nil
	}
	if len(o.points) > 0 {
		mp := make(orb.MultiPoint, 0, len(o.points))
		for _, p := range o.points {
			mp = append(mp, orb.Point{p.Lon, p.Lat})
		}
		return mp.Bound().Pad(0.5), nil
	}
	return orb.Bound{}, errors.New("nothing to render: pass a grid or point file")
}

func composite(layers ...image.Image) *image.RGBA {
	dst := image.NewRGBA(layers[0].Bounds())
	for _, src := range layers {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	}
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func thumbPath(out string, size int) string {
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(out, ext), size, ext)
}

// parseBounds reads "north,south,east,west".
func parseBounds(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bounds %q: want north,south,east,west", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] <= v[1] || v[2] <= v[3] {
		return orb.Bound{}, fmt.Errorf("bounds %q: north must exceed south and east must exceed west", s)
	}
	return raster.Bound(v[0], v[1], v[2], v[3]), nil
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("thumbnail size %q must be a positive integer", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// parsePalette accepts a named palette or a comma-separated list of hex
// colors. The empty string selects the layer default.
func parsePalette(s string) (colorscale.Palette, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "spectral":
		return colorscale.Spectral, nil
	case "yellow-red", "yellowred":
		return colorscale.YellowRed, nil
	}
	return colorscale.ParsePalette(splitList(s)...)
}
