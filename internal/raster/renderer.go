package raster

import (
	"image/color"

	"gridmap/internal/colorscale"
)

// Canvas is the drawing surface a layer renders onto.
type Canvas interface {
	// Resize sets the backing buffer to width × height pixels.
	Resize(width, height int)
	Clear()
	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(x, y, r float64, c color.Color)
}

// CellInfo describes one draw call. It only lives for the duration of a
// render pass.
type CellInfo struct {
	X, Y          float64 // pixel center
	Width, Height float64
	Value         float64

	Row, Col           int // position among the sampled rows and columns
	LatIndex, LonIndex int // clamped source indices
	Lat, Lon           float64

	Scale *colorscale.Scale

	// Marker variant only.
	Point        *Point
	MaxMagnitude float64
}

// Renderer draws a single cell or marker.
type Renderer interface {
	Render(c Canvas, info CellInfo)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(c Canvas, info CellInfo)

func (f RendererFunc) Render(c Canvas, info CellInfo) { f(c, info) }

// Kind selects what a layer iterates over.
type Kind int

const (
	// CellRaster draws grid cells.
	CellRaster Kind = iota
	// PointMarker draws point features.
	PointMarker
)

func (k Kind) String() string {
	switch k {
	case CellRaster:
		return "cell-raster"
	case PointMarker:
		return "point-marker"
	}
	return "unknown"
}

// RectRenderer fills a rectangle centered on the cell with the scale color.
type RectRenderer struct{}

func (RectRenderer) Render(c Canvas, info CellInfo) {
	if info.Scale == nil {
		return
	}
	c.FillRect(info.X-info.Width/2, info.Y-info.Height/2, info.Width, info.Height, info.Scale.Map(info.Value))
}

// MarkerRenderer fills a circle whose radius grows linearly with the point's
// magnitude relative to the largest magnitude in the dataset.
type MarkerRenderer struct {
	MaxRadius float64
	MinRadius float64
	Color     color.Color
}

// DefaultMarker is a translucent green marker, 2 to 32 pixels in radius.
var DefaultMarker = MarkerRenderer{
	MaxRadius: 30,
	MinRadius: 2,
	Color:     color.NRGBA{R: 0x0f, G: 0xa2, B: 0x0b, A: 178},
}

func (m MarkerRenderer) Render(c Canvas, info CellInfo) {
	r := m.MinRadius
	if info.MaxMagnitude > 0 {
		r += info.Value / info.MaxMagnitude * m.MaxRadius
	}
	col := m.Color
	if col == nil {
		col = DefaultMarker.Color
	}
	c.FillCircle(info.X, info.Y, r, col)
}
