package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxLatitude is the latitude limit of the web mercator projection.
const MaxLatitude = 85.05112878

// Projection converts between geographic and pixel coordinates. Pixel (0, 0)
// is the top-left corner of the viewport.
type Projection interface {
	Project(lat, lon float64) (x, y float64)
	Unproject(x, y float64) (lat, lon float64)
}

// Viewport is a snapshot of the visible map: a geographic bounding box, the
// pixel size of the drawing surface and the projection between the two.
type Viewport struct {
	Bounds        orb.Bound // Min is (west, south), Max is (east, north)
	Width, Height int
	Projection    Projection
}

func (v Viewport) North() float64 { return v.Bounds.Top() }
func (v Viewport) South() float64 { return v.Bounds.Bottom() }
func (v Viewport) East() float64  { return v.Bounds.Right() }
func (v Viewport) West() float64  { return v.Bounds.Left() }

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0 || v.Projection == nil
}

// Project maps a coordinate to pixel space.
func (v Viewport) Project(lat, lon float64) (x, y float64) {
	return v.Projection.Project(lat, lon)
}

// Unproject maps a pixel to a coordinate.
func (v Viewport) Unproject(x, y float64) (lat, lon float64) {
	return v.Projection.Unproject(x, y)
}

// Bound builds an orb.Bound from edge coordinates.
func Bound(north, south, east, west float64) orb.Bound {
	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}
}

type equirect struct {
	west, north float64
	sx, sy      float64
}

// NewEquirectangular returns a viewport with a linear (plate carrée)
// projection of bounds onto width × height pixels.
func NewEquirectangular(bounds orb.Bound, width, height int) Viewport {
	p := &equirect{west: bounds.Left(), north: bounds.Top()}
	if dx := bounds.Right() - bounds.Left(); dx > 0 {
		p.sx = float64(width) / dx
	}
	if dy := bounds.Top() - bounds.Bottom(); dy > 0 {
		p.sy = float64(height) / dy
	}
	return Viewport{Bounds: bounds, Width: width, Height: height, Projection: p}
}

func (p *equirect) Project(lat, lon float64) (float64, float64) {
	return (lon - p.west) * p.sx, (p.north - lat) * p.sy
}

func (p *equirect) Unproject(x, y float64) (float64, float64) {
	var lat, lon float64
	if p.sx != 0 {
		lon = p.west + x/p.sx
	}
	if p.sy != 0 {
		lat = p.north - y/p.sy
	}
	return lat, lon
}

type mercator struct {
	west, top float64 // west in degrees, top in mercator meters
	sx, sy    float64 // pixels per degree, pixels per meter
}

// NewMercator returns a viewport with a spherical web mercator projection of
// bounds onto width × height pixels. Pixel spacing in y is not uniform in
// latitude.
func NewMercator(bounds orb.Bound, width, height int) Viewport {
	bounds.Min[1] = clampLat(bounds.Min[1])
	bounds.Max[1] = clampLat(bounds.Max[1])
	top := project.WGS84.ToMercator(orb.Point{0, bounds.Top()})[1]
	bottom := project.WGS84.ToMercator(orb.Point{0, bounds.Bottom()})[1]
	p := &mercator{west: bounds.Left(), top: top}
	if dx := bounds.Right() - bounds.Left(); dx > 0 {
		p.sx = float64(width) / dx
	}
	if dy := top - bottom; dy > 0 {
		p.sy = float64(height) / dy
	}
	return Viewport{Bounds: bounds, Width: width, Height: height, Projection: p}
}

func (p *mercator) Project(lat, lon float64) (float64, float64) {
	m := project.WGS84.ToMercator(orb.Point{lon, clampLat(lat)})
	return (lon - p.west) * p.sx, (p.top - m[1]) * p.sy
}

func (p *mercator) Unproject(x, y float64) (float64, float64) {
	var lon, my float64
	if p.sx != 0 {
		lon = p.west + x/p.sx
	}
	my = p.top
	if p.sy != 0 {
		my = p.top - y/p.sy
	}
	ll := project.Mercator.ToWGS84(orb.Point{0, my})
	return ll[1], lon
}

// MercatorAround returns a mercator viewport centered on (lat, lon) that spans
// lonSpan degrees across width pixels, with square pixels.
func MercatorAround(lat, lon, lonSpan float64, width, height int) Viewport {
	if width <= 0 || height <= 0 || lonSpan <= 0 {
		return NewMercator(Bound(lat, lat, lon, lon), width, height)
	}
	c := project.WGS84.ToMercator(orb.Point{lon, clampLat(lat)})
	metersPerDegree := project.WGS84.ToMercator(orb.Point{1, 0})[0]
	half := lonSpan * metersPerDegree / float64(width) * float64(height) / 2
	north := project.Mercator.ToWGS84(orb.Point{0, c[1] + half})[1]
	south := project.Mercator.ToWGS84(orb.Point{0, c[1] - half})[1]
	return NewMercator(Bound(north, south, lon+lonSpan/2, lon-lonSpan/2), width, height)
}

// EquirectangularAround is MercatorAround for the linear projection.
func EquirectangularAround(lat, lon, lonSpan float64, width, height int) Viewport {
	latSpan := 0.0
	if width > 0 {
		latSpan = lonSpan * float64(height) / float64(width)
	}
	return NewEquirectangular(Bound(lat+latSpan/2, lat-latSpan/2, lon+lonSpan/2, lon-lonSpan/2), width, height)
}

func clampLat(lat float64) float64 {
	return math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
}

// ProjectionKind names one of the built-in projections.
type ProjectionKind int

const (
	Mercator ProjectionKind = iota
	Equirectangular
)

func (k ProjectionKind) String() string {
	if k == Equirectangular {
		return "equirect"
	}
	return "mercator"
}

// ParseProjectionKind accepts "mercator" and "equirect".
func ParseProjectionKind(s string) (ProjectionKind, error) {
	switch strings.ToLower(s) {
	case "mercator", "webmercator":
		return Mercator, nil
	case "equirect", "equirectangular", "platecarree":
		return Equirectangular, nil
	}
	return Mercator, fmt.Errorf("raster: unknown projection %q", s)
}

// Viewport projects bounds onto width × height pixels.
func (k ProjectionKind) Viewport(bounds orb.Bound, width, height int) Viewport {
	if k == Equirectangular {
		return NewEquirectangular(bounds, width, height)
	}
	return NewMercator(bounds, width, height)
}

// Around returns a viewport centered on (lat, lon) spanning lonSpan degrees.
func (k ProjectionKind) Around(lat, lon, lonSpan float64, width, height int) Viewport {
	if k == Equirectangular {
		return EquirectangularAround(lat, lon, lonSpan, width, height)
	}
	return MercatorAround(lat, lon, lonSpan, width, height)
}
