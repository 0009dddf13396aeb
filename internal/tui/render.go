package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"

	"gridmap/internal/raster"
)

// viewport is the current map view in half-block pixels: one pixel per
// column and two per line, which keeps pixels roughly square.
func (m Model) viewport() raster.Viewport {
	l := m.layout()
	return m.proj.Around(m.centerLat, m.centerLon, m.span, l.mapW, l.mapH*2)
}

// redraw renders the visible layers and composes the cached frame. It runs
// on every change of viewport, data or layer visibility.
func (m *Model) redraw() {
	if m.width == 0 || m.height == 0 {
		return
	}
	l := m.layout()
	m.mapW, m.mapH = l.mapW, l.mapH
	vp := m.viewport()

	m.frameCanvas.Resize(vp.Width, vp.Height)
	m.frameCanvas.Clear()
	if m.showCells {
		stats, err := m.cells.ViewportChanged(vp)
		if err != nil {
			m.status = "render error: " + err.Error()
			return
		}
		m.lastStats = stats
		m.frameCanvas.Composite(m.cellCanvas)
	}
	if m.showMarkers {
		if _, err := m.markers.ViewportChanged(vp); err != nil {
			m.status = "render error: " + err.Error()
			return
		}
		m.frameCanvas.Composite(m.markerCanvas)
	}
	m.frame = m.frameCanvas.Lines()
}

// fit centers the view on b and zooms so all of it is visible.
func (m *Model) fit(b orb.Bound) {
	l := m.layout()
	c := b.Center()
	m.centerLon, m.centerLat = c.Lon(), clampf(c.Lat(), -raster.MaxLatitude, raster.MaxLatitude)
	span := b.Right() - b.Left()
	if h := b.Top() - b.Bottom(); l.mapH > 0 {
		span = math.Max(span, h*float64(l.mapW)/float64(l.mapH*2))
	}
	m.span = clampf(span*1.05, minSpan, maxSpan)
	if span == 0 {
		m.span = 1
	}
}

// fitData fits the grid if there is one, the markers otherwise.
func (m *Model) fitData() bool {
	if g := m.cells.Grid(); g != nil {
		n, s, e, w := g.Bounds()
		m.fit(raster.Bound(n, s, e, w))
		return true
	}
	if len(m.points) > 0 {
		mp := make(orb.MultiPoint, 0, len(m.points))
		for _, p := range m.points {
			mp = append(mp, orb.Point{p.Lon, p.Lat})
		}
		m.fit(mp.Bound())
		return true
	}
	return false
}

func (m *Model) zoom(factor float64) {
	m.span = clampf(m.span/factor, minSpan, maxSpan)
	m.status = fmt.Sprintf("span: %.4g°", m.span)
}

// pan moves the center by a fraction of the visible extent.
func (m *Model) pan(dx, dy float64) {
	vp := m.viewport()
	m.centerLon += dx * (vp.East() - vp.West())
	m.centerLat = clampf(m.centerLat+dy*(vp.North()-vp.South()), -raster.MaxLatitude, raster.MaxLatitude)
}

func (m Model) renderMap() string {
	if m.cells.Grid() == nil && len(m.points) == 0 {
		return dimStyle.Render("no data: Tab to open a file, p to paste a grid")
	}
	return strings.Join(m.frame, "\n")
}
