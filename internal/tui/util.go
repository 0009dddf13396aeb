package tui

import "math"

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

// layout is the screen geometry shared by View and mouse handling.
type layout struct {
	contentW, contentH int
	mapX, mapY         int
	mapW, mapH         int // in terminal cells
}

func (m Model) layout() layout {
	l := layout{
		contentW: max(10, m.width),
		contentH: max(4, m.height-headerHeight-footerHeight),
		mapY:     headerHeight,
	}
	sb := 0
	if m.showSidebar {
		sb = sidebarWidth + 1
	}
	l.mapX = sb
	l.mapW = max(10, l.contentW-sb)
	l.mapH = l.contentH
	return l
}

// contains reports whether screen cell (x, y) lies on the map.
func (l layout) contains(x, y int) bool {
	return x >= l.mapX && x < l.mapX+l.mapW && y >= l.mapY && y < l.mapY+l.mapH
}

// pixel converts a screen cell to the center of its upper half-block pixel
// row pair, in map pixel coordinates.
func (l layout) pixel(x, y int) (px, py float64) {
	return float64(x-l.mapX) + 0.5, float64((y-l.mapY)*2) + 1
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
