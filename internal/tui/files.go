package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"gridmap/internal/geo"
	"gridmap/internal/grid"
	"gridmap/internal/raster"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		p := filepath.Join(m.cwd, name)
		switch {
		case geo.IsGrid(name):
			items = append(items, fileItem{title: name, desc: "grid", path: p})
		case geo.IsPoints(name):
			items = append(items, fileItem{title: name, desc: "points", path: p})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

// loadPath loads a grid or point file into the matching layer.
func (m *Model) loadPath(p string) {
	switch {
	case geo.IsGrid(p):
		g, err := geo.LoadGrid(p)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		m.selPath = p
		m.setGrid(g)
		m.status = "loaded: " + filepath.Base(p) + "  " + gridSummary(g)
	case geo.IsPoints(p):
		pts, err := geo.LoadPoints(p)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		m.setPoints(pts)
		m.status = fmt.Sprintf("loaded: %s  points=%d", filepath.Base(p), len(pts))
	default:
		m.status = "unsupported file: " + strings.ToLower(filepath.Ext(p))
		return
	}
	if m.showAttrs {
		m.refreshAttrsFromCurrent()
	}
}

func (m *Model) setGrid(g *grid.Grid) {
	m.cells.SetData(g)
	m.showCells = true
	m.fitData()
	m.redraw()
}

func (m *Model) setPoints(pts []raster.Point) {
	m.points = pts
	m.markers.SetPoints(pts)
	m.showMarkers = true
	if m.cells.Grid() == nil {
		m.fitData()
	}
	m.redraw()
}

func gridSummary(g *grid.Grid) string {
	lo, hi, ok := g.Extent()
	if !ok {
		return fmt.Sprintf("%dx%d, no values", g.Rows(), g.Cols())
	}
	return fmt.Sprintf("%dx%d, values %.4g..%.4g", g.Rows(), g.Cols(), lo, hi)
}
