package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"gridmap/internal/geo"
	"gridmap/internal/raster"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
		}
		m.redraw()
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1":
			m.showCells = !m.showCells
			m.status = fmt.Sprintf("cells: %v", m.showCells)
			m.redraw()
		case "2":
			m.showMarkers = !m.showMarkers
			m.status = fmt.Sprintf("markers: %v", m.showMarkers)
			m.redraw()
		case "+", "=":
			m.zoom(zoomStep)
			m.redraw()
		case "-", "_":
			m.zoom(1 / zoomStep)
			m.redraw()
		case "r":
			if m.fitData() {
				m.status = "fit to data"
			} else {
				m.centerLat, m.centerLon, m.span = 0, 0, defaultSpan
				m.status = "reset view"
			}
			m.redraw()
		case "m":
			if m.proj == raster.Mercator {
				m.proj = raster.Equirectangular
			} else {
				m.proj = raster.Mercator
			}
			m.status = "projection: " + m.proj.String()
			m.redraw()
		case "c":
			m.palette = (m.palette + 1) % len(palettes)
			m.cells.SetPalette(palettes[m.palette].p)
			m.status = "palette: " + palettes[m.palette].name
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
			m.redraw()
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
			}
			m.redraw()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			if m.inspectPopup != "" {
				m.inspectPopup = ""
				break
			}
			m.inspectPopup = m.inspect(m.cells.Click(m.centerLat, m.centerLon))
			m.status = "inspect popup"
		case "esc":
			m.inspectPopup = ""
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up":
			m.pan(0, panFraction)
			m.redraw()
		case "down":
			m.pan(0, -panFraction)
			m.redraw()
		case "left":
			m.pan(-panFraction, 0)
			m.redraw()
		case "right":
			m.pan(panFraction, 0)
			m.redraw()
		}
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		doc := strings.TrimSpace(m.ta.Value())
		if doc == "" {
			m.status = "paste: empty"
			return m, nil
		}
		g, err := geo.ParseGridJSON(strings.NewReader(doc))
		if err != nil {
			m.status = "grid error: " + err.Error()
			return m, nil
		}
		m.selPath = ""
		m.pasteMode = false
		m.ta.Blur()
		m.setGrid(g)
		m.status = "rendered pasted grid  " + gridSummary(g)
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// updateMouse handles hover, click and wheel zoom over the map area.
func (m *Model) updateMouse(msg tea.MouseMsg) {
	l := m.layout()
	if !l.contains(msg.X, msg.Y) {
		m.hovering = false
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.zoom(zoomStep)
		m.redraw()
		return
	case tea.MouseButtonWheelDown:
		m.zoom(1 / zoomStep)
		m.redraw()
		return
	}
	lat, lon := m.viewport().Unproject(l.pixel(msg.X, msg.Y))
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		ev := m.cells.Click(lat, lon)
		m.status = "click: " + describe(ev)
		return
	}
	m.hovering = true
	m.hover = m.cells.Hover(lat, lon)
}

// inspect builds the popup text for a pointer query at the map center.
func (m Model) inspect(ev raster.PointerEvent) string {
	name := filepath.Base(m.selPath)
	if m.selPath == "" {
		name = "<pasted>"
	}
	meta := []string{
		fmt.Sprintf("name: %s", name),
		fmt.Sprintf("projection: %s", m.proj),
		fmt.Sprintf("center: %s", describe(ev)),
		fmt.Sprintf("points: %d", len(m.points)),
	}
	if g := m.cells.Grid(); g != nil {
		n, s, e, w := g.Bounds()
		st := m.lastStats
		meta = append(meta,
			fmt.Sprintf("grid: %s", gridSummary(g)),
			fmt.Sprintf("bounds: n=%.4f s=%.4f e=%.4f w=%.4f", n, s, e, w),
			fmt.Sprintf("window: %s", st.Window),
			fmt.Sprintf("last pass: sampled=%d drawn=%d skipped=%d", st.Sampled, st.Drawn, st.Skipped),
		)
	}
	return strings.Join(meta, "\n")
}

func describe(ev raster.PointerEvent) string {
	s := fmt.Sprintf("lat=%.5f lon=%.5f", ev.Lat, ev.Lon)
	if ev.OK {
		s += fmt.Sprintf(" value=%.6g [%d,%d]", ev.Value, ev.Row, ev.Col)
	}
	return s
}
