package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gridmap/internal/grid"
	"gridmap/internal/raster"
)

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	lat := []float64{10, 5, 0, -5, -10}
	lon := []float64{-10, -5, 0, 5, 10}
	values := make([][]float64, len(lat))
	for i := range values {
		values[i] = make([]float64, len(lon))
		for j := range values[i] {
			values[i][j] = float64(i*len(lon) + j)
		}
	}
	g, err := grid.New(lat, lon, values)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func loaded(t *testing.T) Model {
	m := New()
	m.setGrid(testGrid(t))
	return send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}, key("r"))
}

func TestWindowSizeRendersFrame(t *testing.T) {
	m := loaded(t)
	if len(m.frame) != 21 {
		t.Fatalf("frame has %d lines, want 21", len(m.frame))
	}
	if m.lastStats.Drawn == 0 {
		t.Errorf("nothing drawn: %+v", m.lastStats)
	}
	if m.cells.State() != raster.Rendered {
		t.Errorf("cell layer state = %v", m.cells.State())
	}
	if v := m.View(); !strings.Contains(v, "gridmap") {
		t.Error("view lacks header")
	}
}

func TestViewportKeys(t *testing.T) {
	m := loaded(t)
	span := m.span

	m = send(t, m, key("+"))
	if !(m.span < span) {
		t.Errorf("zoom in: span %v -> %v", span, m.span)
	}
	m = send(t, m, key("-"), key("-"))
	if !(m.span > span) {
		t.Errorf("zoom out: span = %v", m.span)
	}

	lat, lon := m.centerLat, m.centerLon
	m = send(t, m, key("up"), key("left"))
	if !(m.centerLat > lat) || !(m.centerLon < lon) {
		t.Errorf("pan moved center from %v,%v to %v,%v", lat, lon, m.centerLat, m.centerLon)
	}

	m = send(t, m, key("r"))
	if m.centerLat != 0 || m.centerLon != 0 {
		t.Errorf("fit center = %v,%v", m.centerLat, m.centerLon)
	}

	m = send(t, m, key("m"))
	if m.proj != raster.Equirectangular {
		t.Errorf("projection = %v", m.proj)
	}
}

func TestLayerToggle(t *testing.T) {
	m := send(t, loaded(t), key("1"))
	if m.showCells {
		t.Fatal("cells still visible")
	}
	for _, line := range m.frame {
		if strings.TrimSpace(line) != "" {
			t.Fatalf("hidden layer still drawn: %q", line)
		}
	}
}

func TestPasteGrid(t *testing.T) {
	m := send(t, New(), tea.WindowSizeMsg{Width: 60, Height: 20}, key("p"))
	if !m.pasteMode {
		t.Fatal("not in paste mode")
	}
	m.ta.SetValue(`{"lat":[1,0],"lon":[0,1],"values":[[1,2],[3,null]]}`)
	m = send(t, m, key("enter"))
	if m.pasteMode {
		t.Errorf("still in paste mode, status %q", m.status)
	}
	if g := m.cells.Grid(); g == nil || g.Rows() != 2 {
		t.Fatalf("grid not loaded, status %q", m.status)
	}

	m = send(t, m, key("p"))
	m.ta.SetValue(`{"lat":[1,0],"lon":[0,1],"values":[[1,2]]}`)
	m = send(t, m, key("enter"))
	if !m.pasteMode || !strings.HasPrefix(m.status, "grid error") {
		t.Errorf("malformed grid: pasteMode=%v status=%q", m.pasteMode, m.status)
	}
}

func TestMouseHoverAndClick(t *testing.T) {
	m := loaded(t)
	var clicks []raster.PointerEvent
	cells, _ := m.Layers()
	cells.Clicked.Subscribe(func(ev raster.PointerEvent) { clicks = append(clicks, ev) })

	m = send(t, m, tea.MouseMsg{X: 40, Y: 11, Action: tea.MouseActionMotion})
	if !m.hovering || !m.hover.OK {
		t.Fatalf("hover = %+v", m.hover)
	}
	if m.hover.Value != 12 {
		t.Errorf("hover value = %v, want center cell 12", m.hover.Value)
	}

	m = send(t, m, tea.MouseMsg{X: 40, Y: 11, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(clicks) != 1 || !strings.HasPrefix(m.status, "click:") {
		t.Errorf("clicks = %v, status %q", clicks, m.status)
	}

	span := m.span
	m = send(t, m, tea.MouseMsg{X: 40, Y: 11, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if !(m.span < span) {
		t.Errorf("wheel did not zoom: %v -> %v", span, m.span)
	}

	m = send(t, m, tea.MouseMsg{X: 40, Y: 0, Action: tea.MouseActionMotion})
	if m.hovering {
		t.Error("hovering over the header")
	}
}

func TestLegendTable(t *testing.T) {
	m := send(t, loaded(t), key("a"))
	if !m.showAttrs {
		t.Fatalf("legend hidden, status %q", m.status)
	}
	if got, want := len(m.tbl.Rows()), len(m.cells.Scale().Stops()); got != want {
		t.Errorf("legend rows = %d, want %d", got, want)
	}

	m = send(t, m, key("c"))
	if m.palette != 1 {
		t.Errorf("palette index = %d", m.palette)
	}
}

func TestInspectAndQuit(t *testing.T) {
	m := send(t, loaded(t), key("i"))
	if !strings.Contains(m.inspectPopup, "value=12") {
		t.Errorf("popup = %q", m.inspectPopup)
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q returned no command")
	}
}

func TestWithPointsFitsMarkers(t *testing.T) {
	m := New().WithPoints([]raster.Point{
		{Lat: 40, Lon: -10, Magnitude: 1},
		{Lat: 50, Lon: 10, Magnitude: 3},
	})
	if m.centerLat != 45 || m.centerLon != 0 {
		t.Errorf("center = %v,%v", m.centerLat, m.centerLon)
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if len(m.frame) == 0 {
		t.Error("no frame")
	}
}
