package tui

import (
	"image/color"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"gridmap/internal/canvas"
	"gridmap/internal/colorscale"
	"gridmap/internal/raster"
)

const (
	defaultSpan = 360.0
	minSpan     = 1e-4
	maxSpan     = 720.0
	zoomStep    = 1.2
	panFraction = 0.1
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	// viewport state; span is the longitude extent of the map area
	centerLat float64
	centerLon float64
	span      float64
	proj      raster.ProjectionKind

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Layers and their surfaces
	cells        *raster.Layer
	markers      *raster.Layer
	cellCanvas   *canvas.Blocks
	markerCanvas *canvas.Blocks
	frameCanvas  *canvas.Blocks
	showCells    bool
	showMarkers  bool
	points       []raster.Point
	palette      int
	lastStats    raster.Stats

	// last composed frame, one string per terminal line
	frame []string
	mapW  int
	mapH  int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering bool
	hover    raster.PointerEvent

	// legend / points table
	showAttrs bool
	tbl       table.Model
}

// backdrop is drawn under the cells, white at 30% opacity.
var backdrop = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x4d}

// Half-block pixels are coarse, so cells overlap by one pixel and markers
// stay small.
const blockPad = 1

var blockMarker = raster.MarkerRenderer{MaxRadius: 6, MinRadius: 1, Color: raster.DefaultMarker.Color}

// palettes cycled with the c key.
var palettes = []struct {
	name string
	p    colorscale.Palette
}{
	{"spectral", colorscale.Spectral},
	{"yellow-red", colorscale.YellowRed},
}

func New() Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		span:        defaultSpan,
		status:      "gridmap ready",
		showCells:   true,
		showMarkers: true,
	}
	m.cwd, _ = os.Getwd()
	m.cells = raster.NewLayer(raster.CellRaster,
		raster.WithBackdrop(backdrop),
		raster.WithPalette(palettes[0].p),
		raster.WithPad(blockPad))
	m.markers = raster.NewLayer(raster.PointMarker, raster.WithRenderer(blockMarker))
	m.cellCanvas = canvas.NewBlocks(0, 0)
	m.markerCanvas = canvas.NewBlocks(0, 0)
	m.frameCanvas = canvas.NewBlocks(0, 0)
	m.cells.Attach(m.cellCanvas)
	m.markers.Attach(m.markerCanvas)
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = `Paste a grid document ({"lat": [...], "lon": [...], "values": [[...]]}). Press Enter to render; Esc to cancel.`
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a grid or point file at launch.
func NewWithPath(path string) Model {
	m := New()
	m.loadPath(path)
	return m
}

// WithPoints installs marker points, fitting the view to them when no grid
// is loaded.
func (m Model) WithPoints(pts []raster.Point) Model {
	m.setPoints(pts)
	return m
}

// WithProjection selects the map projection.
func (m Model) WithProjection(k raster.ProjectionKind) Model {
	m.proj = k
	return m
}

// Layers exposes the cell and marker layers, e.g. to subscribe to events.
func (m Model) Layers() (cells, markers *raster.Layer) {
	return m.cells, m.markers
}

func (m Model) Init() tea.Cmd { return nil }
