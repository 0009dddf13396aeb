// Package raster renders grids and point features onto a map viewport.
//
// A Layer holds the current data, color scale and renderer. Every call to
// Render is a full redraw: the visible window is recomputed from the viewport
// snapshot, the grid is sampled at a stride bounded by the pixel width, and
// each surviving cell is handed to the renderer. Nothing carries over between
// passes, so a new viewport simply overwrites the previous output.
package raster

import (
	"errors"
	"image/color"
	"sync"

	"gridmap/internal/colorscale"
	"gridmap/internal/grid"
)

// State is the lifecycle state of a Layer.
type State int

const (
	// Uninitialized layers have no canvas.
	Uninitialized State = iota
	// Attached layers have a canvas but have not drawn the current data yet.
	Attached
	// Rendered layers have completed a render pass.
	Rendered
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Attached:
		return "attached"
	case Rendered:
		return "rendered"
	}
	return "unknown"
}

var ErrNotAttached = errors.New("raster: layer has no canvas")

// Stats summarizes a render pass.
type Stats struct {
	Window  Window
	Sampled int // cells or points visited
	Drawn   int // renderer calls
	Skipped int // missing values filtered out
}

// Option configures a Layer.
type Option func(*Layer)

// WithPad sets the padding added to every cell extent.
func WithPad(pad float64) Option {
	return func(l *Layer) { l.pad = pad }
}

// WithBackdrop fills the canvas with c before drawing cells.
func WithBackdrop(c color.Color) Option {
	return func(l *Layer) { l.backdrop = c }
}

// WithPalette sets the palette used to equalize new data.
func WithPalette(p colorscale.Palette) Option {
	return func(l *Layer) { l.palette = p }
}

// WithRenderer replaces the default renderer of the layer's kind.
func WithRenderer(r Renderer) Option {
	return func(l *Layer) { l.renderer = r }
}

// Layer draws either grid cells or point markers, depending on its Kind.
// Configuration changes take effect on the next Render.
type Layer struct {
	mu       sync.Mutex
	kind     Kind
	state    State
	gen      uint64
	canvas   Canvas
	grid     *grid.Grid
	points   *pointIndex
	scale    *colorscale.Scale
	palette  colorscale.Palette
	renderer Renderer
	pad      float64
	backdrop color.Color

	// drawing serializes render passes over the shared canvas.
	drawing sync.Mutex

	Hovered  Registry[PointerEvent]
	Clicked  Registry[PointerEvent]
	Rendered Registry[Stats]
}

// NewLayer returns an Uninitialized layer of the given kind.
func NewLayer(kind Kind, opts ...Option) *Layer {
	l := &Layer{
		kind:    kind,
		palette: colorscale.Spectral,
		scale:   colorscale.Linear(0, 1, colorscale.YellowRed),
		pad:     DefaultPad,
	}
	switch kind {
	case PointMarker:
		l.renderer = DefaultMarker
	default:
		l.renderer = RectRenderer{}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Layer) Kind() Kind { return l.kind }

func (l *Layer) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Grid returns the current grid, or nil.
func (l *Layer) Grid() *grid.Grid {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.grid
}

// Scale returns the active color scale.
func (l *Layer) Scale() *colorscale.Scale {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scale
}

// Attach binds the layer to a canvas.
func (l *Layer) Attach(c Canvas) *Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.canvas = c
	l.gen++
	l.state = Attached
	if c == nil {
		l.state = Uninitialized
	}
	return l
}

// Detach releases the canvas.
func (l *Layer) Detach() *Layer {
	return l.Attach(nil)
}

// SetData replaces the grid and rebuilds the color scale from its value
// distribution. A nil grid clears the layer.
func (l *Layer) SetData(g *grid.Grid) *Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.grid = g
	if g != nil {
		l.scale = colorscale.Equalize(g.UniqueValues(), l.palette)
		Logger().Info("grid data set", "rows", g.Rows(), "cols", g.Cols(), "unique", len(g.UniqueValues()))
	}
	l.invalidate()
	return l
}

// SetGrid validates raw axes and values and installs them as the layer's
// grid. Malformed input is rejected and leaves the layer unchanged.
func (l *Layer) SetGrid(lat, lon []float64, values [][]float64) (*Layer, error) {
	g, err := grid.New(lat, lon, values)
	if err != nil {
		return l, err
	}
	return l.SetData(g), nil
}

// SetPoints replaces the marker features.
func (l *Layer) SetPoints(pts []Point) *Layer {
	ix := newPointIndex(pts)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.points = ix
	Logger().Info("points set", "count", ix.n, "max_magnitude", ix.max)
	l.invalidate()
	return l
}

// SetColorScale overrides the scale until the next SetData.
func (l *Layer) SetColorScale(s *colorscale.Scale) *Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s != nil {
		l.scale = s
	}
	return l
}

// SetPalette changes the equalization palette and re-equalizes current data.
func (l *Layer) SetPalette(p colorscale.Palette) *Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.palette = p
	if l.grid != nil {
		l.scale = colorscale.Equalize(l.grid.UniqueValues(), p)
	}
	return l
}

// SetRenderer swaps the per-cell draw strategy.
func (l *Layer) SetRenderer(r Renderer) *Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r != nil {
		l.renderer = r
	}
	return l
}

func (l *Layer) invalidate() {
	l.gen++
	if l.state == Rendered {
		l.state = Attached
	}
}

// ViewportChanged handles a pan, zoom or resize by redrawing.
func (l *Layer) ViewportChanged(vp Viewport) (Stats, error) {
	return l.Render(vp)
}

// Render clears the canvas, resizes it to the viewport and redraws every
// visible cell or marker. An attached layer without data is left cleared.
// Renderers run without the layer's lock held, so they may call Grid or
// Scale, but must not call Render.
func (l *Layer) Render(vp Viewport) (Stats, error) {
	l.mu.Lock()
	if l.canvas == nil {
		l.mu.Unlock()
		return Stats{}, ErrNotAttached
	}
	f := frame{
		kind:     l.kind,
		canvas:   l.canvas,
		grid:     l.grid,
		points:   l.points,
		scale:    l.scale,
		renderer: l.renderer,
		pad:      l.pad,
		backdrop: l.backdrop,
	}
	gen := l.gen
	l.mu.Unlock()

	l.drawing.Lock()
	stats, drew := f.draw(vp)
	l.drawing.Unlock()
	if !drew {
		return stats, nil
	}

	l.mu.Lock()
	if l.gen == gen {
		l.state = Rendered
	}
	l.mu.Unlock()

	Logger().Debug("render pass", "kind", f.kind, "window", stats.Window.String(),
		"sampled", stats.Sampled, "drawn", stats.Drawn, "skipped", stats.Skipped)
	l.Rendered.Publish(stats)
	return stats, nil
}

// frame is the layer configuration captured for one render pass.
type frame struct {
	kind     Kind
	canvas   Canvas
	grid     *grid.Grid
	points   *pointIndex
	scale    *colorscale.Scale
	renderer Renderer
	pad      float64
	backdrop color.Color
}

func (f frame) draw(vp Viewport) (Stats, bool) {
	if vp.Empty() {
		return Stats{}, false
	}
	switch {
	case f.kind == PointMarker && f.points != nil:
		f.begin(vp)
		return f.renderPoints(vp), true
	case f.kind == CellRaster && f.grid != nil:
		f.begin(vp)
		return f.renderCells(vp), true
	}
	f.canvas.Resize(vp.Width, vp.Height)
	f.canvas.Clear()
	return Stats{}, false
}

func (f frame) begin(vp Viewport) {
	f.canvas.Resize(vp.Width, vp.Height)
	f.canvas.Clear()
	if f.backdrop != nil {
		f.canvas.FillRect(0, 0, float64(vp.Width), float64(vp.Height), f.backdrop)
	}
}

func (f frame) renderCells(vp Viewport) Stats {
	g := f.grid
	win := Cull(g, vp)
	stats := Stats{Window: win}
	geo := cellGeometry{vp: vp, g: g, skip: win.Skip, pad: f.pad}
	rows, cols := win.Rows(), win.Cols()
	if len(cols) == 0 {
		return stats
	}
	ref := cols[0]

	for r, latIdx := range rows {
		h := geo.rowHeight(latIdx, ref)
		for c, lonIdx := range cols {
			stats.Sampled++
			v := g.Values[latIdx][lonIdx]
			if grid.IsMissing(v) {
				stats.Skipped++
				continue
			}
			x, y, w := geo.cell(latIdx, lonIdx)
			f.renderer.Render(f.canvas, CellInfo{
				X:        x,
				Y:        y,
				Width:    w,
				Height:   h,
				Value:    v,
				Row:      r,
				Col:      c,
				LatIndex: latIdx,
				LonIndex: lonIdx,
				Lat:      g.Lat[latIdx],
				Lon:      g.Lon[lonIdx],
				Scale:    f.scale,
			})
			stats.Drawn++
		}
	}
	return stats
}

func (f frame) renderPoints(vp Viewport) Stats {
	var stats Stats
	for _, p := range f.points.within(vp.Bounds) {
		stats.Sampled++
		x, y := vp.Project(p.Lat, p.Lon)
		f.renderer.Render(f.canvas, CellInfo{
			X:            x,
			Y:            y,
			Value:        p.Magnitude,
			Lat:          p.Lat,
			Lon:          p.Lon,
			Scale:        f.scale,
			Point:        p,
			MaxMagnitude: f.points.max,
		})
		stats.Drawn++
	}
	return stats
}

// Hover looks up the grid value under the pointer and publishes it to the
// Hovered subscribers.
func (l *Layer) Hover(lat, lon float64) PointerEvent {
	ev := l.lookup(lat, lon)
	l.Hovered.Publish(ev)
	return ev
}

// Click is Hover for the Clicked topic.
func (l *Layer) Click(lat, lon float64) PointerEvent {
	ev := l.lookup(lat, lon)
	l.Clicked.Publish(ev)
	return ev
}

func (l *Layer) lookup(lat, lon float64) PointerEvent {
	ev := PointerEvent{Lat: lat, Lon: lon, Row: -1, Col: -1, Value: grid.Missing}
	g := l.Grid()
	if g == nil {
		return ev
	}
	ev.Value, ev.OK = g.ValueAt(lat, lon)
	if ev.OK {
		ev.Row, ev.Col = g.Index(lat, lon)
	}
	return ev
}
