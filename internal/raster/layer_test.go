package raster

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"gridmap/internal/colorscale"
	"gridmap/internal/grid"
)

func fullView() Viewport {
	return NewEquirectangular(Bound(10, -10, 10, -10), 100, 100)
}

func TestLayerStateTransitions(t *testing.T) {
	l := NewLayer(CellRaster)
	if l.State() != Uninitialized {
		t.Fatalf("new layer state = %v", l.State())
	}
	if _, err := l.Render(fullView()); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("Render without canvas: err = %v", err)
	}

	l.Attach(&recorder{})
	if l.State() != Attached {
		t.Fatalf("after Attach state = %v", l.State())
	}
	if _, err := l.Render(fullView()); err != nil || l.State() != Attached {
		t.Fatalf("Render without data: err = %v, state = %v", err, l.State())
	}

	l.SetData(fiveByFive(t, nil))
	if _, err := l.Render(fullView()); err != nil {
		t.Fatal(err)
	}
	if l.State() != Rendered {
		t.Fatalf("after Render state = %v", l.State())
	}

	l.SetData(fiveByFive(t, nil))
	if l.State() != Attached {
		t.Errorf("SetData should invalidate, state = %v", l.State())
	}

	l.Detach()
	if l.State() != Uninitialized {
		t.Errorf("after Detach state = %v", l.State())
	}
}

func TestLayerRenderScenario(t *testing.T) {
	rec := &recorder{}
	l := NewLayer(CellRaster).Attach(rec).SetData(fiveByFive(t, nil))
	var infos []CellInfo
	l.SetRenderer(RendererFunc(func(_ Canvas, info CellInfo) { infos = append(infos, info) }))

	stats, err := l.Render(fullView())
	if err != nil {
		t.Fatal(err)
	}
	if rec.width != 100 || rec.height != 100 {
		t.Errorf("canvas resized to %dx%d", rec.width, rec.height)
	}
	if stats.Sampled != 25 || stats.Drawn != 25 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	first := infos[0]
	if first.X != 0 || first.Y != 0 || first.Value != 0 {
		t.Errorf("first cell = %+v", first)
	}
	// 5° of longitude is 25 px on this viewport.
	if first.Width != 25+DefaultPad || first.Height != 25+DefaultPad {
		t.Errorf("first cell size = %vx%v", first.Width, first.Height)
	}
	last := infos[len(infos)-1]
	if last.Width != 25+DefaultPad || last.Height != 25+DefaultPad {
		t.Errorf("edge cell size = %vx%v, want the interior stride", last.Width, last.Height)
	}
	if last.Row != 4 || last.Col != 4 || last.Value != 24 {
		t.Errorf("last cell = %+v", last)
	}
}

func TestLayerCoversGridToItsEdges(t *testing.T) {
	rec := &recorder{}
	l := NewLayer(CellRaster).Attach(rec).SetData(fiveByFive(t, nil))
	vp := NewEquirectangular(Bound(10, -10, 20, -10), 300, 200)
	if _, err := l.Render(vp); err != nil {
		t.Fatal(err)
	}

	covered := func(x, y float64) bool {
		for _, o := range rec.ops {
			if o.Kind == "rect" && x >= o.X && x <= o.X+o.W && y >= o.Y && y <= o.Y+o.H {
				return true
			}
		}
		return false
	}
	for lat := -10.0; lat <= 10; lat++ {
		for lon := -10.0; lon <= 10; lon++ {
			x, y := vp.Project(lat, lon)
			if !covered(x, y) {
				t.Errorf("pixel of (lat %v, lon %v) = %.1f,%.1f is not covered", lat, lon, x, y)
			}
		}
	}
}

func TestLayerNeverRendersMissing(t *testing.T) {
	values := [][]float64{
		{1, grid.Missing, 3, 4, 5},
		{math.NaN(), 2, 3, 4, 5},
		{1, 2, grid.Missing, 4, 5},
		{1, 2, 3, 4, 5},
		{grid.Missing, grid.Missing, grid.Missing, grid.Missing, grid.Missing},
	}
	l := NewLayer(CellRaster).Attach(&recorder{}).SetData(fiveByFive(t, values))
	l.SetRenderer(RendererFunc(func(_ Canvas, info CellInfo) {
		if grid.IsMissing(info.Value) {
			t.Errorf("renderer saw missing value at %d,%d", info.LatIndex, info.LonIndex)
		}
	}))

	stats, err := l.Render(fullView())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 8 || stats.Drawn != 17 {
		t.Errorf("stats = %+v, want 8 skipped and 17 drawn", stats)
	}
}

func TestLayerRenderIsIdempotent(t *testing.T) {
	rec := &recorder{}
	l := NewLayer(CellRaster).Attach(rec).SetData(fiveByFive(t, nil))
	vp := NewMercator(Bound(8, -8, 9, -9), 120, 80)

	if _, err := l.Render(vp); err != nil {
		t.Fatal(err)
	}
	first := rec.ops
	if _, err := l.Render(vp); err != nil {
		t.Fatal(err)
	}
	if rec.clears != 2 {
		t.Errorf("clears = %d, want 2", rec.clears)
	}
	if !reflect.DeepEqual(first, rec.ops) {
		t.Error("second render pass produced different output")
	}
}

func TestLayerBackdropDrawnFirst(t *testing.T) {
	rec := &recorder{}
	bg := colorscale.MustPalette("#102030")[0]
	l := NewLayer(CellRaster, WithBackdrop(bg)).Attach(rec).SetData(fiveByFive(t, nil))
	if _, err := l.Render(fullView()); err != nil {
		t.Fatal(err)
	}
	if len(rec.ops) != 26 {
		t.Fatalf("ops = %d, want backdrop plus 25 cells", len(rec.ops))
	}
	if got := rec.ops[0]; got.X != 0 || got.Y != 0 || got.W != 100 || got.H != 100 || got.Color != bg {
		t.Errorf("backdrop op = %+v", got)
	}
}

func TestSetRendererDoesNotRender(t *testing.T) {
	rec := &recorder{}
	l := NewLayer(CellRaster).Attach(rec).SetData(fiveByFive(t, nil))
	if _, err := l.Render(fullView()); err != nil {
		t.Fatal(err)
	}
	calls := 0
	l.SetRenderer(RendererFunc(func(Canvas, CellInfo) { calls++ }))
	l.SetColorScale(colorscale.Linear(0, 24, colorscale.YellowRed))
	if calls != 0 || rec.clears != 1 {
		t.Fatalf("configuration change drew: calls = %d, clears = %d", calls, rec.clears)
	}
	if _, err := l.Render(fullView()); err != nil {
		t.Fatal(err)
	}
	if calls != 25 {
		t.Errorf("calls after render = %d", calls)
	}
}

func TestSetGridRejectsMalformedInput(t *testing.T) {
	l := NewLayer(CellRaster).SetData(fiveByFive(t, nil))
	before := l.Grid()

	_, err := l.SetGrid([]float64{1, 0}, []float64{0, 1}, [][]float64{{1, 2}})
	var dim *grid.DimensionError
	if !errors.As(err, &dim) {
		t.Fatalf("err = %v, want *grid.DimensionError", err)
	}
	if l.Grid() != before {
		t.Error("failed SetGrid replaced the grid")
	}

	if _, err := l.SetGrid([]float64{1, 0}, []float64{0, 1}, [][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatal(err)
	}
	if l.Grid().Rows() != 2 {
		t.Errorf("rows = %d", l.Grid().Rows())
	}
}

func TestSetDataEqualizesScale(t *testing.T) {
	l := NewLayer(CellRaster).SetData(fiveByFive(t, nil))
	lo, hi := l.Scale().Domain()
	if lo != 0 || hi != 24 {
		t.Errorf("scale domain = %v..%v, want 0..24", lo, hi)
	}
}

func TestMarkerLayerCullsPoints(t *testing.T) {
	rec := &recorder{}
	l := NewLayer(PointMarker).Attach(rec).SetPoints([]Point{
		{Lat: 0, Lon: 0, Magnitude: 10, ID: "center"},
		{Lat: 50, Lon: 50, Magnitude: 100, ID: "outside"},
		{Lat: 5, Lon: -5, Magnitude: 5, ID: "inside"},
		{Lat: 1, Lon: 1, Magnitude: grid.Missing, ID: "missing"},
	})
	var ids []string
	l.SetRenderer(RendererFunc(func(c Canvas, info CellInfo) {
		ids = append(ids, info.Point.ID)
		DefaultMarker.Render(c, info)
	}))

	stats, err := l.Render(fullView())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"center", "inside"}) {
		t.Fatalf("rendered points = %v", ids)
	}
	if stats.Drawn != 2 {
		t.Errorf("stats = %+v", stats)
	}
	// magnitudes are relative to the largest one in the whole dataset
	if got, want := rec.ops[0].W, DefaultMarker.MinRadius+0.1*DefaultMarker.MaxRadius; math.Abs(got-want) > 1e-9 {
		t.Errorf("radius = %v, want %v", got, want)
	}
	if x, y := rec.ops[0].X, rec.ops[0].Y; x != 50 || y != 50 {
		t.Errorf("center marker at %v,%v", x, y)
	}
}

func TestHoverAndClickPublish(t *testing.T) {
	l := NewLayer(CellRaster).SetData(fiveByFive(t, nil))
	var hovered, clicked []PointerEvent
	unsub := l.Hovered.Subscribe(func(ev PointerEvent) { hovered = append(hovered, ev) })
	l.Clicked.Subscribe(func(ev PointerEvent) { clicked = append(clicked, ev) })

	ev := l.Hover(4.9, -4.9)
	if !ev.OK || ev.Row != 1 || ev.Col != 1 || ev.Value != 6 {
		t.Errorf("Hover = %+v", ev)
	}
	l.Hover(40, 40)
	unsub()
	l.Hover(0, 0)
	l.Click(-10, 10)

	if len(hovered) != 2 || hovered[1].OK {
		t.Errorf("hovered = %+v", hovered)
	}
	if len(clicked) != 1 || clicked[0].Value != 24 {
		t.Errorf("clicked = %+v", clicked)
	}
}

func TestRenderedEventCarriesStats(t *testing.T) {
	l := NewLayer(CellRaster).Attach(&recorder{}).SetData(fiveByFive(t, nil))
	var got []Stats
	l.Rendered.Subscribe(func(s Stats) { got = append(got, s) })

	if _, err := l.ViewportChanged(fullView()); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ViewportChanged(Viewport{}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Drawn != 25 {
		t.Errorf("rendered events = %+v", got)
	}
}

func TestLayerOptions(t *testing.T) {
	var infos []CellInfo
	l := NewLayer(CellRaster,
		WithPad(0),
		WithPalette(colorscale.YellowRed),
		WithRenderer(RendererFunc(func(_ Canvas, info CellInfo) { infos = append(infos, info) })),
	).Attach(&recorder{}).SetData(fiveByFive(t, nil))

	if _, err := l.Render(fullView()); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 25 {
		t.Fatalf("custom renderer saw %d cells", len(infos))
	}
	if w := infos[0].Width; w != 25 {
		t.Errorf("unpadded cell width = %v, want 25", w)
	}
	stops := l.Scale().Stops()
	if first, last := stops[0].Color, stops[len(stops)-1].Color; first != colorscale.YellowRed[0] || last != colorscale.YellowRed[1] {
		t.Errorf("scale runs %v..%v, want the yellow-red palette", first.Hex(), last.Hex())
	}
}

func TestRendererMayQueryLayer(t *testing.T) {
	l := NewLayer(CellRaster).Attach(&recorder{}).SetData(fiveByFive(t, nil))
	seen := 0
	l.SetRenderer(RendererFunc(func(c Canvas, info CellInfo) {
		if l.Grid() == nil || l.Scale() == nil {
			t.Error("layer accessors returned nil during render")
		}
		seen++
	}))

	done := make(chan error, 1)
	go func() {
		_, err := l.Render(fullView())
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Render blocked while the renderer queried the layer")
	}
	if seen != 25 {
		t.Errorf("renderer calls = %d", seen)
	}
}

func TestRenderWithoutDataClearsCanvas(t *testing.T) {
	rec := &recorder{}
	l := NewLayer(CellRaster).Attach(rec).SetData(fiveByFive(t, nil))
	if _, err := l.Render(fullView()); err != nil {
		t.Fatal(err)
	}
	if len(rec.ops) != 25 {
		t.Fatalf("ops = %d", len(rec.ops))
	}

	l.SetData(nil)
	stats, err := l.Render(fullView())
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.ops) != 0 || rec.clears != 2 {
		t.Errorf("stale frame left on canvas: ops = %d, clears = %d", len(rec.ops), rec.clears)
	}
	if stats.Drawn != 0 || l.State() != Attached {
		t.Errorf("stats = %+v, state = %v", stats, l.State())
	}
}
