package raster

import (
	"slices"
	"testing"
)

func TestCullScenario(t *testing.T) {
	g := fiveByFive(t, nil)
	vp := NewEquirectangular(Bound(8, -2, 7, -7), 100, 100)

	w := Cull(g, vp)
	if w.North != 1 || w.South != 3 || w.West != 1 || w.East != 4 {
		t.Fatalf("Cull() = %v, want rows 1..3 cols 1..4", w)
	}
	if w.Skip != 1 {
		t.Errorf("Skip = %d, want 1", w.Skip)
	}
	if got := w.Rows(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("Rows() = %v", got)
	}
	if got := w.Cols(); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("Cols() = %v", got)
	}
}

func TestCullOutsideCoverageClamps(t *testing.T) {
	g := fiveByFive(t, nil)
	vp := NewEquirectangular(Bound(50, -50, 50, -50), 10, 10)

	w := Cull(g, vp)
	if w.North != 0 || w.South != 5 || w.West != 0 || w.East != 5 {
		t.Fatalf("Cull() = %v", w)
	}
	for _, idx := range append(w.Rows(), w.Cols()...) {
		if idx < 0 || idx > 4 {
			t.Fatalf("sampled index %d outside grid", idx)
		}
	}
	if got := w.Cols(); got[0] != 0 || got[len(got)-1] > 4 {
		t.Errorf("Cols() = %v", got)
	}
}

func TestSkipFactor(t *testing.T) {
	tests := []struct {
		span, width, want int
	}{
		{4, 100, 1},
		{0, 100, 1},
		{9999, 800, 25},
		{1601, 800, 4},
		{100, 0, 1},
		{100, -5, 1},
	}
	for _, tt := range tests {
		if got := SkipFactor(tt.span, tt.width); got != tt.want {
			t.Errorf("SkipFactor(%d, %d) = %d, want %d", tt.span, tt.width, got, tt.want)
		}
	}
}

func TestSampledColumnsBoundedByPixelWidth(t *testing.T) {
	const width = 800
	for _, cols := range []int{1000, 10000, 100000} {
		g := wideGrid(t, cols)
		vp := NewEquirectangular(Bound(1, -1, 180, -180), width, 10)
		n := len(Cull(g, vp).Cols())
		if n > 2*width {
			t.Errorf("%d columns: sampled %d, want at most %d", cols, n, 2*width)
		}
		if n < width/4 {
			t.Errorf("%d columns: sampled only %d", cols, n)
		}
	}
}

func TestSampleSkipsDuplicateClamps(t *testing.T) {
	got := sample(0, 3, 1, 5)
	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("sample() = %v", got)
	}
	if got := sample(0, 3, 1, 0); got != nil {
		t.Errorf("sample on empty axis = %v", got)
	}
}
