package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestImageDrawsAndEncodes(t *testing.T) {
	im := NewImage(16, 16)
	t.Cleanup(func() { im.Close() })

	im.Resize(32, 20)
	if w, h := im.Size(); w != 32 || h != 20 {
		t.Fatalf("Size() = %d, %d", w, h)
	}
	im.Clear()
	im.FillRect(0, 0, 16, 20, color.RGBA{R: 0xff, A: 0xff})
	im.FillCircle(24, 10, 4, color.RGBA{G: 0xff, A: 0xff})
	if err := im.Err(); err != nil {
		t.Fatal(err)
	}

	if _, _, _, a := im.Image().At(8, 10).RGBA(); a == 0 {
		t.Error("rectangle not drawn")
	}
	if _, _, _, a := im.Image().At(31, 0).RGBA(); a != 0 {
		t.Error("corner should stay transparent")
	}

	var buf bytes.Buffer
	if err := im.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 32 || b.Dy() != 20 {
		t.Errorf("decoded bounds = %v", b)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := im.SavePNG(path); err != nil {
		t.Fatal(err)
	}
}

func TestImageResizeRejectsEmpty(t *testing.T) {
	im := NewImage(4, 4)
	im.Resize(0, 10)
	if im.Err() == nil {
		t.Error("Resize(0, 10) recorded no error")
	}
	if w, h := im.Size(); w != 4 || h != 4 {
		t.Errorf("size changed to %d, %d", w, h)
	}
}
