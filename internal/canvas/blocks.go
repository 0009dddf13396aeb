// Package canvas provides the drawing surfaces raster layers render onto.
package canvas

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

const (
	upperHalf = "▀"
	lowerHalf = "▄"
)

// Blocks is a terminal pixel buffer. Every character cell holds two
// vertically stacked pixels drawn with half-block glyphs, so a surface of
// w × h pixels occupies w columns and ceil(h/2) lines.
type Blocks struct {
	img *image.RGBA
}

// NewBlocks returns a surface covering cols × rows terminal cells.
func NewBlocks(cols, rows int) *Blocks {
	b := &Blocks{}
	b.Resize(cols, rows*2)
	return b
}

// Resize reallocates the buffer to width × height pixels when the size
// changed. Negative sizes are treated as zero.
func (b *Blocks) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if b.img != nil && b.img.Rect.Dx() == width && b.img.Rect.Dy() == height {
		return
	}
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Size returns the pixel dimensions.
func (b *Blocks) Size() (width, height int) {
	return b.img.Rect.Dx(), b.img.Rect.Dy()
}

// Clear makes every pixel transparent.
func (b *Blocks) Clear() {
	clear(b.img.Pix)
}

// At returns the pixel at (x, y).
func (b *Blocks) At(x, y int) color.Color {
	return b.img.At(x, y)
}

// FillRect fills the pixels whose centers fall inside the rectangle,
// compositing c over what is already there.
func (b *Blocks) FillRect(x, y, w, h float64, c color.Color) {
	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	).Intersect(b.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(b.img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// FillCircle fills the pixels whose centers lie within radius of (x, y).
// A circle smaller than a pixel still marks the pixel under its center.
func (b *Blocks) FillCircle(x, y, radius float64, c color.Color) {
	m := &disc{x: x, y: y, r: math.Max(radius, math.Sqrt2/2)}
	r := m.Bounds().Intersect(b.img.Rect)
	if r.Empty() {
		return
	}
	draw.DrawMask(b.img, r, image.NewUniform(c), image.Point{}, m, r.Min, draw.Over)
}

// Composite draws src over b, aligned at the origin.
func (b *Blocks) Composite(src *Blocks) {
	if src == nil || src.img == nil {
		return
	}
	draw.Draw(b.img, b.img.Rect, src.img, image.Point{}, draw.Over)
}

// Lines renders the buffer as one styled string per terminal line. Runs of
// cells with identical colors share one lipgloss style.
func (b *Blocks) Lines() []string {
	w, h := b.Size()
	out := make([]string, 0, (h+1)/2)
	for y := 0; y < h; y += 2 {
		var sb strings.Builder
		var run cellStyle
		n := 0
		flush := func() {
			if n > 0 {
				sb.WriteString(run.render(n))
			}
		}
		for x := 0; x < w; x++ {
			cs := styleOf(b.img.RGBAAt(x, y), b.lower(x, y+1))
			if n > 0 && cs == run {
				n++
				continue
			}
			flush()
			run, n = cs, 1
		}
		flush()
		out = append(out, sb.String())
	}
	return out
}

// String joins Lines with newlines.
func (b *Blocks) String() string {
	return strings.Join(b.Lines(), "\n")
}

func (b *Blocks) lower(x, y int) color.RGBA {
	if y >= b.img.Rect.Max.Y {
		return color.RGBA{}
	}
	return b.img.RGBAAt(x, y)
}

type cellStyle struct {
	glyph  string
	fg, bg string
}

func styleOf(top, bottom color.RGBA) cellStyle {
	t, tok := hex(top)
	l, lok := hex(bottom)
	switch {
	case tok && lok:
		return cellStyle{glyph: upperHalf, fg: t, bg: l}
	case tok:
		return cellStyle{glyph: upperHalf, fg: t}
	case lok:
		return cellStyle{glyph: lowerHalf, fg: l}
	}
	return cellStyle{glyph: " "}
}

func (s cellStyle) render(n int) string {
	text := strings.Repeat(s.glyph, n)
	if s.fg == "" {
		return text
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(s.fg))
	if s.bg != "" {
		st = st.Background(lipgloss.Color(s.bg))
	}
	return st.Render(text)
}

// hex returns the un-premultiplied color of a pixel, false when it is fully
// transparent.
func hex(c color.RGBA) (string, bool) {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "", false
	}
	return cf.Clamped().Hex(), true
}

// disc is an opaque circular mask.
type disc struct {
	x, y, r float64
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(d.x-d.r)), int(math.Floor(d.y-d.r)),
		int(math.Ceil(d.x+d.r))+1, int(math.Ceil(d.y+d.r))+1,
	)
}

func (d *disc) At(x, y int) color.Color {
	dx, dy := float64(x)+0.5-d.x, float64(y)+0.5-d.y
	if dx*dx+dy*dy <= d.r*d.r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
