package canvas

import (
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"
)

// Image is a raster surface backed by a gg software context, used for
// headless export.
type Image struct {
	dc  *gg.Context
	err error
}

// NewImage returns a transparent surface of width × height pixels.
func NewImage(width, height int) *Image {
	return &Image{dc: gg.NewContext(max(width, 1), max(height, 1))}
}

// Resize changes the surface size. Invalid sizes are recorded and reported
// by Err; the previous surface is kept.
func (i *Image) Resize(width, height int) {
	if err := i.dc.Resize(width, height); err != nil {
		i.fail(err)
	}
}

// Clear makes the surface transparent.
func (i *Image) Clear() {
	i.dc.Clear()
}

func (i *Image) FillRect(x, y, w, h float64, c color.Color) {
	i.dc.SetColor(c)
	i.dc.DrawRectangle(x, y, w, h)
	if err := i.dc.Fill(); err != nil {
		i.fail(err)
	}
}

func (i *Image) FillCircle(x, y, r float64, c color.Color) {
	i.dc.SetColor(c)
	i.dc.DrawCircle(x, y, r)
	if err := i.dc.Fill(); err != nil {
		i.fail(err)
	}
}

// Size returns the pixel dimensions.
func (i *Image) Size() (width, height int) {
	return i.dc.Width(), i.dc.Height()
}

// Image returns the rendered pixels.
func (i *Image) Image() image.Image {
	return i.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (i *Image) EncodePNG(w io.Writer) error {
	return i.dc.EncodePNG(w)
}

// SavePNG writes the surface to a PNG file.
func (i *Image) SavePNG(path string) error {
	return i.dc.SavePNG(path)
}

// Err returns the draw errors collected since the surface was created.
func (i *Image) Err() error {
	return i.err
}

// Close releases the context.
func (i *Image) Close() error {
	return i.dc.Close()
}

func (i *Image) fail(err error) {
	i.err = errors.Join(i.err, err)
}
