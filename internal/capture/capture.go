// Package capture reads rectangular regions of the rendered screen into owned RGB buffers.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrReleased is returned when pixels are requested from a released image.
var ErrReleased = errors.New("capture: image released")

const (
	// MaxDimension bounds the width and height of a capture region.
	MaxDimension = 1 << 16
	// MaxPixels bounds the area of a capture region (a little over two 8K displays).
	MaxPixels = 1 << 26
)

// Region is a capture rectangle in top-left screen coordinates.
type Region struct {
	X, Y, Width, Height int
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) validate() error {
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	// checking each side first keeps the product from overflowing
	if r.Width > MaxDimension || r.Height > MaxDimension || r.Width*r.Height > MaxPixels {
		return fmt.Errorf("region %dx%d exceeds capture limit of %d pixels", r.Width, r.Height, MaxPixels)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// Source is the frame buffer a Capturer reads from.
type Source interface {
	// WaitFrame blocks until the current frame has been fully presented.
	WaitFrame(ctx context.Context) error
	// ReadPixels returns the pixels inside r. The returned image may be smaller
	// than r when r extends past the frame.
	ReadPixels(r image.Rectangle) (*image.RGBA, error)
}

// Capturer grabs screen regions from a Source.
type Capturer struct {
	src Source
}

// New returns a Capturer reading from src.
func New(src Source) *Capturer {
	return &Capturer{src: src}
}

// Capture waits for the current frame to finish and copies region into a new
// Image. The caller owns the result and must Release it.
func (c *Capturer) Capture(ctx context.Context, region Region) (*Image, error) {
	if err := region.validate(); err != nil {
		return nil, err
	}

	if err := c.src.WaitFrame(ctx); err != nil {
		return nil, fmt.Errorf("wait for frame: %w", err)
	}

	img := NewImage(region.Width, region.Height)
	if region.Width == 0 || region.Height == 0 {
		return img, nil
	}

	pixels, err := c.src.ReadPixels(region.Rect())
	if err != nil {
		img.Release()
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	img.copyFrom(pixels)

	return img, nil
}

// Image is an owned RGB pixel buffer, 3 bytes per pixel, no alpha.
// It implements image.Image.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates a black width x height image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// Release frees the pixel buffer. It is safe to call more than once.
func (m *Image) Release() {
	m.Pix = nil
}

// Released reports whether Release has been called.
func (m *Image) Released() bool {
	return m.Pix == nil
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image. Released images read as black.
func (m *Image) At(x, y int) color.Color {
	if m.Pix == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.RGBA{A: 0xff}
	}
	i := (y*m.Width + x) * 3
	return color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: 0xff}
}

// copyFrom copies src into m starting at the top-left corner. Pixels outside
// src stay black.
func (m *Image) copyFrom(src *image.RGBA) {
	if src == nil {
		return
	}
	b := src.Bounds()
	w := min(m.Width, b.Dx())
	h := min(m.Height, b.Dy())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(b.Min.X+x, b.Min.Y+y)
			i := (y*m.Width + x) * 3
			m.Pix[i] = c.R
			m.Pix[i+1] = c.G
			m.Pix[i+2] = c.B
		}
	}
}
