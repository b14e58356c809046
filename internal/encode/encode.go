// Package encode serializes captured images to JPEG or PNG.
package encode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// JPEGQuality matches the quality most game engines use for screenshots.
const JPEGQuality = 75

const (
	FormatJPEG = "jpg"
	FormatPNG  = "png"
)

// Image is an encoded image ready to be sent over the network.
type Image struct {
	Data     []byte
	Format   string
	Filename string
}

type releasable interface {
	Released() bool
}

// Encode serializes img as JPEG when jpg is true, PNG otherwise.
func Encode(img image.Image, jpg bool) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("encode: nil image")
	}
	if r, ok := img.(releasable); ok && r.Released() {
		return nil, fmt.Errorf("encode: image already released")
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("encode: empty image %dx%d", b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	format := FormatPNG
	if jpg {
		format = FormatJPEG
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	} else {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}

	return &Image{
		Data:     buf.Bytes(),
		Format:   format,
		Filename: Filename(jpg),
	}, nil
}

// Filename returns the attachment filename for the chosen format.
func Filename(jpg bool) string {
	if jpg {
		return "attachment." + FormatJPEG
	}
	return "attachment." + FormatPNG
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// MIMEType returns the media type of the encoded bytes.
func (i *Image) MIMEType() string {
	if i.Format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}
