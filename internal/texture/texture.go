// Package texture reads texture files, checks raw pixel buffers and decodes
// payloads for the renderers.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF header support
	_ "image/jpeg" // JPEG header support
	_ "image/png"  // PNG header support
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // BMP header support
	_ "golang.org/x/image/webp" // WebP header support

	"github.com/vovakirdan/spritecore/internal/core"
)

// FormatRGBA marks a slot holding raw tightly packed RGBA pixels.
const FormatRGBA = "rgba"

// Info describes a texture payload.
type Info struct {
	Format string // "png", "jpeg", "gif", "bmp", "webp", "rgba" or "" when unknown
	Width  int
	Height int
}

// ErrBadPixels is returned for RGBA buffers that break the overlay layout.
var ErrBadPixels = errors.New("texture: pixel buffer does not match dimensions")

// Probe reads the image header of data. Unknown formats return an error and
// a zero Info; callers may still keep the bytes.
func Probe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("texture: cannot read image header: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Load reads a texture file and probes its header.
// A file with an unrecognised header is still returned with a zero Info.
func Load(path string) ([]byte, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("texture: cannot read %s: %w", path, err)
	}
	info, _ := Probe(data)
	return data, info, nil
}

// Name returns the debug name for a texture path.
func Name(path string) string {
	return filepath.Base(path)
}

// ValidateRGBA checks the overlay contract: tightly packed rows, top row
// first, 4 bytes per pixel.
func ValidateRGBA(width, height int, pix []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadPixels, width, height)
	}
	if want := width * height * 4; len(pix) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBadPixels, len(pix), want)
	}
	return nil
}

// Solid returns a width x height RGBA buffer filled with c.
func Solid(width, height int, c core.Color) []byte {
	px := [4]byte{unit8(c.R), unit8(c.G), unit8(c.B), unit8(c.A)}
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], px[:])
	}
	return pix
}

// ToImage wraps an RGBA buffer as an *image.RGBA without copying.
func ToImage(width, height int, pix []byte) (*image.RGBA, error) {
	if err := ValidateRGBA(width, height, pix); err != nil {
		return nil, err
	}
	return &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}, nil
}

// Decode turns a texture payload into an image. Raw RGBA payloads are wrapped
// without copying; anything else goes through the registered decoders.
func Decode(data []byte, format string, width, height int) (image.Image, error) {
	if format == FormatRGBA {
		return ToImage(width, height, data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: cannot decode image: %w", err)
	}
	return img, nil
}

func unit8(v float32) byte {
	return byte(core.ClampF(float64(v), 0, 1)*255 + 0.5)
}
