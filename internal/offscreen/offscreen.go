// Package offscreen is a software renderer that rasterizes engine frames into
// an in-memory RGBA surface with fogleman/gg. It exists for headless runs,
// PNG snapshots and read-back tests; it is not a GPU path.
//
// Quads are flat shaded: each one is filled with its vertex tint multiplied
// by the texel at the centre of its UV rectangle.
package offscreen

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/canvas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/state"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// Renderer draws frames into a width x height surface.
type Renderer struct {
	width, height int
	dc            *gg.Context
	present       canvas.Presentation
	textures      map[core.TextureID]cachedTexture
	overlay       *image.RGBA
	frames        int
}

type cachedTexture struct {
	src []byte
	img image.Image
}

var _ engine.Renderer = (*Renderer)(nil)

// New creates a renderer for a surface of the given size in pixels.
func New(width, height int) *Renderer {
	return &Renderer{
		width:    width,
		height:   height,
		dc:       gg.NewContext(width, height),
		textures: make(map[core.TextureID]cachedTexture),
	}
}

// Render rasterizes f. Outside the letterboxed viewport the surface is black.
func (r *Renderer) Render(f *engine.Frame) error {
	r.present = canvas.Present(float32(r.width), float32(r.height), f.Mode)
	vp := r.present.Viewport

	r.dc.SetColor(color.Black)
	r.dc.Clear()
	r.dc.SetColor(toNRGBA(f.ClearColor))
	r.dc.DrawRectangle(float64(vp.X), float64(vp.Y), float64(vp.W), float64(vp.H))
	r.dc.Fill()

	ppu := f.PixelsPerUnit
	scale := r.present.Scale
	toSurface := func(x, y float32) (float64, float64) {
		return float64(vp.X + x*ppu*scale), float64(vp.Y + y*ppu*scale)
	}

	r.dc.Push()
	r.dc.DrawRectangle(float64(vp.X), float64(vp.Y), float64(vp.W), float64(vp.H))
	r.dc.Clip()
	for _, b := range f.Batches {
		img := r.texture(f.Textures, b.Texture)
		end := b.StartIndex + b.IndexCount
		for q := b.StartIndex; q+6 <= end; q += 6 {
			quad := f.Indices[q : q+6]
			tl := f.Vertices[quad[0]]
			br := f.Vertices[quad[2]]
			r.dc.SetColor(shade(img, tl, br))
			for t := 0; t < 6; t += 3 {
				for k := 0; k < 3; k++ {
					x, y := toSurface(f.Vertices[quad[t+k]].X, f.Vertices[quad[t+k]].Y)
					if k == 0 {
						r.dc.MoveTo(x, y)
					} else {
						r.dc.LineTo(x, y)
					}
				}
				r.dc.ClosePath()
			}
			r.dc.Fill()
		}
	}
	r.dc.Pop()

	if r.overlay != nil {
		r.dc.DrawImage(r.overlay, int(vp.X), int(vp.Y))
	}
	r.frames++
	return nil
}

// texture decodes and caches a texture. Unknown ids and undecodable bytes
// sample as opaque white.
func (r *Renderer) texture(lookup engine.TextureLookup, id core.TextureID) image.Image {
	if lookup == nil {
		return nil
	}
	slot, ok := lookup.Texture(id)
	if !ok || len(slot.Bytes) == 0 {
		return nil
	}
	if c, ok := r.textures[id]; ok && sameBytes(c.src, slot.Bytes) {
		return c.img
	}
	img, err := decode(slot)
	if err != nil {
		img = nil
	}
	r.textures[id] = cachedTexture{src: slot.Bytes, img: img}
	return img
}

func decode(slot state.TextureSlot) (image.Image, error) {
	img, err := texture.Decode(slot.Bytes, slot.Format, slot.Width, slot.Height)
	if err != nil {
		return nil, fmt.Errorf("offscreen: texture %q: %w", slot.Name, err)
	}
	return img, nil
}

func sameBytes(a, b []byte) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// shade multiplies the vertex tint by the texel at the UV centre.
func shade(img image.Image, tl, br batch.Vertex) color.NRGBA {
	tint := core.Color{R: tl.R, G: tl.G, B: tl.B, A: tl.A}
	if img == nil {
		return toNRGBA(tint)
	}
	bounds := img.Bounds()
	u := (tl.U + br.U) / 2
	v := (tl.V + br.V) / 2
	px := bounds.Min.X + core.Clamp(int(u*float32(bounds.Dx())), 0, bounds.Dx()-1)
	py := bounds.Min.Y + core.Clamp(int(v*float32(bounds.Dy())), 0, bounds.Dy()-1)
	c := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	return toNRGBA(core.Color{
		R: tint.R * float32(c.R) / 255,
		G: tint.G * float32(c.G) / 255,
		B: tint.B * float32(c.B) / 255,
		A: tint.A * float32(c.A) / 255,
	})
}

func toNRGBA(c core.Color) color.NRGBA {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

func unit8(v float32) uint8 {
	return uint8(core.ClampF(float64(v), 0, 1)*255 + 0.5)
}

// SetOverlay draws a tightly packed RGBA image over the top-left corner of
// the viewport on every following frame. A nil pix removes the overlay.
func (r *Renderer) SetOverlay(width, height int, pix []byte) error {
	if pix == nil {
		r.overlay = nil
		return nil
	}
	img, err := texture.ToImage(width, height, pix)
	if err != nil {
		return fmt.Errorf("offscreen: overlay: %w", err)
	}
	r.overlay = img
	return nil
}

// Presentation returns the scaling used for the last frame.
func (r *Renderer) Presentation() canvas.Presentation {
	return r.present
}

// Frames returns the number of frames rendered.
func (r *Renderer) Frames() int {
	return r.frames
}

// Image returns the surface.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// Pixel returns the surface color at (x, y).
func (r *Renderer) Pixel(x, y int) color.RGBA {
	return color.RGBAModel.Convert(r.dc.Image().At(x, y)).(color.RGBA)
}

// ReadPixels copies the surface into a tight, top-row-first RGBA buffer.
func (r *Renderer) ReadPixels() []byte {
	out := make([]byte, 0, r.width*r.height*4)
	img := r.dc.Image()
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			out = append(out, c.R, c.G, c.B, c.A)
		}
	}
	return out
}

// SavePNG writes the surface to path.
func (r *Renderer) SavePNG(path string) error {
	if err := r.dc.SavePNG(path); err != nil {
		return fmt.Errorf("offscreen: cannot save %s: %w", path, err)
	}
	return nil
}
