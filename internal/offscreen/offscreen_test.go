package offscreen

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/canvas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/texture"
)

var (
	black = color.RGBA{A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

// quadFrame returns a frame with one untextured red quad covering
// (10,10)-(20,20) on a blue canvas.
func quadFrame() *engine.Frame {
	c := core.Color{R: 1, A: 1}
	v := func(x, y, u, vv float32) batch.Vertex {
		return batch.Vertex{X: x, Y: y, U: u, V: vv, R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return &engine.Frame{
		Vertices: []batch.Vertex{
			v(10, 10, 0, 0), v(20, 10, 1, 0), v(20, 20, 1, 1), v(10, 20, 0, 1),
		},
		Indices:       []uint32{0, 1, 2, 2, 3, 0},
		Batches:       []core.DrawBatch{{Texture: 1, StartIndex: 0, IndexCount: 6}},
		Mode:          canvas.PixelExact,
		PixelsPerUnit: 1,
		ClearColor:    core.Color{B: 1, A: 1},
	}
}

func TestRenderQuad(t *testing.T) {
	r := New(320, 180)
	if err := r.Render(quadFrame()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	if got := r.Pixel(15, 15); got != red {
		t.Errorf("Pixel(15, 15) = %v, expected %v", got, red)
	}
	if got := r.Pixel(100, 100); got != blue {
		t.Errorf("Pixel(100, 100) = %v, expected %v", got, blue)
	}
	if r.Frames() != 1 {
		t.Errorf("Frames() = %d, expected 1", r.Frames())
	}
}

func TestRenderLetterbox(t *testing.T) {
	r := New(800, 600)
	if err := r.Render(quadFrame()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	p := r.Presentation()
	if p.Scale != 2 {
		t.Errorf("Scale = %v, expected 2", p.Scale)
	}
	want := core.Rect{X: 80, Y: 120, W: 640, H: 360}
	if p.Viewport != want {
		t.Errorf("Viewport = %+v, expected %+v", p.Viewport, want)
	}

	if got := r.Pixel(10, 10); got != black {
		t.Errorf("Pixel(10, 10) outside viewport = %v, expected %v", got, black)
	}
	// Quad (10,10)-(20,20) scaled by 2 and offset by the letterbox
	if got := r.Pixel(80+30, 120+30); got != red {
		t.Errorf("Pixel(110, 150) = %v, expected %v", got, red)
	}
	if got := r.Pixel(400, 400); got != blue {
		t.Errorf("Pixel(400, 400) = %v, expected %v", got, blue)
	}
}

func TestOverlay(t *testing.T) {
	r := New(320, 180)
	if err := r.SetOverlay(2, 2, texture.Solid(2, 2, core.Color{G: 1, A: 1})); err != nil {
		t.Fatalf("SetOverlay() failed: %v", err)
	}
	if err := r.Render(quadFrame()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if got := r.Pixel(1, 1); got != green {
		t.Errorf("Pixel(1, 1) = %v, expected %v", got, green)
	}

	if err := r.SetOverlay(3, 3, make([]byte, 4)); err == nil {
		t.Error("SetOverlay() with a short buffer succeeded, expected error")
	}

	if err := r.SetOverlay(0, 0, nil); err != nil {
		t.Fatalf("SetOverlay(nil) failed: %v", err)
	}
	if err := r.Render(quadFrame()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if got := r.Pixel(1, 1); got != blue {
		t.Errorf("Pixel(1, 1) after removing overlay = %v, expected %v", got, blue)
	}
}

func TestReadPixels(t *testing.T) {
	r := New(320, 180)
	if err := r.Render(quadFrame()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	pix := r.ReadPixels()
	if len(pix) != 320*180*4 {
		t.Fatalf("len(ReadPixels()) = %d, expected %d", len(pix), 320*180*4)
	}
	i := (15*320 + 15) * 4
	if got := (color.RGBA{R: pix[i], G: pix[i+1], B: pix[i+2], A: pix[i+3]}); got != red {
		t.Errorf("pixel (15, 15) = %v, expected %v", got, red)
	}
}

func TestSavePNG(t *testing.T) {
	r := New(320, 180)
	if err := r.Render(quadFrame()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := r.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("image size = %dx%d, expected 320x180", b.Dx(), b.Dy())
	}
}
