package mixed

import (
	"image/color"
	"testing"

	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/offscreen"
)

func TestTypedColorWinsInBothOrders(t *testing.T) {
	e, err := engine.New(New(), engine.Options{})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	w, h := e.Mode().Size()
	r := offscreen.New(int(w), int(h))
	want := color.RGBA{G: 255, A: 255}

	for frame := 1; frame <= 4; frame++ {
		f, err := e.Step(1.0 / 60)
		if err != nil {
			t.Fatalf("Step() frame %d failed: %v", frame, err)
		}
		for i, v := range f.Vertices {
			if v.R != TypedColor.R || v.G != TypedColor.G {
				t.Errorf("frame %d vertex %d color = (%v,%v), expected typed color", frame, i, v.R, v.G)
			}
		}
		if err := r.Render(f); err != nil {
			t.Fatalf("Render() failed: %v", err)
		}
		if got := r.Pixel(int(w/2), int(h/2)); got != want {
			t.Errorf("frame %d centre pixel = %v, expected %v", frame, got, want)
		}
		if n := len(e.State().Sprites()); n != 1 {
			t.Errorf("frame %d: %d sprites, expected 1", frame, n)
		}
	}
}
