// Package canvas maps a fixed virtual resolution onto an arbitrary window.
// Every function here is pure: identical inputs give identical outputs.
package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/spritecore/internal/core"
)

// Mode selects the virtual canvas resolution and its scaling policy.
type Mode int

const (
	// PixelExact is the 320x180 retro canvas, scaled by whole integers only.
	PixelExact Mode = iota
	// HighRes is the 1920x1080 canvas, scaled by integers when close enough.
	HighRes
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case PixelExact:
		return "pixel_exact"
	case HighRes:
		return "high_res"
	default:
		return "unknown"
	}
}

// Size returns the virtual resolution of the mode.
func (m Mode) Size() (w, h float32) {
	if m == HighRes {
		return 1920, 1080
	}
	return 320, 180
}

// ParseMode converts a config name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pixel_exact", "retro", "retro320x180", "":
		return PixelExact, nil
	case "high_res", "hd", "hd1920x1080":
		return HighRes, nil
	default:
		return PixelExact, fmt.Errorf("canvas: unknown mode %q", s)
	}
}

// Filter is the texture sampling mode used when presenting the canvas.
type Filter int

const (
	Nearest Filter = iota
	Linear
)

func (f Filter) String() string {
	if f == Linear {
		return "linear"
	}
	return "nearest"
}

// Scaling is the final presentation scale and its filter.
type Scaling struct {
	Scale  float32
	Filter Filter
}

// integerTolerance is how far a high-res scale may sit from an integer and
// still be snapped to it.
const integerTolerance = 0.05

// BaseScale returns the largest uniform scale that fits the virtual canvas
// inside the window.
func BaseScale(windowW, windowH, virtualW, virtualH float32) float32 {
	return min(windowW/virtualW, windowH/virtualH)
}

// FinalScale applies the mode policy to a base scale.
func FinalScale(base float32, mode Mode) Scaling {
	switch mode {
	case HighRes:
		ideal := float32(math.Round(float64(base)*100) / 100)
		nearest := float32(math.Round(float64(base)))
		if abs32(ideal-nearest) < integerTolerance {
			return Scaling{Scale: nearest, Filter: Nearest}
		}
		return Scaling{Scale: base, Filter: Linear}
	default:
		return Scaling{Scale: max(float32(math.Floor(float64(base))), 1), Filter: Nearest}
	}
}

// Letterbox centers the scaled canvas in the window. The origin is negative
// when the canvas overflows the window; it is not clamped.
func Letterbox(windowW, windowH, virtualW, virtualH, scale float32) core.Rect {
	w := virtualW * scale
	h := virtualH * scale
	return core.Rect{
		X: (windowW - w) * 0.5,
		Y: (windowH - h) * 0.5,
		W: w,
		H: h,
	}
}

// PixelToNDC maps a pixel coordinate along an axis of the given size into
// clip space [-1, 1].
func PixelToNDC(pixel, dimension float32) float32 {
	return (pixel/dimension)*2 - 1
}

// Presentation is everything a renderer needs to blit the virtual canvas.
type Presentation struct {
	Mode     Mode
	VirtualW float32
	VirtualH float32
	Scaling
	Viewport core.Rect
}

// Present computes the presentation for a window size and mode.
// A window with a zero dimension is treated as a base scale of 0.
func Present(windowW, windowH float32, mode Mode) Presentation {
	vw, vh := mode.Size()
	base := float32(0)
	if windowW > 0 && windowH > 0 {
		base = BaseScale(windowW, windowH, vw, vh)
	}
	s := FinalScale(base, mode)
	return Presentation{
		Mode:     mode,
		VirtualW: vw,
		VirtualH: vh,
		Scaling:  s,
		Viewport: Letterbox(windowW, windowH, vw, vh, s.Scale),
	}
}

// WindowToVirtual maps a window pixel into virtual canvas coordinates.
// ok is false when the point falls in the letterbox bars.
func (p Presentation) WindowToVirtual(x, y float32) (vx, vy float32, ok bool) {
	if p.Scale == 0 {
		return 0, 0, false
	}
	vx = (x - p.Viewport.X) / p.Scale
	vy = (y - p.Viewport.Y) / p.Scale
	return vx, vy, p.Viewport.Contains(x, y)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
