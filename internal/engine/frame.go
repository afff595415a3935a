package engine

import (
	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/canvas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/state"
)

// TextureLookup resolves texture ids for renderers.
type TextureLookup interface {
	Texture(id core.TextureID) (state.TextureSlot, bool)
}

// Frame is the renderer-facing output of one Step. Its slices alias engine
// storage and are valid until the next Step.
type Frame struct {
	Number uint64
	Ticks  int     // fixed ticks run this frame
	Alpha  float64 // interpolation factor left in the accumulator
	Hash   uint64  // transform table digest after the drain

	Vertices []batch.Vertex
	Indices  []uint32
	Batches  []core.DrawBatch
	Stats    batch.Stats

	Mode          canvas.Mode
	PixelsPerUnit float32 // multiply vertex positions by this to get canvas pixels
	ClearColor    core.Color
	Textures      TextureLookup
}

// Renderer consumes frames. Implementations own their window or surface and
// compute the letterbox from their own size with canvas.Present.
type Renderer interface {
	Render(f *Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f *Frame) error

// Render calls fn(f).
func (fn RendererFunc) Render(f *Frame) error {
	return fn(f)
}
