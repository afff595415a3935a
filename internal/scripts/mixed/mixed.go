// Package mixed implements a demo that submits sprites through both
// channels in the same frame. The typed submission always wins, whichever
// order the calls arrive in.
package mixed

import (
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// Colors of the two channels.
var (
	TypedColor = core.Color{R: 0, G: 1, B: 0, A: 1}
	FlatColor  = core.Color{R: 1, G: 0, B: 0, A: 1}
)

// Size is the sprite edge in pixels.
const Size = 64

// Script submits one sprite twice per tick.
type Script struct {
	id    core.EntityID
	tex   core.TextureID
	tf    *exchange.TransformBuffer
	sp    *exchange.SpriteBuffer
	flat  []float64
	ticks int
}

// New creates a mixed-submission script.
func New() *Script {
	return &Script{}
}

// ID returns the unique identifier for this script.
func (s *Script) ID() string {
	return "mixed"
}

// Title returns the display name for this script.
func (s *Script) Title() string {
	return "Mixed Submissions"
}

// Start creates the entity and its buffers.
func (s *Script) Start(h script.Host) error {
	tex, err := h.RegisterTextureRGBA("white", 1, 1, texture.Solid(1, 1, core.White))
	if err != nil {
		return err
	}
	s.tex = tex
	s.id = h.CreateEntity()
	s.tf = h.NewTransformBuffer(1)
	s.sp = h.NewSpriteBuffer(1)
	s.ticks = 0
	return nil
}

// Update submits a green typed sprite and a red flat sprite for the same
// entity. Even ticks send the flat one first.
func (s *Script) Update(h script.Host, dt float64) error {
	s.ticks++
	w, ht := h.CanvasSize()
	if err := s.tf.SetPx(1, s.id, w/2, ht/2, 0, Size, Size); err != nil {
		return err
	}
	h.SetTransformBuffer(s.tf)

	if err := s.sp.Set(1, core.Sprite{Entity: s.id, Texture: s.tex, UV: core.FullUV, Color: TypedColor}); err != nil {
		return err
	}
	c := FlatColor
	s.flat = append(s.flat[:0], float64(s.id), float64(s.tex), 0, 0, 1, 1,
		float64(c.R), float64(c.G), float64(c.B), float64(c.A), 0)

	if s.ticks%2 == 0 {
		if err := h.SubmitSprites(s.flat); err != nil {
			return err
		}
		h.SubmitSpriteBuffer(s.sp)
		return nil
	}
	h.SubmitSpriteBuffer(s.sp)
	return h.SubmitSprites(s.flat)
}

// Register the script with the registry
func init() {
	registry.Register("mixed", func() script.Script {
		return New()
	})
}
