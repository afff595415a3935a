// Package flicker implements a demo that submits its sprites once and then
// only streams transforms. Every other tick half the grid loses its
// transform rows, so those sprites dangle and are skipped until they come
// back.
package flicker

import (
	"math"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// Grid layout
const (
	Cols     = 8
	Rows     = 4
	Count    = Cols * Rows
	CellSize = 24
)

// Script flickers a Cols x Rows grid.
type Script struct {
	ids   []core.EntityID
	flat  []float64
	empty *exchange.SpriteBuffer
	ticks int
}

// New creates a flicker script.
func New() *Script {
	return &Script{}
}

// ID returns the unique identifier for this script.
func (s *Script) ID() string {
	return "flicker"
}

// Title returns the display name for this script.
func (s *Script) Title() string {
	return "Flicker Grid"
}

// Start submits the sprite table through the typed channel. It is never
// resubmitted.
func (s *Script) Start(h script.Host) error {
	s.ids = s.ids[:0]
	s.ticks = 0

	tex, err := h.RegisterTextureRGBA("cell", 2, 2, texture.Solid(2, 2, core.White))
	if err != nil {
		return err
	}

	sp := h.NewSpriteBuffer(Count)
	for i := 0; i < Count; i++ {
		id := h.CreateEntity()
		s.ids = append(s.ids, id)
		if err := sp.Set(i+1, core.Sprite{
			Entity:  id,
			Texture: tex,
			UV:      core.FullUV,
			Color:   cellColor(i),
		}); err != nil {
			return err
		}
	}
	h.SubmitSpriteBuffer(sp)
	s.flat = make([]float64, 0, Count*core.TransformStride)
	s.empty = h.NewSpriteBuffer(0)
	return nil
}

func cellColor(i int) core.Color {
	f := float32(i) / Count
	return core.Color{R: f, G: 1 - f, B: 0.5, A: 1}
}

// Update writes the transform table through the flat channel. On odd ticks
// the odd cells are left out. The empty typed sprite submission checks that
// sprites survive a submission with no rows.
func (s *Script) Update(h script.Host, dt float64) error {
	s.ticks++
	hideOdd := s.ticks%2 == 1

	s.flat = s.flat[:0]
	for i, id := range s.ids {
		if hideOdd && i%2 == 1 {
			continue
		}
		col, row := i%Cols, i/Cols
		wobble := 4 * math.Sin(h.Time()*3+float64(i))
		s.flat = append(s.flat,
			float64(id),
			float64(col*CellSize+CellSize),
			float64(row*CellSize+CellSize)+wobble,
			0,
			CellSize-4,
			CellSize-4,
		)
	}
	if err := h.SetTransforms(s.flat); err != nil {
		return err
	}
	h.SubmitSpriteBuffer(s.empty)
	return nil
}

// Visible returns how many cells the last tick kept.
func (s *Script) Visible() int {
	return len(s.flat) / core.TransformStride
}

// Register the script with the registry
func init() {
	registry.Register("flicker", func() script.Script {
		return New()
	})
}
