package exchange

import (
	"github.com/vovakirdan/spritecore/internal/atlas"
	"github.com/vovakirdan/spritecore/internal/core"
)

// Units converts script pixel values into the internal unit space.
// A zero or negative pixels-per-unit value means 1:1.
type Units struct {
	ppu float32
}

// SetPixelsPerUnit sets the conversion scalar.
func (u *Units) SetPixelsPerUnit(ppu float32) {
	u.ppu = ppu
}

// PixelsPerUnit returns the conversion scalar, 1 when unset.
func (u *Units) PixelsPerUnit() float32 {
	if u == nil || u.ppu <= 0 {
		return 1
	}
	return u.ppu
}

// ToUnits divides a pixel value by the pixels-per-unit scalar.
func (u *Units) ToUnits(px float32) float32 {
	return px / u.PixelsPerUnit()
}

// TransformBuffer is a script-owned stride-6 working buffer for the typed
// transform channel. Rows are addressed 1-based; Len is the highest row
// written since the last Clear.
type TransformBuffer struct {
	data  []float32
	rows  int
	units *Units
}

// NewTransformBuffer creates a buffer with room for capacity rows.
func NewTransformBuffer(capacity int) *TransformBuffer {
	return &TransformBuffer{data: make([]float32, max(capacity, 0)*core.TransformStride)}
}

// Len returns the number of active rows.
func (b *TransformBuffer) Len() int { return b.rows }

// Cap returns the declared capacity in rows.
func (b *TransformBuffer) Cap() int { return len(b.data) / core.TransformStride }

// Set writes row i in internal units.
func (b *TransformBuffer) Set(i int, id core.EntityID, x, y, rot, sx, sy float32) error {
	idx, err := rowIndex("set_transforms", i, b.Cap())
	if err != nil {
		return err
	}
	o := idx * core.TransformStride
	b.data[o] = float32(id)
	b.data[o+1] = x
	b.data[o+2] = y
	b.data[o+3] = rot
	b.data[o+4] = sx
	b.data[o+5] = sy
	if i > b.rows {
		b.rows = i
	}
	return nil
}

// SetPx writes row i with position and scale given in pixels.
func (b *TransformBuffer) SetPx(i int, id core.EntityID, x, y, rot, sx, sy float32) error {
	u := b.units
	return b.Set(i, id, u.ToUnits(x), u.ToUnits(y), rot, u.ToUnits(sx), u.ToUnits(sy))
}

// Row returns row i (1-based) decoded.
func (b *TransformBuffer) Row(i int) (core.Transform, bool) {
	if i < 1 || i > b.rows {
		return core.Transform{}, false
	}
	return core.TransformRow(b.data, i-1), true
}

// Resize changes the capacity, keeping existing rows that still fit.
func (b *TransformBuffer) Resize(capacity int) {
	capacity = max(capacity, 0)
	n := capacity * core.TransformStride
	if n <= cap(b.data) {
		b.data = b.data[:n]
	} else {
		grown := make([]float32, n)
		copy(grown, b.data)
		b.data = grown
	}
	b.rows = min(b.rows, capacity)
}

// Clear drops all rows and keeps the capacity.
func (b *TransformBuffer) Clear() { b.rows = 0 }

// take hands the active rows to the exchange and installs storage of the
// same capacity in their place.
func (b *TransformBuffer) take(spare []float32) []float32 {
	out := b.data[:b.rows*core.TransformStride]
	n := len(b.data)
	if cap(spare) >= n {
		b.data = spare[:n]
		clear(b.data)
	} else {
		b.data = make([]float32, n)
	}
	b.rows = 0
	return out
}

// SpriteBuffer is a script-owned working buffer for the typed sprite channel.
// Rows are addressed 1-based; Len is the highest row written since Clear.
type SpriteBuffer struct {
	data []core.Sprite
	rows int
}

// NewSpriteBuffer creates a buffer with room for capacity rows.
func NewSpriteBuffer(capacity int) *SpriteBuffer {
	return &SpriteBuffer{data: make([]core.Sprite, max(capacity, 0))}
}

// Len returns the number of active rows.
func (b *SpriteBuffer) Len() int { return b.rows }

// Cap returns the declared capacity in rows.
func (b *SpriteBuffer) Cap() int { return len(b.data) }

// Set writes a full row.
func (b *SpriteBuffer) Set(i int, s core.Sprite) error {
	idx, err := rowIndex("submit_sprites", i, b.Cap())
	if err != nil {
		return err
	}
	b.data[idx] = s
	b.touch(i)
	return nil
}

// SetTex assigns the entity and texture of row i.
func (b *SpriteBuffer) SetTex(i int, id core.EntityID, tex core.TextureID) error {
	idx, err := rowIndex("submit_sprites", i, b.Cap())
	if err != nil {
		return err
	}
	b.data[idx].Entity = id
	b.data[idx].Texture = tex
	b.touch(i)
	return nil
}

// SetUV assigns the UV rectangle of row i.
func (b *SpriteBuffer) SetUV(i int, uv core.UVRect) error {
	idx, err := rowIndex("submit_sprites", i, b.Cap())
	if err != nil {
		return err
	}
	b.data[idx].UV = uv
	return nil
}

// SetColor assigns the tint of row i.
func (b *SpriteBuffer) SetColor(i int, c core.Color) error {
	idx, err := rowIndex("submit_sprites", i, b.Cap())
	if err != nil {
		return err
	}
	b.data[idx].Color = c
	return nil
}

// SetZ assigns the depth value of row i.
func (b *SpriteBuffer) SetZ(i int, z float32) error {
	idx, err := rowIndex("submit_sprites", i, b.Cap())
	if err != nil {
		return err
	}
	b.data[idx].Z = z
	return nil
}

// SetNamedUV assigns the atlas texture and the named frame's UVs to row i.
func (b *SpriteBuffer) SetNamedUV(i int, a *atlas.Atlas, name string) error {
	idx, err := rowIndex("submit_sprites", i, b.Cap())
	if err != nil {
		return err
	}
	uv, err := a.UV(name)
	if err != nil {
		return err
	}
	b.data[idx].UV = uv
	b.data[idx].Texture = a.Texture
	return nil
}

// Row returns row i (1-based).
func (b *SpriteBuffer) Row(i int) (core.Sprite, bool) {
	if i < 1 || i > b.rows {
		return core.Sprite{}, false
	}
	return b.data[i-1], true
}

// Resize changes the capacity, keeping existing rows that still fit.
func (b *SpriteBuffer) Resize(capacity int) {
	capacity = max(capacity, 0)
	if capacity <= cap(b.data) {
		b.data = b.data[:capacity]
	} else {
		grown := make([]core.Sprite, capacity)
		copy(grown, b.data)
		b.data = grown
	}
	b.rows = min(b.rows, capacity)
}

// Clear drops all rows and keeps the capacity.
func (b *SpriteBuffer) Clear() { b.rows = 0 }

func (b *SpriteBuffer) touch(i int) {
	if i > b.rows {
		b.rows = i
	}
}

func (b *SpriteBuffer) take(spare []core.Sprite) []core.Sprite {
	out := b.data[:b.rows]
	n := len(b.data)
	if cap(spare) >= n {
		b.data = spare[:n]
		clear(b.data)
	} else {
		b.data = make([]core.Sprite, n)
	}
	b.rows = 0
	return out
}

func rowIndex(op string, i, capacity int) (int, error) {
	if i < 1 {
		return 0, &core.ArgError{Op: op, Reason: "index must be >= 1"}
	}
	if i > capacity {
		return 0, &core.ArgError{Op: op, Reason: "index exceeds capacity"}
	}
	return i - 1, nil
}
