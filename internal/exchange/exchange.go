// Package exchange moves data from script-owned working buffers into the
// FrameState without copying bulk payloads.
//
// Two channels feed each table. The typed channel swaps a buffer's storage
// into the exchange and hands the script back empty storage of the same
// capacity. The legacy v2 channel parses flat number arrays. Drain applies
// pending submissions once per frame with these rules:
//
//   - a typed submission beats a v2 submission in the same frame, whatever
//     the call order; among several typed submissions the last one wins
//   - sprites move through a holding area and are promoted only when it
//     carries new rows, so draining twice in a frame keeps the visible set
//   - sprites persist across frames until replaced; transforms are replaced
//     by every drained submission, including an empty one
//
// An Exchange is owned by the frame loop and is not safe for concurrent use.
package exchange

import (
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/state"
)

type source int

const (
	sourceNone source = iota
	sourceV2
	sourceTyped
)

// Exchange stages script submissions until the next Drain.
type Exchange struct {
	units Units

	typedTransforms []float32
	hasTyped        bool
	v2Transforms    []float32
	hasV2           bool
	transformSource source

	holding         []core.Sprite
	holdingFresh    bool
	typedSprites    bool // a typed sprite submission arrived this frame
	v2Sprites       []core.Sprite
	hasV2Sprites    bool
	spriteSource    source
	spareTransforms []float32
	spareSprites    []core.Sprite

	calls int
}

// New creates an empty Exchange.
func New() *Exchange {
	return &Exchange{}
}

// Units returns the pixel-to-unit converter shared by buffers created here.
func (ex *Exchange) Units() *Units {
	return &ex.units
}

// SetPixelsPerUnit sets the scalar used by the pixel helpers.
func (ex *Exchange) SetPixelsPerUnit(ppu float32) {
	ex.units.SetPixelsPerUnit(ppu)
}

// NewTransformBuffer creates a typed transform buffer bound to this
// exchange's unit conversion.
func (ex *Exchange) NewTransformBuffer(capacity int) *TransformBuffer {
	b := NewTransformBuffer(capacity)
	b.units = &ex.units
	return b
}

// NewSpriteBuffer creates a typed sprite buffer.
func (ex *Exchange) NewSpriteBuffer(capacity int) *SpriteBuffer {
	return NewSpriteBuffer(capacity)
}

// Calls returns the number of submissions since the last EndFrame.
func (ex *Exchange) Calls() int {
	return ex.calls
}

// SubmitTransformBuffer takes the buffer's rows through the typed channel.
// The buffer is left empty with its capacity unchanged.
func (ex *Exchange) SubmitTransformBuffer(b *TransformBuffer) {
	ex.calls++
	if b.units == nil {
		b.units = &ex.units
	}
	if ex.hasTyped {
		ex.recycleTransforms(ex.typedTransforms)
	}
	ex.typedTransforms = b.take(ex.spareTransforms)
	ex.spareTransforms = nil
	ex.hasTyped = true
}

// SubmitTransformsFlat stages a flat stride-6 array through the v2 channel.
// A bad length fails with a *core.StrideError and stages nothing.
func (ex *Exchange) SubmitTransformsFlat(vals []float64) error {
	ex.calls++
	if err := core.CheckStride("set_transforms", len(vals), core.TransformStride); err != nil {
		return err
	}
	out := ex.transformStorage(len(vals))
	for _, v := range vals {
		out = append(out, float32(v))
	}
	ex.v2Transforms = out
	ex.hasV2 = true
	return nil
}

// SubmitSpriteBuffer moves the buffer's rows into the holding area.
// An empty buffer is not new data and leaves the holding area alone, but it
// still counts as a typed submission and discards v2 sprites for the frame.
func (ex *Exchange) SubmitSpriteBuffer(b *SpriteBuffer) {
	ex.calls++
	ex.typedSprites = true
	if b.Len() == 0 {
		return
	}
	if ex.holdingFresh {
		ex.recycleSprites(ex.holding)
	}
	ex.holding = b.take(ex.spareSprites)
	ex.spareSprites = nil
	ex.holdingFresh = true
}

// SubmitSpritesFlat stages a flat stride-11 array through the v2 channel:
// id, texture, u0, v0, u1, v1, r, g, b, a, z per row.
// A bad length fails with a *core.StrideError and stages nothing.
func (ex *Exchange) SubmitSpritesFlat(vals []float64) error {
	ex.calls++
	if err := core.CheckStride("submit_sprites", len(vals), core.SpriteStride); err != nil {
		return err
	}
	if len(vals) == 0 {
		return nil
	}
	rows := make([]core.Sprite, 0, len(vals)/core.SpriteStride)
	for o := 0; o < len(vals); o += core.SpriteStride {
		r := vals[o : o+core.SpriteStride]
		rows = append(rows, core.Sprite{
			Entity:  core.EntityID(r[0]),
			Texture: core.TextureID(r[1]),
			UV:      core.UVRect{U0: float32(r[2]), V0: float32(r[3]), U1: float32(r[4]), V1: float32(r[5])},
			Color:   core.Color{R: float32(r[6]), G: float32(r[7]), B: float32(r[8]), A: float32(r[9])},
			Z:       float32(r[10]),
		})
	}
	ex.v2Sprites = rows
	ex.hasV2Sprites = true
	return nil
}

// Drain applies pending submissions to fs. It is safe to call more than once
// per frame: a drain with nothing new leaves fs as it was.
func (ex *Exchange) Drain(fs *state.FrameState) error {
	if err := ex.drainTransforms(fs); err != nil {
		return err
	}
	ex.drainSprites(fs)
	return nil
}

func (ex *Exchange) drainTransforms(fs *state.FrameState) error {
	switch {
	case ex.hasTyped:
		old, err := fs.ReplaceTransforms(ex.typedTransforms)
		if err != nil {
			return err
		}
		ex.typedTransforms = nil
		ex.hasTyped = false
		ex.hasV2 = false
		ex.transformSource = sourceTyped
		ex.recycleTransforms(old)
	case ex.hasV2 && ex.transformSource != sourceTyped:
		old, err := fs.ReplaceTransforms(ex.v2Transforms)
		if err != nil {
			return err
		}
		ex.v2Transforms = nil
		ex.hasV2 = false
		ex.transformSource = sourceV2
		ex.recycleTransforms(old)
	case ex.hasV2:
		ex.recycleTransforms(ex.v2Transforms)
		ex.v2Transforms = nil
		ex.hasV2 = false
	}
	return nil
}

func (ex *Exchange) drainSprites(fs *state.FrameState) {
	switch {
	case ex.holdingFresh:
		old := fs.ReplaceSprites(ex.holding)
		ex.holding = nil
		ex.holdingFresh = false
		ex.v2Sprites = nil
		ex.hasV2Sprites = false
		ex.spriteSource = sourceTyped
		ex.recycleSprites(old)
	case ex.typedSprites:
		ex.v2Sprites = nil
		ex.hasV2Sprites = false
		ex.spriteSource = sourceTyped
	case ex.hasV2Sprites && ex.spriteSource != sourceTyped:
		old := fs.ReplaceSprites(ex.v2Sprites)
		ex.v2Sprites = nil
		ex.hasV2Sprites = false
		ex.spriteSource = sourceV2
		ex.recycleSprites(old)
	case ex.hasV2Sprites:
		ex.v2Sprites = nil
		ex.hasV2Sprites = false
	}
}

// EndFrame resets the per-frame drain latches and the call counter.
// Typed submissions made after the last drain carry over to the next frame.
func (ex *Exchange) EndFrame() {
	if ex.transformSource == sourceTyped && ex.hasV2 {
		ex.recycleTransforms(ex.v2Transforms)
		ex.v2Transforms = nil
		ex.hasV2 = false
	}
	if ex.spriteSource == sourceTyped && ex.hasV2Sprites {
		ex.v2Sprites = nil
		ex.hasV2Sprites = false
	}
	ex.transformSource = sourceNone
	ex.spriteSource = sourceNone
	ex.typedSprites = false
	ex.calls = 0
}

// Reset drops every pending submission.
func (ex *Exchange) Reset() {
	units := ex.units
	*ex = Exchange{units: units}
}

func (ex *Exchange) transformStorage(n int) []float32 {
	if ex.hasV2 && cap(ex.v2Transforms) >= n {
		return ex.v2Transforms[:0]
	}
	if cap(ex.spareTransforms) >= n {
		out := ex.spareTransforms[:0]
		ex.spareTransforms = nil
		return out
	}
	return make([]float32, 0, n)
}

func (ex *Exchange) recycleTransforms(s []float32) {
	if cap(s) > cap(ex.spareTransforms) {
		ex.spareTransforms = s[:0]
	}
}

func (ex *Exchange) recycleSprites(s []core.Sprite) {
	if cap(s) > cap(ex.spareSprites) {
		ex.spareSprites = s[:0]
	}
}
