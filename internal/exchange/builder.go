package exchange

import (
	"github.com/vovakirdan/spritecore/internal/atlas"
	"github.com/vovakirdan/spritecore/internal/core"
)

// FrameBuilder writes transform and sprite rows side by side and submits
// both through the typed channel on Commit. Rows are 1-based and the
// buffers grow when a row index passes their capacity.
type FrameBuilder struct {
	ex *Exchange
	tf *TransformBuffer
	sp *SpriteBuffer
}

// FrameBuilder wraps the given buffers. Nil buffers are created with a
// capacity of 64 rows.
func (ex *Exchange) FrameBuilder(tf *TransformBuffer, sp *SpriteBuffer) *FrameBuilder {
	if tf == nil {
		tf = ex.NewTransformBuffer(64)
	}
	if sp == nil {
		sp = ex.NewSpriteBuffer(64)
	}
	if tf.units == nil {
		tf.units = &ex.units
	}
	return &FrameBuilder{ex: ex, tf: tf, sp: sp}
}

// Transform writes transform row i in internal units.
func (fb *FrameBuilder) Transform(i int, id core.EntityID, x, y, rot, sx, sy float32) error {
	fb.growTransforms(i)
	return fb.tf.Set(i, id, x, y, rot, sx, sy)
}

// TransformPx writes transform row i with position and scale in pixels.
func (fb *FrameBuilder) TransformPx(i int, id core.EntityID, x, y, rot, sx, sy float32) error {
	fb.growTransforms(i)
	return fb.tf.SetPx(i, id, x, y, rot, sx, sy)
}

// SpriteTex writes sprite row i.
func (fb *FrameBuilder) SpriteTex(i int, id core.EntityID, tex core.TextureID, uv core.UVRect, c core.Color) error {
	fb.growSprites(i)
	return fb.sp.Set(i, core.Sprite{Entity: id, Texture: tex, UV: uv, Color: c})
}

// SpriteNamed writes sprite row i using a named atlas frame.
func (fb *FrameBuilder) SpriteNamed(i int, id core.EntityID, a *atlas.Atlas, name string, c core.Color) error {
	uv, err := a.UV(name)
	if err != nil {
		return err
	}
	return fb.SpriteTex(i, id, a.Texture, uv, c)
}

// SpriteColor replaces the tint of sprite row i.
func (fb *FrameBuilder) SpriteColor(i int, c core.Color) error {
	return fb.sp.SetColor(i, c)
}

// SpriteUV replaces the UV rectangle of sprite row i.
func (fb *FrameBuilder) SpriteUV(i int, uv core.UVRect) error {
	return fb.sp.SetUV(i, uv)
}

// Commit submits both buffers and leaves them empty for the next frame.
func (fb *FrameBuilder) Commit() {
	fb.ex.SubmitTransformBuffer(fb.tf)
	fb.ex.SubmitSpriteBuffer(fb.sp)
}

func (fb *FrameBuilder) growTransforms(i int) {
	if i > fb.tf.Cap() {
		fb.tf.Resize(max(i, fb.tf.Cap()*2))
	}
}

func (fb *FrameBuilder) growSprites(i int) {
	if i > fb.sp.Cap() {
		fb.sp.Resize(max(i, fb.sp.Cap()*2))
	}
}
