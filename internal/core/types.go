package core

// EntityID identifies an entity. Ids start at 1 and are never reused.
// The transform table stores ids as float32, so ids above MaxEntityID lose
// precision and can collide in that table.
type EntityID uint32

// MaxEntityID is the largest id a float32 table row holds exactly.
const MaxEntityID EntityID = 1 << 24

// TextureID identifies a registered texture. Ids start at 1 and are immutable.
type TextureID uint32

// Transform is one row of the transform table.
type Transform struct {
	Entity   EntityID
	X, Y     float32
	Rotation float32 // Radians
	ScaleX   float32
	ScaleY   float32
}

// UVRect is a normalized texture sub-rectangle.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// FullUV covers the whole texture.
var FullUV = UVRect{U0: 0, V0: 0, U1: 1, V1: 1}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is the neutral tint.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Sprite is the visual appearance assigned to an entity.
// Z is stored for scripts but does not affect batch order.
type Sprite struct {
	Entity  EntityID
	Texture TextureID
	UV      UVRect
	Color   Color
	Z       float32
}

// DrawBatch is a contiguous index range sharing one texture.
type DrawBatch struct {
	Texture    TextureID
	StartIndex uint32
	IndexCount uint32
}

// TransformRow decodes the transform at row i of a stride-6 table.
// The caller guarantees the row is in range.
func TransformRow(flat []float32, i int) Transform {
	o := i * TransformStride
	return Transform{
		Entity:   EntityID(flat[o]),
		X:        flat[o+1],
		Y:        flat[o+2],
		Rotation: flat[o+3],
		ScaleX:   flat[o+4],
		ScaleY:   flat[o+5],
	}
}

// AppendTransform encodes t onto a stride-6 table.
func AppendTransform(flat []float32, t Transform) []float32 {
	return append(flat, float32(t.Entity), t.X, t.Y, t.Rotation, t.ScaleX, t.ScaleY)
}
