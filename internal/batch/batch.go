// Package batch turns the frame tables into texture-grouped geometry.
package batch

import (
	"cmp"
	"math"
	"slices"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/state"
)

// Vertex is one corner of a sprite quad in world units.
type Vertex struct {
	X, Y       float32
	U, V       float32
	R, G, B, A float32
}

// Stats summarises one Build.
type Stats struct {
	Sprites   int // Sprites drawn
	Skipped   int // Sprites without a transform this frame
	DrawCalls int // Equal to the number of batches
}

// Batcher builds the vertex stream, index stream and draw batches for a
// frame. Its slices are reused between frames; consumers must finish with
// them before the next Build.
type Batcher struct {
	Vertices []Vertex
	Indices  []uint32
	Batches  []core.DrawBatch

	lookup map[core.EntityID]int
	order  []int
}

// New creates a Batcher.
func New() *Batcher {
	return &Batcher{lookup: make(map[core.EntityID]int)}
}

// Build reads fs and regenerates the geometry. Sprites are grouped by
// texture id in ascending order and keep their submission order inside a
// group. Sprites whose entity has no transform are skipped silently. When an
// entity appears twice in the transform table the later row wins.
func (b *Batcher) Build(fs *state.FrameState) Stats {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
	b.Batches = b.Batches[:0]
	b.order = b.order[:0]
	clear(b.lookup)

	transforms := fs.Transforms()
	rows := len(transforms) / core.TransformStride
	for i := 0; i < rows; i++ {
		b.lookup[core.EntityID(transforms[i*core.TransformStride])] = i
	}

	sprites := fs.Sprites()
	var stats Stats
	for i := range sprites {
		if _, ok := b.lookup[sprites[i].Entity]; ok {
			b.order = append(b.order, i)
		} else {
			stats.Skipped++
		}
	}
	slices.SortStableFunc(b.order, func(x, y int) int {
		return cmp.Compare(sprites[x].Texture, sprites[y].Texture)
	})

	for n, si := range b.order {
		s := &sprites[si]
		if n == 0 || s.Texture != sprites[b.order[n-1]].Texture {
			b.Batches = append(b.Batches, core.DrawBatch{
				Texture:    s.Texture,
				StartIndex: uint32(len(b.Indices)),
			})
		}
		t := core.TransformRow(transforms, b.lookup[s.Entity])
		b.appendQuad(t, s)
		b.Batches[len(b.Batches)-1].IndexCount += 6
	}

	stats.Sprites = len(b.order)
	stats.DrawCalls = len(b.Batches)
	return stats
}

// appendQuad appends 4 vertices and 6 indices for one sprite.
func (b *Batcher) appendQuad(t core.Transform, s *core.Sprite) {
	hw := t.ScaleX / 2
	hh := t.ScaleY / 2

	// Local corners: TL, TR, BR, BL
	lx := [4]float32{-hw, hw, hw, -hw}
	ly := [4]float32{-hh, -hh, hh, hh}
	u := [4]float32{s.UV.U0, s.UV.U1, s.UV.U1, s.UV.U0}
	v := [4]float32{s.UV.V0, s.UV.V0, s.UV.V1, s.UV.V1}

	sin, cos := math.Sincos(float64(t.Rotation))
	sn, cs := float32(sin), float32(cos)

	base := uint32(len(b.Vertices))
	for i := 0; i < 4; i++ {
		b.Vertices = append(b.Vertices, Vertex{
			X: lx[i]*cs - ly[i]*sn + t.X,
			Y: lx[i]*sn + ly[i]*cs + t.Y,
			U: u[i],
			V: v[i],
			R: s.Color.R,
			G: s.Color.G,
			B: s.Color.B,
			A: s.Color.A,
		})
	}

	// Two triangles: TL-TR-BR, BR-BL-TL
	b.Indices = append(b.Indices,
		base+0, base+1, base+2,
		base+2, base+3, base+0,
	)
}

// TextureIDs returns the texture of every batch in draw order.
func (b *Batcher) TextureIDs() []core.TextureID {
	ids := make([]core.TextureID, len(b.Batches))
	for i, batch := range b.Batches {
		ids[i] = batch.Texture
	}
	return ids
}
