// Package state holds the authoritative per-frame world tables: entity ids,
// the transform table, the sprite table and the texture registry.
//
// A FrameState is owned by the frame loop and passed explicitly to the
// exchange and batching stages. It is not safe for concurrent use.
package state

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// TextureSlot is one registered texture. Bytes stay owned by the FrameState
// until a renderer consumes them; ids never change once assigned.
type TextureSlot struct {
	ID     core.TextureID
	Name   string
	Bytes  []byte
	Format string
	Width  int
	Height int
}

// FrameState is the single source of truth read by batching and written by
// the exchange layer.
type FrameState struct {
	budgets    core.Budgets
	nextEntity core.EntityID
	transforms []float32
	sprites    []core.Sprite
	textures   []TextureSlot
	frameCalls int
	clearColor core.Color
}

// New creates an empty FrameState. Zero budget fields take the defaults.
func New(b core.Budgets) *FrameState {
	def := core.DefaultBudgets()
	if b.MaxEntities <= 0 {
		b.MaxEntities = def.MaxEntities
	}
	if b.MaxTextures <= 0 {
		b.MaxTextures = def.MaxTextures
	}
	if b.MaxCallsPerFrame <= 0 {
		b.MaxCallsPerFrame = def.MaxCallsPerFrame
	}
	return &FrameState{
		budgets:    b,
		nextEntity: 1,
		clearColor: core.Color{A: 1},
	}
}

// Budgets returns the capacity budgets in effect.
func (fs *FrameState) Budgets() core.Budgets {
	return fs.budgets
}

// CreateEntity allocates the next entity id. It never fails.
func (fs *FrameState) CreateEntity() core.EntityID {
	id := fs.nextEntity
	fs.nextEntity++
	return id
}

// EntityCount returns how many entity ids have been allocated.
func (fs *FrameState) EntityCount() int {
	return int(fs.nextEntity - 1)
}

// RegisterTexture stores encoded image bytes under a new texture id.
// Dimensions are filled in when the header is recognised.
func (fs *FrameState) RegisterTexture(data []byte, name string) (core.TextureID, error) {
	info, _ := texture.Probe(data)
	return fs.addTexture(TextureSlot{
		Name:   name,
		Bytes:  data,
		Format: info.Format,
		Width:  info.Width,
		Height: info.Height,
	})
}

// RegisterRGBA stores a raw RGBA pixel buffer under a new texture id.
// The buffer must follow the overlay layout checked by texture.ValidateRGBA.
func (fs *FrameState) RegisterRGBA(width, height int, pix []byte, name string) (core.TextureID, error) {
	if err := texture.ValidateRGBA(width, height, pix); err != nil {
		return 0, &core.ArgError{Op: "register_texture", Reason: err.Error()}
	}
	return fs.addTexture(TextureSlot{
		Name:   name,
		Bytes:  pix,
		Format: texture.FormatRGBA,
		Width:  width,
		Height: height,
	})
}

func (fs *FrameState) addTexture(slot TextureSlot) (core.TextureID, error) {
	if len(fs.textures) >= fs.budgets.MaxTextures {
		return 0, &core.CapacityError{Resource: "texture", Limit: fs.budgets.MaxTextures}
	}
	slot.ID = core.TextureID(len(fs.textures) + 1)
	fs.textures = append(fs.textures, slot)
	return slot.ID, nil
}

// Texture returns the slot for id. ok is false for unknown ids.
func (fs *FrameState) Texture(id core.TextureID) (TextureSlot, bool) {
	if id == 0 || int(id) > len(fs.textures) {
		return TextureSlot{}, false
	}
	return fs.textures[id-1], true
}

// TextureCount returns the number of registered textures.
func (fs *FrameState) TextureCount() int {
	return len(fs.textures)
}

// SetTransforms replaces the transform table with flat, taking ownership of
// the slice. A length that is not a multiple of 6 is rejected and the table
// is left unchanged. Rows beyond the entity budget are dropped silently.
func (fs *FrameState) SetTransforms(flat []float32) error {
	_, err := fs.ReplaceTransforms(flat)
	return err
}

// ReplaceTransforms is SetTransforms that also hands back the previous table
// so the caller can recycle its storage. old is nil on error.
func (fs *FrameState) ReplaceTransforms(flat []float32) (old []float32, err error) {
	fs.frameCalls++
	if err := core.CheckStride("set_transforms", len(flat), core.TransformStride); err != nil {
		return nil, err
	}
	if limit := fs.budgets.MaxEntities * core.TransformStride; len(flat) > limit {
		flat = flat[:limit]
	}
	old = fs.transforms
	fs.transforms = flat
	return old, nil
}

// Transforms returns the current stride-6 table. Callers must not modify it.
func (fs *FrameState) Transforms() []float32 {
	return fs.transforms
}

// TransformCount returns the number of rows in the transform table.
func (fs *FrameState) TransformCount() int {
	return len(fs.transforms) / core.TransformStride
}

// SetSprites replaces the sprite table, taking ownership of rows.
// Rows are not checked against the transform table.
func (fs *FrameState) SetSprites(rows []core.Sprite) {
	fs.ReplaceSprites(rows)
}

// ReplaceSprites is SetSprites that also hands back the previous table.
// Rows past the entity budget are dropped.
func (fs *FrameState) ReplaceSprites(rows []core.Sprite) (old []core.Sprite) {
	fs.frameCalls++
	if len(rows) > fs.budgets.MaxEntities {
		rows = rows[:fs.budgets.MaxEntities]
	}
	old = fs.sprites
	fs.sprites = rows
	return old
}

// Sprites returns the current sprite table. Callers must not modify it.
func (fs *FrameState) Sprites() []core.Sprite {
	return fs.sprites
}

// FrameCalls returns the number of table writes since the last EndFrame.
func (fs *FrameState) FrameCalls() int {
	return fs.frameCalls
}

// OverBudget reports whether this frame made more writes than the advisory
// budget allows. It never blocks a write.
func (fs *FrameState) OverBudget() bool {
	return fs.frameCalls > fs.budgets.MaxCallsPerFrame
}

// EndFrame resets the per-frame call counter.
func (fs *FrameState) EndFrame() {
	fs.frameCalls = 0
}

// SetClearColor sets the background color of the virtual canvas.
func (fs *FrameState) SetClearColor(c core.Color) {
	fs.clearColor = c
}

// ClearColor returns the background color of the virtual canvas.
func (fs *FrameState) ClearColor() core.Color {
	return fs.clearColor
}

// TransformHash returns an FNV-1a 64 digest of the transform table's float
// bits. Identical tables give identical hashes on every platform.
func (fs *FrameState) TransformHash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, v := range fs.transforms {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Reset drops every table and restarts id allocation. Budgets are kept.
func (fs *FrameState) Reset() {
	*fs = FrameState{
		budgets:    fs.budgets,
		nextEntity: 1,
		clearColor: core.Color{A: 1},
	}
}
