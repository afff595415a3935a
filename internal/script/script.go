// Package script defines the contract between the engine and the scripts it
// drives. Scripts contain frame logic only; they reach the engine through
// Host and never touch FrameState directly.
package script

import (
	"github.com/vovakirdan/spritecore/internal/atlas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
)

// Script is the interface every demo or user script implements.
type Script interface {
	// ID returns a unique identifier used by the CLI and as the
	// persistence namespace (e.g., "bounce").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Start runs once before the first tick. Textures and entities are
	// usually created here.
	Start(h Host) error

	// Update advances the script by one fixed tick.
	Update(h Host, dt float64) error
}

// Metrics is the subset of frame metrics visible to scripts. It describes the
// last completed frame.
type Metrics struct {
	CPUFrameMS       float64
	DrawCalls        int
	SpritesSubmitted int
}

// MetricsProvider exposes frame metrics.
type MetricsProvider interface {
	Metrics() Metrics
}

// InputProvider exposes the input snapshot for the current frame.
type InputProvider interface {
	Input() core.InputSnapshot
}

// KVStore persists scalar values (nil, bool, number, string) across runs.
type KVStore interface {
	Persist(key string, value any) error
	Restore(key string) (any, bool, error)
}

// Host is everything a script may call.
type Host interface {
	MetricsProvider
	InputProvider
	KVStore

	CreateEntity() core.EntityID
	RegisterTexture(path string) (core.TextureID, error)
	RegisterTextureRGBA(name string, width, height int, pix []byte) (core.TextureID, error)
	LoadAtlas(jsonPath, texturePath string) (*atlas.Atlas, error)

	// Flat submissions use strides of 6 (transforms) and 11 (sprites).
	SetTransforms(flat []float64) error
	SubmitSprites(flat []float64) error

	// Typed submissions swap the buffer's storage into the engine and
	// leave the buffer empty with its capacity intact.
	SetTransformBuffer(buf *exchange.TransformBuffer)
	SubmitSpriteBuffer(buf *exchange.SpriteBuffer)
	NewTransformBuffer(capacity int) *exchange.TransformBuffer
	NewSpriteBuffer(capacity int) *exchange.SpriteBuffer
	FrameBuilder(tf *exchange.TransformBuffer, sp *exchange.SpriteBuffer) *exchange.FrameBuilder

	SetClearColor(c core.Color)
	// CanvasSize returns the virtual canvas size in pixels.
	CanvasSize() (w, h float32)
	// Time returns the simulated time in seconds.
	Time() float64
	Log(msg string, keyvals ...any)
}

// Number converts a restored value to float64. Non-numeric values yield
// false.
func Number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
