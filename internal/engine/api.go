package engine

import (
	"fmt"

	"github.com/vovakirdan/spritecore/internal/atlas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// TransformSink accepts transform submissions.
type TransformSink interface {
	SubmitTransformBuffer(b *exchange.TransformBuffer)
	SubmitTransformsFlat(vals []float64) error
}

// SpriteSink accepts sprite submissions.
type SpriteSink interface {
	SubmitSpriteBuffer(b *exchange.SpriteBuffer)
	SubmitSpritesFlat(vals []float64) error
}

// PersistStore is the durable backing of script persistence, keyed by
// script id. *storage.Store implements it.
type PersistStore interface {
	Persist(namespace, key string, value any) error
	Restore(namespace, key string) (any, bool, error)
}

// api is the script.Host handed to scripts. Each capability is injected
// separately so the engine can swap sinks or stores in tests.
type api struct {
	e          *Engine
	transforms TransformSink
	sprites    SpriteSink
	kv         *kvStore
}

var _ script.Host = (*api)(nil)

func (a *api) CreateEntity() core.EntityID {
	return a.e.fs.CreateEntity()
}

func (a *api) RegisterTexture(path string) (core.TextureID, error) {
	data, _, err := texture.Load(path)
	if err != nil {
		return 0, err
	}
	return a.e.fs.RegisterTexture(data, texture.Name(path))
}

func (a *api) RegisterTextureRGBA(name string, width, height int, pix []byte) (core.TextureID, error) {
	return a.e.fs.RegisterRGBA(width, height, pix, name)
}

func (a *api) LoadAtlas(jsonPath, texturePath string) (*atlas.Atlas, error) {
	tex, err := a.RegisterTexture(texturePath)
	if err != nil {
		return nil, err
	}
	slot, _ := a.e.fs.Texture(tex)
	return atlas.Load(jsonPath, tex, slot.Width, slot.Height)
}

func (a *api) SetTransforms(flat []float64) error {
	return a.transforms.SubmitTransformsFlat(flat)
}

func (a *api) SubmitSprites(flat []float64) error {
	return a.sprites.SubmitSpritesFlat(flat)
}

func (a *api) SetTransformBuffer(buf *exchange.TransformBuffer) {
	a.transforms.SubmitTransformBuffer(buf)
}

func (a *api) SubmitSpriteBuffer(buf *exchange.SpriteBuffer) {
	a.sprites.SubmitSpriteBuffer(buf)
}

func (a *api) NewTransformBuffer(capacity int) *exchange.TransformBuffer {
	return a.e.ex.NewTransformBuffer(capacity)
}

func (a *api) NewSpriteBuffer(capacity int) *exchange.SpriteBuffer {
	return a.e.ex.NewSpriteBuffer(capacity)
}

func (a *api) FrameBuilder(tf *exchange.TransformBuffer, sp *exchange.SpriteBuffer) *exchange.FrameBuilder {
	return a.e.ex.FrameBuilder(tf, sp)
}

func (a *api) SetClearColor(c core.Color) {
	a.e.fs.SetClearColor(c)
}

func (a *api) CanvasSize() (float32, float32) {
	return a.e.mode.Size()
}

func (a *api) Time() float64 {
	return a.e.sched.FixedTime()
}

func (a *api) Log(msg string, keyvals ...any) {
	a.e.logger.With("script", a.e.script.ID()).Info(msg, keyvals...)
}

func (a *api) Metrics() script.Metrics {
	last := a.e.metrics.Last()
	return script.Metrics{
		CPUFrameMS:       last.CPUFrameMS,
		DrawCalls:        last.DrawCalls,
		SpritesSubmitted: last.SpritesSubmitted,
	}
}

func (a *api) Input() core.InputSnapshot {
	return a.e.input
}

func (a *api) Persist(key string, value any) error {
	return a.kv.persist(key, value)
}

func (a *api) Restore(key string) (any, bool, error) {
	return a.kv.restore(key)
}

// kvStore keeps persisted values in memory and writes them through to an
// optional durable store.
type kvStore struct {
	namespace string
	values    map[string]any
	backing   PersistStore
}

func newKVStore(namespace string, backing PersistStore) *kvStore {
	return &kvStore{namespace: namespace, values: make(map[string]any), backing: backing}
}

func (kv *kvStore) persist(key string, value any) error {
	v, err := normalizeValue(value)
	if err != nil {
		return &core.ArgError{Op: "persist", Reason: err.Error()}
	}
	if kv.backing != nil {
		if err := kv.backing.Persist(kv.namespace, key, v); err != nil {
			return err
		}
	}
	kv.values[key] = v
	return nil
}

func (kv *kvStore) restore(key string) (any, bool, error) {
	if v, ok := kv.values[key]; ok {
		return v, true, nil
	}
	if kv.backing == nil {
		return nil, false, nil
	}
	v, ok, err := kv.backing.Restore(kv.namespace, key)
	if err != nil || !ok {
		return nil, false, err
	}
	kv.values[key] = v
	return v, true, nil
}

// normalizeValue maps numbers to float64 so memory and SQLite agree on the
// restored type.
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string, float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
