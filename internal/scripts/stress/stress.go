// Package stress implements a throughput demo: ten thousand entities spread
// over eight textures, with every transform rewritten each tick.
package stress

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// Defaults
const (
	DefaultCount = 10000
	TextureCount = 8
	SpriteSize   = 3
	Seed         = 42
)

type particle struct {
	id     core.EntityID
	cx, cy float32
	radius float32
	speed  float32
	phase  float32
}

// Script moves Count particles along circles.
type Script struct {
	count     int
	particles []particle
	tf        *exchange.TransformBuffer
	rng       *rand.Rand
}

// New creates a stress script with DefaultCount entities.
func New() *Script {
	return NewWithCount(DefaultCount)
}

// NewWithCount creates a stress script with n entities.
func NewWithCount(n int) *Script {
	return &Script{count: n}
}

// ID returns the unique identifier for this script.
func (s *Script) ID() string {
	return "stress"
}

// Title returns the display name for this script.
func (s *Script) Title() string {
	return "Stress Test"
}

// Start registers the textures and submits the whole sprite table once
// through the flat channel.
func (s *Script) Start(h script.Host) error {
	s.rng = rand.New(rand.NewSource(Seed))
	w, ht := h.CanvasSize()

	textures := make([]core.TextureID, TextureCount)
	for i := range textures {
		hue := float32(i) / TextureCount
		c := core.Color{R: hue, G: 1 - hue, B: 0.6, A: 1}
		tex, err := h.RegisterTextureRGBA("stress", 1, 1, texture.Solid(1, 1, c))
		if err != nil {
			return err
		}
		textures[i] = tex
	}

	s.particles = make([]particle, s.count)
	flat := make([]float64, 0, s.count*core.SpriteStride)
	for i := range s.particles {
		p := &s.particles[i]
		p.id = h.CreateEntity()
		p.cx = s.rng.Float32() * w
		p.cy = s.rng.Float32() * ht
		p.radius = 4 + s.rng.Float32()*20
		p.speed = 0.5 + s.rng.Float32()*2
		p.phase = s.rng.Float32() * 2 * math.Pi

		tex := textures[i%TextureCount]
		flat = append(flat, float64(p.id), float64(tex), 0, 0, 1, 1, 1, 1, 1, 1, 0)
	}
	if err := h.SubmitSprites(flat); err != nil {
		return err
	}

	s.tf = h.NewTransformBuffer(s.count)
	return nil
}

// Update rewrites every transform row and hands the buffer to the engine.
func (s *Script) Update(h script.Host, dt float64) error {
	t := float32(h.Time())
	for i := range s.particles {
		p := &s.particles[i]
		a := p.phase + p.speed*t
		x := p.cx + p.radius*float32(math.Cos(float64(a)))
		y := p.cy + p.radius*float32(math.Sin(float64(a)))
		if err := s.tf.SetPx(i+1, p.id, x, y, a, SpriteSize, SpriteSize); err != nil {
			return err
		}
	}
	h.SetTransformBuffer(s.tf)
	return nil
}

// Count returns the number of entities the script drives.
func (s *Script) Count() int {
	return s.count
}

// Register the script with the registry
func init() {
	registry.Register("stress", func() script.Script {
		return New()
	})
}
