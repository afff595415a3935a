// Package bounce implements a demo where a row of sprites bounces across the
// canvas on eased tweens. It counts completed bounces and keeps the best run
// in persistent storage.
package bounce

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// Tuning constants
const (
	BallCount = 12
	BallSize  = 12 // pixels
	FallTime  = 1.2
	DriftTime = 3.0
	BestKey   = "best_bounces"
)

var palette = []core.Color{
	{R: 0.95, G: 0.3, B: 0.3, A: 1},
	{R: 0.3, G: 0.85, B: 0.4, A: 1},
	{R: 0.3, G: 0.5, B: 0.95, A: 1},
	{R: 0.95, G: 0.8, B: 0.25, A: 1},
}

type ball struct {
	id    core.EntityID
	tex   core.TextureID
	x, y  *gween.Tween
	px    float32
	py    float32
	spin  float32
	right bool
}

// Script bounces BallCount sprites.
type Script struct {
	balls   []ball
	builder *exchange.FrameBuilder
	w, h    float32
	bounces int
	best    int
	paused  bool
}

// New creates a bounce script.
func New() *Script {
	return &Script{}
}

// ID returns the unique identifier for this script.
func (s *Script) ID() string {
	return "bounce"
}

// Title returns the display name for this script.
func (s *Script) Title() string {
	return "Bouncing Sprites"
}

// Start creates one solid texture per palette color and the balls.
func (s *Script) Start(h script.Host) error {
	s.w, s.h = h.CanvasSize()
	s.balls = s.balls[:0]
	s.bounces = 0

	if v, ok, err := h.Restore(BestKey); err != nil {
		return err
	} else if ok {
		if n, isNum := script.Number(v); isNum {
			s.best = int(n)
		}
	}

	textures := make([]core.TextureID, len(palette))
	for i, c := range palette {
		tex, err := h.RegisterTextureRGBA("ball", 4, 4, texture.Solid(4, 4, c))
		if err != nil {
			return err
		}
		textures[i] = tex
	}

	floor := s.h - BallSize/2
	for i := 0; i < BallCount; i++ {
		startX := BallSize + float32(i)*(s.w-2*BallSize)/BallCount
		startY := float32(BallSize) + float32(i%4)*BallSize
		b := ball{
			id:    h.CreateEntity(),
			tex:   textures[i%len(textures)],
			y:     gween.New(startY, floor, FallTime, ease.OutBounce),
			right: i%2 == 0,
			spin:  float32(i%3+1) * 0.5,
		}
		b.x = s.driftTween(startX, b.right)
		b.px, b.py = startX, startY
		s.balls = append(s.balls, b)
	}

	s.builder = h.FrameBuilder(h.NewTransformBuffer(BallCount), h.NewSpriteBuffer(BallCount))
	h.SetClearColor(core.Color{R: 0.08, G: 0.08, B: 0.12, A: 1})
	return nil
}

func (s *Script) driftTween(from float32, right bool) *gween.Tween {
	to := float32(BallSize)
	if right {
		to = s.w - BallSize
	}
	return gween.New(from, to, DriftTime, ease.InOutSine)
}

// Update advances every tween and submits both tables through the typed
// channel. Space pauses the animation.
func (s *Script) Update(h script.Host, dt float64) error {
	s.paused = h.Input().Has("space")
	step := float32(dt)
	if s.paused {
		step = 0
	}

	for i := range s.balls {
		b := &s.balls[i]
		var done bool
		b.py, done = b.y.Update(step)
		if done {
			b.y.Reset()
			s.bounces++
		}
		b.px, done = b.x.Update(step)
		if done {
			b.right = !b.right
			b.x = s.driftTween(b.px, b.right)
		}

		row := i + 1
		rot := b.spin * float32(h.Time())
		if err := s.builder.TransformPx(row, b.id, b.px, b.py, rot, BallSize, BallSize); err != nil {
			return err
		}
		if err := s.builder.SpriteTex(row, b.id, b.tex, core.FullUV, core.White); err != nil {
			return err
		}
	}
	s.builder.Commit()

	if s.bounces > s.best {
		s.best = s.bounces
		if err := h.Persist(BestKey, s.best); err != nil {
			return err
		}
	}
	return nil
}

// Bounces returns the bounces completed in this run.
func (s *Script) Bounces() int {
	return s.bounces
}

// Best returns the best run seen, including persisted ones.
func (s *Script) Best() int {
	return s.best
}

// Register the script with the registry
func init() {
	registry.Register("bounce", func() script.Script {
		return New()
	})
}
