package bounce

import (
	"math"
	"testing"

	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/script"
)

func startEngine(t *testing.T, s *Script) *engine.Engine {
	t.Helper()
	e, err := engine.New(s, engine.Options{})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return e
}

func TestBounceDrawsEveryBall(t *testing.T) {
	e := startEngine(t, New())

	f, err := e.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if f.Stats.Sprites != BallCount {
		t.Errorf("Sprites = %d, expected %d", f.Stats.Sprites, BallCount)
	}
	if f.Stats.DrawCalls != len(palette) {
		t.Errorf("DrawCalls = %d, expected %d", f.Stats.DrawCalls, len(palette))
	}
	if f.Stats.Skipped != 0 {
		t.Errorf("Skipped = %d, expected 0", f.Stats.Skipped)
	}
}

func TestBounceCountsAndPersistsBest(t *testing.T) {
	s := New()
	e := startEngine(t, s)

	// Two seconds is enough for every ball to land once.
	if err := e.RunFrames(120, nil); err != nil {
		t.Fatalf("RunFrames() failed: %v", err)
	}
	if s.Bounces() < BallCount {
		t.Errorf("Bounces() = %d, expected at least %d", s.Bounces(), BallCount)
	}
	if s.Best() != s.Bounces() {
		t.Errorf("Best() = %d, expected %d", s.Best(), s.Bounces())
	}

	v, ok, err := e.Host().Restore(BestKey)
	if err != nil || !ok {
		t.Fatalf("Restore(%q) = %v, %v, %v", BestKey, v, ok, err)
	}
	if n, _ := script.Number(v); int(n) != s.Best() {
		t.Errorf("persisted best = %v, expected %d", v, s.Best())
	}
}

func TestBouncePauseHoldsPositions(t *testing.T) {
	e := startEngine(t, New())
	if err := e.RunFrames(10, nil); err != nil {
		t.Fatalf("RunFrames() failed: %v", err)
	}

	in := e.Host().Input()
	in.Press("space")
	e.SetInput(in)

	first, err := e.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	second, err := e.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	// Rotation keeps advancing with time, so compare quad centres.
	cx1, cy1 := centre(first.Vertices[:4])
	cx2, cy2 := centre(second.Vertices[:4])
	if math.Abs(float64(cx1-cx2)) > 1e-3 || math.Abs(float64(cy1-cy2)) > 1e-3 {
		t.Errorf("paused centre moved from (%v,%v) to (%v,%v)", cx1, cy1, cx2, cy2)
	}
}

func centre(quad []batch.Vertex) (float32, float32) {
	var x, y float32
	for _, v := range quad {
		x += v.X
		y += v.Y
	}
	return x / 4, y / 4
}

func TestBounceDeterminism(t *testing.T) {
	run := func() uint64 {
		e := startEngine(t, New())
		var last uint64
		for i := 0; i < 90; i++ {
			f, err := e.Step(1.0 / 60)
			if err != nil {
				t.Fatalf("Step() failed: %v", err)
			}
			last = f.Hash
		}
		return last
	}
	if a, b := run(), run(); a != b {
		t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", a, b)
	}
}

func TestBounceRegistered(t *testing.T) {
	s, err := registry.Create("bounce")
	if err != nil {
		t.Fatalf("registry.Create(bounce) failed: %v", err)
	}
	if s.ID() != "bounce" {
		t.Errorf("ID() = %q, expected %q", s.ID(), "bounce")
	}
}
