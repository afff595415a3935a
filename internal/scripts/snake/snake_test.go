package snake

import (
	"testing"

	"github.com/vovakirdan/spritecore/internal/core"
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
	// Keep food out of the snake's path unless a test places it
	s.food = Point{X: 0, Y: 0}
	return e
}

func press(e *engine.Engine, keys ...string) {
	var in core.InputSnapshot
	for _, k := range keys {
		in.Press(k)
	}
	e.SetInput(in)
}

func moves(t *testing.T, e *engine.Engine, n int) {
	t.Helper()
	if err := e.RunFrames(n*MoveEveryTicks, nil); err != nil {
		t.Fatalf("RunFrames() failed: %v", err)
	}
}

func TestSnakeGridFitsCanvas(t *testing.T) {
	s := New()
	startEngine(t, s)

	cols, rows := s.Grid()
	if cols != 40 || rows != 22 {
		t.Errorf("Grid() = %dx%d, expected 40x22", cols, rows)
	}
	if s.Length() != StartLength {
		t.Errorf("Length() = %d, expected %d", s.Length(), StartLength)
	}
}

func TestSnakeDrawsSegmentsAndFood(t *testing.T) {
	e := startEngine(t, New())

	f, err := e.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if f.Stats.Sprites != StartLength+1 {
		t.Errorf("Sprites = %d, expected %d", f.Stats.Sprites, StartLength+1)
	}
	if f.Stats.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, expected 1", f.Stats.DrawCalls)
	}
}

func TestSnakeMovesRight(t *testing.T) {
	s := New()
	e := startEngine(t, s)
	start := s.Head()

	moves(t, e, 1)

	if got, want := s.Head(), (Point{X: start.X + 1, Y: start.Y}); got != want {
		t.Errorf("Head() = %v, expected %v", got, want)
	}
	if s.Length() != StartLength {
		t.Errorf("Length() = %d, expected %d", s.Length(), StartLength)
	}
}

func TestSnakeTurns(t *testing.T) {
	s := New()
	e := startEngine(t, s)
	start := s.Head()

	press(e, "up")
	moves(t, e, 1)

	if got, want := s.Head(), (Point{X: start.X, Y: start.Y - 1}); got != want {
		t.Errorf("Head() = %v, expected %v", got, want)
	}
}

func TestSnakeIgnoresReversal(t *testing.T) {
	s := New()
	e := startEngine(t, s)
	start := s.Head()

	press(e, "left")
	moves(t, e, 1)

	if got, want := s.Head(), (Point{X: start.X + 1, Y: start.Y}); got != want {
		t.Errorf("Head() = %v, expected %v", got, want)
	}
	if s.GameOver() {
		t.Error("GameOver() = true, expected false")
	}
}

func TestSnakeEatsAndPersistsBest(t *testing.T) {
	s := New()
	e := startEngine(t, s)
	head := s.Head()
	s.food = Point{X: head.X + 1, Y: head.Y}

	moves(t, e, 1)

	if s.Length() != StartLength+1 {
		t.Errorf("Length() = %d, expected %d", s.Length(), StartLength+1)
	}
	if s.Best() != StartLength+1 {
		t.Errorf("Best() = %d, expected %d", s.Best(), StartLength+1)
	}
	if s.occupied(s.food) {
		t.Errorf("food respawned on the snake at %v", s.food)
	}

	v, ok, err := e.Host().Restore(BestKey)
	if err != nil || !ok {
		t.Fatalf("Restore(%q) = %v, %v, %v", BestKey, v, ok, err)
	}
	if n, _ := script.Number(v); int(n) != s.Best() {
		t.Errorf("persisted best = %v, expected %d", v, s.Best())
	}
}

func TestSnakeHitsWallAndRestarts(t *testing.T) {
	s := New()
	e := startEngine(t, s)
	cols, _ := s.Grid()

	moves(t, e, cols)
	if !s.GameOver() {
		t.Fatal("GameOver() = false, expected true after running into the wall")
	}
	if s.Head().X != cols-1 {
		t.Errorf("Head().X = %d, expected %d", s.Head().X, cols-1)
	}

	// Crashed snakes still draw
	f, err := e.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if f.Stats.Sprites != s.Length()+1 {
		t.Errorf("Sprites = %d, expected %d", f.Stats.Sprites, s.Length()+1)
	}

	press(e, "space")
	if _, err := e.Step(1.0 / 60); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if s.GameOver() {
		t.Error("GameOver() = true after restart, expected false")
	}
	if s.Length() != StartLength {
		t.Errorf("Length() = %d after restart, expected %d", s.Length(), StartLength)
	}
}

func TestSnakeDeterminism(t *testing.T) {
	run := func() uint64 {
		e := startEngine(t, New())
		var last uint64
		for i := 0; i < 120; i++ {
			switch i {
			case 20:
				press(e, "down")
			case 50:
				press(e, "left")
			case 80:
				press(e)
			}
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

func TestSnakeRegistered(t *testing.T) {
	s, err := registry.Create("snake")
	if err != nil {
		t.Fatalf("registry.Create(snake) failed: %v", err)
	}
	if s.ID() != "snake" {
		t.Errorf("ID() = %q, expected %q", s.ID(), "snake")
	}
}
