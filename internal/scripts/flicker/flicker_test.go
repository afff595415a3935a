package flicker

import (
	"testing"

	"github.com/vovakirdan/spritecore/internal/engine"
)

func TestFlickerAlternatesVisibleCells(t *testing.T) {
	e, err := engine.New(New(), engine.Options{})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	tests := []struct {
		frame   int
		sprites int
		skipped int
	}{
		{1, Count / 2, Count / 2},
		{2, Count, 0},
		{3, Count / 2, Count / 2},
		{4, Count, 0},
	}

	for _, tt := range tests {
		f, err := e.Step(1.0 / 60)
		if err != nil {
			t.Fatalf("Step() frame %d failed: %v", tt.frame, err)
		}
		if f.Stats.Sprites != tt.sprites || f.Stats.Skipped != tt.skipped {
			t.Errorf("frame %d: Stats = %+v, expected %d drawn and %d skipped",
				tt.frame, f.Stats, tt.sprites, tt.skipped)
		}
		if f.Stats.DrawCalls != 1 {
			t.Errorf("frame %d: DrawCalls = %d, expected 1", tt.frame, f.Stats.DrawCalls)
		}
	}

	if got := len(e.State().Sprites()); got != Count {
		t.Errorf("len(Sprites()) = %d, expected %d after empty submissions", got, Count)
	}
	if last := e.Metrics().Last(); last.ExchangeCalls != 2 {
		t.Errorf("ExchangeCalls = %d, expected 2", last.ExchangeCalls)
	}
}

func TestFlickerVisible(t *testing.T) {
	s := New()
	e, err := engine.New(s, engine.Options{})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := e.RunFrames(2, nil); err != nil {
		t.Fatalf("RunFrames() failed: %v", err)
	}
	if s.Visible() != Count {
		t.Errorf("Visible() = %d, expected %d", s.Visible(), Count)
	}
}
