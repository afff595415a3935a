package exchange

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/spritecore/internal/atlas"
	"github.com/vovakirdan/spritecore/internal/core"
)

func TestTransformBufferIndexing(t *testing.T) {
	b := NewTransformBuffer(2)

	tests := []struct {
		name    string
		index   int
		wantErr string
	}{
		{"first row", 1, ""},
		{"last row", 2, ""},
		{"zero", 0, "ARG_ERROR: set_transforms index must be >= 1"},
		{"past capacity", 3, "ARG_ERROR: set_transforms index exceeds capacity"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := b.Set(tc.index, 1, 0, 0, 0, 1, 1)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Set(%d) failed: %v", tc.index, err)
				}
				return
			}
			if err == nil || err.Error() != tc.wantErr {
				t.Fatalf("Set(%d) = %v, expected %q", tc.index, err, tc.wantErr)
			}
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Error("error does not match ErrInvalidArgument")
			}
		})
	}
}

func TestTransformBufferLenTracksHighestRow(t *testing.T) {
	b := NewTransformBuffer(10)
	_ = b.Set(3, 7, 1, 2, 0, 1, 1)
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", b.Len())
	}
	_ = b.Set(1, 5, 0, 0, 0, 1, 1)
	if b.Len() != 3 {
		t.Errorf("Len() after lower write = %d, expected 3", b.Len())
	}
	row, ok := b.Row(3)
	if !ok || row.Entity != 7 || row.Y != 2 {
		t.Errorf("Row(3) = %+v, %v", row, ok)
	}
	b.Clear()
	if b.Len() != 0 || b.Cap() != 10 {
		t.Errorf("after Clear() len %d cap %d", b.Len(), b.Cap())
	}
}

func TestTransformBufferResize(t *testing.T) {
	b := NewTransformBuffer(4)
	_ = b.Set(4, 1, 9, 9, 0, 1, 1)

	b.Resize(2)
	if b.Cap() != 2 || b.Len() != 2 {
		t.Errorf("Resize(2) = cap %d len %d, expected 2 and 2", b.Cap(), b.Len())
	}
	b.Resize(8)
	if b.Cap() != 8 {
		t.Errorf("Resize(8) cap = %d", b.Cap())
	}
	if err := b.Set(8, 1, 0, 0, 0, 1, 1); err != nil {
		t.Errorf("Set(8) after grow failed: %v", err)
	}
}

func TestSetPxConvertsUnits(t *testing.T) {
	ex := New()
	ex.SetPixelsPerUnit(64)
	b := ex.NewTransformBuffer(1)

	if err := b.SetPx(1, 1, 32, 48, 0.5, 64, 128); err != nil {
		t.Fatal(err)
	}
	row, _ := b.Row(1)
	expected := core.Transform{Entity: 1, X: 0.5, Y: 0.75, Rotation: 0.5, ScaleX: 1, ScaleY: 2}
	if row != expected {
		t.Errorf("Row(1) = %+v, expected %+v", row, expected)
	}
}

func TestSetPxDefaultsToOneToOne(t *testing.T) {
	b := NewTransformBuffer(1)
	_ = b.SetPx(1, 1, 32, 48, 0, 16, 16)
	row, _ := b.Row(1)
	if row.X != 32 || row.ScaleX != 16 {
		t.Errorf("Row(1) = %+v, expected unconverted values", row)
	}
}

func TestUnits(t *testing.T) {
	var u Units
	if u.PixelsPerUnit() != 1 {
		t.Errorf("PixelsPerUnit() unset = %v, expected 1", u.PixelsPerUnit())
	}
	u.SetPixelsPerUnit(16)
	if got := u.ToUnits(40); math.Abs(float64(got-2.5)) > 1e-6 {
		t.Errorf("ToUnits(40) = %v, expected 2.5", got)
	}
	var nilUnits *Units
	if nilUnits.ToUnits(3) != 3 {
		t.Error("nil Units should be 1:1")
	}
}

func TestSpriteBufferSetters(t *testing.T) {
	b := NewSpriteBuffer(2)
	a := atlas.New(9, map[string]core.UVRect{"coin": {U0: 0.5, V0: 0, U1: 1, V1: 0.5}})

	if err := b.SetTex(2, 4, 1); err != nil {
		t.Fatal(err)
	}
	_ = b.SetColor(2, core.White)
	_ = b.SetZ(2, 3)
	if err := b.SetNamedUV(2, a, "coin"); err != nil {
		t.Fatal(err)
	}

	row, ok := b.Row(2)
	if !ok {
		t.Fatal("Row(2) not found")
	}
	expected := core.Sprite{Entity: 4, Texture: 9, UV: core.UVRect{U0: 0.5, U1: 1, V1: 0.5}, Color: core.White, Z: 3}
	if row != expected {
		t.Errorf("Row(2) = %+v, expected %+v", row, expected)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, expected 2", b.Len())
	}

	if err := b.SetNamedUV(1, a, "missing"); err == nil {
		t.Error("SetNamedUV() unknown name = nil error")
	}
	if err := b.SetColor(3, core.White); err == nil {
		t.Error("SetColor(3) past capacity = nil error")
	}
	if err := b.SetUV(0, core.FullUV); err == nil {
		t.Error("SetUV(0) = nil error")
	}
}

func TestSpriteBufferResize(t *testing.T) {
	b := NewSpriteBuffer(3)
	_ = b.Set(3, core.Sprite{Entity: 1})
	b.Resize(1)
	if b.Len() != 1 || b.Cap() != 1 {
		t.Errorf("Resize(1) = len %d cap %d", b.Len(), b.Cap())
	}
	b.Resize(4)
	if err := b.Set(4, core.Sprite{Entity: 2}); err != nil {
		t.Errorf("Set(4) after grow failed: %v", err)
	}
}
