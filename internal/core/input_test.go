package core

import (
	"reflect"
	"testing"
)

func TestInputSnapshotKeys(t *testing.T) {
	var s InputSnapshot
	s.Press("space")
	s.Press("left")
	s.Press("a")
	s.Press("left")

	expected := []string{"a", "left", "space"}
	if !reflect.DeepEqual(s.Keys, expected) {
		t.Fatalf("Keys = %v, expected %v", s.Keys, expected)
	}
	if !s.Has("left") {
		t.Error("Has(left) = false, expected true")
	}

	s.Release("left")
	if s.Has("left") {
		t.Error("Has(left) after Release = true, expected false")
	}
	s.Release("missing")
	if len(s.Keys) != 2 {
		t.Errorf("len(Keys) = %d, expected 2", len(s.Keys))
	}
}

func TestInputSnapshotButtons(t *testing.T) {
	var s InputSnapshot
	s.PressButton(MouseRight)
	s.PressButton(MouseLeft)
	s.PressButton(MouseRight)

	if !reflect.DeepEqual(s.MouseButtons, []int{MouseLeft, MouseRight}) {
		t.Fatalf("MouseButtons = %v, expected [1 2]", s.MouseButtons)
	}
	s.ReleaseButton(MouseLeft)
	if !reflect.DeepEqual(s.MouseButtons, []int{MouseRight}) {
		t.Errorf("MouseButtons = %v, expected [2]", s.MouseButtons)
	}
}

func TestInputSnapshotCloneIsIndependent(t *testing.T) {
	s := InputSnapshot{MouseX: 10, MouseY: 20}
	s.Press("up")
	clone := s.Clone()
	s.Press("down")
	s.Clear()

	if !clone.Has("up") || clone.Has("down") {
		t.Errorf("clone.Keys = %v, expected [up]", clone.Keys)
	}
	if clone.MouseX != 10 || clone.MouseY != 20 {
		t.Errorf("clone mouse = (%v, %v), expected (10, 20)", clone.MouseX, clone.MouseY)
	}
	if s.MouseX != 10 {
		t.Errorf("Clear() changed MouseX to %v", s.MouseX)
	}
}
