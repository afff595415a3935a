package core

import "sort"

// Mouse buttons reported in InputSnapshot.MouseButtons.
const (
	MouseLeft   = 1
	MouseRight  = 2
	MouseMiddle = 3
)

// InputSnapshot is the input state visible to scripts for one frame.
// Keys use stable lowercase names ("left", "space", "a") so recordings
// replay identically across platforms.
type InputSnapshot struct {
	Keys         []string
	MouseButtons []int
	MouseX       float64
	MouseY       float64
}

// Press marks a key as held. Keys stay sorted and unique.
func (s *InputSnapshot) Press(key string) {
	i := sort.SearchStrings(s.Keys, key)
	if i < len(s.Keys) && s.Keys[i] == key {
		return
	}
	s.Keys = append(s.Keys, "")
	copy(s.Keys[i+1:], s.Keys[i:])
	s.Keys[i] = key
}

// Release clears a held key.
func (s *InputSnapshot) Release(key string) {
	i := sort.SearchStrings(s.Keys, key)
	if i < len(s.Keys) && s.Keys[i] == key {
		s.Keys = append(s.Keys[:i], s.Keys[i+1:]...)
	}
}

// Has returns true if the key is held.
func (s InputSnapshot) Has(key string) bool {
	i := sort.SearchStrings(s.Keys, key)
	return i < len(s.Keys) && s.Keys[i] == key
}

// PressButton marks a mouse button as held. Buttons stay sorted and unique.
func (s *InputSnapshot) PressButton(b int) {
	i := sort.SearchInts(s.MouseButtons, b)
	if i < len(s.MouseButtons) && s.MouseButtons[i] == b {
		return
	}
	s.MouseButtons = append(s.MouseButtons, 0)
	copy(s.MouseButtons[i+1:], s.MouseButtons[i:])
	s.MouseButtons[i] = b
}

// ReleaseButton clears a held mouse button.
func (s *InputSnapshot) ReleaseButton(b int) {
	i := sort.SearchInts(s.MouseButtons, b)
	if i < len(s.MouseButtons) && s.MouseButtons[i] == b {
		s.MouseButtons = append(s.MouseButtons[:i], s.MouseButtons[i+1:]...)
	}
}

// Clear releases everything and keeps the mouse position.
func (s *InputSnapshot) Clear() {
	s.Keys = s.Keys[:0]
	s.MouseButtons = s.MouseButtons[:0]
}

// Clone creates a copy that shares no slices with s.
func (s InputSnapshot) Clone() InputSnapshot {
	clone := InputSnapshot{MouseX: s.MouseX, MouseY: s.MouseY}
	if len(s.Keys) > 0 {
		clone.Keys = append([]string(nil), s.Keys...)
	}
	if len(s.MouseButtons) > 0 {
		clone.MouseButtons = append([]int(nil), s.MouseButtons...)
	}
	return clone
}
