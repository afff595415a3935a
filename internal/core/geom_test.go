package core

import "testing"

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{
			name:     "overlapping rects",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "non-overlapping horizontal",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(15, 0, 10, 10),
			expected: false,
		},
		{
			name:     "adjacent horizontal (no overlap)",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(10, 0, 10, 10),
			expected: false,
		},
		{
			name:     "negative origin overlap",
			a:        NewRect(-40, -20, 100, 50),
			b:        NewRect(0, 0, 10, 10),
			expected: true,
		},
		{
			name:     "contained rect",
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(5, 5, 5, 5),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.a.Intersects(tc.b)
			if result != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", result, tc.expected)
			}
			resultReverse := tc.b.Intersects(tc.a)
			if resultReverse != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", resultReverse, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(80, 120, 640, 360)

	tests := []struct {
		name     string
		x, y     float32
		expected bool
	}{
		{"inside", 400, 300, true},
		{"top-left corner", 80, 120, true},
		{"bottom-right edge (exclusive)", 720, 480, false},
		{"outside left", 79.5, 300, false},
		{"outside bottom", 400, 481, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := r.Contains(tc.x, tc.y)
			if result != tc.expected {
				t.Errorf("Contains(%v, %v) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(80, 120, 640, 360)

	if r.Right() != 720 {
		t.Errorf("Right() = %v, expected 720", r.Right())
	}
	if r.Bottom() != 480 {
		t.Errorf("Bottom() = %v, expected 480", r.Bottom())
	}

	cx, cy := r.Center()
	if cx != 400 || cy != 300 {
		t.Errorf("Center() = (%v, %v), expected (400, 300)", cx, cy)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	if got := ClampF(0.3, 0, 0.25); got != 0.25 {
		t.Errorf("ClampF(0.3, 0, 0.25) = %v, expected 0.25", got)
	}
	if got := ClampF(-1, 0, 0.25); got != 0 {
		t.Errorf("ClampF(-1, 0, 0.25) = %v, expected 0", got)
	}
}
