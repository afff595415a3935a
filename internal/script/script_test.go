package script

import "testing"

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(3.5), 3.5, true},
		{float64(0), 0, true},
		{"3.5", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Number(%#v) = (%v, %v), expected (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
