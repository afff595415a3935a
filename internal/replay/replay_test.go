package replay

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/spritecore/internal/core"
)

func snapshot(keys []string, buttons []int, x, y float64) core.InputSnapshot {
	var s core.InputSnapshot
	for _, k := range keys {
		s.Press(k)
	}
	for _, b := range buttons {
		s.PressButton(b)
	}
	s.MouseX, s.MouseY = x, y
	return s
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name     string
		frame    Frame
		expected string
	}{
		{
			name:     "empty input",
			frame:    Frame{Hash: 42},
			expected: "H 42\tK \tB \tMX 0\tMY 0",
		},
		{
			name:     "keys and buttons",
			frame:    Frame{Hash: 7, Input: snapshot([]string{"space", "a"}, []int{3, 1}, 12.5, -3.25)},
			expected: "H 7\tK a|space\tB 1|3\tMX 12.5\tMY -3.25",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatLine(tc.frame); got != tc.expected {
				t.Errorf("FormatLine() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestParseLineRoundTrip(t *testing.T) {
	f := Frame{Hash: 0xffffffffffffffff, Input: snapshot([]string{"left", "up"}, []int{2}, 0.1, 1e-9)}
	got, err := ParseLine(FormatLine(f))
	if err != nil {
		t.Fatalf("ParseLine() failed: %v", err)
	}
	if !reflect.DeepEqual(got, f) {
		t.Errorf("ParseLine() = %+v, expected %+v", got, f)
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"no hash", "K a\tB \tMX 0\tMY 0"},
		{"bad hash", "H xyz"},
		{"bad button", "H 1\tB left"},
		{"bad mouse", "H 1\tMX far"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseLine(tc.line); err == nil {
				t.Errorf("ParseLine(%q) = nil error", tc.line)
			}
		})
	}
}

func TestRecordThenPlay(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	inputs := []core.InputSnapshot{
		{},
		snapshot([]string{"space"}, nil, 10, 20),
		snapshot(nil, []int{1}, 11, 21),
	}
	for i, in := range inputs {
		if err := rec.Record(uint64(100+i), in); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if rec.Frames() != 3 {
		t.Errorf("Frames() = %d, expected 3", rec.Frames())
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Errorf("recording has %d lines, expected 3", n)
	}

	p, err := NewPlayer(&buf)
	if err != nil {
		t.Fatalf("NewPlayer() failed: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", p.Len())
	}
	for i, in := range inputs {
		if got := p.Input(); !reflect.DeepEqual(got, in) {
			t.Errorf("frame %d Input() = %+v, expected %+v", i+1, got, in)
		}
		if err := p.Verify(uint64(100 + i)); err != nil {
			t.Errorf("frame %d Verify() = %v", i+1, err)
		}
	}
	if !p.Done() {
		t.Error("Done() = false after all frames")
	}
	if got := p.Input(); !reflect.DeepEqual(got, core.InputSnapshot{}) {
		t.Errorf("Input() after end = %+v, expected empty", got)
	}
}

func TestPlayerMismatch(t *testing.T) {
	p, err := NewPlayer(strings.NewReader("H 1\tK \tB \tMX 0\tMY 0\n\nH 2\tK \tB \tMX 0\tMY 0\n"))
	if err != nil {
		t.Fatalf("NewPlayer() failed: %v", err)
	}
	if err := p.Verify(1); err != nil {
		t.Fatalf("Verify(1) = %v", err)
	}
	err = p.Verify(3)
	var mm *MismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("Verify(3) error = %v, expected *MismatchError", err)
	}
	if mm.Frame != 2 || mm.Want != 2 || mm.Got != 3 {
		t.Errorf("MismatchError = %+v, expected frame 2 want 2 got 3", mm)
	}
}

func TestNewPlayerBadLine(t *testing.T) {
	_, err := NewPlayer(strings.NewReader("H 1\ngarbage\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("NewPlayer() error = %v, expected line 2 failure", err)
	}
}
