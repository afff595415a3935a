// Package replay records per-frame input and transform hashes, and plays
// them back to check that a script runs deterministically.
//
// One line per frame:
//
//	H <hash>\tK <key|key>\tB <button|button>\tMX <x>\tMY <y>
package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vovakirdan/spritecore/internal/core"
)

// Frame is one recorded line: the input a frame saw and the transform hash
// it produced.
type Frame struct {
	Hash  uint64
	Input core.InputSnapshot
}

// MismatchError reports the first frame whose hash diverged.
type MismatchError struct {
	Frame int // 1-based
	Want  uint64
	Got   uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("replay: determinism mismatch at frame %d (want=%d, got=%d)", e.Frame, e.Want, e.Got)
}

// FormatLine renders f without a trailing newline.
func FormatLine(f Frame) string {
	buttons := make([]string, len(f.Input.MouseButtons))
	for i, b := range f.Input.MouseButtons {
		buttons[i] = strconv.Itoa(b)
	}
	return fmt.Sprintf("H %d\tK %s\tB %s\tMX %s\tMY %s",
		f.Hash,
		strings.Join(f.Input.Keys, "|"),
		strings.Join(buttons, "|"),
		strconv.FormatFloat(f.Input.MouseX, 'f', -1, 64),
		strconv.FormatFloat(f.Input.MouseY, 'f', -1, 64),
	)
}

// ParseLine parses one recorded line. Unknown fields are ignored.
func ParseLine(line string) (Frame, error) {
	var f Frame
	var sawHash bool
	for _, tok := range strings.Split(line, "\t") {
		tok = strings.TrimSpace(tok)
		var err error
		switch {
		case strings.HasPrefix(tok, "H "):
			f.Hash, err = strconv.ParseUint(tok[2:], 10, 64)
			sawHash = true
		case tok == "K" || strings.HasPrefix(tok, "K "):
			for _, k := range strings.Split(strings.TrimPrefix(tok, "K"), "|") {
				if k = strings.TrimSpace(k); k != "" {
					f.Input.Press(k)
				}
			}
		case tok == "B" || strings.HasPrefix(tok, "B "):
			for _, b := range strings.Split(strings.TrimPrefix(tok, "B"), "|") {
				if b = strings.TrimSpace(b); b == "" {
					continue
				}
				n, perr := strconv.Atoi(b)
				if perr != nil {
					err = perr
					break
				}
				f.Input.PressButton(n)
			}
		case strings.HasPrefix(tok, "MX "):
			f.Input.MouseX, err = strconv.ParseFloat(tok[3:], 64)
		case strings.HasPrefix(tok, "MY "):
			f.Input.MouseY, err = strconv.ParseFloat(tok[3:], 64)
		}
		if err != nil {
			return Frame{}, fmt.Errorf("replay: bad field %q: %w", tok, err)
		}
	}
	if !sawHash {
		return Frame{}, fmt.Errorf("replay: line has no hash: %q", line)
	}
	return f, nil
}

// Recorder writes one line per frame.
type Recorder struct {
	w      *bufio.Writer
	frames int
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: bufio.NewWriter(w)}
}

// Record appends the input a frame saw and the hash it produced.
func (r *Recorder) Record(hash uint64, input core.InputSnapshot) error {
	if _, err := r.w.WriteString(FormatLine(Frame{Hash: hash, Input: input}) + "\n"); err != nil {
		return fmt.Errorf("replay: cannot write frame %d: %w", r.frames+1, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of recorded frames.
func (r *Recorder) Frames() int {
	return r.frames
}

// Flush writes buffered lines to the underlying writer.
func (r *Recorder) Flush() error {
	return r.w.Flush()
}

// Player feeds recorded input back frame by frame and checks the hashes.
type Player struct {
	frames []Frame
	pos    int // frames verified so far
}

// NewPlayer reads a whole recording. Blank lines are skipped.
func NewPlayer(r io.Reader) (*Player, error) {
	p := &Player{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		f, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p.frames = append(p.frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("replay: cannot read recording: %w", err)
	}
	return p, nil
}

// Len returns the number of recorded frames.
func (p *Player) Len() int {
	return len(p.frames)
}

// Done reports whether every recorded frame has been verified.
func (p *Player) Done() bool {
	return p.pos >= len(p.frames)
}

// Input returns the input for the upcoming frame. Once the recording is
// exhausted it returns an empty snapshot.
func (p *Player) Input() core.InputSnapshot {
	if p.Done() {
		return core.InputSnapshot{}
	}
	return p.frames[p.pos].Input.Clone()
}

// Verify compares the hash of the frame that just ran with the recording
// and advances to the next frame.
func (p *Player) Verify(hash uint64) error {
	if p.Done() {
		return nil
	}
	want := p.frames[p.pos].Hash
	p.pos++
	if want != hash {
		return &MismatchError{Frame: p.pos, Want: want, Got: hash}
	}
	return nil
}
