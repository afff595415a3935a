// Package tui provides the Bubble Tea front end for spritecore: a terminal
// preview of a running script, a script picker, a run history board and an
// SSH server that serves all of them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the preview redraw period.
const DefaultInterval = time.Second / 60

// TickMsg is sent to trigger an engine frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
