package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/offscreen"
)

// chromeRows is the number of terminal rows taken by the status and help
// lines.
const chromeRows = 2

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the Bubble Tea model that previews a running engine in the
// terminal. Every tick steps the engine with wall-clock time, rasterizes the
// frame offscreen at the virtual canvas size and downsamples it into cells.
type Model struct {
	eng      *engine.Engine
	surface  *offscreen.Renderer
	keys     KeyMap
	help     help.Model
	input    core.InputSnapshot
	interval time.Duration
	width    int
	height   int
	stats    batch.Stats
	frame    uint64
	paused   bool
	embedded bool // Back returns to the session menu instead of quitting
	back     bool
	quitting bool
	err      error
}

// NewModel creates a preview for a started engine.
func NewModel(eng *engine.Engine, width, height int) Model {
	vw, vh := eng.Mode().Size()
	return Model{
		eng:      eng,
		surface:  offscreen.New(int(vw), int(vh)),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		interval: DefaultInterval,
		width:    width,
		height:   height,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.back = true
		if m.embedded {
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		if err := m.eng.Reset(); err != nil {
			m.err = err
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case msg.String() == "ctrl+s":
		m.err = m.saveScreenshot()
		return m, nil
	}

	if name, ok := m.keys.InputKey(msg); ok {
		m.input.Press(name)
	}
	return m, nil
}

// handleTick runs one engine frame.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.paused || m.err != nil {
		return m, tickCmd(m.interval)
	}

	m.eng.SetInput(m.input)
	f, err := m.eng.StepAt(now)
	if err != nil {
		m.err = err
		return m, tickCmd(m.interval)
	}
	if err := m.surface.Render(f); err != nil {
		m.err = err
		return m, tickCmd(m.interval)
	}
	m.stats = f.Stats
	m.frame = f.Number

	// Keys are held for exactly one frame
	m.input.Clear()
	return m, tickCmd(m.interval)
}

// saveScreenshot writes the last rendered frame as a PNG.
func (m Model) saveScreenshot() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".spritecore", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", m.eng.Script().ID(), timestamp))
	return m.surface.SavePNG(path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	rows := max(m.height-chromeRows, 1)
	if m.help.ShowAll {
		rows = max(rows-1, 1)
	}
	canvas := RenderImage(m.surface.Image(), m.width, rows)

	status := fmt.Sprintf(" %s  frame %d  sprites %d  skipped %d  draws %d  cpu %.2fms",
		m.eng.Script().Title(), m.frame, m.stats.Sprites, m.stats.Skipped, m.stats.DrawCalls,
		m.eng.Metrics().Last().CPUFrameMS)
	line := statusStyle.Render(status)
	if m.paused {
		line += pausedStyle.Render("  PAUSED")
	}
	if m.err != nil {
		line = errorStyle.Render(" error: " + m.err.Error())
	}

	return canvas + "\n" + line + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Err returns the error that stopped the engine, if any.
func (m Model) Err() error {
	return m.err
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.back
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts the Bubble Tea program for a started engine and blocks until
// the user quits.
func Run(eng *engine.Engine, width, height int) error {
	p := tea.NewProgram(
		NewModel(eng, width, height),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
