// Package metrics collects per-frame counters and checks them against the
// soft performance budgets. Violations are reported, never enforced.
package metrics

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Default soft budgets.
const (
	DefaultHistory      = 300 // 5 seconds at 60 FPS
	DefaultP99BudgetMS  = 16.6
	DefaultMeanBudgetMS = 4.0
	DefaultMaxCalls     = 3
	DefaultCheckEvery   = 300
)

// Frame holds the counters of one completed frame.
type Frame struct {
	CPUFrameMS       float64 `json:"cpu_frame_ms"`
	DrawCalls        int     `json:"draw_calls"`
	SpritesSubmitted int     `json:"sprites_submitted"`
	SpritesSkipped   int     `json:"sprites_skipped"`
	ExchangeCalls    int     `json:"exchange_calls"`
	WatchdogSpikes   int     `json:"watchdog_spikes"`
	DroppedWarnings  int     `json:"dropped_warnings"`
}

// Stats aggregates the frame history.
type Stats struct {
	Frames            int     `json:"frames"`
	CPUFrameMeanMS    float64 `json:"cpu_frame_mean_ms"`
	CPUFrameP99MS     float64 `json:"cpu_frame_p99_ms"`
	CPUFrameMaxMS     float64 `json:"cpu_frame_max_ms"`
	ExchangeCallsMean float64 `json:"exchange_calls_mean"`
	ExchangeCallsMax  int     `json:"exchange_calls_max"`
}

// Budgets are the soft limits Violations checks against.
type Budgets struct {
	P99MS    float64
	MeanMS   float64
	MaxCalls int
}

// DefaultBudgets returns the stock budgets.
func DefaultBudgets() Budgets {
	return Budgets{P99MS: DefaultP99BudgetMS, MeanMS: DefaultMeanBudgetMS, MaxCalls: DefaultMaxCalls}
}

// Options configures a Collector.
type Options struct {
	History    int
	Budgets    Budgets
	CheckEvery int // frames between violation log lines, 0 disables
	Logger     *log.Logger
	Exporter   *Exporter
	Clock      func() time.Time
}

// Collector records frame metrics. It is written by the frame loop and may be
// read concurrently by the debug server.
type Collector struct {
	mu      sync.RWMutex
	opts    Options
	current Frame
	last    Frame
	started time.Time
	inFrame bool
	history []Frame
	next    int
	total   int
}

// New creates a Collector. Zero option fields take the defaults.
func New(opts Options) *Collector {
	if opts.History <= 0 {
		opts.History = DefaultHistory
	}
	if opts.Budgets == (Budgets{}) {
		opts.Budgets = DefaultBudgets()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Collector{
		opts:    opts,
		history: make([]Frame, 0, opts.History),
	}
}

// BeginFrame resets the per-frame counters and starts the frame timer.
func (c *Collector) BeginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Frame{}
	c.started = c.opts.Clock()
	c.inFrame = true
}

// EndFrame stops the timer, pushes the frame into history and returns it.
func (c *Collector) EndFrame() Frame {
	c.mu.Lock()
	if c.inFrame {
		c.current.CPUFrameMS = float64(c.opts.Clock().Sub(c.started)) / float64(time.Millisecond)
		c.inFrame = false
	}
	f := c.current
	c.push(f)
	c.last = f
	c.total++
	check := c.opts.CheckEvery > 0 && c.total%c.opts.CheckEvery == 0
	c.mu.Unlock()

	if c.opts.Exporter != nil {
		c.opts.Exporter.Observe(f)
	}
	if check {
		for _, v := range c.Violations() {
			c.opts.Logger.Warn("performance budget exceeded", "violation", v, "frames", c.Total())
		}
	}
	return f
}

func (c *Collector) push(f Frame) {
	if len(c.history) < c.opts.History {
		c.history = append(c.history, f)
		return
	}
	c.history[c.next] = f
	c.next = (c.next + 1) % c.opts.History
}

// RecordExchangeCalls sets the number of exchange submissions this frame.
func (c *Collector) RecordExchangeCalls(n int) {
	c.mu.Lock()
	c.current.ExchangeCalls = n
	c.mu.Unlock()
}

// RecordDraw records the batcher output of this frame.
func (c *Collector) RecordDraw(drawCalls, sprites, skipped int) {
	c.mu.Lock()
	c.current.DrawCalls += drawCalls
	c.current.SpritesSubmitted += sprites
	c.current.SpritesSkipped += skipped
	c.mu.Unlock()
}

// RecordWatchdogSpike counts a script tick that ran over its budget.
func (c *Collector) RecordWatchdogSpike() {
	c.mu.Lock()
	c.current.WatchdogSpikes++
	c.mu.Unlock()
}

// RecordDroppedWarning counts a watchdog warning suppressed by the log throttle.
func (c *Collector) RecordDroppedWarning() {
	c.mu.Lock()
	c.current.DroppedWarnings++
	c.mu.Unlock()
}

// Last returns the most recently completed frame.
func (c *Collector) Last() Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Total returns the number of frames ever completed.
func (c *Collector) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// Stats aggregates the frames currently in history.
func (c *Collector) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.history)
	if n == 0 {
		return Stats{}
	}
	cpu := make([]float64, n)
	var cpuSum float64
	var callSum, callMax int
	s := Stats{Frames: n}
	for i, f := range c.history {
		cpu[i] = f.CPUFrameMS
		cpuSum += f.CPUFrameMS
		s.CPUFrameMaxMS = math.Max(s.CPUFrameMaxMS, f.CPUFrameMS)
		callSum += f.ExchangeCalls
		callMax = max(callMax, f.ExchangeCalls)
	}
	s.CPUFrameMeanMS = cpuSum / float64(n)
	s.CPUFrameP99MS = percentile(cpu, 0.99)
	s.ExchangeCallsMean = float64(callSum) / float64(n)
	s.ExchangeCallsMax = callMax
	return s
}

// Violations lists the budgets the current history exceeds.
func (c *Collector) Violations() []string {
	s := c.Stats()
	if s.Frames == 0 {
		return nil
	}
	b := c.opts.Budgets
	var out []string
	if s.CPUFrameP99MS > b.P99MS {
		out = append(out, fmt.Sprintf("p99_frame_ms (%.2f) exceeds %.1fms budget", s.CPUFrameP99MS, b.P99MS))
	}
	if s.CPUFrameMeanMS > b.MeanMS {
		out = append(out, fmt.Sprintf("mean_frame_ms (%.2f) exceeds %.1fms budget", s.CPUFrameMeanMS, b.MeanMS))
	}
	if s.ExchangeCallsMax > b.MaxCalls {
		out = append(out, fmt.Sprintf("exchange_calls_per_frame (%d) exceeds budget of %d", s.ExchangeCallsMax, b.MaxCalls))
	}
	return out
}

// Reset clears history and counters.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Frame{}
	c.last = Frame{}
	c.history = c.history[:0]
	c.next = 0
	c.total = 0
	c.inFrame = false
}

// percentile uses nearest rank on the rounded index.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	idx := int(math.Round(float64(len(sorted)-1) * p))
	return sorted[min(idx, len(sorted)-1)]
}
