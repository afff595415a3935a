// Package engine runs the frame loop: fixed-step script ticks, one exchange
// drain, batching and metrics per frame.
//
// An Engine is single-threaded. The terminal preview, the SSH server and the
// headless runner each own their engines and never share one across
// goroutines.
package engine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/canvas"
	"github.com/vovakirdan/spritecore/internal/config"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/exchange"
	"github.com/vovakirdan/spritecore/internal/metrics"
	"github.com/vovakirdan/spritecore/internal/replay"
	"github.com/vovakirdan/spritecore/internal/script"
	"github.com/vovakirdan/spritecore/internal/state"
	"github.com/vovakirdan/spritecore/internal/storage"
	"github.com/vovakirdan/spritecore/internal/timestep"
)

// ErrNotStarted is returned by Step before Start succeeded.
var ErrNotStarted = errors.New("engine: not started")

var _ PersistStore = (*storage.Store)(nil)

// Options configures an Engine.
type Options struct {
	Config   config.EngineConfig
	Logger   *log.Logger
	Store    PersistStore      // optional durable persistence
	Exporter *metrics.Exporter // optional prometheus mirror
	Clock    func() time.Time  // frame and watchdog timer, time.Now by default
}

// Engine owns one script and the whole per-frame pipeline.
type Engine struct {
	cfg    config.EngineConfig
	logger *log.Logger
	mode   canvas.Mode

	script  script.Script
	api     *api
	fs      *state.FrameState
	ex      *exchange.Exchange
	batcher *batch.Batcher
	sched   *timestep.Scheduler
	metrics *metrics.Collector
	dog     *watchdog

	input    core.InputSnapshot
	started  bool
	number   uint64
	frame    Frame
	recorder *replay.Recorder
	player   *replay.Player
}

// New wires an engine around s. The configuration is validated here so
// startup problems surface before the first frame.
func New(s script.Script, opts Options) (*Engine, error) {
	if s == nil {
		return nil, errors.New("engine: nil script")
	}
	if opts.Config == (config.EngineConfig{}) {
		opts.Config = config.DefaultEngineConfig()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	mode, err := opts.Config.CanvasMode()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	cfg := opts.Config
	collector := metrics.New(metrics.Options{
		History:    cfg.Metrics.History,
		Budgets:    cfg.MetricsBudgets(),
		CheckEvery: cfg.Metrics.CheckEvery,
		Logger:     opts.Logger,
		Exporter:   opts.Exporter,
		Clock:      opts.Clock,
	})

	e := &Engine{
		cfg:     cfg,
		logger:  opts.Logger,
		mode:    mode,
		script:  s,
		fs:      state.New(cfg.CoreBudgets()),
		ex:      exchange.New(),
		batcher: batch.New(),
		sched:   timestep.New(cfg.Timing.FixedDT, cfg.Timing.MaxFrameDelta),
		metrics: collector,
		dog:     newWatchdog(cfg.Timing.WatchdogMS, opts.Logger, collector, opts.Clock),
	}
	e.ex.SetPixelsPerUnit(cfg.Canvas.PixelsPerUnit)
	e.fs.SetClearColor(cfg.ClearColor())
	e.api = &api{e: e, transforms: e.ex, sprites: e.ex, kv: newKVStore(s.ID(), opts.Store)}
	return e, nil
}

// Start runs the script's Start hook and makes anything it submitted
// visible to the first frame.
func (e *Engine) Start() error {
	if err := e.script.Start(e.api); err != nil {
		return fmt.Errorf("engine: script %s start: %w", e.script.ID(), err)
	}
	e.started = true
	e.logger.Debug("script started", "script", e.script.ID(), "mode", e.mode)
	return nil
}

// SetInput sets the live input seen by the next frame. It is ignored while a
// replay is attached.
func (e *Engine) SetInput(in core.InputSnapshot) {
	if e.player == nil {
		e.input = in.Clone()
	}
}

// Record writes one replay line per frame to w. Call Flush when done.
func (e *Engine) Record(w io.Writer) {
	e.recorder = replay.NewRecorder(w)
}

// Replay feeds recorded input into the script and verifies every frame's
// transform hash.
func (e *Engine) Replay(p *replay.Player) {
	e.player = p
}

// Flush flushes an attached recorder.
func (e *Engine) Flush() error {
	if e.recorder == nil {
		return nil
	}
	return e.recorder.Flush()
}

// Step runs one frame with an injected wall-clock delta in seconds.
func (e *Engine) Step(delta float64) (*Frame, error) {
	return e.step(func(tick func(dt float64)) int {
		return e.sched.Advance(delta, tick)
	})
}

// StepAt runs one frame using wall-clock time. The first call only primes
// the clock.
func (e *Engine) StepAt(now time.Time) (*Frame, error) {
	return e.step(func(tick func(dt float64)) int {
		return e.sched.Poll(now, tick)
	})
}

func (e *Engine) step(advance func(tick func(dt float64)) int) (*Frame, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	e.metrics.BeginFrame()
	if e.player != nil {
		e.input = e.player.Input()
	}

	var tickErr error
	ticks := advance(func(dt float64) {
		if tickErr != nil {
			return
		}
		tickErr = e.dog.run(e.script.ID(), func() error {
			return e.script.Update(e.api, dt)
		})
	})
	if tickErr != nil {
		e.endFrame()
		return nil, fmt.Errorf("engine: script %s update: %w", e.script.ID(), tickErr)
	}

	if err := e.ex.Drain(e.fs); err != nil {
		e.endFrame()
		return nil, fmt.Errorf("engine: drain: %w", err)
	}

	stats := e.batcher.Build(e.fs)
	e.metrics.RecordDraw(stats.DrawCalls, stats.Sprites, stats.Skipped)
	e.metrics.RecordExchangeCalls(e.ex.Calls())

	e.number++
	hash := e.fs.TransformHash()
	e.frame = Frame{
		Number:        e.number,
		Ticks:         ticks,
		Alpha:         e.sched.Alpha(),
		Hash:          hash,
		Vertices:      e.batcher.Vertices,
		Indices:       e.batcher.Indices,
		Batches:       e.batcher.Batches,
		Stats:         stats,
		Mode:          e.mode,
		PixelsPerUnit: e.ex.Units().PixelsPerUnit(),
		ClearColor:    e.fs.ClearColor(),
		Textures:      e.fs,
	}

	var frameErr error
	if e.recorder != nil {
		frameErr = e.recorder.Record(hash, e.input)
	}
	if e.player != nil && frameErr == nil {
		frameErr = e.player.Verify(hash)
	}
	e.endFrame()
	if frameErr != nil {
		return &e.frame, frameErr
	}
	return &e.frame, nil
}

func (e *Engine) endFrame() {
	e.ex.EndFrame()
	e.fs.EndFrame()
	e.metrics.EndFrame()
}

// RunFrames runs n frames of exactly one fixed step each and hands every
// frame to r. A nil renderer runs headless.
func (e *Engine) RunFrames(n int, r Renderer) error {
	for i := 0; i < n; i++ {
		f, err := e.Step(e.sched.FixedDT())
		if err != nil {
			return err
		}
		if r != nil {
			if err := r.Render(f); err != nil {
				return fmt.Errorf("engine: render frame %d: %w", f.Number, err)
			}
		}
	}
	return nil
}

// Reset drops all world state and restarts the script. Persisted values and
// metrics history survive.
func (e *Engine) Reset() error {
	e.fs.Reset()
	e.fs.SetClearColor(e.cfg.ClearColor())
	e.ex.Reset()
	e.sched.Reset()
	e.number = 0
	e.started = false
	return e.Start()
}

// Script returns the running script.
func (e *Engine) Script() script.Script {
	return e.script
}

// State returns the frame state. It must only be read between steps.
func (e *Engine) State() *state.FrameState {
	return e.fs
}

// Metrics returns the metrics collector. It is safe for concurrent reads.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

// Mode returns the virtual canvas mode.
func (e *Engine) Mode() canvas.Mode {
	return e.mode
}

// Time returns the simulated time in seconds.
func (e *Engine) Time() float64 {
	return e.sched.FixedTime()
}

// Host returns the script-facing API. Tests use it to drive submissions
// without a script.
func (e *Engine) Host() script.Host {
	return e.api
}

// RunRecord summarises the run so far for the runs table.
func (e *Engine) RunRecord() storage.RunRecord {
	st := e.metrics.Stats()
	return storage.RunRecord{
		Script:        e.script.ID(),
		Frames:        e.metrics.Total(),
		MeanMS:        st.CPUFrameMeanMS,
		P99MS:         st.CPUFrameP99MS,
		MaxMS:         st.CPUFrameMaxMS,
		DrawCalls:     e.metrics.Last().DrawCalls,
		TransformHash: e.fs.TransformHash(),
	}
}
