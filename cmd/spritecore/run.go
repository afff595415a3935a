package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/debugserver"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/metrics"
	"github.com/vovakirdan/spritecore/internal/offscreen"
	"github.com/vovakirdan/spritecore/internal/replay"
)

var (
	flagFrames        int
	flagRecord        string
	flagReplay        string
	flagPNG           string
	flagProfile       string
	flagMetricsListen string
	flagRealtime      bool
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script headless",
	Long: `Run the specified script without a window for a fixed number of frames
and print its frame metrics and budget violations.

Every frame runs exactly one fixed step unless --realtime is set, in which
case frames are paced by the wall clock like a real renderer.

Recording and replay:
  --record writes one line per frame with the input and transform hash.
  --replay feeds a recording back and fails on the first hash mismatch.
  Neither works with --realtime.

Profiling options:
  cpu    - CPU profile written to ./cpu.pprof
  mem    - Heap profile written to ./mem.pprof
  trace  - Execution trace written to ./trace.out

Examples:
  spritecore run stress
  spritecore run stress --frames 600 --profile cpu
  spritecore run bounce --record bounce.rec
  spritecore run bounce --replay bounce.rec
  spritecore run mixed --png mixed.png
  spritecore run stress --realtime --metrics-listen :9090`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagFrames, "frames", 300, "Number of frames to run")
	runCmd.Flags().StringVar(&flagRecord, "record", "", "Write a replay recording to this file")
	runCmd.Flags().StringVar(&flagReplay, "replay", "", "Verify against a replay recording")
	runCmd.Flags().StringVar(&flagPNG, "png", "", "Save the last frame as PNG")
	runCmd.Flags().StringVar(&flagProfile, "profile", "", "Profile mode: cpu, mem, trace")
	runCmd.Flags().StringVar(&flagMetricsListen, "metrics-listen", "", "Serve the debug endpoints on this address (default: config metrics.listen)")
	runCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace frames with the wall clock")
}

func runRun(cmd *cobra.Command, args []string) {
	if err := runHeadless(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHeadless(scriptID string) error {
	if err := checkRunFlags(flagRealtime, flagRecord, flagReplay); err != nil {
		return err
	}
	cfg := mustConfig()
	logger := newLogger()

	if stop, err := startProfile(flagProfile); err != nil {
		return err
	} else if stop != nil {
		defer stop()
	}

	store := openStore(cfg.Storage.Path)
	if store != nil {
		defer store.Close()
	}

	listen := flagMetricsListen
	if listen == "" {
		listen = cfg.Metrics.Listen
	}
	var exporter *metrics.Exporter
	if listen != "" {
		exporter = metrics.NewExporter()
	}

	eng, err := startEngine(scriptID, cfg, store, exporter, logger)
	if err != nil {
		return err
	}

	if listen != "" {
		srv, err := debugserver.Listen(listen, debugserver.Config{
			Script:   scriptID,
			Source:   eng.Metrics(),
			Exporter: exporter,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("debug server: %w", err)
		}
		go func() {
			if err := srv.Serve(); err != nil {
				logger.Error("debug server stopped", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	frames := flagFrames
	if flagReplay != "" {
		f, err := os.Open(flagReplay)
		if err != nil {
			return fmt.Errorf("cannot open recording: %w", err)
		}
		player, err := replay.NewPlayer(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("cannot read recording %s: %w", flagReplay, err)
		}
		eng.Replay(player)
		frames = player.Len()
	}

	if flagRecord != "" {
		f, err := os.Create(flagRecord)
		if err != nil {
			return fmt.Errorf("cannot create recording: %w", err)
		}
		defer f.Close()
		eng.Record(f)
	}

	var renderer engine.Renderer
	var surface *offscreen.Renderer
	if flagPNG != "" {
		vw, vh := eng.Mode().Size()
		surface = offscreen.New(int(vw), int(vh))
		rendered := 0
		renderer = engine.RendererFunc(func(f *engine.Frame) error {
			rendered++
			if rendered < frames {
				return nil
			}
			return surface.Render(f)
		})
	}

	start := time.Now()
	if flagRealtime {
		err = runRealtime(eng, frames, renderer)
	} else {
		err = eng.RunFrames(frames, renderer)
	}
	elapsed := time.Since(start)

	if flushErr := eng.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("cannot write recording: %w", flushErr)
	}
	var mismatch *replay.MismatchError
	if errors.As(err, &mismatch) {
		return fmt.Errorf("replay diverged: %w", err)
	}
	if err != nil {
		return err
	}

	saveRun(store, eng)

	if surface != nil {
		if err := surface.SavePNG(flagPNG); err != nil {
			return err
		}
		fmt.Printf("Saved last frame to %s\n", flagPNG)
	}

	printReport(eng, elapsed)
	return nil
}

// checkRunFlags rejects flag combinations that cannot work together.
// Recordings assume one fixed step per frame, which --realtime does not give.
func checkRunFlags(realtime bool, record, replayPath string) error {
	if !realtime {
		return nil
	}
	if record != "" {
		return errors.New("--realtime cannot be combined with --record")
	}
	if replayPath != "" {
		return errors.New("--realtime cannot be combined with --replay")
	}
	return nil
}

// runRealtime steps the engine from the wall clock until n frames ran.
func runRealtime(eng *engine.Engine, n int, r engine.Renderer) error {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for ran := 0; ran < n; {
		now := <-ticker.C
		f, err := eng.StepAt(now)
		if err != nil {
			return err
		}
		if f.Ticks == 0 {
			continue
		}
		ran++
		if r != nil {
			if err := r.Render(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// startProfile starts pkg/profile in the given mode. The returned func stops
// it; it is nil when profiling is off.
func startProfile(mode string) (func(), error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	case "trace":
		opt = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu, mem or trace)", mode)
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
	return p.Stop, nil
}

func printReport(eng *engine.Engine, elapsed time.Duration) {
	col := eng.Metrics()
	st := col.Stats()
	last := col.Last()

	fmt.Printf("Script:        %s\n", eng.Script().ID())
	fmt.Printf("Frames:        %d in %s\n", col.Total(), elapsed.Round(time.Millisecond))
	fmt.Printf("CPU frame ms:  mean %.3f  p99 %.3f  max %.3f\n", st.CPUFrameMeanMS, st.CPUFrameP99MS, st.CPUFrameMaxMS)
	fmt.Printf("Draw calls:    %d\n", last.DrawCalls)
	fmt.Printf("Sprites:       %d drawn, %d skipped\n", last.SpritesSubmitted, last.SpritesSkipped)
	fmt.Printf("Exchange:      mean %.2f  max %d calls/frame\n", st.ExchangeCallsMean, st.ExchangeCallsMax)
	fmt.Printf("Transform:     %016x\n", eng.State().TransformHash())

	violations := col.Violations()
	if len(violations) == 0 {
		fmt.Println("Budgets:       ok")
		return
	}
	fmt.Println("Budgets:       violated")
	for _, v := range violations {
		fmt.Printf("  - %s\n", v)
	}
}
