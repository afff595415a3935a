// spritecore runs 2D sprite scripts on a fixed-step frame pipeline and
// presents them headless, in the terminal, over SSH or in a desktop window.
//
// Usage:
//
//	spritecore list               - List available scripts
//	spritecore run <script>       - Run a script headless for a number of frames
//	spritecore preview <script>   - Preview a script in the terminal
//	spritecore window <script>    - Open a script in a desktop window
//	spritecore menu               - Pick scripts interactively
//	spritecore serve              - Start SSH server for remote previews
//	spritecore runs [script]      - Show recorded runs
//	spritecore kv <script>        - Show or clear persisted script values
//
// Global flags:
//
//	--config <path>     - Engine config YAML
//	--db <path>         - Set database path (default: ~/.spritecore/spritecore.db)
//	--log-level <level> - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/spritecore/internal/config"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/metrics"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/storage"

	// Import scripts to register them
	_ "github.com/vovakirdan/spritecore/internal/scripts/bounce"
	_ "github.com/vovakirdan/spritecore/internal/scripts/flicker"
	_ "github.com/vovakirdan/spritecore/internal/scripts/mixed"
	_ "github.com/vovakirdan/spritecore/internal/scripts/snake"
	_ "github.com/vovakirdan/spritecore/internal/scripts/stress"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "spritecore",
	Short: "spritecore - a fixed-step 2D sprite runtime",
	Long: `spritecore runs sprite scripts through a fixed-step simulation,
a per-frame buffer exchange and a texture-sorted sprite batcher.

Available commands:
  list     - Show all available scripts
  run      - Run a script headless and report frame metrics
  preview  - Preview a script in the terminal
  window   - Open a script in a desktop window
  menu     - Interactive script picker
  serve    - Start SSH server for remote previews
  runs     - View recorded runs
  kv       - Inspect persisted script values

Examples:
  spritecore list
  spritecore run stress --frames 600
  spritecore preview bounce
  spritecore window bounce
  spritecore serve --ssh :2222`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		loadDotEnv()
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default: config storage.path)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(kvCmd)
}

// loadDotEnv picks up SPRITECORE_* overrides from a .env file.
func loadDotEnv() {
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		_ = godotenv.Load(".env")
	}
}

// mustConfig loads the engine config or exits.
func mustConfig() config.EngineConfig {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "spritecore",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openStore opens the database. The engine still runs without one, so a
// failure is only a warning.
func openStore(path string) *storage.Store {
	store, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil
	}
	return store
}

// startEngine creates the script, wires an engine around it and runs Start.
func startEngine(id string, cfg config.EngineConfig, store *storage.Store, exporter *metrics.Exporter, logger *log.Logger) (*engine.Engine, error) {
	if !registry.Exists(id) {
		return nil, fmt.Errorf("unknown script %q (run 'spritecore list' to see available scripts)", id)
	}
	s, err := registry.Create(id)
	if err != nil {
		return nil, err
	}
	opts := engine.Options{
		Config:   cfg,
		Logger:   logger,
		Exporter: exporter,
	}
	if store != nil {
		opts.Store = store
	}
	eng, err := engine.New(s, opts)
	if err != nil {
		return nil, err
	}
	if err := eng.Start(); err != nil {
		return nil, err
	}
	return eng, nil
}

// saveRun stores the run summary when a database is open.
func saveRun(store *storage.Store, eng *engine.Engine) {
	if store == nil || eng.Metrics().Total() == 0 {
		return
	}
	if _, err := store.SaveRun(eng.RunRecord()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save run: %v\n", err)
	}
}

// terminalSize returns the terminal size, defaulting to 80x24.
func terminalSize() (int, int) {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}
