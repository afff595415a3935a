package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/platform/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview <script>",
	Short: "Preview a script in the terminal",
	Long: `Run the specified script in real time and draw its virtual canvas
with half-block characters.

Controls:
  Arrows/WASD  - Directional input
  Space        - Action
  P            - Pause
  R            - Restart the script
  Ctrl+S       - Save a screenshot to ~/.spritecore/screenshots
  ?            - Toggle help
  Esc/Q        - Quit

Examples:
  spritecore preview bounce
  spritecore preview stress --config ./engine.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	logger := newLogger()

	store := openStore(cfg.Storage.Path)

	eng, err := startEngine(args[0], cfg, store, nil, logger)
	if err != nil {
		if store != nil {
			store.Close()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	width, height := terminalSize()
	runErr := tui.Run(eng, width, height)

	saveRun(store, eng)
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running script: %v\n", runErr)
		os.Exit(1)
	}
}
