package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/platform/window"
)

var (
	flagWindowWidth  int
	flagWindowHeight int
)

var windowCmd = &cobra.Command{
	Use:   "window <script>",
	Short: "Open a script in a desktop window",
	Long: `Run the specified script in a resizable desktop window. The virtual
canvas is letterboxed into the window; pixel-exact scripts scale by whole
numbers only.

Controls:
  Keyboard/mouse  - Passed to the script
  Esc             - Close the window

Examples:
  spritecore window bounce
  spritecore window stress --width 1280 --height 720`,
	Args: cobra.ExactArgs(1),
	Run:  runWindow,
}

func init() {
	windowCmd.Flags().IntVar(&flagWindowWidth, "width", 0, "Window width (default: derived from the canvas mode)")
	windowCmd.Flags().IntVar(&flagWindowHeight, "height", 0, "Window height (default: derived from the canvas mode)")
}

func runWindow(cmd *cobra.Command, args []string) {
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

	width, height := flagWindowWidth, flagWindowHeight
	if width <= 0 || height <= 0 {
		vw, vh := eng.Mode().Size()
		width, height = int(vw)*3, int(vh)*3
		if vw > 960 {
			width, height = int(vw)/2, int(vh)/2
		}
	}

	runErr := window.Run(eng, window.Options{
		Width:  width,
		Height: height,
		Logger: logger,
	})

	saveRun(store, eng)
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running script: %v\n", runErr)
		os.Exit(1)
	}
}
