package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start spritecore with a script picker menu",
	Long: `Start spritecore in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to preview a script.
Leaving a preview returns to the menu and records the run.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select script
  Tab          - Recorded runs
  Q            - Quit

Examples:
  spritecore menu
  spritecore menu --db ./spritecore.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	cfg := mustConfig()
	logger := newLogger()

	store := openStore(cfg.Storage.Path)
	width, height := terminalSize()

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		if menuResult.Quit {
			break
		}

		if menuResult.WantsRuns {
			if store == nil {
				fmt.Fprintln(os.Stderr, "Warning: no database, runs are unavailable")
				continue
			}
			goBack, runsErr := tui.RunRuns(store, width, height)
			if runsErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", runsErr)
			}
			if goBack {
				continue
			}
			break
		}

		if menuResult.ScriptID == "" {
			break
		}

		eng, err := startEngine(menuResult.ScriptID, cfg, store, nil, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		if err := tui.Run(eng, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error running script: %v\n", err)
		}
		saveRun(store, eng)

		// Loop back to menu
	}

	if store != nil {
		store.Close()
	}
}
