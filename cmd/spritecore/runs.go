package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/platform/tui"
	"github.com/vovakirdan/spritecore/internal/registry"
	"github.com/vovakirdan/spritecore/internal/storage"
)

var (
	flagRunsLimit       int
	flagRunsInteractive bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [script]",
	Short: "Show recorded runs",
	Long: `Display the most recent recorded runs, optionally for one script.

Every headless run and every finished preview stores its frame count,
CPU frame times, draw calls and final transform hash.

Examples:
  spritecore runs
  spritecore runs stress --limit 5
  spritecore runs -i`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVarP(&flagRunsInteractive, "interactive", "i", false, "Browse runs in the terminal UI")
}

func runRuns(cmd *cobra.Command, args []string) {
	scriptID := ""
	if len(args) == 1 {
		scriptID = args[0]
		if !registry.Exists(scriptID) {
			fmt.Fprintf(os.Stderr, "Error: unknown script %q\n", scriptID)
			fmt.Fprintln(os.Stderr, "Run 'spritecore list' to see available scripts.")
			os.Exit(1)
		}
	}

	cfg := mustConfig()
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagRunsInteractive {
		width, height := terminalSize()
		if _, err := tui.RunRuns(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runs, err := store.Runs(scriptID, flagRunsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'spritecore run <script>' to record one.")
		return
	}

	fmt.Printf("  %-4s  %-10s  %8s  %8s  %8s  %5s  %-16s  %s\n",
		"ID", "Script", "Frames", "Mean ms", "P99 ms", "Draws", "Hash", "Date")
	fmt.Printf("  %-4s  %-10s  %8s  %8s  %8s  %5s  %-16s  %s\n",
		"--", "------", "------", "-------", "------", "-----", "----", "----")

	for _, r := range runs {
		fmt.Printf("  %-4d  %-10s  %8d  %8.3f  %8.3f  %5d  %016x  %s\n",
			r.ID, r.Script, r.Frames, r.MeanMS, r.P99MS, r.DrawCalls, r.TransformHash,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}
