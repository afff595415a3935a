package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scripts",
	Long:  `Shows a list of all scripts registered with spritecore.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	scripts := registry.List()

	if len(scripts) == 0 {
		fmt.Println("No scripts available.")
		return
	}

	fmt.Println("Available scripts:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range scripts {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")

	for _, s := range scripts {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}

	fmt.Println()
	fmt.Println("Run 'spritecore preview <id>' to watch a script.")
}
