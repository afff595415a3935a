package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/spritecore/internal/storage"
)

var flagKVClear bool

var kvCmd = &cobra.Command{
	Use:   "kv <script>",
	Short: "Show or clear persisted script values",
	Long: `Display the values a script persisted through its host API.

Values live in the database under the script's id and survive restarts.

Examples:
  spritecore kv bounce
  spritecore kv bounce --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runKV,
}

func init() {
	kvCmd.Flags().BoolVar(&flagKVClear, "clear", false, "Delete every persisted value of the script")
}

func runKV(cmd *cobra.Command, args []string) {
	scriptID := args[0]

	cfg := mustConfig()
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagKVClear {
		if err := store.ClearNamespace(scriptID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared persisted values for %s.\n", scriptID)
		return
	}

	keys, err := store.Keys(scriptID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(keys) == 0 {
		fmt.Printf("No persisted values for %s.\n", scriptID)
		return
	}

	maxKeyLen := 3 // "Key" header
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxKeyLen, "Key", "Value")
	fmt.Printf("  %-*s  %s\n", maxKeyLen, "---", "-----")
	for _, k := range keys {
		v, _, err := store.Restore(scriptID, k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-*s  %v\n", maxKeyLen, k, v)
	}
}
