package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/custclassify/internal/model"
	"github.com/amishk599/custclassify/internal/store"
	"github.com/amishk599/custclassify/internal/tui"
)

var (
	historyLimit       int
	historyInteractive bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded classifications",
	Long:  "Prints the most recent classifications from the history database (history.path in config).",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show (0 for all)")
	historyCmd.Flags().BoolVarP(&historyInteractive, "interactive", "i", false, "browse records in a split-pane TUI")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig("", "")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.History.Enabled() {
		logger.Error("history is disabled; set history.path in the config file or CUSTCLASSIFY_HISTORY_PATH")
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		logger.Error("failed to open history", "path", cfg.History.Path, "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	records, err := sqlStore.Recent(context.Background(), historyLimit)
	if err != nil {
		logger.Error("failed to read history", "error", err)
		os.Exit(1)
	}

	if historyInteractive {
		if err := tui.RunHistoryBrowser(records); err != nil {
			logger.Error("history browser failed", "error", err)
			os.Exit(1)
		}
		return nil
	}
	writeHistoryTable(os.Stdout, records)
	return nil
}

func writeHistoryTable(w io.Writer, records []model.Record) {
	fmt.Fprintf(w, "%-6s %-17s %-22s %-20s %s\n", "ID", "Recorded", "Category", "Industry", "Model")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, r := range records {
		fmt.Fprintf(w, "%-6d %-17s %-22s %-20s %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(r.Result.Category, 22),
			truncate(r.Request.Industry, 20),
			r.Model,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d classifications\n", len(records))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
