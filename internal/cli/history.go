package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"testsmith/internal/config"
	"testsmith/internal/storage"
)

var (
	historyConfigDir string
	historyLimit     int
	historyShowFiles bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past generation runs",
	Long: `List recorded runs with their file counts, build outcome, and
coverage percentages.

Example:
  testsmith history
  testsmith history --files   # include per-file results`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(historyConfigDir)
	if err != nil {
		return err
	}

	store, err := storage.NewHistoryStore(cfg.History.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Run 'testsmith generate' first.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s\n", r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.SourcePath)
		fmt.Printf("    generated: %d  failed: %d  build ok: %v\n", r.Generated, r.Failed, r.BuildOK)
		if r.Coverage != nil {
			fmt.Printf("    coverage: lines %.1f%%, functions %.1f%%", r.Coverage.LinePercent, r.Coverage.FunctionPercent)
			if r.Coverage.HasBranchData {
				fmt.Printf(", branches %.1f%%", r.Coverage.BranchPercent)
			}
			fmt.Println()
		}

		if historyShowFiles {
			files, err := store.FileResults(r.ID)
			if err != nil {
				return err
			}
			for _, f := range files {
				if f.Error != "" {
					fmt.Printf("      %s  %s (%s)\n", f.Status, f.SourcePath, f.Error)
				} else {
					fmt.Printf("      %s  %s\n", f.Status, f.SourcePath)
				}
			}
		}
		fmt.Println()
	}
	return nil
}

func init() {
	historyCmd.Flags().StringVar(&historyConfigDir, "config-dir", ".", "directory with YAML config files")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show")
	historyCmd.Flags().BoolVar(&historyShowFiles, "files", false, "show per-file results")
	rootCmd.AddCommand(historyCmd)
}
