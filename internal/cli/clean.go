// clean.go implements the "charchat clean" command for pruning the event log.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/cleanup"
	"github.com/charchat/charchat/internal/config"
	"github.com/charchat/charchat/internal/log"
)

func newCleanCmd() *cobra.Command {
	var (
		keep   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old events from .charchat/log.jsonl",
		Long: `Remove old events from .charchat/log.jsonl.

By default, removes events older than the configured log.max_age_days (default 30).
Use --keep to keep only the N most recent events instead.
Use --dry-run to preview how many events would be removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			path := filepath.Join(config.Dir(dir), log.FileName)

			var pruned int
			if keep > 0 {
				pruned, err = cleanup.PruneKeepRecent(path, keep, dryRun)
			} else {
				cfg, cfgErr := config.Load(dir)
				if cfgErr != nil {
					return fmt.Errorf("loading config: %w", cfgErr)
				}
				maxAge := cfg.Log.MaxAgeDays
				if maxAge <= 0 {
					maxAge = 30
				}
				pruned, err = cleanup.PruneByAge(path, maxAge, dryRun)
			}
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if pruned == 0 {
				fmt.Fprintln(out, "No events to clean up.")
				return nil
			}

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			fmt.Fprintf(out, "%s %d event(s).\n", verb, pruned)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "Keep only the last N events (0 = use age-based cleanup)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would be removed without deleting")
	return cmd
}
