// log.go implements "charchat log", which prints recent client events.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/config"
	"github.com/charchat/charchat/internal/log"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent events from .charchat/log.jsonl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			events, err := log.ReadAll(filepath.Join(config.Dir(dir), log.FileName))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events logged yet.")
				return nil
			}
			if limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}
			for _, e := range events {
				printEvent(out, e)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of most recent events to show (0 for all)")
	return cmd
}

func printEvent(out io.Writer, e log.LogEvent) {
	parts := []string{
		e.Time.Local().Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%-5s", e.Level),
		e.Event,
	}
	if e.CharacterID != 0 {
		parts = append(parts, fmt.Sprintf("character=%d", e.CharacterID))
	}
	if e.SessionID != "" {
		parts = append(parts, "session="+e.SessionID)
	}
	if e.Count != 0 {
		parts = append(parts, fmt.Sprintf("count=%d", e.Count))
	}
	if e.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", e.Error))
	}
	fmt.Fprintln(out, strings.Join(parts, "  "))
}
