// sessions.go implements the session commands: sessions, history, clear and
// delete-session.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/log"
)

const timeLayout = "2006-01-02 15:04"

func newSessionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions <character-id>",
		Short: "List a character's sessions, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCharacterID(args[0])
			if err != nil {
				return err
			}

			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			sessions, err := env.client.ListSessions(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions yet.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("SESSION", "CHARACTER", "CREATED")
			for _, s := range sessions {
				t.Row(s.ID, strconv.Itoa(s.CharacterID), formatTime(s.CreatedAt))
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-id>",
		Short: "Print the transcript of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			msgs, err := env.client.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), msgs)
			return nil
		},
	}
}

func printHistory(out io.Writer, msgs []api.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages in this session.")
		return
	}
	for _, m := range msgs {
		speaker := "Character"
		if m.Role == api.RoleUser {
			speaker = "You"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", formatTime(m.CreatedAt), speaker, m.Content)
		if m.Sentiment != "" {
			fmt.Fprintf(out, "  Mood: %s\n", m.Sentiment)
		}
	}
}

func formatTime(ts api.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(timeLayout)
}

func newClearCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Delete every message in a session, keeping the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid := args[0]
			out := cmd.OutOrStdout()
			if !yes && !confirm(bufio.NewReader(cmd.InOrStdin()), out, chat.Prompt(chat.ActionClearChat, "")) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.client.ClearSession(cmd.Context(), sid); err != nil {
				return err
			}
			env.logger.Info(log.EventChatCleared, log.Session(sid))
			fmt.Fprintf(out, "Cleared session %s\n", sid)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newDeleteSessionCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-session <session-id>",
		Short: "Delete a session and all of its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid := args[0]
			out := cmd.OutOrStdout()
			if !yes && !confirm(bufio.NewReader(cmd.InOrStdin()), out, chat.Prompt(chat.ActionDeleteChat, "")) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.client.DeleteSession(cmd.Context(), sid); err != nil {
				return err
			}
			env.logger.Info(log.EventChatDeleted, log.Session(sid))
			fmt.Fprintf(out, "Deleted session %s\n", sid)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
