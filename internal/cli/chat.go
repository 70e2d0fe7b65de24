// chat.go implements "charchat chat", a one-shot message to a character.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/ui"
)

func newChatCmd(opts *options) *cobra.Command {
	var newSession bool

	cmd := &cobra.Command{
		Use:   "chat <character-id> <message...>",
		Short: "Send one message to a character",
		Long: `Send a message to a character and print the reply.

The message continues the character's most recent session. Use --new to
start a fresh one. The reply is followed by the mood the server read in
your message and any facts the character remembered from it.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCharacterID(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")

			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			char, err := findCharacter(ctx, env.ctrl, id)
			if err != nil {
				return err
			}
			env.ctrl.SelectCharacter(ctx, char)
			if newSession {
				env.ctrl.NewChat()
			}

			waiter := ui.NewWaiter(cmd.ErrOrStderr(), "Waiting for "+char.Name+"...")
			waiter.Start()
			err = env.ctrl.SendMessage(ctx, text)
			waiter.Stop()
			if err != nil {
				if chat.IsValidation(err) {
					return fmt.Errorf("%s", chat.AlertText(err))
				}
				return fmt.Errorf("%s", chat.ErrorText(err))
			}

			printReply(cmd.OutOrStdout(), env.ctrl.Snapshot())
			return nil
		},
	}

	cmd.Flags().BoolVar(&newSession, "new", false, "Start a new session instead of continuing the latest one")
	return cmd
}

// printReply writes the latest exchange from snap.
func printReply(out io.Writer, snap chat.Snapshot) {
	var user, reply *chat.Bubble
	for i := len(snap.Transcript) - 1; i >= 0; i-- {
		b := &snap.Transcript[i]
		if reply == nil && b.Role == api.RoleAssistant {
			reply = b
			continue
		}
		if reply != nil && b.Role == api.RoleUser {
			user = b
			break
		}
	}

	if reply != nil {
		fmt.Fprintf(out, "%s: %s\n", snap.Character.Name, reply.Text)
	}
	if user != nil && user.Sentiment != "" {
		fmt.Fprintf(out, "Mood: %s\n", user.Sentiment)
	}
	if len(snap.Memory) > 0 {
		fmt.Fprintln(out, "Remembered:")
		for _, fact := range snap.Memory {
			fmt.Fprintf(out, "  • %s\n", fact)
		}
	}
	fmt.Fprintf(out, "Session: %s\n", snap.SessionID)
}
