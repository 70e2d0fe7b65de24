// characters.go implements "charchat characters list|create|delete".
package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
)

func newCharactersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "List, create and delete characters",
	}
	cmd.AddCommand(newCharactersListCmd(opts))
	cmd.AddCommand(newCharactersCreateCmd(opts))
	cmd.AddCommand(newCharactersDeleteCmd(opts))
	return cmd
}

func newCharactersListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.ctrl.LoadCharacters(cmd.Context()); err != nil {
				return err
			}
			chars := env.ctrl.Snapshot().Characters
			out := cmd.OutOrStdout()
			if len(chars) == 0 {
				fmt.Fprintln(out, "No characters yet. Create one with: charchat characters create <name>")
				return nil
			}
			fmt.Fprintln(out, renderCharacters(chars))
			return nil
		},
	}
}

func renderCharacters(chars []api.Character) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "TALKING STYLE")
	for _, c := range chars {
		style := ""
		if c.TalkingStyle != nil {
			style = *c.TalkingStyle
		}
		t.Row(strconv.Itoa(c.ID), c.Name, style)
	}
	return t.String()
}

func newCharactersCreateCmd(opts *options) *cobra.Command {
	var in api.CharacterInput

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open()
			if err != nil {
				return err
			}
			defer env.Close()

			in.Name = args[0]
			created, err := env.ctrl.CreateCharacter(cmd.Context(), in)
			if created == nil {
				if chat.IsValidation(err) {
					return fmt.Errorf("%s", chat.AlertText(err))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (id %d)\n", created.Name, created.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&in.Personality, "personality", "", "Personality traits")
	cmd.Flags().StringVar(&in.Backstory, "backstory", "", "Backstory")
	cmd.Flags().StringVar(&in.TalkingStyle, "talking-style", "", "How the character talks")
	return cmd
}

func newCharactersDeleteCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <character-id>",
		Short: "Delete a character and all of their chats",
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

			ctx := cmd.Context()
			char, err := findCharacter(ctx, env.ctrl, id)
			if err != nil {
				return err
			}
			env.ctrl.SelectCharacter(ctx, char)

			out := cmd.OutOrStdout()
			question := env.ctrl.ConfirmPrompt(chat.ActionDeleteCharacter)
			if !yes && !confirm(bufio.NewReader(cmd.InOrStdin()), out, question) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			if err := env.ctrl.DeleteCharacter(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", char.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// findCharacter loads the character list and returns the one with id.
func findCharacter(ctx context.Context, ctrl *chat.Controller, id int) (api.Character, error) {
	if err := ctrl.LoadCharacters(ctx); err != nil {
		return api.Character{}, err
	}
	for _, c := range ctrl.Snapshot().Characters {
		if c.ID == id {
			return c, nil
		}
	}
	return api.Character{}, fmt.Errorf("character %d not found", id)
}

func parseCharacterID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid character id %q", arg)
	}
	return id, nil
}
