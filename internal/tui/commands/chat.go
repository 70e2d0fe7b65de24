// Package commands provides Bubble Tea commands for TUI operations.
// Each command runs one controller operation off the UI loop and reports
// back with a message from the tui package.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/tui"
)

// LoadCharactersCmd fetches the character list.
func LoadCharactersCmd(ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.LoadCharacters(context.Background())
		return tui.CharactersLoadedMsg{Err: err}
	}
}

// SelectCharacterCmd makes char active and loads its latest session.
func SelectCharacterCmd(ctrl *chat.Controller, char api.Character) tea.Cmd {
	return func() tea.Msg {
		ctrl.SelectCharacter(context.Background(), char)
		return tui.CharacterSelectedMsg{CharacterID: char.ID}
	}
}

// CreateCharacterCmd creates a character from the form input.
func CreateCharacterCmd(ctrl *chat.Controller, in api.CharacterInput) tea.Cmd {
	return func() tea.Msg {
		created, err := ctrl.CreateCharacter(context.Background(), in)
		return tui.CharacterCreatedMsg{Character: created, Err: err}
	}
}

// SendMessageCmd sends text to the active character.
func SendMessageCmd(ctrl *chat.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.SendMessage(context.Background(), text)
		return tui.MessageSentMsg{Err: err}
	}
}

// RunActionCmd runs a confirmed destructive action.
func RunActionCmd(ctrl *chat.Controller, action chat.Action) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch action {
		case chat.ActionClearChat:
			err = ctrl.ClearChat(ctx)
		case chat.ActionDeleteChat:
			err = ctrl.DeleteChat(ctx)
		case chat.ActionDeleteCharacter:
			err = ctrl.DeleteCharacter(ctx)
		}
		return tui.ActionDoneMsg{Action: action, Err: err}
	}
}
