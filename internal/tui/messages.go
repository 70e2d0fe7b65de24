package tui

import (
	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
)

// ============================================================================
// API Result Messages
// ============================================================================

// CharactersLoadedMsg signals that the character list was fetched.
type CharactersLoadedMsg struct {
	Err error
}

// CharacterSelectedMsg signals that a character and its latest session are loaded.
type CharacterSelectedMsg struct {
	CharacterID int
}

// CharacterCreatedMsg signals the result of creating a character.
type CharacterCreatedMsg struct {
	Character *api.Character
	Err       error
}

// MessageSentMsg signals that a chat turn finished, successfully or not.
type MessageSentMsg struct {
	Err error
}

// ActionDoneMsg signals that a confirmed destructive action finished.
type ActionDoneMsg struct {
	Action chat.Action
	Err    error
}

// ============================================================================
// Dialog Messages
// ============================================================================

// ConfirmResultMsg carries the user's answer to a confirmation dialog.
type ConfirmResultMsg struct {
	Action    chat.Action
	Confirmed bool
}

// AlertClosedMsg signals that an alert dialog was dismissed.
type AlertClosedMsg struct{}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg clears a pending Ctrl+C after the confirmation window.
type CtrlCResetMsg struct{}
