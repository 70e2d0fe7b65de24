package chat

import (
	"errors"
	"fmt"

	"github.com/charchat/charchat/internal/api"
)

// Action names a destructive operation that needs confirmation.
type Action int

const (
	ActionClearChat Action = iota
	ActionDeleteChat
	ActionDeleteCharacter
)

func (a Action) String() string {
	switch a {
	case ActionClearChat:
		return "clear chat"
	case ActionDeleteChat:
		return "delete chat"
	case ActionDeleteCharacter:
		return "delete character"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Prompt returns the question to ask before running action. name is the
// active character's name; "" reads as "this character".
func Prompt(action Action, name string) string {
	switch action {
	case ActionClearChat:
		return "Clear all messages in this chat? The session itself is kept."
	case ActionDeleteChat:
		return "Delete this chat session and all of its messages?"
	case ActionDeleteCharacter:
		if name == "" {
			name = "this character"
		}
		return fmt.Sprintf("Delete %s and all of their chats?", name)
	default:
		return "Are you sure?"
	}
}

// ConfirmPrompt returns the question to ask before running action against
// the current state.
func (c *Controller) ConfirmPrompt(action Action) string {
	var name string
	c.mu.Lock()
	if c.character != nil {
		name = c.character.Name
	}
	c.mu.Unlock()
	return Prompt(action, name)
}

// actionError is a destructive action refused before any request was made.
type actionError struct {
	action Action
	err    error
}

func (e *actionError) Error() string { return e.action.String() + ": " + e.err.Error() }
func (e *actionError) Unwrap() error { return e.err }

// requestError gives a failed request a fixed message when the server did
// not say what went wrong.
type requestError struct {
	err error
	msg string
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// withFallback wraps err with msg if it is an API error without a detail.
func withFallback(err error, msg string) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail == "" {
		return &requestError{err: err, msg: msg}
	}
	return err
}

// ErrorText is the user-facing text of a failed request: the server's
// detail (or raw body) for API errors, the error itself otherwise.
func ErrorText(err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.msg
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}

// AlertText is what a blocking alert should say for err.
func AlertText(err error) string {
	var actErr *actionError
	if errors.As(err, &actErr) {
		switch actErr.action {
		case ActionClearChat:
			return "No active chat to clear."
		case ActionDeleteChat:
			return "No active chat to delete."
		case ActionDeleteCharacter:
			return "No character selected."
		}
	}
	switch {
	case errors.Is(err, ErrNameRequired):
		return "Please enter a character name"
	case errors.Is(err, ErrNoCharacter):
		return "Select or create a character first."
	case errors.Is(err, ErrNoSession):
		return "There is no active chat yet. Send a message first."
	}
	return "Error: " + ErrorText(err)
}
