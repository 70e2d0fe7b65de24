package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/tui"
)

// DialogModel is a blocking modal: an alert that any key dismisses, or a
// yes/no confirmation for a destructive action.
type DialogModel struct {
	text    string
	confirm bool
	action  chat.Action
	width   int
}

// NewAlert creates an alert dialog.
func NewAlert(text string, width int) DialogModel {
	return DialogModel{text: text, width: width}
}

// NewConfirm creates a confirmation dialog for action.
func NewConfirm(action chat.Action, question string, width int) DialogModel {
	return DialogModel{text: question, confirm: true, action: action, width: width}
}

// IsConfirm reports whether the dialog asks a question.
func (m DialogModel) IsConfirm() bool {
	return m.confirm
}

// Text returns the dialog body.
func (m DialogModel) Text() string {
	return m.text
}

// Update closes the dialog on a key press. done is true once the dialog
// should be removed; cmd carries the result message.
func (m DialogModel) Update(msg tea.Msg) (done bool, cmd tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}

	if !m.confirm {
		return true, func() tea.Msg { return tui.AlertClosedMsg{} }
	}

	switch {
	case key.Matches(k, tui.DefaultKeyMap.Yes):
		return true, confirmResult(m.action, true)
	case key.Matches(k, tui.DefaultKeyMap.No):
		return true, confirmResult(m.action, false)
	}
	return false, nil
}

func confirmResult(action chat.Action, confirmed bool) tea.Cmd {
	return func() tea.Msg {
		return tui.ConfirmResultMsg{Action: action, Confirmed: confirmed}
	}
}

// View renders the dialog box.
func (m DialogModel) View() string {
	var b strings.Builder
	if m.confirm {
		b.WriteString(tui.WarningStyle.Render("Confirm"))
	} else {
		b.WriteString(tui.WarningStyle.Render("Alert"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.text)
	b.WriteString("\n\n")
	if m.confirm {
		b.WriteString(tui.DimStyle.Render("y: yes   n: no"))
	} else {
		b.WriteString(tui.DimStyle.Render("Press any key to close"))
	}

	width := m.width
	if width > 60 {
		width = 60
	}
	return tui.DialogStyle.Width(width).Render(b.String())
}
