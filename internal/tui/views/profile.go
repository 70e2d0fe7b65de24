package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/tui"
)

// RenderProfile renders the active character's name and info, the
// remembered facts, and the actions currently available. It is stateless;
// everything comes from the snapshot.
func RenderProfile(snap chat.Snapshot, width int) string {
	var b strings.Builder

	if snap.Character == nil {
		b.WriteString(tui.TitleStyle.Render("No character selected"))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render("Pick one from the list or create a new one."))
	} else {
		b.WriteString(tui.TitleStyle.Render(snap.Character.Name))
		b.WriteString("\n\n")
		info := lipgloss.NewStyle().Width(width - 4).Render(snap.Character.Info())
		b.WriteString(info)
	}

	b.WriteString("\n\n")
	b.WriteString(renderMemoryPanel(snap.Memory))

	if actions := RenderActions(snap.Visibility); actions != "" {
		b.WriteString("\n\n")
		b.WriteString(actions)
	}

	return tui.BoxStyle.Width(width).Render(b.String())
}

// renderMemoryPanel lists facts the server extracted from the conversation.
func renderMemoryPanel(facts []string) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Remembered Facts"))
	b.WriteString("\n")
	if len(facts) == 0 {
		b.WriteString(tui.DimStyle.Render("Nothing yet."))
		return b.String()
	}
	for i, fact := range facts {
		b.WriteString("• " + fact)
		if i < len(facts)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderActions renders one button per visible action, with its key.
// Hidden actions are omitted entirely.
func RenderActions(v chat.Visibility) string {
	var buttons []string
	if v.ClearChat {
		buttons = append(buttons, tui.ButtonStyle.Render(tui.DefaultKeyMap.ClearChat.Help().Key+" clear chat"))
	}
	if v.DeleteChat {
		buttons = append(buttons, tui.DangerButtonStyle.Render(tui.DefaultKeyMap.DeleteChat.Help().Key+" delete chat"))
	}
	if v.DeleteCharacter {
		buttons = append(buttons, tui.DangerButtonStyle.Render(tui.DefaultKeyMap.DeleteCharacter.Help().Key+" delete character"))
	}
	return strings.Join(buttons, " ")
}
