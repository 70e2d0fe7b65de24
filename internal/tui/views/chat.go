package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/tui"
)

// ============================================================================
// ChatModel
// ============================================================================

// ChatModel is the chat window: a scrolling transcript above a message input.
type ChatModel struct {
	viewport   viewport.Model
	input      textinput.Model
	transcript []chat.Bubble
	speaker    string
	width      int
	height     int
}

// NewChatModel creates an empty chat window of the given outer size.
func NewChatModel(width, height int) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Type your message... (Enter to send)"
	ti.CharLimit = 4000
	ti.Prompt = "> "

	m := ChatModel{
		viewport: viewport.New(20, 5),
		input:    ti,
		speaker:  "Character",
	}
	m.SetSize(width, height)
	return m
}

// Focus gives the message input the cursor.
func (m *ChatModel) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes the cursor from the message input.
func (m *ChatModel) Blur() {
	m.input.Blur()
}

// TakeInput returns the trimmed input and clears the field.
func (m *ChatModel) TakeInput() string {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	return value
}

// SetTranscript re-renders the transcript. speaker labels assistant bubbles.
// The view scrolls to the bottom when the transcript grew.
func (m *ChatModel) SetTranscript(transcript []chat.Bubble, speaker string) {
	grew := len(transcript) != len(m.transcript)
	m.transcript = transcript
	if speaker != "" {
		m.speaker = speaker
	}
	m.viewport.SetContent(formatBubbles(m.transcript, m.speaker, m.viewport.Width))
	if grew {
		m.viewport.GotoBottom()
	}
}

// SetSize fits the window into an outer box of width x height.
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	// Reserve space for: header (2 lines), input (2 lines), border (2 lines)
	vpHeight := height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := width - 4
	if vpWidth < 20 {
		vpWidth = 20
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.input.Width = vpWidth - 3
	m.viewport.SetContent(formatBubbles(m.transcript, m.speaker, vpWidth))
}

// Update handles input editing and transcript scrolling.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "pgup", "pgdown", "up", "down":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the chat window. status is shown next to the title (for
// example a spinner while a reply is pending).
func (m ChatModel) View(focused bool, title, status string) string {
	var b strings.Builder

	header := tui.TitleStyle.Render(title)
	if status != "" {
		header += "  " + status
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if focused {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(tui.DimStyle.Render(m.input.View()))
	}

	box := tui.BoxStyle
	if focused {
		box = tui.FocusedBoxStyle
	}
	return box.Width(m.width).Render(b.String())
}

// formatBubbles renders the transcript for the viewport.
func formatBubbles(bubbles []chat.Bubble, speaker string, width int) string {
	if len(bubbles) == 0 {
		return tui.DimStyle.Render("No messages yet. Start the conversation!")
	}

	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder

	for i, bubble := range bubbles {
		var prefix string
		var style lipgloss.Style

		switch bubble.Role {
		case api.RoleUser:
			prefix = "You: "
			style = tui.UserStyle
		case api.RoleAssistant:
			prefix = speaker + ": "
			style = tui.AssistantStyle
		default:
			prefix = bubble.Role + ": "
			style = tui.DimStyle
		}

		text := bubble.Text
		if bubble.Failed {
			text = tui.ErrorStyle.Render(text)
		}
		b.WriteString(wrap.Render(style.Render(prefix) + text))

		if bubble.Sentiment != "" {
			b.WriteString("\n")
			b.WriteString(tui.SentimentStyle(bubble.Sentiment).Render("  Mood: " + bubble.Sentiment))
		}

		// Add spacing between messages (except after the last one)
		if i < len(bubbles)-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}
