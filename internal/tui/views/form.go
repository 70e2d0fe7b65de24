package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/tui"
)

// Form field order.
const (
	fieldName = iota
	fieldPersonality
	fieldBackstory
	fieldTalkingStyle
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Personality", "Backstory", "Talking style"}

var labelStyle = lipgloss.NewStyle().Width(16)

// ============================================================================
// FormModel
// ============================================================================

// FormModel is the create-character form.
type FormModel struct {
	inputs [fieldCount]textinput.Model
	cursor int
	width  int
}

// NewFormModel creates an empty form.
func NewFormModel(width int) FormModel {
	var m FormModel
	placeholders := [fieldCount]string{
		"Character name (required)",
		"e.g. cheerful, sarcastic, shy",
		"Where they come from",
		"e.g. speaks in short sentences",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 1000
		ti.Prompt = ""
		m.inputs[i] = ti
	}
	m.SetWidth(width)
	return m
}

// Focus puts the cursor on the current field.
func (m *FormModel) Focus() tea.Cmd {
	return m.inputs[m.cursor].Focus()
}

// Blur removes the cursor from every field.
func (m *FormModel) Blur() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// Input returns the form contents as a create payload.
func (m FormModel) Input() api.CharacterInput {
	return api.CharacterInput{
		Name:         m.inputs[fieldName].Value(),
		Personality:  m.inputs[fieldPersonality].Value(),
		Backstory:    m.inputs[fieldBackstory].Value(),
		TalkingStyle: m.inputs[fieldTalkingStyle].Value(),
	}
}

// Reset clears every field and returns the cursor to the name. The form is
// left blurred; callers refocus it if it still has focus.
func (m *FormModel) Reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.cursor = fieldName
}

// OnLastField reports whether the cursor is on the final field, where Enter
// submits the form.
func (m FormModel) OnLastField() bool {
	return m.cursor == fieldCount-1
}

// SetWidth resizes the inputs.
func (m *FormModel) SetWidth(width int) {
	m.width = width
	for i := range m.inputs {
		m.inputs[i].Width = width - 20
	}
}

// Update moves between fields on up/down/enter and edits the current one.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "up", "shift+tab":
			return m, m.move(-1)
		case "down", tui.KeyEnter:
			return m, m.move(1)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.cursor], cmd = m.inputs[m.cursor].Update(msg)
	return m, cmd
}

func (m *FormModel) move(delta int) tea.Cmd {
	next := m.cursor + delta
	if next < 0 || next >= fieldCount {
		return nil
	}
	m.inputs[m.cursor].Blur()
	m.cursor = next
	return m.inputs[m.cursor].Focus()
}

// View renders the form.
func (m FormModel) View(focused bool) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Create character"))
	b.WriteString("\n")
	for i, in := range m.inputs {
		label := fieldLabels[i] + ":"
		if focused && i == m.cursor {
			label = tui.TitleStyle.Render(label)
		} else {
			label = tui.DimStyle.Render(label)
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString(tui.DimStyle.Render(tui.DefaultKeyMap.CreateCharacter.Help().Key + ": create"))

	box := tui.BoxStyle
	if focused {
		box = tui.FocusedBoxStyle
	}
	return box.Width(m.width).Render(b.String())
}
