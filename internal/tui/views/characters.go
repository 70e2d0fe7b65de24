// Package views provides TUI view components for the charchat application.
package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/tui"
)

// ============================================================================
// CharacterItem
// ============================================================================

// CharacterItem implements list.Item for the character list.
type CharacterItem struct {
	character api.Character
}

// Title returns the character name for list display.
func (i CharacterItem) Title() string {
	return i.character.Name
}

// Description returns the talking style, or the id when there is none.
func (i CharacterItem) Description() string {
	if i.character.TalkingStyle != nil && *i.character.TalkingStyle != "" {
		return *i.character.TalkingStyle
	}
	return fmt.Sprintf("#%d", i.character.ID)
}

// FilterValue returns the value used for filtering.
func (i CharacterItem) FilterValue() string {
	return i.character.Name
}

// ============================================================================
// CharactersModel
// ============================================================================

// CharactersModel is the character list pane.
type CharactersModel struct {
	list   list.Model
	width  int
	height int
}

// NewCharactersModel creates an empty character list.
func NewCharactersModel(width, height int) CharactersModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height)
	l.Title = "Characters"
	l.Styles.Title = tui.TitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return CharactersModel{list: l, width: width, height: height}
}

// SetCharacters replaces the list contents, keeping the cursor on the
// active character when it is still present and inside the list otherwise.
func (m *CharactersModel) SetCharacters(chars []api.Character, activeID int) tea.Cmd {
	items := make([]list.Item, len(chars))
	cursor := -1
	for i, c := range chars {
		items[i] = CharacterItem{character: c}
		if c.ID == activeID {
			cursor = i
		}
	}
	cmd := m.list.SetItems(items)
	if cursor < 0 {
		// The list does not clamp its cursor when it shrinks.
		cursor = min(m.list.Index(), len(items)-1)
	}
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// Selected returns the character under the cursor.
func (m CharactersModel) Selected() (api.Character, bool) {
	item, ok := m.list.SelectedItem().(CharacterItem)
	if !ok {
		return api.Character{}, false
	}
	return item.character, true
}

// Filtering reports whether the user is typing a filter, in which case keys
// such as Enter and Tab belong to the list.
func (m CharactersModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SetSize resizes the list to fit inside a pane of the given size.
func (m *CharactersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// Update forwards navigation and filter keys to the list.
func (m CharactersModel) Update(msg tea.Msg) (CharactersModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, framed according to focus.
func (m CharactersModel) View(focused bool) string {
	box := tui.BoxStyle
	if focused {
		box = tui.FocusedBoxStyle
	}
	content := m.list.View()
	if len(m.list.Items()) == 0 {
		content = tui.TitleStyle.Render("Characters") + "\n\n" +
			tui.DimStyle.Render("No characters yet.\nCreate one below.")
	}
	return box.Width(m.width).Height(m.height).Render(content)
}
