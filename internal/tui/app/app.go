// Package app provides the main TUI application that wires all views together.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/config"
	"github.com/charchat/charchat/internal/tui"
	"github.com/charchat/charchat/internal/tui/commands"
	"github.com/charchat/charchat/internal/tui/views"
)

// Pane widths; the chat window takes the rest.
const (
	charactersWidth = 28
	profileWidth    = 34
	formHeight      = 8
	statusHeight    = 1
)

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model

	// View models
	characters views.CharactersModel
	chatView   views.ChatModel
	form       views.FormModel
	dialog     *views.DialogModel
}

// New creates a new App around ctrl.
func New(cfg *config.Config, ctrl *chat.Controller) *App {
	model := tui.NewModel(cfg, ctrl)
	a := &App{
		model:      model,
		characters: views.NewCharactersModel(charactersWidth, 10),
		chatView:   views.NewChatModel(40, 10),
		form:       views.NewFormModel(80),
	}
	a.resize(model.Width, model.Height)
	return a
}

// Init focuses the message input and loads the character list.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.chatView.Focus(), a.start(commands.LoadCharactersCmd(a.model.Ctrl)))
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				return a, tea.Quit
			}
			// First press - set pending and start timeout
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(t time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}
		if a.dialog != nil {
			done, cmd := a.dialog.Update(msg)
			if done {
				a.dialog = nil
			}
			return a, cmd
		}
		return a.handleKey(msg)

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case spinner.TickMsg:
		if a.model.Pending == 0 {
			return a, nil
		}
		// Refresh while requests are in flight so optimistic bubbles show up.
		a.refresh()
		var cmd tea.Cmd
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		return a, cmd

	case tui.CharactersLoadedMsg:
		a.finish()
		cmd := a.syncCharacters()
		if msg.Err != nil {
			a.alert(chat.AlertText(msg.Err))
		}
		return a, cmd

	case tui.CharacterSelectedMsg:
		a.finish()
		return a, nil

	case tui.CharacterCreatedMsg:
		a.finish()
		cmd := a.syncCharacters()
		if msg.Err != nil {
			a.alert(chat.AlertText(msg.Err))
		}
		// Keep the form contents unless the character was not created.
		if msg.Character == nil {
			return a, cmd
		}
		a.form.Reset()
		if a.model.Focus == tui.FocusForm {
			cmd = tea.Batch(cmd, a.form.Focus())
		}
		return a, cmd

	case tui.MessageSentMsg:
		a.finish()
		// Request failures are already in the transcript.
		if msg.Err != nil && chat.IsValidation(msg.Err) {
			a.alert(chat.AlertText(msg.Err))
		}
		return a, nil

	case tui.ConfirmResultMsg:
		if !msg.Confirmed {
			return a, nil
		}
		return a, a.start(commands.RunActionCmd(a.model.Ctrl, msg.Action))

	case tui.ActionDoneMsg:
		a.finish()
		cmd := a.syncCharacters()
		if msg.Err != nil {
			a.alert(chat.AlertText(msg.Err))
		}
		return a, cmd

	case tui.AlertClosedMsg:
		return a, nil
	}

	// Anything else (cursor blink and the like) goes to the focused pane.
	return a, a.forward(msg)
}

// handleKey routes a key press when no dialog is open.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := tui.DefaultKeyMap
	vis := a.model.Snap.Visibility

	if a.model.Focus == tui.FocusCharacters && a.characters.Filtering() {
		return a, a.forward(msg)
	}

	switch {
	case key.Matches(msg, keys.Tab):
		return a, a.setFocus(a.model.Focus.Next())

	case key.Matches(msg, keys.ClearChat):
		return a, a.requestAction(chat.ActionClearChat, vis.ClearChat)

	case key.Matches(msg, keys.DeleteChat):
		return a, a.requestAction(chat.ActionDeleteChat, vis.DeleteChat)

	case key.Matches(msg, keys.DeleteCharacter):
		return a, a.requestAction(chat.ActionDeleteCharacter, vis.DeleteCharacter)

	case key.Matches(msg, keys.Refresh):
		return a, a.start(commands.LoadCharactersCmd(a.model.Ctrl))

	case key.Matches(msg, keys.CreateCharacter):
		return a, a.submitForm()
	}

	if key.Matches(msg, keys.Enter) {
		switch a.model.Focus {
		case tui.FocusCharacters:
			if char, ok := a.characters.Selected(); ok {
				return a, a.start(commands.SelectCharacterCmd(a.model.Ctrl, char))
			}
			return a, nil
		case tui.FocusChat:
			return a, a.send()
		case tui.FocusForm:
			if a.form.OnLastField() {
				return a, a.submitForm()
			}
		}
	}

	return a, a.forward(msg)
}

// send submits the message input.
func (a *App) send() tea.Cmd {
	if a.model.Snap.Character == nil {
		a.alert(chat.AlertText(chat.ErrNoCharacter))
		return nil
	}
	text := a.chatView.TakeInput()
	if text == "" {
		return nil
	}
	return a.start(commands.SendMessageCmd(a.model.Ctrl, text))
}

func (a *App) submitForm() tea.Cmd {
	in := a.form.Input()
	if strings.TrimSpace(in.Name) == "" {
		a.alert(chat.AlertText(chat.ErrNameRequired))
		return nil
	}
	return a.start(commands.CreateCharacterCmd(a.model.Ctrl, in))
}

// requestAction asks for confirmation of a destructive action. Hidden
// actions ignore their key.
func (a *App) requestAction(action chat.Action, visible bool) tea.Cmd {
	if !visible {
		return nil
	}
	if err := a.model.Ctrl.Check(action); err != nil {
		a.alert(chat.AlertText(err))
		return nil
	}
	d := views.NewConfirm(action, a.model.Ctrl.ConfirmPrompt(action), a.model.Width/2)
	a.dialog = &d
	return nil
}

func (a *App) alert(text string) {
	d := views.NewAlert(text, a.model.Width/2)
	a.dialog = &d
}

// start runs cmd as an API call, starting the spinner if it was idle.
func (a *App) start(cmd tea.Cmd) tea.Cmd {
	a.model.Pending++
	if a.model.Pending == 1 {
		return tea.Batch(cmd, a.model.Spinner.Tick)
	}
	return cmd
}

// finish records a completed API call and re-renders from the controller.
func (a *App) finish() {
	if a.model.Pending > 0 {
		a.model.Pending--
	}
	a.refresh()
}

func (a *App) refresh() {
	a.model.Refresh()
	speaker := ""
	if a.model.Snap.Character != nil {
		speaker = a.model.Snap.Character.Name
	}
	a.chatView.SetTranscript(a.model.Snap.Transcript, speaker)
}

func (a *App) syncCharacters() tea.Cmd {
	activeID := 0
	if a.model.Snap.Character != nil {
		activeID = a.model.Snap.Character.ID
	}
	return a.characters.SetCharacters(a.model.Snap.Characters, activeID)
}

func (a *App) setFocus(f tui.Focus) tea.Cmd {
	a.chatView.Blur()
	a.form.Blur()
	a.model.Focus = f

	switch f {
	case tui.FocusChat:
		return a.chatView.Focus()
	case tui.FocusForm:
		return a.form.Focus()
	}
	return nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.model.Focus {
	case tui.FocusCharacters:
		a.characters, cmd = a.characters.Update(msg)
	case tui.FocusChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case tui.FocusForm:
		a.form, cmd = a.form.Update(msg)
	}
	return cmd
}

func (a *App) resize(width, height int) {
	a.model.Width = width
	a.model.Height = height

	topHeight := height - formHeight - statusHeight - 2
	if topHeight < 8 {
		topHeight = 8
	}
	// Each bordered box adds two columns.
	chatWidth := width - charactersWidth - profileWidth - 6
	if chatWidth < 24 {
		chatWidth = 24
	}

	a.characters.SetSize(charactersWidth, topHeight)
	a.chatView.SetSize(chatWidth, topHeight)
	a.form.SetWidth(width - 2)
}

// View renders the current application state.
func (a *App) View() string {
	if a.dialog != nil {
		return lipgloss.Place(
			a.model.Width,
			a.model.Height,
			lipgloss.Center,
			lipgloss.Center,
			a.dialog.View(),
		)
	}

	snap := a.model.Snap
	focus := a.model.Focus

	title := "Chat"
	if snap.Character != nil {
		title = "Chat with " + snap.Character.Name
	}
	status := ""
	if a.model.Pending > 0 {
		status = a.model.Spinner.View() + " working..."
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		a.characters.View(focus == tui.FocusCharacters),
		a.chatView.View(focus == tui.FocusChat, title, status),
		views.RenderProfile(snap, profileWidth),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		a.form.View(focus == tui.FocusForm),
		a.renderStatusBar(),
	)
}

func (a *App) renderStatusBar() string {
	if a.model.CtrlCPending {
		return tui.StatusBarStyle.Render("Press Ctrl+C again to exit")
	}
	parts := []string{"tab: switch pane", "ctrl+r: reload", "ctrl+s: create"}
	if actions := views.RenderActions(a.model.Snap.Visibility); actions != "" {
		parts = append(parts, "actions in profile")
	}
	parts = append(parts, fmt.Sprintf("api: %s", a.model.Cfg.API.BaseURL))
	return tui.StatusBarStyle.Render(strings.Join(parts, " · "))
}
