package tui

import (
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/config"
)

// Focus is the pane that receives key presses.
type Focus int

const (
	FocusCharacters Focus = iota
	FocusChat
	FocusForm
)

// Next returns the pane after f in tab order.
func (f Focus) Next() Focus {
	return (f + 1) % 3
}

// Model holds the state shared across views.
type Model struct {
	Cfg  *config.Config
	Ctrl *chat.Controller

	// Snap is the controller state as of the last refresh; views render from it.
	Snap chat.Snapshot

	Focus Focus

	// Pending counts API calls in flight. The spinner runs while it is positive.
	Pending int
	Spinner spinner.Model

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a new Model around ctrl.
func NewModel(cfg *config.Config, ctrl *chat.Controller) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = TitleStyle

	return &Model{
		Cfg:     cfg,
		Ctrl:    ctrl,
		Snap:    ctrl.Snapshot(),
		Focus:   FocusChat,
		Spinner: sp,

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  100,
		Height: 30,
	}
}

// Refresh re-reads the controller state.
func (m *Model) Refresh() {
	m.Snap = m.Ctrl.Snapshot()
}
