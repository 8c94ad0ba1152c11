package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the output mode for CLI commands
type Mode string

const (
	// ModeTUI represents interactive TUI mode
	ModeTUI Mode = "tui"
	// ModeJSON represents non-interactive JSON output mode
	ModeJSON Mode = "json"
)

// BaseModel holds the state shared by every TUI model: the view context,
// the terminal size and the quit/error flags.
type BaseModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	width    int
	height   int
	quitting bool
	err      error
}

// NewBaseModel derives a view context from ctx. It is cancelled when the model quits,
// so responses for a closed view can be dropped.
func NewBaseModel(ctx context.Context) BaseModel {
	viewCtx, cancel := context.WithCancel(ctx)
	return BaseModel{ctx: viewCtx, cancel: cancel}
}

// Context returns the view context
func (m BaseModel) Context() context.Context {
	return m.ctx
}

// Size returns the terminal size
func (m BaseModel) Size() (width, height int) {
	return m.width, m.height
}

func (m BaseModel) IsQuitting() bool {
	return m.quitting
}

// Error returns any error that occurred
func (m BaseModel) Error() error {
	return m.err
}

func (m *BaseModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *BaseModel) SetError(err error) {
	m.err = err
}

// Quit marks the model as quitting and cancels the view context.
func (m *BaseModel) Quit() tea.Cmd {
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return tea.Quit
}

// Update handles window resizing and ctrl+c for all models.
func (m *BaseModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.Quit()
		}
	}
	return nil
}
