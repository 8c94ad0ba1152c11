package components

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
)

// ErrFormCanceled is returned by RunForm when the user aborts.
var ErrFormCanceled = errors.New("form canceled")

// FormWrapper wraps a Huh form with BaseModel integration
type FormWrapper struct {
	models.BaseModel
	form      *huh.Form
	completed bool
}

// NewFormWrapper creates a new form wrapper
func NewFormWrapper(ctx context.Context, form *huh.Form) *FormWrapper {
	return &FormWrapper{
		BaseModel: models.NewBaseModel(ctx),
		form:      form,
	}
}

func (f *FormWrapper) Init() tea.Cmd {
	return f.form.Init()
}

func (f *FormWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		return f, f.Quit()
	}
	f.BaseModel.Update(msg)
	form, cmd := f.form.Update(msg)
	if frm, ok := form.(*huh.Form); ok {
		f.form = frm
		switch f.form.State {
		case huh.StateCompleted:
			f.completed = true
			return f, f.Quit()
		case huh.StateAborted:
			return f, f.Quit()
		}
	}
	return f, cmd
}

func (f *FormWrapper) View() string {
	if f.IsQuitting() {
		return ""
	}
	return f.form.View()
}

func (f *FormWrapper) IsCompleted() bool {
	return f.completed
}

// RunForm runs form as a program and reports cancellation as ErrFormCanceled.
func RunForm(ctx context.Context, form *huh.Form) error {
	wrapper := NewFormWrapper(ctx, form)
	final, err := tea.NewProgram(wrapper, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("failed to run form: %w", err)
	}
	if w, ok := final.(*FormWrapper); ok && w.IsCompleted() {
		return nil
	}
	return ErrFormCanceled
}
