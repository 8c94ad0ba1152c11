package puzzle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/atotto/clipboard"
	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/project"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/engine/workflow"
)

// Options configures side effects of the walkthrough.
type Options struct {
	// Fs is used to read uploads and to save generated code.
	Fs afero.Fs
	// OutputDir receives saved code files.
	OutputDir string
	// Clipboard copies text. It defaults to the system clipboard.
	Clipboard func(string) error
	// RenderCode renders generated code for a terminal of the given width.
	RenderCode func(code string, width int) (string, error)
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Clipboard == nil {
		o.Clipboard = clipboard.WriteAll
	}
	if o.RenderCode == nil {
		o.RenderCode = RenderCode
	}
	return o
}

type (
	loadedMsg    struct{ err error }
	submittedMsg struct {
		tr  progress.Transition
		err error
	}
	uploadedMsg struct{ err error }
	refreshMsg  struct{}
	flashMsg    string
)

// Model is the interactive walkthrough of one project.
type Model struct {
	models.BaseModel
	wf      *workflow.Workflow
	project project.Project
	opts    Options

	spinner    spinner.Model
	bar        bprogress.Model
	text       textarea.Model
	path       textinput.Model
	params     []textinput.Model
	paramFocus int

	taskCursor   int
	optionCursor int
	busy         bool
	flash        string

	codeKey    string
	codeRender string
}

func New(ctx context.Context, wf *workflow.Workflow, p project.Project, opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.InfoStyle
	text := textarea.New()
	text.Placeholder = "Type your answer..."
	text.ShowLineNumbers = false
	path := textinput.New()
	path.Placeholder = "path/to/dataset.csv"
	path.Prompt = "File: "
	return &Model{
		BaseModel: models.NewBaseModel(ctx),
		wf:        wf,
		project:   p,
		opts:      opts.withDefaults(),
		spinner:   s,
		bar:       bprogress.New(bprogress.WithDefaultGradient()),
		text:      text,
		path:      path,
	}
}

// Run shows the walkthrough until the user quits.
func Run(ctx context.Context, backend workflow.Backend, sess *session.Session, p project.Project, opts Options) error {
	var program atomic.Pointer[tea.Program]
	wf := workflow.New(backend, sess, p.ProjectID, workflow.WithOnChange(func() {
		if prog := program.Load(); prog != nil {
			go prog.Send(refreshMsg{})
		}
	}))
	m := New(ctx, wf, p, opts)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(prog)
	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm.Error() != nil {
		return fm.Error()
	}
	return nil
}

func (m *Model) Workflow() *workflow.Workflow { return m.wf }

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := m.BaseModel.Update(msg); cmd != nil {
		return m, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case bprogress.FrameMsg:
		model, cmd := m.bar.Update(msg)
		if bar, ok := model.(bprogress.Model); ok {
			m.bar = bar
		}
		return m, cmd
	case loadedMsg:
		if cmd := m.leaveForSignIn(msg.err); cmd != nil {
			return m, cmd
		}
		if msg.err == nil {
			m.syncInputs()
		}
	case submittedMsg:
		return m, m.handleSubmitted(msg)
	case uploadedMsg:
		m.busy = false
		if cmd := m.leaveForSignIn(msg.err); cmd != nil {
			return m, cmd
		}
		switch {
		case msg.err == nil:
			m.path.SetValue("")
			m.flash = "File uploaded"
		case !errors.Is(msg.err, workflow.ErrStale):
			m.flash = msg.err.Error()
		}
	case flashMsg:
		m.flash = string(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resize() {
	width, _ := m.Size()
	m.text.SetWidth(max(20, width-6))
	m.text.SetHeight(5)
	m.path.Width = max(20, width-12)
	m.bar.Width = max(20, min(60, width-10))
}

// leaveForSignIn quits the view with err when the session is gone, so the
// caller can send the user back to sign-in.
func (m *Model) leaveForSignIn(err error) tea.Cmd {
	if !errors.Is(err, api.ErrSessionExpired) && !errors.Is(err, api.ErrNotAuthenticated) {
		return nil
	}
	m.SetError(err)
	return m.Quit()
}

func (m *Model) handleSubmitted(msg submittedMsg) tea.Cmd {
	m.busy = false
	if cmd := m.leaveForSignIn(msg.err); cmd != nil {
		return cmd
	}
	if msg.err != nil {
		if !errors.Is(msg.err, workflow.ErrStale) {
			m.flash = msg.err.Error()
		}
		return nil
	}
	switch msg.tr.Outcome {
	case progress.OutcomeTaskCompleted:
		m.flash = fmt.Sprintf("Task %d completed", msg.tr.Task+1)
		m.taskCursor = min(m.wf.Machine().Unlocked(), progress.TaskCount-1)
		return nil
	case progress.OutcomeAdvanced:
		m.flash = "Answer saved"
		return m.loadCmd()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

func (m *Model) loadCmd() tea.Cmd {
	ctx, wf := m.Context(), m.wf
	return func() tea.Msg {
		_, err := wf.LoadQuestion(ctx)
		return loadedMsg{err: err}
	}
}

func (m *Model) retryCmd() tea.Cmd {
	ctx, wf := m.Context(), m.wf
	return func() tea.Msg {
		_, err := wf.Retry(ctx)
		return loadedMsg{err: err}
	}
}

func (m *Model) submitCmd() tea.Cmd {
	if !m.wf.CanSubmit() {
		m.flash = "Answer is missing or invalid"
		return nil
	}
	m.busy = true
	m.flash = ""
	ctx, wf := m.Context(), m.wf
	return func() tea.Msg {
		tr, err := wf.Submit(ctx)
		return submittedMsg{tr: tr, err: err}
	}
}
