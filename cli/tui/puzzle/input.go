package puzzle

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/question"
	"github.com/tinkerfai/tinkerfai/engine/upload"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+p":
		m.wf.UpdateLayout(func(l *progress.Layout) {
			if l.Progress == progress.MaxPanelHeight {
				l.CollapseProgress()
			} else {
				l.ExpandProgress()
			}
		})
		return nil
	case "ctrl+o":
		m.wf.UpdateLayout(func(l *progress.Layout) {
			if l.Assistant == progress.MaxPanelHeight {
				l.CollapseAssistant()
			} else {
				l.ExpandAssistant()
			}
		})
		return nil
	}

	if _, _, ok := m.wf.Machine().Selected(); !ok {
		return m.handleTaskListKey(msg)
	}
	view := m.wf.View()
	if view.Loading || view.Submitting || m.busy {
		return nil
	}
	if view.Loaded == nil {
		switch msg.String() {
		case "r":
			if view.Retryable {
				return m.retryCmd()
			}
		case "q":
			return m.Quit()
		}
		return nil
	}
	if msg.String() == "ctrl+s" {
		return m.submitCmd()
	}
	return m.handleQuestionKey(view.Loaded.Question.QuestionType, msg)
}

func (m *Model) handleTaskListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return m.Quit()
	case "up", "k", "left", "h":
		m.taskCursor = max(0, m.taskCursor-1)
	case "down", "j", "right", "l":
		m.taskCursor = min(progress.TaskCount-1, m.taskCursor+1)
	case "enter", " ":
		tr := m.wf.SelectTask(m.taskCursor)
		if !tr.Changed() {
			m.flash = fmt.Sprintf("Task %d is locked", m.taskCursor+1)
			return nil
		}
		m.flash = ""
		return m.loadCmd()
	}
	return nil
}

func (m *Model) handleQuestionKey(kind question.Kind, msg tea.KeyMsg) tea.Cmd {
	switch kind {
	case question.KindText:
		return m.handleTextKey(msg)
	case question.KindRadio:
		return m.handleRadioKey(msg)
	case question.KindMultiSelect:
		return m.handleMultiSelectKey(msg)
	case question.KindSlider:
		return m.handleSliderKey(msg)
	case question.KindHyperparameter:
		return m.handleHyperparameterKey(msg)
	case question.KindFile:
		return m.handleFileKey(msg)
	case question.KindReadOnly:
		return m.handleReadOnlyKey(msg)
	}
	return nil
}

func (m *Model) edit(fn func(question.Renderer) error) {
	if err := m.wf.Edit(fn); err != nil {
		m.flash = err.Error()
	}
}

func (m *Model) handleTextKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	value := m.text.Value()
	m.edit(func(r question.Renderer) error {
		if t, ok := r.(*question.Text); ok {
			t.SetText(value)
		}
		return nil
	})
	return cmd
}

func (m *Model) options() []string {
	var opts []string
	m.wf.Inspect(func(r question.Renderer) {
		switch r := r.(type) {
		case *question.Radio:
			opts = r.Options()
		case *question.MultiSelect:
			opts = r.Options()
		}
	})
	return opts
}

func (m *Model) moveOption(msg tea.KeyMsg) bool {
	n := len(m.options())
	switch msg.String() {
	case "up", "k":
		m.optionCursor = max(0, m.optionCursor-1)
	case "down", "j":
		m.optionCursor = max(0, min(n-1, m.optionCursor+1))
	default:
		return false
	}
	return true
}

func (m *Model) handleRadioKey(msg tea.KeyMsg) tea.Cmd {
	if m.moveOption(msg) {
		return nil
	}
	switch msg.String() {
	case " ", "x":
		opts := m.options()
		if m.optionCursor < len(opts) {
			option := opts[m.optionCursor]
			m.edit(func(r question.Renderer) error {
				return r.(*question.Radio).Select(option)
			})
		}
	case "enter":
		return m.submitCmd()
	case "q":
		return m.Quit()
	}
	return nil
}

func (m *Model) handleMultiSelectKey(msg tea.KeyMsg) tea.Cmd {
	if m.moveOption(msg) {
		return nil
	}
	switch msg.String() {
	case " ", "x":
		opts := m.options()
		if m.optionCursor < len(opts) {
			option := opts[m.optionCursor]
			m.edit(func(r question.Renderer) error {
				return r.(*question.MultiSelect).Toggle(option)
			})
		}
	case "a":
		m.edit(func(r question.Renderer) error {
			r.(*question.MultiSelect).SelectAll()
			return nil
		})
	case "enter":
		return m.submitCmd()
	case "q":
		return m.Quit()
	}
	return nil
}

func (m *Model) handleSliderKey(msg tea.KeyMsg) tea.Cmd {
	var delta float64
	switch msg.String() {
	case "left", "h":
		delta = -1
	case "right", "l":
		delta = 1
	case "enter":
		return m.submitCmd()
	case "q":
		return m.Quit()
	default:
		return nil
	}
	m.edit(func(r question.Renderer) error {
		s := r.(*question.Slider)
		step := s.Config().Step
		if step <= 0 {
			step = 1
		}
		s.Set(s.Value() + delta*step)
		return nil
	})
	return nil
}

func (m *Model) handleHyperparameterKey(msg tea.KeyMsg) tea.Cmd {
	if len(m.params) == 0 {
		return nil
	}
	switch msg.String() {
	case "tab", "down", "enter":
		m.focusParam(m.paramFocus + 1)
		return nil
	case "shift+tab", "up":
		m.focusParam(m.paramFocus - 1)
		return nil
	}
	var cmd tea.Cmd
	m.params[m.paramFocus], cmd = m.params[m.paramFocus].Update(msg)
	name, value := m.paramNames()[m.paramFocus], m.params[m.paramFocus].Value()
	m.edit(func(r question.Renderer) error {
		return r.(*question.Hyperparameter).Set(name, value)
	})
	return cmd
}

func (m *Model) paramNames() []string {
	var names []string
	m.wf.Inspect(func(r question.Renderer) {
		if h, ok := r.(*question.Hyperparameter); ok {
			for _, spec := range h.Specs() {
				names = append(names, spec.Name)
			}
		}
	})
	return names
}

func (m *Model) focusParam(i int) {
	if len(m.params) == 0 {
		return
	}
	i = (i%len(m.params) + len(m.params)) % len(m.params)
	m.params[m.paramFocus].Blur()
	m.paramFocus = i
	m.params[i].Focus()
}

func (m *Model) handleFileKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.uploadCmd()
	case "ctrl+x":
		m.edit(func(r question.Renderer) error {
			return r.(*question.File).Remove()
		})
		return nil
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return cmd
}

func (m *Model) uploadCmd() tea.Cmd {
	path := strings.TrimSpace(m.path.Value())
	if path == "" {
		m.flash = "Enter the path of the file to upload"
		return nil
	}
	m.busy = true
	m.flash = ""
	ctx, wf, fs := m.Context(), m.wf, m.opts.Fs
	return func() tea.Msg {
		name, data, err := upload.LoadFile(fs, path)
		if err != nil {
			return uploadedMsg{err: err}
		}
		return uploadedMsg{err: wf.UploadFile(ctx, name, data)}
	}
}

func (m *Model) code() string {
	var code string
	m.wf.Inspect(func(r question.Renderer) {
		if ro, ok := r.(*question.ReadOnly); ok {
			code = ro.Code()
		}
	})
	return code
}

func (m *Model) handleReadOnlyKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "c":
		code := m.code()
		if code == "" {
			return nil
		}
		copyFn := m.opts.Clipboard
		return func() tea.Msg {
			if err := copyFn(code); err != nil {
				return flashMsg("Failed to copy code: " + err.Error())
			}
			return flashMsg("Code copied to clipboard")
		}
	case "s":
		code := m.code()
		if code == "" {
			return nil
		}
		path, err := helpers.SaveCode(m.opts.Fs, m.opts.OutputDir, m.project.ProjectName, code)
		if err != nil {
			m.flash = err.Error()
			return nil
		}
		m.flash = "Code saved to " + path
	case "enter":
		return m.submitCmd()
	case "q":
		return m.Quit()
	}
	return nil
}

// syncInputs loads the mounted renderer's state into the input widgets.
func (m *Model) syncInputs() {
	m.flash = ""
	m.optionCursor = 0
	m.params = nil
	m.paramFocus = 0
	m.text.Reset()
	m.text.Blur()
	m.path.SetValue("")
	m.path.Blur()
	m.wf.Inspect(func(r question.Renderer) {
		switch r := r.(type) {
		case *question.Text:
			m.text.SetValue(r.Value())
			m.text.Focus()
		case *question.Radio:
			if i := slices.Index(r.Options(), r.Selected()); i >= 0 {
				m.optionCursor = i
			}
		case *question.Hyperparameter:
			for _, spec := range r.Specs() {
				in := textinput.New()
				in.Prompt = spec.Name + ": "
				in.Placeholder = string(spec.Type)
				in.SetValue(formatValue(r.Value(spec.Name)))
				m.params = append(m.params, in)
			}
			if len(m.params) > 0 {
				m.params[0].Focus()
			}
		case *question.File:
			m.path.Focus()
		}
	})
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
