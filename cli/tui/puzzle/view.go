package puzzle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/question"
	"github.com/tinkerfai/tinkerfai/engine/workflow"
)

// panelRows converts a panel height percentage into terminal rows.
func panelRows(height, percent int) int {
	if height <= 0 {
		return max(1, percent/5)
	}
	return max(1, height*percent/100)
}

// taskDone reports whether every subtask of t is complete. Task 0 has no
// subtasks and counts as done once the next task is unlocked.
func taskDone(snap progress.Snapshot, t int) bool {
	if progress.SubtaskCount(t) == 0 {
		return snap.UnlockedTask > t
	}
	return !slices.Contains(snap.CompletedSubtasks[t], false)
}

// RenderCode highlights Python code for a terminal of the given width.
func RenderCode(code string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourstyles.DarkStyle),
		glamour.WithWordWrap(max(40, width-4)),
	)
	if err != nil {
		return "", err
	}
	return r.Render("```python\n" + code + "\n```\n")
}

func (m *Model) View() string {
	if m.IsQuitting() {
		return ""
	}
	width, height := m.Size()
	view := m.wf.View()
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		styles.TitleStyle.Render(m.project.ProjectName),
		styles.HelpStyle.Render(fmt.Sprintf("  %s track", m.project.ProjectType)),
	)
	if height >= 40 {
		header = components.RenderASCIIHeader(width) + "\n" + header
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.panel(width, panelRows(height, view.Layout.Progress), m.renderProgress(view)),
		m.renderPlayground(view, width),
		m.panel(width, panelRows(height, view.Layout.Assistant), m.renderAssistant(view)),
	)
}

func (m *Model) panel(width, rows int, content string) string {
	if lines := strings.Split(content, "\n"); len(lines) > rows {
		content = strings.Join(lines[:rows], "\n")
	}
	style := styles.PanelStyle
	if width > 0 {
		style = style.Width(width - 2)
	}
	return style.Render(content)
}

func (m *Model) renderProgress(view workflow.View) string {
	snap := view.Progress
	var b strings.Builder
	for t := range progress.TaskCount {
		cursor := "  "
		if snap.SelectedTask == nil && t == m.taskCursor {
			cursor = "> "
		}
		var icon string
		style := lipgloss.NewStyle()
		switch {
		case snap.SelectedTask != nil && *snap.SelectedTask == t:
			icon, style = "▶", styles.InfoStyle
		case taskDone(snap, t):
			icon, style = "✓", styles.SuccessStyle
		case t > snap.UnlockedTask:
			icon, style = "🔒", styles.LockedStyle
		default:
			icon = "○"
		}
		line := fmt.Sprintf("%s%s Task %d", cursor, icon, t+1)
		if n := progress.SubtaskCount(t); n > 0 {
			marks := make([]string, n)
			for s := range n {
				switch {
				case snap.CompletedSubtasks[t][s]:
					marks[s] = "●"
				case snap.SelectedTask != nil && *snap.SelectedTask == t && snap.CurrentSubtask == s:
					marks[s] = "◉"
				default:
					marks[s] = "○"
				}
			}
			line += "  " + strings.Join(marks, " ")
		}
		b.WriteString(style.Render(line))
		if t < progress.TaskCount-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderPlayground(view workflow.View, width int) string {
	snap := view.Progress
	if snap.SelectedTask == nil {
		title, desc := "Select first task to get started",
			"Choose a puzzle piece from the progress section above to begin your learning journey!"
		if snap.UnlockedTask > 0 {
			title, desc = "Select next task to get started",
				"Choose the next puzzle piece from the progress section above to continue your learning journey!"
		}
		return "\n" + styles.TitleStyle.Render(title) + "\n" + styles.HelpStyle.Render(desc) + "\n"
	}
	heading := styles.InfoStyle.Render(fmt.Sprintf("Task %d", *snap.SelectedTask+1))
	if progress.SubtaskCount(*snap.SelectedTask) > 0 {
		heading += styles.HelpStyle.Render(fmt.Sprintf(" • Subtask %d", snap.CurrentSubtask+1))
	}
	switch {
	case view.Loading:
		return fmt.Sprintf("\n%s\n%s Loading question...\n", heading, m.spinner.View())
	case view.Loaded == nil:
		out := "\n" + heading + "\n"
		if view.Error != "" {
			out += styles.ErrorStyle.Render(view.Error) + "\n"
		}
		if view.Retryable {
			out += styles.HelpStyle.Render("Press r to retry") + "\n"
		}
		return out
	}
	q := view.Loaded.Question
	var b strings.Builder
	b.WriteString("\n" + heading + "\n\n")
	if q.QuestionText != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Width(max(20, width-4)).Render(q.QuestionText))
		if q.IsRequired {
			b.WriteString(styles.ErrorStyle.Render(" *"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderInput(view, width))
	if view.Error != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(view.Error))
	}
	if view.Submitting {
		b.WriteString("\n" + m.spinner.View() + " Submitting...")
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderInput(view workflow.View, width int) string {
	var out string
	m.wf.Inspect(func(r question.Renderer) {
		switch r := r.(type) {
		case *question.Text:
			out = m.text.View()
		case *question.Radio:
			out = m.renderOptions(r.Options(), func(o string) bool { return r.Selected() == o }, "(•)", "( )")
		case *question.MultiSelect:
			out = m.renderOptions(r.Options(), r.IsSelected, "[x]", "[ ]")
			toggle := "select all"
			if r.AllSelected() {
				toggle = "deselect all"
			}
			out += "\n" + styles.HelpStyle.Render("a: "+toggle)
		case *question.Slider:
			out = m.renderSlider(r)
		case *question.Hyperparameter:
			out = m.renderHyperparameters(r)
		case *question.File:
			out = m.renderFile(r)
		case *question.ReadOnly:
			out = m.renderReadOnly(r, width)
		}
	})
	return out
}

func (m *Model) renderOptions(options []string, selected func(string) bool, on, off string) string {
	lines := make([]string, len(options))
	for i, o := range options {
		cursor := "  "
		if i == m.optionCursor {
			cursor = "> "
		}
		mark := off
		if selected(o) {
			mark = on
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, o)
		if i == m.optionCursor {
			line = styles.InfoStyle.Render(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSlider(s *question.Slider) string {
	c := s.Config()
	ratio := 0.0
	if c.Max > c.Min {
		ratio = (s.Value() - c.Min) / (c.Max - c.Min)
	}
	left, right := s.Labels()
	return m.bar.ViewAs(ratio) + "\n" + left + "   " + right + "\n" + styles.HelpStyle.Render("←/→ adjust")
}

func (m *Model) renderHyperparameters(h *question.Hyperparameter) string {
	errs := h.Errors()
	var b strings.Builder
	for i, spec := range h.Specs() {
		if i < len(m.params) {
			b.WriteString(m.params[i].View())
		}
		if spec.Type == question.ParamSelect && len(spec.Options) > 0 {
			b.WriteString(styles.HelpStyle.Render("  (" + strings.Join(spec.Options, " | ") + ")"))
		}
		b.WriteString("\n")
		if spec.Description != "" {
			b.WriteString(styles.HelpStyle.Render("  "+spec.Description) + "\n")
		}
		if msg, ok := errs[spec.Name]; ok {
			b.WriteString(styles.ErrorStyle.Render("  "+msg) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderFile(f *question.File) string {
	var b strings.Builder
	b.WriteString(styles.HelpStyle.Render(f.Hint()) + "\n")
	switch {
	case f.Disabled():
		fmt.Fprintf(&b, "%s %s\n", m.bar.ViewAs(float64(f.Progress())/100), f.Status())
	case f.Uploaded() != nil:
		b.WriteString(styles.SuccessStyle.Render("✓ "+f.Uploaded().Name) + styles.HelpStyle.Render("  ctrl+x remove") + "\n")
		b.WriteString(m.path.View())
	default:
		b.WriteString(m.path.View())
	}
	if f.Error() != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(f.Error()))
	}
	return b.String()
}

func (m *Model) renderReadOnly(r *question.ReadOnly, width int) string {
	if r.IsCode() {
		key := fmt.Sprintf("%d:%s", width, r.Code())
		if key != m.codeKey {
			rendered, err := m.opts.RenderCode(r.Code(), width)
			if err != nil {
				rendered = r.Code()
			}
			m.codeKey, m.codeRender = key, rendered
		}
		return m.codeRender + "\n" + styles.HelpStyle.Render("c copy • s save • enter continue")
	}
	summary := r.Summary()
	if summary == nil {
		return styles.HelpStyle.Render("enter continue")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s rows • %s columns\n\n",
		humanize.Comma(int64(summary.RowCount)), humanize.Comma(int64(summary.ColumnCount)))
	for _, col := range summary.Columns {
		fmt.Fprintf(&b, "  %-24s %-12s %6s unique  %6s missing\n",
			col.Name, col.SemanticType, humanize.Comma(int64(col.UniqueValues)), humanize.Comma(int64(col.MissingCount)))
	}
	b.WriteString("\n" + styles.HelpStyle.Render("enter continue"))
	return b.String()
}

func (m *Model) renderAssistant(view workflow.View) string {
	var lines []string
	if m.flash != "" {
		lines = append(lines, styles.WarningStyle.Render(m.flash))
	}
	help := "↑/↓ choose task • enter start • ctrl+p/ctrl+o resize panels • q quit"
	if view.Progress.SelectedTask != nil {
		help = "ctrl+s submit • ctrl+p/ctrl+o resize panels • ctrl+c quit"
	}
	lines = append(lines, styles.HelpStyle.Render(help))
	return strings.Join(lines, "\n")
}
