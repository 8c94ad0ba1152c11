package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	"github.com/tinkerfai/tinkerfai/engine/project"
)

// ProjectTableKeyMap defines key bindings for the project table
type ProjectTableKeyMap struct {
	NextPage key.Binding
	PrevPage key.Binding
	Refresh  key.Binding
	Create   key.Binding
	Delete   key.Binding
	Select   key.Binding
}

func DefaultProjectTableKeyMap() ProjectTableKeyMap {
	return ProjectTableKeyMap{
		NextPage: newBinding([]string{"right", "l"}, "next page", "→"),
		PrevPage: newBinding([]string{"left", "h"}, "prev page", "←"),
		Refresh:  newBinding([]string{"r"}, "refresh", "r"),
		Create:   newBinding([]string{"n"}, "new project", "n"),
		Delete:   newBinding([]string{"d"}, "delete", "d"),
		Select:   newBinding([]string{"enter"}, "open", "enter"),
	}
}

func newBinding(keys []string, help, display string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(display, help))
}

// ProjectTable lists the caller's projects newest first, one page at a time.
type ProjectTable struct {
	table        table.Model
	projects     []project.Project
	width        int
	height       int
	currentPage  int
	itemsPerPage int
	keyMap       ProjectTableKeyMap
}

func NewProjectTable(projects []project.Project) ProjectTable {
	t := table.New(
		table.WithColumns(projectColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(projectTableStyles())
	pt := ProjectTable{table: t, itemsPerPage: 20, keyMap: DefaultProjectTableKeyMap()}
	pt.SetProjects(projects)
	return pt
}

func projectColumns(width int) []table.Column {
	available := max(40, width-10)
	return []table.Column{
		{Title: "Name", Width: max(12, available/2)},
		{Title: "Track", Width: 10},
		{Title: "Created", Width: max(12, available/4)},
	}
}

func projectTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.Highlight).
		Background(styles.Surface).
		Bold(true)
	return s
}

func (pt *ProjectTable) SetSize(width, height int) {
	pt.width = width
	pt.height = height
	pt.table.SetHeight(max(1, height-4))
	pt.table.SetColumns(projectColumns(width))
}

// SetProjects replaces the rows, keeping newest-first order.
func (pt *ProjectTable) SetProjects(projects []project.Project) {
	pt.projects = append([]project.Project(nil), projects...)
	project.SortNewestFirst(pt.projects)
	pt.updateRows()
}

func (pt *ProjectTable) Projects() []project.Project {
	return pt.projects
}

// Selected returns the project under the cursor, or nil.
func (pt *ProjectTable) Selected() *project.Project {
	i := pt.currentPage*pt.itemsPerPage + pt.table.Cursor()
	if pt.table.Cursor() < 0 || i >= len(pt.projects) {
		return nil
	}
	return &pt.projects[i]
}

// Update handles component updates
func (pt *ProjectTable) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, pt.keyMap.NextPage):
			if pt.currentPage < pt.totalPages()-1 {
				pt.currentPage++
				pt.updateRows()
			}
			return nil
		case key.Matches(keyMsg, pt.keyMap.PrevPage):
			if pt.currentPage > 0 {
				pt.currentPage--
				pt.updateRows()
			}
			return nil
		case key.Matches(keyMsg, pt.keyMap.Refresh):
			return func() tea.Msg { return ProjectRefreshMsg{} }
		case key.Matches(keyMsg, pt.keyMap.Create):
			return func() tea.Msg { return ProjectCreateMsg{} }
		case key.Matches(keyMsg, pt.keyMap.Delete):
			if p := pt.Selected(); p != nil {
				selected := *p
				return func() tea.Msg { return ProjectDeleteMsg{Project: selected} }
			}
			return nil
		case key.Matches(keyMsg, pt.keyMap.Select):
			if p := pt.Selected(); p != nil {
				selected := *p
				return func() tea.Msg { return ProjectSelectedMsg{Project: selected} }
			}
			return nil
		}
	}
	var cmd tea.Cmd
	pt.table, cmd = pt.table.Update(msg)
	return cmd
}

func (pt *ProjectTable) View() string {
	if len(pt.projects) == 0 {
		return styles.PaginationStyle.Render("No projects yet. Press n to create one.")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		pt.table.View(),
		pt.renderPagination(),
		pt.renderHelp(),
	)
}

func (pt *ProjectTable) totalPages() int {
	return max(1, (len(pt.projects)+pt.itemsPerPage-1)/pt.itemsPerPage)
}

func (pt *ProjectTable) renderPagination() string {
	start := pt.currentPage*pt.itemsPerPage + 1
	end := min(start+pt.itemsPerPage-1, len(pt.projects))
	return styles.PaginationStyle.Render(fmt.Sprintf(
		"Page %d of %d • Projects %d-%d of %d",
		pt.currentPage+1, pt.totalPages(), start, end, len(pt.projects),
	))
}

func (pt *ProjectTable) renderHelp() string {
	bindings := []key.Binding{pt.keyMap.Select, pt.keyMap.Create, pt.keyMap.Delete, pt.keyMap.Refresh}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return styles.HelpStyle.Render(strings.Join(parts, " • "))
}

func (pt *ProjectTable) updateRows() {
	if pt.currentPage >= pt.totalPages() {
		pt.currentPage = 0
	}
	start := pt.currentPage * pt.itemsPerPage
	end := min(start+pt.itemsPerPage, len(pt.projects))
	rows := make([]table.Row, 0, end-start)
	for i := start; i < end; i++ {
		p := &pt.projects[i]
		created := p.CreatedAt
		if t := p.Created(); !t.IsZero() {
			created = humanize.Time(t)
		}
		rows = append(rows, table.Row{truncate(p.ProjectName, 48), string(p.ProjectType), created})
	}
	pt.table.SetRows(rows)
	if pt.table.Cursor() >= len(rows) {
		pt.table.SetCursor(max(0, len(rows)-1))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Message types for parent component communication
type (
	ProjectRefreshMsg  struct{}
	ProjectCreateMsg   struct{}
	ProjectDeleteMsg   struct{ Project project.Project }
	ProjectSelectedMsg struct{ Project project.Project }
)
