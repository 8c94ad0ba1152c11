package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/cmd"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
	"github.com/tinkerfai/tinkerfai/cli/tui/puzzle"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
	proj "github.com/tinkerfai/tinkerfai/engine/project"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

// Lister loads the caller's projects.
type Lister interface {
	ListProjects(ctx context.Context) ([]proj.Project, error)
}

type action int

const (
	actionNone action = iota
	actionOpen
	actionCreate
	actionDelete
)

const headerRows = 8

type projectsLoadedMsg struct {
	projects []proj.Project
	err      error
}

// dashboardModel shows the project table. Opening, creating or deleting a
// project quits the program with the chosen action so forms and the puzzle
// view can take over the terminal.
type dashboardModel struct {
	models.BaseModel
	lister  Lister
	table   components.ProjectTable
	spinner spinner.Model
	loading bool
	flash   string
	action  action
	target  proj.Project
}

func newDashboard(ctx context.Context, lister Lister, flash string) *dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.InfoStyle
	return &dashboardModel{
		BaseModel: models.NewBaseModel(ctx),
		lister:    lister,
		table:     components.NewProjectTable(nil),
		spinner:   s,
		loading:   true,
		flash:     flash,
	}
}

func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m *dashboardModel) loadCmd() tea.Cmd {
	ctx, lister := m.Context(), m.lister
	return func() tea.Msg {
		projects, err := lister.ListProjects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := m.BaseModel.Update(msg); cmd != nil {
		return m, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetSize(msg.Width, max(5, msg.Height-headerRows))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case projectsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrSessionExpired) || errors.Is(msg.err, api.ErrNotAuthenticated) {
				m.SetError(msg.err)
				return m, m.Quit()
			}
			m.flash = msg.err.Error()
			return m, nil
		}
		m.table.SetProjects(msg.projects)
		return m, nil
	case components.ProjectRefreshMsg:
		m.loading = true
		m.flash = ""
		return m, m.loadCmd()
	case components.ProjectCreateMsg:
		return m.choose(actionCreate, proj.Project{})
	case components.ProjectDeleteMsg:
		return m.choose(actionDelete, msg.Project)
	case components.ProjectSelectedMsg:
		return m.choose(actionOpen, msg.Project)
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "esc" {
			return m, m.Quit()
		}
		if m.loading {
			return m, nil
		}
	}
	return m, m.table.Update(msg)
}

func (m *dashboardModel) choose(a action, p proj.Project) (tea.Model, tea.Cmd) {
	m.action, m.target = a, p
	return m, m.Quit()
}

func (m *dashboardModel) View() string {
	if m.IsQuitting() {
		return ""
	}
	width, _ := m.Size()
	body := m.table.View()
	if m.loading {
		body = m.spinner.View() + " Loading projects..."
	}
	parts := []string{
		components.RenderASCIIHeader(width),
		styles.TitleStyle.Render("Your projects"),
		body,
	}
	if m.flash != "" {
		parts = append(parts, styles.WarningStyle.Render(m.flash))
	}
	parts = append(parts, styles.HelpStyle.Render("q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// dashboardTUI runs the dashboard until the user quits, handling each chosen
// action between runs.
func dashboardTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	outputDir, _ := cobraCmd.Flags().GetString("output-dir")
	flash := ""
	for {
		final, err := tea.NewProgram(
			newDashboard(ctx, executor.Client(), flash),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		).Run()
		if err != nil {
			return fmt.Errorf("failed to run dashboard: %w", err)
		}
		dm, ok := final.(*dashboardModel)
		if !ok {
			return nil
		}
		if dm.Error() != nil {
			return dm.Error()
		}
		flash = ""
		switch dm.action {
		case actionNone:
			return nil
		case actionCreate:
			flash, err = dashboardCreate(ctx, executor)
		case actionDelete:
			flash, err = dashboardDelete(ctx, executor, dm.target)
		case actionOpen:
			err = dashboardOpen(ctx, executor, dm.target, outputDir)
		}
		switch {
		case err == nil:
		case errors.Is(err, api.ErrSessionExpired), errors.Is(err, api.ErrNotAuthenticated):
			return err
		case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Debug("Dashboard action failed", "error", err)
			flash = err.Error()
		}
	}
}

func dashboardCreate(ctx context.Context, executor *cmd.CommandExecutor) (string, error) {
	var req proj.CreateRequest
	if err := createForm(ctx, &req); err != nil {
		return "", err
	}
	p, err := executor.Client().CreateProject(ctx, req)
	if err != nil {
		return "", err
	}
	return "Created " + p.ProjectName, nil
}

func dashboardDelete(ctx context.Context, executor *cmd.CommandExecutor, p proj.Project) (string, error) {
	ok, err := confirmDelete(ctx, p.ProjectName)
	if err != nil || !ok {
		return "", err
	}
	msg, err := executor.Client().DeleteProject(ctx, p.ProjectID)
	if err != nil {
		return "", err
	}
	if msg == "" {
		msg = "Deleted " + p.ProjectName
	}
	return msg, nil
}

func dashboardOpen(ctx context.Context, executor *cmd.CommandExecutor, p proj.Project, outputDir string) error {
	owned, err := executor.ResolveProject(ctx, p.ProjectID)
	if err != nil {
		return err
	}
	return puzzle.Run(ctx, executor.Client(), executor.Session(), *owned, puzzle.Options{OutputDir: outputDir})
}
