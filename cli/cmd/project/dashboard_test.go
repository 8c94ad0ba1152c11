package project

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/tui/components"
	proj "github.com/tinkerfai/tinkerfai/engine/project"
)

type fakeLister struct {
	projects []proj.Project
	err      error
}

func (f *fakeLister) ListProjects(context.Context) ([]proj.Project, error) {
	return f.projects, f.err
}

func load(t *testing.T, m *dashboardModel) {
	t.Helper()
	msg := m.loadCmd()()
	_, _ = m.Update(msg)
}

func press(m *dashboardModel, msg tea.KeyMsg) {
	_, cmd := m.Update(msg)
	for cmd != nil {
		next := cmd()
		if next == nil {
			return
		}
		if _, isQuit := next.(tea.QuitMsg); isQuit {
			return
		}
		_, cmd = m.Update(next)
	}
}

func TestDashboard(t *testing.T) {
	projects := []proj.Project{
		{ProjectID: "old", ProjectName: "Old", ProjectType: proj.TypeBeginner, CreatedAt: "2024-01-01T00:00:00Z"},
		{ProjectID: "new", ProjectName: "New", ProjectType: proj.TypeExpert, CreatedAt: "2024-06-01T00:00:00Z"},
	}

	t.Run("Should open the newest project on enter", func(t *testing.T) {
		m := newDashboard(context.Background(), &fakeLister{projects: projects}, "")
		_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		load(t, m)
		require.False(t, m.loading)

		press(m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Equal(t, actionOpen, m.action)
		assert.Equal(t, "new", m.target.ProjectID)
		assert.True(t, m.IsQuitting())
	})

	t.Run("Should request creation and deletion through actions", func(t *testing.T) {
		m := newDashboard(context.Background(), &fakeLister{projects: projects}, "")
		load(t, m)
		press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
		assert.Equal(t, actionCreate, m.action)

		m = newDashboard(context.Background(), &fakeLister{projects: projects}, "")
		load(t, m)
		press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
		assert.Equal(t, actionDelete, m.action)
		assert.Equal(t, "new", m.target.ProjectID)
	})

	t.Run("Should show load failures and keep running", func(t *testing.T) {
		m := newDashboard(context.Background(), &fakeLister{err: errors.New("boom")}, "")
		load(t, m)
		assert.Equal(t, "boom", m.flash)
		assert.False(t, m.IsQuitting())
		assert.Contains(t, m.View(), "boom")
	})

	t.Run("Should quit with the error when the session expired", func(t *testing.T) {
		m := newDashboard(context.Background(), &fakeLister{err: &api.SessionExpiredError{}}, "")
		load(t, m)
		assert.True(t, m.IsQuitting())
		assert.ErrorIs(t, m.Error(), api.ErrSessionExpired)
	})

	t.Run("Should reload on refresh", func(t *testing.T) {
		lister := &fakeLister{}
		m := newDashboard(context.Background(), lister, "")
		load(t, m)
		assert.Empty(t, m.table.Projects())
		lister.projects = projects
		_, cmd := m.Update(components.ProjectRefreshMsg{})
		require.NotNil(t, cmd)
		_, _ = m.Update(cmd())
		assert.Len(t, m.table.Projects(), 2)
	})

	t.Run("Should quit without an action on q", func(t *testing.T) {
		m := newDashboard(context.Background(), &fakeLister{projects: projects}, "")
		load(t, m)
		press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		assert.Equal(t, actionNone, m.action)
		assert.True(t, m.IsQuitting())
	})
}
