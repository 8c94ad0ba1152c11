package styles

import "github.com/charmbracelet/lipgloss"

var (
	Primary   = lipgloss.Color("#7C3AED")
	Highlight = lipgloss.Color("#F8FAFC")
	Surface   = lipgloss.Color("#312E81")
	Border    = lipgloss.Color("#4B5563")
	Muted     = lipgloss.Color("#9CA3AF")
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Danger    = lipgloss.Color("#FF6B6B")
)

var (
	TitleStyle      = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	InfoStyle       = lipgloss.NewStyle().Foreground(Primary)
	HelpStyle       = lipgloss.NewStyle().Foreground(Muted)
	PaginationStyle = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	SuccessStyle    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	WarningStyle    = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle      = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	LockedStyle     = lipgloss.NewStyle().Foreground(Border)
	SelectedStyle   = lipgloss.NewStyle().Foreground(Highlight).Background(Surface).Bold(true)
	PanelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)
)
