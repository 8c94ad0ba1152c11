package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/tinkerfai/tinkerfai/cli/tui/styles"
)

// RenderASCIIHeader renders the product name as ASCII art. Narrow terminals get plain text.
func RenderASCIIHeader(width int) string {
	if width > 0 && width < 60 {
		return styles.TitleStyle.Render("TINKERFAI")
	}
	logo := figure.NewFigure("TINKERFAI", "standard", true)
	return lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Align(lipgloss.Left).
		Width(width).
		Render(logo.String())
}
