package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme groups the lipgloss styles shared by the text report and the dashboard.
type Theme struct {
	Title     lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	SignalBox lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Border    lipgloss.Style
}

// Styles is the theme used for terminal output.
var Styles = NewTheme(lipgloss.Color("9"), lipgloss.Color("214"), lipgloss.Color("63"))

// NewTheme builds a theme from its three accent colors.
func NewTheme(errColor, warnColor, accent lipgloss.Color) Theme {
	cell := lipgloss.NewStyle().Padding(0, 1)

	return Theme{
		Title:     lipgloss.NewStyle().Bold(true),
		Help:      lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(errColor),
		Warning:   lipgloss.NewStyle().Foreground(warnColor),
		SignalBox: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		Header:    cell.Bold(true),
		Cell:      cell,
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// FormatPriceMove prints current with ▲ or ▼ against previous. A zero
// previous means there is nothing to compare with.
func FormatPriceMove(current, previous float64) string {
	price := fmt.Sprintf("%.4f", current)

	switch {
	case previous == 0 || current == previous:
		return price
	case current > previous:
		return price + " ▲"
	default:
		return price + " ▼"
	}
}
