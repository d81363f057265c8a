// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// PrimaryColor is the kantoor accent, shared with the default TUI theme.
var PrimaryColor = lipgloss.Color("#3B82F6")

var (
	successColor = lipgloss.Color("#22C55E")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	infoColor    = lipgloss.Color("#60A5FA")
	subtleColor  = lipgloss.Color("#6B7280")
	borderColor  = lipgloss.Color("#333")
)

// Text styles used by the commands.
var (
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	SubtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor)

	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).PaddingRight(2)
	TableCellStyle   = lipgloss.NewStyle().PaddingRight(2)

	// CalendarDayStyle is one day cell of the leave calendar.
	CalendarDayStyle = lipgloss.NewStyle().
				Width(12).
				Height(3).
				Border(lipgloss.NormalBorder()).
				BorderForeground(borderColor)
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
)

// OfficeIcon prefixes titles and the root command description.
const OfficeIcon = "🗂️"

// Message kinds and their icons.
const (
	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "⚠️"
	infoIcon    = "ℹ️"
)

func message(color lipgloss.Color, icon, text string) string {
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + text)
}

// FormatSuccess renders a confirmation line.
func FormatSuccess(text string) string { return message(successColor, successIcon, text) }

// FormatError renders an error line.
func FormatError(text string) string { return message(errorColor, errorIcon, text) }

// FormatWarning renders a warning line.
func FormatWarning(text string) string { return message(warningColor, warningIcon, text) }

// FormatInfo renders an informational line.
func FormatInfo(text string) string { return message(infoColor, infoIcon, text) }

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return titleStyle.Render(OfficeIcon + " " + title)
}

// FormatPrompt renders a question waiting for input.
func FormatPrompt(prompt string) string {
	return BoldStyle.Foreground(PrimaryColor).Render(prompt + " → ")
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.UnsetMargins().Render(title),
		content,
	))
}
