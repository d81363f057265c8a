// Package themes holds the color schemes of the kantoor TUI.
package themes

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	// Canvas styles.
	PageFill         lipgloss.Style
	OCRBox           lipgloss.Style
	LowConfidenceBox lipgloss.Style
	Correction       lipgloss.Style
	ActiveCorrection lipgloss.Style
	Selection        lipgloss.Style
	Primary          lipgloss.Color
	Muted            lipgloss.Color
	Border           lipgloss.Color
	Success          lipgloss.Color
	Warning          lipgloss.Color
	Error            lipgloss.Color
}

type palette struct {
	primary    string
	foreground string
	subtle     string
	muted      string
	border     string
	selectedFg string
	highlight  string
	success    string
	warning    string
	errorColor string
	info       string
}

func build(p palette) Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Primary: c(p.primary),
		Muted:   c(p.muted),
		Border:  c(p.border),
		Success: c(p.success),
		Warning: c(p.warning),
		Error:   c(p.errorColor),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(p.primary)).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(c(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(c(p.foreground)),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(p.foreground)),
		Selected: lipgloss.NewStyle().
			Background(c(p.primary)).
			Foreground(c(p.selectedFg)).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(c(p.highlight)).
			Foreground(c(p.foreground)),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(p.border)).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(c(p.success)).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(c(p.warning)).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(c(p.errorColor)).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(c(p.info)).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(c(p.muted)).
			Italic(true),

		PageFill: lipgloss.NewStyle().
			Foreground(c(p.border)),
		OCRBox: lipgloss.NewStyle().
			Foreground(c(p.info)),
		LowConfidenceBox: lipgloss.NewStyle().
			Foreground(c(p.warning)),
		Correction: lipgloss.NewStyle().
			Foreground(c(p.success)),
		ActiveCorrection: lipgloss.NewStyle().
			Foreground(c(p.success)).
			Bold(true),
		Selection: lipgloss.NewStyle().
			Foreground(c(p.primary)).
			Bold(true),
	}
}

// Default is the dark theme.
var Default = build(palette{
	primary:    "#3b82f6",
	foreground: "#fafafa",
	subtle:     "#a3a3a3",
	muted:      "#737373",
	border:     "#404040",
	selectedFg: "#fafafa",
	highlight:  "#262626",
	success:    "#10b981",
	warning:    "#f59e0b",
	errorColor: "#ef4444",
	info:       "#60a5fa",
})

// Light suits terminals with a light background.
var Light = build(palette{
	primary:    "#1d4ed8",
	foreground: "#171717",
	subtle:     "#525252",
	muted:      "#737373",
	border:     "#d4d4d4",
	selectedFg: "#ffffff",
	highlight:  "#e5e5e5",
	success:    "#047857",
	warning:    "#b45309",
	errorColor: "#b91c1c",
	info:       "#2563eb",
})

var registry = map[string]Theme{
	"default": Default,
	"dark":    Default,
	"light":   Light,
}

// ByName looks a theme up case-insensitively.
func ByName(name string) (Theme, bool) {
	t, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names lists the registered theme names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
