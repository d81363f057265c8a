package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Correction canvas
	Edit     key.Binding
	Region   key.Binding
	Cancel   key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Save     key.Binding

	// Review queue
	Toggle    key.Binding
	SelectAll key.Binding
	Approve   key.Binding
	Reject    key.Binding
	Notes     key.Binding
	Type      key.Binding
	Delete    key.Binding
	Filter    key.Binding
	Refresh   key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "omhoog"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "omlaag"),
		),

		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter/e", "waarde typen"),
		),
		Region: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "kader tekenen"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "annuleren"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "inzoomen"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "uitzoomen"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "volgende pagina"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "vorige pagina"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "opslaan"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("spatie", "selecteren"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("A", "ctrl+a"),
			key.WithHelp("A", "alles selecteren"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "goedkeuren"),
		),
		Reject: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "afwijzen"),
		),
		Notes: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "notitie"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "factuurtype"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "selectie verwijderen"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R", "ctrl+r"),
			key.WithHelp("R", "verversen"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "afsluiten"),
		),
	}
}

// correctionHelp adapts the key map to the correction screen.
type correctionHelp struct{ k KeyMap }

func (h correctionHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Edit, h.k.Region, h.k.Save, h.k.Help, h.k.Quit}
}

func (h correctionHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Edit, h.k.Region, h.k.Cancel},
		{h.k.ZoomIn, h.k.ZoomOut, h.k.NextPage, h.k.PrevPage},
		{h.k.Save, h.k.Help, h.k.Quit},
	}
}

// reviewHelp adapts the key map to the review screen.
type reviewHelp struct{ k KeyMap }

func (h reviewHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Toggle, h.k.Approve, h.k.Reject, h.k.Delete, h.k.Help, h.k.Quit}
}

func (h reviewHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Toggle, h.k.SelectAll},
		{h.k.Approve, h.k.Reject, h.k.Notes, h.k.Type},
		{h.k.Delete, h.k.Filter, h.k.Refresh},
		{h.k.Help, h.k.Quit},
	}
}
