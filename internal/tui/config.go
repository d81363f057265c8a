package tui

import (
	"time"

	"github.com/Veraticus/kantoor/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Width        int
	Height       int
	SaveTimeout  time.Duration
	MouseSupport bool
	ShowHelp     bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        120,
		Height:       40,
		SaveTimeout:  30 * time.Second,
		MouseSupport: true,
		ShowHelp:     true,
	}
}

func newConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithMouse enables or disables mouse reporting. The correction canvas needs it for
// region selection.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}

// WithHelp shows or hides the key help line.
func WithHelp(enabled bool) Option {
	return func(c *Config) {
		c.ShowHelp = enabled
	}
}
