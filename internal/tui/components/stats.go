package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

// StatsPanelModel displays the email import pipeline statistics.
type StatsPanelModel struct {
	theme       themes.Theme
	stats       *model.EmailImportStats
	progressBar progress.Model
	width       int
	compact     bool
}

// NewStatsPanelModel creates a new stats panel.
func NewStatsPanelModel(theme themes.Theme) StatsPanelModel {
	prog := progress.New(progress.WithDefaultGradient())
	prog.ShowPercentage = false

	return StatsPanelModel{
		progressBar: prog,
		theme:       theme,
	}
}

// SetStats replaces the figures shown.
func (m *StatsPanelModel) SetStats(stats *model.EmailImportStats) {
	m.stats = stats
}

// SetCompact switches to the single-line rendering.
func (m *StatsPanelModel) SetCompact(compact bool) {
	m.compact = compact
}

// Resize adapts the panel to the available width.
func (m *StatsPanelModel) Resize(width int) {
	m.width = width
	m.progressBar.Width = max(10, min(width-4, 40))
}

// Handled returns the share of imports that no longer need attention.
func (m StatsPanelModel) Handled() float64 {
	if m.stats == nil || m.stats.Total == 0 {
		return 0
	}
	open := m.stats.AwaitingReview + m.stats.ByStatus[model.EmailPending] + m.stats.ByStatus[model.EmailProcessing]
	return float64(m.stats.Total-open) / float64(m.stats.Total)
}

// View renders the stats panel.
func (m StatsPanelModel) View() string {
	if m.stats == nil {
		return m.theme.StatusPending.Render("Statistieken laden...")
	}
	if m.compact {
		return m.renderCompact()
	}
	return m.renderFull()
}

func (m StatsPanelModel) renderCompact() string {
	s := m.stats
	return fmt.Sprintf("%s %d te beoordelen  %s %d vandaag  %s %d mislukt",
		m.theme.StatusInfo.Render("●"), s.AwaitingReview,
		m.theme.StatusSuccess.Render("●"), s.Today,
		m.theme.StatusError.Render("●"), s.Failed)
}

func (m StatsPanelModel) renderFull() string {
	s := m.stats
	lines := []string{
		m.theme.Title.Render("Statistieken"),
		fmt.Sprintf("Totaal          %d", s.Total),
		fmt.Sprintf("Te beoordelen   %d", s.AwaitingReview),
		fmt.Sprintf("Vandaag         %d", s.Today),
		m.theme.StatusError.Render(fmt.Sprintf("Mislukt         %d", s.Failed)),
		"",
		m.progressBar.ViewAs(m.Handled()),
		m.theme.Subtitle.Render(fmt.Sprintf("%.0f%% afgehandeld", m.Handled()*100)),
	}

	if len(s.ByStatus) > 0 {
		statuses := make([]string, 0, len(s.ByStatus))
		for status := range s.ByStatus {
			statuses = append(statuses, string(status))
		}
		sort.Strings(statuses)
		lines = append(lines, "")
		for _, status := range statuses {
			lines = append(lines, fmt.Sprintf("  %-14s %d",
				StatusLabel(model.EmailImportStatus(status)), s.ByStatus[model.EmailImportStatus(status)]))
		}
	}

	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n")))
}
