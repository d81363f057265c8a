package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/review"
	"github.com/Veraticus/kantoor/internal/tui/components"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

// Filters the review screen cycles through. The empty status lists everything.
var reviewFilters = []model.EmailImportStatus{
	model.EmailAwaitingReview,
	model.EmailFailed,
	model.EmailApproved,
	model.EmailRejected,
	"",
}

var invoiceTypes = []model.InvoiceType{model.InvoicePurchase, model.InvoiceCredit, model.InvoiceSales}

// ReviewModel is the email import review screen.
type ReviewModel struct {
	ctx           context.Context
	poller        *review.Poller
	updates       chan review.Command
	theme         themes.Theme
	keys          KeyMap
	config        Config
	help          help.Model
	notes         textinput.Model
	stats         components.StatsPanelModel
	queue         review.Queue
	width         int
	height        int
	editingNotes  bool
	confirmDelete bool
	quitting      bool
}

// NewReviewModel creates the review screen. The poller starts with Init.
func NewReviewModel(ctx context.Context, poller *review.Poller, opts ...Option) ReviewModel {
	cfg := newConfig(opts)

	notes := textinput.New()
	notes.Prompt = "Notitie › "
	notes.CharLimit = 500

	m := ReviewModel{
		ctx:     ctx,
		poller:  poller,
		updates: make(chan review.Command, 16),
		config:  cfg,
		theme:   cfg.Theme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		notes:   notes,
		stats:   components.NewStatsPanelModel(cfg.Theme),
		queue:   review.NewQueue(),
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Queue returns the current queue state.
func (m ReviewModel) Queue() review.Queue {
	return m.queue
}

// Init starts the poller and listens for its results.
func (m ReviewModel) Init() tea.Cmd {
	return tea.Batch(m.startPolling(), m.waitForUpdate())
}

func (m ReviewModel) startPolling() tea.Cmd {
	ctx, poller, updates := m.ctx, m.poller, m.updates
	return func() tea.Msg {
		err := poller.Run(ctx, func(cmd review.Command) {
			select {
			case updates <- cmd:
			case <-ctx.Done():
			}
		})
		return pollerStoppedMsg{err: err}
	}
}

func (m ReviewModel) waitForUpdate() tea.Cmd {
	ctx, updates := m.ctx, m.updates
	return func() tea.Msg {
		select {
		case cmd := <-updates:
			return queueMsg{cmd: cmd, fromPoller: true}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *ReviewModel) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.stats.Resize(min(40, width/3))
	m.stats.SetCompact(width < 100)
	m.notes.Width = max(20, width-20)
}

// apply runs cmd through the queue and turns its effect into a tea command.
func (m *ReviewModel) apply(cmd review.Command) tea.Cmd {
	next, eff := m.queue.Apply(cmd)
	m.queue = next
	m.stats.SetStats(next.Stats)
	if eff == nil {
		return nil
	}
	ctx, poller := m.ctx, m.poller
	return func() tea.Msg {
		return queueMsg{cmd: poller.Exec(ctx, eff)}
	}
}

func (m ReviewModel) refreshList() tea.Cmd {
	ctx, poller := m.ctx, m.poller
	return func() tea.Msg {
		return queueMsg{cmd: poller.FetchList(ctx)}
	}
}

func (m ReviewModel) refreshStats() tea.Cmd {
	ctx, poller := m.ctx, m.poller
	return func() tea.Msg {
		cmd := poller.FetchStats(ctx)
		if cmd == nil {
			return nil
		}
		return queueMsg{cmd: cmd}
	}
}

// Update handles messages and updates the model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case queueMsg:
		var cmds []tea.Cmd
		if msg.cmd != nil {
			cmds = append(cmds, m.apply(msg.cmd))
			switch msg.cmd.(type) {
			case review.Reviewed, review.Deleted:
				cmds = append(cmds, m.refreshStats())
			}
		}
		if msg.fromPoller {
			cmds = append(cmds, m.waitForUpdate())
		}
		return m, tea.Batch(cmds...)

	case pollerStoppedMsg:
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.editingNotes:
			return m.handleNotesKey(msg)
		case m.confirmDelete:
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *ReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current, hasCurrent := m.queue.Current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return *m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		return *m, m.apply(review.MoveCursor{Delta: -1})
	case key.Matches(msg, m.keys.Down):
		return *m, m.apply(review.MoveCursor{Delta: 1})
	case key.Matches(msg, m.keys.Toggle):
		if hasCurrent {
			return *m, m.apply(review.Toggle{ID: current.ID})
		}
	case key.Matches(msg, m.keys.SelectAll):
		return *m, m.apply(review.SelectAll{})
	case key.Matches(msg, m.keys.Approve):
		if hasCurrent {
			return *m, m.apply(review.Review{ID: current.ID, Action: model.ActionApprove})
		}
	case key.Matches(msg, m.keys.Reject):
		if hasCurrent {
			return *m, m.apply(review.Review{ID: current.ID, Action: model.ActionReject})
		}
	case key.Matches(msg, m.keys.Notes):
		if hasCurrent {
			m.editingNotes = true
			m.notes.SetValue(m.queue.Notes[current.ID])
			m.notes.CursorEnd()
			return *m, m.notes.Focus()
		}
	case key.Matches(msg, m.keys.Type):
		if hasCurrent {
			return *m, m.apply(review.SetType{ID: current.ID, Type: nextType(m.queue.Types[current.ID])})
		}
	case key.Matches(msg, m.keys.Delete):
		if len(m.queue.SelectedIDs()) > 0 {
			m.confirmDelete = true
			return *m, nil
		}
		return *m, m.apply(review.BulkDelete{})
	case key.Matches(msg, m.keys.Filter):
		filter := m.queue.Filter
		filter.Status = nextFilter(filter.Status)
		m.poller.SetFilter(filter)
		return *m, tea.Batch(m.apply(review.SetFilter{Filter: filter}), m.refreshList())
	case key.Matches(msg, m.keys.Refresh):
		return *m, tea.Batch(m.refreshList(), m.refreshStats())
	}
	return *m, nil
}

func (m *ReviewModel) handleNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editingNotes = false
		m.notes.Blur()
		if current, ok := m.queue.Current(); ok {
			return *m, m.apply(review.SetNotes{ID: current.ID, Notes: strings.TrimSpace(m.notes.Value())})
		}
		return *m, nil
	case tea.KeyEsc:
		m.editingNotes = false
		m.notes.Blur()
		return *m, nil
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return *m, cmd
}

func (m *ReviewModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmDelete = false
	switch strings.ToLower(msg.String()) {
	case "j", "y":
		return *m, m.apply(review.BulkDelete{})
	}
	return *m, nil
}

func nextType(current model.InvoiceType) model.InvoiceType {
	for i, t := range invoiceTypes {
		if t == current {
			return invoiceTypes[(i+1)%len(invoiceTypes)]
		}
	}
	// No type chosen yet means purchase, so the first press moves on to credit.
	return model.InvoiceCredit
}

func nextFilter(current model.EmailImportStatus) model.EmailImportStatus {
	for i, s := range reviewFilters {
		if s == current {
			return reviewFilters[(i+1)%len(reviewFilters)]
		}
	}
	return reviewFilters[0]
}

// View renders the UI.
func (m ReviewModel) View() string {
	if m.quitting {
		return ""
	}
	q := m.queue

	filter := "alles"
	if q.Filter.Status != "" {
		filter = components.StatusLabel(q.Filter.Status)
	}
	header := m.theme.Title.Render(fmt.Sprintf("%s E-mailimports · %s · %d totaal · %d geselecteerd",
		"📬", filter, q.Count, len(q.SelectedIDs())))

	listHeight := max(3, m.height-12)

	var body string
	if m.width >= 100 {
		listWidth := m.width - 44
		list := components.RenderQueue(q, listWidth, listHeight, m.theme)
		left := lipgloss.JoinVertical(lipgloss.Left, list, "", components.RenderDetail(q, m.theme))
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(listWidth).Render(left), "  ", m.stats.View())
	} else {
		list := components.RenderQueue(q, m.width-2, listHeight, m.theme)
		body = lipgloss.JoinVertical(lipgloss.Left, m.stats.View(), list, "", components.RenderDetail(q, m.theme))
	}

	sections := []string{header, body, m.statusLine()}
	if m.config.ShowHelp {
		sections = append(sections, m.help.View(reviewHelp{m.keys}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ReviewModel) statusLine() string {
	q := m.queue
	switch {
	case m.editingNotes:
		return m.notes.View()
	case m.confirmDelete:
		return m.theme.StatusWarning.Render(fmt.Sprintf("%d import(s) verwijderen? [j/N]", len(q.SelectedIDs())))
	case q.Err != "":
		return m.theme.StatusError.Render(q.Err)
	case q.Status != "":
		return m.theme.StatusSuccess.Render(q.Status)
	}
	return ""
}
