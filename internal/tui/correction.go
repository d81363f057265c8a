package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/tui/components"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

const (
	headerHeight = 2
	sidebarWidth = 48
)

// CorrectionModel is the OCR correction screen for one import.
type CorrectionModel struct {
	ctx      context.Context
	session  *ocr.Session
	theme    themes.Theme
	keys     KeyMap
	config   Config
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	editor   ocr.Editor
	lastErr  string
	importID int
	cursor   int
	width    int
	height   int
	cols     int
	rows     int
	editing  bool
	saving   bool
	ready    bool
	quitting bool
}

// NewCorrectionModel creates the correction screen for importID.
func NewCorrectionModel(ctx context.Context, session *ocr.Session, importID int, opts ...Option) CorrectionModel {
	cfg := newConfig(opts)

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 120

	m := CorrectionModel{
		ctx:      ctx,
		session:  session,
		importID: importID,
		config:   cfg,
		theme:    cfg.Theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.layout(cfg.Width, cfg.Height)
	return m
}

// Editor returns the current editor state.
func (m CorrectionModel) Editor() ocr.Editor {
	return m.editor
}

// Init loads the import.
func (m CorrectionModel) Init() tea.Cmd {
	return tea.Batch(m.loadImport(), m.spinner.Tick)
}

func (m CorrectionModel) loadImport() tea.Cmd {
	ctx, session, id := m.ctx, m.session, m.importID
	cw, ch := components.CanvasSize(m.cols, m.rows)
	return func() tea.Msg {
		editor, err := session.Open(ctx, id, cw, ch)
		if err != nil {
			return errorMsg{err: err, context: "Import openen"}
		}
		return editorLoadedMsg{editor: editor}
	}
}

func (m CorrectionModel) loadPageSize(page int) tea.Cmd {
	ctx, session, id := m.ctx, m.session, m.importID
	return func() tea.Msg {
		w, h, err := session.PageSize(ctx, id, page)
		if err != nil {
			return errorMsg{err: err, context: "Pagina laden"}
		}
		return pageSizeMsg{page: page, width: w, height: h}
	}
}

// layout sizes the canvas to the terminal, leaving room for the sidebar, the header
// and two status lines.
func (m *CorrectionModel) layout(width, height int) {
	m.width, m.height = width, height
	m.cols = max(10, width-sidebarWidth-1)
	m.rows = max(5, height-headerHeight-3)
	m.input.Width = sidebarWidth - 4
	m.help.Width = width
}

// apply runs cmd through the editor and turns its effect into a tea command.
func (m *CorrectionModel) apply(cmd ocr.Command) tea.Cmd {
	next, eff := m.editor.Apply(cmd)
	m.editor = next
	if eff == nil {
		return nil
	}
	ctx, session, id := m.ctx, m.session, m.editor.ImportID
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return editorMsg{cmd: session.Run(ctx, id, eff)}
	})
}

// Update handles messages and updates the model.
func (m CorrectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		if m.ready {
			cw, ch := components.CanvasSize(m.cols, m.rows)
			return m, m.apply(ocr.Resize{Width: cw, Height: ch})
		}
		return m, nil

	case editorLoadedMsg:
		m.editor = msg.editor
		m.ready = true
		if !m.editor.Viewport.Loaded() {
			return m, m.loadPageSize(m.editor.Page)
		}
		return m, nil

	case pageSizeMsg:
		if msg.page != m.editor.Page {
			return m, nil
		}
		return m, m.apply(ocr.ImageLoaded{Width: msg.width, Height: msg.height})

	case editorMsg:
		if msg.cmd == nil {
			return m, nil
		}
		return m, m.apply(msg.cmd)

	case correctionsSavedMsg:
		m.saving = false
		m.lastErr = ""
		return m, m.apply(ocr.CorrectionsSaved{Saved: msg.saved})

	case errorMsg:
		m.saving = false
		m.lastErr = msg.context + ": " + api.Message(msg.err)
		if errors.Is(msg.err, ocr.ErrNothingToSave) {
			m.lastErr = "Geen wijzigingen om op te slaan"
		}
		return m, nil

	case spinner.TickMsg:
		if m.ready && !m.saving && m.editor.Mode != ocr.ModeExtracting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditingKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *CorrectionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return *m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return *m, nil
	}
	if !m.ready {
		return *m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(len(ocr.Fields)-1, m.cursor+1)
	case key.Matches(msg, m.keys.Edit):
		field := ocr.Fields[m.cursor]
		m.editing = true
		m.input.SetValue(m.editor.Values[field])
		m.input.CursorEnd()
		return *m, m.input.Focus()
	case key.Matches(msg, m.keys.Region):
		m.lastErr = ""
		return *m, m.apply(ocr.StartEdit{Field: ocr.Fields[m.cursor]})
	case key.Matches(msg, m.keys.Cancel):
		return *m, m.apply(ocr.CancelSelection{})
	case key.Matches(msg, m.keys.ZoomIn):
		return *m, m.apply(ocr.ZoomIn{})
	case key.Matches(msg, m.keys.ZoomOut):
		return *m, m.apply(ocr.ZoomOut{})
	case key.Matches(msg, m.keys.NextPage):
		return *m, m.changePage(m.editor.Page + 1)
	case key.Matches(msg, m.keys.PrevPage):
		return *m, m.changePage(m.editor.Page - 1)
	case key.Matches(msg, m.keys.Save):
		return *m, m.save()
	}
	return *m, nil
}

func (m *CorrectionModel) changePage(page int) tea.Cmd {
	cmd := m.apply(ocr.SetPage{Page: page})
	if !m.editor.Viewport.Loaded() {
		return tea.Batch(cmd, m.loadPageSize(m.editor.Page))
	}
	return cmd
}

func (m *CorrectionModel) save() tea.Cmd {
	if m.saving {
		return nil
	}
	m.saving = true
	ctx, session, editor, timeout := m.ctx, m.session, m.editor, m.config.SaveTimeout
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		submitted := editor.PendingCorrections()
		if _, err := session.Save(ctx, editor); err != nil {
			return errorMsg{err: err, context: "Opslaan"}
		}
		return correctionsSavedMsg{saved: submitted}
	})
}

func (m *CorrectionModel) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		return *m, m.apply(ocr.EditValue{Field: ocr.Fields[m.cursor], Value: m.input.Value()})
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return *m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return *m, cmd
}

// handleMouse maps terminal cells on the canvas to canvas pixels. A release includes
// the cell under the pointer.
func (m *CorrectionModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.ready || m.editor.Mode != ocr.ModeSelecting || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	col, row := msg.X, msg.Y-headerHeight
	switch msg.Action {
	case tea.MouseActionPress:
		x, y := components.CellToCanvas(col, row)
		return m.apply(ocr.PointerDown{X: x, Y: y})
	case tea.MouseActionMotion:
		x, y := components.CellToCanvas(col+1, row+1)
		return m.apply(ocr.PointerMove{X: x, Y: y})
	case tea.MouseActionRelease:
		x, y := components.CellToCanvas(col+1, row+1)
		return m.apply(ocr.PointerUp{X: x, Y: y})
	}
	return nil
}

// View renders the UI.
func (m CorrectionModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		if m.lastErr != "" {
			return m.theme.StatusError.Render(m.lastErr)
		}
		return m.spinner.View() + " Import laden..."
	}

	e := m.editor
	header := m.theme.Title.Render(fmt.Sprintf("OCR-correctie · import #%d · pagina %d/%d · zoom %.0f%%",
		e.ImportID, e.Page, e.PageCount, e.Viewport.Zoom*100))

	canvas := components.RenderCanvas(ocr.Render(e), m.cols, m.rows, m.theme)
	if !e.Viewport.Loaded() {
		canvas = lipgloss.Place(m.cols, m.rows, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Pagina laden...")
	}

	sidebar := []string{components.RenderFields(e, m.cursor, sidebarWidth-2, m.theme)}
	if m.editing {
		sidebar = append(sidebar, "", m.theme.Bold.Render(components.FieldLabel(ocr.Fields[m.cursor])), m.input.View())
	}
	sidebar = append(sidebar, "", components.RenderLines(e, -1, m.theme))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.cols).Render(canvas),
		" ",
		lipgloss.NewStyle().Width(sidebarWidth).Render(lipgloss.JoinVertical(lipgloss.Left, sidebar...)),
	)

	sections := []string{header, body, m.statusLine()}
	if m.config.ShowHelp {
		sections = append(sections, m.help.View(correctionHelp{m.keys}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m CorrectionModel) statusLine() string {
	e := m.editor
	pending := len(e.Corrections)
	counter := m.theme.StatusPending.Render(fmt.Sprintf("%d niet-opgeslagen correctie(s)", pending))

	switch {
	case m.saving:
		return m.spinner.View() + " Opslaan..."
	case m.lastErr != "":
		return m.theme.StatusError.Render(m.lastErr)
	case e.Err != "":
		return m.theme.StatusError.Render(e.Err)
	case e.Mode == ocr.ModeExtracting:
		return m.spinner.View() + " " + e.Status
	case e.Status != "":
		return m.theme.StatusInfo.Render(e.Status) + "  " + counter
	}
	return counter
}
