// Package components holds the views the kantoor screens are built from.
package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

// Canvas pixels covered by one terminal cell. Cells are roughly twice as tall as wide.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// LowConfidence is the OCR confidence below which a box is drawn as a warning.
const LowConfidence = 0.8

type cellKind int

const (
	cellEmpty cellKind = iota
	cellPage
	cellBox
	cellLowBox
	cellCorrection
	cellActive
	cellSelection
)

// CanvasSize returns the canvas area in pixels that cols by rows cells stand for.
func CanvasSize(cols, rows int) (width, height float64) {
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// CellToCanvas returns the canvas point at the top-left of a cell.
func CellToCanvas(col, row int) (x, y float64) {
	return float64(col) * CellWidth, float64(row) * CellHeight
}

type grid struct {
	runes [][]rune
	kinds [][]cellKind
	cols  int
	rows  int
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, runes: make([][]rune, rows), kinds: make([][]cellKind, rows)}
	for r := range rows {
		g.runes[r] = []rune(strings.Repeat(" ", cols))
		g.kinds[r] = make([]cellKind, cols)
	}
	return g
}

func (g *grid) set(c, r int, ch rune, kind cellKind) {
	if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
		return
	}
	g.runes[r][c] = ch
	g.kinds[r][c] = kind
}

func cellRect(rect ocr.Rect) (c0, r0, c1, r1 int) {
	c0 = int(math.Floor(rect.X / CellWidth))
	r0 = int(math.Floor(rect.Y / CellHeight))
	c1 = max(c0, int(math.Ceil((rect.X+rect.Width)/CellWidth))-1)
	r1 = max(r0, int(math.Ceil((rect.Y+rect.Height)/CellHeight))-1)
	return c0, r0, c1, r1
}

func (g *grid) fill(rect ocr.Rect, ch rune, kind cellKind) {
	c0, r0, c1, r1 := cellRect(rect)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.set(c, r, ch, kind)
		}
	}
}

type borderRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	solid  = borderRunes{h: '─', v: '│', tl: '┌', tr: '┐', bl: '└', br: '┘'}
	dashed = borderRunes{h: '┄', v: '┆', tl: '┌', tr: '┐', bl: '└', br: '┘'}
)

func (g *grid) outline(rect ocr.Rect, b borderRunes, kind cellKind) (c0, r0, c1, r1 int) {
	c0, r0, c1, r1 = cellRect(rect)
	switch {
	case c0 == c1 && r0 == r1:
		g.set(c0, r0, '□', kind)
	case r0 == r1:
		for c := c0; c <= c1; c++ {
			g.set(c, r0, b.h, kind)
		}
	case c0 == c1:
		for r := r0; r <= r1; r++ {
			g.set(c0, r, b.v, kind)
		}
	default:
		for c := c0 + 1; c < c1; c++ {
			g.set(c, r0, b.h, kind)
			g.set(c, r1, b.h, kind)
		}
		for r := r0 + 1; r < r1; r++ {
			g.set(c0, r, b.v, kind)
			g.set(c1, r, b.v, kind)
		}
		g.set(c0, r0, b.tl, kind)
		g.set(c1, r0, b.tr, kind)
		g.set(c0, r1, b.bl, kind)
		g.set(c1, r1, b.br, kind)
	}
	return c0, r0, c1, r1
}

// label writes text on the top border between the corners.
func (g *grid) label(c0, r0, c1 int, text string, kind cellKind) {
	room := c1 - c0 - 1
	if room <= 0 {
		return
	}
	for i, ch := range []rune(text) {
		if i >= room {
			break
		}
		g.set(c0+1+i, r0, ch, kind)
	}
}

func layoutCanvas(cmds []ocr.DrawCommand, cols, rows int) *grid {
	g := newGrid(cols, rows)
	for _, cmd := range cmds {
		switch cmd.Kind {
		case ocr.DrawPage:
			g.fill(cmd.Rect, '·', cellPage)
		case ocr.DrawOCRBox:
			kind := cellBox
			if cmd.Confidence < LowConfidence {
				kind = cellLowBox
			}
			g.outline(cmd.Rect, solid, kind)
		case ocr.DrawCorrection:
			kind := cellCorrection
			if cmd.Active {
				kind = cellActive
			}
			c0, r0, c1, _ := g.outline(cmd.Rect, solid, kind)
			g.label(c0, r0, c1, cmd.Label, kind)
		case ocr.DrawSelection:
			g.outline(cmd.Rect, dashed, cellSelection)
		}
	}
	return g
}

// RenderCanvas draws the commands onto a cols by rows character grid. Each cell covers
// CellWidth by CellHeight canvas pixels.
func RenderCanvas(cmds []ocr.DrawCommand, cols, rows int, theme themes.Theme) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	g := layoutCanvas(cmds, cols, rows)

	styles := map[cellKind]lipgloss.Style{
		cellEmpty:      lipgloss.NewStyle(),
		cellPage:       theme.PageFill,
		cellBox:        theme.OCRBox,
		cellLowBox:     theme.LowConfidenceBox,
		cellCorrection: theme.Correction,
		cellActive:     theme.ActiveCorrection,
		cellSelection:  theme.Selection,
	}

	lines := make([]string, rows)
	for r := range rows {
		var b strings.Builder
		start := 0
		for c := 1; c <= cols; c++ {
			if c < cols && g.kinds[r][c] == g.kinds[r][start] {
				continue
			}
			b.WriteString(styles[g.kinds[r][start]].Render(string(g.runes[r][start:c])))
			start = c
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}
