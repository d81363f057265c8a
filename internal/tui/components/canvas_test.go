package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/tui/themes"
	"github.com/Veraticus/kantoor/internal/tui/tuitest"
)

func TestCellRect(t *testing.T) {
	tests := []struct {
		name           string
		rect           ocr.Rect
		c0, r0, c1, r1 int
	}{
		{"aligned", ocr.Rect{X: 16, Y: 32, Width: 32, Height: 32}, 2, 2, 5, 3},
		{"partial cells count", ocr.Rect{X: 12, Y: 8, Width: 10, Height: 10}, 1, 0, 2, 1},
		{"tiny rect keeps one cell", ocr.Rect{X: 40, Y: 40, Width: 0, Height: 0}, 5, 2, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c0, r0, c1, r1 := cellRect(tt.rect)
			assert.Equal(t, []int{tt.c0, tt.r0, tt.c1, tt.r1}, []int{c0, r0, c1, r1})
		})
	}
}

func TestCellToCanvasRoundTrip(t *testing.T) {
	x, y := CellToCanvas(10, 3)
	assert.InDelta(t, 80, x, 1e-9)
	assert.InDelta(t, 48, y, 1e-9)

	w, h := CanvasSize(51, 35)
	assert.InDelta(t, 408, w, 1e-9)
	assert.InDelta(t, 560, h, 1e-9)
}

func TestLayoutCanvas(t *testing.T) {
	cmds := []ocr.DrawCommand{
		{Kind: ocr.DrawPage, Rect: ocr.Rect{Width: 80, Height: 80}},
		{Kind: ocr.DrawOCRBox, Rect: ocr.Rect{X: 0, Y: 0, Width: 32, Height: 48}, Confidence: 0.95},
		{Kind: ocr.DrawOCRBox, Rect: ocr.Rect{X: 48, Y: 48, Width: 4, Height: 4}, Confidence: 0.5},
		{Kind: ocr.DrawSelection, Rect: ocr.Rect{X: 40, Y: 0, Width: 32, Height: 32}},
	}
	g := layoutCanvas(cmds, 12, 6)

	lines := make([]string, g.rows)
	for r := range g.rows {
		lines[r] = string(g.runes[r])
	}

	assert.Equal(t, "┌──┐·┌┄┄┐·  ", lines[0])
	assert.Equal(t, "│··│·└┄┄┘·  ", lines[1])
	assert.Equal(t, "└──┘······  ", lines[2])
	assert.Equal(t, "······□···  ", lines[3])
	assert.Equal(t, "··········  ", lines[4])
	assert.Equal(t, "            ", lines[5])

	assert.Equal(t, cellBox, g.kinds[0][0])
	assert.Equal(t, cellLowBox, g.kinds[3][6])
	assert.Equal(t, cellSelection, g.kinds[0][5])
	assert.Equal(t, cellPage, g.kinds[3][0])
}

func TestLayoutCanvas_CorrectionLabel(t *testing.T) {
	cmds := []ocr.DrawCommand{
		{Kind: ocr.DrawCorrection, Rect: ocr.Rect{Width: 48, Height: 32}, Label: "total", Active: true},
	}
	g := layoutCanvas(cmds, 8, 2)

	assert.Equal(t, "┌tota┐  ", string(g.runes[0]), "label is cut to the border")
	assert.Equal(t, cellActive, g.kinds[0][1])
}

func TestRenderCanvas(t *testing.T) {
	cmds := []ocr.DrawCommand{{Kind: ocr.DrawPage, Rect: ocr.Rect{Width: 24, Height: 16}}}
	out := tuitest.StripANSI(RenderCanvas(cmds, 5, 2, themes.Default))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "···  ", lines[0])
	assert.Equal(t, "     ", lines[1])

	assert.Empty(t, RenderCanvas(cmds, 0, 2, themes.Default))
}
