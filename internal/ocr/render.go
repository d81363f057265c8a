package ocr

import "sort"

// DrawKind identifies what a DrawCommand paints.
type DrawKind int

// Draw kinds, in painting order.
const (
	DrawPage DrawKind = iota
	DrawOCRBox
	DrawCorrection
	DrawSelection
)

// DrawCommand is one primitive of the canvas, in canvas pixels.
type DrawCommand struct {
	Label      string
	Rect       Rect
	Confidence float64
	Kind       DrawKind
	// Active marks the correction of the field being edited.
	Active bool
}

// Render lists what the canvas shows for e: the page, the OCR boxes of the page,
// the regions of corrections made on the page and the rubber band.
func Render(e Editor) []DrawCommand {
	if !e.Viewport.Loaded() {
		return nil
	}

	cw, ch := e.Viewport.CanvasSize()
	cmds := []DrawCommand{{Kind: DrawPage, Rect: Rect{Width: cw, Height: ch}}}

	for _, box := range e.Extracted.BoxesOn(e.Page) {
		cmds = append(cmds, DrawCommand{
			Kind:       DrawOCRBox,
			Rect:       e.Viewport.ToCanvas(box.Box),
			Label:      box.Text,
			Confidence: box.Confidence,
		})
	}

	fields := make([]string, 0, len(e.Corrections))
	for field, c := range e.Corrections {
		if c.Region != nil && c.Region.Page == e.Page {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	for _, field := range fields {
		cmds = append(cmds, DrawCommand{
			Kind:   DrawCorrection,
			Rect:   e.Viewport.ToCanvas(*e.Corrections[field].Region),
			Label:  field,
			Active: field == e.Field,
		})
	}

	if e.Selection != nil {
		cmds = append(cmds, DrawCommand{Kind: DrawSelection, Rect: *e.Selection, Label: e.Field})
	}

	return cmds
}
