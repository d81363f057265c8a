package ocr

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/model"
)

// Mode is the state of the region selection machine.
type Mode int

// Selection modes. A field moves idle -> selecting on StartEdit, selecting ->
// extracting when a rectangle is released, and back to idle when the extraction
// answers, fails or the selection is cancelled.
const (
	ModeIdle Mode = iota
	ModeSelecting
	ModeExtracting
)

func (m Mode) String() string {
	switch m {
	case ModeSelecting:
		return "selecting"
	case ModeExtracting:
		return "extracting"
	default:
		return "idle"
	}
}

// MinSelection is the smallest rectangle side, in canvas pixels, that is sent for extraction.
const MinSelection = 3.0

// Editor is the complete state of the correction canvas for one import.
type Editor struct {
	Corrections model.Corrections
	Values      map[string]string
	Selection   *Rect
	Extracted   model.ExtractedData
	Field       string
	Status      string
	Err         string
	Lines       []model.ImportedLine
	Viewport    Viewport
	ImportID    int
	Page        int
	PageCount   int
	Mode        Mode
	stored      map[string]string
	anchorX     float64
	anchorY     float64
	dragging    bool
}

// NewEditor opens an import on its first page inside a container of the given size.
// Earlier saved corrections are applied on top of the extracted values but are not
// pending again.
func NewEditor(imp model.InvoiceImport, containerWidth, containerHeight float64) Editor {
	values := make(map[string]string, len(imp.ExtractedData.Fields))
	maps.Copy(values, imp.ExtractedData.Fields)
	for field, c := range imp.UserCorrections {
		values[field] = c.Value
	}

	lines := make([]model.ImportedLine, len(imp.ExtractedData.Lines))
	for i, line := range imp.ExtractedData.Lines {
		line.BTWPercentage = decimal.NewNullDecimal(line.BTWRate())
		lines[i] = Recompute(line)
	}

	e := Editor{
		ImportID:    imp.ID,
		Extracted:   imp.ExtractedData,
		Values:      values,
		stored:      maps.Clone(values),
		Corrections: make(model.Corrections),
		Lines:       lines,
		Page:        1,
		PageCount:   max(imp.PageCount, 1),
		Viewport:    NewViewport(0, 0, containerWidth, containerHeight),
	}
	if w, h, ok := imp.ExtractedData.PageSize(1); ok {
		e.Viewport = e.Viewport.WithSource(float64(w), float64(h))
	}
	return e
}

func (e Editor) clone() Editor {
	e.Values = maps.Clone(e.Values)
	e.Corrections = maps.Clone(e.Corrections)
	e.Lines = slices.Clone(e.Lines)
	if e.Values == nil {
		e.Values = make(map[string]string)
	}
	if e.Corrections == nil {
		e.Corrections = make(model.Corrections)
	}
	if e.Selection != nil {
		sel := *e.Selection
		e.Selection = &sel
	}
	return e
}

// Command is an input to the editor.
type Command interface {
	apply(e Editor) (Editor, Effect)
}

// Effect is work the host must perform after a command, feeding the outcome back as a
// command. A nil Effect means nothing to do.
type Effect interface {
	effect()
}

// ExtractRegion asks the host to run region extraction and answer with
// RegionExtracted or RegionFailed.
type ExtractRegion struct {
	Field string
	Box   model.BoundingBox
}

func (ExtractRegion) effect() {}

// Apply returns the state after cmd and the effect the host must run. The receiver is
// left untouched.
func (e Editor) Apply(cmd Command) (Editor, Effect) {
	next, eff := cmd.apply(e.clone())
	return next, eff
}

// PendingCorrections returns the corrections made since the editor was opened or last
// saved, keyed by field.
func (e Editor) PendingCorrections() model.Corrections {
	return maps.Clone(e.Corrections)
}

// Original returns the value the OCR worker extracted for field.
func (e Editor) Original(field string) string {
	return e.Extracted.Fields[field]
}

// StartEdit puts a field into region selection.
type StartEdit struct{ Field string }

func (c StartEdit) apply(e Editor) (Editor, Effect) {
	if e.Mode == ModeExtracting || c.Field == "" {
		return e, nil
	}
	e.Mode = ModeSelecting
	e.Field = c.Field
	e.Selection = nil
	e.dragging = false
	e.Err = ""
	e.Status = "Teken een kader rond " + c.Field
	return e, nil
}

// PointerDown starts a rubber band at a canvas point.
type PointerDown struct{ X, Y float64 }

func (c PointerDown) apply(e Editor) (Editor, Effect) {
	if e.Mode != ModeSelecting {
		return e, nil
	}
	e.anchorX, e.anchorY = c.X, c.Y
	e.dragging = true
	e.Selection = &Rect{X: c.X, Y: c.Y}
	return e, nil
}

// PointerMove stretches the rubber band.
type PointerMove struct{ X, Y float64 }

func (c PointerMove) apply(e Editor) (Editor, Effect) {
	if e.Mode != ModeSelecting || !e.dragging {
		return e, nil
	}
	r := e.Viewport.Clip(RectFromPoints(e.anchorX, e.anchorY, c.X, c.Y))
	e.Selection = &r
	return e, nil
}

// PointerUp releases the rubber band and requests extraction of the region.
type PointerUp struct{ X, Y float64 }

func (c PointerUp) apply(e Editor) (Editor, Effect) {
	if e.Mode != ModeSelecting || !e.dragging {
		return e, nil
	}
	e.dragging = false
	r := e.Viewport.Clip(RectFromPoints(e.anchorX, e.anchorY, c.X, c.Y))
	if r.Width < MinSelection || r.Height < MinSelection {
		e.Selection = nil
		e.Status = "Selectie te klein, probeer opnieuw"
		return e, nil
	}

	e.Selection = &r
	e.Mode = ModeExtracting
	e.Status = "Tekst herkennen..."
	return e, ExtractRegion{Field: e.Field, Box: e.Viewport.ToSource(r, e.Page)}
}

// Select is a complete rubber band gesture from one corner to the other.
type Select struct{ X0, Y0, X1, Y1 float64 }

func (c Select) apply(e Editor) (Editor, Effect) {
	e, _ = PointerDown{X: c.X0, Y: c.Y0}.apply(e)
	e, _ = PointerMove{X: c.X1, Y: c.Y1}.apply(e)
	return PointerUp{X: c.X1, Y: c.Y1}.apply(e)
}

// CancelSelection abandons region selection.
type CancelSelection struct{}

func (CancelSelection) apply(e Editor) (Editor, Effect) {
	return e.toIdle(""), nil
}

// RegionExtracted delivers the text found in a region.
type RegionExtracted struct {
	Field string
	Text  string
	Box   model.BoundingBox
}

func (c RegionExtracted) apply(e Editor) (Editor, Effect) {
	if e.Mode != ModeExtracting || c.Field != e.Field {
		return e, nil
	}
	box := c.Box
	e.Values[c.Field] = c.Text
	e.Corrections[c.Field] = model.Correction{Value: c.Text, Region: &box}
	return e.toIdle(c.Field + " bijgewerkt"), nil
}

// RegionFailed reports that extraction of a region failed. The selection is discarded.
type RegionFailed struct {
	Err   error
	Field string
}

func (c RegionFailed) apply(e Editor) (Editor, Effect) {
	if e.Mode != ModeExtracting || c.Field != e.Field {
		return e, nil
	}
	e = e.toIdle("")
	e.Err = "Tekstherkenning mislukt"
	if c.Err != nil {
		e.Err += ": " + c.Err.Error()
	}
	return e, nil
}

// EditValue sets a field by typing. Typing back the value the backend holds drops the
// correction; any other value, the extracted one included, is pending.
type EditValue struct{ Field, Value string }

func (c EditValue) apply(e Editor) (Editor, Effect) {
	if c.Field == "" {
		return e, nil
	}
	e.Values[c.Field] = c.Value
	if stored, ok := e.stored[c.Field]; ok && stored == c.Value {
		delete(e.Corrections, c.Field)
	} else {
		e.Corrections[c.Field] = model.Correction{Value: c.Value}
	}
	e.Err = ""
	return e, nil
}

// CorrectionsSaved marks the submitted corrections as stored by the backend. A field
// edited again while the save was in flight stays pending.
type CorrectionsSaved struct{ Saved model.Corrections }

func (c CorrectionsSaved) apply(e Editor) (Editor, Effect) {
	e.stored = maps.Clone(e.stored)
	if e.stored == nil {
		e.stored = make(map[string]string, len(c.Saved))
	}
	for field, saved := range c.Saved {
		e.stored[field] = saved.Value
		if current, ok := e.Corrections[field]; ok && sameCorrection(current, saved) {
			delete(e.Corrections, field)
		}
	}
	e.Status = "Correcties opgeslagen"
	e.Err = ""
	return e, nil
}

func sameCorrection(a, b model.Correction) bool {
	if a.Value != b.Value || (a.Region == nil) != (b.Region == nil) {
		return false
	}
	return a.Region == nil || *a.Region == *b.Region
}

// ZoomIn raises the zoom one step.
type ZoomIn struct{}

func (ZoomIn) apply(e Editor) (Editor, Effect) {
	e.Viewport = e.Viewport.ZoomIn()
	return e.dropRubberBand(), nil
}

// ZoomOut lowers the zoom one step.
type ZoomOut struct{}

func (ZoomOut) apply(e Editor) (Editor, Effect) {
	e.Viewport = e.Viewport.ZoomOut()
	return e.dropRubberBand(), nil
}

// SetPage switches to another page, 1-based.
type SetPage struct{ Page int }

func (c SetPage) apply(e Editor) (Editor, Effect) {
	page := max(1, min(c.Page, e.PageCount))
	if page == e.Page {
		return e, nil
	}
	e.Page = page
	if w, h, ok := e.Extracted.PageSize(page); ok {
		e.Viewport = e.Viewport.WithSource(float64(w), float64(h))
	} else {
		e.Viewport = e.Viewport.WithSource(0, 0)
	}
	return e.dropRubberBand(), nil
}

// ImageLoaded reports the pixel size of the decoded page image.
type ImageLoaded struct{ Width, Height int }

func (c ImageLoaded) apply(e Editor) (Editor, Effect) {
	e.Viewport = e.Viewport.WithSource(float64(c.Width), float64(c.Height))
	return e.dropRubberBand(), nil
}

// Resize reports a new container size.
type Resize struct{ Width, Height float64 }

func (c Resize) apply(e Editor) (Editor, Effect) {
	e.Viewport = e.Viewport.Resize(c.Width, c.Height)
	return e.dropRubberBand(), nil
}

// AddLine appends an empty line item.
type AddLine struct{}

func (AddLine) apply(e Editor) (Editor, Effect) {
	e.Lines = append(e.Lines, NewLine())
	return e, nil
}

// RemoveLine deletes the line at Index.
type RemoveLine struct{ Index int }

func (c RemoveLine) apply(e Editor) (Editor, Effect) {
	if c.Index < 0 || c.Index >= len(e.Lines) {
		return e, nil
	}
	e.Lines = slices.Delete(e.Lines, c.Index, c.Index+1)
	return e, nil
}

// EditLine changes one column of a line item; the total follows automatically.
type EditLine struct {
	Field LineField
	Value string
	Index int
}

func (c EditLine) apply(e Editor) (Editor, Effect) {
	if c.Index < 0 || c.Index >= len(e.Lines) {
		return e, nil
	}
	line, err := SetLineField(e.Lines[c.Index], c.Field, c.Value)
	if err != nil {
		e.Err = err.Error()
		return e, nil
	}
	e.Lines[c.Index] = line
	e.Err = ""
	return e, nil
}

func (e Editor) toIdle(status string) Editor {
	e.Mode = ModeIdle
	e.Field = ""
	e.Selection = nil
	e.dragging = false
	e.Status = status
	return e
}

// dropRubberBand discards an in-progress rectangle whose canvas coordinates no longer
// match the page. A selection waiting on extraction is kept.
func (e Editor) dropRubberBand() Editor {
	if e.Mode == ModeSelecting {
		e.Selection = nil
		e.dragging = false
	}
	return e
}
