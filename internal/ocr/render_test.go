package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

func pagePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func kinds(cmds []DrawCommand) []DrawKind {
	out := make([]DrawKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func TestRender(t *testing.T) {
	e := NewEditor(sampleImport(), 500, 700)
	e, _ = e.Apply(EditValue{Field: FieldIBAN, Value: "NL00"})

	cmds := Render(e)
	assert.Equal(t, []DrawKind{DrawPage, DrawOCRBox}, kinds(cmds), "typed corrections have no region")
	assert.Equal(t, Rect{Width: 500, Height: 700}, cmds[0].Rect)
	assert.Equal(t, Rect{X: 300, Y: 50, Width: 100, Height: 20}, cmds[1].Rect)
	assert.Equal(t, "INV-001", cmds[1].Label)

	e, _ = e.Apply(StartEdit{Field: FieldTotal})
	e, _ = e.Apply(Select{X0: 10, Y0: 10, X1: 60, Y1: 40})
	e, _ = e.Apply(RegionExtracted{Field: FieldTotal, Text: "130,00", Box: model.BoundingBox{X: 20, Y: 20, Width: 100, Height: 60, Page: 1}})
	e, _ = e.Apply(StartEdit{Field: FieldDueDate})
	e, _ = e.Apply(PointerDown{X: 100, Y: 100})
	e, _ = e.Apply(PointerMove{X: 150, Y: 120})

	cmds = Render(e)
	assert.Equal(t, []DrawKind{DrawPage, DrawOCRBox, DrawCorrection, DrawSelection}, kinds(cmds))
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 50, Height: 30}, cmds[2].Rect)
	assert.Equal(t, FieldTotal, cmds[2].Label)
	assert.False(t, cmds[2].Active)
}

func TestRender_OtherPageHidesCorrections(t *testing.T) {
	e := NewEditor(sampleImport(), 500, 700)
	e, _ = e.Apply(StartEdit{Field: FieldTotal})
	e, _ = e.Apply(Select{X0: 10, Y0: 10, X1: 60, Y1: 40})
	e, _ = e.Apply(RegionExtracted{Field: FieldTotal, Text: "130,00", Box: e.Viewport.ToSource(Rect{X: 10, Y: 10, Width: 50, Height: 30}, 1)})

	e, _ = e.Apply(SetPage{Page: 2})
	assert.Equal(t, []DrawKind{DrawPage}, kinds(Render(e)))
}

func TestRender_NotLoaded(t *testing.T) {
	e := NewEditor(model.InvoiceImport{ID: 1}, 500, 700)
	assert.Nil(t, Render(e))
}

func TestRasterizePNG(t *testing.T) {
	imp := sampleImport()
	imp.ExtractedData.Pages = nil
	e := NewEditor(imp, 100, 150)

	var buf bytes.Buffer
	require.NoError(t, RasterizePNG(&buf, pagePNG(t, 200, 300), e))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 150), img.Bounds())
}

func TestRasterizePNG_InvalidImage(t *testing.T) {
	e := NewEditor(sampleImport(), 500, 700)
	err := RasterizePNG(&bytes.Buffer{}, []byte("geen png"), e)
	require.ErrorIs(t, err, common.ErrInvalidFile)
}

func TestCropRegion(t *testing.T) {
	data := pagePNG(t, 200, 300)

	var buf bytes.Buffer
	require.NoError(t, CropRegion(&buf, data, model.BoundingBox{X: 10.4, Y: 20, Width: 50, Height: 30, Page: 1}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 51, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	err = CropRegion(&bytes.Buffer{}, data, model.BoundingBox{X: 500, Y: 500, Width: 10, Height: 10})
	require.ErrorIs(t, err, common.ErrValidation)
}
