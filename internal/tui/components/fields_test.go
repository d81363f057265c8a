package components

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/tui/themes"
	"github.com/Veraticus/kantoor/internal/tui/tuitest"
)

func fieldsEditor() ocr.Editor {
	imp := model.InvoiceImport{
		Status: model.ImportExtracted,
		ExtractedData: model.ExtractedData{
			Fields: model.Fields{ocr.FieldInvoiceNumber: "INV-001", ocr.FieldTotal: "121,00"},
			Lines: []model.ImportedLine{{
				Omschrijving:    "Rit Rotterdam",
				Aantal:          decimal.NewFromInt(2),
				PrijsPerEenheid: decimal.NewFromInt(50),
				BTWPercentage:   decimal.NewNullDecimal(decimal.NewFromInt(21)),
			}},
		},
	}
	e := ocr.NewEditor(imp, 400, 560)
	e, _ = e.Apply(ocr.EditValue{Field: ocr.FieldTotal, Value: "130,00"})
	return e
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Factuurnummer", FieldLabel(ocr.FieldInvoiceNumber))
	assert.Equal(t, "custom", FieldLabel("custom"))
}

func TestRenderFields(t *testing.T) {
	out := tuitest.StripANSI(RenderFields(fieldsEditor(), 0, 60, themes.Default))

	assert.True(t, tuitest.ContainsInOrder(out, "Velden", "Factuurnummer", "INV-001", "Factuurdatum", "-"))
	assert.Contains(t, out, MarkTyped+" Totaal")
	assert.Contains(t, out, "130,00")
	assert.NotContains(t, out, MarkRegion)
}

func TestRenderLines(t *testing.T) {
	out := tuitest.StripANSI(RenderLines(fieldsEditor(), -1, themes.Default))

	assert.True(t, tuitest.ContainsInOrder(out, "Omschrijving", "Rit Rotterdam", "Subtotaal"))
	assert.Contains(t, out, "100,00")

	empty := tuitest.StripANSI(RenderLines(ocr.Editor{}, -1, themes.Default))
	assert.Equal(t, "Geen regels", empty)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "kort", truncate("kort", 10))
	assert.Equal(t, "Transp…", truncate("Transport", 7))
	assert.Equal(t, "T", truncate("Transport", 1))
}
