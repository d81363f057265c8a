package ocr

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSetLineField_RecomputesTotal(t *testing.T) {
	tests := []struct {
		name  string
		field LineField
		value string
		want  string
	}{
		{name: "quantity", field: LineAantal, value: "3", want: "37.5"},
		{name: "dutch quantity", field: LineAantal, value: "2,5", want: "31.25"},
		{name: "unit price", field: LinePrijsPerEenheid, value: "1.000,00", want: "2000"},
		{name: "description keeps total", field: LineOmschrijving, value: " Diesel ", want: "25"},
		{name: "vat keeps total", field: LineBTWPercentage, value: "9", want: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := model.ImportedLine{Aantal: dec("2"), PrijsPerEenheid: dec("12.50"), Totaal: dec("999")}
			got, err := SetLineField(line, tt.field, tt.value)
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got.Totaal), "totaal = %s", got.Totaal)
			assert.True(t, got.Aantal.Mul(got.PrijsPerEenheid).Equal(got.Totaal))
		})
	}
}

func TestSetLineField_Errors(t *testing.T) {
	line := NewLine()

	_, err := SetLineField(line, LineAantal, "veel")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = SetLineField(line, LineField("totaal"), "100")
	require.ErrorIs(t, err, common.ErrValidation, "totaal is derived only")
}

func TestNewLine(t *testing.T) {
	line := NewLine()
	assert.True(t, line.Aantal.Equal(dec("1")))
	assert.True(t, line.BTWRate().Equal(DefaultBTW))
	assert.True(t, line.Totaal.IsZero())
}

func TestLineTotals(t *testing.T) {
	lines := []model.ImportedLine{
		Recompute(model.ImportedLine{Aantal: dec("2"), PrijsPerEenheid: dec("50"), BTWPercentage: decimal.NewNullDecimal(dec("21"))}),
		Recompute(model.ImportedLine{Aantal: dec("1"), PrijsPerEenheid: dec("10.10"), BTWPercentage: decimal.NewNullDecimal(dec("9"))}),
	}

	subtotal, btw := LineTotals(lines)
	assert.Equal(t, "110.10", subtotal.StringFixed(2))
	assert.Equal(t, "21.91", btw.StringFixed(2))
}

func TestLineTotals_VATRate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantBTW string
	}{
		{name: "missing rate is standard", payload: `{"aantal": "1", "prijs_per_eenheid": "100"}`, wantBTW: "21.00"},
		{name: "null rate is standard", payload: `{"aantal": "1", "prijs_per_eenheid": "100", "btw_percentage": null}`, wantBTW: "21.00"},
		{name: "zero rate is kept", payload: `{"aantal": "1", "prijs_per_eenheid": "100", "btw_percentage": "0"}`, wantBTW: "0.00"},
		{name: "low rate", payload: `{"aantal": "1", "prijs_per_eenheid": "100", "btw_percentage": 9}`, wantBTW: "9.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var line model.ImportedLine
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &line))

			e := NewEditor(model.InvoiceImport{ExtractedData: model.ExtractedData{Lines: []model.ImportedLine{line}}}, 500, 700)
			require.True(t, e.Lines[0].BTWPercentage.Valid, "the editor sends an explicit rate")

			_, btw := LineTotals(e.Lines)
			assert.Equal(t, tt.wantBTW, btw.StringFixed(2))
		})
	}
}
