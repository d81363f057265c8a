package ocr

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/money"
)

// LineField names an editable column of a line item. Totaal is derived and has no field.
type LineField string

// Editable line columns.
const (
	LineOmschrijving    LineField = "omschrijving"
	LineAantal          LineField = "aantal"
	LineEenheid         LineField = "eenheid"
	LinePrijsPerEenheid LineField = "prijs_per_eenheid"
	LineBTWPercentage   LineField = "btw_percentage"
)

// DefaultBTW is the standard Dutch VAT rate applied to new lines.
var DefaultBTW = model.DefaultBTWPercentage

// NewLine returns an empty line with quantity 1 at the standard VAT rate.
func NewLine() model.ImportedLine {
	return model.ImportedLine{
		Aantal:        decimal.NewFromInt(1),
		BTWPercentage: decimal.NewNullDecimal(DefaultBTW),
	}
}

// Recompute sets Totaal to Aantal * PrijsPerEenheid.
func Recompute(line model.ImportedLine) model.ImportedLine {
	line.Totaal = line.Aantal.Mul(line.PrijsPerEenheid)
	return line
}

// SetLineField applies a text edit to one column and recomputes the total.
func SetLineField(line model.ImportedLine, field LineField, value string) (model.ImportedLine, error) {
	switch field {
	case LineOmschrijving:
		line.Omschrijving = strings.TrimSpace(value)
	case LineEenheid:
		line.Eenheid = strings.TrimSpace(value)
	case LineAantal, LinePrijsPerEenheid, LineBTWPercentage:
		amount, err := money.Parse(value)
		if err != nil {
			return line, common.NewValidationError(string(field), "Ongeldig getal")
		}
		switch field {
		case LineAantal:
			line.Aantal = amount
		case LinePrijsPerEenheid:
			line.PrijsPerEenheid = amount
		default:
			line.BTWPercentage = decimal.NewNullDecimal(amount)
		}
	default:
		return line, fmt.Errorf("%w: line field %q is not editable", common.ErrValidation, field)
	}
	return Recompute(line), nil
}

// LineTotals sums the line totals and the VAT they carry.
func LineTotals(lines []model.ImportedLine) (subtotal, btw decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	for _, line := range lines {
		subtotal = subtotal.Add(line.Totaal)
		btw = btw.Add(line.Totaal.Mul(line.BTWRate()).Div(hundred))
	}
	return subtotal, btw.Round(2)
}
