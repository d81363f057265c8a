package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kantoor/internal/money"
	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/tui/themes"
)

var fieldLabels = map[string]string{
	ocr.FieldInvoiceNumber: "Factuurnummer",
	ocr.FieldInvoiceDate:   "Factuurdatum",
	ocr.FieldDueDate:       "Vervaldatum",
	ocr.FieldSupplierName:  "Leverancier",
	ocr.FieldSupplierVAT:   "BTW-nummer",
	ocr.FieldIBAN:          "IBAN",
	ocr.FieldSubtotal:      "Subtotaal",
	ocr.FieldBTWAmount:     "BTW-bedrag",
	ocr.FieldTotal:         "Totaal",
}

// FieldLabel returns the Dutch label of an extracted field.
func FieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// Correction markers shown after a field value.
const (
	MarkRegion = "▣"
	MarkTyped  = "✎"
)

// RenderFields lists every extracted field with its current value. The row at cursor is
// highlighted and the field being selected on the canvas is shown in bold.
func RenderFields(e ocr.Editor, cursor, width int, theme themes.Theme) string {
	rows := make([]string, 0, len(ocr.Fields)+1)
	rows = append(rows, theme.Title.Render("Velden"))

	for i, field := range ocr.Fields {
		mark := " "
		if c, ok := e.Corrections[field]; ok {
			mark = MarkTyped
			if c.Region != nil {
				mark = MarkRegion
			}
		}
		value := e.Values[field]
		if value == "" {
			value = "-"
		}
		row := fmt.Sprintf("%s %-14s %s", mark, FieldLabel(field), value)
		if width > 0 {
			row = truncate(row, width)
		}

		switch {
		case i == cursor:
			row = theme.Selected.Render(row)
		case field == e.Field:
			row = theme.Bold.Render(row)
		default:
			row = theme.Normal.Render(row)
		}
		rows = append(rows, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderLines shows the line items with their computed totals.
func RenderLines(e ocr.Editor, cursor int, theme themes.Theme) string {
	if len(e.Lines) == 0 {
		return theme.StatusPending.Render("Geen regels")
	}
	rows := []string{theme.Bold.Render(fmt.Sprintf("%-3s %-24s %8s %10s %5s %10s", "#", "Omschrijving", "Aantal", "Prijs", "BTW", "Totaal"))}
	for i, line := range e.Lines {
		row := fmt.Sprintf("%-3d %-24s %8s %10s %4s%% %10s",
			i+1,
			truncate(line.Omschrijving, 24),
			money.Format(line.Aantal),
			money.Format(line.PrijsPerEenheid),
			line.BTWRate().String(),
			money.Format(line.Totaal))
		if i == cursor {
			row = theme.Highlighted.Render(row)
		}
		rows = append(rows, row)
	}
	subtotal, btw := ocr.LineTotals(e.Lines)
	rows = append(rows, theme.Subtitle.Render(fmt.Sprintf("Subtotaal %s  BTW %s  Totaal %s",
		money.FormatEuro(subtotal), money.FormatEuro(btw), money.FormatEuro(subtotal.Add(btw)))))
	return strings.Join(rows, "\n")
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
