package ocr

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/money"
)

// Field names the OCR worker extracts.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldDueDate       = "due_date"
	FieldSupplierName  = "supplier_name"
	FieldSupplierVAT   = "supplier_vat"
	FieldIBAN          = "iban"
	FieldSubtotal      = "subtotal"
	FieldBTWAmount     = "btw_amount"
	FieldTotal         = "total"
)

// Fields lists the extracted fields in display order.
var Fields = []string{
	FieldInvoiceNumber,
	FieldInvoiceDate,
	FieldDueDate,
	FieldSupplierName,
	FieldSupplierVAT,
	FieldIBAN,
	FieldSubtotal,
	FieldBTWAmount,
	FieldTotal,
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "2-1-2006", "02/01/2006", "2/1/2006", "02.01.2006"}

// ConversionOptions are the choices made in the conversion dialog.
type ConversionOptions struct {
	CategoryID  *int
	Target      model.ConversionTarget
	InvoiceType model.InvoiceType
	Notes       string
}

// MergedFields overlays every correction, saved or pending, on the extracted fields.
func (e Editor) MergedFields() map[string]string {
	merged := make(map[string]string, len(e.Extracted.Fields)+len(e.Values))
	for field, value := range e.Extracted.Fields {
		merged[field] = value
	}
	for field, value := range e.Values {
		merged[field] = value
	}
	for field, c := range e.Corrections {
		merged[field] = c.Value
	}
	return merged
}

// BuildConversion assembles the payload that turns the import into an invoice or expense.
// Amounts are read in Dutch notation. Missing totals are derived from the line items.
func BuildConversion(e Editor, opts ConversionOptions) (model.ConvertToInvoiceData, error) {
	fields := e.MergedFields()

	data := model.ConvertToInvoiceData{
		Target:        opts.Target,
		InvoiceNumber: strings.TrimSpace(fields[FieldInvoiceNumber]),
		SupplierName:  strings.TrimSpace(fields[FieldSupplierName]),
		SupplierVAT:   strings.TrimSpace(fields[FieldSupplierVAT]),
		IBAN:          strings.ReplaceAll(strings.ToUpper(fields[FieldIBAN]), " ", ""),
		Notes:         opts.Notes,
		CategoryID:    opts.CategoryID,
		Lines:         make([]model.ImportedLine, len(e.Lines)),
	}
	if data.Target == "" {
		data.Target = model.TargetInvoice
	}
	if data.Target == model.TargetInvoice {
		data.InvoiceType = opts.InvoiceType
		if data.InvoiceType == "" {
			data.InvoiceType = model.InvoicePurchase
		}
		if !data.InvoiceType.Valid() {
			return data, common.NewValidationError("invoice_type", "Onbekend factuurtype")
		}
	}

	for i, line := range e.Lines {
		data.Lines[i] = Recompute(line)
	}

	var err error
	if data.InvoiceDate, err = normalizeDate(FieldInvoiceDate, fields[FieldInvoiceDate]); err != nil {
		return data, err
	}
	if data.DueDate, err = normalizeDate(FieldDueDate, fields[FieldDueDate]); err != nil {
		return data, err
	}

	lineSubtotal, lineBTW := LineTotals(data.Lines)

	subtotal, hasSubtotal, err := optionalAmount(FieldSubtotal, fields[FieldSubtotal])
	if err != nil {
		return data, err
	}
	btw, hasBTW, err := optionalAmount(FieldBTWAmount, fields[FieldBTWAmount])
	if err != nil {
		return data, err
	}
	total, hasTotal, err := optionalAmount(FieldTotal, fields[FieldTotal])
	if err != nil {
		return data, err
	}

	if !hasSubtotal {
		subtotal = lineSubtotal
	}
	if !hasBTW {
		btw = lineBTW
	}
	if !hasTotal {
		total = subtotal.Add(btw)
	}

	data.Subtotal = subtotal
	data.BTWAmount = btw
	data.Total = total
	return data, nil
}

func optionalAmount(field, raw string) (decimal.Decimal, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, false, nil
	}
	amount, err := money.Parse(raw)
	if err != nil {
		return decimal.Zero, false, common.NewValidationError(field, "Ongeldig bedrag")
	}
	return amount, true, nil
}

func normalizeDate(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", common.NewValidationError(field, "Ongeldige datum")
}
