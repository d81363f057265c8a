package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ImportStatus is the lifecycle state of an OCR import.
type ImportStatus string

// Import lifecycle: pending -> processing -> extracted -> review -> completed|failed.
const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportExtracted  ImportStatus = "extracted"
	ImportReview     ImportStatus = "review"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// IsTerminal reports whether the OCR worker will not touch the import again.
func (s ImportStatus) IsTerminal() bool {
	return s == ImportCompleted || s == ImportFailed
}

// Editable reports whether corrections may be made to an import in this state.
func (s ImportStatus) Editable() bool {
	return s == ImportExtracted || s == ImportReview
}

// BoundingBox is a rectangle in source-image pixel space tagged with a page index.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Page   int     `json:"page"`
}

// Empty reports whether the box covers no area.
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// Fields maps a semantic field name to its raw extracted value.
// The backend may send numbers or nulls; they are normalized to strings.
type Fields map[string]string

// UnmarshalJSON accepts any scalar JSON value per field.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			return fmt.Errorf("field %q: unsupported value type %T", k, v)
		}
	}
	*f = out
	return nil
}

// OCRBox is one recognized text fragment on a page.
type OCRBox struct {
	Text       string      `json:"text"`
	Box        BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
}

// PageBoxes holds the OCR boxes of one page together with the page's pixel size.
type PageBoxes struct {
	Boxes  []OCRBox `json:"boxes"`
	Page   int      `json:"page"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// ExtractedData is what the OCR worker found in an import.
type ExtractedData struct {
	Fields Fields         `json:"fields"`
	Lines  []ImportedLine `json:"lines"`
	Pages  []PageBoxes    `json:"pages"`
}

// PageSize returns the pixel size the OCR worker recorded for a page.
func (d ExtractedData) PageSize(page int) (int, int, bool) {
	for _, p := range d.Pages {
		if p.Page == page {
			return p.Width, p.Height, true
		}
	}
	return 0, 0, false
}

// BoxesOn returns the OCR boxes of a page.
func (d ExtractedData) BoxesOn(page int) []OCRBox {
	for _, p := range d.Pages {
		if p.Page == page {
			return p.Boxes
		}
	}
	return nil
}

// Correction is a user override of one extracted field, optionally tied to a source region.
type Correction struct {
	Region *BoundingBox `json:"region,omitempty"`
	Value  string       `json:"value"`
}

// Corrections is keyed by field name.
type Corrections map[string]Correction

// ImportedLine is one invoice line item read from the document.
type ImportedLine struct {
	Region          *BoundingBox    `json:"bbox,omitempty"`
	Omschrijving    string          `json:"omschrijving"`
	Eenheid         string          `json:"eenheid,omitempty"`
	Aantal          decimal.Decimal `json:"aantal"`
	PrijsPerEenheid decimal.Decimal `json:"prijs_per_eenheid"`
	Totaal          decimal.Decimal `json:"totaal"`
	BTWPercentage   decimal.NullDecimal `json:"btw_percentage"`
}

// DefaultBTWPercentage is the standard Dutch VAT rate.
var DefaultBTWPercentage = decimal.NewFromInt(21)

// BTWRate returns the line's VAT percentage, the standard rate when the OCR worker
// found none. An explicit 0 is kept.
func (l ImportedLine) BTWRate() decimal.Decimal {
	if l.BTWPercentage.Valid {
		return l.BTWPercentage.Decimal
	}
	return DefaultBTWPercentage
}

// InvoiceImport is an uploaded document undergoing OCR.
type InvoiceImport struct {
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	UserCorrections Corrections   `json:"user_corrections"`
	InvoiceID       *int          `json:"invoice_id,omitempty"`
	ExpenseID       *int          `json:"expense_id,omitempty"`
	FileName        string        `json:"original_filename"`
	ContentType     string        `json:"content_type"`
	Status          ImportStatus  `json:"status"`
	OCRText         string        `json:"ocr_text"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	ExtractedData   ExtractedData `json:"extracted_data"`
	ID              int           `json:"id"`
	FileSize        int64         `json:"file_size"`
	PageCount       int           `json:"page_count"`
	OCRConfidence   float64       `json:"ocr_confidence"`
}

// RegionRequest asks the backend to re-run extraction on one region.
type RegionRequest struct {
	BoundingBox
	Field string `json:"field,omitempty"`
}

// RegionResponse carries the text found inside a region.
type RegionResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ConversionTarget selects which record a conversion creates.
type ConversionTarget string

// Conversion targets.
const (
	TargetInvoice ConversionTarget = "invoice"
	TargetExpense ConversionTarget = "expense"
)

// InvoiceType seeds the type of the invoice created from an import.
type InvoiceType string

// Invoice types.
const (
	InvoicePurchase InvoiceType = "purchase"
	InvoiceCredit   InvoiceType = "credit"
	InvoiceSales    InvoiceType = "sales"
)

// Valid reports whether the type is one the backend accepts.
func (t InvoiceType) Valid() bool {
	switch t {
	case InvoicePurchase, InvoiceCredit, InvoiceSales:
		return true
	}
	return false
}

// ConvertToInvoiceData is the payload that turns an import into an invoice or expense.
type ConvertToInvoiceData struct {
	Target        ConversionTarget `json:"target"`
	InvoiceType   InvoiceType      `json:"invoice_type,omitempty"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	InvoiceDate   string           `json:"invoice_date,omitempty"`
	DueDate       string           `json:"due_date,omitempty"`
	SupplierName  string           `json:"supplier_name,omitempty"`
	SupplierVAT   string           `json:"supplier_vat,omitempty"`
	IBAN          string           `json:"iban,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CategoryID    *int             `json:"category_id,omitempty"`
	Lines         []ImportedLine   `json:"lines"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	BTWAmount     decimal.Decimal  `json:"btw_amount"`
	Total         decimal.Decimal  `json:"total"`
}

// ConvertResponse identifies the record created by a conversion.
type ConvertResponse struct {
	InvoiceID *int   `json:"invoice_id,omitempty"`
	ExpenseID *int   `json:"expense_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// BulkConvertResponse reports the outcome of a bulk conversion.
type BulkConvertResponse struct {
	Errors    map[string]string `json:"errors,omitempty"`
	Converted []int             `json:"converted"`
}

// ImportFilter narrows the import list.
type ImportFilter struct {
	Status ImportStatus
	Search string
	Page   int
}

// ExtractionPattern is a supplier-specific extraction template.
type ExtractionPattern struct {
	CreatedAt    time.Time         `json:"created_at"`
	FieldRegexes map[string]string `json:"field_patterns"`
	Name         string            `json:"name"`
	SupplierName string            `json:"supplier_name"`
	Keywords     []string          `json:"keywords"`
	ID           int               `json:"id"`
	UseCount     int               `json:"use_count"`
	IsActive     bool              `json:"is_active"`
}

// PatternTestResult is returned when a pattern is tried against a sample file.
type PatternTestResult struct {
	Extracted  Fields  `json:"extracted"`
	Confidence float64 `json:"confidence"`
}
