// Package service defines the interfaces shared by workflows, the CLI and the TUI.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/kantoor/internal/model"
)

// QueryCache stores GET responses keyed by resource and parameters.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidatePrefix drops every entry whose key starts with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
	Close() error
}

// CacheStats describes the contents of a query cache.
type CacheStats struct {
	Backend string
	Entries int
	Expired int
}

// ImportAPI is the slice of the backend the OCR correction screen needs.
type ImportAPI interface {
	GetImport(ctx context.Context, id int) (*model.InvoiceImport, error)
	ExtractRegion(ctx context.Context, id int, req model.RegionRequest) (*model.RegionResponse, error)
	SaveCorrections(ctx context.Context, id int, corrections model.Corrections) (*model.InvoiceImport, error)
	UpdateLines(ctx context.Context, id int, lines []model.ImportedLine) (*model.InvoiceImport, error)
	Convert(ctx context.Context, id int, data model.ConvertToInvoiceData) (*model.ConvertResponse, error)
	PageImage(ctx context.Context, id, page int) ([]byte, error)
}

// ReviewAPI is the slice of the backend the email review queue needs.
type ReviewAPI interface {
	ListEmailImports(ctx context.Context, filter model.EmailImportFilter) (*model.Page[model.EmailImport], error)
	EmailImportStats(ctx context.Context) (*model.EmailImportStats, error)
	ReviewEmailImport(ctx context.Context, id int, req model.ReviewRequest) (*model.EmailImport, error)
	BulkDeleteEmailImports(ctx context.Context, ids []int) (int, error)
}

// DocumentSigner submits signatures.
type DocumentSigner interface {
	SignDocument(ctx context.Context, id int, req model.SignRequest) (*model.Document, error)
}

// SignatureStore reads saved signatures.
type SignatureStore interface {
	GetSignature(ctx context.Context, id int) (*model.SavedSignature, error)
	DefaultSignature(ctx context.Context) (*model.SavedSignature, error)
}

// ExpenseCreator books expenses in the backend.
type ExpenseCreator interface {
	CreateExpense(ctx context.Context, expense model.Expense) (*model.Expense, error)
}

// TransactionSource yields bank transactions for a period.
type TransactionSource interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.BankTransaction, error)
}

// ReportWriter publishes a financial report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report FinancialReport) error
}

// FinancialReport bundles the figures exported for a year.
type FinancialReport struct {
	Summary model.ExpenseSummary
	Period  model.PeriodType
	Revenue []model.RevenuePoint
	Year    int
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
