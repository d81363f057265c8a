package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/kantoor/internal/service"
)

// MockWriter records reports instead of exporting them.
type MockWriter struct {
	WriteFunc func(ctx context.Context, report service.FinancialReport) error
	Reports   []service.FinancialReport
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements service.ReportWriter.
func (m *MockWriter) Write(ctx context.Context, report service.FinancialReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}

// Calls returns a copy of the recorded reports.
func (m *MockWriter) Calls() []service.FinancialReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]service.FinancialReport, len(m.Reports))
	copy(calls, m.Reports)
	return calls
}
