package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory groups expenses for reporting.
type ExpenseCategory struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	ID          int    `json:"id"`
}

// Expense is a cost booked by the office.
type Expense struct {
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	Supplier     string          `json:"supplier,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Category     *int            `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	BTWAmount    decimal.Decimal `json:"btw_amount"`
	ID           int             `json:"id,omitempty"`
}

// ExpenseSummary totals expenses per category for a period.
type ExpenseSummary struct {
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	Total      decimal.Decimal            `json:"total"`
	TotalBTW   decimal.Decimal            `json:"total_btw"`
	Year       int                        `json:"year"`
	Count      int                        `json:"count"`
}

// PeriodType is the bucket size of a revenue time series.
type PeriodType string

// Period types.
const (
	PeriodWeek    PeriodType = "week"
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
)

// Valid reports whether the backend accepts the period type.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// RevenuePoint is one bucket of the revenue series.
type RevenuePoint struct {
	Label    string          `json:"label"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// ExpenseFilter narrows the expense list.
type ExpenseFilter struct {
	From     string
	To       string
	Category int
	Page     int
}
