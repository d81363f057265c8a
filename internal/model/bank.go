package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is a debit or credit read from a bank feed.
type BankTransaction struct {
	Date         time.Time
	ID           string
	Name         string
	Counterparty string
	AccountID    string
	Type         string
	Amount       decimal.Decimal // negative for debits
}

// IsDebit reports whether money left the account.
func (t BankTransaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// Hash identifies a transaction across repeated imports.
func (t BankTransaction) Hash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Counterparty,
		t.AccountID)
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}
