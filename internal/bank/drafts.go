package bank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

// DraftOptions controls how bank transactions become expenses.
type DraftOptions struct {
	// Category is assigned to every draft when set.
	Category *int
	// Booked holds the references of expenses booked earlier; they are skipped.
	Booked map[string]bool
}

// reference is what a booked expense remembers of its transaction: the bank id, or the
// content hash for feeds without one.
func reference(tx model.BankTransaction) string {
	if tx.ID != "" {
		return tx.ID
	}
	return tx.Hash()
}

// Drafts turns the debits in txns into expense drafts, oldest first. Credits and
// duplicate transactions are skipped.
func Drafts(txns []model.BankTransaction, opts DraftOptions) []model.Expense {
	seen := make(map[string]bool, len(txns))
	debits := make([]model.BankTransaction, 0, len(txns))

	for _, tx := range txns {
		if !tx.IsDebit() {
			continue
		}
		hash := tx.Hash()
		if seen[hash] || opts.Booked[reference(tx)] {
			continue
		}
		seen[hash] = true
		debits = append(debits, tx)
	}

	sort.SliceStable(debits, func(i, j int) bool {
		return debits[i].Date.Before(debits[j].Date)
	})

	drafts := make([]model.Expense, 0, len(debits))
	for _, tx := range debits {
		description := tx.Counterparty
		if description == "" {
			description = strings.TrimSpace(tx.Name)
		}
		drafts = append(drafts, model.Expense{
			Date:        tx.Date.Format("2006-01-02"),
			Description: description,
			Supplier:    tx.Counterparty,
			Reference:   reference(tx),
			Category:    opts.Category,
			Amount:      tx.Amount.Abs(),
		})
	}
	return drafts
}

// Book creates every draft through creator, calling progress after each one. It stops
// at the first failure and reports how many expenses were created before it.
func Book(ctx context.Context, creator service.ExpenseCreator, drafts []model.Expense, progress func()) (int, error) {
	logger := common.Component("bank")
	for i, draft := range drafts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		created, err := creator.CreateExpense(ctx, draft)
		if err != nil {
			return i, fmt.Errorf("booking %q on %s: %w", draft.Description, draft.Date, err)
		}
		logger.Debug("Booked expense", "id", created.ID, "reference", draft.Reference)
		if progress != nil {
			progress()
		}
	}
	return len(drafts), nil
}
