package bank

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/model"
)

func bankTx(id, date, counterparty, amount string) model.BankTransaction {
	d, _ := time.Parse("2006-01-02", date)
	return model.BankTransaction{
		ID:           id,
		Date:         d,
		Name:         "BEA " + counterparty,
		Counterparty: counterparty,
		AccountID:    "NL91INGB0001234567",
		Amount:       decimal.RequireFromString(amount),
	}
}

func TestDrafts(t *testing.T) {
	category := 4
	booked := bankTx("old", "2025-08-01", "Kpn", "-45.00")
	txns := []model.BankTransaction{
		bankTx("3", "2025-08-20", "Shell", "-125.00"),
		bankTx("1", "2025-08-15", "Albert Heijn", "-25.50"),
		bankTx("2", "2025-08-16", "Klant", "1500.00"),
		bankTx("1-dup", "2025-08-15", "Albert Heijn", "-25.50"),
		booked,
		{ID: "4", Date: time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC), Name: " TOL ", Amount: decimal.RequireFromString("-3.20")},
	}

	drafts := Drafts(txns, DraftOptions{
		Category: &category,
		Booked:   map[string]bool{booked.ID: true},
	})

	require.Len(t, drafts, 3)
	assert.Equal(t, "Albert Heijn", drafts[0].Description)
	assert.Equal(t, "2025-08-15", drafts[0].Date)
	assert.Equal(t, "25.50", drafts[0].Amount.StringFixed(2))
	assert.Equal(t, "1", drafts[0].Reference)
	assert.Equal(t, &category, drafts[0].Category)

	assert.Equal(t, "Shell", drafts[1].Supplier)
	assert.Equal(t, "TOL", drafts[2].Description, "falls back to the bank description")
	assert.Empty(t, drafts[2].Supplier)
}

func TestDrafts_NoDebits(t *testing.T) {
	drafts := Drafts([]model.BankTransaction{bankTx("1", "2025-08-01", "Klant", "10.00")}, DraftOptions{})
	assert.Empty(t, drafts)
}

func TestBook(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)

	drafts := Drafts([]model.BankTransaction{
		bankTx("1", "2025-08-15", "Albert Heijn", "-25.50"),
		bankTx("2", "2025-08-20", "Shell", "-125.00"),
	}, DraftOptions{})

	calls := 0
	created, err := Book(context.Background(), client, drafts, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, calls)
	assert.Len(t, srv.Expenses, 2)
}

func TestBook_StopsAtFirstFailure(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	srv.Fail(http.MethodPost, "/api/expenses/", http.StatusBadRequest, map[string]any{"detail": "Ongeldige categorie."})

	drafts := Drafts([]model.BankTransaction{
		bankTx("1", "2025-08-15", "Albert Heijn", "-25.50"),
		bankTx("2", "2025-08-20", "Shell", "-125.00"),
	}, DraftOptions{})

	created, err := Book(context.Background(), client, drafts, nil)
	assert.Equal(t, 0, created)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Ongeldige categorie.", apiErr.Message)
	assert.Empty(t, srv.Expenses)
}

func TestBook_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := Book(ctx, nil, []model.Expense{{Description: "x"}}, nil)
	assert.Equal(t, 0, created)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDrafts_ReferenceFallsBackToHash(t *testing.T) {
	tx := bankTx("", "2025-08-15", "Albert Heijn", "-25.50")

	drafts := Drafts([]model.BankTransaction{tx}, DraftOptions{})
	require.Len(t, drafts, 1)
	assert.Equal(t, tx.Hash(), drafts[0].Reference)

	again := Drafts([]model.BankTransaction{tx}, DraftOptions{Booked: map[string]bool{drafts[0].Reference: true}})
	assert.Empty(t, again)
}
