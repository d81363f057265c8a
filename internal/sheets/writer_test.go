package sheets

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

func findRow(values [][]any, label string) int {
	for i, row := range values {
		if len(row) > 0 && row[0] == label {
			return i
		}
	}
	return -1
}

func TestBuildRows(t *testing.T) {
	report := service.FinancialReport{
		Year:   2025,
		Period: model.PeriodQuarter,
		Summary: model.ExpenseSummary{
			Year:     2025,
			Count:    3,
			Total:    decimal.RequireFromString("424.85"),
			TotalBTW: decimal.RequireFromString("73.73"),
			ByCategory: map[string]decimal.Decimal{
				"Brandstof": decimal.RequireFromString("300.00"),
				"Overig":    decimal.RequireFromString("24.85"),
				"Kantoor":   decimal.RequireFromString("100.00"),
			},
		},
		Revenue: []model.RevenuePoint{
			{Label: "Q1", Revenue: decimal.NewFromInt(1000), Expenses: decimal.NewFromInt(400), Profit: decimal.NewFromInt(600)},
			{Label: "Q2", Revenue: decimal.NewFromInt(1200), Expenses: decimal.NewFromInt(500), Profit: decimal.NewFromInt(700)},
		},
	}

	values := buildRows(report)

	assert.Equal(t, []any{"Kantoor rapportage", "Jaar 2025"}, values[0])

	total := findRow(values, "Totaal uitgaven")
	require.NotEqual(t, -1, total)
	assert.InDelta(t, 424.85, values[total][1], 0.001)

	count := findRow(values, "Aantal uitgaven")
	require.NotEqual(t, -1, count)
	assert.Equal(t, 3, values[count][1])

	categories := findRow(values, "Uitgaven per categorie")
	require.NotEqual(t, -1, categories)
	assert.Equal(t, "Brandstof", values[categories+2][0], "largest category first")
	assert.Equal(t, "Kantoor", values[categories+3][0])
	assert.Equal(t, "Overig", values[categories+4][0])

	revenue := findRow(values, "Omzet per kwartaal")
	require.NotEqual(t, -1, revenue)
	assert.Equal(t, []any{"Periode", "Omzet", "Uitgaven", "Winst"}, values[revenue+1])
	assert.Equal(t, []any{"Q2", 1200.0, 500.0, 700.0}, values[revenue+3])
	assert.Len(t, values, revenue+4)
}

func TestBuildRows_EmptyReport(t *testing.T) {
	values := buildRows(service.FinancialReport{Year: 2024})

	assert.NotEqual(t, -1, findRow(values, "Omzet per maand"))
	assert.Equal(t, "Periode", values[len(values)-1][0])
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestMockWriter(t *testing.T) {
	var writer service.ReportWriter = NewMockWriter()
	require.NoError(t, writer.Write(context.Background(), service.FinancialReport{Year: 2025}))

	mock, ok := writer.(*MockWriter)
	require.True(t, ok)
	assert.Len(t, mock.Calls(), 1)
}
