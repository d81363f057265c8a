package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		expense model.Expense
	}{
		{name: "no description", expense: model.Expense{Date: "2025-08-01", Amount: decimal.NewFromInt(10)}},
		{name: "no date", expense: model.Expense{Description: "Tol", Amount: decimal.NewFromInt(10)}},
		{name: "zero amount", expense: model.Expense{Description: "Tol", Date: "2025-08-01"}},
		{name: "negative amount", expense: model.Expense{Description: "Tol", Date: "2025-08-01", Amount: decimal.NewFromInt(-3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			client := srv.Client(t)

			_, err := client.CreateExpense(context.Background(), tt.expense)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Empty(t, srv.Requests())
		})
	}
}

func TestExpenses(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	category, err := client.CreateExpenseCategory(ctx, model.ExpenseCategory{Name: "Brandstof"})
	require.NoError(t, err)

	diesel, err := client.CreateExpense(ctx, model.Expense{
		Date:        "2025-08-04",
		Description: "Diesel DAF XF",
		Supplier:    "Tankstation A15",
		Category:    &category.ID,
		Amount:      mustDecimal(t, "412.35"),
		BTWAmount:   mustDecimal(t, "71.57"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Brandstof", diesel.CategoryName)
	assert.True(t, mustDecimal(t, "412.35").Equal(diesel.Amount))

	_, err = client.CreateExpense(ctx, model.Expense{Date: "2025-07-15", Description: "Parkeren", Amount: mustDecimal(t, "12.50")})
	require.NoError(t, err)
	_, err = client.CreateExpense(ctx, model.Expense{Date: "2024-12-31", Description: "Tol", Amount: mustDecimal(t, "8.00")})
	require.NoError(t, err)

	page, err := client.ListExpenses(ctx, model.ExpenseFilter{From: "2025-08-01", To: "2025-08-31"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, diesel.ID, page.Results[0].ID)

	requests := srv.RequestsTo(http.MethodGet, "/api/expenses/")
	require.Len(t, requests, 1)
	assert.Equal(t, "date_from=2025-08-01&date_to=2025-08-31", requests[0].Query)

	page, err = client.ListExpenses(ctx, model.ExpenseFilter{Category: category.ID})
	require.NoError(t, err)
	assert.Len(t, page.Results, 1)

	summary, err := client.ExpenseSummary(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.True(t, mustDecimal(t, "424.85").Equal(summary.Total), summary.Total.String())
	assert.True(t, mustDecimal(t, "412.35").Equal(summary.ByCategory["Brandstof"]))
	assert.True(t, mustDecimal(t, "12.50").Equal(summary.ByCategory["Overig"]))

	diesel.Description = "Diesel DAF XF 105"
	updated, err := client.UpdateExpense(ctx, *diesel)
	require.NoError(t, err)
	assert.Equal(t, "Diesel DAF XF 105", updated.Description)

	require.NoError(t, client.DeleteExpense(ctx, diesel.ID))
	_, err = client.GetExpense(ctx, diesel.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	categories, err := client.ListExpenseCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.NoError(t, client.DeleteExpenseCategory(ctx, category.ID))
}

func TestRevenue(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	srv.Lock()
	srv.Revenue["quarter/2025"] = []model.RevenuePoint{
		{Label: "Q1", Revenue: mustDecimal(t, "120000"), Expenses: mustDecimal(t, "80000"), Profit: mustDecimal(t, "40000")},
		{Label: "Q2", Revenue: mustDecimal(t, "130000"), Expenses: mustDecimal(t, "95000"), Profit: mustDecimal(t, "35000")},
	}
	srv.Unlock()

	points, err := client.Revenue(ctx, model.PeriodQuarter, 2025)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Q2", points[1].Label)
	assert.True(t, mustDecimal(t, "35000").Equal(points[1].Profit))

	points, err = client.Revenue(ctx, model.PeriodWeek, 2025)
	require.NoError(t, err)
	assert.Empty(t, points)

	_, err = client.Revenue(ctx, "decade", 2025)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestLeaveRequests(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	srv.Lock()
	srv.PageSize = 1
	srv.Unlock()
	srv.AddLeave(model.LeaveRequest{UserName: "Jan", LeaveType: "vakantie", StartDate: "2025-07-28", EndDate: "2025-08-08", Status: "goedgekeurd"})
	srv.AddLeave(model.LeaveRequest{UserName: "Piet", LeaveType: "bijzonder", StartDate: "2025-08-15", EndDate: "2025-08-15", Status: "aangevraagd"})
	srv.AddLeave(model.LeaveRequest{UserName: "Kees", LeaveType: "vakantie", StartDate: "2025-09-01", EndDate: "2025-09-05", Status: "goedgekeurd"})

	requests, err := client.LeaveRequests(context.Background(), 2025, 8)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "Jan", requests[0].UserName)
	assert.Equal(t, "Piet", requests[1].UserName)
}
