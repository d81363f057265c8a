package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const (
	expensesPath          = "/api/expenses/"
	expenseCategoriesPath = "/api/expenses/categories/"
	revenuePath           = "/api/revenue/"
)

// ListExpenses returns one page of expenses.
func (c *Client) ListExpenses(ctx context.Context, filter model.ExpenseFilter) (*model.Page[model.Expense], error) {
	query := url.Values{}
	setIfNotEmpty(query, "date_from", filter.From)
	setIfNotEmpty(query, "date_to", filter.To)
	setIfPositive(query, "category", filter.Category)

	var page model.Page[model.Expense]
	if err := c.get(ctx, expensesPath, pageQuery(query, filter.Page), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetExpense fetches one expense.
func (c *Client) GetExpense(ctx context.Context, id int) (*model.Expense, error) {
	var expense model.Expense
	if err := c.get(ctx, fmt.Sprintf("%s%d/", expensesPath, id), nil, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func validateExpense(expense model.Expense) error {
	if expense.Description == "" {
		return common.NewValidationError("description", "is required")
	}
	if expense.Date == "" {
		return common.NewValidationError("date", "is required")
	}
	if !expense.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}
	return nil
}

// CreateExpense books a new expense.
func (c *Client) CreateExpense(ctx context.Context, expense model.Expense) (*model.Expense, error) {
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	var created model.Expense
	if err := c.send(ctx, http.MethodPost, expensesPath, expense, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateExpense replaces an expense.
func (c *Client) UpdateExpense(ctx context.Context, expense model.Expense) (*model.Expense, error) {
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	var updated model.Expense
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("%s%d/", expensesPath, expense.ID), expense, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", expensesPath, id), nil, nil)
}

// ListExpenseCategories returns every expense category.
func (c *Client) ListExpenseCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	return collect[model.ExpenseCategory](ctx, c, expenseCategoriesPath, nil)
}

// CreateExpenseCategory stores a new category.
func (c *Client) CreateExpenseCategory(ctx context.Context, category model.ExpenseCategory) (*model.ExpenseCategory, error) {
	if category.Name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	var created model.ExpenseCategory
	if err := c.send(ctx, http.MethodPost, expenseCategoriesPath, category, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteExpenseCategory removes a category.
func (c *Client) DeleteExpenseCategory(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", expenseCategoriesPath, id), nil, nil)
}

// ExpenseSummary totals the expenses of a year per category.
func (c *Client) ExpenseSummary(ctx context.Context, year int) (*model.ExpenseSummary, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	var summary model.ExpenseSummary
	if err := c.get(ctx, expensesPath+"summary/", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Revenue returns the revenue series of a year bucketed by period.
func (c *Client) Revenue(ctx context.Context, period model.PeriodType, year int) ([]model.RevenuePoint, error) {
	if !period.Valid() {
		return nil, common.NewValidationError("period", fmt.Sprintf("unknown period %q", period))
	}
	query := url.Values{}
	query.Set("period", string(period))
	query.Set("year", strconv.Itoa(year))

	var points []model.RevenuePoint
	if err := c.get(ctx, revenuePath, query, &points); err != nil {
		return nil, err
	}
	return points, nil
}
