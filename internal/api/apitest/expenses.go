package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/model"
)

// AddExpense seeds an expense and returns its id.
func (s *Server) AddExpense(expense model.Expense) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expense.ID == 0 {
		expense.ID = s.id()
	}
	s.Expenses[expense.ID] = &expense
	return expense.ID
}

// AddCategory seeds an expense category and returns its id.
func (s *Server) AddCategory(category model.ExpenseCategory) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category.ID == 0 {
		category.ID = s.id()
	}
	s.Categories[category.ID] = &category
	return category.ID
}

// AddLeave seeds a leave request.
func (s *Server) AddLeave(req model.LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == 0 {
		req.ID = s.id()
	}
	s.Leave = append(s.Leave, req)
}

func (s *Server) expenseRoutes(a *gin.RouterGroup) {
	a.GET("/expenses/", s.listExpenses)
	a.POST("/expenses/", s.createExpense)
	a.GET("/expenses/summary/", s.expenseSummary)
	a.GET("/expenses/categories/", s.listCategories)
	a.POST("/expenses/categories/", s.createCategory)
	a.DELETE("/expenses/categories/:id/", s.deleteCategory)
	a.GET("/expenses/:id/", s.getExpense)
	a.PUT("/expenses/:id/", s.updateExpense)
	a.DELETE("/expenses/:id/", s.deleteExpense)

	a.GET("/revenue/", s.revenue)
}

func (s *Server) categoryName(id *int) string {
	if id == nil {
		return ""
	}
	if category, exists := s.Categories[*id]; exists {
		return category.Name
	}
	return ""
}

func (s *Server) listExpenses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := c.Query("date_from"), c.Query("date_to")
	category, _ := strconv.Atoi(c.Query("category"))
	var out []model.Expense
	for _, e := range sorted(s.Expenses) {
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		if category > 0 && (e.Category == nil || *e.Category != category) {
			continue
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, paginate(c, out, s.PageSize))
}

func (s *Server) createExpense(c *gin.Context) {
	var expense model.Expense
	if err := c.ShouldBindJSON(&expense); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	if expense.Description == "" {
		badRequest(c, "description", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expense.ID = s.id()
	expense.CategoryName = s.categoryName(expense.Category)
	s.Expenses[expense.ID] = &expense
	c.JSON(http.StatusCreated, expense)
}

func (s *Server) getExpense(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expense, exists := s.Expenses[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *Server) updateExpense(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var expense model.Expense
	if err := c.ShouldBindJSON(&expense); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Expenses[id]; !exists {
		notFound(c)
		return
	}
	expense.ID = id
	expense.CategoryName = s.categoryName(expense.Category)
	s.Expenses[id] = &expense
	c.JSON(http.StatusOK, expense)
}

func (s *Server) deleteExpense(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Expenses[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Expenses, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, paginate(c, sorted(s.Categories), s.PageSize))
}

func (s *Server) createCategory(c *gin.Context) {
	var category model.ExpenseCategory
	if err := c.ShouldBindJSON(&category); err != nil || category.Name == "" {
		badRequest(c, "name", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	category.ID = s.id()
	s.Categories[category.ID] = &category
	c.JSON(http.StatusCreated, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Categories[id]; !exists {
		notFound(c)
		return
	}
	delete(s.Categories, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) expenseSummary(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		badRequest(c, "year", "Ongeldig jaar.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := model.ExpenseSummary{Year: year, ByCategory: map[string]decimal.Decimal{}}
	for _, e := range s.Expenses {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil || date.Year() != year {
			continue
		}
		name := e.CategoryName
		if name == "" {
			name = "Overig"
		}
		summary.ByCategory[name] = summary.ByCategory[name].Add(e.Amount)
		summary.Total = summary.Total.Add(e.Amount)
		summary.TotalBTW = summary.TotalBTW.Add(e.BTWAmount)
		summary.Count++
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) revenue(c *gin.Context) {
	period := model.PeriodType(c.Query("period"))
	if !period.Valid() {
		badRequest(c, "period", "Ongeldige periode.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	points := s.Revenue[string(period)+"/"+c.Query("year")]
	if points == nil {
		points = []model.RevenuePoint{}
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) listLeave(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LeaveRequest
	if year > 0 && month > 0 {
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		for _, req := range s.Leave {
			if req.StartDate <= last && req.EndDate >= first {
				out = append(out, req)
			}
		}
	} else {
		out = append(out, s.Leave...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	c.JSON(http.StatusOK, paginate(c, out, s.PageSize))
}
