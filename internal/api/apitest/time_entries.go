package apitest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/kantoor/internal/model"
)

// AddTimeEntry seeds a time entry and returns its id.
// Week and year are derived from the date when unset.
func (s *Server) AddTimeEntry(entry model.TimeEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == 0 {
		entry.ID = s.id()
	}
	normalizeEntry(&entry)
	s.TimeEntries[entry.ID] = &entry
	return entry.ID
}

func normalizeEntry(entry *model.TimeEntry) {
	if entry.Status == "" {
		entry.Status = model.EntryConcept
	}
	if entry.WeekNumber == 0 || entry.Year == 0 {
		if date, err := time.Parse("2006-01-02", entry.Date); err == nil {
			entry.Year, entry.WeekNumber = date.ISOWeek()
		}
	}
	if entry.TotalHours == "" {
		entry.TotalHours = workedHours(*entry)
	}
}

func workedHours(entry model.TimeEntry) string {
	start, err1 := time.Parse("15:04", entry.StartTime)
	end, err2 := time.Parse("15:04", entry.EndTime)
	if err1 != nil || err2 != nil {
		return "0.00"
	}
	minutes := int(end.Sub(start).Minutes()) - entry.BreakMinutes
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}

func (s *Server) timeEntryRoutes(a *gin.RouterGroup) {
	a.GET("/time-entries/", s.listTimeEntries)
	a.POST("/time-entries/", s.createTimeEntry)
	a.POST("/time-entries/submit_week/", s.submitWeek)
	a.GET("/time-entries/week_summary/", s.weekSummary)
	a.GET("/time-entries/history/", s.history)
	a.GET("/time-entries/driver_report/", s.driverReport)
	a.GET("/time-entries/driver_report_years/", s.driverReportYears)
	a.GET("/time-entries/driver_report_pdf/", s.driverReportPDF)
	a.GET("/time-entries/:id/", s.getTimeEntry)
	a.PUT("/time-entries/:id/", s.updateTimeEntry)
	a.DELETE("/time-entries/:id/", s.deleteTimeEntry)
}

func (s *Server) listTimeEntries(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := model.EntryStatus(c.Query("status"))
	week, _ := strconv.Atoi(c.Query("weeknummer"))
	year, _ := strconv.Atoi(c.Query("jaar"))
	var out []model.TimeEntry
	for _, e := range sorted(s.TimeEntries) {
		if status != "" && e.Status != status {
			continue
		}
		if week > 0 && e.WeekNumber != week {
			continue
		}
		if year > 0 && e.Year != year {
			continue
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, paginate(c, out, s.PageSize))
}

func (s *Server) createTimeEntry(c *gin.Context) {
	var entry model.TimeEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	if entry.Date == "" {
		badRequest(c, "datum", "Dit veld is verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.id()
	entry.Status = model.EntryConcept
	entry.WeekNumber, entry.Year, entry.TotalHours = 0, 0, ""
	normalizeEntry(&entry)
	s.TimeEntries[entry.ID] = &entry
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) getTimeEntry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.TimeEntries[id]
	if !exists {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) updateTimeEntry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var entry model.TimeEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, "non_field_errors", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.TimeEntries[id]
	if !exists {
		notFound(c)
		return
	}
	if existing.Status != model.EntryConcept {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Alleen concept-registraties kunnen worden gewijzigd."})
		return
	}
	entry.ID = id
	entry.Status = model.EntryConcept
	entry.WeekNumber, entry.Year, entry.TotalHours = 0, 0, ""
	normalizeEntry(&entry)
	s.TimeEntries[id] = &entry
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteTimeEntry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.TimeEntries[id]; !exists {
		notFound(c)
		return
	}
	delete(s.TimeEntries, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) submitWeek(c *gin.Context) {
	var req model.SubmitWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WeekNumber == 0 || req.Year == 0 {
		badRequest(c, "weeknummer", "Week en jaar zijn verplicht.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.TimeEntries {
		if e.WeekNumber == req.WeekNumber && e.Year == req.Year && e.Status == model.EntryConcept {
			e.Status = model.EntrySubmitted
			count++
		}
	}
	c.JSON(http.StatusOK, model.CountResponse{Count: count})
}

func (s *Server) weekSummary(c *gin.Context) {
	week, _ := strconv.Atoi(c.Query("week"))
	year, _ := strconv.Atoi(c.Query("year"))

	s.mu.Lock()
	defer s.mu.Unlock()
	summary := model.WeekSummary{WeekNumber: week, Year: year, Entries: []model.TimeEntry{}}
	var hours float64
	for _, e := range sorted(s.TimeEntries) {
		if e.WeekNumber != week || e.Year != year {
			continue
		}
		summary.Entries = append(summary.Entries, e)
		summary.TotalKM += e.Kilometers()
		h, _ := strconv.ParseFloat(e.TotalHours, 64)
		hours += h
		if e.Status == model.EntryConcept {
			summary.ConceptCount++
		}
	}
	summary.TotalHours = fmt.Sprintf("%.2f", hours)
	c.JSON(http.StatusOK, summary)
}

func (s *Server) history(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type weekKey struct{ year, week int }
	rows := map[weekKey]*model.WeekHistory{}
	hours := map[weekKey]float64{}
	for _, e := range s.TimeEntries {
		if e.Status == model.EntryConcept {
			continue
		}
		key := weekKey{e.Year, e.WeekNumber}
		row, exists := rows[key]
		if !exists {
			row = &model.WeekHistory{WeekNumber: e.WeekNumber, Year: e.Year, Status: e.Status}
			rows[key] = row
		}
		row.EntryCount++
		h, _ := strconv.ParseFloat(e.TotalHours, 64)
		hours[key] += h
	}

	out := make([]model.WeekHistory, 0, len(rows))
	for key, row := range rows {
		row.TotalHours = fmt.Sprintf("%.2f", hours[key])
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].WeekNumber > out[j].WeekNumber
	})
	c.JSON(http.StatusOK, out)
}

func (s *Server) driverReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		badRequest(c, "year", "Ongeldig jaar.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	report := model.DriverReport{DriverName: "Test Chauffeur", Year: year, Rows: []model.DriverReportRow{}}
	months := map[int]*model.DriverReportRow{}
	monthHours := map[int]float64{}
	var total float64
	for _, e := range s.TimeEntries {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil || date.Year() != year {
			continue
		}
		m := int(date.Month())
		row, exists := months[m]
		if !exists {
			row = &model.DriverReportRow{Month: m}
			months[m] = row
		}
		row.Days++
		row.TotalKM += e.Kilometers()
		h, _ := strconv.ParseFloat(e.TotalHours, 64)
		monthHours[m] += h
		total += h
		report.TotalKM += e.Kilometers()
	}
	for m := 1; m <= 12; m++ {
		if row, exists := months[m]; exists {
			row.TotalHours = fmt.Sprintf("%.2f", monthHours[m])
			report.Rows = append(report.Rows, *row)
		}
	}
	report.TotalHours = fmt.Sprintf("%.2f", total)
	c.JSON(http.StatusOK, report)
}

func (s *Server) driverReportYears(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int]bool{}
	years := []int{}
	for _, e := range s.TimeEntries {
		if date, err := time.Parse("2006-01-02", e.Date); err == nil && !seen[date.Year()] {
			seen[date.Year()] = true
			years = append(years, date.Year())
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	c.JSON(http.StatusOK, gin.H{"years": years})
}

func (s *Server) driverReportPDF(c *gin.Context) {
	year := c.Query("year")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rittenrapport-%s.pdf"`, year))
	c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4\n% report "+year+"\n"))
}
