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

const timeEntriesPath = "/api/time-entries/"

func timeEntryPath(id int) string {
	return fmt.Sprintf("%s%d/", timeEntriesPath, id)
}

func weekQuery(week, year int) (url.Values, error) {
	if week < 1 || week > 53 {
		return nil, common.NewValidationError("weeknummer", fmt.Sprintf("%d is not a week number", week))
	}
	if year < 2000 {
		return nil, common.NewValidationError("jaar", fmt.Sprintf("%d is not a valid year", year))
	}
	query := url.Values{}
	query.Set("week", strconv.Itoa(week))
	query.Set("year", strconv.Itoa(year))
	return query, nil
}

// ListTimeEntries returns one page of time entries.
func (c *Client) ListTimeEntries(ctx context.Context, filter model.TimeEntryFilter) (*model.Page[model.TimeEntry], error) {
	query := url.Values{}
	setIfNotEmpty(query, "status", string(filter.Status))
	setIfPositive(query, "weeknummer", filter.WeekNumber)
	setIfPositive(query, "jaar", filter.Year)

	var page model.Page[model.TimeEntry]
	if err := c.get(ctx, timeEntriesPath, pageQuery(query, filter.Page), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTimeEntry fetches one time entry.
func (c *Client) GetTimeEntry(ctx context.Context, id int) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := c.get(ctx, timeEntryPath(id), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateTimeEntry records a new shift.
func (c *Client) CreateTimeEntry(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error) {
	var created model.TimeEntry
	if err := c.send(ctx, http.MethodPost, timeEntriesPath, entry, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTimeEntry replaces a time entry.
func (c *Client) UpdateTimeEntry(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error) {
	var updated model.TimeEntry
	if err := c.send(ctx, http.MethodPut, timeEntryPath(entry.ID), entry, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTimeEntry removes a time entry.
func (c *Client) DeleteTimeEntry(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, timeEntryPath(id), nil, nil)
}

// SubmitWeek submits every concept entry of a week and returns how many were submitted.
func (c *Client) SubmitWeek(ctx context.Context, week, year int) (int, error) {
	if _, err := weekQuery(week, year); err != nil {
		return 0, err
	}
	var resp model.CountResponse
	req := model.SubmitWeekRequest{WeekNumber: week, Year: year}
	if err := c.send(ctx, http.MethodPost, timeEntriesPath+"submit_week/", req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// WeekSummary aggregates the entries of one week.
func (c *Client) WeekSummary(ctx context.Context, week, year int) (*model.WeekSummary, error) {
	query, err := weekQuery(week, year)
	if err != nil {
		return nil, err
	}
	var summary model.WeekSummary
	if err := c.get(ctx, timeEntriesPath+"week_summary/", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// History lists submitted weeks.
func (c *Client) History(ctx context.Context) ([]model.WeekHistory, error) {
	var history []model.WeekHistory
	if err := c.get(ctx, timeEntriesPath+"history/", nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// DriverReport returns the yearly report of the current driver.
func (c *Client) DriverReport(ctx context.Context, year int) (*model.DriverReport, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	var report model.DriverReport
	if err := c.get(ctx, timeEntriesPath+"driver_report/", query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DriverReportYears lists the years that have entries.
func (c *Client) DriverReportYears(ctx context.Context) ([]int, error) {
	var resp struct {
		Years []int `json:"years"`
	}
	if err := c.get(ctx, timeEntriesPath+"driver_report_years/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Years, nil
}

// DriverReportPDF downloads the yearly report rendered by the backend.
func (c *Client) DriverReportPDF(ctx context.Context, year int) (*Blob, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	return c.download(ctx, timeEntriesPath+"driver_report_pdf/", query)
}
