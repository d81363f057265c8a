// Package leave lays out the leave calendar of one month.
package leave

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/kantoor/internal/model"
)

const dateLayout = "2006-01-02"

// Day is one cell of the month grid.
type Day struct {
	Date     time.Time
	Requests []model.LeaveRequest
	// InMonth is false for the leading and trailing days of neighbouring months.
	InMonth bool
	Weekend bool
	Today   bool
}

// Month is a calendar grid, one row per week, Monday first.
type Month struct {
	Weeks [][]Day
	Year  int
	Month time.Month
}

// BuildMonth lays out month with every request that overlaps each day. Requests with
// unreadable dates are skipped; a missing end date means a single day.
func BuildMonth(year int, month time.Month, requests []model.LeaveRequest, today time.Time) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -((int(first.Weekday()) + 6) % 7))
	last := first.AddDate(0, 1, -1)
	end := last.AddDate(0, 0, (7-int(last.Weekday()))%7)

	spans := parseSpans(requests)
	todayKey := today.Format(dateLayout)

	m := Month{Year: year, Month: month}
	var week []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := Day{
			Date:    d,
			InMonth: d.Month() == month,
			Weekend: d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			Today:   !today.IsZero() && d.Format(dateLayout) == todayKey,
		}
		for _, s := range spans {
			if !d.Before(s.from) && !d.After(s.to) {
				day.Requests = append(day.Requests, s.request)
			}
		}
		week = append(week, day)
		if len(week) == 7 {
			m.Weeks = append(m.Weeks, week)
			week = nil
		}
	}
	return m
}

type span struct {
	from    time.Time
	to      time.Time
	request model.LeaveRequest
}

func parseSpans(requests []model.LeaveRequest) []span {
	spans := make([]span, 0, len(requests))
	for _, r := range requests {
		from, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			continue
		}
		to := from
		if r.EndDate != "" {
			if to, err = time.Parse(dateLayout, r.EndDate); err != nil || to.Before(from) {
				continue
			}
		}
		spans = append(spans, span{from: from, to: to, request: r})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if !spans[i].from.Equal(spans[j].from) {
			return spans[i].from.Before(spans[j].from)
		}
		return spans[i].request.UserName < spans[j].request.UserName
	})
	return spans
}

// Absent returns who is on leave on date, sorted by name.
func (m Month) Absent(date time.Time) []model.LeaveRequest {
	key := date.Format(dateLayout)
	for _, week := range m.Weeks {
		for _, day := range week {
			if day.Date.Format(dateLayout) == key {
				out := append([]model.LeaveRequest(nil), day.Requests...)
				sort.SliceStable(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
				return out
			}
		}
	}
	return nil
}

// WorkdaysOff counts the weekdays within the month each person is on leave.
func (m Month) WorkdaysOff() map[string]int {
	counts := make(map[string]int)
	for _, week := range m.Weeks {
		for _, day := range week {
			if !day.InMonth || day.Weekend {
				continue
			}
			seen := make(map[string]bool)
			for _, r := range day.Requests {
				if !seen[r.UserName] {
					seen[r.UserName] = true
					counts[r.UserName]++
				}
			}
		}
	}
	return counts
}

// Title is the Dutch month heading, e.g. "augustus 2025".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", MonthName(m.Month), m.Year)
}

var monthNames = []string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

// MonthName returns the Dutch name of a month.
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return month.String()
	}
	return monthNames[month-1]
}

// Source lists the leave requests of a month.
type Source interface {
	LeaveRequests(ctx context.Context, year, month int) ([]model.LeaveRequest, error)
}

// Load fetches the requests of a month and lays out its grid.
func Load(ctx context.Context, src Source, year int, month time.Month, today time.Time) (Month, error) {
	requests, err := src.LeaveRequests(ctx, year, int(month))
	if err != nil {
		return Month{}, err
	}
	return BuildMonth(year, month, requests, today), nil
}
