// Package timesheet does the calendar and duration arithmetic of driver time entries.
//
// Weeks are ISO-8601 weeks: they start on Monday and week 1 holds the year's first
// Thursday.
package timesheet

import (
	"fmt"
	"time"

	"github.com/Veraticus/kantoor/internal/common"
)

const dateLayout = "2006-01-02"

// Week identifies an ISO week.
type Week struct {
	Year   int
	Number int
}

func (w Week) String() string {
	return fmt.Sprintf("week %d %d", w.Number, w.Year)
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	year, number := t.ISOWeek()
	return Week{Year: year, Number: number}
}

// CurrentWeek returns the ISO week of now.
func CurrentWeek(now time.Time) Week {
	return WeekOf(now)
}

// WeeksInYear returns 52 or 53.
func WeeksInYear(year int) int {
	_, last := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return last
}

// Validate checks the week number against its year.
func (w Week) Validate() error {
	if w.Year < 2000 {
		return common.NewValidationError("jaar", fmt.Sprintf("%d is geen geldig jaar", w.Year))
	}
	if w.Number < 1 || w.Number > WeeksInYear(w.Year) {
		return common.NewValidationError("weeknummer", fmt.Sprintf("%d heeft geen week %d", w.Year, w.Number))
	}
	return nil
}

// Monday returns the first day of the week, in UTC.
func (w Week) Monday() time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(w.Number-1)*7)
}

// Days returns Monday through Sunday.
func (w Week) Days() []time.Time {
	monday := w.Monday()
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// Prev returns the week before.
func (w Week) Prev() Week {
	return WeekOf(w.Monday().AddDate(0, 0, -7))
}

// Next returns the week after.
func (w Week) Next() Week {
	return WeekOf(w.Monday().AddDate(0, 0, 7))
}

// ParseDate reads an entry date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, common.NewValidationError("datum", fmt.Sprintf("ongeldige datum %q", s))
	}
	return t, nil
}
