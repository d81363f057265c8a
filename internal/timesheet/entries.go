package timesheet

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

var decimalSixty = decimal.NewFromInt(60)

// WorkedMinutes returns the shift length minus the break. A shift ending before it
// starts runs past midnight.
func WorkedMinutes(e model.TimeEntry) (int, error) {
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return 0, err
	}
	if end <= start {
		end += 24 * 60
	}
	worked := end - start - e.BreakMinutes
	if worked < 0 {
		return 0, common.NewValidationError("pauze_minuten", "pauze is langer dan de dienst")
	}
	return worked, nil
}

// Validate checks an entry before it is sent.
func Validate(e model.TimeEntry) error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if e.BreakMinutes < 0 {
		return common.NewValidationError("pauze_minuten", "mag niet negatief zijn")
	}
	if e.KMEnd != 0 && e.KMEnd < e.KMStart {
		return common.NewValidationError("km_eind", "eindstand is lager dan beginstand")
	}
	_, err := WorkedMinutes(e)
	return err
}

// Prepare validates an entry and fills in its week number and year from its date.
func Prepare(e model.TimeEntry) (model.TimeEntry, error) {
	if err := Validate(e); err != nil {
		return e, err
	}
	date, _ := ParseDate(e.Date)
	week := WeekOf(date)
	e.WeekNumber = week.Number
	e.Year = week.Year
	return e, nil
}

// WeekTotals aggregates the entries of one week.
type WeekTotals struct {
	Entries  []model.TimeEntry
	Week     Week
	Minutes  int
	KM       int
	Concepts int
}

// Submittable reports whether the week still has concept entries.
func (w WeekTotals) Submittable() bool {
	return w.Concepts > 0
}

// GroupByWeek buckets entries by ISO week, newest week first and entries by date
// within a week. Entries with an unreadable date are reported as an error.
func GroupByWeek(entries []model.TimeEntry) ([]WeekTotals, error) {
	byWeek := make(map[Week]*WeekTotals)
	for _, e := range entries {
		date, err := ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		week := WeekOf(date)
		totals, ok := byWeek[week]
		if !ok {
			totals = &WeekTotals{Week: week}
			byWeek[week] = totals
		}
		minutes, err := WorkedMinutes(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		totals.Entries = append(totals.Entries, e)
		totals.Minutes += minutes
		totals.KM += e.Kilometers()
		if e.Status == model.EntryConcept {
			totals.Concepts++
		}
	}

	weeks := make([]WeekTotals, 0, len(byWeek))
	for _, totals := range byWeek {
		sort.SliceStable(totals.Entries, func(i, j int) bool {
			if totals.Entries[i].Date != totals.Entries[j].Date {
				return totals.Entries[i].Date < totals.Entries[j].Date
			}
			return totals.Entries[i].StartTime < totals.Entries[j].StartTime
		})
		weeks = append(weeks, *totals)
	}
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].Week.Year != weeks[j].Week.Year {
			return weeks[i].Week.Year > weeks[j].Week.Year
		}
		return weeks[i].Week.Number > weeks[j].Week.Number
	})
	return weeks, nil
}
