package timesheet

import (
	"context"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

// Backend is the slice of the time entry API the weekly flow needs.
type Backend interface {
	CreateTimeEntry(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error)
	SubmitWeek(ctx context.Context, week, year int) (int, error)
}

// Record validates an entry, stamps its week and creates it.
func Record(ctx context.Context, backend Backend, e model.TimeEntry) (*model.TimeEntry, error) {
	e, err := Prepare(e)
	if err != nil {
		return nil, err
	}
	if e.Status == "" {
		e.Status = model.EntryConcept
	}
	return backend.CreateTimeEntry(ctx, e)
}

// Submit submits the concept entries of a week and returns how many were submitted.
func Submit(ctx context.Context, backend Backend, week Week) (int, error) {
	if err := week.Validate(); err != nil {
		return 0, err
	}
	count, err := backend.SubmitWeek(ctx, week.Number, week.Year)
	if err != nil {
		return 0, err
	}
	common.Component("timesheet").Info("Submitted week", "week", week.Number, "year", week.Year, "entries", count)
	return count, nil
}
