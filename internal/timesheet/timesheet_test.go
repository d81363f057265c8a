package timesheet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

func TestWeekOf(t *testing.T) {
	tests := []struct {
		date string
		want Week
	}{
		{date: "2025-08-25", want: Week{Year: 2025, Number: 35}},
		{date: "2025-08-31", want: Week{Year: 2025, Number: 35}},
		{date: "2025-01-01", want: Week{Year: 2025, Number: 1}},
		{date: "2024-12-30", want: Week{Year: 2025, Number: 1}},
		{date: "2021-01-03", want: Week{Year: 2020, Number: 53}},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, WeekOf(d))
		})
	}
}

func TestWeek_Monday(t *testing.T) {
	for _, w := range []Week{{2025, 1}, {2025, 35}, {2020, 53}, {2026, 52}} {
		monday := w.Monday()
		assert.Equal(t, time.Monday, monday.Weekday(), w.String())
		assert.Equal(t, w, WeekOf(monday), w.String())
		assert.Equal(t, w, WeekOf(w.Days()[6]), w.String())
	}
	assert.Equal(t, "2025-08-25", Week{2025, 35}.Monday().Format("2006-01-02"))
}

func TestWeek_PrevNext(t *testing.T) {
	assert.Equal(t, Week{2024, 52}, Week{2025, 1}.Prev())
	assert.Equal(t, Week{2021, 1}, Week{2020, 53}.Next())
}

func TestWeek_Validate(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2025))

	require.NoError(t, Week{2020, 53}.Validate())
	require.ErrorIs(t, Week{2025, 53}.Validate(), common.ErrValidation)
	require.ErrorIs(t, Week{2025, 0}.Validate(), common.ErrValidation)
	require.ErrorIs(t, Week{1999, 10}.Validate(), common.ErrValidation)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "7:30", want: 450},
		{in: "0:05", want: 5},
		{in: "12:00", want: 720},
		{in: "7,5", want: 450},
		{in: "7.25", want: 435},
		{in: "8", want: 480},
		{in: "7:5", wantErr: true},
		{in: "7:60", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "", wantErr: true},
		{in: "acht", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "7:30", FormatDuration(450))
	assert.Equal(t, "0:05", FormatDuration(5))
	assert.Equal(t, "-1:15", FormatDuration(-75))

	for _, m := range []int{0, 59, 60, 451, 2400} {
		back, err := ParseDuration(FormatDuration(m))
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
}

func TestWorkedMinutes(t *testing.T) {
	tests := []struct {
		name    string
		entry   model.TimeEntry
		want    int
		wantErr bool
	}{
		{name: "day shift", entry: model.TimeEntry{StartTime: "07:00", EndTime: "16:30", BreakMinutes: 30}, want: 540},
		{name: "with seconds", entry: model.TimeEntry{StartTime: "07:00:00", EndTime: "15:00:00"}, want: 480},
		{name: "night shift", entry: model.TimeEntry{StartTime: "22:00", EndTime: "06:00", BreakMinutes: 45}, want: 435},
		{name: "break too long", entry: model.TimeEntry{StartTime: "08:00", EndTime: "09:00", BreakMinutes: 90}, wantErr: true},
		{name: "bad time", entry: model.TimeEntry{StartTime: "25:00", EndTime: "09:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WorkedMinutes(tt.entry)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepare(t *testing.T) {
	e, err := Prepare(model.TimeEntry{Date: "2025-08-27", StartTime: "06:00", EndTime: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, 35, e.WeekNumber)
	assert.Equal(t, 2025, e.Year)

	_, err = Prepare(model.TimeEntry{Date: "27-08-2025", StartTime: "06:00", EndTime: "14:00"})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = Prepare(model.TimeEntry{Date: "2025-08-27", StartTime: "06:00", EndTime: "14:00", KMStart: 500, KMEnd: 400})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestGroupByWeek(t *testing.T) {
	entries := []model.TimeEntry{
		{ID: 1, Date: "2025-08-26", StartTime: "06:00", EndTime: "14:00", Status: model.EntryConcept, KMStart: 100, KMEnd: 250},
		{ID: 2, Date: "2025-09-01", StartTime: "06:00", EndTime: "14:30", BreakMinutes: 30, Status: model.EntryConcept},
		{ID: 3, Date: "2025-08-25", StartTime: "07:00", EndTime: "16:30", BreakMinutes: 30, Status: model.EntrySubmitted},
	}

	weeks, err := GroupByWeek(entries)
	require.NoError(t, err)
	require.Len(t, weeks, 2)

	assert.Equal(t, Week{2025, 36}, weeks[0].Week)
	assert.Equal(t, 480, weeks[0].Minutes)

	assert.Equal(t, Week{2025, 35}, weeks[1].Week)
	assert.Equal(t, 1020, weeks[1].Minutes)
	assert.Equal(t, 150, weeks[1].KM)
	assert.Equal(t, 1, weeks[1].Concepts)
	assert.True(t, weeks[1].Submittable())
	assert.Equal(t, 3, weeks[1].Entries[0].ID, "entries are ordered by date")

	_, err = GroupByWeek([]model.TimeEntry{{ID: 9, Date: "gisteren"}})
	require.Error(t, err)
}

func TestRecordAndSubmit(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	for _, date := range []string{"2025-08-25", "2025-08-26", "2025-08-28"} {
		created, err := Record(ctx, client, model.TimeEntry{Date: date, StartTime: "06:00", EndTime: "14:00"})
		require.NoError(t, err)
		assert.Equal(t, 35, created.WeekNumber)
		assert.Equal(t, model.EntryConcept, created.Status)
	}

	count, err := Submit(ctx, client, Week{Year: 2025, Number: 35})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	srv.Lock()
	for _, e := range srv.TimeEntries {
		assert.Equal(t, model.EntrySubmitted, e.Status)
	}
	srv.Unlock()

	_, err = Submit(ctx, client, Week{Year: 2025, Number: 53})
	require.ErrorIs(t, err, common.ErrValidation)
}
