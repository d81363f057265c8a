package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/model"
)

func date(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildMonth_Grid(t *testing.T) {
	// August 2025 starts on a Friday and ends on a Sunday.
	m := BuildMonth(2025, time.August, nil, date("2025-08-14"))

	require.Len(t, m.Weeks, 5)
	for _, week := range m.Weeks {
		require.Len(t, week, 7)
		assert.Equal(t, time.Monday, week[0].Date.Weekday())
	}
	assert.Equal(t, "2025-07-28", m.Weeks[0][0].Date.Format(dateLayout))
	assert.False(t, m.Weeks[0][0].InMonth)
	assert.True(t, m.Weeks[0][4].InMonth)
	assert.Equal(t, "2025-08-31", m.Weeks[4][6].Date.Format(dateLayout))
	assert.True(t, m.Weeks[4][6].Weekend)
	assert.True(t, m.Weeks[2][3].Today)
	assert.Equal(t, "augustus 2025", m.Title())
}

func TestBuildMonth_SixWeeks(t *testing.T) {
	// March 2026 starts on a Sunday.
	m := BuildMonth(2026, time.March, nil, time.Time{})
	assert.Len(t, m.Weeks, 6)
}

func TestBuildMonth_Requests(t *testing.T) {
	requests := []model.LeaveRequest{
		{ID: 1, UserName: "Piet", StartDate: "2025-07-30", EndDate: "2025-08-05", LeaveType: "vakantie"},
		{ID: 2, UserName: "Anna", StartDate: "2025-08-04", LeaveType: "bijzonder"},
		{ID: 3, UserName: "Kees", StartDate: "2025-08-20", EndDate: "2025-08-10"},
		{ID: 4, UserName: "Joost", StartDate: "morgen"},
	}

	m := BuildMonth(2025, time.August, requests, time.Time{})

	absent := m.Absent(date("2025-08-04"))
	require.Len(t, absent, 2)
	assert.Equal(t, "Anna", absent[0].UserName)
	assert.Equal(t, "Piet", absent[1].UserName)

	assert.Len(t, m.Absent(date("2025-07-31")), 1, "leading days show requests too")
	assert.Empty(t, m.Absent(date("2025-08-06")))
	assert.Empty(t, m.Absent(date("2025-08-15")), "inverted ranges are skipped")

	assert.Equal(t, map[string]int{"Piet": 3, "Anna": 1}, m.WorkdaysOff())
}

func TestLoad(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddLeave(model.LeaveRequest{ID: 1, UserName: "Piet", StartDate: "2025-08-11", EndDate: "2025-08-12", Status: "goedgekeurd"})

	m, err := Load(context.Background(), srv.Client(t), 2025, time.August, time.Time{})
	require.NoError(t, err)
	assert.Len(t, m.Absent(date("2025-08-12")), 1)
}
