package schedule

import (
	"slices"
	"time"

	"github.com/Veraticus/kantoor/internal/model"
)

// dayIndex maps a Go weekday onto the Monday-first index schedules use.
func dayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// NextRun returns the first send moment strictly after now, in now's location.
// It reports false for inactive or unparseable schedules.
func NextRun(s model.NotificationSchedule, now time.Time) (time.Time, bool) {
	if !s.IsActive {
		return time.Time{}, false
	}
	at, err := time.Parse("15:04", s.SendTime)
	if err != nil {
		return time.Time{}, false
	}

	for offset := range 8 {
		day := now.AddDate(0, 0, offset)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
		if !candidate.After(now) || !runsOn(s, dayIndex(candidate.Weekday())) {
			continue
		}
		return candidate, true
	}
	return time.Time{}, false
}

func runsOn(s model.NotificationSchedule, day int) bool {
	switch s.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		return s.WeeklyDay != nil && *s.WeeklyDay == day
	case model.FrequencyCustom:
		return slices.Contains(s.CustomDays, day)
	default:
		return false
	}
}
