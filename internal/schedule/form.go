// Package schedule edits notification schedules for push groups.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

// Day names, Monday = 0 as the backend counts.
var dayNames = []string{"maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag", "zondag"}

// DayName returns the Dutch name of a weekday index.
func DayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return fmt.Sprintf("dag %d", day)
	}
	return dayNames[day]
}

// ParseDay accepts a weekday index or a (prefix of a) Dutch or English day name.
func ParseDay(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return int(s[0] - '0'), nil
	}
	english := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	if len(s) >= 2 {
		for i := range dayNames {
			if strings.HasPrefix(dayNames[i], s) || strings.HasPrefix(english[i], s) {
				return i, nil
			}
		}
	}
	return 0, common.NewValidationError("day", fmt.Sprintf("onbekende dag %q", s))
}

// Form is the state of the schedule editor.
type Form struct {
	WeeklyDay  *int
	Title      string
	Body       string
	URL        string
	Frequency  model.Frequency
	SendTime   string
	CustomDays []int
	ID         int
	GroupID    int
	IsActive   bool
}

// NewForm returns a form for a new daily schedule at 08:00.
func NewForm(groupID int) Form {
	return Form{GroupID: groupID, Frequency: model.FrequencyDaily, SendTime: "08:00", IsActive: true}
}

// FromSchedule loads an existing schedule into a form.
func FromSchedule(s model.NotificationSchedule) Form {
	f := Form{
		ID:         s.ID,
		GroupID:    s.GroupID,
		Title:      s.Title,
		Body:       s.Body,
		URL:        s.URL,
		Frequency:  s.Frequency,
		SendTime:   s.SendTime,
		CustomDays: slices.Clone(s.CustomDays),
		IsActive:   s.IsActive,
	}
	if s.WeeklyDay != nil {
		day := *s.WeeklyDay
		f.WeeklyDay = &day
	}
	return f
}

// SetFrequency switches the recurrence kind and clears the values the new kind does
// not use: weekly clears the custom days, custom clears the weekly day and daily
// clears both.
func (f Form) SetFrequency(freq model.Frequency) Form {
	f.Frequency = freq
	switch freq {
	case model.FrequencyWeekly:
		f.CustomDays = []int{}
	case model.FrequencyCustom:
		f.WeeklyDay = nil
	default:
		f.CustomDays = []int{}
		f.WeeklyDay = nil
	}
	return f
}

// SetWeeklyDay picks the day of a weekly schedule.
func (f Form) SetWeeklyDay(day int) Form {
	f.WeeklyDay = &day
	return f
}

// ToggleCustomDay adds or removes a day of a custom schedule. Days stay sorted.
func (f Form) ToggleCustomDay(day int) Form {
	days := slices.Clone(f.CustomDays)
	if i := slices.Index(days, day); i >= 0 {
		days = slices.Delete(days, i, i+1)
	} else {
		days = append(days, day)
		slices.Sort(days)
	}
	f.CustomDays = days
	return f
}

// Validate checks the form before submission. Every problem is reported.
func (f Form) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, common.NewValidationError("title", "Titel is verplicht"))
	}
	if f.GroupID <= 0 {
		errs = append(errs, common.NewValidationError("group", "Kies een groep"))
	}
	if _, err := time.Parse("15:04", f.SendTime); err != nil || len(f.SendTime) != 5 {
		errs = append(errs, common.NewValidationError("send_time", "Gebruik UU:MM"))
	}

	switch f.Frequency {
	case model.FrequencyDaily:
	case model.FrequencyWeekly:
		if f.WeeklyDay == nil || *f.WeeklyDay < 0 || *f.WeeklyDay > 6 {
			errs = append(errs, common.NewValidationError("weekly_day", "Kies een dag"))
		}
	case model.FrequencyCustom:
		if len(f.CustomDays) == 0 {
			errs = append(errs, common.NewValidationError("custom_days", "Kies minstens één dag"))
		}
		for _, d := range f.CustomDays {
			if d < 0 || d > 6 {
				errs = append(errs, common.NewValidationError("custom_days", fmt.Sprintf("ongeldige dag %d", d)))
				break
			}
		}
	default:
		errs = append(errs, common.NewValidationError("frequency", fmt.Sprintf("onbekende frequentie %q", f.Frequency)))
	}
	return errors.Join(errs...)
}

// Schedule returns the schedule to submit. Values the frequency does not use are
// cleared again so a stale day never reaches the backend.
func (f Form) Schedule() (model.NotificationSchedule, error) {
	f = f.SetFrequency(f.Frequency)
	if err := f.Validate(); err != nil {
		return model.NotificationSchedule{}, err
	}
	s := model.NotificationSchedule{
		ID:         f.ID,
		GroupID:    f.GroupID,
		Title:      strings.TrimSpace(f.Title),
		Body:       f.Body,
		URL:        f.URL,
		Frequency:  f.Frequency,
		SendTime:   f.SendTime,
		CustomDays: slices.Clone(f.CustomDays),
		IsActive:   f.IsActive,
	}
	if f.WeeklyDay != nil {
		day := *f.WeeklyDay
		s.WeeklyDay = &day
	}
	if s.CustomDays == nil {
		s.CustomDays = []int{}
	}
	return s, nil
}

// Describe renders the recurrence in Dutch, e.g. "elke dinsdag om 07:30".
func Describe(s model.NotificationSchedule) string {
	switch s.Frequency {
	case model.FrequencyDaily:
		return "dagelijks om " + s.SendTime
	case model.FrequencyWeekly:
		if s.WeeklyDay == nil {
			return "wekelijks om " + s.SendTime
		}
		return fmt.Sprintf("elke %s om %s", DayName(*s.WeeklyDay), s.SendTime)
	case model.FrequencyCustom:
		names := make([]string, len(s.CustomDays))
		for i, d := range s.CustomDays {
			names[i] = DayName(d)
		}
		return fmt.Sprintf("op %s om %s", strings.Join(names, ", "), s.SendTime)
	default:
		return string(s.Frequency)
	}
}

// Store persists schedules.
type Store interface {
	CreateSchedule(ctx context.Context, schedule model.NotificationSchedule) (*model.NotificationSchedule, error)
	UpdateSchedule(ctx context.Context, schedule model.NotificationSchedule) (*model.NotificationSchedule, error)
}

// Save validates the form and creates or updates the schedule.
func Save(ctx context.Context, store Store, f Form) (*model.NotificationSchedule, error) {
	s, err := f.Schedule()
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return store.CreateSchedule(ctx, s)
	}
	return store.UpdateSchedule(ctx, s)
}
