package model

import "time"

// EntryStatus is the approval state of a time entry.
type EntryStatus string

// Time entry states.
const (
	EntryConcept   EntryStatus = "concept"
	EntrySubmitted EntryStatus = "ingediend"
	EntryApproved  EntryStatus = "goedgekeurd"
	EntryRejected  EntryStatus = "afgekeurd"
)

// TimeEntry is one worked shift.
type TimeEntry struct {
	CreatedAt    time.Time   `json:"created_at,omitempty"`
	Date         string      `json:"datum"`
	StartTime    string      `json:"aanvang"`
	EndTime      string      `json:"eind"`
	Notes        string      `json:"opmerkingen,omitempty"`
	Status       EntryStatus `json:"status"`
	UserName     string      `json:"user_naam,omitempty"`
	TotalHours   string      `json:"totaal_uren,omitempty"`
	ID           int         `json:"id"`
	BreakMinutes int         `json:"pauze_minuten"`
	KMStart      int         `json:"km_start,omitempty"`
	KMEnd        int         `json:"km_eind,omitempty"`
	WeekNumber   int         `json:"weeknummer"`
	Year         int         `json:"jaar,omitempty"`
}

// Kilometers returns the driven distance, zero when odometer readings are missing.
func (e TimeEntry) Kilometers() int {
	if e.KMEnd > e.KMStart {
		return e.KMEnd - e.KMStart
	}
	return 0
}

// SubmitWeekRequest is the body of submit_week.
type SubmitWeekRequest struct {
	WeekNumber int `json:"weeknummer"`
	Year       int `json:"jaar"`
}

// WeekSummary aggregates one week of entries.
type WeekSummary struct {
	Entries      []TimeEntry `json:"entries"`
	TotalHours   string      `json:"totaal_uren"`
	WeekNumber   int         `json:"weeknummer"`
	Year         int         `json:"jaar"`
	TotalKM      int         `json:"totaal_km"`
	ConceptCount int         `json:"concept_count"`
}

// WeekHistory is one row of the submitted-weeks history.
type WeekHistory struct {
	SubmittedAt *time.Time  `json:"ingediend_op,omitempty"`
	TotalHours  string      `json:"totaal_uren"`
	Status      EntryStatus `json:"status"`
	WeekNumber  int         `json:"weeknummer"`
	Year        int         `json:"jaar"`
	EntryCount  int         `json:"aantal"`
}

// DriverReportRow is one month in a driver's yearly report.
type DriverReportRow struct {
	Month      int    `json:"maand"`
	Days       int    `json:"dagen"`
	TotalHours string `json:"totaal_uren"`
	TotalKM    int    `json:"totaal_km"`
}

// DriverReport is a driver's yearly overview.
type DriverReport struct {
	DriverName string            `json:"chauffeur"`
	TotalHours string            `json:"totaal_uren"`
	Rows       []DriverReportRow `json:"maanden"`
	Year       int               `json:"jaar"`
	TotalKM    int               `json:"totaal_km"`
}

// TimeEntryFilter narrows the entry list.
type TimeEntryFilter struct {
	Status     EntryStatus
	WeekNumber int
	Year       int
	Page       int
}
