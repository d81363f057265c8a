package model

// LeaveRequest is one approved or pending absence shown on the leave calendar.
type LeaveRequest struct {
	UserName  string `json:"user_naam"`
	LeaveType string `json:"verlof_type"`
	StartDate string `json:"start_datum"`
	EndDate   string `json:"eind_datum"`
	Status    string `json:"status"`
	ID        int    `json:"id"`
}
