package model

import "time"

// PushSettings configures web push for the organisation.
type PushSettings struct {
	VAPIDPublicKey  string `json:"vapid_public_key"`
	VAPIDPrivateKey string `json:"vapid_private_key,omitempty"`
	VAPIDSubject    string `json:"vapid_subject"`
	Provider        string `json:"provider"`
	ID              int    `json:"id"`
	Enabled         bool   `json:"is_enabled"`
}

// VAPIDKeys is a freshly generated key pair.
type VAPIDKeys struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// NotificationGroup is a named set of users.
type NotificationGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberIDs   []int  `json:"members"`
	ID          int    `json:"id"`
}

// MemberChange is the body of add_members/remove_members.
type MemberChange struct {
	UserIDs []int `json:"user_ids"`
}

// Frequency is the recurrence kind of a schedule.
type Frequency string

// Recurrence kinds.
const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

// NotificationSchedule is a recurrence rule for a group notification.
type NotificationSchedule struct {
	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
	WeeklyDay  *int       `json:"weekly_day"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	URL        string     `json:"url,omitempty"`
	Frequency  Frequency  `json:"frequency"`
	SendTime   string     `json:"send_time"`
	CustomDays []int      `json:"custom_days"`
	ID         int        `json:"id"`
	GroupID    int        `json:"group"`
	IsActive   bool       `json:"is_active"`
}

// Receipt records whether one recipient read a notification.
type Receipt struct {
	ReadAt   *time.Time `json:"read_at,omitempty"`
	UserName string     `json:"user_name"`
	UserID   int        `json:"user"`
}

// SentNotification is an entry in the send history.
type SentNotification struct {
	SentAt     time.Time `json:"sent_at"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Recipients []Receipt `json:"recipients"`
	ID         int       `json:"id"`
	Schedule   *int      `json:"schedule,omitempty"`
}

// ReadCount returns how many recipients read the notification.
func (n SentNotification) ReadCount() int {
	count := 0
	for _, r := range n.Recipients {
		if r.ReadAt != nil {
			count++
		}
	}
	return count
}

// ClearOldRequest is the body of sent/clear_old/.
type ClearOldRequest struct {
	Days int `json:"days"`
}
