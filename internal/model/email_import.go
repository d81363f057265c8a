package model

import "time"

// MailboxProvider selects how the backend fetches mail.
type MailboxProvider string

// Mailbox providers.
const (
	ProviderIMAP  MailboxProvider = "imap"
	ProviderMS365 MailboxProvider = "ms365"
)

// MailboxConfig is stored configuration for polling a shared inbox.
type MailboxConfig struct {
	LastFetchAt   *time.Time      `json:"last_fetch_at,omitempty"`
	Name          string          `json:"name"`
	EmailAddress  string          `json:"email_address"`
	Provider      MailboxProvider `json:"provider"`
	IMAPServer    string          `json:"imap_server,omitempty"`
	Username      string          `json:"username,omitempty"`
	Password      string          `json:"password,omitempty"`
	Folder        string          `json:"folder"`
	ID            int             `json:"id"`
	IMAPPort      int             `json:"imap_port,omitempty"`
	FetchInterval int             `json:"fetch_interval_minutes"`
	IsActive      bool            `json:"is_active"`
	MarkAsRead    bool            `json:"mark_as_read"`
	OnlyUnread    bool            `json:"only_unread"`
}

// ConnectionTest is the outcome of test_connection.
type ConnectionTest struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// FetchResult is the outcome of fetch_emails.
type FetchResult struct {
	Message  string `json:"message"`
	Fetched  int    `json:"fetched"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// EmailImportStatus is the state of one imported email attachment.
type EmailImportStatus string

// Email import lifecycle:
// pending -> processing -> awaiting_review -> approved|rejected -> completed|failed.
const (
	EmailPending        EmailImportStatus = "pending"
	EmailProcessing     EmailImportStatus = "processing"
	EmailAwaitingReview EmailImportStatus = "awaiting_review"
	EmailApproved       EmailImportStatus = "approved"
	EmailRejected       EmailImportStatus = "rejected"
	EmailCompleted      EmailImportStatus = "completed"
	EmailFailed         EmailImportStatus = "failed"
)

// Reviewable reports whether approve/reject actions apply.
func (s EmailImportStatus) Reviewable() bool {
	return s == EmailAwaitingReview
}

// EmailImport is one pipeline-fetched email attachment.
type EmailImport struct {
	ReceivedAt     time.Time         `json:"received_at"`
	ReviewedAt     *time.Time        `json:"reviewed_at,omitempty"`
	InvoiceImport  *int              `json:"invoice_import,omitempty"`
	Subject        string            `json:"subject"`
	FromAddress    string            `json:"from_address"`
	AttachmentName string            `json:"attachment_name"`
	Status         EmailImportStatus `json:"status"`
	ReviewNotes    string            `json:"review_notes,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	InvoiceType    InvoiceType       `json:"invoice_type,omitempty"`
	ID             int               `json:"id"`
	Mailbox        int               `json:"mailbox"`
}

// ReviewAction is approve or reject.
type ReviewAction string

// Review actions.
const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// ReviewRequest is the body of POST imports/{id}/review/.
type ReviewRequest struct {
	Action      ReviewAction `json:"action"`
	Notes       string       `json:"notes,omitempty"`
	InvoiceType InvoiceType  `json:"invoice_type,omitempty"`
}

// EmailImportStats summarizes the import pipeline.
type EmailImportStats struct {
	ByStatus       map[EmailImportStatus]int `json:"by_status"`
	Total          int                       `json:"total"`
	AwaitingReview int                       `json:"awaiting_review"`
	Today          int                       `json:"today"`
	Failed         int                       `json:"failed"`
}

// EmailImportFilter narrows the import list.
type EmailImportFilter struct {
	Status  EmailImportStatus
	Mailbox int
	Page    int
}
