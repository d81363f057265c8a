package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const (
	mailboxesPath    = "/api/email-import/mailboxes/"
	emailImportsPath = "/api/email-import/imports/"
)

func mailboxPath(id int, action string) string {
	if action == "" {
		return fmt.Sprintf("%s%d/", mailboxesPath, id)
	}
	return fmt.Sprintf("%s%d/%s/", mailboxesPath, id, action)
}

// ListMailboxes returns every mailbox configuration.
func (c *Client) ListMailboxes(ctx context.Context) ([]model.MailboxConfig, error) {
	return collect[model.MailboxConfig](ctx, c, mailboxesPath, nil)
}

// GetMailbox fetches one mailbox configuration.
func (c *Client) GetMailbox(ctx context.Context, id int) (*model.MailboxConfig, error) {
	var mb model.MailboxConfig
	if err := c.get(ctx, mailboxPath(id, ""), nil, &mb); err != nil {
		return nil, err
	}
	return &mb, nil
}

func validateMailbox(mb model.MailboxConfig) error {
	if mb.Name == "" {
		return common.NewValidationError("name", "is required")
	}
	if mb.EmailAddress == "" {
		return common.NewValidationError("email_address", "is required")
	}
	if mb.Provider == model.ProviderIMAP && mb.IMAPServer == "" {
		return common.NewValidationError("imap_server", "is required for IMAP mailboxes")
	}
	return nil
}

// CreateMailbox stores a new mailbox configuration.
func (c *Client) CreateMailbox(ctx context.Context, mb model.MailboxConfig) (*model.MailboxConfig, error) {
	if err := validateMailbox(mb); err != nil {
		return nil, err
	}
	var created model.MailboxConfig
	if err := c.send(ctx, http.MethodPost, mailboxesPath, mb, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateMailbox replaces a mailbox configuration.
func (c *Client) UpdateMailbox(ctx context.Context, mb model.MailboxConfig) (*model.MailboxConfig, error) {
	if err := validateMailbox(mb); err != nil {
		return nil, err
	}
	var updated model.MailboxConfig
	if err := c.send(ctx, http.MethodPut, mailboxPath(mb.ID, ""), mb, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMailbox removes a mailbox configuration.
func (c *Client) DeleteMailbox(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, mailboxPath(id, ""), nil, nil)
}

// TestConnection asks the backend to log in to the mailbox.
func (c *Client) TestConnection(ctx context.Context, id int) (*model.ConnectionTest, error) {
	var result model.ConnectionTest
	if err := c.post(ctx, mailboxPath(id, "test_connection"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchEmails triggers an immediate fetch of at most limit messages.
func (c *Client) FetchEmails(ctx context.Context, id, limit int) (*model.FetchResult, error) {
	path := mailboxPath(id, "fetch_emails")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var result model.FetchResult
	if err := c.send(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFolders lists the folders available in the mailbox.
func (c *Client) ListFolders(ctx context.Context, id int) ([]string, error) {
	var resp struct {
		Folders []string `json:"folders"`
	}
	if err := c.get(ctx, mailboxPath(id, "folders"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// ListEmailImports returns one page of email imports.
func (c *Client) ListEmailImports(ctx context.Context, filter model.EmailImportFilter) (*model.Page[model.EmailImport], error) {
	query := url.Values{}
	setIfNotEmpty(query, "status", string(filter.Status))
	setIfPositive(query, "mailbox", filter.Mailbox)

	var page model.Page[model.EmailImport]
	if err := c.get(ctx, emailImportsPath, pageQuery(query, filter.Page), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetEmailImport fetches one email import.
func (c *Client) GetEmailImport(ctx context.Context, id int) (*model.EmailImport, error) {
	var imp model.EmailImport
	if err := c.get(ctx, fmt.Sprintf("%s%d/", emailImportsPath, id), nil, &imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

// PendingReview returns every import awaiting review.
func (c *Client) PendingReview(ctx context.Context) ([]model.EmailImport, error) {
	var imports []model.EmailImport
	if err := c.get(ctx, emailImportsPath+"pending_review/", nil, &imports); err != nil {
		return nil, err
	}
	return imports, nil
}

// ReviewEmailImport approves or rejects an import.
func (c *Client) ReviewEmailImport(ctx context.Context, id int, req model.ReviewRequest) (*model.EmailImport, error) {
	switch req.Action {
	case model.ActionApprove:
		if req.InvoiceType != "" && !req.InvoiceType.Valid() {
			return nil, common.NewValidationError("invoice_type", fmt.Sprintf("unknown type %q", req.InvoiceType))
		}
	case model.ActionReject:
		req.InvoiceType = ""
	default:
		return nil, common.NewValidationError("action", fmt.Sprintf("unknown action %q", req.Action))
	}

	var imp model.EmailImport
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("%s%d/review/", emailImportsPath, id), req, &imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

// EmailImportStats returns pipeline statistics.
func (c *Client) EmailImportStats(ctx context.Context) (*model.EmailImportStats, error) {
	var stats model.EmailImportStats
	if err := c.get(ctx, emailImportsPath+"statistics/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// BulkDeleteEmailImports deletes several imports and returns how many went.
func (c *Client) BulkDeleteEmailImports(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var resp model.CountResponse
	if err := c.send(ctx, http.MethodPost, emailImportsPath+"bulk_delete/", model.IDs{IDs: ids}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
