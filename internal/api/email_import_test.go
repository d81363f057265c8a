package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

func TestMailboxes(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	_, err := client.CreateMailbox(ctx, model.MailboxConfig{Name: "Facturen", EmailAddress: "facturen@example.nl", Provider: model.ProviderIMAP})
	require.ErrorIs(t, err, common.ErrValidation)

	mb, err := client.CreateMailbox(ctx, model.MailboxConfig{
		Name:         "Facturen",
		EmailAddress: "facturen@example.nl",
		Provider:     model.ProviderIMAP,
		IMAPServer:   "imap.example.nl",
		IMAPPort:     993,
		Password:     "geheim",
		Folder:       "INBOX",
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.Empty(t, mb.Password)

	mb.Folder = "INBOX/Facturen"
	updated, err := client.UpdateMailbox(ctx, *mb)
	require.NoError(t, err)
	assert.Equal(t, "INBOX/Facturen", updated.Folder)

	test, err := client.TestConnection(ctx, mb.ID)
	require.NoError(t, err)
	assert.True(t, test.Success)

	folders, err := client.ListFolders(ctx, mb.ID)
	require.NoError(t, err)
	assert.Contains(t, folders, "INBOX/Facturen")

	mailboxes, err := client.ListMailboxes(ctx)
	require.NoError(t, err)
	assert.Len(t, mailboxes, 1)

	require.NoError(t, client.DeleteMailbox(ctx, mb.ID))
	_, err = client.GetMailbox(ctx, mb.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFetchEmails_SendsLimit(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddMailbox(model.MailboxConfig{Name: "Facturen", IsActive: true})

	result, err := client.FetchEmails(context.Background(), id, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Fetched)

	requests := srv.RequestsTo(http.MethodPost, "/api/email-import/mailboxes/1/fetch_emails/")
	require.Len(t, requests, 1)
	assert.Equal(t, "limit=5", requests[0].Query)
}

func TestReviewEmailImport(t *testing.T) {
	tests := []struct {
		name       string
		req        model.ReviewRequest
		wantStatus model.EmailImportStatus
		wantType   model.InvoiceType
	}{
		{
			name:       "approve with type",
			req:        model.ReviewRequest{Action: model.ActionApprove, InvoiceType: model.InvoicePurchase, Notes: "Klopt"},
			wantStatus: model.EmailApproved,
			wantType:   model.InvoicePurchase,
		},
		{
			name:       "reject drops type",
			req:        model.ReviewRequest{Action: model.ActionReject, InvoiceType: model.InvoicePurchase, Notes: "Geen factuur"},
			wantStatus: model.EmailRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			client := srv.Client(t)
			id := srv.AddEmailImport(model.EmailImport{Subject: "Factuur 2025-118"})

			imp, err := client.ReviewEmailImport(context.Background(), id, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, imp.Status)
			assert.Equal(t, tt.wantType, imp.InvoiceType)
			assert.Equal(t, tt.req.Notes, imp.ReviewNotes)

			requests := srv.RequestsTo(http.MethodPost, "/api/email-import/imports/1/review/")
			require.Len(t, requests, 1)
			var body map[string]any
			require.NoError(t, json.Unmarshal(requests[0].Body, &body))
			if tt.wantType == "" {
				assert.NotContains(t, body, "invoice_type")
			} else {
				assert.Equal(t, string(tt.wantType), body["invoice_type"])
			}
		})
	}
}

func TestReviewEmailImport_Rejected(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	id := srv.AddEmailImport(model.EmailImport{Status: model.EmailCompleted})

	_, err := client.ReviewEmailImport(ctx, id, model.ReviewRequest{Action: "escalate"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, srv.Requests())

	_, err = client.ReviewEmailImport(ctx, id, model.ReviewRequest{Action: model.ActionApprove, InvoiceType: "proforma"})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = client.ReviewEmailImport(ctx, id, model.ReviewRequest{Action: model.ActionApprove})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Deze import wacht niet op beoordeling.", api.Message(err))
}

func TestPendingReviewAndStats(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	srv.AddEmailImport(model.EmailImport{Subject: "a"})
	srv.AddEmailImport(model.EmailImport{Subject: "b"})
	srv.AddEmailImport(model.EmailImport{Subject: "c", Status: model.EmailFailed})
	srv.AddEmailImport(model.EmailImport{Subject: "d", Status: model.EmailCompleted})

	pending, err := client.PendingReview(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, imp := range pending {
		assert.True(t, imp.Status.Reviewable())
	}

	stats, err := client.EmailImportStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.AwaitingReview)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.ByStatus[model.EmailCompleted])

	page, err := client.ListEmailImports(ctx, model.EmailImportFilter{Status: model.EmailFailed})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "c", page.Results[0].Subject)
}

func TestBulkDeleteEmailImports(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	first := srv.AddEmailImport(model.EmailImport{})
	second := srv.AddEmailImport(model.EmailImport{})

	count, err := client.BulkDeleteEmailImports(context.Background(), []int{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	requests := srv.RequestsTo(http.MethodPost, "/api/email-import/imports/bulk_delete/")
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"ids":[1,2]}`, string(requests[0].Body))
}
