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

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		maxBytes int64
		wantErr  error
	}{
		{name: "valid", fileName: "contract.pdf", content: samplePDF},
		{name: "upper case extension", fileName: "CONTRACT.PDF", content: samplePDF},
		{name: "wrong extension", fileName: "contract.png", content: samplePDF, wantErr: common.ErrInvalidFile},
		{name: "not pdf data", fileName: "contract.pdf", content: []byte("\x89PNG"), wantErr: common.ErrInvalidFile},
		{name: "too large", fileName: "contract.pdf", content: samplePDF, maxBytes: 4, wantErr: common.ErrFileTooLarge},
		{name: "no limit", fileName: "contract.pdf", content: samplePDF, maxBytes: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := api.ValidatePDF(tt.fileName, tt.content, tt.maxBytes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUploadDocument(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	_, err := client.UploadDocument(ctx, model.DocumentUpload{FileName: "contract.pdf", Content: samplePDF})
	require.ErrorIs(t, err, common.ErrValidation)

	doc, err := client.UploadDocument(ctx, model.DocumentUpload{
		Title:       "Huurcontract loods",
		Description: "Loods Waalhaven",
		FileName:    "contract.pdf",
		Content:     samplePDF,
	})
	require.NoError(t, err)
	assert.Equal(t, "Huurcontract loods", doc.Title)
	assert.Equal(t, "Loods Waalhaven", doc.Description)
	assert.Equal(t, "contract.pdf", doc.FileName)
	assert.Equal(t, model.DocumentPending, doc.Status)
	assert.Len(t, srv.RequestsTo(http.MethodPost, "/api/documents/"), 1)
}

func TestSignDocument(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	id := srv.AddDocument(model.Document{Title: "Opdrachtbevestiging", PageCount: 2})

	req := model.SignRequest{
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignatureName:  "Paraaf",
		Page:           2,
		X:              62.5,
		Y:              81,
		Width:          20,
		SaveSignature:  true,
	}
	doc, err := client.SignDocument(ctx, id, req)
	require.NoError(t, err)
	assert.True(t, doc.IsSigned())
	require.NotNil(t, doc.SignedAt)

	srv.Lock()
	signed := srv.Signed[id]
	sigCount := len(srv.Signatures)
	srv.Unlock()
	require.Len(t, signed, 1)
	assert.Equal(t, req, signed[0])
	assert.Equal(t, 1, sigCount)

	requests := srv.RequestsTo(http.MethodPost, "/api/documents/1/sign/")
	require.Len(t, requests, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(requests[0].Body, &body))
	assert.InDelta(t, 62.5, body["x"], 0.001)
	assert.Equal(t, true, body["save_signature"])

	_, err = client.SignDocument(ctx, id, req)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Document is al ondertekend.", api.Message(err))
}

func TestDownloadDocument(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddDocument(model.Document{Title: "Contract", FileName: "contract-getekend.pdf"})

	blob, err := client.DownloadDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "contract-getekend.pdf", blob.FileName)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.NoError(t, api.ValidatePDF(blob.FileName, blob.Data, 0))
}

func TestDocumentPage(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	id := srv.AddDocument(model.Document{Title: "Contract", PageCount: 1})

	blob, err := client.DocumentPage(ctx, id, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, srv.PageImage, blob.Data)

	requests := srv.RequestsTo(http.MethodGet, "/api/documents/1/page/1/")
	require.Len(t, requests, 1)
	assert.Equal(t, "dpi=150", requests[0].Query)

	_, err = client.DocumentPage(ctx, id, 3, 0)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEmailDocument(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	id := srv.AddDocument(model.Document{Title: "Contract"})

	err := client.EmailDocument(ctx, id, model.DocumentEmail{To: "  "})
	require.ErrorIs(t, err, common.ErrValidation)

	err = client.EmailDocument(ctx, id, model.DocumentEmail{To: "planning@example.nl", SendSigned: true})
	require.NoError(t, err)
}

func TestSignatures(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()

	_, err := client.DefaultSignature(ctx)
	require.ErrorIs(t, err, common.ErrNotFound)

	first, err := client.CreateSignature(ctx, model.SavedSignature{Name: "Handtekening", SignatureImage: "data:image/png;base64,AA=="})
	require.NoError(t, err)
	second, err := client.CreateSignature(ctx, model.SavedSignature{Name: "Paraaf", SignatureImage: "data:image/png;base64,AB=="})
	require.NoError(t, err)

	require.NoError(t, client.SetDefaultSignature(ctx, second.ID))
	def, err := client.DefaultSignature(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	renamed, err := client.RenameSignature(ctx, first.ID, "Volledige handtekening")
	require.NoError(t, err)
	assert.Equal(t, "Volledige handtekening", renamed.Name)

	require.NoError(t, client.DeleteSignature(ctx, first.ID))
	sigs, err := client.ListSignatures(ctx)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "Paraaf", sigs[0].Name)

	_, err = client.CreateSignature(ctx, model.SavedSignature{})
	require.ErrorIs(t, err, common.ErrValidation)
}
