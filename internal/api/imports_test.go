package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/api/apitest"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

func TestSaveCorrections_SendsExactMap(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddImport(model.InvoiceImport{FileName: "factuur.pdf"})

	corrections := model.Corrections{
		"invoice_number": {Value: "F-2025-0042", Region: &model.BoundingBox{X: 410, Y: 96, Width: 120, Height: 18, Page: 1}},
		"total":          {Value: "1.234,56"},
	}

	imp, err := client.SaveCorrections(context.Background(), id, corrections)
	require.NoError(t, err)
	assert.Equal(t, model.ImportReview, imp.Status)
	assert.Equal(t, corrections, imp.UserCorrections)

	srv.Lock()
	saved := srv.Corrections[id]
	srv.Unlock()
	require.Len(t, saved, 1)
	assert.Equal(t, corrections, saved[0])

	requests := srv.RequestsTo(http.MethodPost, "/api/invoice-import/imports/1/corrections/")
	require.Len(t, requests, 1)
	want, err := json.Marshal(corrections)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(requests[0].Body))
}

func TestSaveCorrections_RejectsEmptyMap(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddImport(model.InvoiceImport{})

	_, err := client.SaveCorrections(context.Background(), id, model.Corrections{})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, srv.Requests())
}

func TestExtractRegion(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddImport(model.InvoiceImport{})
	ctx := context.Background()

	resp, err := client.ExtractRegion(ctx, id, model.RegionRequest{
		BoundingBox: model.BoundingBox{X: 10, Y: 20, Width: 100, Height: 15, Page: 1},
		Field:       "supplier_name",
	})
	require.NoError(t, err)
	assert.Equal(t, "region:supplier_name", resp.Text)

	_, err = client.ExtractRegion(ctx, id, model.RegionRequest{BoundingBox: model.BoundingBox{X: 10, Y: 20}})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Len(t, srv.RequestsTo(http.MethodPost, "/api/invoice-import/imports/1/extract_region/"), 1)
}

func TestExtractRegion_BackendFailure(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddImport(model.InvoiceImport{})
	srv.Lock()
	srv.RegionText = func(int, model.RegionRequest) (string, error) {
		return "", errors.New("Geen tekst gevonden in selectie.")
	}
	srv.Unlock()

	_, err := client.ExtractRegion(context.Background(), id, model.RegionRequest{
		BoundingBox: model.BoundingBox{Width: 50, Height: 10, Page: 1},
	})
	require.Error(t, err)
	assert.Equal(t, "Geen tekst gevonden in selectie.", api.Message(err))
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name        string
		data        model.ConvertToInvoiceData
		wantInvoice bool
		wantErr     error
	}{
		{
			name:        "invoice by default",
			data:        model.ConvertToInvoiceData{InvoiceType: model.InvoicePurchase, InvoiceNumber: "F-1"},
			wantInvoice: true,
		},
		{
			name: "expense",
			data: model.ConvertToInvoiceData{Target: model.TargetExpense},
		},
		{
			name:    "unknown invoice type",
			data:    model.ConvertToInvoiceData{InvoiceType: "proforma"},
			wantErr: common.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			client := srv.Client(t)
			id := srv.AddImport(model.InvoiceImport{})

			resp, err := client.Convert(context.Background(), id, tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, srv.Requests())
				return
			}
			require.NoError(t, err)
			if tt.wantInvoice {
				require.NotNil(t, resp.InvoiceID)
				assert.Equal(t, 1000+id, *resp.InvoiceID)
				assert.Nil(t, resp.ExpenseID)
			} else {
				require.NotNil(t, resp.ExpenseID)
				assert.Nil(t, resp.InvoiceID)
			}

			srv.Lock()
			conversions := srv.Conversions[id]
			srv.Unlock()
			require.Len(t, conversions, 1)
			assert.NotEmpty(t, conversions[0].Target)
		})
	}
}

func TestConvert_AlreadyConverted(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddImport(model.InvoiceImport{Status: model.ImportCompleted})

	_, err := client.Convert(context.Background(), id, model.ConvertToInvoiceData{InvoiceType: model.InvoiceSales})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Import is al omgezet.", api.Message(err))
}

func TestUploadImport_Validation(t *testing.T) {
	srv := apitest.NewServer(t)
	client, err := api.New(api.Config{BaseURL: srv.URL, Token: apitest.Token, MaxUploadBytes: 16})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.UploadImport(ctx, "factuur.docx", []byte("%PDF-1.4"))
	require.ErrorIs(t, err, common.ErrInvalidFile)

	_, err = client.UploadImport(ctx, "factuur.pdf", []byte("PK\x03\x04"))
	require.ErrorIs(t, err, common.ErrInvalidFile)

	_, err = client.UploadImport(ctx, "factuur.pdf", []byte("%PDF-1.4 this is far too long"))
	require.ErrorIs(t, err, common.ErrFileTooLarge)

	assert.Empty(t, srv.Requests())
}

func TestUploadImport(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)

	imp, err := client.UploadImport(context.Background(), "Factuur.PDF", []byte("%PDF-1.4\n%fake"))
	require.NoError(t, err)
	assert.Equal(t, "Factuur.PDF", imp.FileName)
	assert.NotZero(t, imp.ID)
}

func TestPageImage(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	id := srv.AddImport(model.InvoiceImport{PageCount: 2})

	data, err := client.PageImage(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, srv.PageImage, data)
}

func TestBulkDeleteImports(t *testing.T) {
	srv := apitest.NewServer(t)
	client := srv.Client(t)
	ctx := context.Background()
	first := srv.AddImport(model.InvoiceImport{})
	second := srv.AddImport(model.InvoiceImport{})

	count, err := client.BulkDeleteImports(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, srv.Requests())

	count, err = client.BulkDeleteImports(ctx, []int{first, second, 99})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
