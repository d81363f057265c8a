package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const importsPath = "/api/invoice-import/imports/"

func importPath(id int, action string) string {
	if action == "" {
		return fmt.Sprintf("%s%d/", importsPath, id)
	}
	return fmt.Sprintf("%s%d/%s/", importsPath, id, action)
}

// UploadImport sends a PDF for OCR.
func (c *Client) UploadImport(ctx context.Context, fileName string, content []byte) (*model.InvoiceImport, error) {
	if err := ValidatePDF(fileName, content, c.maxUpload); err != nil {
		return nil, err
	}

	var imp model.InvoiceImport
	err := c.upload(ctx, importsPath+"upload/", nil, filePart{field: "file", fileName: fileName, content: content}, &imp)
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// ListImports returns one page of OCR imports.
func (c *Client) ListImports(ctx context.Context, filter model.ImportFilter) (*model.Page[model.InvoiceImport], error) {
	query := url.Values{}
	setIfNotEmpty(query, "status", string(filter.Status))
	setIfNotEmpty(query, "search", filter.Search)

	var page model.Page[model.InvoiceImport]
	if err := c.get(ctx, importsPath, pageQuery(query, filter.Page), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetImport fetches one OCR import including its extracted data.
func (c *Client) GetImport(ctx context.Context, id int) (*model.InvoiceImport, error) {
	var imp model.InvoiceImport
	if err := c.get(ctx, importPath(id, ""), nil, &imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

// DeleteImport removes an OCR import.
func (c *Client) DeleteImport(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, importPath(id, ""), nil, nil)
}

// SaveCorrections submits the accumulated correction map in one request.
func (c *Client) SaveCorrections(ctx context.Context, id int, corrections model.Corrections) (*model.InvoiceImport, error) {
	if len(corrections) == 0 {
		return nil, common.NewValidationError("corrections", "nothing to save")
	}
	var imp model.InvoiceImport
	if err := c.send(ctx, http.MethodPost, importPath(id, "corrections"), corrections, &imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

// ExtractRegion re-runs OCR on one rectangle of a page.
func (c *Client) ExtractRegion(ctx context.Context, id int, req model.RegionRequest) (*model.RegionResponse, error) {
	if req.Empty() {
		return nil, common.NewValidationError("region", "must have a positive size")
	}

	var resp model.RegionResponse
	if err := c.post(ctx, importPath(id, "extract_region"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Convert turns an import into an invoice or expense.
func (c *Client) Convert(ctx context.Context, id int, data model.ConvertToInvoiceData) (*model.ConvertResponse, error) {
	if data.Target == "" {
		data.Target = model.TargetInvoice
	}
	if data.Target == model.TargetInvoice && !data.InvoiceType.Valid() {
		return nil, common.NewValidationError("invoice_type", fmt.Sprintf("unknown type %q", data.InvoiceType))
	}

	var resp model.ConvertResponse
	if err := c.send(ctx, http.MethodPost, importPath(id, "convert"), data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateLines replaces the line items stored on an import.
func (c *Client) UpdateLines(ctx context.Context, id int, lines []model.ImportedLine) (*model.InvoiceImport, error) {
	body := struct {
		Lines []model.ImportedLine `json:"lines"`
	}{Lines: lines}

	var imp model.InvoiceImport
	if err := c.send(ctx, http.MethodPost, importPath(id, "update_lines"), body, &imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

// PageImage downloads the rendered page the OCR boxes refer to.
func (c *Client) PageImage(ctx context.Context, id, page int) ([]byte, error) {
	blob, err := c.download(ctx, fmt.Sprintf("%s%d/page/%d/", importsPath, id, page), nil)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// BulkDeleteImports deletes several imports and returns how many went.
func (c *Client) BulkDeleteImports(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var resp model.CountResponse
	if err := c.send(ctx, http.MethodPost, importsPath+"bulk_delete/", model.IDs{IDs: ids}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// BulkConvertRequest converts several imports with the same target.
type BulkConvertRequest struct {
	Target      model.ConversionTarget `json:"target"`
	InvoiceType model.InvoiceType      `json:"invoice_type,omitempty"`
	IDs         []int                  `json:"ids"`
}

// BulkConvert converts several imports using their extracted data as-is.
func (c *Client) BulkConvert(ctx context.Context, req BulkConvertRequest) (*model.BulkConvertResponse, error) {
	if len(req.IDs) == 0 {
		return &model.BulkConvertResponse{}, nil
	}
	var resp model.BulkConvertResponse
	if err := c.send(ctx, http.MethodPost, importsPath+"bulk_convert/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
