package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const documentsPath = "/api/documents/"

// DefaultPageDPI is the render resolution used when none is given.
const DefaultPageDPI = 150

func documentPath(id int, action string) string {
	if action == "" {
		return fmt.Sprintf("%s%d/", documentsPath, id)
	}
	return fmt.Sprintf("%s%d/%s/", documentsPath, id, action)
}

// ValidatePDF runs the checks done before any upload: PDF only and within the size limit.
func ValidatePDF(fileName string, content []byte, maxBytes int64) error {
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return fmt.Errorf("%w: %s is not a PDF", common.ErrInvalidFile, fileName)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		return fmt.Errorf("%w: %s does not contain PDF data", common.ErrInvalidFile, fileName)
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", common.ErrFileTooLarge, fileName, len(content), maxBytes)
	}
	return nil
}

// ListDocuments returns one page of documents.
func (c *Client) ListDocuments(ctx context.Context, filter model.DocumentFilter) (*model.Page[model.Document], error) {
	query := url.Values{}
	setIfNotEmpty(query, "status", string(filter.Status))
	setIfNotEmpty(query, "search", filter.Search)

	var page model.Page[model.Document]
	if err := c.get(ctx, documentsPath, pageQuery(query, filter.Page), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDocument fetches one document.
func (c *Client) GetDocument(ctx context.Context, id int) (*model.Document, error) {
	var doc model.Document
	if err := c.get(ctx, documentPath(id, ""), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadDocument validates and uploads a PDF.
func (c *Client) UploadDocument(ctx context.Context, upload model.DocumentUpload) (*model.Document, error) {
	if strings.TrimSpace(upload.Title) == "" {
		return nil, common.NewValidationError("title", "is required")
	}
	if err := ValidatePDF(upload.FileName, upload.Content, c.maxUpload); err != nil {
		return nil, err
	}

	fields := map[string]string{"title": upload.Title}
	if upload.Description != "" {
		fields["description"] = upload.Description
	}

	var doc model.Document
	err := c.upload(ctx, documentsPath, fields, filePart{field: "file", fileName: upload.FileName, content: upload.Content}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, documentPath(id, ""), nil, nil)
}

// SignDocument places a signature on a document.
func (c *Client) SignDocument(ctx context.Context, id int, req model.SignRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.send(ctx, http.MethodPost, documentPath(id, "sign"), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DownloadDocument fetches the signed PDF, or the original when unsigned.
func (c *Client) DownloadDocument(ctx context.Context, id int) (*Blob, error) {
	return c.download(ctx, documentPath(id, "download"), nil)
}

// DownloadOriginal fetches the PDF as uploaded.
func (c *Client) DownloadOriginal(ctx context.Context, id int) (*Blob, error) {
	return c.download(ctx, documentPath(id, "download_original"), nil)
}

// DocumentPage renders one page of a document as an image.
func (c *Client) DocumentPage(ctx context.Context, id, page, dpi int) (*Blob, error) {
	if dpi <= 0 {
		dpi = DefaultPageDPI
	}
	query := url.Values{}
	query.Set("dpi", strconv.Itoa(dpi))
	return c.download(ctx, fmt.Sprintf("%s%d/page/%d/", documentsPath, id, page), query)
}

// EmailDocument sends a document to a recipient.
func (c *Client) EmailDocument(ctx context.Context, id int, email model.DocumentEmail) error {
	if strings.TrimSpace(email.To) == "" {
		return common.NewValidationError("to", "is required")
	}
	return c.send(ctx, http.MethodPost, documentPath(id, "send_email"), email, nil)
}
