package model

import "time"

// DocumentStatus is the signing state of a document.
type DocumentStatus string

// Document states.
const (
	DocumentPending DocumentStatus = "pending"
	DocumentSigned  DocumentStatus = "signed"
)

// Document is a PDF awaiting or holding a signature.
type Document struct {
	CreatedAt   time.Time      `json:"created_at"`
	SignedAt    *time.Time     `json:"signed_at,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	FileName    string         `json:"original_filename"`
	Status      DocumentStatus `json:"status"`
	SignedBy    string         `json:"signed_by_name,omitempty"`
	ID          int            `json:"id"`
	PageCount   int            `json:"page_count"`
	FileSize    int64          `json:"file_size"`
}

// IsSigned reports whether the document carries a signature.
func (d Document) IsSigned() bool {
	return d.Status == DocumentSigned
}

// SavedSignature is a reusable signature image.
type SavedSignature struct {
	CreatedAt      time.Time `json:"created_at"`
	Name           string    `json:"name"`
	SignatureImage string    `json:"signature_image"`
	ID             int       `json:"id"`
	IsDefault      bool      `json:"is_default"`
}

// SignaturePosition places a signature as percentages of the rendered page.
type SignaturePosition struct {
	Page  int     `json:"page"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// SignRequest is the body of POST documents/{id}/sign/.
type SignRequest struct {
	SignatureImage string  `json:"signature_image"`
	SignatureName  string  `json:"signature_name,omitempty"`
	Page           int     `json:"page"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Width          float64 `json:"width"`
	SaveSignature  bool    `json:"save_signature,omitempty"`
}

// DocumentEmail is the body of POST documents/{id}/send_email/.
type DocumentEmail struct {
	To         string `json:"to"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message,omitempty"`
	SendSigned bool   `json:"send_signed"`
}

// DocumentUpload describes a document to upload.
type DocumentUpload struct {
	Title       string
	Description string
	FileName    string
	Content     []byte
}

// DocumentFilter narrows the document list.
type DocumentFilter struct {
	Status DocumentStatus
	Search string
	Page   int
}
