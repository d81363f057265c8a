package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const signaturesPath = "/api/documents/signatures/"

func signaturePath(id int) string {
	return fmt.Sprintf("%s%d/", signaturesPath, id)
}

// ListSignatures returns every saved signature.
func (c *Client) ListSignatures(ctx context.Context) ([]model.SavedSignature, error) {
	return collect[model.SavedSignature](ctx, c, signaturesPath, nil)
}

// GetSignature fetches one saved signature.
func (c *Client) GetSignature(ctx context.Context, id int) (*model.SavedSignature, error) {
	var sig model.SavedSignature
	if err := c.get(ctx, signaturePath(id), nil, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}

// DefaultSignature returns the signature marked as default.
func (c *Client) DefaultSignature(ctx context.Context) (*model.SavedSignature, error) {
	sigs, err := c.ListSignatures(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sigs {
		if sigs[i].IsDefault {
			return &sigs[i], nil
		}
	}
	return nil, fmt.Errorf("default signature: %w", common.ErrNotFound)
}

// CreateSignature saves a signature image.
func (c *Client) CreateSignature(ctx context.Context, sig model.SavedSignature) (*model.SavedSignature, error) {
	if sig.Name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	var created model.SavedSignature
	if err := c.send(ctx, http.MethodPost, signaturesPath, sig, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// RenameSignature changes the name of a saved signature.
func (c *Client) RenameSignature(ctx context.Context, id int, name string) (*model.SavedSignature, error) {
	var updated model.SavedSignature
	if err := c.send(ctx, http.MethodPatch, signaturePath(id), map[string]string{"name": name}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSignature removes a saved signature.
func (c *Client) DeleteSignature(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, signaturePath(id), nil, nil)
}

// SetDefaultSignature marks a signature as the default.
func (c *Client) SetDefaultSignature(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("%s%d/set_default/", signaturesPath, id), nil, nil)
}
