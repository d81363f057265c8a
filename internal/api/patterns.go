package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

const patternsPath = "/api/invoice-import/patterns/"

func patternPath(id int) string {
	return fmt.Sprintf("%s%d/", patternsPath, id)
}

// ListPatterns returns every extraction pattern.
func (c *Client) ListPatterns(ctx context.Context) ([]model.ExtractionPattern, error) {
	return collect[model.ExtractionPattern](ctx, c, patternsPath, nil)
}

// GetPattern fetches one extraction pattern.
func (c *Client) GetPattern(ctx context.Context, id int) (*model.ExtractionPattern, error) {
	var p model.ExtractionPattern
	if err := c.get(ctx, patternPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePattern stores a new extraction pattern.
func (c *Client) CreatePattern(ctx context.Context, p model.ExtractionPattern) (*model.ExtractionPattern, error) {
	if p.Name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	var created model.ExtractionPattern
	if err := c.send(ctx, http.MethodPost, patternsPath, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePattern replaces an extraction pattern.
func (c *Client) UpdatePattern(ctx context.Context, p model.ExtractionPattern) (*model.ExtractionPattern, error) {
	var updated model.ExtractionPattern
	if err := c.send(ctx, http.MethodPut, patternPath(p.ID), p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePattern removes an extraction pattern.
func (c *Client) DeletePattern(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, patternPath(id), nil, nil)
}

// TestPattern runs a pattern against a sample document without storing anything.
func (c *Client) TestPattern(ctx context.Context, id int, fileName string, content []byte) (*model.PatternTestResult, error) {
	if err := ValidatePDF(fileName, content, c.maxUpload); err != nil {
		return nil, err
	}
	var result model.PatternTestResult
	err := c.upload(ctx, fmt.Sprintf("%s%d/test/", patternsPath, id), nil,
		filePart{field: "file", fileName: fileName, content: content}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
