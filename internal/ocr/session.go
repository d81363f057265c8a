package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

// Session binds an editor to the backend for one import.
type Session struct {
	api    service.ImportAPI
	logger *slog.Logger
}

// NewSession creates a session. A nil logger uses the ocr component logger.
func NewSession(importAPI service.ImportAPI, logger *slog.Logger) *Session {
	if logger == nil {
		logger = common.Component("ocr")
	}
	return &Session{api: importAPI, logger: logger}
}

// Open loads an import and builds its editor.
func (s *Session) Open(ctx context.Context, id int, containerWidth, containerHeight float64) (Editor, error) {
	imp, err := s.api.GetImport(ctx, id)
	if err != nil {
		return Editor{}, err
	}
	if !imp.Status.Editable() {
		return Editor{}, fmt.Errorf("%w: import %d is %s", common.ErrNotReviewable, id, imp.Status)
	}
	return NewEditor(*imp, containerWidth, containerHeight), nil
}

// Run performs an effect and returns the command that reports its outcome. A nil effect
// yields a nil command.
func (s *Session) Run(ctx context.Context, importID int, eff Effect) Command {
	switch eff := eff.(type) {
	case ExtractRegion:
		resp, err := s.api.ExtractRegion(ctx, importID, model.RegionRequest{BoundingBox: eff.Box, Field: eff.Field})
		if err != nil {
			s.logger.Error("Region extraction failed",
				"import", importID, "field", eff.Field, "page", eff.Box.Page, "error", err)
			return RegionFailed{Field: eff.Field, Err: err}
		}
		s.logger.Debug("Region extracted",
			"import", importID, "field", eff.Field, "confidence", resp.Confidence)
		return RegionExtracted{Field: eff.Field, Text: resp.Text, Box: eff.Box}
	default:
		return nil
	}
}

// Drive applies cmd and runs every effect it causes until the editor settles.
func (s *Session) Drive(ctx context.Context, e Editor, cmd Command) Editor {
	for cmd != nil {
		var eff Effect
		e, eff = e.Apply(cmd)
		cmd = s.Run(ctx, e.ImportID, eff)
	}
	return e
}

// ErrNothingToSave is returned by Save when no correction is pending.
var ErrNothingToSave = errors.New("no pending corrections")

// Save submits the pending corrections in one request and clears them on success.
// On failure the editor is returned unchanged with the error.
func (s *Session) Save(ctx context.Context, e Editor) (Editor, error) {
	pending := e.PendingCorrections()
	if len(pending) == 0 {
		return e, ErrNothingToSave
	}
	if _, err := s.api.SaveCorrections(ctx, e.ImportID, pending); err != nil {
		s.logger.Error("Saving corrections failed", "import", e.ImportID, "error", err)
		return e, err
	}
	s.logger.Info("Saved corrections", "import", e.ImportID, "fields", len(pending))
	next, _ := e.Apply(CorrectionsSaved{Saved: pending})
	return next, nil
}

// SaveLines stores the edited line items.
func (s *Session) SaveLines(ctx context.Context, e Editor) error {
	lines := make([]model.ImportedLine, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = Recompute(line)
	}
	_, err := s.api.UpdateLines(ctx, e.ImportID, lines)
	return err
}

// Convert builds the conversion payload and submits it.
func (s *Session) Convert(ctx context.Context, e Editor, opts ConversionOptions) (*model.ConvertResponse, error) {
	data, err := BuildConversion(e, opts)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Convert(ctx, e.ImportID, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Converted import", "import", e.ImportID, "target", data.Target)
	return resp, nil
}

// Preview writes the page the editor shows, with its overlays, as PNG.
func (s *Session) Preview(ctx context.Context, e Editor, w io.Writer) error {
	data, err := s.api.PageImage(ctx, e.ImportID, e.Page)
	if err != nil {
		return err
	}
	return RasterizePNG(w, data, e)
}

// PageSize fetches a page image and returns its pixel size, for imports whose
// extraction carries no page dimensions.
func (s *Session) PageSize(ctx context.Context, importID, page int) (width, height int, err error) {
	data, err := s.api.PageImage(ctx, importID, page)
	if err != nil {
		return 0, 0, err
	}
	img, err := DecodePage(data)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
