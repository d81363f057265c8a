package signing

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/service"
)

const dataURLPrefix = "data:image/png;base64,"

// DataURL encodes a PNG as a data URL.
func DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURL returns the image bytes of a data URL or of plain base64.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.Contains(s[:comma], ";base64") {
			return nil, fmt.Errorf("%w: unsupported data URL", common.ErrInvalidFile)
		}
		s = s[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: signature image: %w", common.ErrInvalidFile, err)
	}
	return data, nil
}

// BuildRequest validates the pad and returns the sign request. A name is required when
// the signature is to be saved.
func BuildRequest(p Pad, save bool, name string) (model.SignRequest, error) {
	if len(p.Image) == 0 {
		return model.SignRequest{}, common.NewValidationError("signature_image", "Teken of kies eerst een handtekening")
	}
	if p.Position == nil {
		return model.SignRequest{}, common.NewValidationError("position", "Klik op de pagina om de handtekening te plaatsen")
	}
	name = strings.TrimSpace(name)
	if save && name == "" {
		return model.SignRequest{}, common.NewValidationError("signature_name", "Geef de handtekening een naam")
	}

	pos := Clamp(*p.Position)
	req := model.SignRequest{
		SignatureImage: DataURL(p.Image),
		Page:           pos.Page,
		X:              pos.X,
		Y:              pos.Y,
		Width:          pos.Width,
		SaveSignature:  save,
	}
	if save {
		req.SignatureName = name
	}
	return req, nil
}

// Sign builds the request from the pad and submits it.
func Sign(ctx context.Context, signer service.DocumentSigner, docID int, p Pad, save bool, name string) (*model.Document, error) {
	req, err := BuildRequest(p, save, name)
	if err != nil {
		return nil, err
	}
	doc, err := signer.SignDocument(ctx, docID, req)
	if err != nil {
		return nil, err
	}
	common.Component("signing").Info("Signed document",
		"document", docID, "page", req.Page, "saved", save)
	return doc, nil
}

// LoadSaved fills the pad with a saved signature, or the default one when id is 0.
func LoadSaved(ctx context.Context, store service.SignatureStore, p Pad, id int) (Pad, error) {
	var (
		sig *model.SavedSignature
		err error
	)
	if id == 0 {
		sig, err = store.DefaultSignature(ctx)
	} else {
		sig, err = store.GetSignature(ctx, id)
	}
	if err != nil {
		return p, err
	}
	data, err := DecodeDataURL(sig.SignatureImage)
	if err != nil {
		return p, err
	}
	return p.SetImage(data)
}
