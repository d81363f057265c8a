package signing

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

// Signature images are scaled down to fit this box before upload.
const (
	maxImageWidth  = 800
	maxImageHeight = 300
)

// Pad holds the signature being placed and where it sits.
type Pad struct {
	Position *model.SignaturePosition
	Image    []byte
	// Aspect is the image height divided by its width.
	Aspect   float64
	Width    float64
	Dragging bool
	grabX    float64
	grabY    float64
}

// NewPad returns an empty pad with the default width.
func NewPad() Pad {
	return Pad{Width: DefaultWidth}
}

// PrepareImage decodes a signature image and re-encodes it as PNG, scaled down to fit
// 800x300. It returns the PNG and its height/width ratio.
func PrepareImage(data []byte) ([]byte, float64, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: signature image: %w", common.ErrInvalidFile, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, fmt.Errorf("%w: signature image is empty", common.ErrInvalidFile)
	}
	var out image.Image = img
	if b.Dx() > maxImageWidth || b.Dy() > maxImageHeight {
		out = imaging.Fit(img, maxImageWidth, maxImageHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, 0, fmt.Errorf("encoding signature: %w", err)
	}
	ob := out.Bounds()
	return buf.Bytes(), float64(ob.Dy()) / float64(ob.Dx()), nil
}

// SetImage loads a signature image, replacing any earlier one. The position is kept.
func (p Pad) SetImage(data []byte) (Pad, error) {
	png, aspect, err := PrepareImage(data)
	if err != nil {
		return p, err
	}
	p.Image = png
	p.Aspect = aspect
	return p, nil
}

// SetWidth resizes the placed signature, keeping it on the page.
func (p Pad) SetWidth(width float64) Pad {
	p.Width = ClampWidth(width)
	if p.Position != nil {
		pos := *p.Position
		pos.Width = p.Width
		pos = Clamp(pos)
		p.Position = &pos
	}
	return p
}

// Place puts the signature at explicit percentages.
func (p Pad) Place(pos model.SignaturePosition) Pad {
	if pos.Width == 0 {
		pos.Width = p.Width
	}
	pos = Clamp(pos)
	p.Width = pos.Width
	p.Position = &pos
	return p
}

// Click places the signature with its top-left corner at the pointer. It only acts when
// an image is loaded and nothing is placed yet; repositioning is done by dragging.
func (p Pad) Click(page int, px, py float64, rect PageRect) Pad {
	if len(p.Image) == 0 || p.Position != nil {
		return p
	}
	x, y := rect.Percent(px, py)
	return p.Place(model.SignaturePosition{Page: page, X: x, Y: y, Width: p.Width})
}

// HeightPercent is the placed signature's height in percent of the page height.
func (p Pad) HeightPercent(rect PageRect) float64 {
	if rect.Height <= 0 {
		return 0
	}
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 0.4
	}
	return p.Width * aspect * rect.Width / rect.Height
}

// Over reports whether the pointer is on the placed signature.
func (p Pad) Over(px, py float64, rect PageRect) bool {
	if p.Position == nil {
		return false
	}
	x, y := rect.Percent(px, py)
	pos := p.Position
	return x >= pos.X && x <= pos.X+pos.Width && y >= pos.Y && y <= pos.Y+p.HeightPercent(rect)
}

// MouseDown starts a drag when the pointer is on the placed signature.
func (p Pad) MouseDown(px, py float64, rect PageRect) Pad {
	if !p.Over(px, py, rect) {
		return p
	}
	x, y := rect.Percent(px, py)
	p.Dragging = true
	p.grabX = x - p.Position.X
	p.grabY = y - p.Position.Y
	return p
}

// MouseMove drags the signature. Moves without a drag in progress are ignored.
func (p Pad) MouseMove(px, py float64, rect PageRect) Pad {
	if !p.Dragging || p.Position == nil {
		return p
	}
	x, y := rect.Percent(px, py)
	pos := *p.Position
	pos.X = x - p.grabX
	pos.Y = y - p.grabY
	pos = Clamp(pos)
	p.Position = &pos
	return p
}

// MouseUp ends a drag.
func (p Pad) MouseUp() Pad {
	p.Dragging = false
	p.grabX, p.grabY = 0, 0
	return p
}

// ClearPosition removes the placed signature so the next click places it again.
func (p Pad) ClearPosition() Pad {
	p.Position = nil
	return p.MouseUp()
}
