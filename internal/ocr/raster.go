package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/model"
)

var strokeColors = map[DrawKind]color.NRGBA{
	DrawOCRBox:     {R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
	DrawCorrection: {R: 0x16, G: 0xa3, B: 0x4a, A: 0xff},
	DrawSelection:  {R: 0xdc, G: 0x26, B: 0x26, A: 0xff},
}

// DecodePage decodes a page image and reports its size.
func DecodePage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: page image: %w", common.ErrInvalidFile, err)
	}
	return img, nil
}

// Rasterize paints cmds over the page image scaled to the canvas size.
func Rasterize(page image.Image, cmds []DrawCommand) *image.NRGBA {
	var canvas *image.NRGBA
	for _, cmd := range cmds {
		if cmd.Kind != DrawPage {
			continue
		}
		w := max(1, int(math.Round(cmd.Rect.Width)))
		h := max(1, int(math.Round(cmd.Rect.Height)))
		canvas = imaging.Resize(page, w, h, imaging.Lanczos)
	}
	if canvas == nil {
		canvas = imaging.Clone(page)
	}

	for _, cmd := range cmds {
		c, ok := strokeColors[cmd.Kind]
		if !ok {
			continue
		}
		width := 1
		if cmd.Active || cmd.Kind == DrawSelection {
			width = 2
		}
		strokeRect(canvas, cmd.Rect, c, width)
	}
	return canvas
}

// RasterizePNG renders the editor's current page with its overlays as PNG.
func RasterizePNG(w io.Writer, pageImage []byte, e Editor) error {
	page, err := DecodePage(pageImage)
	if err != nil {
		return err
	}
	if !e.Viewport.Loaded() {
		b := page.Bounds()
		e, _ = e.Apply(ImageLoaded{Width: b.Dx(), Height: b.Dy()})
	}
	return imaging.Encode(w, Rasterize(page, Render(e)), imaging.PNG)
}

// CropRegion cuts a source-pixel bounding box out of a page image, for previewing
// what a correction was read from.
func CropRegion(w io.Writer, pageImage []byte, box model.BoundingBox) error {
	page, err := DecodePage(pageImage)
	if err != nil {
		return err
	}
	rect := image.Rect(
		int(math.Floor(box.X)),
		int(math.Floor(box.Y)),
		int(math.Ceil(box.X+box.Width)),
		int(math.Ceil(box.Y+box.Height)),
	).Intersect(page.Bounds())
	if rect.Empty() {
		return common.NewValidationError("region", "valt buiten de pagina")
	}
	return imaging.Encode(w, imaging.Crop(page, rect), imaging.PNG)
}

func strokeRect(img draw.Image, r Rect, c color.Color, width int) {
	b := img.Bounds()
	x0, y0 := int(math.Round(r.X)), int(math.Round(r.Y))
	x1, y1 := int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height))

	for t := range width {
		for x := x0; x <= x1; x++ {
			setIn(img, b, x, y0+t, c)
			setIn(img, b, x, y1-t, c)
		}
		for y := y0; y <= y1; y++ {
			setIn(img, b, x0+t, y, c)
			setIn(img, b, x1-t, y, c)
		}
	}
}

func setIn(img draw.Image, b image.Rectangle, x, y int, c color.Color) {
	if image.Pt(x, y).In(b) {
		img.Set(x, y, c)
	}
}
