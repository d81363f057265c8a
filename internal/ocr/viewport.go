// Package ocr holds the state and geometry of the OCR correction canvas.
//
// The canvas shows a source page scaled twice: BaseScale fits the page into the
// container and Zoom is the user's multiplier on top. Regions are always converted
// through source-image pixels so a box drawn at any zoom level maps to the same
// part of the page.
package ocr

import (
	"math"

	"github.com/Veraticus/kantoor/internal/model"
)

// Zoom limits.
const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	ZoomStep    = 0.25
	MaxFitScale = 1.5
)

// Rect is a rectangle in canvas pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// RectFromPoints returns the rectangle spanned by two corners in any order.
func RectFromPoints(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// Viewport maps between source-image pixels and canvas pixels.
type Viewport struct {
	SourceWidth     float64
	SourceHeight    float64
	ContainerWidth  float64
	ContainerHeight float64
	BaseScale       float64
	Zoom            float64
}

// FitScale is the largest scale that fits the source into the container, capped at
// MaxFitScale so small scans are not blown up.
func FitScale(sourceWidth, sourceHeight, containerWidth, containerHeight float64) float64 {
	if sourceWidth <= 0 || sourceHeight <= 0 || containerWidth <= 0 || containerHeight <= 0 {
		return 1
	}
	return math.Min(math.Min(containerWidth/sourceWidth, containerHeight/sourceHeight), MaxFitScale)
}

// NewViewport fits the source into the container at zoom 1.
func NewViewport(sourceWidth, sourceHeight, containerWidth, containerHeight float64) Viewport {
	return Viewport{
		SourceWidth:     sourceWidth,
		SourceHeight:    sourceHeight,
		ContainerWidth:  containerWidth,
		ContainerHeight: containerHeight,
		BaseScale:       FitScale(sourceWidth, sourceHeight, containerWidth, containerHeight),
		Zoom:            1,
	}
}

// Loaded reports whether the source size is known.
func (v Viewport) Loaded() bool {
	return v.SourceWidth > 0 && v.SourceHeight > 0
}

// Scale is the combined source-to-canvas scale.
func (v Viewport) Scale() float64 {
	return v.BaseScale * v.Zoom
}

// CanvasSize returns the canvas dimensions: the source scaled by BaseScale and Zoom.
func (v Viewport) CanvasSize() (float64, float64) {
	return v.SourceWidth * v.Scale(), v.SourceHeight * v.Scale()
}

// WithSource replaces the source size and refits the base scale.
func (v Viewport) WithSource(width, height float64) Viewport {
	v.SourceWidth, v.SourceHeight = width, height
	v.BaseScale = FitScale(width, height, v.ContainerWidth, v.ContainerHeight)
	return v
}

// Resize refits the base scale to a new container, keeping the zoom.
func (v Viewport) Resize(width, height float64) Viewport {
	v.ContainerWidth, v.ContainerHeight = width, height
	v.BaseScale = FitScale(v.SourceWidth, v.SourceHeight, width, height)
	return v
}

// WithZoom sets the zoom clamped to [MinZoom, MaxZoom].
func (v Viewport) WithZoom(zoom float64) Viewport {
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
	return v
}

// ZoomIn raises the zoom by one step.
func (v Viewport) ZoomIn() Viewport {
	return v.WithZoom(v.Zoom + ZoomStep)
}

// ZoomOut lowers the zoom by one step.
func (v Viewport) ZoomOut() Viewport {
	return v.WithZoom(v.Zoom - ZoomStep)
}

// ToSource converts a canvas rectangle to a source-image bounding box on page.
// Each axis is scaled by source/canvas, which is independent of how the canvas
// size was reached.
func (v Viewport) ToSource(r Rect, page int) model.BoundingBox {
	cw, ch := v.CanvasSize()
	if cw <= 0 || ch <= 0 {
		return model.BoundingBox{Page: page}
	}
	sx, sy := v.SourceWidth/cw, v.SourceHeight/ch
	return model.BoundingBox{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
		Page:   page,
	}
}

// ToCanvas converts a source-image bounding box to canvas pixels.
func (v Viewport) ToCanvas(b model.BoundingBox) Rect {
	if v.SourceWidth <= 0 || v.SourceHeight <= 0 {
		return Rect{}
	}
	cw, ch := v.CanvasSize()
	sx, sy := cw/v.SourceWidth, ch/v.SourceHeight
	return Rect{
		X:      b.X * sx,
		Y:      b.Y * sy,
		Width:  b.Width * sx,
		Height: b.Height * sy,
	}
}

// Clip limits a canvas rectangle to the canvas area.
func (v Viewport) Clip(r Rect) Rect {
	cw, ch := v.CanvasSize()
	x0 := math.Max(0, r.X)
	y0 := math.Max(0, r.Y)
	x1 := math.Min(cw, r.X+r.Width)
	y1 := math.Min(ch, r.Y+r.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
