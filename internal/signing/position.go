// Package signing places a signature image on a rendered document page.
//
// Positions are percentages of the rendered page so they survive any render size.
package signing

import (
	"math"

	"github.com/Veraticus/kantoor/internal/model"
)

// Placement limits, in percent of the page.
const (
	MinWidth     = 10.0
	MaxWidth     = 50.0
	DefaultWidth = 25.0
	MaxY         = 90.0
)

// PageRect is the on-screen rectangle of the rendered page image.
type PageRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Percent converts a pointer position to page percentages. An empty rect yields 0,0.
func (r PageRect) Percent(px, py float64) (float64, float64) {
	if r.Width <= 0 || r.Height <= 0 {
		return 0, 0
	}
	return (px - r.Left) / r.Width * 100, (py - r.Top) / r.Height * 100
}

// ClampWidth limits a signature width to [MinWidth, MaxWidth].
func ClampWidth(width float64) float64 {
	return clamp(width, MinWidth, MaxWidth)
}

// Clamp keeps a signature on the page: width in [MinWidth, MaxWidth], x in
// [0, 100-width] and y in [0, MaxY].
func Clamp(pos model.SignaturePosition) model.SignaturePosition {
	pos.Width = ClampWidth(pos.Width)
	pos.X = clamp(pos.X, 0, 100-pos.Width)
	pos.Y = clamp(pos.Y, 0, MaxY)
	if pos.Page < 1 {
		pos.Page = 1
	}
	return pos
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
