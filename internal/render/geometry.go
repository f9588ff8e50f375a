// Package render draws the market view onto an in-memory pixel surface.
// Layout math lives in Geometry, pure and display-free, so the contract
// is testable without a real canvas.
package render

import (
	"math"

	"goldview/internal/domain"
)

// Plot paddings in pixels. The left gutter carries the axis labels.
const (
	PadLeft   = 46.0
	PadRight  = 16.0
	PadTop    = 16.0
	PadBottom = 28.0

	gridRows = 5
	gridCols = 6

	// Bar body sizing: a fraction of the horizontal step, clamped so
	// bodies stay visible on dense charts and slim on sparse ones.
	bodyFrac = 0.62
	minBodyW = 4.0
	maxBodyW = 10.0

	// MinBodyHeight keeps zero-range bars visible.
	MinBodyHeight = 2.5

	tagHeight     = 18.0
	tooltipHeight = 50.0
)

// Geometry is the price-to-pixel transform for one frame.
type Geometry struct {
	W, H           float64
	InnerW, InnerH float64
	Min, Max, Span float64
	N              int
	Step           float64
	BodyW          float64
}

// NewGeometry computes the transform for the given surface and series.
// The vertical scale is linear over [min(low), max(high)]; the
// horizontal scale is uniform per index, not time-weighted.
func NewGeometry(width, height int, bars []domain.PriceBar) Geometry {
	g := Geometry{
		W:      float64(width),
		H:      float64(height),
		InnerW: math.Max(10, float64(width)-PadLeft-PadRight),
		InnerH: math.Max(10, float64(height)-PadTop-PadBottom),
		N:      len(bars),
	}

	if g.N > 0 {
		g.Min = bars[0].Low
		g.Max = bars[0].High
		for _, b := range bars[1:] {
			if b.Low < g.Min {
				g.Min = b.Low
			}
			if b.High > g.Max {
				g.Max = b.High
			}
		}
		g.Step = g.InnerW / float64(g.N)
	}

	g.Span = g.Max - g.Min
	if g.Span == 0 {
		g.Span = 1
	}

	g.BodyW = clamp(g.Step*bodyFrac, minBodyW, maxBodyW)
	return g
}

// YOf maps a price to a pixel row: the series maximum lands on the top
// padding, the minimum on height minus the bottom padding.
func (g Geometry) YOf(price float64) float64 {
	return PadTop + (g.Max-price)/g.Span*g.InnerH
}

// XOf maps a bar index to its center column.
func (g Geometry) XOf(i int) float64 {
	return PadLeft + float64(i)*g.Step + g.Step*0.5
}

// Mid returns the midpoint of the visible price range.
func (g Geometry) Mid() float64 {
	return (g.Min + g.Max) / 2
}

// IndexAt maps a pointer x coordinate onto a bar index, clamped to the
// valid range. Returns NoHover for an empty series.
func IndexAt(x float64, width, n int) int {
	if n == 0 {
		return domain.NoHover
	}
	innerW := math.Max(10, float64(width)-PadLeft-PadRight)
	rx := clamp(x-PadLeft, 0, innerW)
	idx := int(math.Floor(rx / innerW * float64(n)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// ClampTagY keeps the floating price tag inside the plot's vertical
// bounds, anchored just above the reference line.
func (g Geometry) ClampTagY(lineY float64) float64 {
	return clamp(lineY-10, PadTop+6, g.H-PadBottom-tagHeight)
}

// TooltipAt places the hover tooltip next to the crosshair column,
// flipping left of the column near the right edge and lifting the box
// off the bottom edge.
func (g Geometry) TooltipAt(x, boxW float64) (bx, by float64) {
	bx = x + 12
	if bx+boxW > g.W-PadRight {
		bx = x - 12 - boxW
	}
	by = PadTop + 10
	if by+tooltipHeight > g.H-PadBottom {
		by = g.H - PadBottom - tooltipHeight - 8
	}
	return bx, by
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
