package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is a minimal drawing surface over an NRGBA image: rectangles,
// lines, discs and bitmap text. Everything composites src-over so soft
// fills layer correctly.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas allocates a surface and floods it with the background color.
func NewCanvas(w, h int, bg color.NRGBA) *Canvas {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return &Canvas{img: img}
}

// Image returns the underlying pixels.
func (c *Canvas) Image() *image.NRGBA { return c.img }

func ri(v float64) int { return int(math.Round(v)) }

// FillRect fills the rectangle (x, y, w, h), compositing over what is
// already there.
func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	r := image.Rect(ri(x), ri(y), ri(x+w), ri(y+h))
	draw.Draw(c.img, r, &image.Uniform{col}, image.Point{}, draw.Over)
}

// StrokeRect draws a 1px outline of the rectangle.
func (c *Canvas) StrokeRect(x, y, w, h float64, col color.NRGBA) {
	c.FillRect(x, y, w, 1, col)
	c.FillRect(x, y+h-1, w, 1, col)
	c.FillRect(x, y, 1, h, col)
	c.FillRect(x+w-1, y, 1, h, col)
}

// VLine draws a vertical line from y0 to y1 at column x.
func (c *Canvas) VLine(x, y0, y1 float64, col color.NRGBA) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	c.FillRect(x, y0, 1, y1-y0+1, col)
}

// HLine draws a horizontal line from x0 to x1 at row y.
func (c *Canvas) HLine(y, x0, x1 float64, col color.NRGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	c.FillRect(x0, y, x1-x0+1, 1, col)
}

// DashedHLine draws a horizontal line with the given dash/gap rhythm.
func (c *Canvas) DashedHLine(y, x0, x1, dash, gap float64, col color.NRGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	for x := x0; x < x1; x += dash + gap {
		end := math.Min(x+dash, x1)
		c.FillRect(x, y, end-x, 1, col)
	}
}

// Line draws an arbitrary segment (DDA stepping), used for overlays.
func (c *Canvas) Line(x0, y0, x1, y1 float64, col color.NRGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		c.FillRect(x0, y0, 1, 1, col)
		return
	}
	sx := dx / steps
	sy := dy / steps
	for i := 0.0; i <= steps; i++ {
		c.FillRect(x0+sx*i, y0+sy*i, 1, 1, col)
	}
}

// Disc draws a filled circle, used for the crosshair dot.
func (c *Canvas) Disc(cx, cy, r float64, col color.NRGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			ddx := x - cx
			ddy := y - cy
			if ddx*ddx+ddy*ddy <= r*r {
				c.FillRect(x, y, 1, 1, col)
			}
		}
	}
}

// Text draws a string with the fixed 7x13 bitmap face. y is the
// baseline, matching canvas fillText semantics.
func (c *Canvas) Text(x, y float64, s string, col color.NRGBA) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  &image.Uniform{col},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(ri(x), ri(y)),
	}
	d.DrawString(s)
}

// TextWidth returns the advance of s in the bitmap face.
func TextWidth(s string) float64 {
	d := font.Drawer{Face: basicfont.Face7x13}
	return float64(d.MeasureString(s).Ceil())
}
