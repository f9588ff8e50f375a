package render

import (
	"image"
	"image/color"
	"math"

	"goldview/internal/domain"
	"goldview/internal/format"
	"goldview/internal/indicator"
)

// Palette. Up/down match the exchange-green and loss-red of the web UI,
// soft variants are the 16%-alpha body fills.
var (
	colBG        = color.NRGBA{10, 15, 22, 255}
	colGrid      = color.NRGBA{255, 255, 255, 15}
	colLabel     = color.NRGBA{231, 238, 249, 140}
	colText      = color.NRGBA{231, 238, 249, 235}
	colTextDim   = color.NRGBA{231, 238, 249, 200}
	colUp        = color.NRGBA{0, 231, 156, 250}
	colUpSoft    = color.NRGBA{0, 231, 156, 41}
	colDown      = color.NRGBA{255, 77, 79, 250}
	colDownSoft  = color.NRGBA{255, 77, 79, 41}
	colUpLine    = color.NRGBA{0, 231, 156, 107}
	colDownLine  = color.NRGBA{255, 77, 79, 107}
	colCross     = color.NRGBA{255, 255, 255, 64}
	colTipBG     = color.NRGBA{12, 18, 26, 235}
	colTipBorder = color.NRGBA{255, 255, 255, 26}
	colSMA       = color.NRGBA{240, 185, 11, 220}
	colStale     = color.NRGBA{255, 196, 0, 220}
)

// Chart renders the candlestick panel. Stateless apart from style
// knobs, so the same view always produces identical pixels.
type Chart struct {
	// SMAPeriod enables the moving-average overlay when > 1.
	SMAPeriod int
}

// Render draws the full chart frame for one view snapshot.
func (c *Chart) Render(view domain.MarketView) *image.NRGBA {
	cv := NewCanvas(view.Width, view.Height, colBG)

	c.drawHeader(cv, view)

	bars := view.Series.Bars()
	if len(bars) == 0 {
		// Loading affordance instead of an empty plot.
		cv.Text(18, 28, "Loading chart...", colLabel)
		return cv.Image()
	}

	g := NewGeometry(view.Width, view.Height, bars)

	c.drawGrid(cv, g)
	c.drawAxisLabels(cv, g)
	c.drawCandles(cv, g, bars)
	if c.SMAPeriod > 1 {
		c.drawSMA(cv, g, bars)
	}
	if view.LivePrice > 0 {
		c.drawLiveLine(cv, g, view.LivePrice, view.PriceUp)
	}
	if view.HoverIdx >= 0 && view.HoverIdx < len(bars) {
		c.drawCrosshair(cv, g, bars[view.HoverIdx], view.HoverIdx)
	}
	if view.Degraded {
		cv.Text(g.W-PadRight-TextWidth("STALE"), PadTop-4, "STALE", colStale)
	}

	return cv.Image()
}

// drawHeader writes the 24h summary strip for the selected instrument
// into the top gutter: last price, signed change, compact quote volume.
func (c *Chart) drawHeader(cv *Canvas, view domain.MarketView) {
	t, ok := view.SelectedTicker()
	if !ok {
		return
	}

	last, _ := t.LastPrice.Float64()
	pct, _ := t.ChangePct.Float64()
	vol, _ := t.QuoteVolume.Float64()

	changeCol := colUp
	if !t.ChangeUp() {
		changeCol = colDown
	}

	head := view.Symbol + "  " + format.Num(last, format.PriceDecimals(last))
	cv.Text(PadLeft, 12, head, colText)

	x := PadLeft + TextWidth(head) + 12
	change := format.Pct(pct)
	cv.Text(x, 12, change, changeCol)

	x += TextWidth(change) + 12
	cv.Text(x, 12, "Vol "+format.Compact(vol), colTextDim)
}

func (c *Chart) drawGrid(cv *Canvas, g Geometry) {
	for i := 0; i <= gridRows; i++ {
		y := PadTop + float64(i)*g.InnerH/gridRows
		cv.HLine(y, PadLeft, g.W-PadRight, colGrid)
	}
	for i := 0; i <= gridCols; i++ {
		x := PadLeft + float64(i)*g.InnerW/gridCols
		cv.VLine(x, PadTop, g.H-PadBottom, colGrid)
	}
}

func (c *Chart) drawAxisLabels(cv *Canvas, g Geometry) {
	cv.Text(10, PadTop+10, format.Num(g.Max, 2), colLabel)
	cv.Text(10, g.YOf(g.Mid())+4, format.Num(g.Mid(), 2), colLabel)
	cv.Text(10, g.H-PadBottom, format.Num(g.Min, 2), colLabel)
}

func (c *Chart) drawCandles(cv *Canvas, g Geometry, bars []domain.PriceBar) {
	for i, bar := range bars {
		x := g.XOf(i)

		up := bar.Close >= bar.Open
		col, soft := colUp, colUpSoft
		if !up {
			col, soft = colDown, colDownSoft
		}

		// Wick: high to low.
		cv.VLine(x, g.YOf(bar.High), g.YOf(bar.Low), col)

		// Body: open to close, minimum height enforced so zero-range
		// bars stay visible.
		top := math.Min(g.YOf(bar.Open), g.YOf(bar.Close))
		bot := math.Max(g.YOf(bar.Open), g.YOf(bar.Close))
		bh := math.Max(MinBodyHeight, bot-top)

		cv.FillRect(x-g.BodyW/2, top, g.BodyW, bh, soft)
		cv.StrokeRect(x-g.BodyW/2, top, g.BodyW, bh, col)
	}
}

func (c *Chart) drawSMA(cv *Canvas, g Geometry, bars []domain.PriceBar) {
	values := indicator.Over(bars, c.SMAPeriod)
	prev := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 {
			cv.Line(g.XOf(prev), g.YOf(values[prev]), g.XOf(i), g.YOf(v), colSMA)
		}
		prev = i
	}
}

func (c *Chart) drawLiveLine(cv *Canvas, g Geometry, live float64, up bool) {
	lineCol, soft, border := colUpLine, colUpSoft, colUp
	if !up {
		lineCol, soft, border = colDownLine, colDownSoft, colDown
	}

	y := g.YOf(live)
	cv.DashedHLine(y, PadLeft, g.W-PadRight, 6, 6, lineCol)

	// Floating price tag, clamped inside the plot.
	tag := format.Num(live, 4)
	tw := TextWidth(tag) + 14
	tx := g.W - PadRight - tw
	ty := g.ClampTagY(y)

	cv.FillRect(tx, ty, tw, tagHeight, soft)
	cv.StrokeRect(tx, ty, tw, tagHeight, border)
	cv.Text(tx+7, ty+13, tag, colText)
}

func (c *Chart) drawCrosshair(cv *Canvas, g Geometry, bar domain.PriceBar, idx int) {
	x := g.XOf(idx)
	y := g.YOf(bar.Close)

	cv.VLine(x, PadTop, g.H-PadBottom, colCross)
	cv.HLine(y, PadLeft, g.W-PadRight, colCross)
	cv.Disc(x, y, 3.5, colText)

	lines := []string{
		format.BarTime(bar.Time),
		"O " + format.Num(bar.Open, 4) + "  H " + format.Num(bar.High, 4),
		"L " + format.Num(bar.Low, 4) + "  C " + format.Num(bar.Close, 4),
	}

	maxW := 0.0
	for _, s := range lines {
		maxW = math.Max(maxW, TextWidth(s))
	}
	bw := maxW + 16
	bx, by := g.TooltipAt(x, bw)

	cv.FillRect(bx, by, bw, tooltipHeight, colTipBG)
	cv.StrokeRect(bx, by, bw, tooltipHeight, colTipBorder)

	cv.Text(bx+8, by+16, lines[0], colText)
	cv.Text(bx+8, by+32, lines[1], colTextDim)
	cv.Text(bx+8, by+46, lines[2], colTextDim)
}
