package render

import (
	"fmt"
	"image"

	"goldview/internal/domain"
	"goldview/internal/format"
)

// Book panel layout.
const (
	bookMargin  = 12.0
	meterTop    = 30.0
	meterHeight = 10.0
	ladderTop   = 70.0
	rowHeight   = 16.0
	colGap      = 16.0
)

// BookPanel renders the depth meter and the two-column ladder.
type BookPanel struct{}

// Render draws the order-book panel for one snapshot.
func (p *BookPanel) Render(book domain.OrderBookSnapshot, top domain.BookTop, width, height int) *image.NRGBA {
	cv := NewCanvas(width, height, colBG)
	w := float64(width)
	st := domain.ComputeDepth(book, top)
	dec := format.PriceDecimals(top.Bid)

	// Header: spread and relative spread.
	header := "Spread " + format.Num(st.Spread, dec) + "   Spread% " + fmt.Sprintf("%.3f%%", st.SpreadPct)
	cv.Text(bookMargin, 20, header, colLabel)

	// Depth meter: one bar, split by the bid share.
	meterW := w - 2*bookMargin
	bidW := meterW * st.BidPct / 100
	cv.FillRect(bookMargin, meterTop, bidW, meterHeight, colUp)
	cv.FillRect(bookMargin+bidW, meterTop, meterW-bidW, meterHeight, colDown)

	split := fmt.Sprintf("%.0f%% / %.0f%%", st.BidPct, st.AskPct)
	cv.Text(bookMargin, meterTop+meterHeight+14, split, colTextDim)

	// Ladder: bids left, asks right; each row's bar is proportional to
	// that row's quantity against the largest single row on either side.
	maxQty := book.MaxLevelQty()
	colW := (w - 2*bookMargin - colGap) / 2
	rightX := bookMargin + colW + colGap

	cv.Text(bookMargin, ladderTop-4, "Bid", colUp)
	cv.Text(rightX, ladderTop-4, "Ask", colDown)

	for i, lv := range book.Bids {
		y := ladderTop + float64(i)*rowHeight
		barW := colW * float64(domain.RowWidthPct(lv.Qty, maxQty)) / 100
		// Bid bars grow right-to-left toward the mid column.
		cv.FillRect(bookMargin+colW-barW, y, barW, rowHeight-2, colUpSoft)
		cv.Text(bookMargin+2, y+11, format.Num(lv.Price, dec), colText)
		qty := format.Num(lv.Qty, 4)
		cv.Text(bookMargin+colW-TextWidth(qty)-2, y+11, qty, colTextDim)
	}

	for i, lv := range book.Asks {
		y := ladderTop + float64(i)*rowHeight
		barW := colW * float64(domain.RowWidthPct(lv.Qty, maxQty)) / 100
		cv.FillRect(rightX, y, barW, rowHeight-2, colDownSoft)
		cv.Text(rightX+2, y+11, format.Num(lv.Price, dec), colText)
		qty := format.Num(lv.Qty, 4)
		cv.Text(rightX+colW-TextWidth(qty)-2, y+11, qty, colTextDim)
	}

	return cv.Image()
}
