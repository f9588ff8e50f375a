package domain

import "github.com/shopspring/decimal"

// NoHover marks the absence of a pointer over the chart.
const NoHover = -1

// MarketView is the single context object behind the dashboard: the
// selected (instrument, granularity) key and every piece of state the
// renderer reads. It is owned by the view loop; everything else sees
// copies taken with Snapshot.
type MarketView struct {
	Symbol   string
	Interval Interval

	Series   *Series
	Board    []TickerSummary
	BoardIdx map[string]TickerSummary

	Book OrderBookSnapshot
	Top  BookTop

	// Live price state driving the reference line and direction color.
	LivePrice float64
	PriceUp   bool

	// Pointer / surface state.
	HoverIdx int
	Width    int
	Height   int

	// Degraded is set while the latest snapshot poll failed; stale data
	// stays on screen regardless.
	Degraded bool

	// Paper-order ledger.
	Balance    decimal.Decimal
	OpenOrders []Order
	Fills      []Order
}

// NewMarketView creates the view for an initial selection.
func NewMarketView(symbol string, interval Interval, capacity, width, height int, balance decimal.Decimal) *MarketView {
	return &MarketView{
		Symbol:   symbol,
		Interval: interval,
		Series:   NewSeries(capacity),
		BoardIdx: map[string]TickerSummary{},
		HoverIdx: NoHover,
		Width:    width,
		Height:   height,
		Balance:  balance,
	}
}

// SelectedTicker returns the 24h summary for the current selection.
func (v *MarketView) SelectedTicker() (TickerSummary, bool) {
	t, ok := v.BoardIdx[v.Symbol]
	return t, ok
}

// Select switches the instrument/granularity key. The old series is
// discarded, not merged, and hover state is reset.
func (v *MarketView) Select(symbol string, interval Interval) {
	v.Symbol = symbol
	v.Interval = interval
	v.Series = NewSeries(v.Series.Capacity())
	v.Book = OrderBookSnapshot{}
	v.Top = BookTop{}
	v.LivePrice = 0
	v.HoverIdx = NoHover
}

// SetLive updates the live price and the direction flag. It reports
// whether anything the renderer cares about actually changed.
func (v *MarketView) SetLive(price float64) bool {
	if price <= 0 || price == v.LivePrice {
		return false
	}
	if v.LivePrice > 0 {
		v.PriceUp = price > v.LivePrice
	}
	v.LivePrice = price
	return true
}

// Snapshot returns a render-safe copy: shared slices are duplicated so
// the loop can keep mutating while a frame is drawn or persisted.
func (v *MarketView) Snapshot() MarketView {
	c := *v
	c.Series = NewSeries(v.Series.Capacity())
	c.Series.ReplaceAll(v.Series.Bars())
	c.Board = append([]TickerSummary(nil), v.Board...)
	c.Book.Bids = append([]BookLevel(nil), v.Book.Bids...)
	c.Book.Asks = append([]BookLevel(nil), v.Book.Asks...)
	c.OpenOrders = append([]Order(nil), v.OpenOrders...)
	c.Fills = append([]Order(nil), v.Fills...)

	idx := make(map[string]TickerSummary, len(v.BoardIdx))
	for k, t := range v.BoardIdx {
		idx[k] = t
	}
	c.BoardIdx = idx
	return c
}
