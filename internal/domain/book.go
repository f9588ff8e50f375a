package domain

import "math"

// BookLevel is one (price, quantity) rung of the order book ladder.
type BookLevel struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// OrderBookSnapshot holds the visible depth for the selected instrument.
// Bids are best-first (descending price), asks best-first (ascending).
// Replaced wholesale on every poll; never merged incrementally.
type OrderBookSnapshot struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// BookTop is the best bid/ask pair for the selected instrument.
type BookTop struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// Spread returns ask - bid, zero when either side is missing.
func (t BookTop) Spread() float64 {
	if t.Bid == 0 || t.Ask == 0 {
		return 0
	}
	return t.Ask - t.Bid
}

// Midpoint returns (bid+ask)/2, zero when either side is missing.
func (t BookTop) Midpoint() float64 {
	if t.Bid == 0 || t.Ask == 0 {
		return 0
	}
	return (t.Bid + t.Ask) / 2
}

// DepthStats are the derived numbers behind the depth meter.
type DepthStats struct {
	BidQty    float64
	AskQty    float64
	BidPct    float64 // share of bid quantity, 0..100
	AskPct    float64
	Spread    float64
	Mid       float64
	SpreadPct float64 // spread relative to midpoint, percent
}

// ComputeDepth aggregates the ladder into meter percentages and spread.
// An empty book yields a neutral 50/50 split, never NaN.
func ComputeDepth(book OrderBookSnapshot, top BookTop) DepthStats {
	st := DepthStats{
		Spread: top.Spread(),
		Mid:    top.Midpoint(),
	}
	for _, lv := range book.Bids {
		st.BidQty += lv.Qty
	}
	for _, lv := range book.Asks {
		st.AskQty += lv.Qty
	}

	total := st.BidQty + st.AskQty
	if total > 0 {
		st.BidPct = st.BidQty / total * 100
	} else {
		st.BidPct = 50
	}
	st.AskPct = 100 - st.BidPct

	if st.Mid > 0 {
		st.SpreadPct = st.Spread / st.Mid * 100
	}
	return st
}

// MaxLevelQty returns the largest single-row quantity across both sides,
// at least 1 so row widths never divide by zero. Per-row normalization is
// deliberate: bar widths compare individual rungs, not cumulative depth.
func (b OrderBookSnapshot) MaxLevelQty() float64 {
	max := 1.0
	for _, lv := range b.Bids {
		if lv.Qty > max {
			max = lv.Qty
		}
	}
	for _, lv := range b.Asks {
		if lv.Qty > max {
			max = lv.Qty
		}
	}
	return max
}

// RowWidthPct maps one rung's quantity to its bar width in percent.
func RowWidthPct(qty, maxQty float64) int {
	if maxQty <= 0 {
		return 0
	}
	w := math.Round(qty / maxQty * 100)
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return int(w)
}
