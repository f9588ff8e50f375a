package domain

import (
	"math"
	"testing"
)

func TestComputeDepth(t *testing.T) {
	t.Run("70/30 split", func(t *testing.T) {
		book := OrderBookSnapshot{
			Bids: []BookLevel{{Price: 99, Qty: 40}, {Price: 98, Qty: 30}},
			Asks: []BookLevel{{Price: 101, Qty: 30}},
		}
		st := ComputeDepth(book, BookTop{Bid: 99, Ask: 101})

		if st.BidQty != 70 || st.AskQty != 30 {
			t.Fatalf("totals = %v/%v, want 70/30", st.BidQty, st.AskQty)
		}
		if st.BidPct != 70 || st.AskPct != 30 {
			t.Errorf("pct = %v/%v, want 70/30", st.BidPct, st.AskPct)
		}
		if st.Spread != 2 {
			t.Errorf("spread = %v, want 2", st.Spread)
		}
		if st.Mid != 100 {
			t.Errorf("mid = %v, want 100", st.Mid)
		}
		if st.SpreadPct != 2 {
			t.Errorf("spreadPct = %v, want 2", st.SpreadPct)
		}
	})

	t.Run("Empty book is a neutral split, never NaN", func(t *testing.T) {
		st := ComputeDepth(OrderBookSnapshot{}, BookTop{})

		if math.IsNaN(st.BidPct) || math.IsNaN(st.AskPct) || math.IsNaN(st.SpreadPct) {
			t.Fatal("NaN leaked out of ComputeDepth")
		}
		if st.BidPct != 50 || st.AskPct != 50 {
			t.Errorf("pct = %v/%v, want neutral 50/50", st.BidPct, st.AskPct)
		}
		if st.Spread != 0 || st.Mid != 0 {
			t.Errorf("one-sided book must not fabricate a spread")
		}
	})

	t.Run("One-sided book", func(t *testing.T) {
		book := OrderBookSnapshot{Bids: []BookLevel{{Price: 10, Qty: 5}}}
		st := ComputeDepth(book, BookTop{Bid: 10})

		if st.BidPct != 100 || st.AskPct != 0 {
			t.Errorf("pct = %v/%v, want 100/0", st.BidPct, st.AskPct)
		}
		if st.Spread != 0 {
			t.Errorf("missing ask side must not fabricate a spread")
		}
	})
}

func TestRowWidthPct(t *testing.T) {
	book := OrderBookSnapshot{
		Bids: []BookLevel{{Qty: 8}, {Qty: 2}},
		Asks: []BookLevel{{Qty: 4}},
	}
	max := book.MaxLevelQty()
	if max != 8 {
		t.Fatalf("MaxLevelQty = %v, want 8", max)
	}

	tests := []struct {
		qty  float64
		want int
	}{
		{8, 100},
		{4, 50},
		{2, 25},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RowWidthPct(tt.qty, max); got != tt.want {
			t.Errorf("RowWidthPct(%v, %v) = %d, want %d", tt.qty, max, got, tt.want)
		}
	}
}

func TestMaxLevelQty_FloorsAtOne(t *testing.T) {
	if got := (OrderBookSnapshot{}).MaxLevelQty(); got != 1 {
		t.Errorf("empty book MaxLevelQty = %v, want 1", got)
	}
}
