package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TickerSummary is the 24h rolling snapshot for one instrument.
// Monetary fields stay decimal until they reach the formatter.
type TickerSummary struct {
	Symbol      string          `json:"symbol"`
	LastPrice   decimal.Decimal `json:"last_price"`
	ChangePct   decimal.Decimal `json:"change_pct"`
	ChangeAbs   decimal.Decimal `json:"change_abs"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	QuoteVolume decimal.Decimal `json:"quote_volume"`
}

// ChangeUp reports whether the 24h change is non-negative.
func (t TickerSummary) ChangeUp() bool {
	return !t.ChangePct.IsNegative()
}

// leveragedInfixes mark leveraged-token symbols excluded from the board.
var leveragedInfixes = []string{"UPUSDT", "DOWNUSDT"}

// BuildBoard turns a raw 24h ticker dump into the market board:
// only symbols quoted in quoteAsset, leveraged tokens excluded,
// sorted by quote volume descending, truncated to limit.
func BuildBoard(all []TickerSummary, quoteAsset string, limit int) []TickerSummary {
	board := make([]TickerSummary, 0, limit)
	for _, t := range all {
		if !strings.HasSuffix(t.Symbol, quoteAsset) {
			continue
		}
		if isLeveraged(t.Symbol) {
			continue
		}
		board = append(board, t)
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].QuoteVolume.GreaterThan(board[j].QuoteVolume)
	})

	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

func isLeveraged(symbol string) bool {
	for _, infix := range leveragedInfixes {
		if strings.Contains(symbol, infix) {
			return true
		}
	}
	return false
}

// PinFavorites moves watched symbols to the front of the board in
// place, keeping the volume order inside both groups.
func PinFavorites(board []TickerSummary, favorites map[string]bool) {
	if len(favorites) == 0 {
		return
	}
	sort.SliceStable(board, func(i, j int) bool {
		return favorites[board[i].Symbol] && !favorites[board[j].Symbol]
	})
}

// BoardIndex keys a board by symbol for O(1) selection lookups.
func BoardIndex(board []TickerSummary) map[string]TickerSummary {
	idx := make(map[string]TickerSummary, len(board))
	for _, t := range board {
		idx[t.Symbol] = t
	}
	return idx
}

// BaseAsset strips the quote suffix for display ("ETHUSDT" -> "ETH").
func BaseAsset(symbol, quoteAsset string) string {
	return strings.TrimSuffix(symbol, quoteAsset)
}
