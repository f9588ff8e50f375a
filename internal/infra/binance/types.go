package binance

import (
	"fmt"
	"strconv"
	"time"

	"goldview/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	maxRetries       = 10

	// KlineSnapshotLimit matches the series capacity: one snapshot fills
	// the whole chart window.
	KlineSnapshotLimit = 120

	// DepthRequestLimit is what we ask the exchange for; the ladder keeps
	// fewer rows per side.
	DepthRequestLimit = 20
)

// ticker24hEntry is one row of GET /api/v3/ticker/24hr.
// All numbers arrive as strings.
type ticker24hEntry struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	PriceChange        string `json:"priceChange"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	QuoteVolume        string `json:"quoteVolume"`
}

// toDomain is the strict decode step at the boundary: any field that
// fails to parse rejects the whole entry.
func (e ticker24hEntry) toDomain() (domain.TickerSummary, error) {
	var (
		t   domain.TickerSummary
		err error
	)
	if e.Symbol == "" {
		return t, domain.ErrInvalidSymbol
	}
	t.Symbol = e.Symbol

	fields := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{e.LastPrice, &t.LastPrice},
		{e.PriceChangePercent, &t.ChangePct},
		{e.PriceChange, &t.ChangeAbs},
		{e.HighPrice, &t.High},
		{e.LowPrice, &t.Low},
		{e.QuoteVolume, &t.QuoteVolume},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return t, fmt.Errorf("%w: ticker %s: %v", domain.ErrDecode, e.Symbol, err)
		}
	}
	return t, nil
}

// bookTickerResponse is GET /api/v3/ticker/bookTicker.
type bookTickerResponse struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// depthResponse is GET /api/v3/depth: levels are ["price","qty"] pairs,
// bids descending, asks ascending.
type depthResponse struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

func parseLevels(raw [][]string, keep int) ([]domain.BookLevel, error) {
	if len(raw) > keep {
		raw = raw[:keep]
	}
	levels := make([]domain.BookLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("%w: depth level has %d fields", domain.ErrDecode, len(pair))
		}
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: depth price: %v", domain.ErrDecode, err)
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: depth qty: %v", domain.ErrDecode, err)
		}
		levels = append(levels, domain.BookLevel{Price: price, Qty: qty})
	}
	return levels, nil
}

// parseKlineRow maps one REST kline row to a PriceBar. Rows are
// heterogeneous arrays: [openTime, "o", "h", "l", "c", "v", closeTime, ...].
func parseKlineRow(row []any) (domain.PriceBar, error) {
	var bar domain.PriceBar
	if len(row) < 7 {
		return bar, fmt.Errorf("%w: kline row has %d fields", domain.ErrDecode, len(row))
	}

	openTime, ok := row[0].(float64)
	if !ok {
		return bar, fmt.Errorf("%w: kline open time is %T", domain.ErrDecode, row[0])
	}
	bar.Time = int64(openTime)

	prices := []struct {
		idx int
		dst *float64
	}{
		{1, &bar.Open},
		{2, &bar.High},
		{3, &bar.Low},
		{4, &bar.Close},
	}
	for _, p := range prices {
		s, ok := row[p.idx].(string)
		if !ok {
			return bar, fmt.Errorf("%w: kline field %d is %T", domain.ErrDecode, p.idx, row[p.idx])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return bar, fmt.Errorf("%w: kline field %d: %v", domain.ErrDecode, p.idx, err)
		}
		*p.dst = v
	}

	// Historical snapshot bars are sealed; the stream owns the live tail.
	bar.Closed = true

	if err := bar.Validate(); err != nil {
		return bar, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return bar, nil
}

// wsKlineMessage is one push from the <symbol>@kline_<interval> stream.
type wsKlineMessage struct {
	EventType string  `json:"e"`
	Symbol    string  `json:"s"`
	K         wsKline `json:"k"`
}

type wsKline struct {
	Start    int64  `json:"t"`
	Symbol   string `json:"s"`
	Interval string `json:"i"`
	Open     string `json:"o"`
	Close    string `json:"c"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Closed   bool   `json:"x"`
}

// toBar converts the partial-bar update, validating as it goes.
func (k wsKline) toBar() (domain.PriceBar, error) {
	bar := domain.PriceBar{Time: k.Start, Closed: k.Closed}

	fields := []struct {
		raw string
		dst *float64
	}{
		{k.Open, &bar.Open},
		{k.High, &bar.High},
		{k.Low, &bar.Low},
		{k.Close, &bar.Close},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return bar, fmt.Errorf("%w: stream kline: %v", domain.ErrDecode, err)
		}
		*f.dst = v
	}

	if err := bar.Validate(); err != nil {
		return bar, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return bar, nil
}
