package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"goldview/internal/domain"
	"goldview/internal/event"
)

type fakeAPI struct {
	tickers []domain.TickerSummary
	bars    []domain.PriceBar
	top     domain.BookTop
	book    domain.OrderBookSnapshot
	err     error

	depthKeep int
}

func (f *fakeAPI) Tickers24h(context.Context) ([]domain.TickerSummary, error) {
	return f.tickers, f.err
}

func (f *fakeAPI) Klines(_ context.Context, _ string, _ domain.Interval, _ int) ([]domain.PriceBar, error) {
	return f.bars, f.err
}

func (f *fakeAPI) BookTicker(context.Context, string) (domain.BookTop, error) {
	return f.top, f.err
}

func (f *fakeAPI) Depth(_ context.Context, _ string, keep int) (domain.OrderBookSnapshot, error) {
	f.depthKeep = keep
	return f.book, f.err
}

func summary(symbol string, quoteVolume int64) domain.TickerSummary {
	return domain.TickerSummary{
		Symbol:      symbol,
		LastPrice:   decimal.NewFromInt(100),
		QuoteVolume: decimal.NewFromInt(quoteVolume),
	}
}

func TestTickerPoller_EmitsBoard(t *testing.T) {
	api := &fakeAPI{tickers: []domain.TickerSummary{
		summary("ETHUSDT", 50),
		summary("BTCUSDT", 90),
		summary("BTCEUR", 999),
	}}
	inbox := make(chan event.Event, 4)

	p := NewTickerPoller(api, inbox, 12, "USDT", 40, nil)
	p.poll(context.Background())

	ev, ok := (<-inbox).(*event.BoardEvent)
	if !ok {
		t.Fatal("expected a BoardEvent")
	}
	if len(ev.Board) != 2 {
		t.Fatalf("board size = %d, want 2 (quote filter applied)", len(ev.Board))
	}
	if ev.Board[0].Symbol != "BTCUSDT" {
		t.Errorf("board[0] = %s, want BTCUSDT (volume order)", ev.Board[0].Symbol)
	}
}

func TestTickerPoller_PinsFavorites(t *testing.T) {
	api := &fakeAPI{tickers: []domain.TickerSummary{
		summary("BTCUSDT", 90),
		summary("ETHUSDT", 50),
		summary("SOLUSDT", 10),
	}}
	inbox := make(chan event.Event, 4)
	favorites := func() map[string]bool { return map[string]bool{"SOLUSDT": true} }

	p := NewTickerPoller(api, inbox, 12, "USDT", 40, favorites)
	p.poll(context.Background())

	ev := (<-inbox).(*event.BoardEvent)
	if ev.Board[0].Symbol != "SOLUSDT" {
		t.Errorf("board[0] = %s, want pinned favorite SOLUSDT", ev.Board[0].Symbol)
	}
	if ev.Board[1].Symbol != "BTCUSDT" {
		t.Errorf("board[1] = %s, want volume order after favorites", ev.Board[1].Symbol)
	}
}

func TestTickerPoller_EmitsErrorEvent(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	inbox := make(chan event.Event, 4)

	p := NewTickerPoller(api, inbox, 12, "USDT", 40, nil)
	p.poll(context.Background())

	ev, ok := (<-inbox).(*event.SnapshotErrorEvent)
	if !ok {
		t.Fatal("expected a SnapshotErrorEvent")
	}
	if ev.Scope != event.ScopeTickers {
		t.Errorf("scope = %s, want %s", ev.Scope, event.ScopeTickers)
	}
}

func TestBookPoller_TracksSelection(t *testing.T) {
	api := &fakeAPI{
		top:  domain.BookTop{Bid: 99, Ask: 101},
		book: domain.OrderBookSnapshot{Bids: []domain.BookLevel{{Price: 99, Qty: 1}}},
	}
	inbox := make(chan event.Event, 4)
	symbol := "ETHUSDT"
	selection := func() (string, domain.Interval) { return symbol, domain.Interval15m }

	p := NewBookPoller(api, inbox, 1600, 12, selection)
	p.poll(context.Background())

	ev, ok := (<-inbox).(*event.BookEvent)
	if !ok {
		t.Fatal("expected a BookEvent")
	}
	if ev.Symbol != "ETHUSDT" || ev.Top.Bid != 99 {
		t.Errorf("event = %+v, want selected symbol with top quote", ev)
	}
	if api.depthKeep != 12 {
		t.Errorf("depth keep = %d, want 12", api.depthKeep)
	}

	// Switching the selection redirects the next poll without restart.
	symbol = "BTCUSDT"
	p.poll(context.Background())
	if ev := (<-inbox).(*event.BookEvent); ev.Symbol != "BTCUSDT" {
		t.Errorf("after switch symbol = %s, want BTCUSDT", ev.Symbol)
	}
}

func TestBookPoller_EmptySelectionSkipsPoll(t *testing.T) {
	inbox := make(chan event.Event, 1)
	p := NewBookPoller(&fakeAPI{}, inbox, 1600, 12,
		func() (string, domain.Interval) { return "", "" })

	p.poll(context.Background())
	if len(inbox) != 0 {
		t.Errorf("empty selection emitted %d events, want none", len(inbox))
	}
}

func TestLoadSeries(t *testing.T) {
	bars := []domain.PriceBar{{Time: 100, Open: 1, High: 2, Low: 1, Close: 2, Closed: true}}
	inbox := make(chan event.Event, 1)

	if err := LoadSeries(context.Background(), &fakeAPI{bars: bars}, inbox,
		"ETHUSDT", domain.Interval15m, 120); err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}

	ev, ok := (<-inbox).(*event.SeriesEvent)
	if !ok {
		t.Fatal("expected a SeriesEvent")
	}
	if ev.Symbol != "ETHUSDT" || ev.Interval != domain.Interval15m || len(ev.Bars) != 1 {
		t.Errorf("event = %+v", ev)
	}
}

func TestLoadSeries_Error(t *testing.T) {
	inbox := make(chan event.Event, 1)
	err := LoadSeries(context.Background(), &fakeAPI{err: errors.New("down")}, inbox,
		"ETHUSDT", domain.Interval15m, 120)
	if err == nil {
		t.Fatal("expected an error")
	}
	if ev := (<-inbox).(*event.SnapshotErrorEvent); ev.Scope != event.ScopeSeries {
		t.Errorf("scope = %s, want %s", ev.Scope, event.ScopeSeries)
	}
}

func TestPoller_StartStop(t *testing.T) {
	api := &fakeAPI{tickers: []domain.TickerSummary{summary("ETHUSDT", 1)}}
	inbox := make(chan event.Event, 8)

	p := NewTickerPoller(api, inbox, 12, "USDT", 40, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	p.Stop()

	// The initial synchronous fetch landed before Start returned.
	if len(inbox) == 0 {
		t.Error("no event emitted by the initial fetch")
	}
}
