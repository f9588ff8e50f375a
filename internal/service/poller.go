// Package service holds the snapshot pollers that feed the view loop.
// Each poller owns one REST concern and translates results into inbox
// events; it never touches the view directly.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"goldview/internal/domain"
	"goldview/internal/event"
	"goldview/internal/infra"
)

// MarketAPI is the REST surface the pollers consume.
type MarketAPI interface {
	Tickers24h(ctx context.Context) ([]domain.TickerSummary, error)
	Klines(ctx context.Context, symbol string, interval domain.Interval, limit int) ([]domain.PriceBar, error)
	BookTicker(ctx context.Context, symbol string) (domain.BookTop, error)
	Depth(ctx context.Context, symbol string, keep int) (domain.OrderBookSnapshot, error)
}

// TickerPoller refreshes the 24h market board on a fixed cadence.
type TickerPoller struct {
	api        MarketAPI
	inbox      chan<- event.Event
	interval   time.Duration
	quoteAsset string
	boardSize  int

	// favorites, when set, is read on every poll so watch-list changes
	// pin symbols on the next refresh.
	favorites func() map[string]bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewTickerPoller creates a board poller. intervalSec below 1 falls
// back to 12 seconds; favorites may be nil.
func NewTickerPoller(api MarketAPI, inbox chan<- event.Event, intervalSec int, quoteAsset string, boardSize int, favorites func() map[string]bool) *TickerPoller {
	if intervalSec < 1 {
		intervalSec = 12
	}
	return &TickerPoller{
		api:        api,
		inbox:      inbox,
		interval:   time.Duration(intervalSec) * time.Second,
		quoteAsset: quoteAsset,
		boardSize:  boardSize,
		favorites:  favorites,
		logger:     slog.With("module", "ticker_poller"),
	}
}

// Start fetches once immediately, then polls until Stop or context
// cancellation.
func (p *TickerPoller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.poll(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("ticker polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("ticker polling stopped")
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
	return nil
}

func (p *TickerPoller) poll(ctx context.Context) {
	// A request never outlives its polling slot.
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	all, err := p.api.Tickers24h(ctx)
	if err != nil {
		infra.GlobalMetrics.RecordSnapshotError()
		send(ctx, p.inbox, &event.SnapshotErrorEvent{Scope: event.ScopeTickers, Err: err})
		return
	}
	infra.GlobalMetrics.RecordSnapshot()
	board := domain.BuildBoard(all, p.quoteAsset, p.boardSize)
	if p.favorites != nil {
		domain.PinFavorites(board, p.favorites())
	}
	send(ctx, p.inbox, &event.BoardEvent{Board: board})
}

// Stop cancels polling and waits for the worker to exit.
func (p *TickerPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// BookPoller refreshes the best quote and visible depth for whatever
// instrument is currently selected. The selection is re-read every
// tick, so a switch takes effect on the next poll without restarts.
type BookPoller struct {
	api       MarketAPI
	inbox     chan<- event.Event
	interval  time.Duration
	depth     int
	selection func() (string, domain.Interval)

	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewBookPoller creates a depth poller. intervalMS below 100 falls back
// to 1600 milliseconds.
func NewBookPoller(api MarketAPI, inbox chan<- event.Event, intervalMS, depth int, selection func() (string, domain.Interval)) *BookPoller {
	if intervalMS < 100 {
		intervalMS = 1600
	}
	return &BookPoller{
		api:       api,
		inbox:     inbox,
		interval:  time.Duration(intervalMS) * time.Millisecond,
		depth:     depth,
		selection: selection,
		logger:    slog.With("module", "book_poller"),
	}
}

// Start begins polling until Stop or context cancellation.
func (p *BookPoller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.poll(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("book polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("book polling stopped")
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
	return nil
}

func (p *BookPoller) poll(ctx context.Context) {
	symbol, _ := p.selection()
	if symbol == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	top, err := p.api.BookTicker(ctx, symbol)
	if err != nil {
		infra.GlobalMetrics.RecordSnapshotError()
		send(ctx, p.inbox, &event.SnapshotErrorEvent{Scope: event.ScopeBook, Err: err})
		return
	}
	book, err := p.api.Depth(ctx, symbol, p.depth)
	if err != nil {
		infra.GlobalMetrics.RecordSnapshotError()
		send(ctx, p.inbox, &event.SnapshotErrorEvent{Scope: event.ScopeBook, Err: err})
		return
	}

	infra.GlobalMetrics.RecordSnapshot()
	send(ctx, p.inbox, &event.BookEvent{Symbol: symbol, Top: top, Book: book})
}

// Stop cancels polling and waits for the worker to exit.
func (p *BookPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// LoadSeries fetches the full kline history for a key and hands it to
// the loop. Called at startup and after every selection change; the
// stream worker only patches the tail.
func LoadSeries(ctx context.Context, api MarketAPI, inbox chan<- event.Event, symbol string, interval domain.Interval, limit int) error {
	bars, err := api.Klines(ctx, symbol, interval, limit)
	if err != nil {
		infra.GlobalMetrics.RecordSnapshotError()
		send(ctx, inbox, &event.SnapshotErrorEvent{Scope: event.ScopeSeries, Err: err})
		return err
	}
	infra.GlobalMetrics.RecordSnapshot()
	send(ctx, inbox, &event.SeriesEvent{Symbol: symbol, Interval: interval, Bars: bars})
	return nil
}

// send delivers an event unless the context is already gone. Snapshot
// events are few and replaceable, so blocking on a full inbox briefly
// is fine; shutdown unblocks via ctx.
func send(ctx context.Context, inbox chan<- event.Event, ev event.Event) {
	select {
	case inbox <- ev:
	case <-ctx.Done():
	}
}
