package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"goldview/internal/domain"
	"goldview/internal/event"
	"goldview/internal/infra"
	"goldview/internal/render"
)

// Hooks are the loop's outbound boundary. All of them receive copies
// and run on the loop goroutine, so they must not block for long.
type Hooks struct {
	// Render is invoked with a view snapshot whenever something the
	// chart draws has changed.
	Render func(domain.MarketView)

	// SelectionChanged fires after a successful instrument or
	// granularity switch, for persistence.
	SelectionChanged func(symbol string, interval domain.Interval)

	// Export is invoked on an export request with a view snapshot.
	Export func(domain.MarketView)
}

// ViewLoop is the single-threaded owner of the market view. Every
// mutation arrives as an event through the inbox; pollers, the stream
// worker and the scheduler only ever send.
type ViewLoop struct {
	inbox chan event.Event
	view  *domain.MarketView
	hooks Hooks

	logger *slog.Logger

	mu sync.RWMutex // guards view for external reads
}

// NewViewLoop creates the loop around an initial view.
func NewViewLoop(inboxSize int, view *domain.MarketView, hooks Hooks) *ViewLoop {
	return &ViewLoop{
		inbox:  make(chan event.Event, inboxSize),
		view:   view,
		hooks:  hooks,
		logger: slog.With("module", "view_loop"),
	}
}

// Inbox returns the event channel. External workers send events here.
func (l *ViewLoop) Inbox() chan<- event.Event {
	return l.inbox
}

// Run drains the inbox until the context is cancelled. It MUST be run
// in a single goroutine.
func (l *ViewLoop) Run(ctx context.Context) {
	l.logger.Info("view loop started")

	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			panic(fmt.Sprintf("view loop halted: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("view loop stopping")
			return
		case ev := <-l.inbox:
			l.Apply(ev)
		}
	}
}

// Apply processes one event synchronously. Exposed so tests and the
// scheduler path can drive the loop without goroutines; Run is the only
// concurrent caller.
func (l *ViewLoop) Apply(ev event.Event) {
	// Exports run outside the lock like Render does: the compose and
	// disk write must not block Selection/Snapshot readers.
	if _, ok := ev.(*event.ExportRequestEvent); ok {
		if l.hooks.Export != nil {
			l.hooks.Export(l.Snapshot())
		}
		return
	}

	l.mu.Lock()
	dirty := l.process(ev)
	l.mu.Unlock()

	if dirty && l.hooks.Render != nil {
		start := time.Now()
		l.hooks.Render(l.Snapshot())
		infra.GlobalMetrics.RecordFrame(time.Since(start).Nanoseconds())
	}
}

// process applies one event to the owned view and reports whether the
// frame must be redrawn. Redraw triggers are limited to series content,
// live price, direction, hover, surface size and the degraded marker;
// board, book and ledger updates leave the chart alone.
func (l *ViewLoop) process(ev event.Event) (dirty bool) {
	switch e := ev.(type) {
	case *event.BoardEvent:
		l.view.Board = e.Board
		l.view.BoardIdx = domain.BoardIndex(e.Board)
		dirty = l.clearDegraded()

	case *event.BookEvent:
		if !strings.EqualFold(e.Symbol, l.view.Symbol) {
			l.drop("book", e.Symbol)
			return false
		}
		l.view.Book = e.Book
		l.view.Top = e.Top
		dirty = l.clearDegraded()

	case *event.SeriesEvent:
		if !strings.EqualFold(e.Symbol, l.view.Symbol) || e.Interval != l.view.Interval {
			l.drop("series", e.Symbol)
			return false
		}
		l.view.Series.ReplaceAll(e.Bars)
		l.clearDegraded()
		dirty = true

	case *event.BarUpdateEvent:
		dirty = l.handleBarUpdate(e)
		event.ReleaseBarUpdateEvent(e)

	case *event.SnapshotErrorEvent:
		l.logger.Warn("snapshot poll failed",
			slog.String("scope", e.Scope), slog.Any("error", e.Err))
		if !l.view.Degraded {
			l.view.Degraded = true
			infra.GlobalMetrics.SetDegraded(true)
			dirty = true
		}

	case *event.SelectEvent:
		if strings.EqualFold(e.Symbol, l.view.Symbol) && e.Interval == l.view.Interval {
			return false
		}
		l.view.Select(strings.ToUpper(e.Symbol), e.Interval)
		l.logger.Info("selection changed",
			slog.String("symbol", l.view.Symbol), slog.String("interval", string(e.Interval)))
		if l.hooks.SelectionChanged != nil {
			l.hooks.SelectionChanged(l.view.Symbol, l.view.Interval)
		}
		dirty = true

	case *event.HoverEvent:
		idx := domain.NoHover
		if !e.Leave {
			idx = render.IndexAt(e.X, l.view.Width, l.view.Series.Len())
		}
		if idx != l.view.HoverIdx {
			l.view.HoverIdx = idx
			dirty = true
		}

	case *event.ResizeEvent:
		if e.Width > 0 && e.Height > 0 &&
			(e.Width != l.view.Width || e.Height != l.view.Height) {
			l.view.Width = e.Width
			l.view.Height = e.Height
			dirty = true
		}

	case *event.PlaceOrderEvent:
		l.handlePlaceOrder(e.Ticket)

	case *event.CancelOrderEvent:
		l.handleCancelOrder(e.ID)

	default:
		l.logger.Warn("unknown event type", slog.String("kind", ev.Kind()))
	}
	return dirty
}

func (l *ViewLoop) handleBarUpdate(e *event.BarUpdateEvent) bool {
	if !strings.EqualFold(e.Symbol, l.view.Symbol) || e.Interval != l.view.Interval {
		l.drop("bar_update", e.Symbol)
		return false
	}

	dirty := false
	switch l.view.Series.Merge(e.Bar) {
	case domain.MergeReplaced, domain.MergeAppended:
		dirty = true
	case domain.MergeRejected:
		l.logger.Debug("stale bar rejected", slog.Int64("time", e.Bar.Time))
	}
	if l.view.SetLive(e.Bar.Close) {
		dirty = true
	}
	return dirty
}

func (l *ViewLoop) handlePlaceOrder(t domain.Ticket) {
	last := decimal.NewFromFloat(l.view.LivePrice)
	if err := t.Validate(l.view.Balance, last); err != nil {
		l.logger.Warn("ticket rejected",
			slog.String("symbol", t.Symbol), slog.Any("error", err))
		return
	}

	o := domain.NewOrder(t, last, time.Now())
	if o.Status == domain.OrderStatusFilled {
		est := t.Estimate(last)
		if t.Side == domain.SideUp {
			l.view.Balance = l.view.Balance.Sub(est.Total)
		} else {
			l.view.Balance = l.view.Balance.Add(est.Total)
		}
		l.view.Fills = append([]domain.Order{o}, l.view.Fills...)
	} else {
		l.view.OpenOrders = append([]domain.Order{o}, l.view.OpenOrders...)
	}
	l.logger.Info("order accepted",
		slog.String("id", o.ID), slog.String("side", o.Side),
		slog.String("status", o.Status))
}

func (l *ViewLoop) handleCancelOrder(id string) {
	for i := range l.view.OpenOrders {
		if l.view.OpenOrders[i].ID != id {
			continue
		}
		l.view.OpenOrders[i].Status = domain.OrderStatusCanceled
		l.view.OpenOrders = append(l.view.OpenOrders[:i], l.view.OpenOrders[i+1:]...)
		l.logger.Info("order canceled", slog.String("id", id))
		return
	}
	l.logger.Warn("cancel for unknown order",
		slog.String("id", id), slog.Any("error", domain.ErrOrderNotFound))
}

// clearDegraded resets the stale marker after a successful snapshot and
// reports whether that flipped the frame.
func (l *ViewLoop) clearDegraded() bool {
	if !l.view.Degraded {
		return false
	}
	l.view.Degraded = false
	infra.GlobalMetrics.SetDegraded(false)
	return true
}

func (l *ViewLoop) drop(kind, symbol string) {
	infra.GlobalMetrics.RecordDroppedEvent()
	l.logger.Debug("stale event dropped",
		slog.String("kind", kind), slog.String("symbol", symbol))
}

// Selection returns the current (instrument, granularity) key. Safe for
// concurrent use; the book poller reads it every tick.
func (l *ViewLoop) Selection() (string, domain.Interval) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view.Symbol, l.view.Interval
}

// Snapshot returns a render-safe copy of the whole view (external read).
func (l *ViewLoop) Snapshot() domain.MarketView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view.Snapshot()
}
