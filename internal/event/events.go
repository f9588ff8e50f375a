package event

import "goldview/internal/domain"

// Event is anything the view loop can consume. All mutations of the
// market view travel through the loop inbox as events; the loop is the
// only writer.
type Event interface {
	Kind() string
}

// Snapshot error scopes.
const (
	ScopeTickers = "tickers"
	ScopeBook    = "book"
	ScopeSeries  = "series"
)

// BoardEvent carries a full market-board replacement (24h ticker poll).
type BoardEvent struct {
	Board []domain.TickerSummary
}

func (*BoardEvent) Kind() string { return "board" }

// SnapshotErrorEvent signals a failed poll. The loop flips the degraded
// flag and keeps the previous snapshot on screen.
type SnapshotErrorEvent struct {
	Scope string
	Err   error
}

func (*SnapshotErrorEvent) Kind() string { return "snapshot_error" }

// BookEvent carries a wholesale order-book replacement for one symbol.
type BookEvent struct {
	Symbol string
	Top    domain.BookTop
	Book   domain.OrderBookSnapshot
}

func (*BookEvent) Kind() string { return "book" }

// SeriesEvent carries a full kline history replacement for one key.
type SeriesEvent struct {
	Symbol   string
	Interval domain.Interval
	Bars     []domain.PriceBar
}

func (*SeriesEvent) Kind() string { return "series" }

// BarUpdateEvent is one incremental kline update from the stream.
// Hot path: instances come from the pool, the loop releases them.
type BarUpdateEvent struct {
	Symbol   string
	Interval domain.Interval
	Bar      domain.PriceBar
}

func (*BarUpdateEvent) Kind() string { return "bar_update" }

// SelectEvent switches the (instrument, granularity) key.
type SelectEvent struct {
	Symbol   string
	Interval domain.Interval
}

func (*SelectEvent) Kind() string { return "select" }

// HoverEvent is a pointer position over the chart surface, or a leave.
type HoverEvent struct {
	X     float64
	Leave bool
}

func (*HoverEvent) Kind() string { return "hover" }

// ResizeEvent changes the render surface dimensions.
type ResizeEvent struct {
	Width  int
	Height int
}

func (*ResizeEvent) Kind() string { return "resize" }

// PlaceOrderEvent submits a paper-trade ticket.
type PlaceOrderEvent struct {
	Ticket domain.Ticket
}

func (*PlaceOrderEvent) Kind() string { return "place_order" }

// CancelOrderEvent removes an open paper order.
type CancelOrderEvent struct {
	ID string
}

func (*CancelOrderEvent) Kind() string { return "cancel_order" }

// ExportRequestEvent asks the loop to render and persist a snapshot,
// typically fired by the cron scheduler.
type ExportRequestEvent struct{}

func (*ExportRequestEvent) Kind() string { return "export_request" }
