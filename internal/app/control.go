package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"goldview/internal/domain"
	"goldview/internal/event"
	"goldview/internal/infra/storage"
)

// Control is the local HTTP surface for driving the view: selection,
// hover, resize, paper orders, watch list and the export log. It shares
// the debug listener; everything stays on localhost.
type Control struct {
	inbox  chan<- event.Event
	store  *storage.Storage
	logger *slog.Logger
}

// NewControl creates the control surface around the loop inbox.
func NewControl(inbox chan<- event.Event, store *storage.Storage) *Control {
	return &Control{
		inbox:  inbox,
		store:  store,
		logger: slog.With("module", "control"),
	}
}

// Register mounts all control handlers on the mux.
func (c *Control) Register(mux *http.ServeMux) {
	mux.HandleFunc("/select", c.handleSelect)
	mux.HandleFunc("/hover", c.handleHover)
	mux.HandleFunc("/resize", c.handleResize)
	mux.HandleFunc("/order", c.handleOrder)
	mux.HandleFunc("/order/cancel", c.handleCancelOrder)
	mux.HandleFunc("/watch/toggle", c.handleToggleWatch)
	mux.HandleFunc("/watch/delete", c.handleDeleteWatch)
	mux.HandleFunc("/watchlist", c.handleWatchList)
	mux.HandleFunc("/exports", c.handleExports)
}

// send posts one event without blocking the request. A full inbox means
// the loop is badly behind; the caller can simply retry.
func (c *Control) send(w http.ResponseWriter, ev event.Event) {
	select {
	case c.inbox <- ev:
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "event inbox full", http.StatusServiceUnavailable)
	}
}

func (c *Control) handleSelect(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.FormValue("symbol"))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	interval, err := domain.ParseInterval(r.FormValue("interval"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.send(w, &event.SelectEvent{Symbol: symbol, Interval: interval})
}

func (c *Control) handleHover(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("leave") != "" {
		c.send(w, &event.HoverEvent{Leave: true})
		return
	}
	x, err := strconv.ParseFloat(r.FormValue("x"), 64)
	if err != nil {
		http.Error(w, "x must be a number", http.StatusBadRequest)
		return
	}
	c.send(w, &event.HoverEvent{X: x})
}

func (c *Control) handleResize(w http.ResponseWriter, r *http.Request) {
	width, errW := strconv.Atoi(r.FormValue("w"))
	height, errH := strconv.Atoi(r.FormValue("h"))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		http.Error(w, "w and h must be positive integers", http.StatusBadRequest)
		return
	}
	c.send(w, &event.ResizeEvent{Width: width, Height: height})
}

// orderRequest is the JSON body for /order. Decimal fields accept both
// numbers and strings.
type orderRequest struct {
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	LimitPrice decimal.Decimal `json:"limit_price"`
	Leverage   int             `json:"leverage"`
}

func (c *Control) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid order body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	// Balance and price checks happen inside the loop; only shape is
	// validated here.
	c.send(w, &event.PlaceOrderEvent{Ticket: domain.Ticket{
		Symbol:     strings.ToUpper(req.Symbol),
		Side:       strings.ToUpper(req.Side),
		Type:       strings.ToUpper(req.Type),
		Amount:     req.Amount,
		LimitPrice: req.LimitPrice,
		Leverage:   req.Leverage,
	}})
}

func (c *Control) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	c.send(w, &event.CancelOrderEvent{ID: id})
}

func (c *Control) handleToggleWatch(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.FormValue("symbol"))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	fav, err := c.store.ToggleFavorite(symbol)
	if err != nil {
		c.logger.Error("toggle favorite failed", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	c.writeJSON(w, map[string]any{"symbol": symbol, "favorite": fav})
}

func (c *Control) handleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.FormValue("symbol"))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if err := c.store.DeleteWatch(symbol); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Control) handleWatchList(w http.ResponseWriter, _ *http.Request) {
	items, err := c.store.GetAllWatches()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	c.writeJSON(w, items)
}

func (c *Control) handleExports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.FormValue("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	exports, err := c.store.RecentExports(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	c.writeJSON(w, exports)
}

func (c *Control) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Warn("control response encode failed", slog.Any("error", err))
	}
}
