package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"goldview/internal/domain"
	"goldview/internal/event"
	"goldview/internal/infra/storage"
)

func newTestControl(t *testing.T, inboxSize int) (*Control, chan event.Event, *http.ServeMux) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "goldview.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	inbox := make(chan event.Event, inboxSize)
	ctl := NewControl(inbox, store)
	mux := http.NewServeMux()
	ctl.Register(mux)
	return ctl, inbox, mux
}

func TestControl_Select(t *testing.T) {
	_, inbox, mux := newTestControl(t, 4)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/select?symbol=ethusdt&interval=1h", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	got := <-inbox
	ev, ok := got.(*event.SelectEvent)
	if !ok {
		t.Fatalf("event type = %T, want *event.SelectEvent", got)
	}
	if ev.Symbol != "ETHUSDT" || ev.Interval != domain.Interval1h {
		t.Fatalf("got %s %s, want ETHUSDT 1h", ev.Symbol, ev.Interval)
	}
}

func TestControl_SelectRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing symbol", "/select?interval=1h"},
		{"bad interval", "/select?symbol=BTCUSDT&interval=7m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, inbox, mux := newTestControl(t, 4)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if len(inbox) != 0 {
				t.Fatalf("inbox has %d events, want 0", len(inbox))
			}
		})
	}
}

func TestControl_HoverAndLeave(t *testing.T) {
	_, inbox, mux := newTestControl(t, 4)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hover?x=123.5", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hover?leave=1", nil))

	first := (<-inbox).(*event.HoverEvent)
	if first.X != 123.5 || first.Leave {
		t.Fatalf("first hover = %+v, want X=123.5 Leave=false", first)
	}
	second := (<-inbox).(*event.HoverEvent)
	if !second.Leave {
		t.Fatal("second hover should be a leave")
	}
}

func TestControl_Resize(t *testing.T) {
	_, inbox, mux := newTestControl(t, 4)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resize?w=1280&h=600", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	ev := (<-inbox).(*event.ResizeEvent)
	if ev.Width != 1280 || ev.Height != 600 {
		t.Fatalf("resize = %dx%d, want 1280x600", ev.Width, ev.Height)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resize?w=0&h=600", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero width status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestControl_Order(t *testing.T) {
	_, inbox, mux := newTestControl(t, 4)

	body := `{"symbol":"btcusdt","side":"up","type":"market","amount":"0.5","leverage":5}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusAccepted, rec.Body)
	}

	ev := (<-inbox).(*event.PlaceOrderEvent)
	if ev.Ticket.Symbol != "BTCUSDT" {
		t.Fatalf("ticket symbol = %s, want BTCUSDT", ev.Ticket.Symbol)
	}
	if !ev.Ticket.Amount.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("ticket amount = %s, want 0.5", ev.Ticket.Amount)
	}
	if ev.Ticket.Leverage != 5 {
		t.Fatalf("ticket leverage = %d, want 5", ev.Ticket.Leverage)
	}
}

func TestControl_OrderRejectsBadBody(t *testing.T) {
	_, inbox, mux := newTestControl(t, 4)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/order", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if len(inbox) != 0 {
		t.Fatalf("inbox has %d events, want 0", len(inbox))
	}
}

func TestControl_CancelOrder(t *testing.T) {
	_, inbox, mux := newTestControl(t, 4)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order/cancel?id=OD-abc12345", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	ev := (<-inbox).(*event.CancelOrderEvent)
	if ev.ID != "OD-abc12345" {
		t.Fatalf("cancel id = %s, want OD-abc12345", ev.ID)
	}
}

func TestControl_FullInboxReturns503(t *testing.T) {
	_, inbox, mux := newTestControl(t, 1)
	inbox <- &event.HoverEvent{Leave: true}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hover?x=1", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestControl_WatchToggleAndList(t *testing.T) {
	_, _, mux := newTestControl(t, 4)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/watch/toggle?symbol=solusdt", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want %d", rec.Code, http.StatusOK)
	}
	var reply struct {
		Symbol   string `json:"symbol"`
		Favorite bool   `json:"favorite"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatalf("decode toggle reply: %v", err)
	}
	if reply.Symbol != "SOLUSDT" || !reply.Favorite {
		t.Fatalf("toggle reply = %+v, want SOLUSDT favorite=true", reply)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watchlist", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("watchlist status = %d, want %d", rec.Code, http.StatusOK)
	}
	var items []domain.WatchItem
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode watchlist: %v", err)
	}
	if len(items) != 1 || items[0].Symbol != "SOLUSDT" {
		t.Fatalf("watchlist = %+v, want one SOLUSDT entry", items)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/watch/delete?symbol=SOLUSDT", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watchlist", nil))
	items = nil
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode watchlist after delete: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("watchlist after delete = %+v, want empty", items)
	}
}

func TestControl_Exports(t *testing.T) {
	ctl, _, mux := newTestControl(t, 4)

	if err := ctl.store.RecordExport(&domain.ChartExport{
		ID:       "exp-1",
		Symbol:   "BTCUSDT",
		Interval: "1h",
		Path:     "/tmp/chart.png",
	}); err != nil {
		t.Fatalf("record export: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var exports []domain.ChartExport
	if err := json.NewDecoder(rec.Body).Decode(&exports); err != nil {
		t.Fatalf("decode exports: %v", err)
	}
	if len(exports) != 1 || exports[0].ID != "exp-1" {
		t.Fatalf("exports = %+v, want one exp-1 entry", exports)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports?limit=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
