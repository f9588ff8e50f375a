package binance

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"goldview/internal/domain"
	"goldview/internal/event"
	"goldview/internal/infra"

	"github.com/gorilla/websocket"
)

// KlineWorker holds the one live kline subscription. The stream URL
// embeds the (symbol, interval) key, so switching the key means closing
// the connection and redialing — which also guarantees no overlap window
// between the old and the new subscription.
type KlineWorker struct {
	wsBase string
	inbox  chan<- event.Event

	// Desired subscription key. Guarded by keyMu; the connection loop
	// reads it on every (re)dial.
	keyMu    sync.RWMutex
	symbol   string
	interval domain.Interval

	conn      *websocket.Conn
	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewKlineWorker creates a worker for the initial subscription key.
func NewKlineWorker(wsBase, symbol string, interval domain.Interval, inbox chan<- event.Event) *KlineWorker {
	return &KlineWorker{
		wsBase:   wsBase,
		symbol:   symbol,
		interval: interval,
		inbox:    inbox,
	}
}

// Connect starts the connection loop.
func (w *KlineWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

// Subscribe switches the subscription key. The current connection is
// closed first; the loop redials with the new stream, so messages for
// the old key stop before the new key starts.
func (w *KlineWorker) Subscribe(symbol string, interval domain.Interval) {
	w.keyMu.Lock()
	changed := w.symbol != symbol || w.interval != interval
	w.symbol = symbol
	w.interval = interval
	w.keyMu.Unlock()

	if changed {
		w.closeConnection()
	}
}

func (w *KlineWorker) key() (string, domain.Interval) {
	w.keyMu.RLock()
	defer w.keyMu.RUnlock()
	return w.symbol, w.interval
}

func (w *KlineWorker) streamURL() string {
	symbol, interval := w.key()
	return w.wsBase + "/" + strings.ToLower(symbol) + "@kline_" + interval.String()
}

func (w *KlineWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Kline stream connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			infra.GlobalMetrics.RecordStreamReconnect()
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0 // keep retrying forever, just restart the backoff curve
			}
			delay := infra.CalculateBackoff(retryCount)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
			// readLoop returns on close (error or resubscribe); the next
			// iteration redials with the current key.
			infra.GlobalMetrics.RecordStreamReconnect()
		}
	}
}

func (w *KlineWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.streamURL(), nil)
	if err != nil {
		return domain.NewNetworkError("dial kline stream", err)
	}

	// The exchange pings periodically; answering keeps the read deadline moving.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	symbol, interval := w.key()
	slog.Info("Kline stream connected", slog.String("symbol", symbol), slog.String("interval", interval.String()))
	return nil
}

func (w *KlineWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

// handleMessage decodes one push. Malformed payloads and messages for a
// stale key are dropped silently; the snapshot pollers repair any gap.
func (w *KlineWorker) handleMessage(msg []byte) {
	infra.GlobalMetrics.RecordStreamMessage()

	var m wsKlineMessage
	if err := json.Unmarshal(msg, &m); err != nil || m.K.Start == 0 {
		infra.GlobalMetrics.RecordDroppedEvent()
		return
	}

	symbol, interval := w.key()
	if !strings.EqualFold(m.Symbol, symbol) || m.K.Interval != interval.String() {
		infra.GlobalMetrics.RecordDroppedEvent()
		return
	}

	bar, err := m.K.toBar()
	if err != nil {
		slog.Debug("Dropping malformed stream kline", slog.Any("error", err))
		infra.GlobalMetrics.RecordDroppedEvent()
		return
	}

	ev := event.AcquireBarUpdateEvent()
	ev.Symbol = symbol
	ev.Interval = interval
	ev.Bar = bar

	select {
	case w.inbox <- ev:
	default:
		event.ReleaseBarUpdateEvent(ev) // Release if dropped
		infra.GlobalMetrics.RecordDroppedEvent()
	}
}

func (w *KlineWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

// Disconnect stops the loop and waits for it to exit.
func (w *KlineWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
