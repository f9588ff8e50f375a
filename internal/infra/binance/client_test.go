package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"goldview/internal/domain"
	"goldview/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &infra.Config{}
	cfg.API.Binance.RestURL = srv.URL
	return NewClient(cfg)
}

func TestClient_Tickers24h(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		w.Write([]byte(`[
			{"symbol":"ETHUSDT","lastPrice":"3620.50","priceChangePercent":"2.15","priceChange":"76.20","highPrice":"3700.00","lowPrice":"3500.00","quoteVolume":"123456789.12"},
			{"symbol":"BADUSDT","lastPrice":"not-a-number","priceChangePercent":"0","priceChange":"0","highPrice":"0","lowPrice":"0","quoteVolume":"0"}
		]`))
	}))

	got, err := c.Tickers24h(context.Background())
	require.NoError(t, err)

	// The malformed entry is dropped, not propagated.
	require.Len(t, got, 1)
	assert.Equal(t, "ETHUSDT", got[0].Symbol)
	assert.Equal(t, "3620.5", got[0].LastPrice.String())
	assert.Equal(t, "2.15", got[0].ChangePct.String())
}

func TestClient_Klines(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "15m", r.URL.Query().Get("interval"))
		assert.Equal(t, "120", r.URL.Query().Get("limit"))
		w.Write([]byte(`[
			[1700000000000,"100.0","110.0","90.0","105.0","12.5",1700000899999,"0",0,"0","0","0"],
			[1700000900000,"105.0","bad","95.0","100.0","10.0",1700001799999,"0",0,"0","0","0"],
			[1700001800000,"100.0","108.0","99.0","101.0","8.0",1700002699999,"0",0,"0","0","0"]
		]`))
	}))

	bars, err := c.Klines(context.Background(), "ETHUSDT", domain.Interval15m, KlineSnapshotLimit)
	require.NoError(t, err)

	// Malformed middle row dropped.
	require.Len(t, bars, 2)
	assert.Equal(t, int64(1700000000000), bars[0].Time)
	assert.Equal(t, 105.0, bars[0].Close)
	assert.True(t, bars[0].Closed)
	assert.Equal(t, int64(1700001800000), bars[1].Time)
}

func TestClient_BookTicker(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/bookTicker", r.URL.Path)
		w.Write([]byte(`{"symbol":"ETHUSDT","bidPrice":"3620.10","askPrice":"3620.90"}`))
	}))

	top, err := c.BookTicker(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 3620.10, top.Bid)
	assert.Equal(t, 3620.90, top.Ask)
	assert.InDelta(t, 0.8, top.Spread(), 1e-9)
}

func TestClient_Depth(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/depth", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"bids":[["100.0","1.0"],["99.0","2.0"],["98.0","3.0"]],
			"asks":[["101.0","4.0"],["102.0","5.0"],["103.0","6.0"]]
		}`))
	}))

	book, err := c.Depth(context.Background(), "ETHUSDT", 2)
	require.NoError(t, err)

	// Trimmed to keep=2 per side, best-first order preserved.
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 2)
	assert.Equal(t, 100.0, book.Bids[0].Price)
	assert.Equal(t, 101.0, book.Asks[0].Price)
}

func TestClient_BadStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	_, err := c.Tickers24h(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadStatus)
}

func TestClient_ContextCancel(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Tickers24h(ctx)
	require.Error(t, err)
}
