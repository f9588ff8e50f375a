package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"goldview/internal/domain"
	"goldview/internal/infra"

	"golang.org/x/time/rate"
)

// Client is the Binance public market-data REST client (Boundary Layer).
// Only unauthenticated endpoints are used; there is nothing to sign.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new market-data client.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.API.Binance.RestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		// Stay well under the public API weight budget: the book poll is
		// the chattiest caller at ~1.25 req/s.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		logger:  slog.Default().With("module", "binance_client"),
	}
}

// Tickers24h fetches the full 24h rolling ticker dump. Entries that fail
// the boundary decode are dropped, not propagated.
func (c *Client) Tickers24h(ctx context.Context) ([]domain.TickerSummary, error) {
	body, err := c.get(ctx, "/api/v3/ticker/24hr", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var entries []ticker24hEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: tickers: %v", domain.ErrDecode, err)
	}

	out := make([]domain.TickerSummary, 0, len(entries))
	for _, e := range entries {
		t, err := e.toDomain()
		if err != nil {
			c.logger.Debug("Dropping malformed ticker entry", slog.String("symbol", e.Symbol), slog.Any("error", err))
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Klines fetches the bar history for one (symbol, interval) key.
// Malformed rows are dropped; surviving rows keep their order.
func (c *Client) Klines(ctx context.Context, symbol string, interval domain.Interval, limit int) ([]domain.PriceBar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval.String())
	q.Set("limit", fmt.Sprintf("%d", limit))

	body, err := c.get(ctx, "/api/v3/klines", q)
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s/%s: %w", symbol, interval, err)
	}

	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: klines: %v", domain.ErrDecode, err)
	}

	bars := make([]domain.PriceBar, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKlineRow(row)
		if err != nil {
			c.logger.Debug("Dropping malformed kline row", slog.Int("row", i), slog.Any("error", err))
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// BookTicker fetches the best bid/ask pair for one symbol.
func (c *Client) BookTicker(ctx context.Context, symbol string) (domain.BookTop, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	body, err := c.get(ctx, "/api/v3/ticker/bookTicker", q)
	if err != nil {
		return domain.BookTop{}, fmt.Errorf("fetch book ticker %s: %w", symbol, err)
	}

	var resp bookTickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.BookTop{}, fmt.Errorf("%w: book ticker: %v", domain.ErrDecode, err)
	}

	bid, err := strconv.ParseFloat(resp.BidPrice, 64)
	if err != nil {
		return domain.BookTop{}, fmt.Errorf("%w: bid price: %v", domain.ErrDecode, err)
	}
	ask, err := strconv.ParseFloat(resp.AskPrice, 64)
	if err != nil {
		return domain.BookTop{}, fmt.Errorf("%w: ask price: %v", domain.ErrDecode, err)
	}
	return domain.BookTop{Bid: bid, Ask: ask}, nil
}

// Depth fetches the order book and trims it to keep levels per side.
func (c *Client) Depth(ctx context.Context, symbol string, keep int) (domain.OrderBookSnapshot, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("limit", fmt.Sprintf("%d", DepthRequestLimit))

	body, err := c.get(ctx, "/api/v3/depth", q)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("fetch depth %s: %w", symbol, err)
	}

	var resp depthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("%w: depth: %v", domain.ErrDecode, err)
	}

	bids, err := parseLevels(resp.Bids, keep)
	if err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	asks, err := parseLevels(resp.Asks, keep)
	if err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	return domain.OrderBookSnapshot{Bids: bids, Asks: asks}, nil
}

// get handles rate limiting, headers and status checking.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("get "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("read "+path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrBadStatus, path, resp.StatusCode)
	}
	return body, nil
}
