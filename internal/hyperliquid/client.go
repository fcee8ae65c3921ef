package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"hl-journal/internal/domain"
	"hl-journal/internal/observability"
)

// Default configuration values.
const (
	DefaultAPIURL      = "https://api.hyperliquid.xyz/info"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 2 * time.Second
	DefaultMaxDelay    = 16 * time.Second
	DefaultBackoffMult = 2.0

	// The info endpoint caps userFillsByTime responses at this many fills.
	FillsPerPage = 2000

	// Earliest possible fill timestamp: Hyperliquid mainnet launch,
	// 2022-11-01T00:00:00Z.
	ExchangeEpochMs = 1667260800000

	// Courtesy pause between history pages.
	pageDelay = 500 * time.Millisecond
)

// Client talks to the Hyperliquid info endpoint. All calls are read-only
// POST requests dispatched by a "type" field in the payload.
type Client struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	logger      *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Hyperliquid info client.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultAPIURL
	}
	c := &Client{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends a payload to the info endpoint with retries and exponential
// backoff, unmarshalling the response into result.
func (c *Client) post(ctx context.Context, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Printf("request failed (%v), retrying in %s", lastErr, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				lastErr = fmt.Errorf("unmarshal response: %w", err)
				continue
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// fillsByTimeRequest is the userFillsByTime payload.
type fillsByTimeRequest struct {
	Type            string `json:"type"`
	User            string `json:"user"`
	StartTime       int64  `json:"startTime"`
	EndTime         *int64 `json:"endTime,omitempty"`
	AggregateByTime bool   `json:"aggregateByTime"`
}

// FetchFillsByTime fetches fills for a wallet with time >= startTime.
// endTime of zero means "up to now". Partial fills from the same crossing
// order are aggregated server-side.
func (c *Client) FetchFillsByTime(ctx context.Context, wallet string, startTime, endTime int64) ([]*domain.Fill, error) {
	req := fillsByTimeRequest{
		Type:            "userFillsByTime",
		User:            wallet,
		StartTime:       startTime,
		AggregateByTime: true,
	}
	if endTime > 0 {
		req.EndTime = &endTime
	}

	started := time.Now()
	var wire []wireFill
	if err := c.post(ctx, req, &wire); err != nil {
		return nil, fmt.Errorf("fetch fills: %w", err)
	}
	observability.RecordVenueRequest("userFillsByTime", time.Since(started).Seconds())

	fills := make([]*domain.Fill, 0, len(wire))
	for i := range wire {
		fills = append(fills, wire[i].toDomain(wallet))
	}
	return fills, nil
}

// FetchAllFills fetches the wallet's complete fill history by paginating
// through time windows. Each page starts just past the newest fill of the
// previous page, so a fill is never fetched twice unless two fills share
// a timestamp across a page boundary; the store's tid dedup absorbs that.
func (c *Client) FetchAllFills(ctx context.Context, wallet string) ([]*domain.Fill, error) {
	var all []*domain.Fill
	startTime := int64(ExchangeEpochMs)

	for {
		fills, err := c.FetchFillsByTime(ctx, wallet, startTime, 0)
		if err != nil {
			return nil, err
		}
		if len(fills) == 0 {
			break
		}
		observability.DefaultMetrics.PagesFetched.Inc()

		all = append(all, fills...)
		c.logger.Printf("fetched %d fills (total: %d)", len(fills), len(all))

		if len(fills) < FillsPerPage {
			break
		}

		var lastTime int64
		for _, f := range fills {
			if f.Time > lastTime {
				lastTime = f.Time
			}
		}
		startTime = lastTime + 1

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pageDelay):
		}
	}

	return all, nil
}

// userStateRequest is the clearinghouseState payload.
type userStateRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// FetchUserState fetches current positions and account state. The payload
// is passed through untouched; the API layer serves it verbatim.
func (c *Client) FetchUserState(ctx context.Context, wallet string) (json.RawMessage, error) {
	started := time.Now()
	var state json.RawMessage
	err := c.post(ctx, userStateRequest{Type: "clearinghouseState", User: wallet}, &state)
	if err != nil {
		return nil, fmt.Errorf("fetch user state: %w", err)
	}
	observability.RecordVenueRequest("clearinghouseState", time.Since(started).Seconds())
	return state, nil
}

// candleSnapshotRequest is the candleSnapshot payload.
type candleSnapshotRequest struct {
	Type string        `json:"type"`
	Req  candleRequest `json:"req"`
}

type candleRequest struct {
	Coin      string `json:"coin"`
	Interval  string `json:"interval"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// FetchCandles fetches OHLC buckets for a coin over [startTime, endTime].
func (c *Client) FetchCandles(ctx context.Context, coin, interval string, startTime, endTime int64) ([]*domain.Candle, error) {
	req := candleSnapshotRequest{
		Type: "candleSnapshot",
		Req: candleRequest{
			Coin:      coin,
			Interval:  interval,
			StartTime: startTime,
			EndTime:   endTime,
		},
	}

	started := time.Now()
	var wire []wireCandle
	if err := c.post(ctx, req, &wire); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	observability.RecordVenueRequest("candleSnapshot", time.Since(started).Seconds())

	candles := make([]*domain.Candle, 0, len(wire))
	for i := range wire {
		candle, ok := wire[i].toDomain()
		if !ok {
			// Malformed entries are dropped one by one, never the batch.
			c.logger.Printf("skipping malformed candle for %s at t=%d", coin, wire[i].OpenTime)
			continue
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
