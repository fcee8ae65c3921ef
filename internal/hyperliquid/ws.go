package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"hl-journal/internal/domain"
)

// DefaultWSURL is the Hyperliquid WebSocket endpoint.
const DefaultWSURL = "wss://api.hyperliquid.xyz/ws"

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending protocol pings. The venue drops
	// connections idle for 60s.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// FillEvent is a live fill batch delivered over the stream. The first
// message after (re)subscribing is a snapshot of recent history.
type FillEvent struct {
	IsSnapshot bool
	Fills      []*domain.Fill
}

// WSClient streams live fills for subscribed wallets over gorilla/websocket.
type WSClient struct {
	endpoint string
	config   WSConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// subs maps wallet to its event channel; wallets survive reconnects.
	subs   map[string]chan FillEvent
	subsMu sync.RWMutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSConfig, logger *log.Logger) (*WSClient, error) {
	if endpoint == "" {
		endpoint = DefaultWSURL
	}
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		subs:     make(map[string]chan FillEvent),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *WSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeUserFills subscribes to live fills for a wallet. The returned
// channel stays valid across reconnects and is closed on Close.
func (c *WSClient) SubscribeUserFills(wallet string) (<-chan FillEvent, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	// Buffer absorbs bursts; dispatch blocks rather than dropping fills.
	ch := make(chan FillEvent, 1024)
	c.subsMu.Lock()
	c.subs[wallet] = ch
	c.subsMu.Unlock()

	if err := c.writeSubscribe(wallet); err != nil {
		c.subsMu.Lock()
		delete(c.subs, wallet)
		c.subsMu.Unlock()
		return nil, err
	}

	return ch, nil
}

// writeSubscribe sends the subscribe frame for one wallet.
func (c *WSClient) writeSubscribe(wallet string) error {
	req := wsCommand{
		Method: "subscribe",
		Subscription: &wsSubscription{
			Type: "userFills",
			User: wallet,
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection and all subscription channels.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.subsMu.Lock()
	for wallet, ch := range c.subs {
		close(ch)
		delete(c.subs, wallet)
	}
	c.subsMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages and dispatches fills to subscribers.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe every wallet.
func (c *WSClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.logger.Printf("reconnect failed: %v", err)
		return
	}

	c.subsMu.RLock()
	wallets := make([]string, 0, len(c.subs))
	for wallet := range c.subs {
		wallets = append(wallets, wallet)
	}
	c.subsMu.RUnlock()

	for _, wallet := range wallets {
		if err := c.writeSubscribe(wallet); err != nil {
			c.logger.Printf("resubscribe %s failed: %v", wallet, err)
		}
	}
}

// handleMessage processes one incoming frame.
func (c *WSClient) handleMessage(message []byte) {
	var frame wsFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return
	}

	switch frame.Channel {
	case "userFills":
		var data wsUserFillsData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			c.logger.Printf("bad userFills frame: %v", err)
			return
		}
		c.dispatch(&data)
	case "pong", "subscriptionResponse":
		// keepalive / ack, nothing to do
	}
}

// dispatch delivers a fill batch to the wallet's subscriber.
func (c *WSClient) dispatch(data *wsUserFillsData) {
	c.subsMu.RLock()
	ch, ok := c.subs[data.User]
	c.subsMu.RUnlock()
	if !ok {
		return
	}

	fills := make([]*domain.Fill, 0, len(data.Fills))
	for i := range data.Fills {
		fills = append(fills, data.Fills[i].toDomain(data.User))
	}

	// Block until delivered; fills must not be dropped
	select {
	case ch <- FillEvent{IsSnapshot: data.IsSnapshot, Fills: fills}:
	case <-c.done:
	}
}

// pingLoop sends protocol-level pings to keep the connection alive.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// The venue expects JSON pings, not frame-level pings
				if err := c.conn.WriteJSON(wsCommand{Method: "ping"}); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsCommand struct {
	Method       string          `json:"method"`
	Subscription *wsSubscription `json:"subscription,omitempty"`
}

type wsSubscription struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type wsFrame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type wsUserFillsData struct {
	IsSnapshot bool       `json:"isSnapshot"`
	User       string     `json:"user"`
	Fills      []wireFill `json:"fills"`
}
