package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/gorilla/websocket"
)

const (
	writeWait            = 10 * time.Second
	pingInterval         = 30 * time.Second
	maxReconnectAttempts = 5
	backoffBase          = time.Second
	backoffCap           = 30 * time.Second
)

// TokenSource supplies the current access token for the connection query
// parameter. An empty string means no authenticated session.
type TokenSource interface {
	AccessToken() string
}

// Handler receives decoded events for one subscribed type.
type Handler func(Event)

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	id  uint64
	typ EventType
}

// Bus is the subscriber-facing surface of the channel. Containers depend on
// this rather than the concrete Channel so tests can inject a double.
type Bus interface {
	On(t EventType, fn Handler) Subscription
	Off(sub Subscription)
	Emit(event Event)
}

// Channel maintains one live websocket connection per authenticated session
// and fans decoded events out to subscribers. Disconnects trigger automatic
// reconnection with exponential backoff, bounded by maxReconnectAttempts;
// the attempt counter starts over after every successful connect. Events
// missed while disconnected are never replayed.
type Channel struct {
	url    string
	tokens TokenSource
	logger *slog.Logger
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[EventType][]subEntry
	nextID uint64
	closed bool
	cancel context.CancelFunc
}

type subEntry struct {
	id uint64
	fn Handler
}

// NewChannel creates a channel pointed at the given websocket URL. Connect
// must be called before events flow.
func NewChannel(wsURL string, tokens TokenSource, logger *slog.Logger) *Channel {
	return &Channel{
		url:    wsURL,
		tokens: tokens,
		logger: logger,
		dialer: websocket.DefaultDialer,
		subs:   make(map[EventType][]subEntry),
	}
}

// Connect establishes the connection using the current session token. It is
// idempotent while a connection is open and fails with an unauthorized error
// when no token is present.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("channel is closed")
	}
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	token := c.tokens.AccessToken()
	if token == "" {
		return apperrors.Unauthorized("realtime connection requires an authenticated session", nil)
	}

	conn, err := c.dial(ctx, token)
	if err != nil {
		return apperrors.Transport("connect realtime channel", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		conn.Close()
		return fmt.Errorf("channel is closed")
	}
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Info("realtime channel connected")
	go c.readLoop(runCtx, conn)
	go c.pingLoop(runCtx, conn)
	return nil
}

// Connected reports whether a live connection is currently open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// On registers a handler for one event type. Handlers for the same type run
// in registration order.
func (c *Channel) On(t EventType, fn Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.subs[t] = append(c.subs[t], subEntry{id: c.nextID, fn: fn})
	return Subscription{id: c.nextID, typ: t}
}

// Off removes a previously registered handler. Subscribers must call this
// on teardown so handlers don't leak across component lifetimes.
func (c *Channel) Off(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.subs[sub.typ]
	for i, e := range entries {
		if e.id == sub.id {
			c.subs[sub.typ] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Emit sends a client-originated event if the connection is open and
// silently no-ops otherwise. Nothing is queued while disconnected.
func (c *Channel) Emit(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}

	raw, err := encodeEvent(event)
	if err != nil {
		c.logger.Error("failed to encode outbound event", "type", event.Type(), "error", err)
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		c.logger.Warn("failed to write outbound event", "type", event.Type(), "error", err)
	}
}

// Close tears the channel down. It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

func (c *Channel) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	return conn, nil
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("realtime connection lost, reconnecting", "error", err)
			c.reconnect(ctx)
			return
		}

		event, err := decodeEvent(raw)
		if err != nil {
			c.logger.Error("failed to decode event", "error", err)
			continue
		}

		c.dispatch(event)
	}
}

// pingLoop sends a keep-alive ping on a fixed interval. A missing pong is
// not treated as a failure signal; only socket-level close and error events
// drive reconnection.
func (c *Channel) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Channel) reconnect(ctx context.Context) {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()

	delay := backoffBase
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		token := c.tokens.AccessToken()
		if token == "" {
			c.logger.Warn("reconnect abandoned, session ended")
			return
		}

		conn, err := c.dial(ctx, token)
		if err != nil {
			c.logger.Warn("reconnect attempt failed", "attempt", attempt, "error", err)
			delay *= 2
			if delay > backoffCap {
				delay = backoffCap
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()

		c.logger.Info("realtime channel reconnected", "attempt", attempt)
		go c.readLoop(ctx, conn)
		go c.pingLoop(ctx, conn)
		return
	}

	c.logger.Error("reconnect attempts exhausted", "attempts", maxReconnectAttempts)
}

func (c *Channel) dispatch(event Event) {
	c.mu.Lock()
	entries := append([]subEntry(nil), c.subs[event.Type()]...)
	c.mu.Unlock()

	for _, e := range entries {
		e.fn(event)
	}
}
