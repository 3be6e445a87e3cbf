// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one relay connection. It implements relay.Peer: outbound
// messages are queued on a bounded channel drained by the write pump, so
// Send never blocks the broadcasting goroutine.
type Client struct {
	id       string
	username string
	addr     string
	conn     *websocket.Conn
	hub      *Hub
	log      *slog.Logger

	mu     sync.Mutex
	send   chan string
	closed bool

	connCloseOnce sync.Once
	rateLimiter   *rateLimiter
	settings      clientSettings
}

type clientSettings struct {
	maxMessageSize int64
	writeTimeout   time.Duration
	pongTimeout    time.Duration
	pingInterval   time.Duration
	rateBurst      int
	rateInterval   time.Duration
}

// NewClient creates a Client for an upgraded connection opened as username.
// conn may be nil in tests that only exercise the send queue.
func NewClient(conn *websocket.Conn, hub *Hub, username, addr string) *Client {
	cfg := hub.cfg
	settings := clientSettings{
		maxMessageSize: int64(cfg.MaxMessageSize),
		writeTimeout:   cfg.WriteTimeout,
		pongTimeout:    cfg.PongTimeout,
		pingInterval:   cfg.PingInterval(),
		rateBurst:      cfg.RateLimitBurst,
		rateInterval:   cfg.RateLimitRefillInterval,
	}
	if conn != nil {
		conn.SetReadLimit(settings.maxMessageSize)
	}

	id := uuid.NewString()
	return &Client{
		id:          id,
		username:    username,
		addr:        addr,
		conn:        conn,
		hub:         hub,
		log:         hub.log.With("conn_id", id, "username", username, "addr", addr),
		send:        make(chan string, cfg.SendBufferSize),
		rateLimiter: newRateLimiter(settings.rateBurst, settings.rateInterval),
		settings:    settings,
	}
}

func (c *Client) ID() string       { return c.id }
func (c *Client) Username() string { return c.username }

// GetSendChan returns the client's outbound queue.
func (c *Client) GetSendChan() <-chan string {
	return c.send
}

// Send queues message for the write pump. A closed client or a full queue
// reports errors.ErrPeerUnreachable.
func (c *Client) Send(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("connection closed: %w", chaterrors.ErrPeerUnreachable)
	}
	select {
	case c.send <- message:
		return nil
	default:
		return fmt.Errorf("send buffer full: %w", chaterrors.ErrPeerUnreachable)
	}
}

// Close stops accepting messages. The write pump flushes what is already
// queued, sends a close frame and closes the connection. Calling Close more
// than once is harmless.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// closeConnection closes the underlying WebSocket exactly once.
func (c *Client) closeConnection() {
	c.connCloseOnce.Do(func() {
		if c.conn == nil {
			return
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("Error closing connection", "error", err)
		}
	})
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.settings.pongTimeout)); err != nil {
		c.log.Warn("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.settings.pongTimeout))
	})
}

// handleReadError logs why the read loop is ending. Every read error ends the
// connection; the classification only decides how loud the log is.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Message exceeded maximum size", "limit", c.settings.maxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		c.log.Info("Client disconnected", "reason", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err) ||
		websocket.IsCloseError(err, websocket.CloseAbnormalClosure):
		c.log.Info("Client connection closed", "reason", err)
	default:
		c.log.Warn("WebSocket read error", "error", err)
	}
}

// checkRateLimit verifies if the client has exceeded rate limits
// and returns true if the message should be processed
func (c *Client) checkRateLimit() bool {
	if c.rateLimiter != nil && !c.rateLimiter.allow() {
		c.log.Warn("Rate limit exceeded; discarding message",
			"burst", c.settings.rateBurst, "interval", c.settings.rateInterval)
		return false
	}
	return true
}

// readPump forwards every inbound text frame through the relay until the
// connection ends, then leaves the chat.
func (c *Client) readPump() {
	defer func() {
		c.hub.relay.Leave(c)
		c.closeConnection()
	}()

	c.setupReadConnection()

	for {
		messageType, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}
		if messageType != websocket.TextMessage {
			c.log.Debug("Ignoring non-text frame", "type", messageType)
			continue
		}
		if !c.checkRateLimit() {
			continue
		}
		c.hub.relay.Forward(c, string(payload))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.settings.pingInterval)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		if !ok {
			return c.writeCloseMessage()
		}
		return c.writeTextMessage(message)
	case <-ticker.C:
		return c.writePing()
	}
}

// writeCloseMessage sends a close frame; the pump always stops afterwards.
func (c *Client) writeCloseMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeTimeout)); err != nil {
		return false
	}
	err := c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil && !isExpectedCloseError(err) {
		c.log.Debug("Error writing close message", "error", err)
	}
	return false
}

// writeTextMessage writes one outbound message as its own text frame.
func (c *Client) writeTextMessage(message string) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeTimeout)); err != nil {
		c.log.Warn("Error setting write deadline", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing message", "error", err)
		}
		return false
	}
	return true
}

// writePing sends a ping message to keep the connection alive
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeTimeout)); err != nil {
		c.log.Warn("Error setting write deadline for ping", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing ping message", "error", err)
		}
		return false
	}
	return true
}
