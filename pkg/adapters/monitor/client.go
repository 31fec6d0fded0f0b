// Package monitor carries behavior trees from a running system to an editor
// in monitor mode. A Publisher pushes XML documents to websocket
// subscribers; a Client receives them and feeds them to a Sink.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/gorilla/websocket"
)

// Sink receives fed documents. *arbor.Editor satisfies it.
type Sink interface {
	FeedXML(data []byte) error
}

// DefaultPingInterval keeps idle connections alive through proxies.
const DefaultPingInterval = 30 * time.Second

// Client is a websocket subscriber to a tree feed.
type Client struct {
	conn         *websocket.Conn
	logger       *slog.Logger
	pingInterval time.Duration
	onError      func(error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPingInterval sets the keepalive period. Zero disables pings.
func WithPingInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pingInterval = d
	}
}

// WithErrorHandler is called for every document the sink rejects.
func WithErrorHandler(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onError = fn
	}
}

// Dial connects to a feed at url (ws:// or wss://).
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:         conn,
		logger:       logging.NewNop(),
		pingInterval: DefaultPingInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run feeds every received document to sink until ctx is done or the
// connection closes. A rejected document is reported and skipped; the feed
// keeps going. Run closes the connection before returning.
func (c *Client) Run(ctx context.Context, sink Sink) error {
	done := make(chan struct{})
	defer close(done)
	go c.keepalive(ctx, done)

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read feed: %w", err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		if err := c.feed(sink, data); err != nil {
			c.logger.Warn("Feed document rejected", "err", err, "size", len(data))
			if c.onError != nil {
				c.onError(err)
			}
		}
	}
}

func (c *Client) feed(sink Sink, data []byte) error {
	clean, err := sanitize.Document(data)
	if err != nil {
		return err
	}
	return sink.FeedXML(clean)
}

// keepalive pings the server and closes the connection once ctx is done,
// which unblocks the read loop.
func (c *Client) keepalive(ctx context.Context, done <-chan struct{}) {
	var tick <-chan time.Time
	if c.pingInterval > 0 {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer c.conn.Close()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case <-tick:
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("Ping failed", "err", err)
			}
		}
	}
}
