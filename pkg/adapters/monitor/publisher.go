package monitor

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Publisher is an http.Handler that streams published documents to every
// connected websocket subscriber. New subscribers receive the latest
// document first.
type Publisher struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	last   []byte
	logger *slog.Logger
}

// NewPublisher creates an empty publisher.
func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

// Publish sends data to every subscriber. Slow subscribers are dropped.
func (p *Publisher) Publish(data []byte) {
	msg := append([]byte(nil), data...)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = msg
	for sub := range p.subs {
		select {
		case sub.send <- msg:
		default:
			p.logger.Warn("Monitor subscriber too slow, dropping")
			p.drop(sub)
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (p *Publisher) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func (p *Publisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Warn("WebSocket upgrade failed", "err", err)
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, 16)}

	p.mu.Lock()
	p.subs[sub] = struct{}{}
	if p.last != nil {
		sub.send <- p.last
	}
	p.mu.Unlock()

	go p.writePump(sub)
	p.readPump(sub)
}

// drop unregisters sub; the caller holds p.mu.
func (p *Publisher) drop(sub *subscriber) {
	if _, ok := p.subs[sub]; ok {
		delete(p.subs, sub)
		close(sub.send)
	}
}

func (p *Publisher) writePump(sub *subscriber) {
	defer sub.conn.Close()
	for msg := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			p.logger.Debug("Monitor write failed", "err", err)
			return
		}
	}
	sub.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// readPump discards client messages and unregisters on disconnect. Control
// frames (pings, close) are handled by the connection while reading.
func (p *Publisher) readPump(sub *subscriber) {
	defer func() {
		p.mu.Lock()
		p.drop(sub)
		p.mu.Unlock()
	}()
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Debug("Monitor subscriber error", "err", err)
			}
			return
		}
	}
}

// Close disconnects every subscriber.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for sub := range p.subs {
		p.drop(sub)
	}
}
