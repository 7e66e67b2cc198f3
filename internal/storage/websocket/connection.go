package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/OCAP2/dogfight/pkg/streaming"
)

const (
	outboxSize       = 10_000
	maxReconnect     = 10
	maxBackoff       = 30 * time.Second
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
	ackTimeout       = 10 * time.Second
	pongWait         = 60 * time.Second
	maxMessageSize   = 1 << 20
	pingPeriod       = pongWait * 9 / 10
)

var errClosed = errors.New("websocket connection closed")

// link is one live socket. stop is closed when the socket is replaced or
// the connection shuts down, which ends its write loop.
type link struct {
	conn *ws.Conn
	stop chan struct{}
}

// connection owns the socket to the recording server. Frames queue in
// outbox and are written by a single goroutine per link; a failed link is
// redialled in the background and the session header replayed.
type connection struct {
	mu     sync.Mutex
	link   *link
	replay []byte
	closed bool

	outbox chan []byte
	done   chan struct{}

	waitMu  sync.Mutex
	waiters map[string][]chan struct{}

	dropped atomic.Uint64

	target string
	dialer *ws.Dialer
	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		outbox:  make(chan []byte, outboxSize),
		done:    make(chan struct{}),
		waiters: make(map[string][]chan struct{}),
		dialer: &ws.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger,
	}
}

// withSecret returns rawURL with the shared secret as a query parameter.
func withSecret(rawURL, secret string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// dial opens the first socket. Later sockets come from reconnect.
func (c *connection) dial(rawURL, secret string) error {
	target, err := withSecret(rawURL, secret)
	if err != nil {
		return err
	}
	c.target = target

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.attach(conn)
	return nil
}

func (c *connection) dialOnce() (*ws.Conn, error) {
	conn, _, err := c.dialer.Dial(c.target, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func (c *connection) attach(conn *ws.Conn) {
	l := &link{conn: conn, stop: make(chan struct{})}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.link = l
	c.mu.Unlock()

	go c.writeLoop(l)
	go c.readLoop(l)
}

// fail retires l and starts a reconnect. Only the first failure of the
// current link does anything; the other loop's error on the same socket
// and errors from stale links are ignored.
func (c *connection) fail(l *link, err error) {
	c.mu.Lock()
	if c.closed || c.link != l {
		c.mu.Unlock()
		return
	}
	c.link = nil
	close(l.stop)
	c.mu.Unlock()

	_ = l.conn.Close()
	c.logger.Warn("WebSocket link lost", "error", err)
	go c.reconnect()
}

func (c *connection) writeLoop(l *link) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-l.stop:
			return
		case <-ping.C:
			if err := l.conn.WriteControl(ws.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.fail(l, err)
				return
			}
		case data := <-c.outbox:
			if err := writeFrame(l.conn, data); err != nil {
				c.fail(l, err)
				return
			}
		}
	}
}

func writeFrame(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// readLoop routes acks to their waiters. The read deadline is pushed out
// by every pong, so a silent server is detected within pongWait.
func (c *connection) readLoop(l *link) {
	l.conn.SetReadLimit(maxMessageSize)
	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.fail(l, err)
			}
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != "ack" {
			c.logger.Debug("Ignoring server message", "raw", string(message))
			continue
		}
		c.resolve(ack.For)
	}
}

func (c *connection) reconnect() {
	backoff := time.Second
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", backoff)
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.mu.Lock()
		replay := c.replay
		c.mu.Unlock()

		// No write loop owns conn yet, so the header goes out first.
		if replay != nil {
			if err := writeFrame(conn, replay); err != nil {
				c.logger.Warn("Failed to replay session header", "attempt", attempt, "error", err)
				_ = conn.Close()
				continue
			}
		}

		c.attach(conn)
		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// setReplay stores the frame sent first on every new socket. nil clears it.
func (c *connection) setReplay(data []byte) {
	c.mu.Lock()
	c.replay = data
	c.mu.Unlock()
}

// send queues data without blocking. A full outbox drops the frame.
func (c *connection) send(data []byte) {
	select {
	case c.outbox <- data:
	default:
		if n := c.dropped.Add(1); n == 1 || n%1000 == 0 {
			c.logger.Warn("WebSocket outbox full, dropping frames", "dropped", n)
		}
	}
}

func (c *connection) expect(kind string) chan struct{} {
	ch := make(chan struct{}, 1)
	c.waitMu.Lock()
	c.waiters[kind] = append(c.waiters[kind], ch)
	c.waitMu.Unlock()
	return ch
}

func (c *connection) forget(kind string, ch chan struct{}) {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()
	list := c.waiters[kind]
	for i, w := range list {
		if w == ch {
			c.waiters[kind] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(c.waiters[kind]) == 0 {
		delete(c.waiters, kind)
	}
}

func (c *connection) resolve(kind string) {
	c.waitMu.Lock()
	list := c.waiters[kind]
	delete(c.waiters, kind)
	c.waitMu.Unlock()

	if len(list) == 0 {
		c.logger.Debug("Unexpected ack", "for", kind)
	}
	for _, ch := range list {
		ch <- struct{}{}
	}
}

// sendAndWait queues data and blocks until the server acks kind or the
// timeout expires. The waiter is registered before the frame is queued.
func (c *connection) sendAndWait(data []byte, kind string, timeout time.Duration) error {
	ch := c.expect(kind)
	defer c.forget(kind, ch)
	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout waiting for ack of %q", kind)
	case <-c.done:
		return fmt.Errorf("waiting for ack of %q: %w", kind, errClosed)
	}
}

// close sends a close frame and stops every goroutine.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	l := c.link
	c.link = nil
	c.mu.Unlock()

	if l == nil {
		return nil
	}
	_ = l.conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return l.conn.Close()
}

func (c *connection) droppedCount() uint64 {
	return c.dropped.Load()
}
