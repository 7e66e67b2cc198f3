// Package dispatcher routes simulation events to handlers by kind.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/dogfight/pkg/core"
)

var (
	ErrUnknownKind = errors.New("no handler for event kind")
	ErrQueueFull   = errors.New("queue full")
	ErrClosed      = errors.New("dispatcher closed")
)

// HandlerFunc processes an event.
type HandlerFunc func(core.Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	handlers map[core.EventKind]HandlerFunc
	logger   Logger

	// OTEL metrics
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	buffers map[core.EventKind]chan core.Event
	closed  bool
	wg      sync.WaitGroup
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[core.EventKind]HandlerFunc),
		buffers:  make(map[core.EventKind]chan core.Event),
		logger:   logger,
	}

	if err := d.instrument(meter()); err != nil {
		return nil, err
	}

	return d, nil
}

// Register adds a handler for the given kind with optional configuration.
// It must not be called concurrently with Dispatch.
func (d *Dispatcher) Register(kind core.EventKind, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = d.withLogging(kind, handler)
	}

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(kind, cfg.bufferSize, cfg.blocking, handler)
	}

	d.handlers[kind] = handler
}

// Dispatch routes an event to its registered handler. Buffered handlers
// return as soon as the event is queued.
func (d *Dispatcher) Dispatch(e core.Event) error {
	h, ok := d.handlers[e.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the kind.
func (d *Dispatcher) HasHandler(kind core.EventKind) bool {
	_, ok := d.handlers[kind]
	return ok
}

// Close stops accepting events and waits for buffered handlers to drain
// their queues.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) withBuffer(kind core.EventKind, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan core.Event, size)

	d.mu.Lock()
	d.buffers[kind] = buffer
	d.mu.Unlock()

	kindAttr := metric.WithAttributes(attribute.String("kind", string(kind)))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for e := range buffer {
			if err := h(e); err != nil {
				d.failed.Add(context.Background(), 1, kindAttr)
			}
			d.processed.Add(context.Background(), 1, kindAttr)
		}
	}()

	// The read lock keeps Close from closing the buffer mid-send.
	if blocking {
		return func(e core.Event) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			if d.closed {
				return ErrClosed
			}
			buffer <- e
			return nil
		}
	}

	return func(e core.Event) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return ErrClosed
		}
		select {
		case buffer <- e:
			return nil
		default:
			d.dropped.Add(context.Background(), 1, kindAttr)
			return fmt.Errorf("%w: %s", ErrQueueFull, kind)
		}
	}
}

func (d *Dispatcher) withLogging(kind core.EventKind, h HandlerFunc) HandlerFunc {
	return func(e core.Event) error {
		start := time.Now()
		d.logger.Debug("handling event", "kind", kind, "tick", e.Tick, "entity", e.EntityID)

		err := h(e)

		if err != nil {
			d.logger.Error("event failed", "kind", kind, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "kind", kind, "duration", time.Since(start))
		}

		return err
	}
}
