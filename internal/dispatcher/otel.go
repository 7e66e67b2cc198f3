package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/dogfight/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instrument creates the dispatcher counters and the per-kind queue depth
// gauge on m. Without a configured provider the global meter is a no-op.
func (d *Dispatcher) instrument(m metric.Meter) error {
	var err error

	if d.processed, err = m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Events handled by buffered handlers")); err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}
	if d.dropped, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Events dropped because a buffer was full")); err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}
	if d.failed, err = m.Int64Counter("dispatcher.events.failed",
		metric.WithDescription("Events whose buffered handler returned an error")); err != nil {
		return fmt.Errorf("creating failed counter: %w", err)
	}

	_, err = m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Events waiting in each buffered handler"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for kind, buf := range d.buffers {
				o.Observe(int64(len(buf)), metric.WithAttributes(attribute.String("kind", string(kind))))
			}
			return nil
		}))
	if err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}
	return nil
}
