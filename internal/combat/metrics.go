package combat

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/dogfight/internal/combat"

// metrics reports loop activity through the global OTel meter. Instruments
// that fail to register are left nil and skipped.
type metrics struct {
	ticks    metric.Int64Counter
	events   metric.Int64Counter
	duration metric.Float64Histogram

	// written by the loop goroutine, read by the gauge callback
	enemies     atomic.Int64
	projectiles atomic.Int64
	rounds      atomic.Int64
	explosions  atomic.Int64
	debris      atomic.Int64
}

func newMetrics() *metrics {
	m := &metrics{}
	meter := otel.Meter(instrumentationName)

	m.ticks, _ = meter.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Simulation ticks executed"),
	)
	m.events, _ = meter.Int64Counter(
		"sim.events",
		metric.WithDescription("Simulation events emitted"),
	)
	m.duration, _ = meter.Float64Histogram(
		"sim.tick.duration",
		metric.WithDescription("Wall time spent in one tick"),
		metric.WithUnit("ms"),
	)

	gauge, err := meter.Int64ObservableGauge(
		"sim.entities",
		metric.WithDescription("Live entities by kind"),
	)
	if err == nil {
		_, _ = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(gauge, m.enemies.Load(), metric.WithAttributes(attribute.String("kind", "enemy")))
			o.ObserveInt64(gauge, m.projectiles.Load(), metric.WithAttributes(attribute.String("kind", "projectile")))
			o.ObserveInt64(gauge, m.rounds.Load(), metric.WithAttributes(attribute.String("kind", "hostile_round")))
			o.ObserveInt64(gauge, m.explosions.Load(), metric.WithAttributes(attribute.String("kind", "explosion")))
			o.ObserveInt64(gauge, m.debris.Load(), metric.WithAttributes(attribute.String("kind", "debris")))
			return nil
		}, gauge)
	}
	return m
}

func (m *metrics) record(f Frame, took time.Duration) {
	ctx := context.Background()
	if m.ticks != nil {
		m.ticks.Add(ctx, 1)
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(took.Microseconds())/1000)
	}
	if m.events != nil {
		for _, e := range f.Events {
			m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(e.Kind))))
		}
	}

	m.enemies.Store(int64(f.Enemies))
	m.projectiles.Store(int64(f.Projectiles))
	m.rounds.Store(int64(f.Rounds))
	m.explosions.Store(int64(f.Explosions))
	m.debris.Store(int64(f.Debris))
}
