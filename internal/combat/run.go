package combat

import (
	"context"
	"time"

	"github.com/OCAP2/dogfight/internal/controls"
	"github.com/OCAP2/dogfight/internal/flight"
)

// DefaultTickHz is used when Run is given a non-positive rate.
const DefaultTickHz = 60.0

// InputSource supplies the control snapshot for the next tick, given the
// previous frame.
type InputSource interface {
	Input(last Frame) controls.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func(last Frame) controls.Input

func (f InputFunc) Input(last Frame) controls.Input { return f(last) }

// EnvironmentSource supplies the weather each tick. Nil means calm air.
type EnvironmentSource interface {
	Environment() *flight.Environment
}

// StaticEnvironment is an EnvironmentSource that never changes.
type StaticEnvironment flight.Environment

func (e StaticEnvironment) Environment() *flight.Environment {
	env := flight.Environment(e)
	return &env
}

// Run drives the loop from a ticker until ctx is done, handing every frame
// to sink. dt is the measured wall time between ticks; Tick clamps it.
func (l *Loop) Run(ctx context.Context, in InputSource, env EnvironmentSource, tickHz float64, sink func(Frame)) error {
	if tickHz <= 0 {
		tickHz = DefaultTickHz
	}
	period := time.Duration(float64(time.Second) / tickHz)
	tick := time.NewTicker(period)
	defer tick.Stop()

	now := time.Now()
	var last Frame

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case t := <-tick.C:
			dt := t.Sub(now).Seconds()
			if dt <= 0 {
				dt = 1.0 / tickHz
			}
			now = t

			var e *flight.Environment
			if env != nil {
				e = env.Environment()
			}
			last = l.Tick(in.Input(last), e, dt)
			if sink != nil {
				sink(last)
			}
		}
	}
}
