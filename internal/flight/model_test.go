package flight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
)

func newTestModel() *Model {
	return NewModel(DefaultParams(), prng.New(1))
}

func airborne() Aircraft {
	a := NewAircraft(Pose{Position: vector.New(0, 3000, 0)})
	a.Velocity = vector.New(200, 0, 0)
	a.Throttle = 0.7
	a.GearDown = false
	return a
}

func TestUpdate_ClampInvariant(t *testing.T) {
	m := newTestModel()
	rng := prng.New(99)

	a := airborne()
	for i := 0; i < 2000; i++ {
		a.Elevator = rng.Centered(3)
		a.Aileron = rng.Centered(3)
		a.Rudder = rng.Centered(3)
		dt := rng.Range(0, 0.1)

		m.Update(&a, nil, dt)

		require.LessOrEqual(t, math.Abs(a.Pitch), MaxPitch, "tick %d", i)
		require.LessOrEqual(t, math.Abs(a.Roll), MaxRoll, "tick %d", i)
		require.GreaterOrEqual(t, a.Heading, 0.0)
		require.Less(t, a.Heading, 2*math.Pi)
		if a.Crashed {
			a = airborne()
		}
	}
}

func TestUpdate_ClampsOutOfRangeAttitude(t *testing.T) {
	m := newTestModel()
	a := airborne()
	a.Pitch = 5
	a.Roll = -7

	m.Update(&a, nil, 0)

	assert.InDelta(t, MaxPitch*0.98, a.Pitch, 1e-12)
	assert.InDelta(t, -MaxRoll*0.98, a.Roll, 1e-12)
}

func TestUpdate_HeadingWrapsIncrementally(t *testing.T) {
	m := newTestModel()
	a := airborne()
	a.Rudder = 1

	const dt = 0.05
	want := a.Heading
	for i := 0; i < 600; i++ {
		m.Update(&a, nil, dt)
		want = math.Mod(want+0.5*dt, 2*math.Pi)
		require.InDelta(t, want, a.Heading, 1e-9, "tick %d", i)
	}
	// 600 * 0.025 rad = 15 rad, so the heading wrapped at least twice.
	assert.Less(t, a.Heading, 2*math.Pi)
}

func TestUpdate_CrashedIsNoOp(t *testing.T) {
	m := newTestModel()
	a := airborne()
	a.Crashed = true
	before := a

	m.Update(&a, nil, 0.05)

	assert.Equal(t, before, a)
}

func TestUpdate_GroundContact(t *testing.T) {
	approach := func(gearDown bool) Aircraft {
		a := NewAircraft(Pose{Position: vector.New(0, 0.05, 0)})
		a.Velocity = vector.New(20, -5, 0)
		a.Roll = 0.1
		a.Pitch = 0.05
		a.GearDown = gearDown
		return a
	}

	t.Run("gear down lands", func(t *testing.T) {
		m := newTestModel()
		a := approach(true)

		m.Update(&a, nil, 0.01)

		assert.False(t, a.Crashed)
		assert.Equal(t, 0.0, a.Velocity.Y)
		assert.Equal(t, 0.1, a.Position.Y)
		assert.Equal(t, 0.1, a.Altitude)
		assert.Less(t, a.Velocity.X, 20.0, "ground friction slows the roll-out")
	})

	t.Run("gear up is a belly landing", func(t *testing.T) {
		m := newTestModel()
		a := approach(false)

		m.Update(&a, nil, 0.01)

		assert.True(t, a.Crashed)
	})

	t.Run("hard landing crashes", func(t *testing.T) {
		m := newTestModel()
		a := approach(true)
		a.Velocity.Y = -15

		m.Update(&a, nil, 0.01)

		assert.True(t, a.Crashed)
	})

	t.Run("steep pitch crashes", func(t *testing.T) {
		m := newTestModel()
		a := approach(true)
		a.Pitch = 0.35

		m.Update(&a, nil, 0.01)

		assert.True(t, a.Crashed)
	})

	t.Run("fast banked landing crashes", func(t *testing.T) {
		m := newTestModel()
		a := approach(true)
		a.Velocity.X = 60
		a.Roll = 0.4

		m.Update(&a, nil, 0.01)

		assert.True(t, a.Crashed)
	})
}

func TestUpdate_AfterburnerThrust(t *testing.T) {
	tests := []struct {
		name        string
		throttle    float64
		afterburner bool
		want        float64
	}{
		{"dry full throttle", 1, false, 150000},
		{"lit full throttle", 1, true, 400000},
		{"not lit below half throttle", 0.4, true, 60000},
		{"idle", 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel()
			a := airborne()
			a.Throttle = tt.throttle
			a.Afterburner = tt.afterburner

			m.Update(&a, nil, 0.01)

			assert.InDelta(t, tt.want, a.Forces.Thrust.Length(), 1e-6)
		})
	}
}

func TestUpdate_InvalidEnvironmentIsCalm(t *testing.T) {
	calm := newTestModel()
	broken := newTestModel()

	a := airborne()
	b := airborne()
	env := &Environment{WindSpeed: math.NaN(), Turbulence: math.Inf(1), WindDirection: math.NaN()}

	calm.Update(&a, nil, 0.02)
	broken.Update(&b, env, 0.02)

	assert.Equal(t, a, b)
}

func TestUpdate_WindPushesDrag(t *testing.T) {
	m := newTestModel()
	still := airborne()
	windy := airborne()

	m.Update(&still, nil, 0.02)
	env := SetWeather(10, math.Pi/2, 0, 0)
	m.Update(&windy, &env, 0.02)

	// Wind from direction π/2 adds 100 N along +X.
	assert.InDelta(t, still.Forces.Drag.X+100, windy.Forces.Drag.X, 1e-6)
}

func TestUpdate_TurbulenceIsSeedable(t *testing.T) {
	env := SetWeather(0, 0, 0.5, 0)

	a := airborne()
	b := airborne()
	NewModel(DefaultParams(), prng.New(5)).Update(&a, &env, 0.02)
	NewModel(DefaultParams(), prng.New(5)).Update(&b, &env, 0.02)

	assert.Equal(t, a.Forces.Lift, b.Forces.Lift)
}

func TestUpdate_WeathercockingAlignsVelocity(t *testing.T) {
	m := newTestModel()
	a := airborne()
	a.Velocity = vector.New(150, 0, 80) // nose points +X

	before := a.Velocity.Normalize().Dot(vector.UnitX)
	m.Update(&a, nil, 0.1)
	after := a.Velocity.Normalize().Dot(vector.UnitX)

	assert.Greater(t, after, before)
}

func TestAxes(t *testing.T) {
	f, u := Axes(0, 0, 0)
	assert.InDelta(t, 1, f.X, 1e-12)
	assert.InDelta(t, 1, u.Y, 1e-12)

	f, _ = Axes(0, 0, math.Pi)
	assert.InDelta(t, -1, f.X, 1e-12)

	f, _ = Axes(0.3, 0, 0)
	assert.Greater(t, f.Y, 0.0, "positive pitch raises the nose")

	f, u = Axes(0.2, 0.4, 1.1)
	assert.InDelta(t, 1, f.Length(), 1e-12)
	assert.InDelta(t, 1, u.Length(), 1e-12)
	assert.InDelta(t, 0, f.Dot(u), 1e-12)
}

func TestWrapHeading(t *testing.T) {
	assert.Equal(t, 0.0, WrapHeading(0))
	assert.InDelta(t, math.Pi, WrapHeading(3*math.Pi), 1e-12)
	assert.InDelta(t, 1.5*math.Pi, WrapHeading(-0.5*math.Pi), 1e-12)
	assert.Equal(t, 0.0, WrapHeading(math.NaN()))
}

func TestNewAircraft(t *testing.T) {
	a := NewAircraft(RunwayStart)
	assert.Equal(t, vector.New(0, 1.5, -2150), a.Position)
	assert.Equal(t, math.Pi, a.Heading)
	assert.True(t, a.GearDown)
	assert.False(t, a.Crashed)
	assert.Equal(t, 1.5, a.Altitude)
}
