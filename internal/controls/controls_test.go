package controls

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/vector"
)

func TestUpdate_IntegratesThenDamps(t *testing.T) {
	s := New()
	s.Update(Input{PitchUp: true, RollRight: true, YawLeft: true, ThrottleUp: true})

	assert.InDelta(t, 0.02*0.95, s.Pitch, 1e-12)
	assert.InDelta(t, 0.03*0.95, s.Roll, 1e-12)
	assert.InDelta(t, -0.01*0.85, s.Yaw, 1e-12)
	assert.InDelta(t, 0.01, s.Throttle, 1e-12, "throttle does not self-centre")
}

func TestUpdate_ClampBeforeDamping(t *testing.T) {
	s := New()
	s.Pitch = 1.5
	s.Roll = -3
	s.Yaw = 2
	s.Throttle = 1.2

	s.Update(Input{})

	assert.InDelta(t, 0.95, s.Pitch, 1e-12)
	assert.InDelta(t, -0.95, s.Roll, 1e-12)
	assert.InDelta(t, 0.85, s.Yaw, 1e-12)
	assert.Equal(t, 1.0, s.Throttle)
}

func TestUpdate_AxesStayInRange(t *testing.T) {
	s := New()
	for i := 0; i < 500; i++ {
		s.Update(Input{PitchUp: true, RollLeft: true, YawRight: true, ThrottleUp: true})
		assert.LessOrEqual(t, math.Abs(s.Pitch), 1.0)
		assert.LessOrEqual(t, math.Abs(s.Roll), 1.0)
		assert.LessOrEqual(t, math.Abs(s.Yaw), 1.0)
		assert.LessOrEqual(t, s.Throttle, 1.0)
	}
	assert.Equal(t, 1.0, s.Throttle)
}

func TestUpdate_NaNIsZeroed(t *testing.T) {
	s := New()
	s.Pitch = math.NaN()
	s.Update(Input{})
	assert.Equal(t, 0.0, s.Pitch)
}

func TestUpdate_TogglesOnEdgeOnly(t *testing.T) {
	s := New()
	assert.True(t, s.GearDown)

	s.Update(Input{ToggleGear: true, ToggleAfterburner: true, ToggleBrakes: true})
	assert.False(t, s.GearDown)
	assert.True(t, s.Afterburner)
	assert.Equal(t, 1.0, s.Brakes)

	// Holding nothing on later ticks leaves the toggles where they are.
	s.Update(Input{})
	assert.False(t, s.GearDown)
	assert.True(t, s.Afterburner)

	s.Update(Input{ToggleBrakes: true})
	assert.Equal(t, 0.0, s.Brakes)
}

func TestUpdate_FlapsCycle(t *testing.T) {
	s := New()
	want := []float64{0.5, 1, 0, 0.5}
	for _, w := range want {
		s.Update(Input{CycleFlaps: true})
		assert.InDelta(t, w, s.Flaps, 1e-12)
	}
}

func TestUpdate_WeaponSelect(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.WeaponSlot)

	s.Update(Input{SelectWeapon: 3})
	assert.Equal(t, 3, s.WeaponSlot)

	s.Update(Input{})
	assert.Equal(t, 3, s.WeaponSlot)
}

func TestUpdate_MouseLook(t *testing.T) {
	s := New()
	s.Update(Input{Look: MouseLook{DX: 10, DY: 1000, Active: true}})
	assert.InDelta(t, 2, s.LookX, 1e-12)
	assert.Equal(t, MaxLookY, s.LookY)

	s.Update(Input{})
	assert.InDelta(t, 1.8, s.LookX, 1e-12)
	assert.InDelta(t, 72, s.LookY, 1e-12)
}

func TestApply(t *testing.T) {
	s := New()
	s.Pitch, s.Roll, s.Yaw, s.Throttle, s.Flaps = 0.5, -0.25, 0.1, 0.8, 0.5
	s.Afterburner = true

	a := flight.NewAircraft(flight.Pose{Position: vector.New(0, 500, 0)})
	a.Velocity = vector.New(100, 0, 0)
	s.Apply(&a)

	assert.Equal(t, 0.5, a.Elevator)
	assert.Equal(t, -0.25, a.Aileron)
	assert.Equal(t, 0.1, a.Rudder)
	assert.Equal(t, 0.8, a.Throttle)
	assert.Equal(t, 0.5, a.Flaps)
	assert.True(t, a.GearDown)
	assert.True(t, a.Afterburner)
	assert.Equal(t, 100.0, a.Velocity.X)
}

func TestApply_BrakesOnlyOnGround(t *testing.T) {
	s := New()
	s.Brakes = 1

	ground := flight.NewAircraft(flight.RunwayStart)
	ground.Altitude = 0.1
	ground.Velocity = vector.New(40, 0, 0)
	s.Apply(&ground)
	assert.InDelta(t, 38, ground.Velocity.X, 1e-12)

	air := flight.NewAircraft(flight.Pose{Position: vector.New(0, 500, 0)})
	air.Velocity = vector.New(40, 0, 0)
	s.Apply(&air)
	assert.Equal(t, 40.0, air.Velocity.X)
}
