package flight

import (
	"math"

	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
)

// Ground contact thresholds.
const (
	groundLevel        = 0.1
	maxSinkRate        = 10.0 // m/s
	maxRollLandSpeed   = 40.0 // m/s horizontal
	maxLandingAttitude = 0.3  // rad, pitch or roll
)

// Model integrates aircraft state. One Model serves any number of aircraft
// but is driven from a single goroutine.
type Model struct {
	params Params
	rng    *prng.Source
}

// NewModel creates a model. rng drives turbulence and must not be nil.
func NewModel(params Params, rng *prng.Source) *Model {
	return &Model{params: params, rng: rng}
}

// Params returns the aircraft constants in use.
func (m *Model) Params() Params {
	return m.params
}

// Update advances a by dt seconds. Crashed aircraft are left untouched.
// A nil env is treated as calm weather.
func (m *Model) Update(a *Aircraft, env *Environment, dt float64) {
	if a.Crashed {
		return
	}
	if !(dt > 0) {
		dt = 0
	}

	calm := Calm()
	if env == nil {
		env = &calm
	}
	weather := env.sanitized()
	m.sanitizeControls(a)

	// The rendered airframe still carries last tick's attitude.
	bodyForward := BodyForward(a.Pitch, a.Roll, a.Heading)
	prevPitch, prevRoll := a.Pitch, a.Roll

	m.updateOrientation(a, dt)
	m.calculateForces(a, weather)

	p := m.params
	gravity := vector.New(0, -p.Gravity*p.Mass, 0)
	accel := a.Forces.Thrust.
		Add(gravity).
		Add(a.Forces.Lift).
		Add(a.Forces.Drag).
		Mul(1 / p.Mass)
	a.Velocity = a.Velocity.Add(accel.Mul(dt))

	// Weathercocking: pull the velocity toward the nose at speed.
	if speed := a.Velocity.Length(); speed > 50 {
		factor := math.Min(0.1, dt*0.5)
		a.Velocity = a.Velocity.Lerp(bodyForward.Mul(speed), factor)
	}

	a.Position = a.Position.Add(a.Velocity.Mul(dt))
	m.groundContact(a, prevPitch, prevRoll)
	a.Altitude = a.Position.Y
}

func (m *Model) sanitizeControls(a *Aircraft) {
	a.Throttle = clamp(a.Throttle, 0, 1)
	a.Elevator = clamp(a.Elevator, -1, 1)
	a.Aileron = clamp(a.Aileron, -1, 1)
	a.Rudder = clamp(a.Rudder, -1, 1)
	a.Flaps = clamp(a.Flaps, 0, 1)
	if !a.Velocity.IsFinite() {
		a.Velocity = vector.Vec3{}
	}
}

func (m *Model) updateOrientation(a *Aircraft, dt float64) {
	speed := a.Velocity.Length()
	speedFactor := math.Max(0.1, math.Min(1, 100/math.Max(1, speed)))

	a.AngularVelocity = vector.Vec3{
		X: a.Elevator * 1.0 * speedFactor,
		Y: a.Rudder * 0.5,
		Z: -a.Aileron * 2.0,
	}

	a.Roll += a.AngularVelocity.Z * dt
	a.Pitch += a.AngularVelocity.X * dt
	a.Heading += a.AngularVelocity.Y * dt

	a.Roll = clamp(a.Roll, -MaxRoll, MaxRoll)
	a.Pitch = clamp(a.Pitch, -MaxPitch, MaxPitch)
	a.Heading = WrapHeading(a.Heading)

	// Natural stability, always after the clamp.
	a.Roll *= 0.98
	a.Pitch *= 0.98
}

func (m *Model) calculateForces(a *Aircraft, env Environment) {
	p := m.params
	forward, up := Axes(a.Pitch, a.Roll, a.Heading)

	airspeed := a.Velocity.Length()
	airspeedSq := airspeed * airspeed

	var aoa float64
	if airspeed > 1 {
		dir := a.Velocity.Normalize()
		aoa = math.Acos(clamp(dir.Dot(forward), -1, 1)) - math.Pi/2
	}

	thrust := a.Throttle * p.MaxThrust
	if a.AfterburnerLit() {
		thrust += a.Throttle * p.AfterburnerThrust
	}
	a.Forces.Thrust = forward.Mul(thrust)

	gearFactor := 1.0
	if a.GearDown {
		gearFactor = 1.5
	}
	flapFactor := 1 + a.Flaps*0.5

	effectiveAoA := aoa + a.Flaps*0.2
	cl := p.LiftCoefficient * math.Sin(effectiveAoA*2)
	if math.Abs(effectiveAoA) > p.StallAngle {
		cl *= 1 - math.Min(1, (math.Abs(effectiveAoA)-p.StallAngle)/(math.Pi/4-p.StallAngle))
	}
	a.Forces.Lift = up.Mul(0.5 * cl * airspeedSq * p.WingArea)

	induced := cl * cl / (math.Pi * p.Wingspan)
	cd := (p.DragCoefficient + induced) * gearFactor * flapFactor
	if airspeed > 0.1 {
		a.Forces.Drag = a.Velocity.Normalize().Mul(-0.5 * cd * airspeedSq * p.WingArea)
	} else {
		a.Forces.Drag = vector.Vec3{}
	}

	if env.WindSpeed > 0 {
		wind := vector.New(math.Sin(env.WindDirection), 0, math.Cos(env.WindDirection))
		a.Forces.Drag = a.Forces.Drag.Add(wind.Mul(env.WindSpeed * 10))
	}
	if env.Turbulence > 0 {
		half := env.Turbulence * 1000 / 2
		a.Forces.Lift = a.Forces.Lift.Add(vector.New(
			m.rng.Centered(half),
			m.rng.Centered(half),
			m.rng.Centered(half),
		))
	}
}

// groundContact resolves touchdown against the Y=0 plane. The landing
// attitude check uses the attitude rendered at the start of the tick.
func (m *Model) groundContact(a *Aircraft, pitch, roll float64) {
	if a.Position.Y >= groundLevel || a.Velocity.Y >= 0 {
		return
	}

	sink := -a.Velocity.Y
	horizontal := a.Velocity.Horizontal()
	if sink > maxSinkRate ||
		(horizontal > maxRollLandSpeed && math.Abs(roll) > maxLandingAttitude) ||
		math.Abs(pitch) > maxLandingAttitude {
		a.Crashed = true
		return
	}

	a.Position.Y = groundLevel
	a.Velocity.Y = 0
	if a.GearDown {
		a.Velocity.X *= 0.98
		a.Velocity.Z *= 0.98
		return
	}
	// Sliding on the belly is always fatal.
	a.Velocity.X *= 0.995
	a.Velocity.Z *= 0.995
	a.Crashed = true
}
