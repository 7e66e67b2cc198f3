package flight

import (
	"math"

	"github.com/OCAP2/dogfight/internal/vector"
)

// Orientation limits, enforced every tick.
const (
	MaxPitch = 0.4 * math.Pi
	MaxRoll  = 0.9 * math.Pi
)

// Params holds the aircraft constants used by the force model.
type Params struct {
	Mass              float64 // kg
	Wingspan          float64 // m
	WingArea          float64 // m²
	MaxThrust         float64 // N
	AfterburnerThrust float64 // N, added on top of MaxThrust while lit
	DragCoefficient   float64
	LiftCoefficient   float64
	StallAngle        float64 // rad
	Gravity           float64 // m/s², applied along -Y
}

// DefaultParams returns the fighter profile.
func DefaultParams() Params {
	return Params{
		Mass:              10000,
		Wingspan:          10,
		WingArea:          30,
		MaxThrust:         150000,
		AfterburnerThrust: 250000,
		DragCoefficient:   0.024,
		LiftCoefficient:   1.5,
		StallAngle:        0.3,
		Gravity:           9.81,
	}
}

// Forces are the last force vectors computed by Update, kept for inspection.
type Forces struct {
	Thrust vector.Vec3 `json:"thrust"`
	Lift   vector.Vec3 `json:"lift"`
	Drag   vector.Vec3 `json:"drag"`
}

// Aircraft is the kinematic and control state of one airframe.
type Aircraft struct {
	Position        vector.Vec3 `json:"position"`
	Velocity        vector.Vec3 `json:"velocity"`
	AngularVelocity vector.Vec3 `json:"angularVelocity"` // x pitch rate, y yaw rate, z roll rate

	Pitch   float64 `json:"pitch"`
	Roll    float64 `json:"roll"`
	Heading float64 `json:"heading"`

	Throttle float64 `json:"throttle"`
	Elevator float64 `json:"elevator"`
	Aileron  float64 `json:"aileron"`
	Rudder   float64 `json:"rudder"`
	Flaps    float64 `json:"flaps"`

	GearDown    bool `json:"gearDown"`
	Afterburner bool `json:"afterburner"`
	Crashed     bool `json:"crashed"`

	Altitude float64 `json:"altitude"`
	Forces   Forces  `json:"forces"`
}

// Pose is a position plus heading, used for spawning.
type Pose struct {
	Position vector.Vec3
	Heading  float64
}

// RunwayStart is the session start pose at the end of the runway.
var RunwayStart = Pose{
	Position: vector.New(0, 1.5, -2150),
	Heading:  math.Pi,
}

// NewAircraft returns an aircraft at rest at p with gear down.
func NewAircraft(p Pose) Aircraft {
	return Aircraft{
		Position: p.Position,
		Heading:  WrapHeading(p.Heading),
		GearDown: true,
		Altitude: p.Position.Y,
	}
}

// AfterburnerLit reports whether the afterburner is producing thrust.
func (a *Aircraft) AfterburnerLit() bool {
	return a.Afterburner && a.Throttle > 0.5
}

// Speed returns the airspeed in m/s.
func (a *Aircraft) Speed() float64 {
	return a.Velocity.Length()
}

// Axes returns the forward and up unit vectors used by the force model.
// The rotations are applied as roll about Z, then heading about Y, then
// pitch about Z, matching the source aircraft frame exactly.
func Axes(pitch, roll, heading float64) (forward, up vector.Vec3) {
	forward = composeAxes(vector.UnitX, pitch, roll, heading)
	up = composeAxes(vector.UnitY, pitch, roll, heading)
	return forward, up
}

func composeAxes(v vector.Vec3, pitch, roll, heading float64) vector.Vec3 {
	v = v.RotateAxis(vector.UnitZ, -roll)
	v = v.RotateAxis(vector.UnitY, heading)
	return v.RotateAxis(vector.UnitZ, pitch)
}

// BodyForward returns the nose direction of the rendered airframe, whose
// euler rotation is (pitch, heading, -roll) in XYZ order.
func BodyForward(pitch, roll, heading float64) vector.Vec3 {
	v := vector.UnitX.RotateAxis(vector.UnitZ, -roll)
	v = v.RotateAxis(vector.UnitY, heading)
	return v.RotateAxis(vector.UnitX, pitch)
}

// Forward returns the force-model forward axis of a.
func (a *Aircraft) Forward() vector.Vec3 {
	f, _ := Axes(a.Pitch, a.Roll, a.Heading)
	return f
}

// WrapHeading maps h into [0, 2π).
func WrapHeading(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	if h >= 2*math.Pi {
		h = 0
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
