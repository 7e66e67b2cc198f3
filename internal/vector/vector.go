// Package vector provides the 3D vector value type shared by the simulation.
// The frame is right-handed with +Y up, the ground plane at Y=0 and +X as
// the forward axis of an unrotated aircraft.
package vector

import "math"

// Vec3 is a 3D vector in metres (or metres per second, newtons, ...).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var (
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

func New(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3         { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3         { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Mul(s float64) Vec3      { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64      { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) LengthSq() float64       { return a.Dot(a) }
func (a Vec3) Length() float64         { return math.Sqrt(a.LengthSq()) }
func (a Vec3) Distance(b Vec3) float64 { return a.Sub(b).Length() }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Normalize returns the unit vector, or the zero vector for zero length input.
func (a Vec3) Normalize() Vec3 {
	n := a.Length()
	if n < 1e-12 {
		return Vec3{}
	}
	return a.Mul(1 / n)
}

// Lerp moves a toward b by fraction t.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// RotateAxis rotates a around axis by angle radians (right-hand rule).
func (a Vec3) RotateAxis(axis Vec3, angle float64) Vec3 {
	k := axis.Normalize()
	if k == (Vec3{}) {
		return a
	}
	c, s := math.Cos(angle), math.Sin(angle)
	return a.Mul(c).
		Add(k.Cross(a).Mul(s)).
		Add(k.Mul(k.Dot(a) * (1 - c)))
}

// AngleTo returns the angle between a and b in radians.
func (a Vec3) AngleTo(b Vec3) float64 {
	d := a.Normalize().Dot(b.Normalize())
	return math.Acos(math.Max(-1, math.Min(1, d)))
}

// RotateToward turns the direction of a toward b by at most maxAngle and
// returns a unit vector. A zero a yields b's direction.
func (a Vec3) RotateToward(b Vec3, maxAngle float64) Vec3 {
	from, to := a.Normalize(), b.Normalize()
	if from == (Vec3{}) {
		return to
	}
	if to == (Vec3{}) {
		return from
	}
	angle := from.AngleTo(to)
	if angle <= maxAngle {
		return to
	}
	axis := from.Cross(to)
	if axis.LengthSq() < 1e-18 {
		// Opposite directions: turn through the vertical plane unless
		// already vertical.
		axis = from.Cross(UnitY)
		if axis.LengthSq() < 1e-18 {
			axis = from.Cross(UnitX)
		}
	}
	return from.RotateAxis(axis, maxAngle).Normalize()
}

// Horizontal returns the length of the XZ projection.
func (a Vec3) Horizontal() float64 {
	return math.Hypot(a.X, a.Z)
}

func (a Vec3) IsFinite() bool {
	return finite(a.X) && finite(a.Y) && finite(a.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
