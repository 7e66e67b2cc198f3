package weapon

import (
	"math"

	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/vector"
)

// Owner identifies which side fired a projectile.
type Owner int

const (
	OwnerPlayer Owner = iota
	OwnerEnemy
)

func (o Owner) String() string {
	if o == OwnerEnemy {
		return "enemy"
	}
	return "player"
}

// Projectile is a live round. Missile is non-nil only for Kind == Missile.
type Projectile struct {
	ID       entity.ID   `json:"id"`
	Kind     Kind        `json:"kind"`
	Owner    Owner       `json:"owner"`
	Shooter  entity.ID   `json:"shooter"`
	Position vector.Vec3 `json:"position"`
	Velocity vector.Vec3 `json:"velocity"`
	Distance float64     `json:"distance"`
	MaxRange float64     `json:"maxRange"`
	Damage   float64     `json:"damage"`

	Missile *MissilePayload `json:"missile,omitempty"`
}

// MissilePayload carries the motor and seeker state of a missile.
type MissilePayload struct {
	Fuel     float64   `json:"fuel"`
	Accel    float64   `json:"accel"`
	Speed    float64   `json:"speed"`
	MaxSpeed float64   `json:"maxSpeed"`
	Target   entity.ID `json:"target,omitempty"`
}

// Pose is the muzzle origin for a shot.
type Pose struct {
	Position vector.Vec3
	// Forward is the unit firing direction.
	Forward vector.Vec3
}

// muzzleOffset is how far ahead of the origin rounds appear.
const muzzleOffset = 5.0

func newProjectile(id entity.ID, kind Kind, spec Spec, from Pose) Projectile {
	dir := from.Forward.Normalize()
	p := Projectile{
		ID:       id,
		Kind:     kind,
		Owner:    OwnerPlayer,
		Shooter:  entity.PlayerID,
		Position: from.Position.Add(dir.Mul(muzzleOffset)),
		Velocity: dir.Mul(spec.Speed),
		MaxRange: spec.MaxRange,
		Damage:   spec.Damage,
	}
	if kind == Missile {
		p.Missile = &MissilePayload{
			Fuel:     spec.Fuel,
			Accel:    spec.Accel,
			Speed:    spec.Speed,
			MaxSpeed: spec.MaxSpeed,
		}
	}
	return p
}

// advance moves the projectile one step and accumulates distance.
func (p *Projectile) advance(dt float64) {
	if m := p.Missile; m != nil && m.Fuel > 0 {
		m.Speed = math.Min(m.Speed+m.Accel*dt, m.MaxSpeed)
		m.Fuel -= dt
		if dir := p.Velocity.Normalize(); dir != (vector.Vec3{}) {
			p.Velocity = dir.Mul(m.Speed)
		}
	}
	step := p.Velocity.Mul(dt)
	p.Position = p.Position.Add(step)
	p.Distance += step.Length()
}

func (p Projectile) outOfRange() bool {
	return p.Distance > p.MaxRange
}

// steer turns the velocity toward aim by at most maxTurn radians.
func (p *Projectile) steer(aim vector.Vec3, maxTurn float64) {
	speed := p.Velocity.Length()
	if speed == 0 {
		return
	}
	p.Velocity = p.Velocity.RotateToward(aim.Sub(p.Position), maxTurn).Mul(speed)
}
