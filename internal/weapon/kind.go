// Package weapon implements player weapons, their projectiles and the rounds
// fired by enemy aircraft.
package weapon

import "fmt"

// Kind discriminates projectile variants.
type Kind int

const (
	Bullet Kind = iota
	Missile
	Rocket
)

// Kinds lists every weapon kind in slot order.
var Kinds = []Kind{Bullet, Missile, Rocket}

func (k Kind) String() string {
	switch k {
	case Bullet:
		return "bullet"
	case Missile:
		return "missile"
	case Rocket:
		return "rocket"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindFromSlot maps a 1-based weapon slot to its kind.
func KindFromSlot(slot int) (Kind, bool) {
	if slot < 1 || slot > len(Kinds) {
		return 0, false
	}
	return Kinds[slot-1], true
}

// Spec is the per-kind parameter block.
type Spec struct {
	Speed       float64
	MaxSpeed    float64
	Accel       float64
	Fuel        float64
	MaxRange    float64
	Damage      float64
	Cooldown    float64
	HitRadius   float64
	BlastRadius float64
	// DetonateAltitude triggers detonation at or below this height when > 0.
	DetonateAltitude float64
	Ammo             int
}

// Specs holds the player weapon parameters. Negative ammo means unlimited.
var Specs = map[Kind]Spec{
	Bullet: {
		Speed:     800,
		MaxSpeed:  800,
		MaxRange:  2000,
		Damage:    10,
		Cooldown:  0.05,
		HitRadius: 5,
		Ammo:      -1,
	},
	Missile: {
		Speed:       300,
		MaxSpeed:    800,
		Accel:       50,
		Fuel:        10,
		MaxRange:    8000,
		Damage:      200,
		Cooldown:    1.5,
		HitRadius:   15,
		BlastRadius: 50,
		Ammo:        6,
	},
	Rocket: {
		Speed:            400,
		MaxSpeed:         400,
		MaxRange:         5000,
		Damage:           150,
		Cooldown:         0.8,
		HitRadius:        10,
		BlastRadius:      30,
		DetonateAltitude: 1,
		Ammo:             12,
	},
}

// Enemy round parameters.
const (
	HostileSpeed     = 600.0
	HostileDamage    = 10.0
	HostileRange     = 2000.0
	HostileHitRadius = 5.0
)

// DefaultFuzeProbability is the per-tick chance that an armed missile
// detonates on its own.
const DefaultFuzeProbability = 0.001

// fuzeArmDistance is the distance a missile travels before its fuze arms.
const fuzeArmDistance = 100.0

// rocketArmDistance is the distance a rocket travels before its altitude
// fuze arms. It equals the rocket blast radius, so a rocket fired on the
// runway cannot catch the shooter in its own blast.
const rocketArmDistance = 30.0
