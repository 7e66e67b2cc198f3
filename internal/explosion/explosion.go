// Package explosion manages short-lived explosion entities and the blast
// damage they deal to the player aircraft.
package explosion

import (
	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/vector"
)

// Standard sizes.
const (
	SmallSize = 5.0
	LargeSize = 20.0
)

// LethalBlast is the blast damage above which the player is destroyed.
const LethalBlast = 50.0

// Explosion is a time-boxed visual and damage-radius entity.
type Explosion struct {
	ID          entity.ID   `json:"id"`
	Position    vector.Vec3 `json:"position"`
	Age         float64     `json:"age"`
	MaxAge      float64     `json:"maxAge"`
	Size        float64     `json:"size"`
	BlastRadius float64     `json:"blastRadius"`
	Damage      float64     `json:"damage"`

	blasted bool
}

// Radius is the current visual radius; the fireball grows to Size over its life.
func (e Explosion) Radius() float64 {
	if e.MaxAge <= 0 {
		return e.Size
	}
	t := e.Age / e.MaxAge
	if t > 1 {
		t = 1
	}
	return e.Size * t
}

// Blast describes blast damage dealt to the player.
type Blast struct {
	ExplosionID entity.ID
	Distance    float64
	Damage      float64
	Lethal      bool
}

// Result reports what one Update did.
type Result struct {
	Blasts  []Blast
	Expired []entity.ID
}

// Field owns all live explosions.
type Field struct {
	ids   *entity.Allocator
	items []Explosion
}

func NewField(ids *entity.Allocator) *Field {
	return &Field{ids: ids}
}

// Spawn creates an explosion with the default blast radius (3×size) and
// damage (10×size).
func (f *Field) Spawn(pos vector.Vec3, size float64) Explosion {
	return f.Detonate(pos, size, 3*size, 10*size)
}

// Detonate creates an explosion with an explicit blast radius and damage.
func (f *Field) Detonate(pos vector.Vec3, size, radius, damage float64) Explosion {
	e := Explosion{
		ID:          f.ids.Next(),
		Position:    pos,
		MaxAge:      size * 0.1,
		Size:        size,
		BlastRadius: radius,
		Damage:      damage,
	}
	f.items = append(f.items, e)
	return e
}

// Update applies each new explosion's blast to the player once, then ages
// every explosion and drops the ones past their max age.
func (f *Field) Update(dt float64, player *flight.Aircraft) Result {
	var res Result

	kept := f.items[:0]
	for _, e := range f.items {
		if !e.blasted {
			e.blasted = true
			if b, ok := blast(e, player); ok {
				res.Blasts = append(res.Blasts, b)
			}
		}

		e.Age += dt
		if e.Age >= e.MaxAge {
			res.Expired = append(res.Expired, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	f.items = kept
	return res
}

func blast(e Explosion, player *flight.Aircraft) (Blast, bool) {
	if player == nil || player.Crashed || e.BlastRadius <= 0 {
		return Blast{}, false
	}
	d := e.Position.Distance(player.Position)
	if d >= e.BlastRadius {
		return Blast{}, false
	}
	b := Blast{
		ExplosionID: e.ID,
		Distance:    d,
		Damage:      (1 - d/e.BlastRadius) * e.Damage,
	}
	if b.Damage > LethalBlast {
		b.Lethal = true
		player.Crashed = true
	}
	return b, true
}

// All returns a copy of the live explosions.
func (f *Field) All() []Explosion {
	out := make([]Explosion, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Field) Len() int {
	return len(f.items)
}

// Clear drops every explosion.
func (f *Field) Clear() {
	f.items = nil
}
