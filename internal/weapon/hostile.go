package weapon

import (
	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/explosion"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/vector"
)

// NewHostileRound builds an enemy round flying along dir from origin.
func NewHostileRound(id, shooter entity.ID, origin, dir vector.Vec3) Projectile {
	d := dir.Normalize()
	return Projectile{
		ID:       id,
		Kind:     Bullet,
		Owner:    OwnerEnemy,
		Shooter:  shooter,
		Position: origin.Add(d.Mul(muzzleOffset)),
		Velocity: d.Mul(HostileSpeed),
		MaxRange: HostileRange,
		Damage:   HostileDamage,
	}
}

// PlayerHit is an enemy round striking the player.
type PlayerHit struct {
	Projectile Projectile
	Explosion  explosion.Explosion
}

// HostileResult reports what one HostileSystem.Update did.
type HostileResult struct {
	Expired []Projectile
	Hits    []PlayerHit
}

// HostileSystem owns rounds fired by enemies. Any hit on the player is lethal.
type HostileSystem struct {
	explosions  *explosion.Field
	projectiles []Projectile
}

func NewHostileSystem(explosions *explosion.Field) *HostileSystem {
	return &HostileSystem{explosions: explosions}
}

func (h *HostileSystem) Launch(p Projectile) {
	h.projectiles = append(h.projectiles, p)
}

// Update advances rounds, expires those past range and hit-tests the rest
// against the player.
func (h *HostileSystem) Update(dt float64, player *flight.Aircraft) HostileResult {
	var res HostileResult

	kept := h.projectiles[:0]
	for _, p := range h.projectiles {
		p.advance(dt)
		if p.outOfRange() {
			res.Expired = append(res.Expired, p)
			continue
		}
		if player != nil && !player.Crashed && p.Position.Distance(player.Position) < HostileHitRadius {
			player.Crashed = true
			res.Hits = append(res.Hits, PlayerHit{
				Projectile: p,
				Explosion:  h.explosions.Spawn(p.Position, explosion.SmallSize),
			})
			continue
		}
		kept = append(kept, p)
	}
	h.projectiles = kept
	return res
}

// Projectiles returns a copy of the live rounds.
func (h *HostileSystem) Projectiles() []Projectile {
	out := make([]Projectile, len(h.projectiles))
	copy(out, h.projectiles)
	return out
}

func (h *HostileSystem) Len() int {
	return len(h.projectiles)
}

// Clear drops every round.
func (h *HostileSystem) Clear() {
	h.projectiles = nil
}
