package weapon

import (
	"math"

	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/explosion"
	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
)

// Target is anything player rounds can hit.
type Target interface {
	TargetID() entity.ID
	TargetPosition() vector.Vec3
	Alive() bool
	// TakeDamage applies damage and reports whether it was fatal.
	TakeDamage(d float64) bool
}

// KillScore is awarded per destroyed target.
const KillScore = 100

// GuidanceProfile configures missile homing. A zero TurnRate disables it.
type GuidanceProfile struct {
	TurnRate float64 // rad/s
	LockCone float64 // half-angle in radians
}

// DefaultGuidance is used when guidance is switched on without a profile.
var DefaultGuidance = GuidanceProfile{TurnRate: 0.6, LockCone: math.Pi / 6}

// Options configures a System.
type Options struct {
	FuzeProbability float64
	Guidance        GuidanceProfile
}

// Detonation is a projectile that exploded on its own.
type Detonation struct {
	Projectile Projectile
	Explosion  explosion.Explosion
}

// Hit is a projectile striking a target.
type Hit struct {
	Projectile Projectile
	Target     entity.ID
	Killed     bool
	Explosions []explosion.Explosion
}

// Result reports what one Update did.
type Result struct {
	Expired     []Projectile
	Detonations []Detonation
	Hits        []Hit
	Score       int
}

// Killed lists the IDs of targets destroyed this update.
func (r Result) Killed() []entity.ID {
	var ids []entity.ID
	for _, h := range r.Hits {
		if h.Killed {
			ids = append(ids, h.Target)
		}
	}
	return ids
}

// System owns the player's live projectiles.
type System struct {
	rng        *prng.Source
	explosions *explosion.Field
	opts       Options

	projectiles []Projectile
}

func NewSystem(rng *prng.Source, explosions *explosion.Field, opts Options) *System {
	if opts.FuzeProbability < 0 || math.IsNaN(opts.FuzeProbability) {
		opts.FuzeProbability = 0
	}
	return &System{rng: rng, explosions: explosions, opts: opts}
}

// Launch adds a fired projectile. With guidance enabled a missile locks on
// to the nearest live target inside the seeker cone.
func (s *System) Launch(p Projectile, targets []Target) {
	if p.Missile != nil && s.opts.Guidance.TurnRate > 0 {
		p.Missile.Target = s.acquire(p, targets)
	}
	s.projectiles = append(s.projectiles, p)
}

func (s *System) acquire(p Projectile, targets []Target) entity.ID {
	dir := p.Velocity.Normalize()
	minDot := math.Cos(s.opts.Guidance.LockCone)
	var (
		best     entity.ID
		bestDist = math.Inf(1)
	)
	for _, t := range targets {
		if !t.Alive() {
			continue
		}
		to := t.TargetPosition().Sub(p.Position)
		d := to.Length()
		if d == 0 || dir.Dot(to.Mul(1/d)) < minDot {
			continue
		}
		if d < bestDist {
			best, bestDist = t.TargetID(), d
		}
	}
	return best
}

// Update advances every projectile, then applies range expiry, fuzes and hit
// tests, in that order.
func (s *System) Update(dt float64, targets []Target) Result {
	var res Result

	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		s.guide(&p, dt, targets)
		p.advance(dt)

		if p.outOfRange() {
			res.Expired = append(res.Expired, p)
			continue
		}
		if s.fuzed(p) {
			res.Detonations = append(res.Detonations, Detonation{
				Projectile: p,
				Explosion:  s.detonate(p),
			})
			continue
		}
		if hit, ok := s.hitTest(p, targets); ok {
			if hit.Killed {
				res.Score += KillScore
			}
			res.Hits = append(res.Hits, hit)
			continue
		}
		kept = append(kept, p)
	}
	s.projectiles = kept
	return res
}

func (s *System) guide(p *Projectile, dt float64, targets []Target) {
	if p.Missile == nil || p.Missile.Target == 0 || s.opts.Guidance.TurnRate <= 0 {
		return
	}
	for _, t := range targets {
		if t.TargetID() != p.Missile.Target {
			continue
		}
		if t.Alive() {
			p.steer(t.TargetPosition(), s.opts.Guidance.TurnRate*dt)
			return
		}
		break
	}
	p.Missile.Target = 0
}

func (s *System) fuzed(p Projectile) bool {
	switch p.Kind {
	case Missile:
		return p.Distance > fuzeArmDistance && s.rng.Float64() < s.opts.FuzeProbability
	case Rocket:
		return p.Distance >= rocketArmDistance && p.Position.Y <= Specs[Rocket].DetonateAltitude
	}
	return false
}

func (s *System) detonate(p Projectile) explosion.Explosion {
	size := math.Max(explosion.SmallSize, p.Damage/10)
	return s.explosions.Detonate(p.Position, size, Specs[p.Kind].BlastRadius, p.Damage)
}

func (s *System) hitTest(p Projectile, targets []Target) (Hit, bool) {
	radius := Specs[p.Kind].HitRadius
	for _, t := range targets {
		if !t.Alive() || p.Position.Distance(t.TargetPosition()) >= radius {
			continue
		}
		h := Hit{Projectile: p, Target: t.TargetID()}
		h.Explosions = append(h.Explosions, s.explosions.Spawn(p.Position, explosion.SmallSize))
		if t.TakeDamage(p.Damage) {
			h.Killed = true
			h.Explosions = append(h.Explosions, s.explosions.Spawn(t.TargetPosition(), explosion.LargeSize))
		}
		return h, true
	}
	return Hit{}, false
}

// Projectiles returns a copy of the live projectiles.
func (s *System) Projectiles() []Projectile {
	out := make([]Projectile, len(s.projectiles))
	copy(out, s.projectiles)
	return out
}

func (s *System) Len() int {
	return len(s.projectiles)
}

// Clear drops every projectile.
func (s *System) Clear() {
	s.projectiles = nil
}
