package combat

import (
	"math"

	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
)

// ParticleKind is the crash particle variant.
type ParticleKind int

const (
	Fragment ParticleKind = iota
	Smoke
	Fire
)

func (k ParticleKind) String() string {
	switch k {
	case Smoke:
		return "smoke"
	case Fire:
		return "fire"
	}
	return "fragment"
}

// Crash particle counts.
const (
	fragmentCount = 20
	smokeCount    = 30
	fireCount     = 15
)

const (
	debrisGravity = -9.8
	bounce        = 0.3
	groundDrag    = 0.8
	restSpeed     = 0.5
)

// Particle is one piece of crash debris, smoke or fire. Fade and growth are
// applied per tick; Spin is in rad/s.
type Particle struct {
	ID       entity.ID    `json:"id"`
	Kind     ParticleKind `json:"kind"`
	Position vector.Vec3  `json:"position"`
	Velocity vector.Vec3  `json:"velocity"`
	Rotation vector.Vec3  `json:"rotation"`
	Spin     vector.Vec3  `json:"spin"`
	Size     float64      `json:"size"`
	Grow     float64      `json:"grow"`
	Opacity  float64      `json:"opacity"`
	Fade     float64      `json:"fade"`
}

// Debris owns crash particles.
type Debris struct {
	ids       *entity.Allocator
	rng       *prng.Source
	particles []Particle
}

func NewDebris(ids *entity.Allocator, rng *prng.Source) *Debris {
	return &Debris{ids: ids, rng: rng}
}

// Burst spawns the full crash effect at pos and returns the new particles.
func (d *Debris) Burst(pos vector.Vec3) []Particle {
	r := d.rng
	start := len(d.particles)

	for i := 0; i < fragmentCount; i++ {
		d.particles = append(d.particles, Particle{
			ID:       d.ids.Next(),
			Kind:     Fragment,
			Position: pos,
			Velocity: vector.New(r.Centered(5), r.Range(0, 15), r.Centered(5)),
			Rotation: vector.New(r.Range(0, 2*math.Pi), r.Range(0, 2*math.Pi), r.Range(0, 2*math.Pi)),
			Spin:     vector.New(r.Centered(2.5), r.Centered(2.5), r.Centered(2.5)),
			Size:     0.5,
			Opacity:  1,
		})
	}
	for i := 0; i < smokeCount; i++ {
		d.particles = append(d.particles, Particle{
			ID:       d.ids.Next(),
			Kind:     Smoke,
			Position: pos,
			Velocity: vector.New(r.Centered(2.5), r.Range(2, 7), r.Centered(2.5)),
			Size:     r.Range(1, 4),
			Grow:     r.Range(0.5, 1.5),
			Opacity:  0.7,
			Fade:     r.Range(0.01, 0.06),
		})
	}
	for i := 0; i < fireCount; i++ {
		d.particles = append(d.particles, Particle{
			ID:       d.ids.Next(),
			Kind:     Fire,
			Position: pos,
			Velocity: vector.New(r.Centered(1.5), r.Range(5, 13), r.Centered(1.5)),
			Size:     r.Range(0.5, 2),
			Opacity:  0.9,
			Fade:     r.Range(0.02, 0.1),
		})
	}

	out := make([]Particle, len(d.particles)-start)
	copy(out, d.particles[start:])
	return out
}

// Update integrates gravity, ground bounce, growth and fade. It returns the
// IDs of particles that faded out.
func (d *Debris) Update(dt float64) []entity.ID {
	var gone []entity.ID

	kept := d.particles[:0]
	for _, p := range d.particles {
		p.Velocity.Y += debrisGravity * dt
		p.Position = p.Position.Add(p.Velocity.Mul(dt))

		if p.Position.Y < 0 {
			p.Position.Y = 0
			p.Velocity.Y = -p.Velocity.Y * bounce
			p.Velocity.X *= groundDrag
			p.Velocity.Z *= groundDrag
			if p.Velocity.Length() < restSpeed {
				p.Velocity = vector.Vec3{}
			}
		}

		p.Rotation = p.Rotation.Add(p.Spin.Mul(dt))
		p.Size += p.Grow * dt

		if p.Fade > 0 {
			p.Opacity -= p.Fade
			if p.Opacity <= 0 {
				gone = append(gone, p.ID)
				continue
			}
		}
		kept = append(kept, p)
	}
	d.particles = kept
	return gone
}

// Particles returns a copy of the live particles.
func (d *Debris) Particles() []Particle {
	out := make([]Particle, len(d.particles))
	copy(out, d.particles)
	return out
}

func (d *Debris) Len() int {
	return len(d.particles)
}

// Clear drops every particle.
func (d *Debris) Clear() {
	d.particles = nil
}
