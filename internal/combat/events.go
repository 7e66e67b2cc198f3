package combat

import (
	"math"
	"time"

	"github.com/OCAP2/dogfight/internal/enemy"
	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/explosion"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/vector"
	"github.com/OCAP2/dogfight/internal/weapon"
	"github.com/OCAP2/dogfight/pkg/core"
)

const radToDeg = 180 / math.Pi

// Position converts a simulation vector to the wire position.
func Position(v vector.Vec3) core.Position3D {
	return core.Position3D{X: v.X, Y: v.Y, Z: v.Z}
}

func aircraftPose(a flight.Aircraft) *core.Pose {
	return &core.Pose{
		Position: Position(a.Position),
		Heading:  a.Heading,
		Pitch:    a.Pitch,
		Roll:     a.Roll,
	}
}

func pointPose(v vector.Vec3) *core.Pose {
	return &core.Pose{Position: Position(v)}
}

// emitter stamps events with the current tick and session time.
type emitter struct {
	tick   uint64
	at     time.Time
	events []core.Event
}

func (e *emitter) push(ev core.Event) {
	ev.Tick = e.tick
	ev.Time = e.at
	e.events = append(e.events, ev)
}

func (e *emitter) spawnPlayer(a flight.Aircraft) {
	e.push(core.Event{
		Kind:     core.EventSpawn,
		Entity:   core.EntityPlayer,
		EntityID: uint64(entity.PlayerID),
		Pose:     aircraftPose(a),
		Aircraft: &core.Aircraft{
			ID:       uint64(entity.PlayerID),
			JoinTime: e.at,
			JoinTick: e.tick,
			Role:     core.RolePlayer,
			Name:     "Player",
		},
	})
}

func (e *emitter) spawnEnemy(a *enemy.Agent) {
	e.push(core.Event{
		Kind:     core.EventSpawn,
		Entity:   core.EntityEnemy,
		EntityID: uint64(a.ID),
		Pose:     aircraftPose(a.Aircraft),
		Aircraft: &core.Aircraft{
			ID:       uint64(a.ID),
			JoinTime: e.at,
			JoinTick: e.tick,
			Role:     core.RoleEnemy,
			Name:     "Bandit",
			Level:    a.Level,
		},
	})
}

func (e *emitter) remove(kind core.EntityKind, id entity.ID, reason string) {
	e.push(core.Event{
		Kind:     core.EventRemove,
		Entity:   kind,
		EntityID: uint64(id),
		Variant:  reason,
	})
}

func (e *emitter) fired(p weapon.Projectile, ammoLeft int) {
	kind := core.EntityProjectile
	if p.Owner == weapon.OwnerEnemy {
		kind = core.EntityRound
	}
	e.push(core.Event{
		Kind:     core.EventSpawn,
		Entity:   kind,
		EntityID: uint64(p.ID),
		Pose:     pointPose(p.Position),
		Variant:  p.Kind.String(),
	})
	e.push(core.Event{
		Kind:     core.EventFired,
		Entity:   kind,
		EntityID: uint64(p.ID),
		Fired: &core.FiredEvent{
			ShooterID:    uint64(p.Shooter),
			ProjectileID: uint64(p.ID),
			Time:         e.at,
			Tick:         e.tick,
			Weapon:       p.Kind.String(),
			StartPos:     Position(p.Position),
			Direction:    Position(p.Velocity.Normalize()),
			AmmoLeft:     ammoLeft,
		},
	})
}

func (e *emitter) explosion(x explosion.Explosion, cause string) {
	e.push(core.Event{
		Kind:     core.EventSpawn,
		Entity:   core.EntityExplosion,
		EntityID: uint64(x.ID),
		Pose:     pointPose(x.Position),
		Variant:  cause,
	})
	e.push(core.Event{
		Kind:     core.EventExplosion,
		Entity:   core.EntityExplosion,
		EntityID: uint64(x.ID),
		Explosion: &core.ExplosionEvent{
			ExplosionID: uint64(x.ID),
			Time:        e.at,
			Tick:        e.tick,
			Position:    Position(x.Position),
			Size:        x.Size,
			BlastRadius: x.BlastRadius,
			Damage:      x.Damage,
			Cause:       cause,
		},
	})
}

func (e *emitter) hit(p weapon.Projectile, victim entity.ID, distance float64) {
	e.push(core.Event{
		Kind:     core.EventHit,
		Entity:   core.EntityProjectile,
		EntityID: uint64(p.ID),
		Hit: &core.HitEvent{
			Time:         e.at,
			Tick:         e.tick,
			VictimID:     uint64(victim),
			ShooterID:    uint64(p.Shooter),
			ProjectileID: uint64(p.ID),
			Weapon:       p.Kind.String(),
			Damage:       p.Damage,
			Distance:     distance,
			Position:     Position(p.Position),
		},
	})
}

func (e *emitter) kill(victim, killer entity.ID, weaponName string, distance float64, score int) {
	e.push(core.Event{
		Kind:     core.EventKill,
		Entity:   core.EntityEnemy,
		EntityID: uint64(victim),
		Kill: &core.KillEvent{
			Time:     e.at,
			Tick:     e.tick,
			VictimID: uint64(victim),
			KillerID: uint64(killer),
			Weapon:   weaponName,
			Distance: distance,
			Score:    score,
		},
	})
}

func (e *emitter) general(kind core.EventKind, name, msg string, extra map[string]any) {
	e.push(core.Event{
		Kind: kind,
		General: &core.GeneralEvent{
			Time:      e.at,
			Tick:      e.tick,
			Name:      name,
			Message:   msg,
			ExtraData: extra,
		},
	})
}

func (e *emitter) particle(p Particle) {
	e.push(core.Event{
		Kind:     core.EventSpawn,
		Entity:   core.EntityDebris,
		EntityID: uint64(p.ID),
		Pose:     pointPose(p.Position),
		Variant:  p.Kind.String(),
	})
}

// aircraftState builds a recorder snapshot.
func aircraftState(id entity.ID, a flight.Aircraft, health float64, mode string, alive bool, tick uint64, at time.Time) core.AircraftState {
	return core.AircraftState{
		AircraftID: uint64(id),
		Time:       at,
		Tick:       tick,
		Position:   Position(a.Position),
		Heading:    flight.Data(a).Heading,
		Pitch:      a.Pitch * radToDeg,
		Roll:       a.Roll * radToDeg,
		Speed:      a.Speed(),
		Throttle:   a.Throttle,
		Health:     health,
		Mode:       mode,
		IsAlive:    alive,
	}
}
