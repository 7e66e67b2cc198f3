package combat

import (
	"time"

	"github.com/OCAP2/dogfight/internal/controls"
	"github.com/OCAP2/dogfight/internal/enemy"
	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/queue"
	"github.com/OCAP2/dogfight/internal/weapon"
	"github.com/OCAP2/dogfight/pkg/core"
)

// Frame is everything a host needs after one tick: HUD snapshots, aircraft
// states and the events emitted during the tick.
type Frame struct {
	Tick      uint64            `json:"tick"`
	Time      time.Time         `json:"time"`
	Elapsed   float64           `json:"elapsed"`
	Dt        float64           `json:"dt"`
	Flight    flight.FlightData `json:"flight"`
	Weapons   weapon.Status     `json:"weapons"`
	Controls  controls.State    `json:"controls"`
	Score     int               `json:"score"`
	Kills     int               `json:"kills"`
	Level     int               `json:"level"`
	Enemies   int               `json:"enemies"`
	Crashed   bool              `json:"crashed"`
	RestartIn float64           `json:"restartIn"`
	Player    core.Pose         `json:"player"`

	// Entity counts.
	Projectiles int `json:"projectiles"`
	Rounds      int `json:"rounds"`
	Explosions  int `json:"explosions"`
	Debris      int `json:"debris"`

	// Dropped counts events lost to a full outbox since the loop began.
	Dropped uint64 `json:"dropped"`

	States []core.AircraftState `json:"states"`
	Events []core.Event         `json:"events"`
}

// Loop advances a SimulationContext one tick at a time.
type Loop struct {
	cfg     Config
	sim     *SimulationContext
	outbox  *queue.Queue[core.Event]
	metrics *metrics
	emit    emitter
}

// NewLoop builds a loop with a fresh context. The player spawn is emitted
// with the first frame.
func NewLoop(cfg Config) *Loop {
	cfg = cfg.withDefaults()
	l := &Loop{
		cfg:     cfg,
		sim:     newContext(cfg),
		outbox:  queue.NewBounded[core.Event](cfg.OutboxLimit),
		metrics: newMetrics(),
	}
	l.emit = emitter{at: cfg.Start}
	l.emit.spawnPlayer(l.sim.Player)
	l.flush()
	return l
}

// Context exposes the simulation state. It must only be used from the
// goroutine that calls Tick.
func (l *Loop) Context() *SimulationContext { return l.sim }

func (l *Loop) Config() Config { return l.cfg }

// Start is the session start time events are stamped against.
func (l *Loop) Start() time.Time { return l.cfg.Start }

// Tick runs one pipeline pass. dt is clamped to [0, MaxDt]. A nil env is
// calm air.
func (l *Loop) Tick(in controls.Input, env *flight.Environment, dt float64) Frame {
	began := time.Now()
	s := l.sim
	dt = clampDt(dt, l.cfg.MaxDt)

	s.Tick++
	s.Elapsed += dt
	l.emit = emitter{tick: s.Tick, at: l.now()}
	wasDown := s.Player.Crashed

	l.controlsStage(in)
	l.flightStage(env, dt)
	l.weaponsStage(dt)
	l.explosionsStage(dt)
	l.enemyStage(dt)
	l.hostileStage(dt)

	if s.Player.Crashed && !wasDown {
		l.crash()
	}
	l.debrisStage(dt)

	if wasDown {
		s.RestartIn -= dt
		if s.RestartIn <= 0 {
			l.reset()
		}
	}

	l.flush()
	f := l.frame(dt)
	l.metrics.record(f, time.Since(began))
	return f
}

func (l *Loop) now() time.Time {
	return l.cfg.Start.Add(time.Duration(l.sim.Elapsed * float64(time.Second)))
}

func (l *Loop) controlsStage(in controls.Input) {
	s := l.sim
	if s.Player.Crashed {
		s.Controls.Firing = false
		return
	}
	s.Controls.Update(in)
	s.Arsenal.Select(s.Controls.WeaponSlot)
	s.Controls.Apply(&s.Player)
}

func (l *Loop) flightStage(env *flight.Environment, dt float64) {
	if l.sim.Player.Crashed {
		return
	}
	l.sim.model.Update(&l.sim.Player, env, dt)
}

func (l *Loop) weaponsStage(dt float64) {
	s := l.sim
	s.Arsenal.Tick(dt)

	targets := s.Enemies.Targets()
	res := s.Projectiles.Update(dt, targets)

	for _, p := range res.Expired {
		l.emit.remove(core.EntityProjectile, p.ID, "range")
	}
	for _, d := range res.Detonations {
		l.emit.remove(core.EntityProjectile, d.Projectile.ID, "detonated")
		l.emit.explosion(d.Explosion, d.Projectile.Kind.String())
	}
	for _, h := range res.Hits {
		l.emit.remove(core.EntityProjectile, h.Projectile.ID, "hit")
		dist := h.Projectile.Distance
		l.emit.hit(h.Projectile, h.Target, dist)
		for i, x := range h.Explosions {
			cause := "hit"
			if i > 0 {
				cause = "kill"
			}
			l.emit.explosion(x, cause)
		}
		if h.Killed {
			s.Enemies.Remove(h.Target)
			s.Kills++
			s.Stats.TotalKills++
			l.emit.kill(h.Target, entity.PlayerID, h.Projectile.Kind.String(), dist, weapon.KillScore)
			l.emit.remove(core.EntityEnemy, h.Target, "destroyed")
		}
	}
	s.Score += res.Score
	if s.Score > s.Stats.BestScore {
		s.Stats.BestScore = s.Score
	}

	if !s.Controls.Firing || s.Player.Crashed || !s.Arsenal.Ready() {
		return
	}
	from := weapon.Pose{Position: s.Player.Position, Forward: s.Player.Forward()}
	p, ok := s.Arsenal.Fire(s.ids.Next(), from)
	if !ok {
		return
	}
	s.Projectiles.Launch(p, s.Enemies.Targets())
	l.emit.fired(p, s.Arsenal.Ammo[p.Kind])
}

func (l *Loop) explosionsStage(dt float64) {
	s := l.sim
	res := s.Explosions.Update(dt, &s.Player)
	for _, b := range res.Blasts {
		l.emit.push(core.Event{
			Kind:     core.EventBlast,
			Entity:   core.EntityPlayer,
			EntityID: uint64(entity.PlayerID),
			General: &core.GeneralEvent{
				Time: l.emit.at,
				Tick: l.emit.tick,
				Name: "blast",
				ExtraData: map[string]any{
					"explosionId": uint64(b.ExplosionID),
					"distance":    b.Distance,
					"damage":      b.Damage,
					"lethal":      b.Lethal,
				},
			},
		})
	}
	for _, id := range res.Expired {
		l.emit.remove(core.EntityExplosion, id, "expired")
	}
}

func (l *Loop) enemyStage(dt float64) {
	s := l.sim
	res := s.Enemies.Update(dt, &s.Player)
	if res.LevelChanged {
		lvl := s.Enemies.Level()
		if lvl > s.Stats.MaxLevel {
			s.Stats.MaxLevel = lvl
		}
		l.emit.general(core.EventLevel, "difficulty", "difficulty increased", map[string]any{
			"level":       lvl,
			"maxEnemies":  enemy.MaxEnemies(lvl),
			"spawnPeriod": enemy.SpawnInterval(lvl),
		})
	}
	for _, a := range res.Spawned {
		l.emit.spawnEnemy(a)
	}
	for _, id := range res.Removed {
		l.emit.remove(core.EntityEnemy, id, "disengaged")
	}
	for _, p := range res.Shots {
		s.Hostiles.Launch(p)
		l.emit.fired(p, -1)
	}
}

func (l *Loop) hostileStage(dt float64) {
	s := l.sim
	res := s.Hostiles.Update(dt, &s.Player)
	for _, p := range res.Expired {
		l.emit.remove(core.EntityRound, p.ID, "range")
	}
	for _, h := range res.Hits {
		l.emit.remove(core.EntityRound, h.Projectile.ID, "hit")
		l.emit.hit(h.Projectile, entity.PlayerID, h.Projectile.Distance)
		l.emit.explosion(h.Explosion, "hit")
	}
}

func (l *Loop) debrisStage(dt float64) {
	for _, id := range l.sim.Debris.Update(dt) {
		l.emit.remove(core.EntityDebris, id, "faded")
	}
}

func (l *Loop) crash() {
	s := l.sim
	s.RestartIn = l.cfg.RestartDelay
	s.Stats.Crashes++
	s.Controls.Firing = false

	l.emit.push(core.Event{
		Kind:     core.EventCrash,
		Entity:   core.EntityPlayer,
		EntityID: uint64(entity.PlayerID),
		Pose:     aircraftPose(s.Player),
		General: &core.GeneralEvent{
			Time:    l.emit.at,
			Tick:    l.emit.tick,
			Name:    "crash",
			Message: "player aircraft destroyed",
			ExtraData: map[string]any{
				"score":    s.Score,
				"kills":    s.Kills,
				"altitude": s.Player.Altitude,
				"speed":    s.Player.Speed(),
			},
		},
	})
	for _, p := range s.Debris.Burst(s.Player.Position) {
		l.emit.particle(p)
	}
}

// Reset restores the initial session state immediately, as the restart
// timer does after a crash.
func (l *Loop) Reset() Frame {
	l.emit = emitter{tick: l.sim.Tick, at: l.now()}
	l.reset()
	l.flush()
	return l.frame(0)
}

func (l *Loop) reset() {
	s := l.sim
	for _, a := range s.Enemies.Agents() {
		l.emit.remove(core.EntityEnemy, a.ID, "reset")
	}
	for _, p := range s.Projectiles.Projectiles() {
		l.emit.remove(core.EntityProjectile, p.ID, "reset")
	}
	for _, p := range s.Hostiles.Projectiles() {
		l.emit.remove(core.EntityRound, p.ID, "reset")
	}
	for _, x := range s.Explosions.All() {
		l.emit.remove(core.EntityExplosion, x.ID, "reset")
	}
	for _, d := range s.Debris.Particles() {
		l.emit.remove(core.EntityDebris, d.ID, "reset")
	}
	s.Projectiles.Clear()
	s.Explosions.Clear()
	s.Hostiles.Clear()
	s.Debris.Clear()
	s.Enemies.Clear()
	s.Arsenal.Reload()

	s.Score = 0
	s.Kills = 0
	s.RestartIn = 0
	s.Controls = controls.New()
	s.Player = flight.NewAircraft(l.cfg.Spawn)

	l.emit.general(core.EventReset, "reset", "session reset", nil)
	l.emit.spawnPlayer(s.Player)
}

// flush moves this tick's events into the outbox.
func (l *Loop) flush() {
	if len(l.emit.events) == 0 {
		return
	}
	l.outbox.Push(l.emit.events...)
	l.emit.events = nil
}

func (l *Loop) frame(dt float64) Frame {
	s := l.sim
	at := l.now()
	f := Frame{
		Tick:        s.Tick,
		Time:        at,
		Elapsed:     s.Elapsed,
		Dt:          dt,
		Flight:      flight.Data(s.Player),
		Weapons:     s.Arsenal.Status(s.Controls.Firing),
		Controls:    s.Controls,
		Score:       s.Score,
		Kills:       s.Kills,
		Level:       s.Enemies.Level(),
		Enemies:     s.Enemies.Len(),
		Crashed:     s.Player.Crashed,
		RestartIn:   s.RestartIn,
		Player:      *aircraftPose(s.Player),
		Projectiles: s.Projectiles.Len(),
		Rounds:      s.Hostiles.Len(),
		Explosions:  s.Explosions.Len(),
		Debris:      s.Debris.Len(),
		Dropped:     l.outbox.Dropped(),
		Events:      l.outbox.Drain(),
	}

	f.States = make([]core.AircraftState, 0, 1+s.Enemies.Len())
	f.States = append(f.States, aircraftState(entity.PlayerID, s.Player, 100, "player", !s.Player.Crashed, s.Tick, at))
	for _, a := range s.Enemies.Agents() {
		f.States = append(f.States, aircraftState(a.ID, a.Aircraft, float64(a.Health), a.State.String(), a.Alive(), s.Tick, at))
	}
	return f
}
