package enemy

import (
	"math"

	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
	"github.com/OCAP2/dogfight/internal/weapon"
)

// Spawn placement.
const (
	minSpawnDistance = 2000.0
	maxSpawnDistance = 5000.0
	spawnClimb       = 500.0
	minSpawnAltitude = 1000.0
	levelPeriod      = 300.0
)

// Difficulty returns the level for the elapsed session time in seconds.
func Difficulty(elapsed float64) int {
	if elapsed < 0 || math.IsNaN(elapsed) {
		return 1
	}
	return 1 + int(math.Floor(elapsed/levelPeriod))
}

// SpawnInterval returns seconds between spawn attempts at a level.
func SpawnInterval(level int) float64 {
	return math.Max(30, 120-15*float64(level))
}

// MaxEnemies returns the population cap at a level.
func MaxEnemies(level int) int {
	return 2 + level
}

// Result reports what one Director.Update did.
type Result struct {
	Spawned      []*Agent
	Removed      []entity.ID
	Shots        []weapon.Projectile
	LevelChanged bool
}

// Director spawns agents and runs their AI.
type Director struct {
	ids *entity.Allocator
	rng *prng.Source

	agents     []*Agent
	elapsed    float64
	spawnTimer float64
	level      int
}

func NewDirector(ids *entity.Allocator, rng *prng.Source) *Director {
	return &Director{ids: ids, rng: rng, level: 1}
}

func (d *Director) Level() int { return d.level }

func (d *Director) Elapsed() float64 { return d.elapsed }

// Agents returns the live agents. Callers must not retain the slice.
func (d *Director) Agents() []*Agent { return d.agents }

func (d *Director) Len() int { return len(d.agents) }

// Targets exposes the agents to the weapon system.
func (d *Director) Targets() []weapon.Target {
	out := make([]weapon.Target, len(d.agents))
	for i, a := range d.agents {
		out[i] = a
	}
	return out
}

// Remove drops the agent with id. It reports whether one was found.
func (d *Director) Remove(id entity.ID) bool {
	for i, a := range d.agents {
		if a.ID == id {
			d.agents = append(d.agents[:i], d.agents[i+1:]...)
			return true
		}
	}
	return false
}

// Update advances the spawn scheduler, then every agent. Agents beyond the
// disengage range are removed. While the player is down agents hold fire.
func (d *Director) Update(dt float64, player *flight.Aircraft) Result {
	var res Result

	d.elapsed += dt
	if lvl := Difficulty(d.elapsed); lvl != d.level {
		d.level = lvl
		res.LevelChanged = true
	}

	d.spawnTimer += dt
	if d.spawnTimer >= SpawnInterval(d.level) {
		d.spawnTimer = 0
		if len(d.agents) < MaxEnemies(d.level) {
			res.Spawned = append(res.Spawned, d.Spawn(player.Position))
		}
	}

	kept := d.agents[:0]
	for _, a := range d.agents {
		shot, fired := a.Update(dt, player.Position, player.Crashed, d.rng)
		if a.Distance > DisengageRange {
			res.Removed = append(res.Removed, a.ID)
			continue
		}
		if fired {
			res.Shots = append(res.Shots, weapon.NewHostileRound(d.ids.Next(), a.ID, shot.Origin, shot.Direction))
		}
		kept = append(kept, a)
	}
	d.agents = kept
	return res
}

// Spawn places a new agent on a random bearing around the player, above
// it, facing it. The population cap is the caller's concern.
func (d *Director) Spawn(player vector.Vec3) *Agent {
	bearing := d.rng.Range(0, 2*math.Pi)
	dist := d.rng.Range(minSpawnDistance, maxSpawnDistance)
	pos := vector.New(
		player.X+math.Cos(bearing)*dist,
		math.Max(player.Y+spawnClimb, minSpawnAltitude),
		player.Z+math.Sin(bearing)*dist,
	)
	a := NewAgent(d.ids.Next(), d.level, pos, player, d.rng)
	d.agents = append(d.agents, a)
	return a
}

// Clear removes every agent and restarts the spawn timer. Difficulty keeps
// following the session clock.
func (d *Director) Clear() {
	d.agents = nil
	d.spawnTimer = 0
}

// Reset clears agents and restarts the session clock.
func (d *Director) Reset() {
	d.Clear()
	d.elapsed = 0
	d.level = 1
}
