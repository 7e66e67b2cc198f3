// Package combat runs the simulation tick: controls, flight, weapons,
// explosions, enemy AI, enemy rounds and crash debris, in that order.
package combat

import (
	"math"
	"time"

	"github.com/OCAP2/dogfight/internal/controls"
	"github.com/OCAP2/dogfight/internal/enemy"
	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/explosion"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/weapon"
)

// Defaults.
const (
	DefaultMaxDt        = 0.1
	DefaultRestartDelay = 3.0
	DefaultOutboxLimit  = 4096
)

// Config configures a Loop.
type Config struct {
	MaxDt           float64
	RestartDelay    float64
	Seed            int64
	FuzeProbability float64
	Guidance        weapon.GuidanceProfile
	Spawn           flight.Pose
	Params          flight.Params
	OutboxLimit     int
	// Start anchors event timestamps; zero means time.Now at construction.
	Start time.Time
}

// DefaultConfig returns the stock tuning with a time-seeded RNG.
func DefaultConfig() Config {
	return Config{
		MaxDt:           DefaultMaxDt,
		RestartDelay:    DefaultRestartDelay,
		FuzeProbability: weapon.DefaultFuzeProbability,
		Spawn:           flight.RunwayStart,
		Params:          flight.DefaultParams(),
		OutboxLimit:     DefaultOutboxLimit,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !(c.MaxDt > 0) {
		c.MaxDt = d.MaxDt
	}
	if !(c.RestartDelay > 0) {
		c.RestartDelay = d.RestartDelay
	}
	if c.Params == (flight.Params{}) {
		c.Params = d.Params
	}
	if c.OutboxLimit <= 0 {
		c.OutboxLimit = d.OutboxLimit
	}
	if c.Start.IsZero() {
		c.Start = time.Now()
	}
	return c
}

// Stats accumulate across restarts.
type Stats struct {
	Crashes    int `json:"crashes"`
	TotalKills int `json:"totalKills"`
	BestScore  int `json:"bestScore"`
	MaxLevel   int `json:"maxLevel"`
}

// SimulationContext owns every piece of mutable simulation state. Only the
// loop goroutine touches it.
type SimulationContext struct {
	Controls    controls.State
	Player      flight.Aircraft
	Arsenal     *weapon.Arsenal
	Projectiles *weapon.System
	Explosions  *explosion.Field
	Enemies     *enemy.Director
	Hostiles    *weapon.HostileSystem
	Debris      *Debris

	Score   int
	Kills   int
	Elapsed float64
	Tick    uint64
	// RestartIn counts down while the player is down.
	RestartIn float64
	Stats     Stats

	ids   *entity.Allocator
	rng   *prng.Source
	model *flight.Model
}

func newContext(cfg Config) *SimulationContext {
	ids := entity.NewAllocator()
	rng := prng.New(cfg.Seed)
	field := explosion.NewField(ids)

	return &SimulationContext{
		Controls: controls.New(),
		Player:   flight.NewAircraft(cfg.Spawn),
		Arsenal:  weapon.NewArsenal(),
		Projectiles: weapon.NewSystem(rng, field, weapon.Options{
			FuzeProbability: cfg.FuzeProbability,
			Guidance:        cfg.Guidance,
		}),
		Explosions: field,
		Enemies:    enemy.NewDirector(ids, rng),
		Hostiles:   weapon.NewHostileSystem(field),
		Debris:     NewDebris(ids, rng),
		Stats:      Stats{MaxLevel: 1},
		ids:        ids,
		rng:        rng,
		model:      flight.NewModel(cfg.Params, rng),
	}
}

// Seed returns the RNG seed in use, for replay.
func (s *SimulationContext) Seed() int64 {
	return s.rng.Seed()
}

func clampDt(dt, limit float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	return math.Min(dt, limit)
}
