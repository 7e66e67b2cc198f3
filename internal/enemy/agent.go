// Package enemy implements hostile aircraft: a per-agent pursue, attack and
// evade state machine and the director that spawns and updates them.
package enemy

import (
	"math"

	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
)

// State is an agent's behaviour mode.
type State int

const (
	Pursuing State = iota
	Attacking
	Evading
)

func (s State) String() string {
	switch s {
	case Attacking:
		return "attacking"
	case Evading:
		return "evading"
	}
	return "pursuing"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Behaviour thresholds in metres and seconds.
const (
	AttackRange     = 1000.0
	StandoffRange   = 500.0
	FireRange       = 1500.0
	DisengageRange  = 10000.0
	AltitudeFloor   = 50.0
	MaxHealth       = 100
	BaseSpeed       = 200.0
	SpeedPerLevel   = 10.0
	TurnRate        = 1.2
	aimRepickPeriod = 1.0
	aimJitterScale  = 200.0
	fireJitterScale = 0.2
	evadeSpeedMul   = 1.2
	evadeBlend      = 0.3
)

// Agent is one hostile aircraft.
type Agent struct {
	ID       entity.ID       `json:"id"`
	Aircraft flight.Aircraft `json:"aircraft"`
	Health   int             `json:"health"`
	State    State           `json:"state"`
	Level    int             `json:"level"`

	Speed    float64 `json:"speed"`
	TurnRate float64 `json:"turnRate"`
	FireRate float64 `json:"fireRate"`
	Accuracy float64 `json:"accuracy"`

	// Distance to the player as measured at the start of the last update.
	Distance float64 `json:"distance"`

	fireCooldown float64
	dwell        float64
	evade        float64
	aimTimer     float64
	aimOffset    vector.Vec3
	clock        float64
	phase        float64
}

// NewAgent creates an agent at pos, scaled to the difficulty level and
// facing toward face.
func NewAgent(id entity.ID, level int, pos, face vector.Vec3, rng *prng.Source) *Agent {
	a := &Agent{
		ID:       id,
		Health:   MaxHealth,
		State:    Pursuing,
		Level:    level,
		Speed:    BaseSpeed + SpeedPerLevel*float64(level),
		TurnRate: TurnRate,
		FireRate: 0.5 + 0.1*float64(level),
		Accuracy: 0.7 + 0.05*float64(level),
		phase:    rng.Range(0, 2*math.Pi),
	}
	a.Aircraft = flight.NewAircraft(flight.Pose{Position: pos})
	a.Aircraft.GearDown = false
	a.Aircraft.Throttle = 1
	a.orient(face.Sub(pos).Normalize(), a.Speed)
	return a
}

func (a *Agent) TargetID() entity.ID         { return a.ID }
func (a *Agent) TargetPosition() vector.Vec3 { return a.Aircraft.Position }
func (a *Agent) Alive() bool                 { return a.Health > 0 }

// TakeDamage reduces health by d rounded to the nearest whole point and
// reports whether the agent is destroyed.
func (a *Agent) TakeDamage(d float64) bool {
	if !a.Alive() {
		return false
	}
	a.Health -= int(math.Round(d))
	return a.Health <= 0
}

// Shot is a request to fire along Direction.
type Shot struct {
	Origin    vector.Vec3
	Direction vector.Vec3
}

// Update advances one tick against the player position. holdFire stops the
// agent from shooting without changing its state machine.
func (a *Agent) Update(dt float64, player vector.Vec3, holdFire bool, rng *prng.Source) (Shot, bool) {
	a.clock += dt
	a.Distance = a.Aircraft.Position.Distance(player)
	a.fireCooldown = math.Max(0, a.fireCooldown-dt)

	a.aimTimer -= dt
	if a.aimTimer <= 0 {
		j := math.Max(0, 1-a.Accuracy) * aimJitterScale
		a.aimOffset = vector.New(rng.Centered(j), rng.Centered(j), rng.Centered(j))
		a.aimTimer = aimRepickPeriod
	}

	a.transition(dt, rng)

	var (
		shot  Shot
		fired bool
	)
	toPlayer := player.Add(a.aimOffset).Sub(a.Aircraft.Position)

	switch a.State {
	case Pursuing:
		a.steer(dt, toPlayer, a.Speed)
	case Attacking:
		speed := a.Speed
		if a.Distance <= StandoffRange {
			speed /= 2
		}
		a.steer(dt, toPlayer, speed)
		if !holdFire && a.fireCooldown <= 0 && a.Distance < FireRange {
			shot, fired = a.fire(player, rng), true
		}
	case Evading:
		a.steer(dt, a.evasion(toPlayer.Normalize()), a.Speed*evadeSpeedMul)
	}
	return shot, fired
}

func (a *Agent) transition(dt float64, rng *prng.Source) {
	switch a.State {
	case Pursuing:
		if a.Distance < AttackRange {
			a.enterAttack(rng)
		}
	case Attacking:
		a.dwell -= dt
		if a.dwell <= 0 {
			a.State = Evading
			a.evade = rng.Range(2, 5)
		}
	case Evading:
		a.evade -= dt
		if a.evade > 0 {
			return
		}
		if a.Distance < AttackRange {
			a.enterAttack(rng)
		} else {
			a.State = Pursuing
		}
	}
}

func (a *Agent) enterAttack(rng *prng.Source) {
	a.State = Attacking
	a.dwell = rng.Range(5, 10)
}

func (a *Agent) fire(player vector.Vec3, rng *prng.Source) Shot {
	a.fireCooldown = 1 / a.FireRate
	j := math.Max(0, 1-a.Accuracy) * fireJitterScale
	dir := player.Sub(a.Aircraft.Position).Normalize()
	dir = dir.Add(vector.New(rng.Centered(j), rng.Centered(j), rng.Centered(j))).Normalize()
	return Shot{Origin: a.Aircraft.Position, Direction: dir}
}

// evasion mixes a time-varying weave with the bearing to the player.
func (a *Agent) evasion(toPlayer vector.Vec3) vector.Vec3 {
	t := a.clock + a.phase
	weave := vector.New(
		math.Sin(t*1.3),
		0.5*math.Sin(t*0.7),
		math.Cos(t*1.1),
	).Normalize()
	return weave.Lerp(toPlayer, evadeBlend)
}

func (a *Agent) steer(dt float64, want vector.Vec3, speed float64) {
	dir := a.Aircraft.Velocity.RotateToward(want, a.TurnRate*dt)
	a.orient(dir, speed)

	ac := &a.Aircraft
	ac.Position = ac.Position.Add(ac.Velocity.Mul(dt))
	if ac.Position.Y < AltitudeFloor {
		ac.Position.Y = AltitudeFloor
		if ac.Velocity.Y < 0 {
			ac.Velocity.Y = 0
		}
	}
	ac.Altitude = ac.Position.Y
}

// orient points the aircraft along dir at the given speed.
func (a *Agent) orient(dir vector.Vec3, speed float64) {
	if dir == (vector.Vec3{}) {
		dir = a.Aircraft.Forward()
	}
	ac := &a.Aircraft
	ac.Velocity = dir.Mul(speed)
	ac.Heading = flight.WrapHeading(math.Atan2(-dir.Z, dir.X))
	ac.Pitch = math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	ac.Roll = 0
}
