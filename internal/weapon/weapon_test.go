package weapon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/internal/entity"
	"github.com/OCAP2/dogfight/internal/explosion"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/prng"
	"github.com/OCAP2/dogfight/internal/vector"
)

type fakeTarget struct {
	id     entity.ID
	pos    vector.Vec3
	health float64
}

func (f *fakeTarget) TargetID() entity.ID         { return f.id }
func (f *fakeTarget) TargetPosition() vector.Vec3 { return f.pos }
func (f *fakeTarget) Alive() bool                 { return f.health > 0 }
func (f *fakeTarget) TakeDamage(d float64) bool {
	f.health -= d
	return f.health <= 0
}

var level = Pose{Position: vector.New(0, 500, 0), Forward: vector.UnitX}

func newSystem(opts Options) (*System, *explosion.Field) {
	field := explosion.NewField(entity.NewAllocator())
	return NewSystem(prng.New(42), field, opts), field
}

func TestKindFromSlot(t *testing.T) {
	tests := []struct {
		slot int
		kind Kind
		ok   bool
	}{
		{1, Bullet, true},
		{2, Missile, true},
		{3, Rocket, true},
		{0, 0, false},
		{4, 0, false},
	}
	for _, tt := range tests {
		k, ok := KindFromSlot(tt.slot)
		assert.Equal(t, tt.ok, ok, "slot %d", tt.slot)
		if ok {
			assert.Equal(t, tt.kind, k)
		}
	}
}

func TestArsenal_FireAmmoBoundary(t *testing.T) {
	t.Run("ammo 1 fires once", func(t *testing.T) {
		a := NewArsenal()
		a.Select(2)
		a.Ammo[Missile] = 1

		p, ok := a.Fire(10, level)
		require.True(t, ok)
		assert.Equal(t, Missile, p.Kind)
		assert.Equal(t, 0, a.Ammo[Missile])
		assert.Equal(t, 1, a.Fired[Missile])

		a.Tick(10)
		_, ok = a.Fire(11, level)
		assert.False(t, ok)
		assert.Equal(t, 0, a.Ammo[Missile])
		assert.Equal(t, 1, a.Fired[Missile])
	})

	t.Run("ammo 0 never fires", func(t *testing.T) {
		a := NewArsenal()
		a.Select(3)
		a.Ammo[Rocket] = 0

		for i := 0; i < 5; i++ {
			_, ok := a.Fire(entity.ID(i+10), level)
			assert.False(t, ok)
			a.Tick(1)
		}
		assert.Equal(t, 0, a.Ammo[Rocket])
		assert.Zero(t, a.Fired[Rocket])
	})

	t.Run("bullets are unlimited but counted", func(t *testing.T) {
		a := NewArsenal()
		for i := 0; i < 100; i++ {
			_, ok := a.Fire(entity.ID(i+10), level)
			require.True(t, ok)
			a.Tick(Specs[Bullet].Cooldown)
		}
		assert.Equal(t, -1, a.Ammo[Bullet])
		assert.Equal(t, 100, a.Fired[Bullet])
	})
}

func TestArsenal_Cooldown(t *testing.T) {
	a := NewArsenal()
	a.Select(3)

	_, ok := a.Fire(10, level)
	require.True(t, ok)
	_, ok = a.Fire(11, level)
	assert.False(t, ok, "cooldown active")
	assert.Equal(t, 11, a.Ammo[Rocket])

	a.Tick(0.5)
	assert.False(t, a.Ready())
	a.Tick(0.31)
	assert.True(t, a.Ready())
}

func TestArsenal_OnlySelectedFires(t *testing.T) {
	a := NewArsenal()
	a.Select(2)
	p, ok := a.Fire(10, level)
	require.True(t, ok)
	assert.Equal(t, Missile, p.Kind)
	assert.NotNil(t, p.Missile)
	assert.Zero(t, a.Fired[Bullet])
	assert.Zero(t, a.Fired[Rocket])

	a.Select(9)
	assert.Equal(t, Missile, a.Selected)
}

func TestArsenal_MuzzlePose(t *testing.T) {
	a := NewArsenal()
	p, ok := a.Fire(10, level)
	require.True(t, ok)
	assert.Equal(t, vector.New(5, 500, 0), p.Position)
	assert.Equal(t, vector.New(800, 0, 0), p.Velocity)
	assert.Nil(t, p.Missile)
}

func TestArsenal_Status(t *testing.T) {
	a := NewArsenal()
	a.Select(2)
	s := a.Status(true)
	assert.Equal(t, "missile", s.Selected)
	assert.Equal(t, map[string]int{"bullet": -1, "missile": 6, "rocket": 12}, s.Ammo)
	assert.True(t, s.Firing)
	assert.True(t, s.Ready)
}

func TestSystem_RangeBoundary(t *testing.T) {
	s, _ := newSystem(Options{})
	s.Launch(Projectile{
		ID:       10,
		Kind:     Bullet,
		Position: vector.New(0, 500, 0),
		Velocity: vector.New(100, 0, 0),
		MaxRange: 2000,
	}, nil)

	last := 0.0
	for i := 0; i < 20; i++ {
		res := s.Update(1, nil)
		require.Empty(t, res.Expired)
		require.Equal(t, 1, s.Len())
		d := s.Projectiles()[0].Distance
		assert.Greater(t, d, last)
		last = d
	}
	assert.Equal(t, 2000.0, last, "distance equal to range is kept")

	res := s.Update(1, nil)
	require.Len(t, res.Expired, 1)
	assert.Zero(t, s.Len())
}

func TestSystem_RangeEpsilon(t *testing.T) {
	s, _ := newSystem(Options{})
	s.Launch(Projectile{
		ID:       10,
		Kind:     Bullet,
		Position: vector.New(0, 500, 0),
		Velocity: vector.New(1e-9, 0, 0),
		Distance: 2000,
		MaxRange: 2000,
	}, nil)

	res := s.Update(1, nil)
	assert.Len(t, res.Expired, 1)
	assert.Empty(t, res.Detonations)
	assert.Empty(t, res.Hits)
}

func TestSystem_MissileAccelerates(t *testing.T) {
	s, _ := newSystem(Options{})
	a := NewArsenal()
	a.Select(2)
	p, _ := a.Fire(10, level)
	s.Launch(p, nil)

	for i := 0; i < 20; i++ {
		s.Update(0.5, nil)
	}
	m := s.Projectiles()[0]
	assert.InDelta(t, 800, m.Missile.Speed, 1e-9)
	assert.InDelta(t, 800, m.Velocity.Length(), 1e-9)
	assert.LessOrEqual(t, m.Missile.Fuel, 0.0)
}

func TestSystem_MissileFuze(t *testing.T) {
	t.Run("certain fuze waits for arming distance", func(t *testing.T) {
		s, field := newSystem(Options{FuzeProbability: 1})
		a := NewArsenal()
		a.Select(2)
		p, _ := a.Fire(10, level)
		s.Launch(p, nil)

		for i := 0; i < 3; i++ {
			res := s.Update(0.1, nil)
			require.Empty(t, res.Detonations, "tick %d", i)
		}
		res := s.Update(0.1, nil)
		require.Len(t, res.Detonations, 1)
		e := res.Detonations[0].Explosion
		assert.Equal(t, 20.0, e.Size)
		assert.Equal(t, 50.0, e.BlastRadius)
		assert.Equal(t, 200.0, e.Damage)
		assert.Equal(t, 1, field.Len())
		assert.Zero(t, s.Len())
	})

	t.Run("zero probability never fuzes", func(t *testing.T) {
		s, _ := newSystem(Options{})
		a := NewArsenal()
		a.Select(2)
		p, _ := a.Fire(10, level)
		s.Launch(p, nil)
		for i := 0; i < 100; i++ {
			assert.Empty(t, s.Update(0.1, nil).Detonations)
		}
	})

	t.Run("seeded draws repeat", func(t *testing.T) {
		detonatedAt := func() int {
			field := explosion.NewField(entity.NewAllocator())
			s := NewSystem(prng.New(7), field, Options{FuzeProbability: 0.05})
			a := NewArsenal()
			a.Select(2)
			p, _ := a.Fire(10, level)
			s.Launch(p, nil)
			for i := 0; i < 1000; i++ {
				if len(s.Update(0.01, nil).Detonations) > 0 {
					return i
				}
			}
			return -1
		}
		first := detonatedAt()
		assert.NotEqual(t, -1, first)
		assert.Equal(t, first, detonatedAt())
	})
}

func TestSystem_RocketGroundDetonation(t *testing.T) {
	s, _ := newSystem(Options{})
	s.Launch(Projectile{
		ID:       10,
		Kind:     Rocket,
		Position: vector.New(0, 1.5, 0),
		Velocity: vector.New(0, -10, 0),
		Distance: 40,
		MaxRange: 5000,
		Damage:   150,
	}, nil)

	res := s.Update(0.1, nil)
	require.Len(t, res.Detonations, 1)
	e := res.Detonations[0].Explosion
	assert.Equal(t, 15.0, e.Size)
	assert.Equal(t, 30.0, e.BlastRadius)
	assert.Equal(t, 150.0, e.Damage)
}

func TestSystem_RocketArmsAfterBlastRadius(t *testing.T) {
	s, _ := newSystem(Options{})
	s.Launch(Projectile{
		ID:       11,
		Kind:     Rocket,
		Position: vector.New(0, 0.1, 0),
		Velocity: vector.New(400, 0, 0),
		MaxRange: 5000,
		Damage:   150,
	}, nil)

	// 6.4 m per tick: still inside its own blast radius.
	for i := 0; i < 4; i++ {
		res := s.Update(0.016, nil)
		require.Empty(t, res.Detonations, "tick %d", i)
	}
	assert.Equal(t, 1, s.Len())

	res := s.Update(0.016, nil)
	require.Len(t, res.Detonations, 1)
	assert.GreaterOrEqual(t, res.Detonations[0].Projectile.Distance, Specs[Rocket].BlastRadius)
}

func TestSystem_HitTest(t *testing.T) {
	tests := []struct {
		name       string
		health     float64
		killed     bool
		explosions int
		score      int
	}{
		{name: "damages", health: 100, explosions: 1},
		{name: "kills", health: 10, killed: true, explosions: 2, score: KillScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, field := newSystem(Options{})
			target := &fakeTarget{id: 99, pos: vector.New(0, 500, 100), health: tt.health}
			targets := []Target{target}
			s.Launch(Projectile{
				ID:       10,
				Kind:     Bullet,
				Position: vector.New(0, 500, 97),
				Velocity: vector.New(0, 0, 10),
				MaxRange: 2000,
				Damage:   10,
			}, targets)

			res := s.Update(0.1, targets)

			require.Len(t, res.Hits, 1)
			assert.Equal(t, entity.ID(99), res.Hits[0].Target)
			assert.Equal(t, tt.killed, res.Hits[0].Killed)
			assert.Len(t, res.Hits[0].Explosions, tt.explosions)
			assert.Equal(t, tt.explosions, field.Len())
			assert.Equal(t, tt.score, res.Score)
			assert.InDelta(t, tt.health-10, target.health, 1e-12)
			assert.Zero(t, s.Len())
			if tt.killed {
				assert.Equal(t, []entity.ID{99}, res.Killed())
			}
		})
	}
}

func TestSystem_DeadTargetsIgnored(t *testing.T) {
	s, _ := newSystem(Options{})
	dead := &fakeTarget{id: 99, pos: vector.New(0, 500, 100)}
	s.Launch(Projectile{
		ID:       10,
		Kind:     Bullet,
		Position: vector.New(0, 500, 99),
		MaxRange: 2000,
	}, nil)

	res := s.Update(0.1, []Target{dead})
	assert.Empty(t, res.Hits)
	assert.Equal(t, 1, s.Len())
}

func TestSystem_Guidance(t *testing.T) {
	s, _ := newSystem(Options{Guidance: DefaultGuidance})
	target := &fakeTarget{id: 99, pos: vector.New(3000, 500, 600), health: 100}
	behind := &fakeTarget{id: 98, pos: vector.New(-500, 500, 0), health: 100}
	targets := []Target{behind, target}

	a := NewArsenal()
	a.Select(2)
	p, _ := a.Fire(10, level)
	s.Launch(p, targets)

	m := s.Projectiles()[0]
	require.NotNil(t, m.Missile)
	assert.Equal(t, entity.ID(99), m.Missile.Target)

	s.Update(0.1, targets)
	assert.Greater(t, s.Projectiles()[0].Velocity.Z, 0.0)

	target.health = 0
	s.Update(0.1, targets)
	assert.Zero(t, s.Projectiles()[0].Missile.Target, "lock dropped on dead target")
}

func TestHostileSystem_HitIsLethal(t *testing.T) {
	field := explosion.NewField(entity.NewAllocator())
	h := NewHostileSystem(field)
	player := flight.NewAircraft(flight.Pose{Position: vector.New(0, 500, 0)})

	h.Launch(NewHostileRound(10, 20, vector.New(-68, 500, 0), vector.UnitX))
	res := h.Update(0.1, &player)

	require.Len(t, res.Hits, 1)
	assert.True(t, player.Crashed)
	assert.Equal(t, 1, field.Len())
	assert.Zero(t, h.Len())
}

func TestHostileSystem_Expires(t *testing.T) {
	h := NewHostileSystem(explosion.NewField(entity.NewAllocator()))
	player := flight.NewAircraft(flight.Pose{Position: vector.New(0, 500, 5000)})

	round := NewHostileRound(10, 20, vector.New(0, 500, 0), vector.UnitX)
	assert.Equal(t, OwnerEnemy, round.Owner)
	assert.Equal(t, HostileRange, round.MaxRange)
	h.Launch(round)

	var expired int
	for i := 0; i < 40; i++ {
		expired += len(h.Update(0.1, &player).Expired)
	}
	assert.Equal(t, 1, expired)
	assert.False(t, player.Crashed)
}
