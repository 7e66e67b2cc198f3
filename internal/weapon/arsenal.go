package weapon

import (
	"math"

	"github.com/OCAP2/dogfight/internal/entity"
)

// Arsenal tracks the player's weapon selection, ammunition and cooldowns.
type Arsenal struct {
	Selected  Kind
	Ammo      map[Kind]int
	Fired     map[Kind]int
	Cooldowns map[Kind]float64

	specs map[Kind]Spec
}

// NewArsenal returns a fully loaded arsenal with bullets selected.
func NewArsenal() *Arsenal {
	a := &Arsenal{specs: Specs}
	a.Reload()
	return a
}

// Reload restores starting ammunition and clears cooldowns and counters.
func (a *Arsenal) Reload() {
	a.Selected = Bullet
	a.Ammo = make(map[Kind]int, len(Kinds))
	a.Fired = make(map[Kind]int, len(Kinds))
	a.Cooldowns = make(map[Kind]float64, len(Kinds))
	for _, k := range Kinds {
		a.Ammo[k] = a.specs[k].Ammo
	}
}

// Select switches to the weapon in the given 1-based slot. Unknown slots are
// ignored.
func (a *Arsenal) Select(slot int) {
	if k, ok := KindFromSlot(slot); ok {
		a.Selected = k
	}
}

// Tick counts cooldowns down.
func (a *Arsenal) Tick(dt float64) {
	for k, c := range a.Cooldowns {
		a.Cooldowns[k] = math.Max(0, c-dt)
	}
}

// Ready reports whether the selected weapon can fire now.
func (a *Arsenal) Ready() bool {
	return a.Cooldowns[a.Selected] <= 0 && a.Ammo[a.Selected] != 0
}

// Fire launches one round of the selected weapon. It is a silent no-op while
// the cooldown runs or when the magazine is empty.
func (a *Arsenal) Fire(id entity.ID, from Pose) (Projectile, bool) {
	k := a.Selected
	if !a.Ready() {
		return Projectile{}, false
	}
	spec := a.specs[k]
	if a.Ammo[k] > 0 {
		a.Ammo[k]--
	}
	a.Fired[k]++
	a.Cooldowns[k] = spec.Cooldown
	return newProjectile(id, k, spec, from), true
}

// Status is the HUD weapon snapshot.
type Status struct {
	Selected string         `json:"selected"`
	Ammo     map[string]int `json:"ammo"`
	Fired    map[string]int `json:"fired"`
	Firing   bool           `json:"firing"`
	Ready    bool           `json:"ready"`
}

// Status reports the arsenal. Negative ammo means unlimited.
func (a *Arsenal) Status(firing bool) Status {
	s := Status{
		Selected: a.Selected.String(),
		Ammo:     make(map[string]int, len(Kinds)),
		Fired:    make(map[string]int, len(Kinds)),
		Firing:   firing,
		Ready:    a.Ready(),
	}
	for _, k := range Kinds {
		s.Ammo[k.String()] = a.Ammo[k]
		s.Fired[k.String()] = a.Fired[k]
	}
	return s
}
