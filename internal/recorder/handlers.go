package recorder

import (
	"fmt"

	"github.com/OCAP2/dogfight/pkg/core"
)

func isAircraft(kind core.EntityKind) bool {
	return kind == core.EntityPlayer || kind == core.EntityEnemy
}

// handleSpawn registers aircraft. The player is re-spawned with the same
// ID after every reset; it is only added to the backend once.
func (r *Recorder) handleSpawn(e core.Event) error {
	if !isAircraft(e.Entity) || e.Aircraft == nil {
		return nil
	}

	_, known := r.deps.EntityCache.GetAircraft(e.Aircraft.ID)
	r.deps.EntityCache.AddAircraft(*e.Aircraft)
	if known {
		return nil
	}

	a := *e.Aircraft
	if err := r.deps.Backend.AddAircraft(&a); err != nil {
		return fmt.Errorf("failed to add aircraft %d: %w", a.ID, err)
	}
	return nil
}

func (r *Recorder) handleRemove(e core.Event) error {
	if !isAircraft(e.Entity) {
		return nil
	}
	r.deps.EntityCache.Remove(e.EntityID)
	return r.deps.Backend.RemoveAircraft(e.EntityID, e.Tick)
}

func (r *Recorder) handleFired(e core.Event) error {
	if e.Fired == nil {
		return nil
	}
	return r.deps.Backend.RecordFiredEvent(e.Fired)
}

func (r *Recorder) handleHit(e core.Event) error {
	if e.Hit == nil {
		return nil
	}
	return r.deps.Backend.RecordHitEvent(e.Hit)
}

func (r *Recorder) handleKill(e core.Event) error {
	if e.Kill == nil {
		return nil
	}
	r.deps.LogManager.Logger().Debug("Aircraft destroyed",
		"victim", r.deps.EntityCache.Name(e.Kill.VictimID),
		"killer", r.deps.EntityCache.Name(e.Kill.KillerID),
		"weapon", e.Kill.Weapon,
		"distance", e.Kill.Distance)
	return r.deps.Backend.RecordKillEvent(e.Kill)
}

func (r *Recorder) handleExplosion(e core.Event) error {
	if e.Explosion == nil {
		return nil
	}
	return r.deps.Backend.RecordExplosionEvent(e.Explosion)
}

// handleGeneral records crash, blast, reset and difficulty events. Events
// without a payload get a bare one named after their kind.
func (r *Recorder) handleGeneral(e core.Event) error {
	g := e.General
	if g == nil {
		g = &core.GeneralEvent{Time: e.Time, Tick: e.Tick, Name: string(e.Kind)}
	}
	return r.deps.Backend.RecordGeneralEvent(g)
}
