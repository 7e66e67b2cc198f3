package core

import "time"

// EventKind names what a simulation event reports.
type EventKind string

const (
	EventSpawn     EventKind = "spawn"
	EventRemove    EventKind = "remove"
	EventFired     EventKind = "fired"
	EventHit       EventKind = "hit"
	EventKill      EventKind = "kill"
	EventExplosion EventKind = "explosion"
	EventBlast     EventKind = "blast"
	EventCrash     EventKind = "crash"
	EventReset     EventKind = "reset"
	EventLevel     EventKind = "difficulty"
)

// EventKinds lists every kind, in no particular order.
var EventKinds = []EventKind{
	EventSpawn, EventRemove, EventFired, EventHit, EventKill,
	EventExplosion, EventBlast, EventCrash, EventReset, EventLevel,
}

// EntityKind classifies the entity an event refers to.
type EntityKind string

const (
	EntityPlayer     EntityKind = "player"
	EntityEnemy      EntityKind = "enemy"
	EntityProjectile EntityKind = "projectile"
	EntityRound      EntityKind = "hostile_round"
	EntityExplosion  EntityKind = "explosion"
	EntityDebris     EntityKind = "debris"
)

// Pose is a position and orientation in local metres and radians.
type Pose struct {
	Position Position3D `json:"position"`
	Heading  float64    `json:"heading"`
	Pitch    float64    `json:"pitch"`
	Roll     float64    `json:"roll"`
}

// Event is emitted by the simulation loop for every change a renderer or
// recorder needs to see. Exactly one of the typed payloads is set for
// fired, hit, kill, explosion and general kinds.
type Event struct {
	Kind     EventKind  `json:"kind"`
	Tick     uint64     `json:"tick"`
	Time     time.Time  `json:"time"`
	Entity   EntityKind `json:"entity,omitempty"`
	EntityID uint64     `json:"entityId,omitempty"`
	Pose     *Pose      `json:"pose,omitempty"`
	Variant  string     `json:"variant,omitempty"`

	Aircraft  *Aircraft       `json:"aircraft,omitempty"`
	Fired     *FiredEvent     `json:"fired,omitempty"`
	Hit       *HitEvent       `json:"hit,omitempty"`
	Kill      *KillEvent      `json:"kill,omitempty"`
	Explosion *ExplosionEvent `json:"explosion,omitempty"`
	General   *GeneralEvent   `json:"general,omitempty"`
}
