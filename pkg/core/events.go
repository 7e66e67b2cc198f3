// pkg/core/events.go
package core

import (
	"time"
)

// FiredEvent represents a weapon being fired.
// ShooterID is the entity ID of the aircraft that fired.
type FiredEvent struct {
	ShooterID    uint64     `json:"shooterId"`
	ProjectileID uint64     `json:"projectileId"`
	Time         time.Time  `json:"time"`
	Tick         uint64     `json:"tick"`
	Weapon       string     `json:"weapon"`
	StartPos     Position3D `json:"startPos"`
	Direction    Position3D `json:"direction"`
	AmmoLeft     int        `json:"ammoLeft"`
}

// HitEvent represents a projectile striking an aircraft.
type HitEvent struct {
	Time         time.Time  `json:"time"`
	Tick         uint64     `json:"tick"`
	VictimID     uint64     `json:"victimId"`
	ShooterID    uint64     `json:"shooterId"`
	ProjectileID uint64     `json:"projectileId"`
	Weapon       string     `json:"weapon"`
	Damage       float64    `json:"damage"`
	Distance     float64    `json:"distance"`
	Position     Position3D `json:"position"`
}

// KillEvent represents an aircraft being destroyed by fire.
type KillEvent struct {
	Time     time.Time `json:"time"`
	Tick     uint64    `json:"tick"`
	VictimID uint64    `json:"victimId"`
	KillerID uint64    `json:"killerId"`
	Weapon   string    `json:"weapon"`
	Distance float64   `json:"distance"`
	Score    int       `json:"score"`
}

// ExplosionEvent represents an explosion appearing in the world.
type ExplosionEvent struct {
	ExplosionID uint64     `json:"explosionId"`
	Time        time.Time  `json:"time"`
	Tick        uint64     `json:"tick"`
	Position    Position3D `json:"position"`
	Size        float64    `json:"size"`
	BlastRadius float64    `json:"blastRadius"`
	Damage      float64    `json:"damage"`
	Cause       string     `json:"cause"`
}

// GeneralEvent is a generic event: crash, reset, difficulty change.
type GeneralEvent struct {
	Time      time.Time      `json:"time"`
	Tick      uint64         `json:"tick"`
	Name      string         `json:"name"`
	Message   string         `json:"message"`
	ExtraData map[string]any `json:"extraData,omitempty"`
}
