// pkg/core/aircraft.go
package core

import "time"

// Aircraft roles.
const (
	RolePlayer = "player"
	RoleEnemy  = "enemy"
)

// Aircraft is a player or enemy airframe that joined the session.
// ID is the simulation entity ID.
type Aircraft struct {
	ID       uint64    `json:"id"`
	JoinTime time.Time `json:"joinTime"`
	JoinTick uint64    `json:"joinTick"`
	Role     string    `json:"role"`
	Name     string    `json:"name"`
	Level    int       `json:"level"`
}

// AircraftState is a sampled snapshot of one aircraft.
// Angles are degrees, speed is m/s.
type AircraftState struct {
	AircraftID uint64     `json:"aircraftId"`
	Time       time.Time  `json:"time"`
	Tick       uint64     `json:"tick"`
	Position   Position3D `json:"position"`
	Heading    float64    `json:"heading"`
	Pitch      float64    `json:"pitch"`
	Roll       float64    `json:"roll"`
	Speed      float64    `json:"speed"`
	Throttle   float64    `json:"throttle"`
	Health     float64    `json:"health"`
	Mode       string     `json:"mode"`
	IsAlive    bool       `json:"isAlive"`
}
