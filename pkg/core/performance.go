// pkg/core/performance.go
package core

import "time"

// LoopPerformance is a periodic sample of simulation loop load.
type LoopPerformance struct {
	Time        time.Time `json:"time"`
	TickRate    float64   `json:"tickRate"`
	TickMs      float64   `json:"tickMs"`
	Enemies     int       `json:"enemies"`
	Projectiles int       `json:"projectiles"`
	Explosions  int       `json:"explosions"`
	Debris      int       `json:"debris"`
	Dropped     uint64    `json:"dropped"`
}
