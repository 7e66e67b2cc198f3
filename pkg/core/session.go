// pkg/core/session.go
package core

import "time"

// Position3D is a position in local simulation metres: X forward at spawn,
// Y up, Z to the side. Ground is Y == 0.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// GeoOrigin anchors local metres to the globe.
type GeoOrigin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Session is one run of the simulation, from start to shutdown.
type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"startTime"`
	Seed        int64     `json:"seed"`
	TickRate    float64   `json:"tickRate"`
	Origin      GeoOrigin `json:"origin"`
	Version     string    `json:"version"`
	Build       string    `json:"build"`
	Tag         string    `json:"tag"`
	Environment Weather   `json:"environment"`
}

// Weather is the environment the session was flown in.
type Weather struct {
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	Turbulence    float64 `json:"turbulence"`
	Visibility    float64 `json:"visibility"`
}

// Summary is the end-of-session tally.
type Summary struct {
	EndTime  time.Time `json:"endTime"`
	Ticks    uint64    `json:"ticks"`
	Duration float64   `json:"duration"`
	Score    int       `json:"score"`
	Kills    int       `json:"kills"`
	Crashes  int       `json:"crashes"`
	MaxLevel int       `json:"maxLevel"`
}

// UploadMetadata accompanies an exported recording sent to the web API.
type UploadMetadata struct {
	SessionName string
	Tag         string
	Duration    float64
	Score       int
	Kills       int
}
