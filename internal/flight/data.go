package flight

import "math"

// FlightData is the read-only instrument snapshot handed to the HUD.
type FlightData struct {
	Altitude       float64 `json:"altitude"`      // m
	Speed          float64 `json:"speed"`         // km/h
	VerticalSpeed  float64 `json:"verticalSpeed"` // m/min
	Heading        float64 `json:"heading"`       // deg, [0,360)
	Pitch          float64 `json:"pitch"`         // deg
	Roll           float64 `json:"roll"`          // deg
	Throttle       float64 `json:"throttle"`      // %
	GroundSpeed    float64 `json:"groundSpeed"`   // km/h
	Flaps          float64 `json:"flaps"`         // %
	GearDown       bool    `json:"gearDown"`
	Afterburner    bool    `json:"afterburner"`
	AfterburnerLit bool    `json:"afterburnerLit"`
	Crashed        bool    `json:"crashed"`
}

const (
	msToKmh  = 3.6
	radToDeg = 180 / math.Pi
)

// Data builds the instrument snapshot for a.
func Data(a Aircraft) FlightData {
	return FlightData{
		Altitude:       a.Altitude,
		Speed:          a.Velocity.Length() * msToKmh,
		VerticalSpeed:  a.Velocity.Y * 60,
		Heading:        math.Mod(WrapHeading(a.Heading)*radToDeg, 360),
		Pitch:          a.Pitch * radToDeg,
		Roll:           a.Roll * radToDeg,
		Throttle:       a.Throttle * 100,
		GroundSpeed:    a.Velocity.Horizontal() * msToKmh,
		Flaps:          a.Flaps * 100,
		GearDown:       a.GearDown,
		Afterburner:    a.Afterburner,
		AfterburnerLit: a.AfterburnerLit(),
		Crashed:        a.Crashed,
	}
}
