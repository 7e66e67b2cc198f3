// Package controls turns per-tick input snapshots into normalized control
// axes and discrete toggles, and applies them to an aircraft.
package controls

import (
	"math"

	"github.com/OCAP2/dogfight/internal/flight"
)

// Per-tick increments while a key is held. These are not scaled by dt.
const (
	PitchSensitivity    = 0.02
	RollSensitivity     = 0.03
	YawSensitivity      = 0.01
	ThrottleSensitivity = 0.01

	LookSensitivity = 0.2
	MaxLookY        = 80.0
)

// Damping applied after clamping, every tick.
const (
	pitchDamping = 0.95
	rollDamping  = 0.95
	yawDamping   = 0.85
	lookDecay    = 0.9
)

// brakeAltitude is the height below which brakes bite.
const brakeAltitude = 1.0

// MouseLook is the look-around delta for one tick.
type MouseLook struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Active bool    `json:"active"`
}

// Input is the snapshot supplied by the input collaborator each tick.
// Held flags integrate while true; edge flags are true only on the tick
// the key went down.
type Input struct {
	PitchUp      bool `json:"pitchUp"`
	PitchDown    bool `json:"pitchDown"`
	RollLeft     bool `json:"rollLeft"`
	RollRight    bool `json:"rollRight"`
	YawLeft      bool `json:"yawLeft"`
	YawRight     bool `json:"yawRight"`
	ThrottleUp   bool `json:"throttleUp"`
	ThrottleDown bool `json:"throttleDown"`
	Fire         bool `json:"fire"`

	ToggleGear        bool `json:"toggleGear"`
	ToggleBrakes      bool `json:"toggleBrakes"`
	CycleFlaps        bool `json:"cycleFlaps"`
	ToggleAfterburner bool `json:"toggleAfterburner"`

	// SelectWeapon is a 1-based weapon slot; 0 leaves the selection alone.
	SelectWeapon int `json:"selectWeapon"`

	Look MouseLook `json:"look"`
}

// State is the normalized control state.
type State struct {
	Pitch    float64 `json:"pitch"`
	Roll     float64 `json:"roll"`
	Yaw      float64 `json:"yaw"`
	Throttle float64 `json:"throttle"`
	Flaps    float64 `json:"flaps"`
	Brakes   float64 `json:"brakes"`

	GearDown    bool `json:"gearDown"`
	Afterburner bool `json:"afterburner"`
	Firing      bool `json:"firing"`

	WeaponSlot int `json:"weaponSlot"`

	LookX float64 `json:"lookX"`
	LookY float64 `json:"lookY"`
}

// New returns the initial control state: idle, gear down, first weapon slot.
func New() State {
	return State{GearDown: true, WeaponSlot: 1}
}

// Update integrates one tick of input. Axes are clamped first, then damped.
func (s *State) Update(in Input) {
	if in.PitchUp {
		s.Pitch += PitchSensitivity
	}
	if in.PitchDown {
		s.Pitch -= PitchSensitivity
	}
	if in.RollLeft {
		s.Roll -= RollSensitivity
	}
	if in.RollRight {
		s.Roll += RollSensitivity
	}
	if in.YawLeft {
		s.Yaw -= YawSensitivity
	}
	if in.YawRight {
		s.Yaw += YawSensitivity
	}
	if in.ThrottleUp {
		s.Throttle += ThrottleSensitivity
	}
	if in.ThrottleDown {
		s.Throttle -= ThrottleSensitivity
	}

	s.Pitch = clamp(s.Pitch, -1, 1)
	s.Roll = clamp(s.Roll, -1, 1)
	s.Yaw = clamp(s.Yaw, -1, 1)
	s.Throttle = clamp(s.Throttle, 0, 1)

	s.Pitch *= pitchDamping
	s.Roll *= rollDamping
	s.Yaw *= yawDamping

	if in.ToggleGear {
		s.GearDown = !s.GearDown
	}
	if in.ToggleBrakes {
		if s.Brakes > 0 {
			s.Brakes = 0
		} else {
			s.Brakes = 1
		}
	}
	if in.CycleFlaps {
		s.Flaps = math.Mod(s.Flaps+0.5, 1.5)
	}
	if in.ToggleAfterburner {
		s.Afterburner = !s.Afterburner
	}
	if in.SelectWeapon > 0 {
		s.WeaponSlot = in.SelectWeapon
	}
	s.Firing = in.Fire

	s.updateLook(in.Look)
}

func (s *State) updateLook(l MouseLook) {
	if !l.Active {
		s.LookX *= lookDecay
		s.LookY *= lookDecay
		return
	}
	s.LookX += finiteOrZero(l.DX) * LookSensitivity
	s.LookY += finiteOrZero(l.DY) * LookSensitivity
	s.LookY = clamp(s.LookY, -MaxLookY, MaxLookY)
}

// Apply copies the control state onto the aircraft. Brakes slow the
// aircraft only while it is on or near the ground.
func (s State) Apply(a *flight.Aircraft) {
	a.Elevator = s.Pitch
	a.Aileron = s.Roll
	a.Rudder = s.Yaw
	a.Throttle = s.Throttle
	a.Flaps = s.Flaps
	a.GearDown = s.GearDown
	a.Afterburner = s.Afterburner

	if s.Brakes > 0 && a.Altitude < brakeAltitude {
		a.Velocity = a.Velocity.Mul(0.95)
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
