package main

import (
	"github.com/OCAP2/dogfight/internal/combat"
	"github.com/OCAP2/dogfight/internal/controls"
)

// Autopilot flight plan, in HUD units.
const (
	rotateSpeed    = 260.0 // km/h
	gearUpAltitude = 60.0  // m
	cruiseAltitude = 900.0 // m
	maxClimbPitch  = 15.0  // deg
	bankLimit      = 25.0  // deg
	turnEvery      = 600   // ticks
	burstEvery     = 20    // ticks
	burstLength    = 4     // ticks
)

type phase int

const (
	takeoffRoll phase = iota
	climb
	patrol
)

// Autopilot is a scripted pilot for headless runs: it takes off, climbs
// to cruise altitude and flies alternating turns, firing short bursts
// whenever bandits are up.
type Autopilot struct {
	phase  phase
	ticks  int
	gearUp bool
}

// NewAutopilot returns a pilot sitting on the runway.
func NewAutopilot() *Autopilot {
	return &Autopilot{}
}

// Input implements combat.InputSource.
func (a *Autopilot) Input(last combat.Frame) controls.Input {
	a.ticks++
	fd := last.Flight

	if last.Crashed {
		*a = Autopilot{ticks: a.ticks}
		return controls.Input{}
	}

	var in controls.Input
	switch a.phase {
	case takeoffRoll:
		in.ThrottleUp = fd.Throttle < 100
		if fd.Speed >= rotateSpeed {
			a.phase = climb
		}
	case climb:
		in.ThrottleUp = fd.Throttle < 100
		in.PitchUp = fd.Pitch < maxClimbPitch
		in.PitchDown = fd.Pitch > maxClimbPitch+5
		if fd.Altitude >= cruiseAltitude {
			a.phase = patrol
		}
	case patrol:
		in.ThrottleDown = fd.Throttle > 80
		in.PitchUp = fd.Altitude < cruiseAltitude-50 && fd.Pitch < 5
		in.PitchDown = fd.Altitude > cruiseAltitude+50 && fd.Pitch > -5
		bank := bankLimit
		if (a.ticks/turnEvery)%2 == 1 {
			bank = -bankLimit
		}
		in.RollLeft = fd.Roll < bank-5
		in.RollRight = fd.Roll > bank+5
	}

	if !a.gearUp && fd.GearDown && fd.Altitude > gearUpAltitude {
		in.ToggleGear = true
		a.gearUp = true
	}
	if last.Enemies > 0 && a.phase != takeoffRoll {
		in.Fire = a.ticks%burstEvery < burstLength
	}
	return in
}
