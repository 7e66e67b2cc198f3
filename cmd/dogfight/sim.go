package main

import (
	"time"

	"github.com/OCAP2/dogfight/internal/combat"
	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/internal/flight"
	"github.com/OCAP2/dogfight/internal/vector"
	"github.com/OCAP2/dogfight/internal/weapon"
	"github.com/OCAP2/dogfight/pkg/core"
)

// loopConfig maps the sim section of the config file onto the loop tuning.
func loopConfig(sc config.SimConfig, start time.Time) combat.Config {
	cfg := combat.DefaultConfig()
	cfg.Start = start
	cfg.Seed = sc.Seed
	if sc.MaxDt > 0 {
		cfg.MaxDt = sc.MaxDt
	}
	if sc.RestartDelay > 0 {
		cfg.RestartDelay = sc.RestartDelay
	}
	if sc.FuzeProbability >= 0 {
		cfg.FuzeProbability = sc.FuzeProbability
	}
	if sc.MissileGuidance {
		cfg.Guidance = weapon.DefaultGuidance
	}
	cfg.Spawn = flight.Pose{
		Position: vector.New(sc.SpawnX, sc.SpawnY, sc.SpawnZ),
		Heading:  sc.SpawnHeading,
	}
	return cfg
}

func simEnvironment(sc config.SimConfig) flight.Environment {
	w := sc.Weather
	return flight.SetWeather(w.WindSpeed, w.WindDirection, w.Turbulence, w.Visibility)
}

func weather(sc config.SimConfig) core.Weather {
	env := simEnvironment(sc)
	return core.Weather{
		WindSpeed:     env.WindSpeed,
		WindDirection: env.WindDirection,
		Turbulence:    env.Turbulence,
		Visibility:    env.Visibility,
	}
}

func origin(sc config.SimConfig) core.GeoOrigin {
	return core.GeoOrigin{
		Latitude:  sc.Origin.Latitude,
		Longitude: sc.Origin.Longitude,
	}
}
