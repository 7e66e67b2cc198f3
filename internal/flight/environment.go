package flight

import "math"

// DefaultVisibility is the clear-weather visibility in metres.
const DefaultVisibility = 10000

// Environment carries the weather scalars read by the force model each tick.
// The simulation never mutates it.
type Environment struct {
	WindSpeed     float64 `json:"windSpeed"`     // m/s
	WindDirection float64 `json:"windDirection"` // rad
	Turbulence    float64 `json:"turbulence"`    // 0..1
	Visibility    float64 `json:"visibility"`    // m
}

// Calm returns clear weather with no wind.
func Calm() Environment {
	return Environment{Visibility: DefaultVisibility}
}

// SetWeather returns an environment with the given values. Missing or
// invalid values fall back to calm defaults.
func SetWeather(windSpeed, windDirection, turbulence, visibility float64) Environment {
	return Environment{
		WindSpeed:     windSpeed,
		WindDirection: windDirection,
		Turbulence:    turbulence,
		Visibility:    visibility,
	}.sanitized()
}

// sanitized maps NaN, infinite and negative values to zero effect.
func (e Environment) sanitized() Environment {
	out := Environment{
		WindSpeed:     nonNegative(e.WindSpeed),
		WindDirection: e.WindDirection,
		Turbulence:    nonNegative(e.Turbulence),
		Visibility:    nonNegative(e.Visibility),
	}
	if !isFinite(out.WindDirection) {
		out.WindDirection = 0
	}
	if out.Visibility == 0 {
		out.Visibility = DefaultVisibility
	}
	return out
}

func nonNegative(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
