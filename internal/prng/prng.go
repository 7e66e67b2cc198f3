// Package prng wraps a seedable random source so every stochastic rule in
// the simulation can be replayed from a seed.
package prng

import (
	"math/rand"
	"time"
)

// Source is not safe for concurrent use; the simulation owns it from a
// single goroutine.
type Source struct {
	rng  *rand.Rand
	seed int64
}

// New creates a source. Seed 0 picks a time-based seed.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the effective seed, useful for logging a session so it can be replayed.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float64 returns a number in [0.0, 1.0).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Range returns a number in [min, max).
func (s *Source) Range(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

// Centered returns a number in [-half, half).
func (s *Source) Centered(half float64) float64 {
	return (s.rng.Float64() - 0.5) * 2 * half
}

// Intn returns an int in [0, n).
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}
