// Package entity hands out identifiers for simulation entities.
package entity

// ID identifies a projectile, explosion, enemy or debris particle for the
// lifetime of a session. Zero is never issued.
type ID uint64

// PlayerID is reserved for the player aircraft.
const PlayerID ID = 1

// Allocator issues increasing IDs. It is owned by the simulation goroutine.
type Allocator struct {
	last ID
}

// NewAllocator returns an allocator whose first ID follows PlayerID.
func NewAllocator() *Allocator {
	return &Allocator{last: PlayerID}
}

// Next returns a fresh ID.
func (a *Allocator) Next() ID {
	a.last++
	return a.last
}
