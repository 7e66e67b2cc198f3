package cache

import (
	"sync"

	"github.com/OCAP2/dogfight/pkg/core"
)

// EntityCache caches aircraft when they join the session so the recorder
// can label later events without a storage read.
type EntityCache struct {
	m        sync.Mutex
	Aircraft map[uint64]core.Aircraft
	// Removed holds IDs that left the session. They stay in Aircraft so
	// late events can still be labelled.
	Removed map[uint64]bool
}

func NewEntityCache() *EntityCache {
	return &EntityCache{
		Aircraft: make(map[uint64]core.Aircraft),
		Removed:  make(map[uint64]bool),
	}
}

func (c *EntityCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Aircraft = make(map[uint64]core.Aircraft)
	c.Removed = make(map[uint64]bool)
}

func (c *EntityCache) Lock() {
	c.m.Lock()
}

func (c *EntityCache) Unlock() {
	c.m.Unlock()
}

func (c *EntityCache) GetAircraft(id uint64) (core.Aircraft, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if a, ok := c.Aircraft[id]; ok {
		return a, true
	}
	return core.Aircraft{}, false
}

// AddAircraft stores a. Re-adding a removed ID (the player after a reset)
// makes it active again.
func (c *EntityCache) AddAircraft(a core.Aircraft) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Aircraft[a.ID] = a
	delete(c.Removed, a.ID)
}

// Remove marks id as gone. Unknown IDs are ignored.
func (c *EntityCache) Remove(id uint64) {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.Aircraft[id]; ok {
		c.Removed[id] = true
	}
}

// Active returns the number of aircraft that have not been removed.
func (c *EntityCache) Active() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Aircraft) - len(c.Removed)
}

// Name returns the cached name for id, or "" when unknown.
func (c *EntityCache) Name(id uint64) string {
	a, _ := c.GetAircraft(id)
	return a.Name
}
