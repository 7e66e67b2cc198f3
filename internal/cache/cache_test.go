package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/pkg/core"
)

func TestEntityCache_NewEntityCache(t *testing.T) {
	cache := NewEntityCache()

	require.NotNil(t, cache)
	assert.NotNil(t, cache.Aircraft)
	assert.Len(t, cache.Aircraft, 0)
	assert.Zero(t, cache.Active())
}

func TestEntityCache_AddAndGetAircraft(t *testing.T) {
	cache := NewEntityCache()

	cache.AddAircraft(core.Aircraft{ID: 42, Role: core.RoleEnemy, Name: "Bandit 42", Level: 2})

	got, ok := cache.GetAircraft(42)
	require.True(t, ok, "expected to find aircraft with ID 42")
	assert.Equal(t, uint64(42), got.ID)
	assert.Equal(t, "Bandit 42", got.Name)
	assert.Equal(t, "Bandit 42", cache.Name(42))
}

func TestEntityCache_GetAircraft_NotFound(t *testing.T) {
	cache := NewEntityCache()

	_, ok := cache.GetAircraft(999)
	assert.False(t, ok, "expected not to find aircraft with ID 999")
	assert.Empty(t, cache.Name(999))
}

func TestEntityCache_RemoveKeepsLabel(t *testing.T) {
	cache := NewEntityCache()
	cache.AddAircraft(core.Aircraft{ID: 1, Role: core.RolePlayer, Name: "Player"})
	cache.AddAircraft(core.Aircraft{ID: 5, Role: core.RoleEnemy, Name: "Bandit 5"})
	require.Equal(t, 2, cache.Active())

	cache.Remove(5)
	cache.Remove(77)
	assert.Equal(t, 1, cache.Active())
	assert.Equal(t, "Bandit 5", cache.Name(5), "removed aircraft still labelled")

	cache.Remove(1)
	cache.AddAircraft(core.Aircraft{ID: 1, Role: core.RolePlayer, Name: "Player"})
	assert.Equal(t, 1, cache.Active(), "re-added player is active again")
}

func TestEntityCache_Reset(t *testing.T) {
	cache := NewEntityCache()

	cache.AddAircraft(core.Aircraft{ID: 1, Name: "Player"})
	cache.AddAircraft(core.Aircraft{ID: 2, Name: "Bandit 2"})
	cache.Remove(2)
	assert.Len(t, cache.Aircraft, 2)

	cache.Reset()

	assert.Len(t, cache.Aircraft, 0)
	assert.Len(t, cache.Removed, 0)

	cache.AddAircraft(core.Aircraft{ID: 3, Name: "Bandit 3"})
	_, ok := cache.GetAircraft(3)
	assert.True(t, ok, "expected to find aircraft added after reset")
}

func TestEntityCache_LockUnlock(t *testing.T) {
	cache := NewEntityCache()

	cache.Lock()
	cache.Aircraft[1] = core.Aircraft{ID: 1, Name: "Direct Add"}
	cache.Unlock()

	got, ok := cache.GetAircraft(1)
	require.True(t, ok, "expected to find aircraft added while holding lock")
	assert.Equal(t, "Direct Add", got.Name)
}

func TestEntityCache_Concurrent(t *testing.T) {
	cache := NewEntityCache()
	var wg sync.WaitGroup

	for i := uint64(0); i < 100; i++ {
		wg.Add(2)
		go func(id uint64) {
			defer wg.Done()
			cache.AddAircraft(core.Aircraft{ID: id, Role: core.RoleEnemy})
		}(i)
		go func(id uint64) {
			defer wg.Done()
			cache.GetAircraft(id)
		}(i)
	}
	wg.Wait()

	assert.Len(t, cache.Aircraft, 100)
}
