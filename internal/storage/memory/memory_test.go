// internal/storage/memory/memory_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/pkg/core"
)

var start = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newSession() *core.Session {
	return &core.Session{
		ID:        "6f1c8a52-3d1e-4c55-9a57-3b0b1c2d4e5f",
		Name:      "Dawn Patrol: 1",
		StartTime: start,
		Seed:      42,
		TickRate:  60,
		Tag:       "Training",
	}
}

func startedBackend(t *testing.T, compress bool) *Backend {
	t.Helper()
	b := New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: compress})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartSession(newSession()))
	return b
}

func TestAddAircraft(t *testing.T) {
	b := startedBackend(t, false)

	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1, Name: "Player", Role: core.RolePlayer}))
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 7, Name: "Bandit", Role: core.RoleEnemy, Level: 2}))

	a, ok := b.GetAircraft(7)
	require.True(t, ok)
	assert.Equal(t, "Bandit", a.Name)
	assert.Equal(t, 2, a.Level)

	_, ok = b.GetAircraft(99)
	assert.False(t, ok)
}

func TestAddAircraft_KeepsHistoryOnReAdd(t *testing.T) {
	b := startedBackend(t, false)
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1, Name: "Player"}))
	require.NoError(t, b.RecordAircraftState(&core.AircraftState{AircraftID: 1, Tick: 6}))

	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1, Name: "Player"}))
	assert.Len(t, b.aircraft[1].States, 1)
}

func TestRecordAircraftState(t *testing.T) {
	b := startedBackend(t, false)
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1}))

	require.NoError(t, b.RecordAircraftState(&core.AircraftState{AircraftID: 1, Tick: 6, Speed: 80}))
	require.NoError(t, b.RecordAircraftState(&core.AircraftState{AircraftID: 1, Tick: 12, Speed: 85}))
	require.NoError(t, b.RecordAircraftState(&core.AircraftState{AircraftID: 42, Tick: 12}))

	require.Len(t, b.aircraft[1].States, 2)
	assert.Equal(t, 85.0, b.aircraft[1].States[1].Speed)
	assert.NotContains(t, b.aircraft, uint64(42))
}

func TestRecordFiredEvent_FiledUnderShooter(t *testing.T) {
	b := startedBackend(t, false)
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1}))

	require.NoError(t, b.RecordFiredEvent(&core.FiredEvent{ShooterID: 1, ProjectileID: 30, Weapon: "bullet"}))
	require.NoError(t, b.RecordFiredEvent(&core.FiredEvent{ShooterID: 9, ProjectileID: 31, Weapon: "bullet"}))

	assert.Len(t, b.aircraft[1].FiredEvents, 1)
}

func TestRemoveAircraft_FirstTickWins(t *testing.T) {
	b := startedBackend(t, false)
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 5}))

	require.NoError(t, b.RemoveAircraft(5, 300))
	require.NoError(t, b.RemoveAircraft(5, 400))
	require.NoError(t, b.RemoveAircraft(77, 400))

	assert.Equal(t, uint64(300), b.aircraft[5].LeaveTick)
}

func TestStartSession_Resets(t *testing.T) {
	b := startedBackend(t, false)
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1}))
	require.NoError(t, b.RecordKillEvent(&core.KillEvent{VictimID: 2}))

	require.NoError(t, b.StartSession(newSession()))

	assert.Empty(t, b.aircraft)
	assert.Empty(t, b.killEvents)
	assert.Empty(t, b.GetExportedFilePath())
}

func TestEndSession_WithoutStart(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	assert.ErrorIs(t, b.EndSession(core.Summary{}), ErrNoSession)
}

func populate(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1, Name: "Player", Role: core.RolePlayer}))
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 12, Name: "Bandit", Role: core.RoleEnemy, JoinTick: 60, Level: 1}))
	require.NoError(t, b.RecordAircraftState(&core.AircraftState{
		AircraftID: 1, Tick: 6, Position: core.Position3D{X: 1, Y: 2, Z: 3}, Heading: 90, Health: 100, IsAlive: true,
	}))
	require.NoError(t, b.RecordAircraftState(&core.AircraftState{AircraftID: 12, Tick: 66, IsAlive: true}))
	require.NoError(t, b.RecordFiredEvent(&core.FiredEvent{ShooterID: 1, Tick: 70, Weapon: "missile", Direction: core.Position3D{X: 1}}))
	require.NoError(t, b.RecordHitEvent(&core.HitEvent{Tick: 90, VictimID: 12, ShooterID: 1, Weapon: "missile", Damage: 200}))
	require.NoError(t, b.RecordKillEvent(&core.KillEvent{Tick: 90, VictimID: 12, KillerID: 1, Weapon: "missile", Score: 100}))
	require.NoError(t, b.RecordExplosionEvent(&core.ExplosionEvent{Tick: 90, Size: 10, Cause: "kill"}))
	require.NoError(t, b.RecordGeneralEvent(&core.GeneralEvent{Tick: 30, Name: "difficulty", Message: "level 1"}))
	require.NoError(t, b.RemoveAircraft(12, 90))
}

func TestEndSession_ExportsGzip(t *testing.T) {
	b := startedBackend(t, true)
	populate(t, b)

	require.NoError(t, b.EndSession(core.Summary{EndTime: start.Add(time.Minute), Ticks: 3600, Duration: 60, Score: 100, Kills: 1}))

	path := b.GetExportedFilePath()
	assert.Equal(t, "Dawn_Patrol__1_20260314_092653.json.gz", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var rec Recording
	require.NoError(t, json.NewDecoder(gz).Decode(&rec))

	assert.Equal(t, "Dawn Patrol: 1", rec.Name)
	assert.Equal(t, int64(42), rec.Seed)
	assert.Equal(t, uint64(3600), rec.EndTick)
	assert.Equal(t, 100, rec.Summary.Score)

	require.Len(t, rec.Entities, 2)
	assert.Equal(t, uint64(1), rec.Entities[0].ID)
	assert.Equal(t, "enemy", rec.Entities[1].Role)
	assert.Equal(t, uint64(90), rec.Entities[1].EndTick)
	require.Len(t, rec.Entities[0].Positions, 1)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, rec.Entities[0].Positions[0][1])
	require.Len(t, rec.Entities[0].FramesFired, 1)
	assert.Equal(t, "missile", rec.Entities[0].FramesFired[0][1])

	require.Len(t, rec.Events, 4)
	assert.Equal(t, "difficulty", rec.Events[0][1], "events are ordered by tick")
	assert.Equal(t, "hit", rec.Events[1][1])
	assert.Equal(t, "killed", rec.Events[2][1])
	assert.Equal(t, "explosion", rec.Events[3][1])
}

func TestEndSession_ExportsPlainJSON(t *testing.T) {
	b := startedBackend(t, false)
	populate(t, b)
	require.NoError(t, b.EndSession(core.Summary{Ticks: 10}))

	path := b.GetExportedFilePath()
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec Recording
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, uint64(66), rec.EndTick, "last sample beyond summary ticks")
}

func TestGetExportMetadata(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	assert.Equal(t, core.UploadMetadata{}, b.GetExportMetadata())

	require.NoError(t, b.StartSession(newSession()))
	require.NoError(t, b.EndSession(core.Summary{Duration: 61.5, Score: 400, Kills: 4}))

	assert.Equal(t, core.UploadMetadata{
		SessionName: "Dawn Patrol: 1",
		Tag:         "Training",
		Duration:    61.5,
		Score:       400,
		Kills:       4,
	}, b.GetExportMetadata())
}
