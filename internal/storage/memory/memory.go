// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/pkg/core"
)

// ErrNoSession is returned when recording is attempted outside a session.
var ErrNoSession = errors.New("no session started")

// AircraftRecord groups an aircraft with all its time-series data
type AircraftRecord struct {
	Aircraft    core.Aircraft
	LeaveTick   uint64
	States      []core.AircraftState
	FiredEvents []core.FiredEvent
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session
	summary core.Summary

	aircraft map[uint64]*AircraftRecord // keyed by entity ID

	hitEvents       []core.HitEvent
	killEvents      []core.KillEvent
	explosionEvents []core.ExplosionEvent
	generalEvents   []core.GeneralEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		aircraft: make(map[uint64]*AircraftRecord),
	}
}

func (b *Backend) Init() error  { return nil }
func (b *Backend) Close() error { return nil }

// StartSession begins recording a new session
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s
	b.summary = core.Summary{}
	b.aircraft = make(map[uint64]*AircraftRecord)
	b.hitEvents = nil
	b.killEvents = nil
	b.explosionEvents = nil
	b.generalEvents = nil
	b.lastExportPath = ""
	return nil
}

// EndSession stores the tally and exports the recording
func (b *Backend) EndSession(sum core.Summary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	b.summary = sum
	return b.exportJSON()
}

// AddAircraft registers a new aircraft. Re-adding a known ID keeps its
// history.
func (b *Backend) AddAircraft(a *core.Aircraft) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.aircraft[a.ID]; ok {
		return nil
	}
	b.aircraft[a.ID] = &AircraftRecord{
		Aircraft: *a,
		States:   make([]core.AircraftState, 0),
	}
	return nil
}

// RemoveAircraft stamps the tick the aircraft left the world
func (b *Backend) RemoveAircraft(id, tick uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.aircraft[id]; ok && record.LeaveTick == 0 {
		record.LeaveTick = tick
	}
	return nil
}

// GetAircraft looks up an aircraft by entity ID
func (b *Backend) GetAircraft(id uint64) (*core.Aircraft, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.aircraft[id]; ok {
		a := record.Aircraft
		return &a, true
	}
	return nil, false
}

// RecordAircraftState records a state sample. Unknown aircraft are ignored.
func (b *Backend) RecordAircraftState(s *core.AircraftState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.aircraft[s.AircraftID]; ok {
		record.States = append(record.States, *s)
	}
	return nil
}

// RecordFiredEvent files the shot under its shooter
func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.aircraft[e.ShooterID]; ok {
		record.FiredEvents = append(record.FiredEvents, *e)
	}
	return nil
}

func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hitEvents = append(b.hitEvents, *e)
	return nil
}

func (b *Backend) RecordKillEvent(e *core.KillEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.killEvents = append(b.killEvents, *e)
	return nil
}

func (b *Backend) RecordExplosionEvent(e *core.ExplosionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.explosionEvents = append(b.explosionEvents, *e)
	return nil
}

func (b *Backend) RecordGeneralEvent(e *core.GeneralEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generalEvents = append(b.generalEvents, *e)
	return nil
}

// GetExportedFilePath returns the file written by the last EndSession.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last export for upload.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.session == nil {
		return core.UploadMetadata{}
	}
	return core.UploadMetadata{
		SessionName: b.session.Name,
		Tag:         b.session.Tag,
		Duration:    b.summary.Duration,
		Score:       b.summary.Score,
		Kills:       b.summary.Kills,
	}
}
