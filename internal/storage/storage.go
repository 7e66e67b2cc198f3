// internal/storage/storage.go
package storage

import "github.com/OCAP2/dogfight/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession(sum core.Summary) error

	// Aircraft registration; IDs are simulation entity IDs
	AddAircraft(a *core.Aircraft) error
	RemoveAircraft(id, tick uint64) error

	// State recording
	RecordAircraftState(s *core.AircraftState) error

	// Event recording
	RecordFiredEvent(e *core.FiredEvent) error
	RecordHitEvent(e *core.HitEvent) error
	RecordKillEvent(e *core.KillEvent) error
	RecordExplosionEvent(e *core.ExplosionEvent) error
	RecordGeneralEvent(e *core.GeneralEvent) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the recording web API.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// PerformanceRecorder is an optional interface for backends that keep loop
// performance samples next to the recording.
type PerformanceRecorder interface {
	RecordPerformance(p *core.LoopPerformance) error
}
