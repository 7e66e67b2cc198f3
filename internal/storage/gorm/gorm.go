// Package gormstorage implements the storage.Backend interface on top of a
// GORM database with internal queues and a background DB writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/dogfight/internal/geo"
	"github.com/OCAP2/dogfight/internal/logging"
	"github.com/OCAP2/dogfight/internal/model"
	"github.com/OCAP2/dogfight/internal/model/convert"
	"github.com/OCAP2/dogfight/internal/queue"
	"github.com/OCAP2/dogfight/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is used when Dependencies.FlushInterval is zero.
const DefaultFlushInterval = 2 * time.Second

// ErrNoSession is returned by EndSession when no session row exists.
var ErrNoSession = errors.New("no session started")

// Dependencies holds all dependencies for the GORM storage backend.
// A nil DB keeps rows queued without writing them.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
}

type removal struct {
	objectID uint64
	tick     uint64
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Aircraft        *queue.Queue[model.Aircraft]
	Removals        *queue.Queue[removal]
	AircraftStates  *queue.Queue[model.AircraftState]
	FiredEvents     *queue.Queue[model.FiredEvent]
	HitEvents       *queue.Queue[model.HitEvent]
	KillEvents      *queue.Queue[model.KillEvent]
	ExplosionEvents *queue.Queue[model.ExplosionEvent]
	GeneralEvents   *queue.Queue[model.GeneralEvent]
	Performance     *queue.Queue[model.LoopPerformance]
}

func newQueues() *queues {
	return &queues{
		Aircraft:        queue.New[model.Aircraft](),
		Removals:        queue.New[removal](),
		AircraftStates:  queue.New[model.AircraftState](),
		FiredEvents:     queue.New[model.FiredEvent](),
		HitEvents:       queue.New[model.HitEvent](),
		KillEvents:      queue.New[model.KillEvent](),
		ExplosionEvents: queue.New[model.ExplosionEvent](),
		GeneralEvents:   queue.New[model.GeneralEvent](),
		Performance:     queue.New[model.LoopPerformance](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64

	convMu sync.RWMutex
	conv   convert.Converter

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil
	b.Flush()
	return nil
}

// DB returns the underlying connection, nil in queue-only mode.
func (b *Backend) DB() *gorm.DB { return b.deps.DB }

// SessionID returns the database ID of the current session row.
func (b *Backend) SessionID() uint { return uint(b.sessionID.Load()) }

func (b *Backend) converter() convert.Converter {
	b.convMu.RLock()
	defer b.convMu.RUnlock()
	return b.conv
}

// StartSession inserts the session row and anchors positions at its origin.
func (b *Backend) StartSession(s *core.Session) error {
	ref, err := geo.NewGeoRef(s.Origin)
	if err != nil {
		return fmt.Errorf("session origin: %w", err)
	}
	b.convMu.Lock()
	b.conv = convert.Converter{Ref: ref}
	b.convMu.Unlock()

	if b.deps.DB == nil {
		return nil
	}

	row := convert.CoreToSession(*s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}
	b.sessionID.Store(uint64(row.ID))
	b.deps.LogManager.WriteLog("StartSession", fmt.Sprintf("Session %s stored as %d", s.ID, row.ID), "INFO")
	return nil
}

// EndSession flushes the queues and writes the summary onto the session row.
func (b *Backend) EndSession(sum core.Summary) error {
	b.Flush()
	if b.deps.DB == nil {
		return nil
	}
	id := b.SessionID()
	if id == 0 {
		return ErrNoSession
	}

	summary, end := convert.SummaryToModel(sum)
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Updates(map[string]any{
		"end_time":          end,
		"summary_ticks":     summary.Ticks,
		"summary_duration":  summary.Duration,
		"summary_score":     summary.Score,
		"summary_kills":     summary.Kills,
		"summary_crashes":   summary.Crashes,
		"summary_max_level": summary.MaxLevel,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}
	return nil
}

// AddAircraft converts an aircraft and pushes it to the write queue.
func (b *Backend) AddAircraft(a *core.Aircraft) error {
	b.queues.Aircraft.Push(b.converter().Aircraft(*a))
	return nil
}

// RemoveAircraft queues a leave-tick update, applied after pending inserts.
func (b *Backend) RemoveAircraft(id, tick uint64) error {
	b.queues.Removals.Push(removal{objectID: id, tick: tick})
	return nil
}

func (b *Backend) RecordAircraftState(s *core.AircraftState) error {
	b.queues.AircraftStates.Push(b.converter().AircraftState(*s))
	return nil
}

func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	b.queues.FiredEvents.Push(b.converter().FiredEvent(*e))
	return nil
}

func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	b.queues.HitEvents.Push(b.converter().HitEvent(*e))
	return nil
}

func (b *Backend) RecordKillEvent(e *core.KillEvent) error {
	b.queues.KillEvents.Push(b.converter().KillEvent(*e))
	return nil
}

func (b *Backend) RecordExplosionEvent(e *core.ExplosionEvent) error {
	b.queues.ExplosionEvents.Push(b.converter().ExplosionEvent(*e))
	return nil
}

func (b *Backend) RecordGeneralEvent(e *core.GeneralEvent) error {
	b.queues.GeneralEvents.Push(b.converter().GeneralEvent(*e))
	return nil
}

// RecordPerformance queues a loop load sample. It is only written when the
// database has the performance table.
func (b *Backend) RecordPerformance(p *core.LoopPerformance) error {
	b.queues.Performance.Push(b.converter().LoopPerformance(*p))
	return nil
}

// Pending reports how many rows are waiting in the queues.
func (b *Backend) Pending() int {
	q := b.queues
	return q.Aircraft.Len() + q.Removals.Len() + q.AircraftStates.Len() +
		q.FiredEvents.Len() + q.HitEvents.Len() + q.KillEvents.Len() +
		q.ExplosionEvents.Len() + q.GeneralEvents.Len() + q.Performance.Len()
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items go back on the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}

	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return
	}
	if err := tx.Commit().Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error committing %s: %v", name, err), "ERROR")
		q.Push(items...)
	}
}

// stamp sets the session foreign key on every row.
func stamp[T any](id uint, set func(*T, uint)) func([]T) {
	return func(items []T) {
		for i := range items {
			set(&items[i], id)
		}
	}
}

// Flush drains every queue into the database once. It does nothing in
// queue-only mode or before a session row exists.
func (b *Backend) Flush() {
	db := b.deps.DB
	id := b.SessionID()
	if db == nil || id == 0 {
		return
	}

	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	log := b.deps.LogManager.WriteLog

	// Entities first so states and events can reference them
	writeQueue(db, b.queues.Aircraft, "aircraft", log, stamp(id, func(r *model.Aircraft, v uint) { r.SessionID = v }))
	for _, r := range b.queues.Removals.Drain() {
		err := db.Model(&model.Aircraft{}).
			Where("session_id = ? AND object_id = ?", id, r.objectID).
			Update("leave_tick", r.tick).Error
		if err != nil {
			log(":DB:WRITER:", fmt.Sprintf("Error stamping leave tick for %d: %v", r.objectID, err), "ERROR")
		}
	}

	writeQueue(db, b.queues.AircraftStates, "aircraft states", log, stamp(id, func(r *model.AircraftState, v uint) { r.SessionID = v }))

	writeQueue(db, b.queues.FiredEvents, "fired events", log, stamp(id, func(r *model.FiredEvent, v uint) { r.SessionID = v }))
	writeQueue(db, b.queues.HitEvents, "hit events", log, stamp(id, func(r *model.HitEvent, v uint) { r.SessionID = v }))
	writeQueue(db, b.queues.KillEvents, "kill events", log, stamp(id, func(r *model.KillEvent, v uint) { r.SessionID = v }))
	writeQueue(db, b.queues.ExplosionEvents, "explosion events", log, stamp(id, func(r *model.ExplosionEvent, v uint) { r.SessionID = v }))
	writeQueue(db, b.queues.GeneralEvents, "general events", log, stamp(id, func(r *model.GeneralEvent, v uint) { r.SessionID = v }))

	if db.Migrator().HasTable(&model.LoopPerformance{}) {
		writeQueue(db, b.queues.Performance, "loop performance", log, stamp(id, func(r *model.LoopPerformance, v uint) { r.SessionID = v }))
	} else {
		b.queues.Performance.Clear()
	}
}

// writerLoop periodically drains queues into the DB until Close.
func (b *Backend) writerLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}
