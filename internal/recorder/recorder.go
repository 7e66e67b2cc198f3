// Package recorder turns simulation frames into storage calls: aircraft
// registration, sampled aircraft states and combat events.
package recorder

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/dogfight/internal/cache"
	"github.com/OCAP2/dogfight/internal/combat"
	"github.com/OCAP2/dogfight/internal/dispatcher"
	"github.com/OCAP2/dogfight/internal/logging"
	"github.com/OCAP2/dogfight/internal/session"
	"github.com/OCAP2/dogfight/internal/storage"
	"github.com/OCAP2/dogfight/pkg/core"
)

// DefaultStateEvery samples aircraft states ten times a second at 60 Hz.
const DefaultStateEvery = 6

// ErrTooEarlyForStateAssociation is returned when a state arrives before
// its aircraft is registered.
var ErrTooEarlyForStateAssociation = errors.New("too early for state association")

// ErrNotStarted is returned by End without a preceding Start.
var ErrNotStarted = errors.New("recorder not started")

// Dependencies holds all dependencies for the recorder
type Dependencies struct {
	Backend     storage.Backend
	EntityCache *cache.EntityCache
	Session     *session.Context
	LogManager  *logging.SlogManager
	// StateEvery is the number of ticks between state samples.
	StateEvery int
}

// Stats counts what the recorder has handled since Start.
type Stats struct {
	Frames  uint64
	States  uint64
	Events  uint64
	Dropped uint64
	// Aircraft is the number of registered aircraft still in the session.
	Aircraft int
}

// Recorder feeds one session into a storage backend.
type Recorder struct {
	deps Dependencies

	frames  atomic.Uint64
	states  atomic.Uint64
	events  atomic.Uint64
	dropped atomic.Uint64

	mu      sync.Mutex
	summary core.Summary
	started bool
}

// New creates a recorder. Missing cache and session context are created.
func New(deps Dependencies) *Recorder {
	if deps.EntityCache == nil {
		deps.EntityCache = cache.NewEntityCache()
	}
	if deps.Session == nil {
		deps.Session = session.NewContext()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.StateEvery <= 0 {
		deps.StateEvery = DefaultStateEvery
	}
	return &Recorder{deps: deps}
}

// RegisterHandlers registers all event handlers with the dispatcher.
func (r *Recorder) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Aircraft registration - sync (need to cache before states arrive)
	d.Register(core.EventSpawn, r.handleSpawn, dispatcher.Logged())
	d.Register(core.EventRemove, r.handleRemove, dispatcher.Logged())

	// Combat events - buffered
	d.Register(core.EventFired, r.handleFired, dispatcher.Buffered(5000), dispatcher.Logged())
	d.Register(core.EventHit, r.handleHit, dispatcher.Buffered(2000), dispatcher.Logged())
	d.Register(core.EventKill, r.handleKill, dispatcher.Buffered(2000), dispatcher.Logged())
	d.Register(core.EventExplosion, r.handleExplosion, dispatcher.Buffered(2000), dispatcher.Logged())

	// General events - buffered
	for _, kind := range []core.EventKind{core.EventBlast, core.EventCrash, core.EventReset, core.EventLevel} {
		d.Register(kind, r.handleGeneral, dispatcher.Buffered(1000), dispatcher.Logged())
	}
}

// Start begins recording s.
func (r *Recorder) Start(s *core.Session) error {
	r.deps.EntityCache.Reset()
	r.deps.Session.SetSession(s)
	if err := r.deps.Backend.StartSession(s); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	r.frames.Store(0)
	r.states.Store(0)
	r.events.Store(0)
	r.dropped.Store(0)

	r.mu.Lock()
	r.summary = core.Summary{MaxLevel: 1}
	r.started = true
	r.mu.Unlock()

	r.deps.LogManager.WriteLog("recorder:Start", fmt.Sprintf("Recording session %q (%s)", s.Name, s.ID), "INFO")
	return nil
}

// Frame records one tick. Events go through d; states are sampled every
// StateEvery ticks and written directly.
func (r *Recorder) Frame(d *dispatcher.Dispatcher, f combat.Frame) {
	r.frames.Add(1)
	r.deps.Session.Advance(f.Tick, f.Level)

	r.mu.Lock()
	tallyFrame(&r.summary, f)
	r.deps.Session.SetSummary(r.summary)
	r.mu.Unlock()

	for _, e := range f.Events {
		if err := d.Dispatch(e); err != nil {
			r.dropped.Add(1)
			continue
		}
		r.events.Add(1)
	}

	if f.Tick%uint64(r.deps.StateEvery) != 0 {
		return
	}
	for i := range f.States {
		if err := r.recordState(&f.States[i]); err != nil && !errors.Is(err, ErrTooEarlyForStateAssociation) {
			r.deps.LogManager.WriteLog("recorder:Frame", fmt.Sprintf("Failed to record state: %v", err), "ERROR")
		}
	}
}

// tallyFrame folds one frame into the running summary.
func tallyFrame(s *core.Summary, f combat.Frame) {
	s.Ticks = f.Tick
	s.Duration = f.Elapsed
	if f.Score > s.Score {
		s.Score = f.Score
	}
	if f.Level > s.MaxLevel {
		s.MaxLevel = f.Level
	}
	for _, e := range f.Events {
		switch e.Kind {
		case core.EventKill:
			s.Kills++
		case core.EventCrash:
			s.Crashes++
		}
	}
}

func (r *Recorder) recordState(s *core.AircraftState) error {
	r.deps.EntityCache.Lock()
	_, known := r.deps.EntityCache.Aircraft[s.AircraftID]
	removed := r.deps.EntityCache.Removed[s.AircraftID]
	r.deps.EntityCache.Unlock()
	if !known || removed {
		return ErrTooEarlyForStateAssociation
	}

	if err := r.deps.Backend.RecordAircraftState(s); err != nil {
		return err
	}
	r.states.Add(1)
	return nil
}

// End stamps the summary with end and closes the session on the backend.
// Call it after the dispatcher has drained.
func (r *Recorder) End(end time.Time) (core.Summary, error) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return core.Summary{}, ErrNotStarted
	}
	r.started = false
	r.summary.EndTime = end
	sum := r.summary
	r.mu.Unlock()

	r.deps.Session.SetSummary(sum)
	if err := r.deps.Backend.EndSession(sum); err != nil {
		return sum, fmt.Errorf("failed to end session: %w", err)
	}
	r.deps.LogManager.WriteLog("recorder:End",
		fmt.Sprintf("Session ended after %d ticks: score %d, kills %d, crashes %d", sum.Ticks, sum.Score, sum.Kills, sum.Crashes), "INFO")
	return sum, nil
}

// Stats returns the recorder counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Frames:  r.frames.Load(),
		States:  r.states.Load(),
		Events:  r.events.Load(),
		Dropped: r.dropped.Load(),

		Aircraft: r.deps.EntityCache.Active(),
	}
}
