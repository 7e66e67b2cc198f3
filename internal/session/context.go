package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/OCAP2/dogfight/pkg/core"
)

// Context holds the current session and the live counters other goroutines
// read for logging and status reports.
type Context struct {
	mu      sync.RWMutex
	session *core.Session
	summary core.Summary

	tick  atomic.Uint64
	level atomic.Int64
}

// NewContext creates a Context with no session started.
func NewContext() *Context {
	c := &Context{session: &core.Session{Name: "No session started"}}
	c.level.Store(1)
	return c
}

// New builds a session with a fresh ID. An empty name falls back to a
// timestamped one.
func New(name, tag string, start time.Time) *core.Session {
	if name == "" {
		name = "Dogfight " + start.UTC().Format("2006-01-02 15:04:05")
	}
	return &core.Session{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: start,
		Tag:       tag,
	}
}

// GetSession returns the current session.
func (c *Context) GetSession() *core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the current session and resets the live counters.
func (c *Context) SetSession(s *core.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.summary = core.Summary{}
	c.tick.Store(0)
	c.level.Store(1)
}

// Active reports whether a started session is set.
func (c *Context) Active() bool {
	return c.GetSession().ID != ""
}

// Advance records the latest tick and difficulty level.
func (c *Context) Advance(tick uint64, level int) {
	c.tick.Store(tick)
	c.level.Store(int64(level))
}

// Tick returns the latest recorded tick.
func (c *Context) Tick() uint64 { return c.tick.Load() }

// Level returns the latest recorded difficulty level.
func (c *Context) Level() int { return int(c.level.Load()) }

// SetSummary stores the running tally.
func (c *Context) SetSummary(s core.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = s
}

// Summary returns the running tally.
func (c *Context) Summary() core.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary
}
