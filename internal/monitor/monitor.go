package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/OCAP2/dogfight/internal/combat"
	"github.com/OCAP2/dogfight/internal/influx"
	"github.com/OCAP2/dogfight/internal/logging"
	"github.com/OCAP2/dogfight/internal/session"
	"github.com/OCAP2/dogfight/internal/storage"
	"github.com/OCAP2/dogfight/pkg/core"
)

// DefaultInterval is how often a performance sample is taken.
const DefaultInterval = time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager *logging.SlogManager
	Session    *session.Context
	// Influx and Recorder are optional sinks.
	Influx   *influx.Manager
	Recorder storage.PerformanceRecorder
	// StatusFile is rewritten with the latest sample when set.
	StatusFile string
	Interval   time.Duration
}

// Service samples loop performance
type Service struct {
	deps Dependencies

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}

	statMu    sync.Mutex
	ticks     int
	dtSum     float64
	lastFrame combat.Frame
	lastAt    time.Time
	latest    core.LoopPerformance
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Session == nil {
		deps.Session = session.NewContext()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
		lastAt:   time.Now(),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Observe folds one frame into the current sample window. It is called
// from the loop goroutine.
func (s *Service) Observe(f combat.Frame) {
	s.statMu.Lock()
	defer s.statMu.Unlock()
	s.ticks++
	s.dtSum += f.Dt
	s.lastFrame = f
}

// Sample closes the current window at now and returns its performance.
func (s *Service) Sample(now time.Time) core.LoopPerformance {
	s.statMu.Lock()
	defer s.statMu.Unlock()

	p := core.LoopPerformance{
		Time:        now,
		Enemies:     s.lastFrame.Enemies,
		Projectiles: s.lastFrame.Projectiles + s.lastFrame.Rounds,
		Explosions:  s.lastFrame.Explosions,
		Debris:      s.lastFrame.Debris,
		Dropped:     s.lastFrame.Dropped,
	}
	if elapsed := now.Sub(s.lastAt).Seconds(); elapsed > 0 {
		p.TickRate = float64(s.ticks) / elapsed
	}
	if s.ticks > 0 {
		p.TickMs = s.dtSum / float64(s.ticks) * 1000
	}

	s.ticks = 0
	s.dtSum = 0
	s.lastAt = now
	s.latest = p
	return p
}

// Latest returns the last sample taken.
func (s *Service) Latest() core.LoopPerformance {
	s.statMu.Lock()
	defer s.statMu.Unlock()
	return s.latest
}

// GetProgramStatus renders p for the status file.
func GetProgramStatus(sess *core.Session, p core.LoopPerformance) []string {
	out := []string{fmt.Sprintf("session: %s (%s)", sess.Name, sess.ID)}
	perf, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		perf = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	return append(out, string(perf))
}

// Report takes a sample at now and sends it to every configured sink.
// Nothing is reported while no session is active.
func (s *Service) Report(now time.Time) (core.LoopPerformance, bool) {
	p := s.Sample(now)
	sess := s.deps.Session.GetSession()
	if !s.deps.Session.Active() {
		return p, false
	}

	logger := s.deps.LogManager.Logger()
	logger.Debug("Loop performance",
		"tickRate", p.TickRate,
		"tickMs", p.TickMs,
		"enemies", p.Enemies,
		"projectiles", p.Projectiles,
		"dropped", p.Dropped)

	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePerformance(p, sess.ID); err != nil {
			logger.Error("Error writing performance to InfluxDB", "error", err)
		}
	}
	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordPerformance(&p); err != nil {
			logger.Error("Error recording performance", "error", err)
		}
	}
	if s.deps.StatusFile != "" {
		if err := writeStatus(s.deps.StatusFile, GetProgramStatus(sess, p)); err != nil {
			logger.Error("Error writing status file", "error", err)
		}
	}
	return p, true
}

func writeStatus(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	s.statMu.Lock()
	s.lastAt = time.Now()
	s.statMu.Unlock()

	go func() {
		defer close(done)

		s.deps.LogManager.Logger().Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				s.Report(now)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
