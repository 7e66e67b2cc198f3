// Package postgres implements the storage.Backend interface on PostgreSQL
// through the GORM backend. When the server cannot be reached it records
// into in-memory SQLite and dumps that to disk instead.
package postgres

import (
	"fmt"
	"time"

	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/internal/database"
	"github.com/OCAP2/dogfight/internal/logging"
	gormstorage "github.com/OCAP2/dogfight/internal/storage/gorm"
	"github.com/OCAP2/dogfight/pkg/core"
	"github.com/rs/zerolog"
)

// Backend wraps the GORM backend with connection management.
type Backend struct {
	*gormstorage.Backend
	cfg      config.PostgresConfig
	fallback string
	manager  *database.Manager
	log      *logging.SlogManager
}

// New prepares a postgres backend. fallbackPath is where the local SQLite
// database is dumped if postgres is unavailable.
func New(cfg config.PostgresConfig, fallbackPath string, logManager *logging.SlogManager, dbLog zerolog.Logger) *Backend {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}
	return &Backend{
		cfg:      cfg,
		fallback: fallbackPath,
		manager:  database.NewManager(dbLog),
		log:      logManager,
	}
}

// Init connects, migrates and starts the DB writer.
func (b *Backend) Init() error {
	if err := b.manager.Connect(b.cfg); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if err := b.manager.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.manager.SqliteFilePath = b.fallback

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:            b.manager.DB,
		LogManager:    b.log,
		FlushInterval: b.cfg.FlushInterval,
	})
	return b.Backend.Init()
}

// Local reports whether recording fell back to SQLite.
func (b *Backend) Local() bool { return b.manager.ShouldSaveLocal }

// EndSession writes the summary. In fallback mode it also dumps the local
// database to disk.
func (b *Backend) EndSession(sum core.Summary) error {
	if b.Backend == nil {
		return gormstorage.ErrNoSession
	}
	if err := b.Backend.EndSession(sum); err != nil {
		return err
	}
	if !b.manager.ShouldSaveLocal || b.fallback == "" {
		return nil
	}
	start := time.Now()
	if err := b.manager.DumpMemoryToDisk(); err != nil {
		return fmt.Errorf("fallback dump: %w", err)
	}
	b.log.WriteLog("postgres:EndSession", fmt.Sprintf("Postgres unavailable, dumped local DB to %s in %s", b.fallback, time.Since(start)), "WARN")
	return nil
}

// Close stops the writer and releases the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.manager.SqlDB != nil && !b.manager.ShouldSaveLocal {
		return b.manager.SqlDB.Close()
	}
	return nil
}
