// internal/storage/factory.go
package storage

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/internal/logging"
	"github.com/OCAP2/dogfight/internal/storage/memory"
	"github.com/OCAP2/dogfight/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/dogfight/internal/storage/sqlite"
	"github.com/OCAP2/dogfight/internal/storage/websocket"
)

// ErrUnknownBackend is returned for an unrecognised storage type.
var ErrUnknownBackend = errors.New("unknown storage type")

// Dependencies are handed to backends that log.
type Dependencies struct {
	LogManager *logging.SlogManager
	DBLogger   zerolog.Logger
}

var (
	_ Backend             = (*memory.Backend)(nil)
	_ Uploadable          = (*memory.Backend)(nil)
	_ Backend             = (*postgres.Backend)(nil)
	_ PerformanceRecorder = (*postgres.Backend)(nil)
	_ Backend             = (*sqlitestorage.Backend)(nil)
	_ Backend             = (*websocket.Backend)(nil)
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}

	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.Postgres, cfg.SQLite.DumpPath, deps.LogManager, deps.DBLogger), nil
	case "sqlite":
		b, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     cfg.SQLite.DumpPath,
		}, deps.LogManager)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "websocket":
		b, err := websocket.New(websocket.Config{
			URL:    cfg.WebSocket.URL,
			Secret: cfg.WebSocket.Secret,
		}, deps.LogManager.Logger())
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Type)
	}
}
