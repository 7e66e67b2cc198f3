package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/internal/database"
	"github.com/OCAP2/dogfight/internal/model"
	"github.com/OCAP2/dogfight/pkg/core"
)

func newBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(t.TempDir(), "live.db")
	}
	b, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestEndSession_DumpsToDisk(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "out", "session.db")
	b := newBackend(t, Config{DumpPath: dump})

	require.NoError(t, b.StartSession(&core.Session{ID: "s-1", Name: "Dumped", StartTime: time.Now()}))
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1, Name: "Player", JoinTime: time.Now()}))
	require.NoError(t, b.EndSession(core.Summary{Ticks: 10}))

	db, err := database.OpenSQLite(dump)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&model.Aircraft{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDump_NoPathIsNoop(t *testing.T) {
	b := newBackend(t, Config{})
	assert.NoError(t, b.Dump())
}

func TestDumpLoop(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "periodic.db")
	b := newBackend(t, Config{DumpPath: dump, DumpInterval: 20 * time.Millisecond})
	require.NoError(t, b.StartSession(&core.Session{ID: "s-2", StartTime: time.Now()}))

	assert.Eventually(t, func() bool {
		return fileExists(dump)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestClose_Idempotent(t *testing.T) {
	b, err := New(Config{DSN: filepath.Join(t.TempDir(), "c.db"), DumpPath: filepath.Join(t.TempDir(), "d.db"), DumpInterval: time.Hour}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
