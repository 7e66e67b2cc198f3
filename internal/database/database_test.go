package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/internal/config"
	"github.com/OCAP2/dogfight/internal/model"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     "5432",
		Username: "pilot",
		Password: "secret",
		Database: "dogfight",
	})
	assert.Equal(t, "host=db port=5432 user=pilot password=secret dbname=dogfight sslmode=disable", dsn)
}

func TestOpenSQLite_FileAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range model.DatabaseModelsSQLite {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.False(t, db.Migrator().HasTable(&model.LoopPerformance{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&model.Session{SessionUID: "dump-test", Name: "Dump"}).Error)

	path := filepath.Join(t.TempDir(), "nested", "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	disk, err := OpenSQLite(path)
	require.NoError(t, err)
	var s model.Session
	require.NoError(t, disk.Where("session_uid = ?", "dump-test").First(&s).Error)
	assert.Equal(t, "Dump", s.Name)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)
	assert.ErrorIs(t, DumpMemoryDBToDisk(db, ""), ErrNoDumpPath)
}

func TestManager_ConnectFallsBackToSQLite(t *testing.T) {
	m := NewManager(zerolog.Nop())
	err := m.Connect(config.PostgresConfig{Host: "127.0.0.1", Port: "1", Database: "none"})
	require.NoError(t, err)

	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	assert.Equal(t, "sqlite", m.DB.Name())
	require.NoError(t, m.Setup())

	m.SqliteFilePath = filepath.Join(t.TempDir(), "fallback.db")
	require.NoError(t, m.DumpMemoryToDisk())
	assert.FileExists(t, m.SqliteFilePath)
}

func TestManager_SetupWithoutConnect(t *testing.T) {
	assert.Error(t, NewManager(zerolog.Nop()).Setup())
}

func TestDumpPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.db"), 0o755))

	paths, err := DumpPaths(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")}, paths)

	_, err = DumpPaths(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
