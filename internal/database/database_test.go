package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.db")

	db, dialect, err := OpenAndMigrate("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "sqlite", string(dialect))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bot_config`).Scan(&count))
	assert.Zero(t, count)
}

func TestOpenAndMigrateRejectsDirtySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirty.db")

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE ` + migrationsTable + ` (version uint64, dirty bool)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO `+migrationsTable+` (version, dirty) VALUES (?, ?)`, 1, true)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, dialect, err := OpenAndMigrate("sqlite", path)
	assert.ErrorContains(t, err, "dirty")
	assert.Nil(t, db)
	assert.Empty(t, dialect)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open("mysql", "bot.db")
	assert.ErrorContains(t, err, "unsupported database driver")

	_, _, err = Open("sqlite", "")
	assert.Error(t, err)
}
