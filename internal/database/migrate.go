package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"bot_admin_backend/internal/repositories"
	"bot_admin_backend/pkg/utils"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

const migrationsTable = "schema_migrations_bot_admin"

// ApplySchema runs all pending up migrations for the dialect.
// The driver instances are not closed because that would close db.
func ApplySchema(db *sql.DB, dialect repositories.Dialect) error {
	var (
		dir    string
		dbDrv  migratedb.Driver
		err    error
		dbName string
	)
	switch dialect {
	case repositories.DialectPostgres:
		dir, dbName = "migrations/postgres", "postgres"
		dbDrv, err = migratepostgres.WithInstance(db, &migratepostgres.Config{MigrationsTable: migrationsTable})
	case repositories.DialectSQLite:
		dir, dbName = "migrations/sqlite", "sqlite"
		dbDrv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migration driver: %w", dbName, err)
	}

	sourceDriver, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("failed to create iofs driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbName, dbDrv)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	_, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if dirty {
		return errors.New("schema migration is dirty, please fix it before proceeding")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	version, _, _ := m.Version()
	utils.LogInfo("Database schema ready", map[string]interface{}{"dialect": string(dialect), "version": version})
	return nil
}
