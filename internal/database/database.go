package database

import (
	"database/sql"
	"fmt"

	"bot_admin_backend/internal/repositories"
	"bot_admin_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Open opens and verifies a database connection for the given driver
// ("postgres" or "sqlite") and returns the matching SQL dialect.
func Open(driver, dsn string) (*sql.DB, repositories.Dialect, error) {
	var dialect repositories.Dialect
	switch driver {
	case "postgres", "postgresql":
		driver = "postgres"
		dialect = repositories.DialectPostgres
	case "sqlite", "sqlite3":
		driver = "sqlite"
		dialect = repositories.DialectSQLite
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", driver)
	}
	if dsn == "" {
		return nil, "", fmt.Errorf("database URL required for driver %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("error opening database: %w", err)
	}

	// SQLite allows a single writer; an in-memory database also lives on one connection.
	if dialect == repositories.DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("error connecting to database: %w", err)
	}

	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"driver": driver})
	return db, dialect, nil
}

// OpenAndMigrate opens the database and applies the schema. The connection
// is closed again when the schema cannot be applied.
func OpenAndMigrate(driver, dsn string) (*sql.DB, repositories.Dialect, error) {
	db, dialect, err := Open(driver, dsn)
	if err != nil {
		return nil, "", err
	}
	if err := ApplySchema(db, dialect); err != nil {
		db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}
