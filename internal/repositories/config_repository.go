package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"bot_admin_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// Dialect selects the placeholder syntax used when talking to the database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// rebind rewrites '?' placeholders into $N for Postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ConfigRepository defines the interface for bot_config key-value operations.
type ConfigRepository interface {
	GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error)
	ListConfig(ctx context.Context) ([]models.ConfigEntry, error)
	ListConfigByPrefix(ctx context.Context, prefix string) ([]models.ConfigEntry, error)
	UpsertConfig(ctx context.Context, executor SQLExecutor, key, value string) error
	DeleteConfig(ctx context.Context, executor SQLExecutor, key string) error
	DeleteConfigByPrefix(ctx context.Context, executor SQLExecutor, prefix string) (int64, error)
}

type configRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewConfigRepository creates a new instance of ConfigRepository.
func NewConfigRepository(db *sql.DB, dialect Dialect) ConfigRepository {
	return &configRepository{db: db, dialect: dialect}
}

func scanConfigEntry(s scanner) (models.ConfigEntry, error) {
	var entry models.ConfigEntry
	var value sql.NullString
	var updatedAt sql.NullTime
	if err := s.Scan(&entry.Key, &value, &updatedAt); err != nil {
		return entry, err
	}
	entry.Value = value.String
	if updatedAt.Valid {
		entry.UpdatedAt = updatedAt.Time
	}
	return entry, nil
}

func wrapDBError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// GetConfig retrieves a single configuration row by key.
func (r *configRepository) GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error) {
	query := r.dialect.rebind(`SELECT key, value, updated_at FROM bot_config WHERE key = ?`)
	entry, err := scanConfigEntry(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err, "getting config "+key)
	}
	return &entry, nil
}

// ListConfig returns every configuration row ordered by key.
func (r *configRepository) ListConfig(ctx context.Context) ([]models.ConfigEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM bot_config ORDER BY key`)
	if err != nil {
		return nil, wrapDBError(err, "listing config")
	}
	return collectConfigEntries(rows)
}

// ListConfigByPrefix returns the rows whose key starts with prefix.
// The comparison is case-sensitive on every dialect, unlike LIKE on SQLite.
func (r *configRepository) ListConfigByPrefix(ctx context.Context, prefix string) ([]models.ConfigEntry, error) {
	query := r.dialect.rebind(`SELECT key, value, updated_at FROM bot_config WHERE substr(key, 1, ?) = ? ORDER BY key`)
	rows, err := r.db.QueryContext(ctx, query, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, wrapDBError(err, "listing config with prefix "+prefix)
	}
	return collectConfigEntries(rows)
}

func collectConfigEntries(rows *sql.Rows) ([]models.ConfigEntry, error) {
	defer rows.Close()

	entries := []models.ConfigEntry{}
	for rows.Next() {
		entry, err := scanConfigEntry(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning config row")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating config rows")
	}
	return entries, nil
}

// UpsertConfig inserts or replaces a configuration row and stamps updated_at.
func (r *configRepository) UpsertConfig(ctx context.Context, executor SQLExecutor, key, value string) error {
	query := r.dialect.rebind(`
	    INSERT INTO bot_config (key, value, updated_at)
	    VALUES (?, ?, ?)
	    ON CONFLICT (key)
	    DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`)

	if _, err := executor.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return wrapDBError(err, "upserting config "+key)
	}
	return nil
}

// DeleteConfig removes a configuration row by key.
func (r *configRepository) DeleteConfig(ctx context.Context, executor SQLExecutor, key string) error {
	query := r.dialect.rebind(`DELETE FROM bot_config WHERE key = ?`)
	result, err := executor.ExecContext(ctx, query, key)
	if err != nil {
		return wrapDBError(err, "deleting config "+key)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError(err, "getting rows affected for deleting config "+key)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConfigByPrefix removes every row whose key starts with prefix in one statement.
func (r *configRepository) DeleteConfigByPrefix(ctx context.Context, executor SQLExecutor, prefix string) (int64, error) {
	query := r.dialect.rebind(`DELETE FROM bot_config WHERE substr(key, 1, ?) = ?`)
	result, err := executor.ExecContext(ctx, query, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return 0, wrapDBError(err, "deleting config with prefix "+prefix)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrapDBError(err, "getting rows affected for prefix delete")
	}
	return rowsAffected, nil
}
