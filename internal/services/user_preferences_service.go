package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bot_admin_backend/internal/models"
	"bot_admin_backend/internal/repositories"
	"bot_admin_backend/pkg/utils"

	"github.com/jellydator/ttlcache/v3"
)

// --- Custom Service Errors for Preferences ---
var (
	ErrUnknownPreference      = errors.New("unknown preference")
	ErrInvalidPreferenceValue = errors.New("invalid value")
)

// DefaultPreferencesCacheTTL bounds how long a loaded snapshot is served.
const DefaultPreferencesCacheTTL = 60 * time.Second

const snapshotCacheKey = "snapshot"

// PreferencesOptions tunes a UserPreferencesService. Zero values select the defaults.
type PreferencesOptions struct {
	CacheTTL time.Duration
	Zones    ZoneSource
	Now      func() time.Time
}

// UserPreferencesService is the single source of truth for display preferences.
type UserPreferencesService interface {
	GetAllPreferences(ctx context.Context) (Snapshot, error)
	GetPreference(ctx context.Context, key string) (interface{}, error)
	SetPreference(ctx context.Context, key string, value interface{}) error
	SetMultiplePreferences(ctx context.Context, values map[string]interface{}) error
	ResetToDefaults(ctx context.Context) error

	GetTimezone(ctx context.Context) (string, error)
	GetDateFormat(ctx context.Context) (string, error)
	GetTimeFormat(ctx context.Context) (string, error)

	FormatDate(ctx context.Context, t time.Time, includeTime bool) (string, error)
	ConvertToUserTimezone(ctx context.Context, t time.Time, fromTZ string) (time.Time, error)
	ToUserTimezone(ctx context.Context, t time.Time) (time.Time, error)
	FormatTimestamp(ctx context.Context, timestampMs int64, tzOverride string, includeTime bool) string
	TodayInUserTimezone(ctx context.Context) (*models.DayRange, error)

	ExportPreferences(ctx context.Context) (Snapshot, error)
	ImportPreferences(ctx context.Context, values map[string]interface{}) error

	GetPreferenceMetadata(ctx context.Context) (map[string]models.PreferenceMetadata, error)
	Timezones() []string
	InvalidateCache()
}

// --- userPreferencesService Implementation ---
type userPreferencesService struct {
	configRepo repositories.ConfigRepository
	db         *sql.DB
	cache      *ttlcache.Cache[string, Snapshot]
	now        func() time.Time

	timezones []string
	zoneIndex map[string]bool
	// systemZones is false when the zone source came back empty; timezone
	// writes are then checked against the embedded database instead.
	systemZones bool
}

// NewUserPreferencesService creates a new instance of UserPreferencesService.
// The timezone catalog is built here and never refreshed.
func NewUserPreferencesService(configRepo repositories.ConfigRepository, db *sql.DB, opts PreferencesOptions) UserPreferencesService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultPreferencesCacheTTL
	}
	if opts.Zones == nil {
		opts.Zones = SystemZoneSource()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	zones, err := opts.Zones()
	if err != nil {
		utils.LogWarn("Failed to list system timezones, using common zones only", map[string]interface{}{"error": err.Error()})
		zones = nil
	}
	catalog := buildTimezoneCatalog(zones)
	index := make(map[string]bool, len(catalog))
	for _, z := range catalog {
		index[z] = true
	}

	// No Start(): expired snapshots are dropped when they are next read.
	cache := ttlcache.New[string, Snapshot](
		ttlcache.WithTTL[string, Snapshot](opts.CacheTTL),
		ttlcache.WithDisableTouchOnHit[string, Snapshot](),
	)

	return &userPreferencesService{
		configRepo:  configRepo,
		db:          db,
		cache:       cache,
		now:         opts.Now,
		timezones:   catalog,
		zoneIndex:   index,
		systemZones: len(zones) > 0,
	}
}

// GetAllPreferences returns every recognized key with its effective value.
// The returned snapshot belongs to the caller.
func (s *userPreferencesService) GetAllPreferences(ctx context.Context) (Snapshot, error) {
	if item := s.cache.Get(snapshotCacheKey); item != nil {
		return item.Value().Clone(), nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(snapshotCacheKey, snap, ttlcache.DefaultTTL)
	return snap.Clone(), nil
}

func (s *userPreferencesService) loadSnapshot(ctx context.Context) (Snapshot, error) {
	entries, err := s.configRepo.ListConfigByPrefix(ctx, PreferenceKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	snap := DefaultPreferences()
	for _, entry := range entries {
		key := strings.TrimPrefix(entry.Key, PreferenceKeyPrefix)
		def, ok := preferenceIndex[key]
		if !ok {
			utils.LogDebug("Ignoring stored preference outside the schema", map[string]interface{}{"key": entry.Key})
			continue
		}
		value, ok := decodeValue(def.Kind, entry.Value)
		if !ok {
			utils.LogWarn("Stored preference does not match its type, keeping it as stored", map[string]interface{}{
				"key":   key,
				"value": entry.Value,
				"type":  def.Kind.String(),
			})
			value = decodeStored(entry.Value)
		}
		snap[key] = value
	}
	return snap, nil
}

// GetPreference returns the effective value of key.
func (s *userPreferencesService) GetPreference(ctx context.Context, key string) (interface{}, error) {
	def, ok := preferenceIndex[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreference, key)
	}
	snap, err := s.GetAllPreferences(ctx)
	if err != nil {
		return nil, err
	}
	if v, ok := snap[key]; ok {
		return v, nil
	}
	return def.Default, nil
}

// validatePreference checks key and value against the schema and returns the
// stored string form.
func (s *userPreferencesService) validatePreference(key string, value interface{}) (string, error) {
	def, ok := preferenceIndex[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPreference, key)
	}
	normalized, ok := normalizeValue(def.Kind, value)
	if !ok {
		return "", fmt.Errorf("%w for %s: expected %s, got %T", ErrInvalidPreferenceValue, key, def.Kind, value)
	}
	if !s.isAllowed(def, normalized) {
		return "", fmt.Errorf("%w for %s: %v", ErrInvalidPreferenceValue, key, normalized)
	}
	return encodeValue(normalized)
}

func (s *userPreferencesService) isAllowed(def preferenceDef, value interface{}) bool {
	if def.Key == PrefTimezone {
		name, _ := value.(string)
		if s.zoneIndex[name] {
			return true
		}
		if s.systemZones {
			return false
		}
		_, ok := resolveLocation(name)
		return ok
	}
	if def.Options == nil {
		return true
	}
	for _, option := range def.Options {
		if option == value {
			return true
		}
	}
	return false
}

// SetPreference validates and persists a single preference.
func (s *userPreferencesService) SetPreference(ctx context.Context, key string, value interface{}) error {
	encoded, err := s.validatePreference(key, value)
	if err != nil {
		return err
	}
	if err := s.configRepo.UpsertConfig(ctx, s.db, PreferenceKeyPrefix+key, encoded); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	s.InvalidateCache()
	utils.LogDebug("Preference updated", map[string]interface{}{"key": key, "value": encoded})
	return nil
}

// SetMultiplePreferences validates every entry before writing any of them and
// then persists the batch in one transaction.
func (s *userPreferencesService) SetMultiplePreferences(ctx context.Context, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	encoded := make(map[string]string, len(values))
	for _, key := range keys {
		v, err := s.validatePreference(key, values[key])
		if err != nil {
			return err
		}
		encoded[key] = v
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if err := s.configRepo.UpsertConfig(ctx, tx, PreferenceKeyPrefix+key, encoded[key]); err != nil {
			return fmt.Errorf("failed to save preference %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences transaction: %w", err)
	}
	s.InvalidateCache()
	utils.LogDebug("Preferences updated", map[string]interface{}{"count": len(keys)})
	return nil
}

// ResetToDefaults removes every stored preference row.
func (s *userPreferencesService) ResetToDefaults(ctx context.Context) error {
	removed, err := s.configRepo.DeleteConfigByPrefix(ctx, s.db, PreferenceKeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to reset preferences: %w", err)
	}
	s.InvalidateCache()
	utils.LogInfo("Preferences reset to defaults", map[string]interface{}{"removed": removed})
	return nil
}

func (s *userPreferencesService) getString(ctx context.Context, key string) (string, error) {
	snap, err := s.GetAllPreferences(ctx)
	if err != nil {
		return "", err
	}
	return snap.String(key), nil
}

func (s *userPreferencesService) GetTimezone(ctx context.Context) (string, error) {
	return s.getString(ctx, PrefTimezone)
}

func (s *userPreferencesService) GetDateFormat(ctx context.Context) (string, error) {
	return s.getString(ctx, PrefDateFormat)
}

func (s *userPreferencesService) GetTimeFormat(ctx context.Context) (string, error) {
	return s.getString(ctx, PrefTimeFormat)
}

// ExportPreferences returns the full snapshot for backup.
func (s *userPreferencesService) ExportPreferences(ctx context.Context) (Snapshot, error) {
	return s.GetAllPreferences(ctx)
}

// ImportPreferences restores a backup produced by ExportPreferences.
func (s *userPreferencesService) ImportPreferences(ctx context.Context, values map[string]interface{}) error {
	return s.SetMultiplePreferences(ctx, values)
}

// GetPreferenceMetadata describes every schema key for configuration UIs.
func (s *userPreferencesService) GetPreferenceMetadata(ctx context.Context) (map[string]models.PreferenceMetadata, error) {
	snap, err := s.GetAllPreferences(ctx)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]models.PreferenceMetadata, len(preferenceSchema))
	for _, def := range preferenceSchema {
		options := def.Options
		if def.Key == PrefTimezone {
			options = make([]interface{}, len(s.timezones))
			for i, z := range s.timezones {
				options[i] = z
			}
		}
		current, ok := snap[def.Key]
		if !ok {
			current = def.Default
		}
		metadata[def.Key] = models.PreferenceMetadata{
			Default:     def.Default,
			Current:     current,
			Type:        def.Kind.String(),
			Options:     options,
			Category:    categorizePreference(def.Key),
			Description: describePreference(def.Key),
		}
	}
	return metadata, nil
}

// Timezones returns a copy of the timezone catalog.
func (s *userPreferencesService) Timezones() []string {
	return append([]string(nil), s.timezones...)
}

// InvalidateCache forces the next read to go to the store.
func (s *userPreferencesService) InvalidateCache() {
	s.cache.Delete(snapshotCacheKey)
}
