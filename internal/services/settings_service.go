package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bot_admin_backend/internal/models"
	"bot_admin_backend/internal/repositories"
)

// --- Custom Service Errors for Settings ---
var (
	ErrSettingNotFound   = errors.New("setting not found")
	ErrSettingValidation = errors.New("setting validation error")
	ErrReservedKey       = errors.New("key is reserved for preferences")
)

// SettingsService manages the generic bot_config rows that are not preferences.
type SettingsService interface {
	ListSettings(ctx context.Context) ([]models.ConfigEntry, error)
	GetSetting(ctx context.Context, key string) (*models.ConfigEntry, error)
	SetSetting(ctx context.Context, key, value string) (*models.ConfigEntry, error)
	DeleteSetting(ctx context.Context, key string) error
}

type settingsService struct {
	configRepo repositories.ConfigRepository
	db         *sql.DB
}

// NewSettingsService creates a new instance of SettingsService.
func NewSettingsService(configRepo repositories.ConfigRepository, db *sql.DB) SettingsService {
	return &settingsService{configRepo: configRepo, db: db}
}

func checkSettingKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrSettingValidation)
	}
	if strings.HasPrefix(key, PreferenceKeyPrefix) {
		return fmt.Errorf("%w: %s", ErrReservedKey, key)
	}
	return nil
}

// ListSettings returns every configuration row outside the preference prefix.
func (s *settingsService) ListSettings(ctx context.Context) ([]models.ConfigEntry, error) {
	entries, err := s.configRepo.ListConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	settings := make([]models.ConfigEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Key, PreferenceKeyPrefix) {
			continue
		}
		settings = append(settings, entry)
	}
	return settings, nil
}

func (s *settingsService) GetSetting(ctx context.Context, key string) (*models.ConfigEntry, error) {
	if err := checkSettingKey(key); err != nil {
		return nil, err
	}
	entry, err := s.configRepo.GetConfig(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return entry, nil
}

// SetSetting upserts a row and returns it as stored.
func (s *settingsService) SetSetting(ctx context.Context, key, value string) (*models.ConfigEntry, error) {
	if err := checkSettingKey(key); err != nil {
		return nil, err
	}
	if err := s.configRepo.UpsertConfig(ctx, s.db, key, value); err != nil {
		return nil, fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return s.GetSetting(ctx, key)
}

func (s *settingsService) DeleteSetting(ctx context.Context, key string) error {
	if err := checkSettingKey(key); err != nil {
		return err
	}
	if err := s.configRepo.DeleteConfig(ctx, s.db, key); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
