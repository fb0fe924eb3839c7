package models

import "time"

// ConfigEntry is a row of the bot_config key-value table.
type ConfigEntry struct {
	Key       string    `json:"key" db:"key" binding:"required"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
