package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of the server and the CLI.
type Config struct {
	Port                string        `mapstructure:"port"`
	DatabaseDriver      string        `mapstructure:"database_driver"`
	DatabaseURL         string        `mapstructure:"database_url"`
	CORSAllowedOrigins  []string      `mapstructure:"cors_allowed_origins"`
	JWTSecret           string        `mapstructure:"jwt_secret"`
	JWTExpiration       time.Duration `mapstructure:"jwt_expiration"`
	AdminUsername       string        `mapstructure:"admin_username"`
	AdminPasswordHash   string        `mapstructure:"admin_password_hash"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFormat           string        `mapstructure:"log_format"`
	PreferencesCacheTTL time.Duration `mapstructure:"preferences_cache_ttl"`
}

var defaults = map[string]interface{}{
	"port":                  "8080",
	"database_driver":       "sqlite",
	"database_url":          "bot_admin.db",
	"cors_allowed_origins":  "http://localhost:3000,http://localhost:3001",
	"jwt_secret":            "",
	"jwt_expiration":        "24h",
	"admin_username":        "admin",
	"admin_password_hash":   "",
	"log_level":             "info",
	"log_format":            "console",
	"preferences_cache_ttl": "60s",
}

// Load reads an optional .env file and then the environment.
// Keys map to upper-case variables, e.g. "database_url" is DATABASE_URL.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "postgresql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	if c.AdminPasswordHash != "" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}
	if c.PreferencesCacheTTL <= 0 {
		return fmt.Errorf("PREFERENCES_CACHE_TTL must be positive, got %s", c.PreferencesCacheTTL)
	}
	return nil
}

// AuthEnabled reports whether the API requires an admin token.
func (c *Config) AuthEnabled() bool {
	return c.AdminPasswordHash != ""
}

func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
