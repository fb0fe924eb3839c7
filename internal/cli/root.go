// Package cli implements prefsctl, a command-line client of the preferences service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"bot_admin_backend/internal/config"
	"bot_admin_backend/internal/database"
	"bot_admin_backend/internal/repositories"
	"bot_admin_backend/internal/services"
	"bot_admin_backend/pkg/utils"

	"github.com/spf13/cobra"
)

// ServiceFactory opens the preferences service for one command run.
// The returned close function releases whatever the service holds.
type ServiceFactory func(ctx context.Context) (services.UserPreferencesService, func() error, error)

// DatabaseServiceFactory opens the database named by the environment and
// applies the schema before building the service.
func DatabaseServiceFactory(ctx context.Context) (services.UserPreferencesService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	utils.InitLoggerWithWriter(io.Discard, cfg.LogLevel, cfg.LogFormat)

	db, dialect, err := database.OpenAndMigrate(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewUserPreferencesService(repositories.NewConfigRepository(db, dialect), db, services.PreferencesOptions{
		CacheTTL: cfg.PreferencesCacheTTL,
	})
	return svc, db.Close, nil
}

type commandEnv struct {
	factory ServiceFactory
}

// withService runs fn against a freshly opened service.
func (e *commandEnv) withService(cmd *cobra.Command, fn func(svc services.UserPreferencesService) error) error {
	svc, closeFn, err := e.factory(cmd.Context())
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}
	defer closeFn()
	return fn(svc)
}

// NewRootCommand builds the prefsctl command tree.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	env := &commandEnv{factory: factory}

	root := &cobra.Command{
		Use:   "prefsctl",
		Short: "Inspect and change bot admin display preferences",
		Long: `prefsctl reads and writes the display preferences stored in the
bot_config table, using the same validation as the admin API.

The database is selected with DATABASE_DRIVER and DATABASE_URL
(a .env file in the working directory is read first).

Examples:
  prefsctl get                          # Show every preference
  prefsctl get timezone                 # Show one preference
  prefsctl set time_format 12h          # Change a preference
  prefsctl export > prefs.json          # Back up
  prefsctl import prefs.json            # Restore`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newGetCommand(env),
		newSetCommand(env),
		newResetCommand(env),
		newExportCommand(env),
		newImportCommand(env),
		newMetadataCommand(env),
		newTimezonesCommand(env),
		newFormatCommand(env),
	)
	return root
}

// Execute runs prefsctl against the configured database.
func Execute(ctx context.Context) error {
	return NewRootCommand(DatabaseServiceFactory).ExecuteContext(ctx)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
