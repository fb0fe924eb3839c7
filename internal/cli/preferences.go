package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bot_admin_backend/internal/services"

	"github.com/spf13/cobra"
)

func newGetCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show all preferences or a single one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					snap, err := svc.GetAllPreferences(cmd.Context())
					if err != nil {
						return err
					}
					for _, key := range services.PreferenceKeys() {
						fmt.Fprintf(out, "%s = %v\n", key, snap[key])
					}
					return nil
				}
				value, err := svc.GetPreference(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, value)
				return nil
			})
		},
	}
}

func newSetCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: `Change a preference. The value is read according to the key's type:
true/false for switches, digits for numbers, text otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := services.ParsePreferenceInput(args[0], args[1])
			if err != nil {
				return err
			}
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				if err := svc.SetPreference(cmd.Context(), args[0], value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", args[0], value)
				return nil
			})
		},
	}
}

func newResetCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore every preference to its default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				if err := svc.ResetToDefaults(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Preferences reset to defaults")
				return nil
			})
		},
	}
}

func newExportCommand(env *commandEnv) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all preferences as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				snap, err := svc.ExportPreferences(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return writeJSON(cmd.OutOrStdout(), snap)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				if err := writeJSON(f, snap); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newImportCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Restore preferences from a JSON export",
		Long: `Restore preferences from a JSON object of key/value pairs.
Every entry is validated before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readPreferenceFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				if err := svc.ImportPreferences(cmd.Context(), values); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d preferences\n", len(values))
				return nil
			})
		},
	}
}

func readPreferenceFile(stdin io.Reader, path string) (map[string]interface{}, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	var values map[string]interface{}
	if err := json.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("reading preferences JSON: %w", err)
	}
	return values, nil
}

func newMetadataCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Show defaults, allowed values and descriptions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				metadata, err := svc.GetPreferenceMetadata(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), metadata)
			})
		},
	}
}

func newTimezonesCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "timezones",
		Short: "List the timezones accepted by the timezone preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				out := cmd.OutOrStdout()
				for _, z := range svc.Timezones() {
					fmt.Fprintln(out, z)
				}
				return nil
			})
		},
	}
}

func newFormatCommand(env *commandEnv) *cobra.Command {
	var (
		tz       string
		dateOnly bool
	)
	cmd := &cobra.Command{
		Use:   "format <rfc3339|epoch-ms>",
		Short: "Render a timestamp with the configured date and time formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := parseTimestampArg(args[0])
			if err != nil {
				return err
			}
			return env.withService(cmd, func(svc services.UserPreferencesService) error {
				fmt.Fprintln(cmd.OutOrStdout(), svc.FormatTimestamp(cmd.Context(), ms, tz, !dateOnly))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tz, "tz", "", "timezone to render in instead of the configured one")
	cmd.Flags().BoolVar(&dateOnly, "date-only", false, "omit the time of day")
	return cmd
}

func parseTimestampArg(arg string) (int64, error) {
	arg = strings.TrimSpace(arg)
	if ms, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, arg)
	if err != nil {
		return 0, fmt.Errorf("%q is neither epoch milliseconds nor an RFC 3339 time", arg)
	}
	return t.UnixMilli(), nil
}
