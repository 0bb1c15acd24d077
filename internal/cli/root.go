package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigPath string
	DB         string // DSN, overrides config
	Driver     string
	Schema     string
	Dialect    string
	Tables     string // YAML table descriptors for offline translation

	User    string
	Message string

	// Config is resolved in PersistentPreRunE.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the querydoc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "querydoc",
		Short: "querydoc - JSON query documents to SQL",
		Long: `Translate declarative JSON (or YAML) query documents into parameterized
SQL for PostgreSQL or SQLite, and optionally run them against a database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := resolveConfig(opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			configureLogging(cmd, opts)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database DSN (sqlite path or postgres connection string)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|postgres)")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "default schema")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect when no database is used (postgres|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.Tables, "tables", "", "YAML file of table descriptors used instead of a database")
	cmd.PersistentFlags().StringVar(&opts.User, "user", "", "acting user recorded in insert audit columns")
	cmd.PersistentFlags().StringVar(&opts.Message, "message", "", "audit message recorded in insert audit columns")

	// Add subcommands
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewDDLCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveConfig loads --config and applies flag overrides.
func resolveConfig(opts *RootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.DB != "" {
		cfg.DSN = opts.DB
	}
	if opts.Schema != "" {
		cfg.DefaultSchema = opts.Schema
	}
	if opts.Dialect != "" {
		cfg.Dialect = opts.Dialect
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureLogging installs a text slog handler on stderr.
func configureLogging(cmd *cobra.Command, opts *RootOptions) {
	level, _ := opts.Config.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
