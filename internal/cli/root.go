package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tenure/internal/config"
	"github.com/roach88/tenure/internal/ledger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string
	Today      string // YYYY-MM-DD, empty for the system date

	// Key is the storage key, taken from the config file.
	Key string

	// Clock and IDs override the ledger defaults (for testing).
	Clock ledger.Clock
	IDs   ledger.IDGenerator

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tenure CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenure",
		Short: "tenure - work experience ledger",
		Long: `Record the companies you worked for and how long you stayed.

Each record holds a company, a position, a joining date and an optional
leaving date. Durations are computed in years, months and days, and the
overall experience is the sum of all records.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.Today, "today", "", "treat this date (YYYY-MM-DD) as today")

	// Add subcommands
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTotalCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// resolve merges the config file, environment and flags.
// Flags set on the command line win over both.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	path := o.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("db") {
		o.Database = cfg.Database
	}
	if !flags.Changed("verbose") {
		o.Verbose = o.Verbose || cfg.Verbose
	}
	o.Key = cfg.Key

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	if o.Today != "" {
		today, err := ledger.ParseDate(o.Today)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --today", err)
		}
		o.Clock = ledger.FixedClock(today)
	}

	o.logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	return nil
}

// newLogger configures logging based on the verbose flag.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// Logger returns the configured logger, or a default one before resolve ran.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}
