package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tenure/internal/config"
)

// ConfigInitOptions holds flags for the config init command.
type ConfigInitOptions struct {
	*RootOptions
	Force bool
}

// configInitView is the JSON form of the config init command.
type configInitView struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Args:  cobra.NoArgs,
		// The file being managed may be missing or broken, so it is not loaded.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(rootOpts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", rootOpts.Format, ValidFormats))
			}
			rootOpts.logger = newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)
			return nil
		},
	}

	cmd.AddCommand(NewConfigInitCommand(rootOpts))

	return cmd
}

// NewConfigInitCommand creates the config init command.
func NewConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigInitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Long: `Write a configuration file with the default settings.

The file goes to --config, or to ` + config.DefaultPath() + ` when unset.
--db and --format given on the command line are written instead of the
defaults. An existing file is kept unless --force is set.

Examples:
  tenure config init
  tenure --db ~/work.db config init --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

func runConfigInit(opts *ConfigInitOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		msg := fmt.Sprintf("config file %s already exists (use --force to overwrite)", path)
		if opts.Format == "json" {
			_ = f.Error(CodeValidation, msg, map[string]string{"path": path})
		}
		return NewExitError(ExitCommandError, msg)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, "failed to check config file", err)
	}

	cfg := config.DefaultConfig()
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("format") {
		cfg.Format = opts.Format
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	opts.Logger().Debug("writing config", "path", path)
	if err := cfg.Save(path); err != nil {
		return WrapExitError(ExitCommandError, "failed to write config", err)
	}

	if opts.Format == "json" {
		return f.Success(configInitView{Path: path, Config: cfg})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
