package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/multiverse/internal/config"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger built from them before a subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the multiverse CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "multiverse",
		Short: "Branching-narrative entity store with invariant checks",
		Long: `Run scripted scenarios against a multiverse of characters, timelines,
memories, and events, and check that its seven consistency properties hold.

Snapshots of final states can be stored in SQLite and re-checked later.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.init(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./multiverse.yaml or ~/.multiverse/multiverse.yaml)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSnapshotsCommand(opts))

	return cmd
}

// init loads configuration and builds the logger. Commands constructed
// directly (as in tests) call it lazily through settings.
func (o *RootOptions) init(logOutput io.Writer) error {
	if o.Config == nil {
		cfg, err := config.Load(o.ConfigFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading config", err)
		}
		o.Config = cfg
	}
	if o.Logger == nil {
		o.Logger = newLogger(o.Config.Logging, o.Verbose, logOutput)
	}
	return nil
}

// settings returns the loaded configuration and logger.
func (o *RootOptions) settings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := o.init(cmd.ErrOrStderr()); err != nil {
		return nil, nil, err
	}
	return o.Config, o.Logger, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// newLogger builds a text or JSON slog handler. --verbose lowers the level
// to debug regardless of configuration.
func newLogger(cfg config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
