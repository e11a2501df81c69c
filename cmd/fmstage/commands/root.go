// Package commands implements the CLI commands for fmstage.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/fmstage/cmd"
	"github.com/thoreinstein/fmstage/internal/config"
	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
)

// debugEnv raises the log level when no -v flag is given.
const debugEnv = "FMSTAGE_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configPath holds the value of the --config flag.
var configPath string

// cfg is the loaded configuration; configLoadErr is reported by commands
// that need it.
var (
	cfg           *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/fmstage/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("fmstage version {{.Version}}\n")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewUserError(err, "Run 'fmstage --help' for usage")
	})

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "fmstage",
	Short: "Extract frontmatter from text files",
	Long: `fmstage reads text files, parses the frontmatter block at the head of
each one, and writes the files back out with their metadata attached.

By default the frontmatter is stripped from the written content and the
parsed fields are saved in a sidecar file next to it.`,
	Example: `  # Strip frontmatter from a docs tree
  fmstage run docs/ --out build/

  # Print the metadata of every markdown file as JSON lines
  fmstage inspect content/ --format json

  See Also: fmstage config show`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.ErrInvalidFlag, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logging.Format(logFormat)
	if format != logging.FormatText && format != logging.FormatJSON {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidFlag, "--log-format %q", logFormat),
			"Use --log-format text or --log-format json")
	}

	opts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{logging.NewFormatHandler(cmd.ErrOrStderr(), format, opts)}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewSystemError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// loadedConfig returns the configuration loaded at startup, or a config
// error for the user.
func loadedConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, errors.NewConfigError(configLoadErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the root command and reports any error to stderr. It returns
// the process exit code.
func Main(stderr io.Writer) int {
	err := Execute()
	if err == nil {
		return errors.ExitSuccess
	}

	exitErr := toExitError(err)
	fmt.Fprintf(stderr, "Error: %v\n", exitErr)
	if exitErr.Suggestion != "" {
		fmt.Fprintf(stderr, "  %s\n", exitErr.Suggestion)
	}
	return exitErr.Code
}

// toExitError classifies err. Errors that already carry an exit code keep
// it; missing inputs and bad values are user errors; anything else is a
// system error.
func toExitError(err error) *errors.ExitError {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	switch {
	case errors.Is(err, errors.ErrNotFound),
		errors.Is(err, errors.ErrInvalidFlag),
		errors.Is(err, errors.ErrInvalidConfig):
		return errors.NewUserError(err, "")
	default:
		return errors.NewSystemError(err, "")
	}
}
