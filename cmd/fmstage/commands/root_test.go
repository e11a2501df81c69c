package commands

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/internal/paths"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	// Save/Restore original state
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"FMSTAGE_DEBUG=1", "1", slog.LevelDebug},
		{"FMSTAGE_DEBUG=true", "true", slog.LevelDebug},
		{"FMSTAGE_DEBUG=2", "2", logging.LevelTrace},
		{"FMSTAGE_DEBUG=0", "0", slog.LevelWarn},
		{"FMSTAGE_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv(debugEnv, tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}

			if tt.wantLevel == slog.LevelDebug {
				if logger.Enabled(t.Context(), logging.LevelTrace) {
					t.Error("expected Trace level to be disabled when FMSTAGE_DEBUG=1")
				}
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	t.Setenv(debugEnv, "2")
	verbosity = 1

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected Info level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug level to be disabled (flag should override env var)")
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	origQuiet := quiet
	origVerbosity := verbosity
	defer func() {
		quiet = origQuiet
		verbosity = origVerbosity
	}()

	quiet = true
	verbosity = 0

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled")
	}
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	origVerbosity := verbosity
	origQuiet := quiet
	defer func() {
		verbosity = origVerbosity
		quiet = origQuiet
	}()

	verbosity = 1
	quiet = true

	err := setupLogging(rootCmd)
	if err == nil {
		t.Fatal("expected error when both quiet and verbose are set")
	}
	if code := toExitError(err).Code; code != errors.ExitUser {
		t.Errorf("exit code = %d, want %d", code, errors.ExitUser)
	}
}

func TestSetupLogging_InvalidFormat(t *testing.T) {
	origFormat := logFormat
	defer func() { logFormat = origFormat }()

	logFormat = "xml"
	if err := setupLogging(rootCmd); !errors.Is(err, errors.ErrInvalidFlag) {
		t.Errorf("setupLogging() error = %v, want ErrInvalidFlag", err)
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	origFile := logFile
	origVerbosity := verbosity
	defer func() {
		logFile = origFile
		verbosity = origVerbosity
	}()

	logFile = filepath.Join(t.TempDir(), "fmstage.log")
	verbosity = 1
	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	slog.Info("to both handlers", "k", "v")

	if got := readFile(t, logFile); !strings.Contains(got, `"msg":"to both handlers"`) {
		t.Errorf("log file = %q, want JSON record", got)
	}
}

func TestToExitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error kept", errors.NewSystemError(errors.New("disk"), ""), errors.ExitSystem},
		{"not found", errors.Wrap(errors.ErrNotFound, "docs"), errors.ExitUser},
		{"invalid flag", errors.ErrInvalidFlag, errors.ExitUser},
		{"invalid config", errors.ErrInvalidConfig, errors.ExitUser},
		{"other", errors.New("permission denied"), errors.ExitSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toExitError(tt.err).Code; got != tt.want {
				t.Errorf("toExitError().Code = %d, want %d", got, tt.want)
			}
		})
	}
}

// runMain runs Main with args in isolation and returns the exit code and
// stderr output.
func runMain(t *testing.T, args ...string) (int, string) {
	t.Helper()

	viper.Reset()
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	return Main(&stderr), stderr.String()
}

func TestMain_UserError(t *testing.T) {
	code, stderr := runMain(t, "run", "--out", t.TempDir())
	if code != errors.ExitUser {
		t.Errorf("Main() = %d, want %d", code, errors.ExitUser)
	}
	if !strings.HasPrefix(stderr, "Error: ") {
		t.Errorf("stderr = %q, want Error: prefix", stderr)
	}
	if !strings.Contains(stderr, "Usage: fmstage run") {
		t.Errorf("stderr = %q, want usage suggestion", stderr)
	}
}

func TestMain_MissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	code, stderr := runMain(t, "run", missing, "--out", t.TempDir())
	if code != errors.ExitUser {
		t.Errorf("Main() = %d, want %d (stderr %q)", code, errors.ExitUser, stderr)
	}
}

func TestMain_Success(t *testing.T) {
	if code, stderr := runMain(t, "version"); code != errors.ExitSuccess {
		t.Errorf("Main() = %d, want %d (stderr %q)", code, errors.ExitSuccess, stderr)
	}
}
