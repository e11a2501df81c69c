// Package errors provides error handling conventions for fmstage.
//
// It re-exports the constructors and inspectors of
// [github.com/cockroachdb/errors] so callers import a single errors package,
// and adds the types the CLI and the transform stage need on top.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrInvalidConfig) {
//	    // handle bad configuration
//	}
//
// # Plugin Errors
//
// [PluginError] carries a message prefixed with the fixed "fmstage: "
// namespace tag. It is raised only for conditions the transform stage
// detects itself; errors from collaborators propagate unwrapped.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, a record failure)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion for the CLI. It unwraps to the underlying error, so [Is] and
// [As] see through it:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Run: fmstage config show")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
