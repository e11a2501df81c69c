// Package logging provides structured logging for fmstage using slog.
//
// Text output goes through [Handler], a compact colorized format for
// terminals; JSON output uses the standard library's JSON handler. Both are
// selected through [Config]. Verbosity flags map onto levels with
// [LevelFromVerbosity], which adds a [LevelTrace] below debug for
// per-record detail from the transform stage.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("processing", "path", "docs/index.md")
//
// # Context
//
// Commands attach their logger to the command context with [NewContext];
// library code retrieves it with [FromContext], which falls back to
// [slog.Default].
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
