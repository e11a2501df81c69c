package pipeline

import (
	"context"
	"io"
	"strings"
	"sync/atomic"

	"github.com/sourcegraph/conc/stream"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/pkg/record"
)

// Processor transforms a single record. internal/stage.Stage implements it.
type Processor interface {
	Process(ctx context.Context, rec *record.Record) (*record.Record, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, rec *record.Record) (*record.Record, error)

// Process calls f(ctx, rec).
func (f ProcessorFunc) Process(ctx context.Context, rec *record.Record) (*record.Record, error) {
	return f(ctx, rec)
}

// ErrorMode decides what a failed record does to the rest of the run.
type ErrorMode string

const (
	// ErrorModeHalt stops at the first failed record.
	ErrorModeHalt ErrorMode = "halt"
	// ErrorModeSkip logs the failure and continues with the next record.
	ErrorModeSkip ErrorMode = "skip"
)

// ErrInvalidErrorMode is returned by ParseErrorMode for unknown names.
var ErrInvalidErrorMode = errors.New("invalid error mode")

// ParseErrorMode validates s as an ErrorMode. Empty means halt.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch m := ErrorMode(strings.ToLower(s)); m {
	case "", ErrorModeHalt:
		return ErrorModeHalt, nil
	case ErrorModeSkip:
		return ErrorModeSkip, nil
	default:
		return "", errors.Wrapf(ErrInvalidErrorMode, "%q (valid: halt, skip)", s)
	}
}

// Config controls a Run.
type Config struct {
	// Concurrency is the number of records processed at once. Values below
	// one mean one.
	Concurrency int
	// OnError is the failure policy. The zero value halts.
	OnError ErrorMode
}

// Stats counts what happened during a Run.
type Stats struct {
	// Read is the number of records taken from the source.
	Read int
	// Emitted is the number of records written to the sink.
	Emitted int
	// Failed is the number of records whose processing failed.
	Failed int
	// Passthrough is the number of emitted records that had no content.
	Passthrough int
}

// RecordError ties a processing failure to the record that caused it.
type RecordError struct {
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the processing error.
func (e *RecordError) Unwrap() error { return e.Err }

// Run processes every record from src with proc and writes the results to
// sink in source order.
//
// With ErrorModeHalt the first failure in source order stops reading, the
// records already in flight finish without being emitted, and Run returns a
// *RecordError. With ErrorModeSkip failures are logged and counted in
// Stats.Failed and Run returns nil. Sink and source errors always stop the
// run. When ctx is canceled no further records are read, records in flight
// still finish, and Run returns ctx.Err().
func Run(ctx context.Context, src Source, proc Processor, sink Sink, cfg Config) (Stats, error) {
	logger := logging.FromContext(ctx)

	workers := cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	mode := cfg.OnError
	if mode == "" {
		mode = ErrorModeHalt
	}

	// In-flight records run to completion even if ctx is canceled.
	workCtx := context.WithoutCancel(ctx)

	var (
		stats   Stats
		stopped atomic.Bool
		runErr  error
	)

	// Callbacks run one at a time in submission order, so stats and runErr
	// are only touched from there.
	fail := func(err error) {
		if runErr == nil {
			runErr = err
		}
		stopped.Store(true)
	}

	s := stream.New().WithMaxGoroutines(workers)

	for !stopped.Load() {
		if err := ctx.Err(); err != nil {
			stopped.Store(true)
			s.Wait()
			if runErr == nil {
				runErr = err
			}
			return stats, runErr
		}

		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stopped.Store(true)
			s.Wait()
			if runErr == nil {
				runErr = errors.Wrap(err, "reading source")
				if ctxErr := ctx.Err(); ctxErr != nil {
					runErr = ctxErr
				}
			}
			return stats, runErr
		}
		stats.Read++

		passthrough := rec.IsNull()
		s.Go(func() stream.Callback {
			out, perr := proc.Process(workCtx, rec)
			return func() {
				if runErr != nil {
					// Halted: results after the failing record are dropped.
					return
				}
				if perr != nil {
					stats.Failed++
					if mode == ErrorModeSkip {
						logger.Warn("skipping record", "path", rec.Path, "error", perr)
						return
					}
					fail(&RecordError{Path: rec.Path, Err: perr})
					return
				}
				if err := sink.Write(workCtx, out); err != nil {
					fail(errors.Wrapf(err, "writing %s", out.Path))
					return
				}
				stats.Emitted++
				if passthrough {
					stats.Passthrough++
				}
				logger.Log(ctx, logging.LevelTrace, "emitted record", "path", out.Path)
			}
		})
	}

	s.Wait()
	return stats, runErr
}
