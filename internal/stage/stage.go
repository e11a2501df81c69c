package stage

import (
	"context"
	"log/slog"
	"maps"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
	"github.com/thoreinstein/fmstage/pkg/record"
)

// ErrUnsupportedFile is returned for a record whose content exists but
// cannot be materialized.
var ErrUnsupportedFile = errors.NewPluginError("Unsupported file")

// Stage is the frontmatter transform stage.
type Stage struct {
	strip        bool
	parser       frontmatter.Parser
	materializer record.Materializer
	logger       *slog.Logger
}

// Option configures a Stage.
type Option func(*Stage)

// WithStrip sets whether the frontmatter block is removed from the emitted
// content. The default is true.
func WithStrip(strip bool) Option {
	return func(s *Stage) {
		s.strip = strip
	}
}

// WithParser sets the frontmatter parser. The default is frontmatter.Default().
func WithParser(p frontmatter.Parser) Option {
	return func(s *Stage) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithMaterializer sets how record content is read into memory.
// The default is record.DefaultMaterializer.
func WithMaterializer(m record.Materializer) Option {
	return func(s *Stage) {
		if m != nil {
			s.materializer = m
		}
	}
}

// WithLogger sets the logger for per-record diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stage) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Stage. It cannot fail.
func New(opts ...Option) *Stage {
	s := &Stage{
		strip:        true,
		parser:       frontmatter.Default(),
		materializer: record.DefaultMaterializer,
		logger:       logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strip reports whether the stage removes frontmatter from content.
func (s *Stage) Strip() bool {
	return s.strip
}

// Process transforms one record and returns the record to emit.
//
// A record without content is returned as is. Otherwise the content is
// materialized and parsed, and the parsed fields are merged over any
// existing Data. With stripping on, rec itself is returned with its content
// replaced by the body; with stripping off, a clone carrying the original
// bytes is returned. On error nothing is emitted: an unmaterializable record
// fails with ErrUnsupportedFile, and materializer and parser errors are
// returned unchanged.
func (s *Stage) Process(ctx context.Context, rec *record.Record) (*record.Record, error) {
	if rec.IsNull() {
		s.logger.Log(ctx, logging.LevelTrace, "passing through record without content", "path", rec.Path)
		return rec, nil
	}

	contents, ok, err := s.materializer.Materialize(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnsupportedFile
	}

	m, err := s.parser.Parse(contents)
	if err != nil {
		return nil, err
	}

	out := rec
	if !s.strip {
		out = rec.Clone(true)
	}

	data := make(map[string]any, len(out.Data)+len(m.Data))
	maps.Copy(data, out.Data)
	maps.Copy(data, m.Data)
	out.Data = data

	if s.strip {
		out.Contents = record.Buffer(stripLeadingNewline(m.Body))
	}

	s.logger.Debug("extracted frontmatter",
		"path", rec.Path,
		"fields", len(m.Data),
		"strip", s.strip)

	return out, nil
}

// stripLeadingNewline removes a single leading '\n' or '\r'. Only the first
// character is considered, so "\r\n" loses just the '\r'.
func stripLeadingNewline(b []byte) []byte {
	if len(b) > 0 && (b[0] == '\n' || b[0] == '\r') {
		return b[1:]
	}
	return b
}
