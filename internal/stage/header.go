package stage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"maps"

	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/pkg/frontmatter"
	"github.com/thoreinstein/fmstage/pkg/record"
)

// HeaderStage reads only the frontmatter block of each record. It emits a
// content-less clone carrying the merged Data, which is all a metadata
// listing needs, and never reads a file's body.
type HeaderStage struct {
	parser *frontmatter.Builtin
	logger *slog.Logger
}

// NewHeader returns a HeaderStage using parser, or frontmatter.Default()
// when parser is nil.
func NewHeader(parser *frontmatter.Builtin, logger *slog.Logger) *HeaderStage {
	if parser == nil {
		parser = frontmatter.Default()
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &HeaderStage{parser: parser, logger: logger}
}

// Process implements pipeline.Processor.
func (h *HeaderStage) Process(ctx context.Context, rec *record.Record) (*record.Record, error) {
	if rec.IsNull() {
		return rec, nil
	}

	var r io.Reader
	switch c := rec.Contents.(type) {
	case record.Buffer:
		r = bytes.NewReader(c)
	case *record.Stream:
		defer c.Close()
		r = c
	default:
		return nil, ErrUnsupportedFile
	}

	parsed, err := h.parser.ParseHeader(r)
	if err != nil {
		return nil, err
	}

	out := rec.Clone(false)
	data := make(map[string]any, len(out.Data)+len(parsed))
	maps.Copy(data, out.Data)
	maps.Copy(data, parsed)
	out.Data = data

	h.logger.Log(ctx, logging.LevelTrace, "read frontmatter header", "path", rec.Path, "fields", len(parsed))
	return out, nil
}
