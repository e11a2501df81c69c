package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/pkg/fileutil"
	"github.com/thoreinstein/fmstage/pkg/record"
)

// Sink receives processed records. Run calls Write from one goroutine at a
// time, in source order.
type Sink interface {
	Write(ctx context.Context, rec *record.Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rec *record.Record) error

// Write calls f(ctx, rec).
func (f SinkFunc) Write(ctx context.Context, rec *record.Record) error { return f(ctx, rec) }

// CollectSink keeps every record it receives.
type CollectSink struct {
	mu      sync.Mutex
	records []*record.Record
}

// Write implements Sink.
func (c *CollectSink) Write(_ context.Context, rec *record.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

// Records returns the collected records in the order received.
func (c *CollectSink) Records() []*record.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*record.Record(nil), c.records...)
}

// MetaSuffix is inserted before the format extension of metadata sidecars:
// docs/index.md gets docs/index.md.meta.yaml.
const MetaSuffix = ".meta."

// DirSink writes records under Dir at their relative paths.
type DirSink struct {
	// Dir is the output root. It is created if missing.
	Dir string
	// MetaFormat selects the sidecar format for each record's Data. Empty
	// or FormatNone writes no sidecars.
	MetaFormat fileutil.Format
}

// Write implements Sink. Directory records become directories, other
// content-less records are skipped, and content is written atomically.
// Streams are copied without being buffered.
func (d *DirSink) Write(ctx context.Context, rec *record.Record) error {
	// Relative never escapes the record's base, so target stays under Dir.
	target := filepath.Join(d.Dir, rec.Relative())

	if rec.IsDir() {
		return os.MkdirAll(target, fileutil.DefaultDirPerm)
	}

	if rec.IsNull() {
		logging.FromContext(ctx).Debug("no content to write", "path", rec.Path)
		return nil
	}

	perm := rec.Mode.Perm()
	if perm == 0 {
		perm = fileutil.DefaultFilePerm
	}

	switch c := rec.Contents.(type) {
	case record.Buffer:
		if err := fileutil.AtomicWriteFile(target, c, perm); err != nil {
			return err
		}
	case *record.Stream:
		// Content a processor passed through without reading.
		err := fileutil.AtomicCopy(target, c, perm)
		if cerr := c.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", rec.Path)
		}
		if err != nil {
			return err
		}
	default:
		return errors.Newf("%s: cannot write %s contents", rec.Path, rec.Contents.Kind())
	}

	if d.MetaFormat == "" || d.MetaFormat == fileutil.FormatNone || len(rec.Data) == 0 {
		return nil
	}
	return fileutil.AtomicWriteEncoded(target+MetaSuffix+d.MetaFormat.Ext(), d.MetaFormat, rec.Data, fileutil.DefaultFilePerm)
}

// WriterSink prints each record's path and metadata to W.
//
// YAML output is a stream of documents, JSON output is one object per line,
// and TOML output is an array of tables named "records".
type WriterSink struct {
	W      io.Writer
	Format fileutil.Format
}

type metaEntry struct {
	Path string         `json:"path" yaml:"path" toml:"path"`
	Data map[string]any `json:"data" yaml:"data" toml:"data"`
}

// Write implements Sink.
func (w *WriterSink) Write(_ context.Context, rec *record.Record) error {
	entry := metaEntry{Path: rec.Path, Data: rec.Data}
	if entry.Data == nil {
		entry.Data = map[string]any{}
	}

	var (
		out []byte
		err error
	)
	switch w.Format {
	case fileutil.FormatJSON:
		out, err = encodeJSONLine(entry)
	case fileutil.FormatTOML:
		out, err = fileutil.Encode(fileutil.FormatTOML, map[string]any{
			"records": []map[string]any{{"path": entry.Path, "data": entry.Data}},
		})
	default:
		out, err = fileutil.Encode(fileutil.FormatYAML, entry)
		out = append([]byte("---\n"), out...)
	}
	if err != nil {
		return errors.Wrapf(err, "encoding metadata for %s", rec.Path)
	}

	_, err = w.W.Write(out)
	return err
}

// encodeJSONLine renders v as a single line of JSON.
func encodeJSONLine(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
