package record

import (
	"bytes"
	"context"
	"io"

	"github.com/thoreinstein/fmstage/internal/errors"
)

// ErrTooLarge is returned when a stream exceeds a materializer's byte limit.
var ErrTooLarge = errors.New("record content exceeds size limit")

// Materializer reads a record's full content into memory.
// ok is false when the record's contents are absent or of a variant the
// materializer does not recognize.
type Materializer interface {
	Materialize(ctx context.Context, r *Record) (data []byte, ok bool, err error)
}

// MaterializeFunc adapts a function to the Materializer interface.
type MaterializeFunc func(ctx context.Context, r *Record) ([]byte, bool, error)

// Materialize calls f(ctx, r).
func (f MaterializeFunc) Materialize(ctx context.Context, r *Record) ([]byte, bool, error) {
	return f(ctx, r)
}

// DefaultMaterializer materializes without a size limit.
var DefaultMaterializer Materializer = MaterializeFunc(Materialize)

// LimitedMaterializer returns a Materializer that fails with ErrTooLarge
// when content is longer than maxBytes. A limit of zero or less means no limit.
func LimitedMaterializer(maxBytes int64) Materializer {
	if maxBytes <= 0 {
		return DefaultMaterializer
	}
	return MaterializeFunc(func(ctx context.Context, r *Record) ([]byte, bool, error) {
		return materialize(ctx, r, maxBytes)
	})
}

// Materialize returns the full content of r.
//
// Buffer content is returned as is. Stream content is read to the end,
// the stream is closed, and r.Contents is replaced by the Buffer that was
// read so the bytes survive a later Clone. Nil contents and unrecognized
// variants report ok=false.
func Materialize(ctx context.Context, r *Record) ([]byte, bool, error) {
	return materialize(ctx, r, 0)
}

func materialize(ctx context.Context, r *Record, limit int64) ([]byte, bool, error) {
	switch c := r.Contents.(type) {
	case Buffer:
		if limit > 0 && int64(len(c)) > limit {
			return nil, true, errors.Wrapf(ErrTooLarge, "%s: %d bytes", r.Path, len(c))
		}
		return c, true, nil
	case *Stream:
		if c == nil {
			return nil, false, nil
		}
		data, err := readStream(ctx, c, limit)
		if err != nil {
			return nil, true, errors.Wrapf(err, "reading %s", r.Path)
		}
		r.Contents = Buffer(data)
		return data, true, nil
	default:
		return nil, false, nil
	}
}

func readStream(ctx context.Context, s *Stream, limit int64) (data []byte, err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing stream")
		}
	}()

	src, err := s.reader()
	if err != nil {
		return nil, errors.Wrap(err, "opening stream")
	}

	r := io.Reader(&ctxReader{ctx: ctx, r: src})
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
