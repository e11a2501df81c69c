package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/internal/stage"
	"github.com/thoreinstein/fmstage/pkg/record"
)

func paths(recs []*record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}
	return out
}

func doc(path, title string) *record.Record {
	return record.New(path, record.Buffer(fmt.Sprintf("---\ntitle: %s\n---\n\nbody of %s\n", title, path)))
}

// delayed wraps a processor and sleeps per path before delegating.
func delayed(p Processor, delays map[string]time.Duration) Processor {
	return ProcessorFunc(func(ctx context.Context, rec *record.Record) (*record.Record, error) {
		time.Sleep(delays[rec.Path])
		return p.Process(ctx, rec)
	})
}

func TestRun_PreservesOrderUnderUnevenLatency(t *testing.T) {
	src := NewSliceSource(doc("r1.md", "one"), doc("r2.md", "two"), doc("r3.md", "three"))
	proc := delayed(stage.New(), map[string]time.Duration{
		"r1.md": 60 * time.Millisecond,
		"r2.md": 30 * time.Millisecond,
		"r3.md": 0,
	})
	sink := &CollectSink{}

	ctx := logging.NewContext(t.Context(), logging.ForTest(t))
	stats, err := Run(ctx, src, proc, sink, Config{Concurrency: 3})
	require.NoError(t, err)

	got := sink.Records()
	assert.Equal(t, []string{"r1.md", "r2.md", "r3.md"}, paths(got))
	assert.Equal(t, "one", got[0].Data["title"])
	assert.Equal(t, "three", got[2].Data["title"])
	assert.Equal(t, Stats{Read: 3, Emitted: 3}, stats)
}

func TestRun_ProcessesConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	proc := ProcessorFunc(func(_ context.Context, rec *record.Record) (*record.Record, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return rec, nil
	})

	var recs []*record.Record
	for i := range 8 {
		recs = append(recs, doc(fmt.Sprintf("r%d.md", i), "x"))
	}

	_, err := Run(t.Context(), NewSliceSource(recs...), proc, &CollectSink{}, Config{Concurrency: 4})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(4))
	assert.Greater(t, peak.Load(), int32(1))
}

func TestRun_NullRecordsPassThrough(t *testing.T) {
	empty := record.New("dir", nil)
	src := NewSliceSource(doc("a.md", "A"), empty)
	sink := &CollectSink{}

	stats, err := Run(t.Context(), src, stage.New(), sink, Config{})
	require.NoError(t, err)

	got := sink.Records()
	require.Len(t, got, 2)
	assert.Same(t, empty, got[1])
	assert.Nil(t, got[1].Data)
	assert.Equal(t, Stats{Read: 2, Emitted: 2, Passthrough: 1}, stats)
}

type foreign struct{}

func (foreign) Kind() record.Kind { return record.KindUnknown }

func TestRun_HaltOnFirstFailure(t *testing.T) {
	bad := record.New("bad", foreign{})
	src := NewSliceSource(doc("a.md", "A"), bad, doc("c.md", "C"), doc("d.md", "D"))
	sink := &CollectSink{}

	stats, err := Run(t.Context(), src, stage.New(), sink, Config{})

	require.Error(t, err)
	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, "bad", recErr.Path)
	assert.True(t, errors.Is(err, stage.ErrUnsupportedFile))

	assert.Equal(t, []string{"a.md"}, paths(sink.Records()))
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Emitted)
}

func TestRun_HaltDropsLaterRecordsAlreadyInFlight(t *testing.T) {
	parseErr := errors.New("broken frontmatter")
	proc := ProcessorFunc(func(_ context.Context, rec *record.Record) (*record.Record, error) {
		if rec.Path == "r1.md" {
			time.Sleep(30 * time.Millisecond)
			return nil, parseErr
		}
		return rec, nil
	})
	src := NewSliceSource(doc("r0.md", "0"), doc("r1.md", "1"), doc("r2.md", "2"), doc("r3.md", "3"))
	sink := &CollectSink{}

	_, err := Run(t.Context(), src, proc, sink, Config{Concurrency: 4})

	assert.True(t, errors.Is(err, parseErr))
	assert.Equal(t, []string{"r0.md"}, paths(sink.Records()))
}

func TestRun_SkipMode(t *testing.T) {
	parseErr := errors.New("broken frontmatter")
	proc := ProcessorFunc(func(ctx context.Context, rec *record.Record) (*record.Record, error) {
		if rec.Path == "b.md" {
			return nil, parseErr
		}
		return stage.New().Process(ctx, rec)
	})
	src := NewSliceSource(doc("a.md", "A"), doc("b.md", "B"), doc("c.md", "C"))
	sink := &CollectSink{}

	ctx := logging.NewContext(t.Context(), logging.ForTest(t))
	stats, err := Run(ctx, src, proc, sink, Config{Concurrency: 2, OnError: ErrorModeSkip})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "c.md"}, paths(sink.Records()))
	assert.Equal(t, Stats{Read: 3, Emitted: 2, Failed: 1}, stats)
}

func TestRun_SinkErrorStops(t *testing.T) {
	sinkErr := errors.New("disk full")
	sink := SinkFunc(func(context.Context, *record.Record) error { return sinkErr })

	stats, err := Run(t.Context(), NewSliceSource(doc("a.md", "A"), doc("b.md", "B")), stage.New(), sink, Config{})
	assert.True(t, errors.Is(err, sinkErr))
	assert.Equal(t, 0, stats.Emitted)
}

type errSource struct{ err error }

func (e errSource) Next(context.Context) (*record.Record, error) { return nil, e.err }

func TestRun_SourceError(t *testing.T) {
	srcErr := errors.New("walk failed")
	_, err := Run(t.Context(), errSource{srcErr}, stage.New(), &CollectSink{}, Config{})
	assert.True(t, errors.Is(err, srcErr))
}

// cancelingSource cancels the run after handing out n records.
type cancelingSource struct {
	inner  Source
	n      int
	cancel context.CancelFunc
}

func (c *cancelingSource) Next(ctx context.Context) (*record.Record, error) {
	if c.n == 0 {
		c.cancel()
		return nil, ctx.Err()
	}
	c.n--
	return c.inner.Next(ctx)
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	src := &cancelingSource{
		inner:  NewSliceSource(doc("a.md", "A"), doc("b.md", "B"), doc("c.md", "C")),
		n:      1,
		cancel: cancel,
	}
	proc := delayed(stage.New(), map[string]time.Duration{"a.md": 20 * time.Millisecond})
	sink := &CollectSink{}

	stats, err := Run(ctx, src, proc, sink, Config{Concurrency: 2})

	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	// The record already in flight still completes.
	assert.Equal(t, []string{"a.md"}, paths(sink.Records()))
	assert.Equal(t, 1, stats.Read)
}

func TestRun_EmptySource(t *testing.T) {
	stats, err := Run(t.Context(), NewSliceSource(), stage.New(), &CollectSink{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestParseErrorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ErrorMode
		wantErr bool
	}{
		{"", ErrorModeHalt, false},
		{"halt", ErrorModeHalt, false},
		{"SKIP", ErrorModeSkip, false},
		{"retry", "", true},
	}
	for _, tt := range tests {
		got, err := ParseErrorMode(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidErrorMode), "ParseErrorMode(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSliceSource(t *testing.T) {
	a := doc("a.md", "A")
	src := NewSliceSource(a)

	got, err := src.Next(t.Context())
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, io.EOF)
}
