package stage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/internal/logging"
	"github.com/thoreinstein/fmstage/pkg/record"
)

type trackingReader struct {
	io.Reader
	read   int
	closed bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.read += n
	return n, err
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestHeaderStage_Buffer(t *testing.T) {
	h := NewHeader(nil, logging.ForTest(t))
	rec := loadRecord(t, "with-frontmatter.md")
	rec.Data = map[string]any{"value-one": "old", "kept": true}

	out, err := h.Process(t.Context(), rec)
	require.NoError(t, err)

	assert.NotSame(t, rec, out)
	assert.Nil(t, out.Contents)
	assert.Equal(t, "Hello World", out.Data["value-one"])
	assert.Equal(t, true, out.Data["kept"])
	assert.Equal(t, "old", rec.Data["value-one"], "input record must not change")
}

func TestHeaderStage_StreamStopsAtClosingDelimiter(t *testing.T) {
	body := strings.Repeat("filler line\n", 100000)
	src := &trackingReader{Reader: strings.NewReader("---\ntitle: big\n---\n" + body)}
	rec := record.New("big.md", record.NewStream(src))

	out, err := NewHeader(nil, nil).Process(t.Context(), rec)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"title": "big"}, out.Data)
	assert.True(t, src.closed, "stream should be closed")
	assert.Less(t, src.read, len(body), "body should not be read in full")
}

func TestHeaderStage_NoFrontmatter(t *testing.T) {
	out, err := NewHeader(nil, nil).Process(t.Context(), loadRecord(t, "no-frontmatter.md"))
	require.NoError(t, err)
	assert.Empty(t, out.Data)
	assert.NotNil(t, out.Data)
}

func TestHeaderStage_NullAndUnsupported(t *testing.T) {
	h := NewHeader(nil, nil)

	null := record.New("dir", nil)
	out, err := h.Process(t.Context(), null)
	require.NoError(t, err)
	assert.Same(t, null, out)

	_, err = h.Process(t.Context(), record.New("x", foreignContents{}))
	assert.True(t, errors.Is(err, ErrUnsupportedFile))
}
