package record

import (
	"bytes"
	"io"
	"sync"
)

// Buffer is content held fully in memory.
type Buffer []byte

// Kind implements Contents.
func (Buffer) Kind() Kind { return KindBuffer }

// Clone returns an independent copy of b.
func (b Buffer) Clone() Buffer {
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}

// String returns the content as a string.
func (b Buffer) String() string { return string(b) }

// Stream is content read from an io.Reader. The reader is opened lazily
// when the Stream was built with NewLazyStream. A Stream can be read once.
type Stream struct {
	mu     sync.Mutex
	r      io.Reader
	open   func() (io.ReadCloser, error)
	opened bool
}

// NewStream wraps r. If r is an io.Closer it is closed after materialization.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: r, opened: true}
}

// NewLazyStream defers calling open until the stream is first read, so a
// source can enumerate many files without holding them all open.
func NewLazyStream(open func() (io.ReadCloser, error)) *Stream {
	return &Stream{open: open}
}

// Kind implements Contents.
func (*Stream) Kind() Kind { return KindStream }

// reader returns the underlying reader, opening it if needed.
func (s *Stream) reader() (io.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		rc, err := s.open()
		if err != nil {
			return nil, err
		}
		s.r = rc
		s.opened = true
	}
	return s.r, nil
}

// Close closes the underlying reader if it has been opened and is an io.Closer.
func (s *Stream) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return nil
	}
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Read reads from the underlying reader, opening it first if needed. It lets
// callers that only need a prefix of the content avoid materializing it.
func (s *Stream) Read(p []byte) (int, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.Read(p)
}
