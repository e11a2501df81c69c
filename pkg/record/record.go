package record

import (
	"io/fs"
	"maps"
	"path/filepath"
)

// Kind names a content variant.
type Kind int

const (
	// KindUnknown is reported by Contents implementations outside this package.
	KindUnknown Kind = iota
	// KindBuffer is in-memory content.
	KindBuffer
	// KindStream is content read from an io.Reader.
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Contents is the content of a Record. Buffer and *Stream are the variants
// this package can materialize.
type Contents interface {
	Kind() Kind
}

// Record is a file-like unit of work.
type Record struct {
	// Path is the virtual path of the record.
	Path string
	// Base is the directory Path is considered relative to. May be empty.
	Base string
	// Mode holds the file mode bits when the record came from disk.
	Mode fs.FileMode
	// Contents is nil when the record carries no content.
	Contents Contents
	// Data is the metadata side channel. A nil map means no metadata has
	// been attached yet.
	Data map[string]any
}

// New returns a Record for path with the given contents.
func New(path string, contents Contents) *Record {
	return &Record{Path: path, Contents: contents}
}

// IsNull reports whether the record has no content. A nil *Stream counts
// as no content.
func (r *Record) IsNull() bool {
	if s, ok := r.Contents.(*Stream); ok {
		return s == nil
	}
	return r.Contents == nil
}

// IsBuffer reports whether the content is held in memory.
func (r *Record) IsBuffer() bool {
	_, ok := r.Contents.(Buffer)
	return ok
}

// IsStream reports whether the content is a stream.
func (r *Record) IsStream() bool {
	s, ok := r.Contents.(*Stream)
	return ok && s != nil
}

// IsDir reports whether the record stands for a directory.
func (r *Record) IsDir() bool {
	return r.Mode.IsDir()
}

// Relative returns Path relative to Base. When Base is empty or Path is not
// under Base, the base name of Path is returned.
func (r *Record) Relative() string {
	if r.Base != "" {
		if rel, err := filepath.Rel(r.Base, r.Path); err == nil && filepath.IsLocal(rel) {
			return rel
		}
	}
	return filepath.Base(r.Path)
}

// Clone returns a copy of r with a new identity. Data is copied shallowly
// and stays nil if it was nil. With preserveContents, Buffer contents are
// copied byte for byte and other variants are shared; without it the clone
// has no contents.
func (r *Record) Clone(preserveContents bool) *Record {
	c := &Record{
		Path: r.Path,
		Base: r.Base,
		Mode: r.Mode,
		Data: maps.Clone(r.Data),
	}
	if !preserveContents {
		return c
	}
	switch v := r.Contents.(type) {
	case Buffer:
		c.Contents = v.Clone()
	default:
		c.Contents = v
	}
	return c
}
