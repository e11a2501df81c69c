package pipeline

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/fmstage/internal/errors"
	"github.com/thoreinstein/fmstage/pkg/fileutil"
	"github.com/thoreinstein/fmstage/pkg/record"
)

// Source yields records in order. Next returns io.EOF when exhausted.
type Source interface {
	Next(ctx context.Context) (*record.Record, error)
}

// SliceSource yields a fixed list of records.
type SliceSource struct {
	records []*record.Record
	pos     int
}

// NewSliceSource returns a Source over records.
func NewSliceSource(records ...*record.Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}

// DefaultInclude is the set of file name patterns a FileSource picks up
// when walking a directory.
var DefaultInclude = []string{"*.md", "*.markdown", "*.mdx", "*.html", "*.txt"}

// FileSourceOptions configures a FileSource.
type FileSourceOptions struct {
	// Include lists filepath.Match patterns checked against file base names
	// while walking directories. Files named directly are always included.
	// Empty means DefaultInclude.
	Include []string
	// Dirs emits a content-less record for every walked directory.
	Dirs bool
	// Buffered reads each file into memory as the record is produced
	// instead of streaming it when the stage materializes it.
	Buffered bool
	// MaxSize limits Buffered reads. Zero means no limit.
	MaxSize int64
}

// FileSource yields a record for each file under a set of paths.
// Directories are walked in lexical order.
type FileSource struct {
	roots   []string
	opts    FileSourceOptions
	entries []fileEntry
	walked  bool
	pos     int
}

type fileEntry struct {
	path string
	base string
	mode fs.FileMode
}

// NewFileSource returns a FileSource over paths.
func NewFileSource(paths []string, opts FileSourceOptions) *FileSource {
	if len(opts.Include) == 0 {
		opts.Include = DefaultInclude
	}
	return &FileSource{roots: paths, opts: opts}
}

// Next implements Source.
func (s *FileSource) Next(ctx context.Context) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.walked {
		if err := s.walk(); err != nil {
			return nil, err
		}
		s.walked = true
	}
	if s.pos >= len(s.entries) {
		return nil, io.EOF
	}
	e := s.entries[s.pos]
	s.pos++
	return s.open(e)
}

func (s *FileSource) open(e fileEntry) (*record.Record, error) {
	rec := &record.Record{Path: e.path, Base: e.base, Mode: e.mode}
	switch {
	case e.mode.IsDir():
		// No contents.
	case s.opts.Buffered:
		data, err := fileutil.ReadFileWithLimit(e.path, s.opts.MaxSize)
		if err != nil {
			return nil, err
		}
		rec.Contents = record.Buffer(data)
	default:
		path := e.path
		rec.Contents = record.NewLazyStream(func() (io.ReadCloser, error) {
			return os.Open(path)
		})
	}
	return rec, nil
}

func (s *FileSource) walk() error {
	for _, root := range s.roots {
		info, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return errors.Wrapf(errors.ErrNotFound, "%s", root)
			}
			return errors.Wrapf(err, "stat %s", root)
		}

		if !info.IsDir() {
			s.entries = append(s.entries, fileEntry{
				path: root,
				base: filepath.Dir(root),
				mode: info.Mode(),
			})
			continue
		}

		var found []fileEntry
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && isHidden(d.Name()) {
					return filepath.SkipDir
				}
				if s.opts.Dirs && path != root {
					found = append(found, fileEntry{path: path, base: root, mode: fs.ModeDir | 0o755})
				}
				return nil
			}
			if !d.Type().IsRegular() || isHidden(d.Name()) || !s.matches(d.Name()) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			found = append(found, fileEntry{path: path, base: root, mode: info.Mode()})
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "walking %s", root)
		}
		s.entries = append(s.entries, found...)
	}
	return nil
}

func (s *FileSource) matches(name string) bool {
	for _, pattern := range s.opts.Include {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
