// Package record defines the file-like unit of work that flows through an
// fmstage pipeline.
//
// A [Record] carries a virtual path, its contents, and an open metadata map
// ([Record.Data]) that travels beside the bytes. Contents are a tagged union:
//
//   - nil: the record has no content (a directory entry, a placeholder)
//   - [Buffer]: the full content held in memory
//   - *[Stream]: content read on demand from an [io.Reader]
//
// [Materialize] turns either content variant into a single byte slice.
// It reports ok=false for nil contents and for any [Contents] implementation
// it does not recognize; the transform stage treats that as an unsupported
// file.
package record
