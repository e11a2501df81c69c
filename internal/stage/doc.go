// Package stage implements the frontmatter transform stage.
//
// A [Stage] takes one record at a time, reads its content, splits off the
// frontmatter block with a [frontmatter.Parser], merges the parsed fields
// into the record's Data map and, unless stripping is disabled, replaces the
// content with the body. Records without content pass through untouched.
//
//	s := stage.New(stage.WithStrip(true))
//	out, err := s.Process(ctx, rec)
//
// The stage keeps no state between records and is safe for concurrent use;
// ordering across records is the job of the pipeline that drives it.
package stage
