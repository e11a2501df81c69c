// Package frontmatter splits a structured metadata block from the head of a
// text document.
//
// A block opens with a delimiter line at the very start of the text and
// closes at the next line consisting of the same delimiter. Everything after
// the closing line is the body:
//
//	---
//	title: Hello World
//	tags: [a, b]
//	---
//
//	# Hello
//
// "---" blocks are YAML unless the opening line names another language
// ("---json", "---toml"); "+++" blocks are TOML.
//
// # Basic Usage
//
//	m, err := frontmatter.Default().Parse(content)
//	if err != nil {
//		return err
//	}
//	fmt.Println(m.Data["title"], len(m.Body))
//
// When the text has no block, Parse returns an empty Data map and the text
// unchanged as Body. That contract is what [Parser] implementations share,
// so the transform stage can swap the builtin parser for [Adrg] or a test
// fake.
//
// # Error Handling
//
//   - [ErrInvalidMatter]: the block exists but could not be decoded into a map
//   - [ErrUnknownLanguage]: the opening line names a language with no engine
//
// Both can be checked with [errors.Is].
package frontmatter
