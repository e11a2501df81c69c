package frontmatter

import (
	"bytes"
	"strings"

	"github.com/thoreinstein/fmstage/internal/errors"
)

// bom is the UTF-8 byte order mark some editors put before the opening
// delimiter.
var bom = []byte("\xEF\xBB\xBF")

// Delimiters recognized by the builtin parser.
const (
	DelimYAML = "---"
	DelimTOML = "+++"
)

// Sentinel errors for malformed blocks.
var (
	// ErrInvalidMatter indicates a block that failed to decode into a map.
	ErrInvalidMatter = errors.New("invalid frontmatter")

	// ErrUnknownLanguage indicates an opening delimiter naming an unsupported language.
	ErrUnknownLanguage = errors.New("unknown frontmatter language")
)

// Matter is the result of splitting a document.
type Matter struct {
	// Data holds the decoded block. It is never nil.
	Data map[string]any
	// Body is the text following the closing delimiter line.
	Body []byte
	// Language is the engine that decoded Data, empty when there was no block.
	Language string
}

// Parser splits frontmatter from text.
//
// When text has no frontmatter block, implementations return an empty Data
// map and text itself as Body.
type Parser interface {
	Parse(text []byte) (Matter, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(text []byte) (Matter, error)

// Parse calls f(text).
func (f ParserFunc) Parse(text []byte) (Matter, error) { return f(text) }

// Builtin is the package's own Parser.
type Builtin struct {
	defaultLanguage string
	engines         map[string]Engine
}

// Option configures a Builtin parser.
type Option func(*Builtin)

// WithDefaultLanguage sets the language of "---" blocks that do not name one.
func WithDefaultLanguage(lang string) Option {
	return func(b *Builtin) {
		b.defaultLanguage = strings.ToLower(lang)
	}
}

// WithEngine registers or replaces the engine for lang.
func WithEngine(lang string, e Engine) Option {
	return func(b *Builtin) {
		b.engines[strings.ToLower(lang)] = e
	}
}

// New returns a Builtin parser with the YAML, JSON and TOML engines.
func New(opts ...Option) *Builtin {
	b := &Builtin{
		defaultLanguage: LangYAML,
		engines:         DefaultEngines(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultParser = New()

// Default returns the shared Builtin parser with default settings.
func Default() *Builtin {
	return defaultParser
}

// Parse implements Parser.
func (b *Builtin) Parse(text []byte) (Matter, error) {
	delim, lang, rest, ok := b.opening(bytes.TrimPrefix(text, bom))
	if !ok {
		return none(text), nil
	}

	block, body, ok := splitClosing(rest, delim)
	if !ok {
		// An unterminated block is ordinary content.
		return none(text), nil
	}

	engine, ok := b.engines[lang]
	if !ok {
		return Matter{}, errors.Wrapf(ErrUnknownLanguage, "%q", lang)
	}

	data := map[string]any{}
	if len(bytes.TrimSpace(block)) > 0 {
		decoded, err := engine(block)
		if err != nil {
			return Matter{}, &MatterError{Language: lang, Err: err}
		}
		if decoded != nil {
			data = decoded
		}
	}

	return Matter{Data: data, Body: body, Language: lang}, nil
}

// opening inspects the first line of text. It returns the delimiter, the
// language of the block and the text after the opening line.
func (b *Builtin) opening(text []byte) (delim, lang string, rest []byte, ok bool) {
	line, rest, _ := cutLine(text)
	s := strings.TrimRight(string(line), " \t")

	switch {
	case strings.HasPrefix(s, DelimYAML):
		delim = DelimYAML
	case strings.HasPrefix(s, DelimTOML):
		delim = DelimTOML
	default:
		return "", "", nil, false
	}

	tag := s[len(delim):]
	// "----" is a thematic break, not a delimiter.
	if strings.HasPrefix(tag, delim[:1]) {
		return "", "", nil, false
	}
	lang = strings.ToLower(strings.TrimSpace(tag))
	if lang == "" {
		lang = b.defaultLanguage
		if delim == DelimTOML {
			lang = LangTOML
		}
	}
	return delim, lang, rest, true
}

// splitClosing finds the closing delimiter line in rest: the first line
// starting with delim, so "----" and "---yaml" close a "---" block. The
// block is the text before that line and the body is the text after its
// line break.
func splitClosing(rest []byte, delim string) (block, body []byte, ok bool) {
	offset := 0
	for offset < len(rest) {
		line, next, _ := cutLine(rest[offset:])
		if bytes.HasPrefix(line, []byte(delim)) {
			return rest[:offset], next, true
		}
		offset = len(rest) - len(next)
	}
	return nil, nil, false
}

// cutLine splits off the first line of b, dropping its "\n" or "\r\n".
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, rest, found
}

func none(text []byte) Matter {
	return Matter{Data: map[string]any{}, Body: text}
}

// MatterError reports a block that could not be decoded. It matches
// ErrInvalidMatter under errors.Is.
type MatterError struct {
	// Language is the engine that failed, empty when unknown.
	Language string
	Err      error
}

func (e *MatterError) Error() string {
	if e.Language == "" {
		return ErrInvalidMatter.Error() + ": " + e.Err.Error()
	}
	return ErrInvalidMatter.Error() + ": " + e.Language + ": " + e.Err.Error()
}

func (e *MatterError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidMatter.
func (e *MatterError) Is(target error) bool { return target == ErrInvalidMatter }

// Parser names accepted by ByName.
const (
	ParserBuiltin = "builtin"
	ParserAdrg    = "adrg"
)

// ErrUnknownParser is returned by ByName for an unrecognized name.
var ErrUnknownParser = errors.New("unknown frontmatter parser")

// ByName returns the parser registered under name. Options apply to the
// builtin parser only.
func ByName(name string, opts ...Option) (Parser, error) {
	switch strings.ToLower(name) {
	case "", ParserBuiltin:
		if len(opts) == 0 {
			return Default(), nil
		}
		return New(opts...), nil
	case ParserAdrg:
		return Adrg(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownParser, "%q", name)
	}
}
