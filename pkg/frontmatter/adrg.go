package frontmatter

import (
	"bytes"

	adrg "github.com/adrg/frontmatter"
)

// AdrgParser is a Parser backed by github.com/adrg/frontmatter. It accepts
// that library's formats: "---" YAML, "+++" TOML, ";;;" JSON and bare
// "{ }" JSON objects.
type AdrgParser struct {
	formats []*adrg.Format
}

// Adrg returns an AdrgParser. With no formats the library defaults apply.
func Adrg(formats ...*adrg.Format) *AdrgParser {
	return &AdrgParser{formats: formats}
}

// Parse implements Parser.
func (p *AdrgParser) Parse(text []byte) (Matter, error) {
	var raw map[string]any
	body, err := adrg.Parse(bytes.NewReader(text), &raw, p.formats...)
	if err != nil {
		return Matter{}, &MatterError{Err: err}
	}
	if raw == nil {
		// Nothing decoded: either no block or an empty one.
		return Matter{Data: map[string]any{}, Body: body}, nil
	}
	data, _ := Normalize(raw).(map[string]any)
	return Matter{Data: data, Body: body}, nil
}
