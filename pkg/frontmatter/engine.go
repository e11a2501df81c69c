package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/fmstage/internal/errors"
)

// Languages with a default engine.
const (
	LangYAML = "yaml"
	LangJSON = "json"
	LangTOML = "toml"
)

// Engine decodes the text of a block into a map.
// A nil map with a nil error means the block held no values.
type Engine func(block []byte) (map[string]any, error)

// DefaultEngines returns a fresh map of the builtin engines. "yml" is an
// alias for YAML.
func DefaultEngines() map[string]Engine {
	return map[string]Engine{
		LangYAML: YAMLEngine,
		"yml":    YAMLEngine,
		LangJSON: JSONEngine,
		LangTOML: TOMLEngine,
	}
}

// YAMLEngine decodes YAML with gopkg.in/yaml.v3.
func YAMLEngine(block []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(block, &v); err != nil {
		return nil, err
	}
	return asMap(v)
}

// JSONEngine decodes a JSON object. Numbers decode as float64.
func JSONEngine(block []byte) (map[string]any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(block))
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return asMap(v)
}

// TOMLEngine decodes TOML with github.com/pelletier/go-toml/v2.
func TOMLEngine(block []byte) (map[string]any, error) {
	var m map[string]any
	if err := toml.Unmarshal(block, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// asMap accepts a decoded document only if it is a mapping.
func asMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := Normalize(v).(map[string]any); ok {
		return m, nil
	}
	return nil, errors.Newf("top-level value is %T, want a mapping", v)
}

// Normalize converts map[any]any values produced by some YAML decoders into
// map[string]any, recursing through maps and slices.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = Normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = Normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = Normalize(val)
		}
		return t
	default:
		return v
	}
}
