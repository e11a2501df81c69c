package fileutil

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/fmstage/internal/errors"
)

// Format is a metadata serialization format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	// FormatNone disables metadata output.
	FormatNone Format = "none"
)

// ErrUnknownFormat is returned for a format name not listed above.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat validates name and returns it as a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatYAML, FormatJSON, FormatTOML, FormatNone:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q (valid: yaml, json, toml, none)", name)
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Encode serializes v in format f. The output always ends in a newline.
func Encode(f Format, v any) (data []byte, err error) {
	switch f {
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshaling JSON")
		}
	case FormatYAML:
		data, err = encodeYAML(v)
		if err != nil {
			return nil, err
		}
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, "marshaling TOML")
		}
		data = buf.Bytes()
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}

	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

func encodeYAML(v any) (data []byte, err error) {
	// yaml.v3 panics on some unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "marshaling YAML")
	}
	return buf.Bytes(), nil
}
