package fileutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/fmstage/internal/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YML", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"toml", FormatTOML, false},
		{"none", FormatNone, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode_RoundTrips(t *testing.T) {
	in := map[string]any{"title": "Hello", "draft": true}

	tests := []struct {
		format    Format
		unmarshal func([]byte, any) error
	}{
		{FormatYAML, yaml.Unmarshal},
		{FormatJSON, json.Unmarshal},
		{FormatTOML, toml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			data, err := Encode(tt.format, in)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !strings.HasSuffix(string(data), "\n") {
				t.Errorf("output should end in a newline: %q", data)
			}

			var got map[string]any
			if err := tt.unmarshal(data, &got); err != nil {
				t.Fatalf("decoding output: %v\n%s", err, data)
			}
			if got["title"] != "Hello" || got["draft"] != true {
				t.Errorf("decoded = %v, want %v", got, in)
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	for _, f := range []Format{FormatNone, Format("xml")} {
		if _, err := Encode(f, map[string]any{}); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Encode(%q) error = %v, want ErrUnknownFormat", f, err)
		}
	}
}

func TestEncode_YAMLPanicRecovered(t *testing.T) {
	// Functions cannot be marshaled; yaml.v3 panics on them.
	_, err := Encode(FormatYAML, map[string]any{"fn": func() {}})
	if err == nil {
		t.Fatal("expected error for unmarshalable value")
	}
}

func TestFormat_Ext(t *testing.T) {
	if got := FormatTOML.Ext(); got != "toml" {
		t.Errorf("Ext() = %q, want %q", got, "toml")
	}
}
