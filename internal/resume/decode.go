package resume

import (
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a resume record file or request body.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks a format from a file name or a media type. Anything not
// recognisably YAML is JSON.
func FormatOf(nameOrMediaType string) Format {
	if mt, _, err := mime.ParseMediaType(nameOrMediaType); err == nil {
		switch mt {
		case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
			return FormatYAML
		}
	}
	switch strings.ToLower(filepath.Ext(nameOrMediaType)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses data into the loosely typed tree JSON decoding produces
// (map[string]any, []any, float64, string, bool, nil), whatever the format.
func Decode(data []byte, format Format) (any, error) {
	var v any
	if format != FormatYAML {
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return v, nil
	}

	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	// Through JSON so numbers and maps take the same shapes as a JSON body.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("YAML document has no JSON equivalent: %w", err)
	}
	v = nil
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return v, nil
}
