package yamlutil

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// FrontMatter parses the raw text between front-matter delimiters.
// The caller strips the delimiter lines.
type FrontMatter struct{}

// ParseFrontMatter decodes raw as a YAML mapping.
// A blank block yields an empty map. A block that decodes to something other
// than a mapping is ignored with a warning. Syntax errors are returned.
func (FrontMatter) ParseFrontMatter(raw string) (map[string]any, []string, error) {
	data := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return data, nil, nil
	}
	if err := checkSize([]byte(raw)); err != nil {
		return nil, nil, err
	}

	var doc any
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil, fmt.Errorf("yamlutil: front matter: %w", err)
	}

	switch v := doc.(type) {
	case nil:
		return data, nil, nil
	case map[string]any:
		for k, val := range v {
			data[k] = val
		}
		return data, nil, nil
	default:
		return data, []string{fmt.Sprintf("front matter is a %s, not a mapping; ignored", kindOf(v))}, nil
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "scalar"
	}
}
