// Package manifest decodes content-declaration modules.
//
// A module declares items, assets and nested pipelines in YAML or HCL. The
// format is chosen by file extension. Decoding is pure: applying a module to
// a pipeline is the caller's job.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for module decoding.
var (
	ErrUnsupportedFormat = errors.New("unsupported module format")
	ErrInvalidModule     = errors.New("invalid module")
)

// Pipeline is one pipeline's declarations. Input and Output are relative to
// the enclosing pipeline; they are empty for the module root.
type Pipeline struct {
	Input     string     `yaml:"input"`
	Output    string     `yaml:"output"`
	Items     []Item     `yaml:"items"`
	Assets    []Asset    `yaml:"assets"`
	Pipelines []Pipeline `yaml:"pipelines"`
}

// Item declares one item. Without Text the item is read from its file.
type Item struct {
	Path string         `yaml:"path"`
	Text *string        `yaml:"text"`
	Data map[string]any `yaml:"data"`
}

// Asset declares one file copy.
type Asset struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Load reads and decodes a module file.
func Load(file string) (*Pipeline, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(file, data)
}

// Parse decodes module source. name selects the format by extension.
func Parse(name string, data []byte) (*Pipeline, error) {
	var (
		m   *Pipeline
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		m, err = parseYAML(data)
	case ".hcl":
		m, err = parseHCL(name, data)
	default:
		return nil, fmt.Errorf("%w: %q (use .yaml, .yml or .hcl)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if m.Input != "" || m.Output != "" {
		return nil, fmt.Errorf("%w: input and output are only valid on nested pipelines", ErrInvalidModule)
	}
	if err := m.validate("module"); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Pipeline) validate(where string) error {
	for i, it := range p.Items {
		if strings.TrimSpace(it.Path) == "" {
			return fmt.Errorf("%w: %s: item %d has no path", ErrInvalidModule, where, i)
		}
	}
	for i, a := range p.Assets {
		if a.Input == "" || a.Output == "" {
			return fmt.Errorf("%w: %s: asset %d needs input and output", ErrInvalidModule, where, i)
		}
	}
	for i := range p.Pipelines {
		child := &p.Pipelines[i]
		if child.Input == "" {
			return fmt.Errorf("%w: %s: pipeline %d has no input", ErrInvalidModule, where, i)
		}
		if child.Output == "" {
			child.Output = child.Input
		}
		if err := child.validate(where + "/" + child.Input); err != nil {
			return err
		}
	}
	return nil
}
