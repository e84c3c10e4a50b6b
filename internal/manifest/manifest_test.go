package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mdpipe/internal/manifest"
)

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// TestParse - YAML and HCL produce the same declarations
// ---------------------------------------------------------------------------

const yamlModule = `
items:
  - path: index.md
    data:
      title: Home
      partial: false
  - path: about.md
    text: "# About"
assets:
  - input: img/logo.png
    output: img/logo.png
pipelines:
  - input: blog
    items:
      - path: first.md
    pipelines:
      - input: drafts
        output: hidden
`

const hclModule = `
item "index.md" {
  data = {
    title   = "Home"
    partial = false
  }
}

item "about.md" {
  text = "# About"
}

asset {
  input  = "img/logo.png"
  output = "img/logo.png"
}

pipeline "blog" {
  item "first.md" {}

  pipeline "drafts" {
    output = "hidden"
  }
}
`

func wantModule() *manifest.Pipeline {
	return &manifest.Pipeline{
		Items: []manifest.Item{
			{Path: "index.md", Data: map[string]any{"title": "Home", "partial": false}},
			{Path: "about.md", Text: strPtr("# About")},
		},
		Assets: []manifest.Asset{{Input: "img/logo.png", Output: "img/logo.png"}},
		Pipelines: []manifest.Pipeline{
			{
				Input:  "blog",
				Output: "blog",
				Items:  []manifest.Item{{Path: "first.md"}},
				Pipelines: []manifest.Pipeline{
					{Input: "drafts", Output: "hidden"},
				},
			},
		},
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		src  string
	}{
		{name: "yaml", file: "site.yaml", src: yamlModule},
		{name: "yml extension", file: "site.yml", src: yamlModule},
		{name: "hcl", file: "site.hcl", src: hclModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := manifest.Parse(tt.file, []byte(tt.src))
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if diff := cmp.Diff(wantModule(), got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		src     string
		wantErr error
	}{
		{name: "unknown extension", file: "site.json", src: "{}", wantErr: manifest.ErrUnsupportedFormat},
		{name: "item without path", file: "m.yaml", src: "items:\n  - text: hi", wantErr: manifest.ErrInvalidModule},
		{name: "asset without output", file: "m.yaml", src: "assets:\n  - input: a.png", wantErr: manifest.ErrInvalidModule},
		{name: "pipeline without input", file: "m.yaml", src: "pipelines:\n  - output: x", wantErr: manifest.ErrInvalidModule},
		{name: "root input", file: "m.yaml", src: "input: docs", wantErr: manifest.ErrInvalidModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := manifest.Parse(tt.file, []byte(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		src  string
	}{
		{name: "yaml unknown field", file: "m.yaml", src: "itemz: []"},
		{name: "hcl syntax", file: "m.hcl", src: `item "a.md" {`},
		{name: "hcl unknown block", file: "m.hcl", src: `page "a.md" {}`},
		{name: "hcl data not an object", file: "m.hcl", src: `item "a.md" { data = "x" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := manifest.Parse(tt.file, []byte(tt.src)); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}

func TestParse_HCLDataTypes(t *testing.T) {
	t.Parallel()

	src := `
item "a.md" {
  data = {
    count   = 3
    ratio   = 1.5
    require = ["b.md", "c.md"]
    nested  = { on = true }
  }
}
`
	got, err := manifest.Parse("m.hcl", []byte(src))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	want := map[string]any{
		"count":   3,
		"ratio":   1.5,
		"require": []any{"b.md", "c.md"},
		"nested":  map[string]any{"on": true},
	}
	if diff := cmp.Diff(want, got.Items[0].Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "site.hcl")
	if err := os.WriteFile(file, []byte(hclModule), 0644); err != nil {
		t.Fatalf("failed to write module: %v", err)
	}
	got, err := manifest.Load(file)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(got.Items) != 2 {
		t.Errorf("Load() items = %d, want 2", len(got.Items))
	}

	if _, err := manifest.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() missing file error = %v, want os.ErrNotExist", err)
	}
}
