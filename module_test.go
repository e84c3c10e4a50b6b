package mdpipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func writeModule(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("writing module: %v", err)
	}
	return file
}

// ---------------------------------------------------------------------------
// TestLoadModule - Declaration modules
// ---------------------------------------------------------------------------

func TestLoadModule(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"index.md":         file("home"),
		"docs/a.md":        file("a"),
		"docs/img/x.png":   file("X"),
		"static/style.css": file("css"),
	}

	modules := map[string]string{
		"site.yaml": `
items:
  - path: index.md
    data: {title: Home}
  - path: about.md
    text: "about <!--{{insert prop=title}}-->"
    data: {title: About}
assets:
  - {input: static/style.css, output: style.css}
pipelines:
  - input: docs
    output: manual
    items:
      - path: a.md
    assets:
      - {input: img/x.png, output: img/x.png}
`,
		"site.hcl": `
item "index.md" {
  data = { title = "Home" }
}
item "about.md" {
  text = "about <!--{{insert prop=title}}-->"
  data = { title = "About" }
}
asset {
  input  = "static/style.css"
  output = "style.css"
}
pipeline "docs" {
  output = "manual"
  item "a.md" {}
  asset {
    input  = "img/x.png"
    output = "img/x.png"
  }
}
`,
	}

	for name, content := range modules {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, dest := newTestPipeline(t, files)
			if err := p.LoadModule(context.Background(), writeModule(t, name, content)); err != nil {
				t.Fatalf("LoadModule() unexpected error: %v", err)
			}

			mustJoin(t, p)
			if _, err := flush(t, p); err != nil {
				t.Fatalf("Flush() unexpected error: %v", err)
			}

			var paths []string
			for _, it := range p.Items() {
				paths = append(paths, it.Path())
			}
			if diff := cmp.Diff([]string{"about.md", "docs/a.md", "index.md"}, paths); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}

			about, _ := p.Lookup("about.md")
			if got := outputText(t, about); got != "about About" {
				t.Errorf("about output = %q", got)
			}
			for rel, content := range map[string]string{
				"index.html":       "home",
				"manual/a.html":    "a",
				"manual/img/x.png": "X",
				"style.css":        "css",
				"about.html":       "about About",
			} {
				if got := readDest(t, dest, rel); got != content {
					t.Errorf("%s = %q, want %q", rel, got, content)
				}
			}
		})
	}
}

func TestLoadModule_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "unsupported extension",
			file:    "site.toml",
			content: "x = 1",
		},
		{
			name:    "unknown field",
			file:    "site.yaml",
			content: "itemz: []",
		},
		{
			name:    "duplicate item",
			file:    "site.yaml",
			content: "items:\n  - path: a.md\n  - path: a.md\n",
			wantErr: ErrDuplicateItemPath,
		},
		{
			name:    "escaping pipeline",
			file:    "site.yaml",
			content: "pipelines:\n  - input: ../up\n",
			wantErr: ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, _ := newTestPipeline(t, fstest.MapFS{"a.md": file("a")})
			err := p.LoadModule(context.Background(), writeModule(t, tt.file, tt.content))
			if !errors.Is(err, ErrModuleLoad) {
				t.Fatalf("LoadModule() error = %v, want ErrModuleLoad", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadModule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestPipeline(t, fstest.MapFS{})
		err := p.LoadModule(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
		if !errors.Is(err, ErrModuleLoad) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("LoadModule() error = %v, want ErrModuleLoad wrapping os.ErrNotExist", err)
		}
	})
}

func TestAddAsset_Validation(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, fstest.MapFS{})
	tests := []struct {
		name    string
		asset   Asset
		wantErr error
	}{
		{name: "missing output", asset: Asset{Input: "a.png"}, wantErr: ErrInvalidAsset},
		{name: "escaping input", asset: Asset{Input: "../a.png", Output: "a.png"}, wantErr: ErrInvalidAsset},
		{name: "valid", asset: Asset{Input: "a.png", Output: "img/a.png"}},
		{name: "same pair again", asset: Asset{Input: "a.png", Output: "img/a.png"}},
		{name: "conflict", asset: Asset{Input: "b.png", Output: "img/a.png"}, wantErr: ErrConflictingAssetOutput},
	}

	// Sequential: cases build on the family's asset table.
	for _, tt := range tests {
		err := p.AddAsset(tt.asset)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s: AddAsset() unexpected error: %v", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: AddAsset() error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}
