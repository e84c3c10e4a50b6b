package mdpipe

import (
	"context"

	"github.com/alnah/go-mdpipe/internal/render"
	"github.com/alnah/go-mdpipe/internal/yamlutil"
)

// Compile-time interface implementation checks.
var (
	_ Renderer          = (*render.Goldmark)(nil)
	_ FrontMatterParser = yamlutil.FrontMatter{}
	_ FileStore         = (*DirStore)(nil)
)

// Renderer converts Markdown lines to HTML. data is the item's data map.
type Renderer interface {
	Render(ctx context.Context, lines []string, data map[string]any) (string, error)
}

// FrontMatterParser decodes a front-matter block with its delimiter lines
// already removed. Warnings are non-fatal and surface through Warnings.
type FrontMatterParser interface {
	ParseFrontMatter(raw string) (map[string]any, []string, error)
}

// FileStore reads source files and writes build results.
//
// Read paths are relative to the source root and write paths relative to
// the destination root. ReadText must memoize, and Copy must reject two
// different inputs for the same output while treating a repeated pair as
// a no-op.
type FileStore interface {
	ReadText(ctx context.Context, path string) (string, error)
	WriteText(ctx context.Context, path, text string) error
	Copy(ctx context.Context, input, output string) error
}
