package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// documentTemplate wraps a rendered fragment in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// HighlightHook returns extra chroma options for a fenced code block in the
// given language ("" when the block has no info string).
type HighlightHook func(lang string) []chromahtml.Option

// Options configures a Goldmark renderer.
type Options struct {
	HardWraps   bool
	UnsafeHTML  bool // required for comment tags to survive into the output
	Highlight   bool
	Style       string // chroma style; empty = CSS classes only
	LineNumbers bool
	Standalone  bool // wrap fragments in a full HTML5 document
	Hook        HighlightHook
}

// DefaultOptions returns the options used by NewGoldmark.
func DefaultOptions() Options {
	return Options{
		UnsafeHTML: true,
		Highlight:  true,
	}
}

// Goldmark renders Markdown lines to HTML using goldmark (pure Go).
type Goldmark struct {
	md           goldmark.Markdown
	preprocessor *Preprocessor
	standalone   bool
}

// NewGoldmark creates a renderer with GFM, footnotes, heading ids and
// syntax highlighting.
func NewGoldmark() *Goldmark {
	return NewGoldmarkWithOptions(DefaultOptions())
}

// NewGoldmarkWithOptions creates a renderer from explicit options.
func NewGoldmarkWithOptions(opts Options) *Goldmark {
	extensions := []goldmark.Extender{
		extension.GFM,      // Tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1] footnotes
	}
	if opts.Highlight {
		extensions = append(extensions, newHighlighting(opts))
	}

	rendererOpts := []renderer.Option{
		goldmarkhtml.WithXHTML(), // Self-closing tags
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, goldmarkhtml.WithHardWraps())
	}
	if opts.UnsafeHTML {
		rendererOpts = append(rendererOpts, goldmarkhtml.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // ids are needed by the toc tag
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	return &Goldmark{
		md:           md,
		preprocessor: &Preprocessor{},
		standalone:   opts.Standalone,
	}
}

// newHighlighting builds the goldmark-highlighting extension. Without a
// style, chroma emits CSS classes so the stylesheet controls colors.
func newHighlighting(opts Options) goldmark.Extender {
	formatOpts := []chromahtml.Option{chromahtml.WithLineNumbers(opts.LineNumbers)}
	hlOpts := []highlighting.Option{}

	if opts.Style != "" {
		hlOpts = append(hlOpts, highlighting.WithStyle(opts.Style))
	} else {
		formatOpts = append(formatOpts, chromahtml.WithClasses(true))
	}
	hlOpts = append(hlOpts, highlighting.WithFormatOptions(formatOpts...))

	if opts.Hook != nil {
		hook := opts.Hook
		hlOpts = append(hlOpts, highlighting.WithCodeBlockOptions(
			func(c highlighting.CodeBlockContext) []chromahtml.Option {
				lang, _ := c.Language()
				return hook(string(lang))
			},
		))
	}

	return highlighting.NewHighlighting(hlOpts...)
}

// Render converts Markdown lines to HTML. data["title"] names standalone
// documents. Supports context cancellation via goroutine + select pattern
// since goldmark doesn't natively support context.
func (g *Goldmark) Render(ctx context.Context, lines []string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content := g.preprocessor.Preprocess(strings.Join(lines, "\n"))

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := g.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		out := ConvertMarkPlaceholders(buf.String())
		if g.standalone {
			out = fmt.Sprintf(documentTemplate, html.EscapeString(documentTitle(data)), out)
		}
		done <- result{html: out}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// RenderString renders a single inline string.
func (g *Goldmark) RenderString(ctx context.Context, s string, data map[string]any) (string, error) {
	return g.Render(ctx, strings.Split(s, "\n"), data)
}

func documentTitle(data map[string]any) string {
	if title, ok := data["title"].(string); ok && title != "" {
		return title
	}
	return "Document"
}
