package mdpipe

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/alnah/go-mdpipe/internal/logfields"
	"github.com/alnah/go-mdpipe/internal/render"
	"github.com/alnah/go-mdpipe/internal/tags"
)

// Asset is a file copied verbatim. Input is relative to the source root and
// Output to the destination root.
type Asset struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Output is the rendered result of an item.
type Output struct {
	Path string
	Text string
}

// Item is one unit of content.
//
// Source and Data belong to the item's own stage chain while it runs.
// Transforms of other items must Wait before reading them.
type Item struct {
	Source []string
	Data   map[string]any

	path       string
	file       string // source file, "" for inline text
	text       *string
	override   map[string]any
	importedBy []string // files of the importing items, outermost first
	pipeline   *Pipeline
	chain      *chain
	logger     *slog.Logger

	frontMatter string
	parseWarns  []string

	mu     sync.Mutex
	assets []Asset
	output *Output

	done chan struct{}
	err  error
}

// Path returns the family-wide key of the item, relative to the source root.
func (it *Item) Path() string { return it.path }

// Dir returns the directory of the item's path.
func (it *Item) Dir() string { return path.Dir(it.path) }

// Pipeline returns the pipeline that created the item.
func (it *Item) Pipeline() *Pipeline { return it.pipeline }

// Done is closed once the item's chain has settled.
func (it *Item) Done() <-chan struct{} { return it.done }

// Wait blocks until the item's chain has settled and returns its error.
func (it *Item) Wait(ctx context.Context) error {
	select {
	case <-it.done:
		return it.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Assets returns a copy of the item's declared assets.
func (it *Item) Assets() []Asset {
	it.mu.Lock()
	defer it.mu.Unlock()
	return slices.Clone(it.assets)
}

// AddAsset declares a file copy. Declaring the same pair again is a no-op.
// A different input for an output already claimed anywhere in the family
// fails with ErrConflictingAssetOutput.
func (it *Item) AddAsset(a Asset) error {
	a, err := cleanAsset(a)
	if err != nil {
		return err
	}
	fresh, err := it.pipeline.fam.declareAsset(a)
	if err != nil || !fresh {
		return err
	}

	it.mu.Lock()
	it.assets = append(it.assets, a)
	it.mu.Unlock()
	return nil
}

// Output returns the rendered output, if any.
func (it *Item) Output() (Output, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.output == nil {
		return Output{}, false
	}
	return *it.output, true
}

// SetOutput replaces the rendered output.
func (it *Item) SetOutput(o Output) {
	it.mu.Lock()
	it.output = &o
	it.mu.Unlock()
}

func (it *Item) clearOutput() {
	it.mu.Lock()
	it.output = nil
	it.mu.Unlock()
}

// ReplaceTags substitutes handlers over the source lines.
func (it *Item) ReplaceTags(ctx context.Context, handlers tags.Handlers) error {
	lines, err := tags.ReplaceLines(ctx, it.Source, handlers)
	if err != nil {
		return err
	}
	it.Source = lines
	return nil
}

// ReplaceOutputTags substitutes handlers over the output text.
// Items without output are left alone.
func (it *Item) ReplaceOutputTags(ctx context.Context, handlers tags.Handlers) error {
	out, ok := it.Output()
	if !ok {
		return nil
	}
	text, err := tags.Replace(ctx, out.Text, handlers)
	if err != nil {
		return err
	}
	out.Text = text
	it.SetOutput(out)
	return nil
}

func (it *Item) flag(name string) bool {
	v, _ := it.Data[name].(bool)
	return v
}

func (it *Item) applyHTMLAttrs() {
	out, ok := it.Output()
	if !ok {
		return
	}
	out.Text = tags.ApplyHTMLAttrs(out.Text)
	it.SetOutput(out)
}

// run waits for the pipeline to be ready, loads the item and applies its
// chain. It settles exactly once.
func (it *Item) run() {
	p := it.pipeline
	<-p.ready
	ctx := p.fam.runContext()

	err := it.load(ctx)
	if err == nil {
		err = it.chain.runStages(ctx, it)
	}
	if err != nil {
		it.logger.Debug("item failed", logfields.Error(err))
	} else {
		it.logger.Debug("item done")
	}

	it.err = err
	close(it.done)
	p.pending.done(err)
}

// load reads the raw text, splits off front matter and builds Data.
func (it *Item) load(ctx context.Context) error {
	var raw string
	if it.text != nil {
		raw = *it.text
	} else {
		text, err := it.pipeline.fam.store.ReadText(ctx, it.file)
		if err != nil {
			return fmt.Errorf("%s: %w", it.path, err)
		}
		raw = text
	}

	lines := render.SplitLines(raw)
	fm, body, ok := splitFrontMatter(lines)

	data := map[string]any{}
	if ok {
		it.frontMatter = fm
		parsed, warns, err := it.pipeline.fam.parser.ParseFrontMatter(fm)
		if err != nil {
			return fmt.Errorf("%s: front matter: %w", it.path, err)
		}
		maps.Copy(data, parsed)
		it.parseWarns = warns
	}
	maps.Copy(data, it.override)

	it.Source = body
	it.Data = data
	return nil
}

// resolvePath joins a reference found in the item to the item's directory.
func (it *Item) resolvePath(ref string) (string, error) {
	return cleanRel(path.Join(it.Dir(), ref))
}

// cleanRel cleans a slash-separated relative path and rejects absolute or
// root-escaping ones.
func cleanRel(p string) (string, error) {
	if p == "" || path.IsAbs(p) || strings.HasPrefix(p, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q escapes the root", ErrInvalidPath, p)
	}
	return clean, nil
}

func cleanAsset(a Asset) (Asset, error) {
	if a.Input == "" || a.Output == "" {
		return Asset{}, fmt.Errorf("%w: both input and output are required (input %q, output %q)", ErrInvalidAsset, a.Input, a.Output)
	}
	in, err := cleanRel(a.Input)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}
	// Output escape is reported when the destination is written.
	return Asset{Input: in, Output: path.Clean(a.Output)}, nil
}
