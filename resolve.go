package mdpipe

import (
	"context"
	"fmt"
	"html"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/inful/mdfp"

	"github.com/alnah/go-mdpipe/internal/dateutil"
	"github.com/alnah/go-mdpipe/internal/render"
	"github.com/alnah/go-mdpipe/internal/tags"
)

// Built-in tag names.
const (
	TagImport     = "import"
	TagInsert     = "insert"
	TagDate       = "date"
	TagHTMLImport = "html-import"
	TagHTMLInsert = "html-insert"
	TagTOC        = "toc"
)

// Default depth range of the toc tag.
const (
	defaultTOCMin = 2
	defaultTOCMax = 3
)

// builtinChain is the chain every family starts from.
func builtinChain() *chain {
	return (&chain{}).
		with(StageResolve, resolveBuiltin).
		with(StageOutput, renderBuiltin).
		with(StageOutputResolve, outputResolveBuiltin)
}

// resolveBuiltin enqueues required items, declares assets, resolves an
// "auto" date and substitutes the import, insert and date tags.
func resolveBuiltin(ctx context.Context, it *Item) error {
	if err := resolveRequire(it); err != nil {
		return err
	}
	if err := resolveAssets(it); err != nil {
		return err
	}
	if v, ok := it.Data["date"].(string); ok {
		date, err := dateutil.ResolveAuto(v, it.pipeline.fam.started)
		if err != nil {
			return err
		}
		it.Data["date"] = date
	}
	return it.ReplaceTags(ctx, tags.Handlers{
		TagImport: it.importTag,
		TagInsert: it.insertTag,
		TagDate:   it.dateTag,
	})
}

// resolveRequire adds every required file as an item before the chain
// goes on. Paths already registered are skipped.
func resolveRequire(it *Item) error {
	refs, err := stringList(it.Data["require"])
	if err != nil {
		return fmt.Errorf("require: %w", err)
	}
	for _, ref := range refs {
		key, err := it.resolvePath(ref)
		if err != nil {
			return fmt.Errorf("require: %w", err)
		}
		if err := it.pipeline.require(key); err != nil {
			return fmt.Errorf("require: %w", err)
		}
	}
	return nil
}

// resolveAssets declares data.assets. A string is resolved against the
// item's directory and copied to the matching place under the pipeline's
// output directory. A record must carry both input and output, taken as
// root-relative.
func resolveAssets(it *Item) error {
	raw, ok := it.Data["assets"]
	if !ok || raw == nil {
		return nil
	}

	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case string:
		entries = []any{v}
	default:
		return fmt.Errorf("%w: assets must be a list, got %T", ErrInvalidAsset, raw)
	}

	for _, entry := range entries {
		var a Asset
		switch v := entry.(type) {
		case string:
			in, err := it.resolvePath(v)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidAsset, err)
			}
			a = Asset{Input: in, Output: it.pipeline.outputFor(in)}
		case map[string]any:
			in, _ := v["input"].(string)
			out, _ := v["output"].(string)
			a = Asset{Input: in, Output: out}
		default:
			return fmt.Errorf("%w: unsupported entry %T", ErrInvalidAsset, entry)
		}
		if err := it.AddAsset(a); err != nil {
			return err
		}
	}
	return nil
}

// importTag reads src relative to the item, runs it as a partial item
// through the importer's chain and returns its final source lines.
func (it *Item) importTag(ctx context.Context, tag tags.Tag) (any, error) {
	src, ok := tag.Attrs.Get("src")
	if !ok || src == "" {
		return nil, fmt.Errorf("missing src attribute")
	}
	file, err := it.resolvePath(src)
	if err != nil {
		return nil, err
	}

	ancestry := append(slices.Clone(it.importedBy), it.sourceFile())
	if slices.Contains(ancestry, file) {
		return nil, fmt.Errorf("%w: %s", ErrImportCycle, strings.Join(append(ancestry, file), " -> "))
	}

	fam := it.pipeline.fam
	key := fmt.Sprintf("%s#%d", file, fam.importSeq.Add(1))
	imported, err := it.pipeline.addItem(key, itemConfig{
		file:       file,
		data:       map[string]any{"partial": true},
		importedBy: ancestry,
	}, it.chain)
	if err != nil {
		return nil, err
	}
	if err := imported.Wait(ctx); err != nil {
		return nil, err
	}
	return imported.Source, nil
}

func (it *Item) sourceFile() string {
	if it.file != "" {
		return it.file
	}
	return it.path
}

// insertTag returns data[prop], or the default attribute when absent.
func (it *Item) insertTag(_ context.Context, tag tags.Tag) (any, error) {
	prop, ok := tag.Attrs.Get("prop")
	if !ok {
		return nil, fmt.Errorf("missing prop attribute")
	}
	if v, ok := it.Data[prop]; ok && v != nil {
		return stringify(v), nil
	}
	return tag.Attrs.Value("default", ""), nil
}

// dateTag formats the run start time.
func (it *Item) dateTag(_ context.Context, tag tags.Tag) (any, error) {
	return dateutil.Format(it.pipeline.fam.started, tag.Attrs.Value("format", ""))
}

// renderBuiltin stamps the fingerprint and renders the source lines.
func renderBuiltin(ctx context.Context, it *Item) error {
	it.Data[mdfp.FingerprintField] = mdfp.CalculateFingerprintFromParts(it.frontMatter, strings.Join(it.Source, "\n"))

	out, err := it.outputPath()
	if err != nil {
		return err
	}
	text, err := it.pipeline.fam.renderer.Render(ctx, it.Source, it.Data)
	if err != nil {
		return err
	}
	it.SetOutput(Output{Path: out, Text: text})
	return nil
}

// outputPath is data.output under the pipeline's output directory, or the
// item path mapped from input to output directory with an .html extension.
func (it *Item) outputPath() (string, error) {
	if v, ok := it.Data["output"]; ok && v != nil {
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("output must be a non-empty path, got %v", v)
		}
		return path.Join(it.pipeline.output, s), nil
	}

	out := it.pipeline.outputFor(it.path)
	switch ext := path.Ext(out); ext {
	case ".md", ".markdown":
		out = strings.TrimSuffix(out, ext) + ".html"
	}
	return out, nil
}

// outputFor maps a source-root path under p's input directory to the same
// relative place under p's output directory.
func (p *Pipeline) outputFor(key string) string {
	rel := key
	if p.input != "." {
		rel = relSlash(p.input, key)
	}
	return path.Join(p.output, rel)
}

// relSlash is filepath.Rel for clean slash paths.
func relSlash(base, target string) string {
	if target == base {
		return "."
	}
	if strings.HasPrefix(target, base+"/") {
		return target[len(base)+1:]
	}
	up := strings.Count(base, "/") + 1
	return strings.Repeat("../", up) + target
}

// outputResolveBuiltin substitutes the html-import, html-insert and toc
// tags over the output text.
func outputResolveBuiltin(ctx context.Context, it *Item) error {
	return it.ReplaceOutputTags(ctx, tags.Handlers{
		TagHTMLImport: it.htmlImportTag,
		TagHTMLInsert: it.htmlInsertTag,
		TagTOC:        it.tocTag,
	})
}

// htmlImportTag returns the raw text of src. It is not scanned for tags.
func (it *Item) htmlImportTag(ctx context.Context, tag tags.Tag) (any, error) {
	src, ok := tag.Attrs.Get("src")
	if !ok || src == "" {
		return nil, fmt.Errorf("missing src attribute")
	}
	file, err := it.resolvePath(src)
	if err != nil {
		return nil, err
	}
	return it.pipeline.fam.store.ReadText(ctx, file)
}

// htmlInsertTag is insert with HTML escaping unless raw is set.
func (it *Item) htmlInsertTag(ctx context.Context, tag tags.Tag) (any, error) {
	v, err := it.insertTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if tag.Attrs.Has("raw") {
		return v, nil
	}
	return html.EscapeString(v.(string)), nil
}

// tocTag builds a table of contents from the item's own headings.
func (it *Item) tocTag(_ context.Context, tag tags.Tag) (any, error) {
	out, _ := it.Output()
	lo, err := intAttr(tag.Attrs, "min", defaultTOCMin)
	if err != nil {
		return nil, err
	}
	hi, err := intAttr(tag.Attrs, "max", defaultTOCMax)
	if err != nil {
		return nil, err
	}
	if lo < 1 || hi > 6 || lo > hi {
		return nil, fmt.Errorf("invalid depth range %d-%d", lo, hi)
	}
	return render.TOC(out.Text, lo, hi, tag.Attrs.Value("title", "")), nil
}

func intAttr(attrs tags.Attrs, name string, fallback int) (int, error) {
	v, ok := attrs.Get(name)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return n, nil
}

// stringList accepts nil, a string or a list of strings.
func stringList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a path, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a path or list of paths, got %T", v)
	}
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
