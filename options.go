package mdpipe

import (
	"io"
	"log/slog"
	"maps"
	"os"
	"time"

	"github.com/alnah/go-mdpipe/internal/render"
	"github.com/alnah/go-mdpipe/internal/yamlutil"
)

// DefaultDest is the destination directory of the default FileStore.
const DefaultDest = "dist"

// Option configures a new pipeline family.
type Option func(*family)

// WithFileStore sets the store used for reads, writes and copies.
func WithFileStore(fs FileStore) Option {
	return func(f *family) {
		f.store = fs
	}
}

// WithRenderer replaces the Markdown renderer.
func WithRenderer(r Renderer) Option {
	return func(f *family) {
		f.renderer = r
	}
}

// WithFrontMatterParser replaces the front-matter parser.
func WithFrontMatterParser(p FrontMatterParser) Option {
	return func(f *family) {
		f.parser = p
	}
}

// WithLogger sets the structured logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(f *family) {
		f.logger = l
	}
}

// WithClock sets the time source used by the date tag.
// Panics if now is nil (programmer error).
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("mdpipe: WithClock requires a non-nil function")
	}
	return func(f *family) {
		f.now = now
	}
}

func (f *family) applyDefaults() {
	if f.store == nil {
		f.store = NewDirStore(os.DirFS("."), DefaultDest)
	}
	if f.renderer == nil {
		f.renderer = render.NewGoldmark()
	}
	if f.parser == nil {
		f.parser = yamlutil.FrontMatter{}
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if f.now == nil {
		f.now = time.Now
	}
}

// ItemOption configures an item created by Add.
type ItemOption func(*itemConfig)

type itemConfig struct {
	text       *string
	data       map[string]any
	file       string
	importedBy []string
}

// WithText supplies the item's raw text, so no file is read.
// Front matter in text is parsed like file content.
func WithText(text string) ItemOption {
	return func(c *itemConfig) {
		c.text = &text
	}
}

// WithData supplies data overrides. They win over front matter.
func WithData(data map[string]any) ItemOption {
	return func(c *itemConfig) {
		if c.data == nil {
			c.data = make(map[string]any, len(data))
		}
		maps.Copy(c.data, data)
	}
}
