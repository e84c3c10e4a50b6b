package mdpipe

import (
	"context"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"
)

// ---------------------------------------------------------------------------
// Test Doubles
// ---------------------------------------------------------------------------

// joinRenderer renders by joining lines, keeping outputs predictable.
type joinRenderer struct{}

func (joinRenderer) Render(_ context.Context, lines []string, _ map[string]any) (string, error) {
	return strings.Join(lines, "\n"), nil
}

// countingFS counts Open calls per name.
type countingFS struct {
	fs.FS

	mu    sync.Mutex
	opens map[string]int
}

func newCountingFS(files fstest.MapFS) *countingFS {
	return &countingFS{FS: files, opens: make(map[string]int)}
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.mu.Lock()
	c.opens[name]++
	c.mu.Unlock()
	return c.FS.Open(name)
}

func (c *countingFS) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[name]
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestPipeline returns a root pipeline over files with a temp destination
// and the join renderer. Later options override the defaults.
func newTestPipeline(t *testing.T, files fstest.MapFS, opts ...Option) (*Pipeline, string) {
	t.Helper()
	dest := t.TempDir()
	base := []Option{
		WithFileStore(NewDirStore(files, dest)),
		WithRenderer(joinRenderer{}),
	}
	return New(append(base, opts...)...), dest
}

func file(text string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(text)}
}

func mustAdd(t *testing.T, p *Pipeline, rel string, opts ...ItemOption) *Item {
	t.Helper()
	it, err := p.Add(rel, opts...)
	if err != nil {
		t.Fatalf("Add(%q) unexpected error: %v", rel, err)
	}
	return it
}

func mustUse(t *testing.T, p *Pipeline, stage Stage, fns ...Transform) {
	t.Helper()
	if err := p.Use(stage, fns...); err != nil {
		t.Fatalf("Use(%s) unexpected error: %v", stage, err)
	}
}

func mustJoin(t *testing.T, p *Pipeline) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Join(ctx); err != nil {
		t.Fatalf("Join() unexpected error: %v", err)
	}
}

func joinErr(t *testing.T, p *Pipeline) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Join(ctx)
}

func outputText(t *testing.T, it *Item) string {
	t.Helper()
	out, ok := it.Output()
	if !ok {
		t.Fatalf("item %s has no output", it.Path())
	}
	return out.Text
}
