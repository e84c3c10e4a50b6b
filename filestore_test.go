package mdpipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
)

// ---------------------------------------------------------------------------
// TestDirStore_ReadText - Memoized reads
// ---------------------------------------------------------------------------

func TestDirStore_ReadText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "existing file", path: "docs/a.md", want: "# A"},
		{name: "unclean path", path: "docs/../docs/a.md", want: "# A"},
		{name: "missing file", path: "docs/none.md", wantErr: ErrMissingFile},
		{name: "escaping path", path: "../secret", wantErr: ErrInvalidPath},
		{name: "absolute path", path: "/etc/passwd", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewDirStore(fstest.MapFS{"docs/a.md": file("# A")}, t.TempDir())
			got, err := store.ReadText(context.Background(), tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ReadText(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadText(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ReadText(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDirStore_ReadTextIsMemoized(t *testing.T) {
	t.Parallel()

	src := newCountingFS(fstest.MapFS{"shared.md": file("shared")})
	store := NewDirStore(src, t.TempDir())

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := store.ReadText(context.Background(), "shared.md")
			if err == nil && text != "shared" {
				err = errors.New("unexpected text " + text)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("ReadText() unexpected error: %v", err)
		}
	}
	if n := src.count("shared.md"); n != 1 {
		t.Errorf("shared.md opened %d times, want 1", n)
	}
}

func TestDirStore_ReadTextCancelled(t *testing.T) {
	t.Parallel()

	store := NewDirStore(fstest.MapFS{"a.md": file("a")}, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context may still win the race against a fast read.
	if _, err := store.ReadText(ctx, "a.md"); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("ReadText() error = %v, want nil or context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestDirStore_WriteText - Destination confinement
// ---------------------------------------------------------------------------

func TestDirStore_WriteText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "top level", path: "index.html"},
		{name: "nested directories", path: "a/b/c.html"},
		{name: "unclean but inside", path: "a/../b.html"},
		{name: "parent escape", path: "../outside.html", wantErr: ErrOutputPathEscapesRoot},
		{name: "nested escape", path: "a/../../outside.html", wantErr: ErrOutputPathEscapesRoot},
		{name: "absolute", path: "/tmp/x.html", wantErr: ErrOutputPathEscapesRoot},
		{name: "destination itself", path: ".", wantErr: ErrOutputPathEscapesRoot},
		{name: "empty", path: "", wantErr: ErrOutputPathEscapesRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dest := t.TempDir()
			store := NewDirStore(fstest.MapFS{}, dest)
			err := store.WriteText(context.Background(), tt.path, "<p>x</p>")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("WriteText(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteText(%q) unexpected error: %v", tt.path, err)
			}
			got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(tt.path)))
			if err != nil {
				t.Fatalf("reading written file: %v", err)
			}
			if string(got) != "<p>x</p>" {
				t.Errorf("written content = %q", got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDirStore_Copy - Conflicts and deduplication
// ---------------------------------------------------------------------------

func TestDirStore_Copy(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"p/one.png": file("P"),
		"q/one.png": file("Q"),
	}

	t.Run("copies and creates directories", func(t *testing.T) {
		t.Parallel()

		dest := t.TempDir()
		store := NewDirStore(files, dest)
		if err := store.Copy(context.Background(), "p/one.png", "img/deep/one.png"); err != nil {
			t.Fatalf("Copy() unexpected error: %v", err)
		}
		got, err := os.ReadFile(filepath.Join(dest, "img", "deep", "one.png"))
		if err != nil {
			t.Fatalf("reading copy: %v", err)
		}
		if string(got) != "P" {
			t.Errorf("copied content = %q, want %q", got, "P")
		}
	})

	t.Run("same pair is copied once", func(t *testing.T) {
		t.Parallel()

		src := newCountingFS(files)
		store := NewDirStore(src, t.TempDir())
		for range 3 {
			if err := store.Copy(context.Background(), "p/one.png", "img/one.png"); err != nil {
				t.Fatalf("Copy() unexpected error: %v", err)
			}
		}
		if n := src.count("p/one.png"); n != 1 {
			t.Errorf("p/one.png opened %d times, want 1", n)
		}
	})

	t.Run("different input for same output", func(t *testing.T) {
		t.Parallel()

		store := NewDirStore(files, t.TempDir())
		if err := store.Copy(context.Background(), "p/one.png", "img/one.png"); err != nil {
			t.Fatalf("Copy() unexpected error: %v", err)
		}
		err := store.Copy(context.Background(), "q/one.png", "img/one.png")
		if !errors.Is(err, ErrConflictingAssetOutput) {
			t.Errorf("Copy() error = %v, want ErrConflictingAssetOutput", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		store := NewDirStore(files, t.TempDir())
		err := store.Copy(context.Background(), "nope.png", "img/nope.png")
		if !errors.Is(err, ErrMissingFile) {
			t.Errorf("Copy() error = %v, want ErrMissingFile", err)
		}
	})

	t.Run("escaping output", func(t *testing.T) {
		t.Parallel()

		store := NewDirStore(files, t.TempDir())
		err := store.Copy(context.Background(), "p/one.png", "../one.png")
		if !errors.Is(err, ErrOutputPathEscapesRoot) {
			t.Errorf("Copy() error = %v, want ErrOutputPathEscapesRoot", err)
		}
	})
}
