package mdpipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-mdpipe/internal/fileutil"
)

// DirStore is a FileStore reading from an fs.FS and writing below a
// destination directory.
//
// Reads are cached for the life of the store, and concurrent reads of the
// same path share one underlying read.
type DirStore struct {
	src  fs.FS
	dest string

	group singleflight.Group

	mu     sync.Mutex
	cache  map[string]string
	copies map[string]string // output -> input
}

// NewDirStore creates a store reading from src and writing below dest.
func NewDirStore(src fs.FS, dest string) *DirStore {
	return &DirStore{
		src:    src,
		dest:   dest,
		cache:  make(map[string]string),
		copies: make(map[string]string),
	}
}

// ReadText returns the content of a source-root-relative file.
// A missing file fails with ErrMissingFile.
func (s *DirStore) ReadText(ctx context.Context, name string) (string, error) {
	name, err := sourceName(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	text, ok := s.cache[name]
	s.mu.Unlock()
	if ok {
		return text, nil
	}

	ch := s.group.DoChan(name, func() (any, error) {
		s.mu.Lock()
		text, ok := s.cache[name]
		s.mu.Unlock()
		if ok {
			return text, nil
		}
		data, err := fs.ReadFile(s.src, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingFile, name)
			}
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		text = string(data)
		s.mu.Lock()
		s.cache[name] = text
		s.mu.Unlock()
		return text, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// WriteText writes text to a destination-relative path, creating parent
// directories. Paths resolving outside the destination fail with
// ErrOutputPathEscapesRoot.
func (s *DirStore) WriteText(ctx context.Context, name, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.destPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Copy copies a source file to a destination path. Copying a different
// input to an output already written fails with ErrConflictingAssetOutput;
// repeating the same pair does nothing.
func (s *DirStore) Copy(ctx context.Context, input, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := sourceName(input)
	if err != nil {
		return err
	}
	target, err := s.destPath(output)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if prev, ok := s.copies[target]; ok {
		s.mu.Unlock()
		if prev == in {
			return nil
		}
		return fmt.Errorf("%w: %s and %s both copy to %s", ErrConflictingAssetOutput, prev, in, output)
	}
	s.copies[target] = in
	s.mu.Unlock()

	return s.copyFile(in, target)
}

func (s *DirStore) copyFile(in, target string) error {
	src, err := s.src.Open(in)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingFile, in)
		}
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copying %s: %w", in, err)
	}
	return dst.Close()
}

// destPath maps a destination-relative path to the file system.
func (s *DirStore) destPath(name string) (string, error) {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrOutputPathEscapesRoot, name)
	}
	target := filepath.Join(s.dest, filepath.FromSlash(name))
	if target == filepath.Clean(s.dest) || !fileutil.IsPathUnder(s.dest, target) {
		return "", fmt.Errorf("%w: %q", ErrOutputPathEscapesRoot, name)
	}
	return target, nil
}

// sourceName cleans a source-root-relative path for fs.FS access.
func sourceName(name string) (string, error) {
	clean := path.Clean(name)
	if !fs.ValidPath(clean) || clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return clean, nil
}
