package localfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultSuffix = ".xml"

// Storage serves a corpus of filings from a local directory. Identifiers are
// slash-separated paths relative to the root; absolute paths are opened as is.
type Storage struct {
	basePath string
	suffix   string
}

func New(basePath, suffix string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/corpus"
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("stat corpus dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", basePath)
	}
	return &Storage{basePath: basePath, suffix: normalizeSuffix(suffix)}, nil
}

// List walks the root and returns every matching file, sorted.
func (s *Storage) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != s.basePath && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !matchesSuffix(d.Name(), s.suffix) {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path := key
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.basePath, filepath.FromSlash(key))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func normalizeSuffix(suffix string) string {
	if suffix == "" {
		return defaultSuffix
	}
	return strings.ToLower(suffix)
}

// matchesSuffix compares case-insensitively; suffix is already lowercased.
func matchesSuffix(name, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(name), suffix)
}
