package provisioning

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Document is a local file to upload, keyed by its base name.
type Document struct {
	Path string
	Key  string
}

// FindDocuments walks dir and returns every file whose slash-separated path
// relative to dir matches pattern. A leading "**/" also matches files at the
// top level. Two matches with the same base name are an error because both
// would upload to the same key.
func FindDocuments(dir, pattern string) ([]Document, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	var top glob.Glob
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if top, err = glob.Compile(rest, '/'); err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}

	var docs []Document
	seen := make(map[string]string)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !g.Match(rel) && (top == nil || !top.Match(rel)) {
			return nil
		}
		key := d.Name()
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%s and %s would both upload as %q", prev, path, key)
		}
		seen[key] = path
		docs = append(docs, Document{Path: path, Key: key})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}
