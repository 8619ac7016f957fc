package crawler

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// File is one source file found under the scanned root.
type File struct {
	Path string // absolute or root-joined path on disk
	Rel  string // forward-slash path relative to the root
}

// Crawler scans a directory for source files.
type Crawler struct {
	ignored   []string
	gitignore *ignore.GitIgnore
}

// NewCrawler creates a crawler for root. A .gitignore at the root, when
// present, is honored in addition to the built-in ignored directories.
func NewCrawler(root string) *Crawler {
	c := &Crawler{
		ignored: []string{".git", "node_modules", "vendor", "dist", "build", "__pycache__", ".venv", "venv"},
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err == nil {
		c.gitignore = gi
	}
	return c
}

// ScanProject walks root and calls onFile for every file whose extension is
// in exts. Files are visited in lexical order, so repeated scans of an
// unchanged tree see the same sequence.
func (c *Crawler) ScanProject(root string, exts []string, onFile func(File) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable entries below the root are skipped.
			return nil
		}

		rel := NormalizePath(root, path)

		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			if c.gitignore != nil && c.gitignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasExt(d.Name(), exts) {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".d.ts") {
			return nil
		}
		if c.gitignore != nil && c.gitignore.MatchesPath(rel) {
			return nil
		}

		return onFile(File{Path: path, Rel: rel})
	})
}

// Collect returns every matching file under root.
func (c *Crawler) Collect(root string, exts []string) ([]File, error) {
	var files []File
	err := c.ScanProject(root, exts, func(f File) error {
		files = append(files, f)
		return nil
	})
	return files, err
}

// NormalizePath returns path relative to root using forward slashes.
// Paths outside root are returned cleaned but otherwise unchanged.
func NormalizePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Clean(path)
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "\\", "/")
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ErrNotDir is returned when a scan root is not a directory.
var ErrNotDir = errors.New("not a directory")

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
