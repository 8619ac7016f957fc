package snippet

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codegraph/internal/analysis"
)

// MaxLines is the widest span a single read may return.
const MaxLines = 500

// Snippet is a contiguous run of source lines.
type Snippet struct {
	Path  string   `json:"path"`
	Start int      `json:"start"`
	End   int      `json:"end"`
	Lines []string `json:"lines"`
}

// Text joins the lines with newlines.
func (s *Snippet) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Reader serves line ranges from files under a fixed root.
type Reader struct {
	root string
	// base is root as configured, before symlink resolution. Absolute
	// request paths may be spelled against either form.
	base string
}

// NewReader resolves root to an absolute, symlink-free path.
func NewReader(root string) (*Reader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("snippet root: %w", err)
	}
	return &Reader{root: resolved, base: abs}, nil
}

func (r *Reader) Root() string {
	return r.root
}

// Read returns lines start..end (1-based, inclusive) of path, which is taken
// relative to the root unless absolute. Ends past EOF are clamped.
func (r *Reader) Read(path string, start, end int) (*Snippet, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("%w: bad line range %d-%d", analysis.ErrInvalidArgument, start, end)
	}
	if end-start+1 > MaxLines {
		return nil, fmt.Errorf("%w: %d lines requested, limit is %d", analysis.ErrRangeTooLarge, end-start+1, MaxLines)
	}

	full, err := r.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", analysis.ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	snip := &Snippet{Path: filepath.ToSlash(path), Start: start, Lines: []string{}}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; scanner.Scan(); n++ {
		if n < start {
			continue
		}
		if n > end {
			break
		}
		snip.Lines = append(snip.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	snip.End = start + len(snip.Lines) - 1
	return snip, nil
}

// resolve joins path onto the root and rejects anything that ends up outside
// it, before or after following symlinks.
func (r *Reader) resolve(path string) (string, error) {
	if path == "" || strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: empty or invalid path", analysis.ErrInvalidArgument)
	}
	var joined string
	if filepath.IsAbs(path) {
		joined = filepath.Clean(path)
		if !within(r.root, joined) && !within(r.base, joined) {
			return "", fmt.Errorf("%w: %s", analysis.ErrAccessDenied, path)
		}
	} else {
		joined = filepath.Join(r.root, filepath.FromSlash(path))
		if !r.contains(joined) {
			return "", fmt.Errorf("%w: %s", analysis.ErrAccessDenied, path)
		}
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", analysis.ErrNotFound, path)
		}
		return "", err
	}
	if !r.contains(resolved) {
		return "", fmt.Errorf("%w: %s", analysis.ErrAccessDenied, path)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", analysis.ErrInvalidArgument, path)
	}
	return resolved, nil
}

func (r *Reader) contains(p string) bool {
	return within(r.root, p)
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
