package git

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

var (
	gitHeader    = regexp.MustCompile(`^diff --git a/(.+?) b/(.+)$`)
	newHeader    = regexp.MustCompile(`^\+\+\+ b/(.+)$`)
	oldHeader    = regexp.MustCompile(`^--- a/(.+)$`)
	renameHeader = regexp.MustCompile(`^(?:rename|copy) (?:from|to) (.+)$`)
)

// ChangedFiles returns every path named in a `diff --git`, `+++ b/` or
// `--- a/` header of patch, sorted and without duplicates. Other lines are
// ignored, so arbitrary text yields an empty result rather than an error.
//
// A `diff --git` line whose two sides differ cannot be split reliably when a
// path contains " b/". Its split is used only if no `---`/`+++` or rename
// header of the same section names the files.
func ChangedFiles(patch string) []string {
	seen := make(map[string]bool)
	add := func(p string) {
		p = normalize(p)
		if p != "" && p != "/dev/null" {
			seen[p] = true
		}
	}

	var pending []string
	flush := func() {
		for _, p := range pending {
			add(p)
		}
		pending = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(patch))
	scanner.Buffer(make([]byte, 0, 64*1024), len(patch)+1)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if rest, ok := strings.CutPrefix(line, "diff --git "); ok {
			flush()
			if p, ok := samePath(rest); ok {
				add(p)
			} else if m := gitHeader.FindStringSubmatch(line); m != nil {
				pending = []string{m[1], m[2]}
			}
			continue
		}
		if m := newHeader.FindStringSubmatch(line); m != nil {
			pending = nil
			add(m[1])
			continue
		}
		if m := oldHeader.FindStringSubmatch(line); m != nil {
			pending = nil
			add(m[1])
			continue
		}
		if m := renameHeader.FindStringSubmatch(line); m != nil {
			pending = nil
			add(m[1])
		}
	}
	flush()

	files := make([]string, 0, len(seen))
	for p := range seen {
		files = append(files, p)
	}
	sort.Strings(files)
	return files
}

// samePath splits "a/P b/P" into P when both sides are identical.
func samePath(rest string) (string, bool) {
	n := len(rest)
	if n < 7 || n%2 == 0 {
		return "", false
	}
	mid := (n - 1) / 2
	if !strings.HasPrefix(rest, "a/") || rest[mid] != ' ' || rest[mid+1:mid+3] != "b/" {
		return "", false
	}
	if rest[2:mid] != rest[mid+3:] {
		return "", false
	}
	return rest[2:mid], true
}

// normalize drops the tab-separated timestamp some tools append to file
// headers and converts backslashes to forward slashes.
func normalize(p string) string {
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	return strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
}

// FileStat is the per-file line count of a diff.
type FileStat struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Changed int    `json:"changed"`
	Deleted int    `json:"deleted"`
}

// DiffStats parses patch as a multi-file unified diff and returns per-file
// counts. Text that is not a parsable diff yields nil.
func DiffStats(patch string) []FileStat {
	fds, err := godiff.ParseMultiFileDiff([]byte(patch))
	if err != nil {
		return nil
	}

	var stats []FileStat
	for _, fd := range fds {
		path := strings.TrimPrefix(fd.NewName, "b/")
		if fd.NewName == "/dev/null" || path == "" {
			path = strings.TrimPrefix(fd.OrigName, "a/")
		}
		s := fd.Stat()
		stats = append(stats, FileStat{
			Path:    normalize(path),
			Added:   int(s.Added),
			Changed: int(s.Changed),
			Deleted: int(s.Deleted),
		})
	}
	return stats
}

// Diff runs `git diff <baseRef>` inside root and returns the patch text.
func Diff(ctx context.Context, root, baseRef string) (string, error) {
	args := []string{"-C", root, "diff"}
	if baseRef != "" {
		args = append(args, baseRef)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git diff failed: %w: %s", err, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git diff failed: %w", err)
	}
	return string(output), nil
}
