package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePatch = `diff --git a/src/x.ts b/src/x.ts
index 83db48f..bf269f4 100644
--- a/src/x.ts
+++ b/src/x.ts
@@ -1,3 +1,4 @@
 export function run() {
-  return 1;
+  const v = 2;
+  return v;
 }
`

func TestChangedFiles(t *testing.T) {
	t.Run("Single file", func(t *testing.T) {
		assert.Equal(t, []string{"src/x.ts"}, ChangedFiles(samplePatch))
	})

	t.Run("Rename keeps both sides", func(t *testing.T) {
		patch := "diff --git a/old/name.py b/new/name.py\nsimilarity index 100%\n"
		assert.Equal(t, []string{"new/name.py", "old/name.py"}, ChangedFiles(patch))
	})

	t.Run("New and deleted files", func(t *testing.T) {
		patch := "--- /dev/null\n+++ b/added.ts\n--- a/removed.py\t2024-01-01 00:00:00\n+++ /dev/null\n"
		assert.Equal(t, []string{"added.ts", "removed.py"}, ChangedFiles(patch))
	})

	t.Run("Backslashes and CRLF", func(t *testing.T) {
		patch := "diff --git a/src\\win.ts b/src\\win.ts\r\n"
		assert.Equal(t, []string{"src/win.ts"}, ChangedFiles(patch))
	})

	t.Run("Path containing b/ segment", func(t *testing.T) {
		patch := "diff --git a/lib b/x.ts b/lib b/x.ts\nindex 1..2 100644\n--- a/lib b/x.ts\n+++ b/lib b/x.ts\n@@ -1 +1 @@\n-a\n+b\n"
		assert.Equal(t, []string{"lib b/x.ts"}, ChangedFiles(patch))
	})

	t.Run("Ambiguous rename settled by rename headers", func(t *testing.T) {
		patch := "diff --git a/x b/y.py b/z.py\nsimilarity index 100%\nrename from x b/y.py\nrename to z.py\n"
		assert.Equal(t, []string{"x b/y.py", "z.py"}, ChangedFiles(patch))
	})

	t.Run("Unequal sides without file headers", func(t *testing.T) {
		patch := "diff --git a/a.ts b/b.ts\nold mode 100644\nnew mode 100755\ndiff --git a/c.py b/c.py\n"
		assert.Equal(t, []string{"a.ts", "b.ts", "c.py"}, ChangedFiles(patch))
	})

	t.Run("No headers", func(t *testing.T) {
		assert.Empty(t, ChangedFiles("hello\n+just text\n@@ -1 +1 @@\n"))
		assert.Empty(t, ChangedFiles(""))
	})
}

func TestDiffStats(t *testing.T) {
	stats := DiffStats(samplePatch)
	require.Len(t, stats, 1)
	assert.Equal(t, "src/x.ts", stats[0].Path)
	assert.Equal(t, 1, stats[0].Added)
	assert.Equal(t, 1, stats[0].Changed)
	assert.Equal(t, 0, stats[0].Deleted)
}

func TestDiff(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	file := filepath.Join(root, "a.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))
	run("init", "-q")
	run("add", "a.py")
	run("commit", "-q", "-m", "init")
	require.NoError(t, os.WriteFile(file, []byte("x = 2\n"), 0o644))

	patch, err := Diff(context.Background(), root, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, ChangedFiles(patch))

	_, err = Diff(context.Background(), root, "no-such-ref")
	assert.Error(t, err)
}
