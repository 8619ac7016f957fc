package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCrawler_ScanProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "")
	writeFile(t, root, "src/b.tsx", "")
	writeFile(t, root, "src/types.d.ts", "")
	writeFile(t, root, "py/beta.py", "")
	writeFile(t, root, "node_modules/lib/index.ts", "")
	writeFile(t, root, "generated/out.ts", "")
	writeFile(t, root, "README.md", "")
	writeFile(t, root, ".gitignore", "generated/\n")

	c := NewCrawler(root)

	t.Run("TypeScript files", func(t *testing.T) {
		files, err := c.Collect(root, []string{".ts", ".tsx"})
		require.NoError(t, err)

		var rels []string
		for _, f := range files {
			rels = append(rels, f.Rel)
		}
		assert.Equal(t, []string{"src/a.ts", "src/b.tsx"}, rels)
	})

	t.Run("Python files", func(t *testing.T) {
		files, err := c.Collect(root, []string{".py"})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "py/beta.py", files[0].Rel)
		assert.Equal(t, filepath.Join(root, "py", "beta.py"), files[0].Path)
	})
}

func TestCrawler_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nope")
	c := NewCrawler(root)
	_, err := c.Collect(root, []string{".py"})
	assert.Error(t, err)
}

func TestNormalizePath(t *testing.T) {
	root := filepath.Join("tmp", "proj")
	assert.Equal(t, "src/x.ts", NormalizePath(root, filepath.Join(root, "src", "x.ts")))
	assert.Equal(t, ".", NormalizePath(root, root))
}
