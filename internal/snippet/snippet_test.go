package snippet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/analysis"
)

func newTestReader(t *testing.T) (*Reader, string) {
	t.Helper()
	root := t.TempDir()
	var lines []string
	for i := 1; i <= 600; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "x.ts"), []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	r, err := NewReader(root)
	require.NoError(t, err)
	return r, root
}

func TestReader_Read(t *testing.T) {
	r, _ := newTestReader(t)

	t.Run("Range", func(t *testing.T) {
		s, err := r.Read("src/x.ts", 2, 4)
		require.NoError(t, err)
		assert.Equal(t, []string{"line 2", "line 3", "line 4"}, s.Lines)
		assert.Equal(t, 4, s.End)
		assert.Equal(t, "line 2\nline 3\nline 4", s.Text())
	})

	t.Run("End past EOF is clamped", func(t *testing.T) {
		s, err := r.Read("src/x.ts", 599, 700)
		require.NoError(t, err)
		assert.Equal(t, []string{"line 599", "line 600"}, s.Lines)
		assert.Equal(t, 600, s.End)
	})

	t.Run("Exactly the limit", func(t *testing.T) {
		s, err := r.Read("src/x.ts", 1, MaxLines)
		require.NoError(t, err)
		assert.Len(t, s.Lines, MaxLines)
	})
}

func TestReader_Rejects(t *testing.T) {
	r, root := newTestReader(t)

	tests := []struct {
		name       string
		path       string
		start, end int
		code       analysis.ErrorCode
	}{
		{"Traversal", "../../etc/passwd", 1, 10, analysis.CodeAccessDenied},
		{"Nested traversal", "src/../../outside.txt", 1, 1, analysis.CodeAccessDenied},
		{"Absolute path outside root", filepath.Join(filepath.Dir(root), "elsewhere", "x.ts"), 1, 1, analysis.CodeAccessDenied},
		{"Too many lines", "src/x.ts", 1, MaxLines + 1, analysis.CodeRangeTooLarge},
		{"Zero start", "src/x.ts", 0, 5, analysis.CodeInvalidArgument},
		{"Inverted", "src/x.ts", 9, 3, analysis.CodeInvalidArgument},
		{"Missing file", "src/nope.ts", 1, 1, analysis.CodeNotFound},
		{"Directory", "src", 1, 1, analysis.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(tt.path, tt.start, tt.end)
			require.Error(t, err)
			assert.Equal(t, tt.code, analysis.Code(err))
		})
	}
}

func TestReader_AbsolutePathInsideRoot(t *testing.T) {
	r, root := newTestReader(t)

	for _, p := range []string{
		filepath.Join(root, "src", "x.ts"),
		filepath.Join(r.Root(), "src", "x.ts"),
	} {
		s, err := r.Read(p, 2, 3)
		require.NoError(t, err, p)
		assert.Equal(t, []string{"line 2", "line 3"}, s.Lines)
	}

	_, err := r.Read(filepath.Join(root, "src", "..", "..", "x.ts"), 1, 1)
	assert.ErrorIs(t, err, analysis.ErrAccessDenied)
}

func TestReader_SymlinkEscape(t *testing.T) {
	r, root := newTestReader(t)
	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret\n"), 0o644))
	if err := os.Symlink(outside, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := r.Read("link.txt", 1, 1)
	assert.ErrorIs(t, err, analysis.ErrAccessDenied)
}
