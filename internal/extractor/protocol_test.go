package extractor

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/graph"
)

func TestEmitter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	emit := NewEmitter(&buf)

	sym := graph.Symbol{
		ID: "s1", Kind: graph.KindFunction, Name: "f", File: "a.ts",
		Range:    graph.Range{StartLine: 1, StartCol: 1, EndLine: 3, EndCol: 1},
		Language: LanguageTypeScript,
	}
	emit.Symbol(sym)
	emit.Edge("m1", graph.EdgeDefines, "s1")
	emit.Call("g", "a.ts", "s1")
	emit.NameIndex("a.ts", map[string][]graph.Symbol{"f": {sym}})
	require.NoError(t, emit.Err())
	assert.Equal(t, 4, emit.Count())
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))

	out, err := ReadAll("ts", &buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "ts", out.Source)
	assert.Equal(t, []graph.Symbol{sym}, out.Symbols)
	assert.Equal(t, []graph.Edge{{Src: "m1", Type: graph.EdgeDefines, Dst: "s1"}}, out.Edges)
	assert.Equal(t, []CallRef{{CalleeName: "g", File: "a.ts", ModID: "s1"}}, out.Calls)
	assert.Equal(t, 4, out.Records)
	assert.Zero(t, out.Skipped)
}

func TestDecoder_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"symbol","symbol":{"id":"a","kind":"function","name":"a","file":"x.py","range":{"startLine":1,"startCol":1,"endLine":1,"endCol":5},"language":"python"}}`,
		`not json at all`,
		``,
		`{"type":"symbol","symbol":{"id":"b","kind":"struct","name":"b"}}`,
		`{"type":"edge","edge":{"src":"m","type":"defines"}}`,
		`{"type":"mystery"}`,
		`{"type":"call","calleeName":"a","file":"x.py","modId":"m"}`,
	}, "\n")

	out, err := ReadAll("py", strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, out.Symbols, 1)
	assert.Equal(t, "a", out.Symbols[0].ID)
	assert.Empty(t, out.Edges)
	assert.Len(t, out.Calls, 1)
	assert.Equal(t, 4, out.Skipped)
}

func TestDecoder_LineTooLong(t *testing.T) {
	long := `{"type":"call","calleeName":"` + strings.Repeat("x", 256) + `","file":"a","modId":"m"}`
	dec := NewDecoder(strings.NewReader(long+"\n"), 64)

	_, err := dec.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}

func TestDecoder_EOF(t *testing.T) {
	dec := NewDecoder(strings.NewReader(""), 0)
	_, err := dec.Next()
	assert.Equal(t, io.EOF, err)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestEmitter_StickyError(t *testing.T) {
	emit := NewEmitter(failingWriter{})
	emit.Call("a", "b", "c")
	emit.Call("d", "e", "f")
	assert.ErrorIs(t, emit.Err(), io.ErrClosedPipe)
	assert.Zero(t, emit.Count())
}

func TestDecoder_SchemaCheck(t *testing.T) {
	var buf bytes.Buffer
	emit := NewEmitter(&buf)
	sym := graph.Symbol{
		ID: "s1", Kind: graph.KindMethod, Name: "m", File: "a.py",
		Range:    graph.Range{StartLine: 2, StartCol: 5, EndLine: 3, EndCol: 0},
		Language: LanguagePython, ParentID: "c1",
	}
	emit.Symbol(sym)
	emit.Edge("c1", graph.EdgeMemberOf, "s1")
	emit.Call("g", "a.py", "s1")
	emit.NameIndex("a.py", map[string][]graph.Symbol{"m": {sym}})
	require.NoError(t, emit.Err())

	t.Run("emitted records conform", func(t *testing.T) {
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			assert.NoError(t, CheckRecord([]byte(line)), line)
		}
	})

	t.Run("checked decoder drops incomplete records", func(t *testing.T) {
		input := buf.String() + strings.Join([]string{
			// accepted by the structural check, rejected by the schema
			`{"type":"symbol","symbol":{"id":"x","kind":"function","name":"x"}}`,
			`{"type":"call","calleeName":"a","modId":"m"}`,
		}, "\n")

		loose, err := ReadAll("ext", strings.NewReader(input), 0)
		require.NoError(t, err)
		assert.Len(t, loose.Symbols, 2)
		assert.Len(t, loose.Calls, 2)

		strict, err := ReadAll("ext", strings.NewReader(input), 0, WithSchemaCheck())
		require.NoError(t, err)
		assert.Equal(t, []graph.Symbol{sym}, strict.Symbols)
		assert.Len(t, strict.Calls, 1)
		assert.Equal(t, 2, strict.Skipped)
	})
}
