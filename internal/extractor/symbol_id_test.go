package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codegraph/internal/graph"
)

func TestHashID(t *testing.T) {
	t.Run("Known value", func(t *testing.T) {
		assert.Equal(t, "9b44cf71e60ce7a1", HashID("function", "f", "a.ts", 1, 1))
		assert.Equal(t, "9b44cf71e60ce7a1", SymbolID(graph.KindFunction, "f", "a.ts", 1, 1))
	})

	t.Run("Deterministic", func(t *testing.T) {
		a := HashID("class", "Widget", "src/a.ts", 12, 8)
		b := HashID("class", "Widget", "src/a.ts", 12, 8)
		assert.Equal(t, a, b)
		assert.Len(t, a, 16)
	})

	t.Run("Nil renders empty", func(t *testing.T) {
		assert.Equal(t, HashID("a", "", "b"), HashID("a", nil, "b"))
	})

	t.Run("Position changes identity", func(t *testing.T) {
		assert.NotEqual(t,
			SymbolID(graph.KindFunction, "f", "a.ts", 1, 1),
			SymbolID(graph.KindFunction, "f", "a.ts", 2, 1))
	})
}

func TestModuleIDs(t *testing.T) {
	assert.Equal(t, "c7df00a70fc5b6fb", ModuleID(LanguagePython, "pkg/beta.py"))
	assert.Equal(t, "5dbadb501542d63b", ExternalModuleID("utils."))
}
