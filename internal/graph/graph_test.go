package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	g := NewGraph()
	g.AddSymbol(Symbol{ID: "mod-a", Kind: KindModule, Name: "a.ts", File: "a.ts", Language: "typescript"})
	g.AddSymbol(Symbol{ID: "fn-f", Kind: KindFunction, Name: "f", File: "a.ts", Language: "typescript"})
	g.AddSymbol(Symbol{ID: "cls-c", Kind: KindClass, Name: "C", File: "b.py", Language: "python"})
	g.AddSymbol(Symbol{ID: "m-run", Kind: KindMethod, Name: "run", File: "b.py", Language: "python", ParentID: "cls-c"})
	g.AddEdge(Edge{Src: "mod-a", Type: EdgeDefines, Dst: "fn-f"})
	g.AddEdge(Edge{Src: "cls-c", Type: EdgeMemberOf, Dst: "m-run"})
	g.AddEdge(Edge{Src: "m-run", Type: EdgeCall, Dst: "fn-f"})
	return g
}

func TestGraph_Dedup(t *testing.T) {
	g := sampleGraph()
	g.AddSymbol(Symbol{ID: "fn-f", Kind: KindFunction, Name: "shadow", File: "z.ts"})
	g.AddEdge(Edge{Src: "m-run", Type: EdgeCall, Dst: "fn-f"})
	g.AddEdge(Edge{Src: "m-run", Type: EdgeImport, Dst: "fn-f"})

	droppedSymbols, droppedEdges := g.Dedup()

	assert.Equal(t, 1, droppedSymbols)
	assert.Equal(t, 1, droppedEdges)
	assert.Len(t, g.Symbols, 4)
	assert.Len(t, g.Edges, 4)

	t.Run("first occurrence wins", func(t *testing.T) {
		assert.Equal(t, "f", g.Symbols[1].Name)
	})

	t.Run("idempotent", func(t *testing.T) {
		s, e := g.Dedup()
		assert.Zero(t, s)
		assert.Zero(t, e)
		assert.Len(t, g.Symbols, 4)
		assert.Len(t, g.Edges, 4)
	})

	t.Run("same src and dst with different type are distinct", func(t *testing.T) {
		var types []EdgeType
		for _, e := range g.Edges {
			if e.Src == "m-run" {
				types = append(types, e.Type)
			}
		}
		assert.Equal(t, []EdgeType{EdgeCall, EdgeImport}, types)
	})
}

func TestGraph_Validate(t *testing.T) {
	require.NoError(t, sampleGraph().Validate())

	g := sampleGraph()
	g.Symbols[0].Kind = "interface"
	assert.Error(t, g.Validate())

	g = sampleGraph()
	g.Edges[0].Type = "extends"
	assert.Error(t, g.Validate())

	g = sampleGraph()
	g.Edges[0].Dst = ""
	assert.Error(t, g.Validate())
}

func TestGraph_JSONShape(t *testing.T) {
	data, err := json.Marshal(NewGraph())
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbols":[],"edges":[]}`, string(data))

	s := Symbol{
		ID: "x", Kind: KindVariable, Name: "v", File: "a.py", Language: "python",
		Range: Range{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2},
	}
	data, err = json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "x", "kind": "variable", "name": "v", "file": "a.py", "language": "python",
		"range": {"startLine": 1, "startCol": 1, "endLine": 1, "endCol": 2}
	}`, string(data))
}

func TestEdgeType_IsReference(t *testing.T) {
	assert.True(t, EdgeCall.IsReference())
	assert.True(t, EdgeImport.IsReference())
	assert.False(t, EdgeDefines.IsReference())
	assert.False(t, EdgeMemberOf.IsReference())
	assert.False(t, EdgeType("bogus").IsReference())
}
