package graph

import "fmt"

// Graph is the persisted aggregate: symbols unique by id and edges unique by
// (src, type, dst). It is treated as read-only once built.
type Graph struct {
	Symbols []Symbol `json:"symbols"`
	Edges   []Edge   `json:"edges"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Symbols: []Symbol{},
		Edges:   []Edge{},
	}
}

func (g *Graph) AddSymbol(s Symbol) {
	g.Symbols = append(g.Symbols, s)
}

func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// Dedup drops repeated symbols (by id) and edges (by triple). The first
// occurrence wins and relative order is preserved. It returns how many
// symbols and edges were removed.
func (g *Graph) Dedup() (droppedSymbols, droppedEdges int) {
	seenSymbols := make(map[string]struct{}, len(g.Symbols))
	symbols := make([]Symbol, 0, len(g.Symbols))
	for _, s := range g.Symbols {
		if _, ok := seenSymbols[s.ID]; ok {
			droppedSymbols++
			continue
		}
		seenSymbols[s.ID] = struct{}{}
		symbols = append(symbols, s)
	}

	seenEdges := make(map[EdgeKey]struct{}, len(g.Edges))
	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		k := e.Key()
		if _, ok := seenEdges[k]; ok {
			droppedEdges++
			continue
		}
		seenEdges[k] = struct{}{}
		edges = append(edges, e)
	}

	g.Symbols = symbols
	g.Edges = edges
	return droppedSymbols, droppedEdges
}

// Validate checks that every symbol and edge uses a known kind or type and
// carries its identifiers. Call edges may point at ids without metadata, so
// endpoints are not checked against the symbol set.
func (g *Graph) Validate() error {
	for i, s := range g.Symbols {
		if s.ID == "" {
			return fmt.Errorf("symbol %d: empty id", i)
		}
		if !s.Kind.Valid() {
			return fmt.Errorf("symbol %s: unknown kind %q", s.ID, s.Kind)
		}
	}
	for i, e := range g.Edges {
		if e.Src == "" || e.Dst == "" {
			return fmt.Errorf("edge %d: empty endpoint", i)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("edge %d: unknown type %q", i, e.Type)
		}
	}
	return nil
}
