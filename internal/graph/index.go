package graph

// Index holds the lookup structures derived from a finished Graph.
// It is never mutated after NewIndex returns, so any number of goroutines
// may read from it. Reflecting a changed graph means building a new Index.
type Index struct {
	symbols  []Symbol
	edges    int
	byID     map[string]Symbol
	pos      map[string]int
	byName   map[string][]string
	byFile   map[string][]string
	outbound map[string][]Edge
	inbound  map[string][]Edge
}

// NewIndex builds the identifier, name, file, outbound and inbound maps.
// List values keep graph order.
func NewIndex(g *Graph) *Index {
	if g == nil {
		g = NewGraph()
	}

	idx := &Index{
		symbols:  g.Symbols,
		edges:    len(g.Edges),
		byID:     make(map[string]Symbol, len(g.Symbols)),
		pos:      make(map[string]int, len(g.Symbols)),
		byName:   make(map[string][]string),
		byFile:   make(map[string][]string),
		outbound: make(map[string][]Edge),
		inbound:  make(map[string][]Edge),
	}

	for _, s := range g.Symbols {
		if _, dup := idx.byID[s.ID]; dup {
			continue
		}
		idx.byID[s.ID] = s
		idx.pos[s.ID] = len(idx.pos)
		idx.byName[s.Name] = append(idx.byName[s.Name], s.ID)
		idx.byFile[s.File] = append(idx.byFile[s.File], s.ID)
	}

	for _, e := range g.Edges {
		idx.outbound[e.Src] = append(idx.outbound[e.Src], e)
		idx.inbound[e.Dst] = append(idx.inbound[e.Dst], e)
	}

	return idx
}

// Symbol returns the symbol with the given id.
func (i *Index) Symbol(id string) (Symbol, bool) {
	s, ok := i.byID[id]
	return s, ok
}

// Position returns the graph-order rank of id, or -1 when id is unknown.
func (i *Index) Position(id string) int {
	if p, ok := i.pos[id]; ok {
		return p
	}
	return -1
}

// IDsByName returns the ids of every symbol declared with name.
func (i *Index) IDsByName(name string) []string {
	return i.byName[name]
}

// IDsByFile returns the ids of every symbol whose File equals file.
func (i *Index) IDsByFile(file string) []string {
	return i.byFile[file]
}

func (i *Index) Outbound(id string) []Edge {
	return i.outbound[id]
}

func (i *Index) Inbound(id string) []Edge {
	return i.inbound[id]
}

// Symbols returns all symbols in graph order. Callers must not modify it.
func (i *Index) Symbols() []Symbol {
	return i.symbols
}

// Stats summarizes the indexed graph.
type Stats struct {
	Symbols int `json:"symbols"`
	Edges   int `json:"edges"`
	Files   int `json:"files"`
}

func (i *Index) Stats() Stats {
	return Stats{
		Symbols: len(i.byID),
		Edges:   i.edges,
		Files:   len(i.byFile),
	}
}
