package resolver

import (
	"codegraph/internal/extractor"
	"codegraph/internal/graph"
)

// Reason records how a call reference was settled.
type Reason string

const (
	ReasonSameFile    Reason = "same_file"
	ReasonFirstMatch  Reason = "first_match"
	ReasonNoCandidate Reason = "no_candidate"
)

type ResolveStats struct {
	Attempted  int            `json:"attempted"`
	Resolved   int            `json:"resolved"`
	Unresolved int            `json:"unresolved"`
	ByReason   map[Reason]int `json:"byReason"`
}

func newStats() ResolveStats {
	return ResolveStats{ByReason: make(map[Reason]int)}
}

// NameIndex maps a symbol name to every symbol carrying it, across languages
// and files, in first-seen order.
type NameIndex struct {
	byName map[string][]graph.Symbol
}

func NewNameIndex(symbols []graph.Symbol) *NameIndex {
	idx := &NameIndex{byName: make(map[string][]graph.Symbol)}
	for _, s := range symbols {
		idx.byName[s.Name] = append(idx.byName[s.Name], s)
	}
	return idx
}

// Candidates returns the symbols named name in insertion order.
func (n *NameIndex) Candidates(name string) []graph.Symbol {
	return n.byName[name]
}

// HeuristicResolver resolves calls by bare name with no scoping. A unique
// same-file candidate wins, then the first candidate seen anywhere. Calls
// with no candidate produce no edge.
type HeuristicResolver struct {
	names *NameIndex
}

func NewHeuristicResolver(names *NameIndex) *HeuristicResolver {
	return &HeuristicResolver{names: names}
}

func (r *HeuristicResolver) Resolve(calls []extractor.CallRef) ([]graph.Edge, ResolveStats) {
	stats := newStats()
	edges := make([]graph.Edge, 0, len(calls))

	for _, c := range calls {
		stats.Attempted++
		target, reason := r.pick(c)
		stats.ByReason[reason]++
		if reason == ReasonNoCandidate {
			stats.Unresolved++
			continue
		}
		stats.Resolved++
		edges = append(edges, graph.Edge{Src: c.ModID, Type: graph.EdgeCall, Dst: target.ID})
	}
	return edges, stats
}

func (r *HeuristicResolver) pick(c extractor.CallRef) (graph.Symbol, Reason) {
	cands := r.names.Candidates(c.CalleeName)
	if len(cands) == 0 {
		return graph.Symbol{}, ReasonNoCandidate
	}

	var local []graph.Symbol
	for _, s := range cands {
		if s.File == c.File {
			local = append(local, s)
		}
	}
	if len(local) == 1 {
		return local[0], ReasonSameFile
	}
	return cands[0], ReasonFirstMatch
}
