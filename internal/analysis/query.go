package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"codegraph/internal/git"
	"codegraph/internal/graph"
)

const (
	maxResolveResults = 20
	DefaultRelatedK   = 10
	MaxRelatedK       = 100
)

// ScoredSymbol is a fuzzy-match candidate.
type ScoredSymbol struct {
	graph.Symbol
	Score int `json:"score"`
}

// Reference is an edge with both endpoints resolved.
type Reference struct {
	Edge graph.Edge   `json:"edge"`
	Src  graph.Symbol `json:"src"`
	Dst  graph.Symbol `json:"dst"`
}

// SymbolSummary is the short form of a symbol used in impact reports.
type SymbolSummary struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind graph.Kind `json:"kind"`
	File string     `json:"file"`
}

// Impact is the one-hop blast radius of a diff.
type Impact struct {
	ChangedFiles   []string        `json:"changedFiles"`
	ChangedSymbols []SymbolSummary `json:"changedSymbols"`
	ImpactedFiles  []string        `json:"impactedFiles"`
}

// ResolveSymbol ranks symbols by case-insensitive match against query:
// exact 100, prefix 80, substring 60. Ties keep graph order.
func (e *Engine) ResolveSymbol(query string) (res []ScoredSymbol, err error) {
	defer func(start time.Time) { observe("resolve_symbol", start, err) }(time.Now())

	snap, err := e.Current()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}

	res = []ScoredSymbol{}
	for _, s := range snap.Index.Symbols() {
		if score := matchScore(strings.ToLower(s.Name), q); score > 0 {
			res = append(res, ScoredSymbol{Symbol: s, Score: score})
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score > res[j].Score
	})
	if len(res) > maxResolveResults {
		res = res[:maxResolveResults]
	}
	return res, nil
}

func matchScore(name, q string) int {
	switch {
	case name == q:
		return 100
	case strings.HasPrefix(name, q):
		return 80
	case strings.Contains(name, q):
		return 60
	}
	return 0
}

// References returns the inbound call and import edges of id. Unknown ids
// yield an empty list.
func (e *Engine) References(id string) (res []Reference, err error) {
	defer func(start time.Time) { observe("references", start, err) }(time.Now())

	snap, err := e.Current()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	return resolveEdges(snap.Index, snap.Index.Inbound(id), -1), nil
}

// Related returns up to k call and import edges touching id, outbound first
// and then inbound. k == 0 selects DefaultRelatedK.
func (e *Engine) Related(id string, k int) (res []Reference, err error) {
	defer func(start time.Time) { observe("related", start, err) }(time.Now())

	snap, err := e.Current()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	if k == 0 {
		k = DefaultRelatedK
	}
	if k < 1 || k > MaxRelatedK {
		return nil, fmt.Errorf("%w: k must be between 1 and %d, got %d", ErrInvalidArgument, MaxRelatedK, k)
	}

	// A self-loop is both outbound and inbound; keep it once.
	idx := snap.Index
	out := idx.Outbound(id)
	seen := make(map[graph.EdgeKey]bool, len(out))
	edges := make([]graph.Edge, 0, len(out)+len(idx.Inbound(id)))
	for _, edge := range out {
		seen[edge.Key()] = true
		edges = append(edges, edge)
	}
	for _, edge := range idx.Inbound(id) {
		if !seen[edge.Key()] {
			edges = append(edges, edge)
		}
	}
	return resolveEdges(idx, edges, k), nil
}

// resolveEdges keeps call and import edges whose endpoints are both known,
// stopping after limit results when limit is positive.
func resolveEdges(idx *graph.Index, edges []graph.Edge, limit int) []Reference {
	out := []Reference{}
	for _, edge := range edges {
		if !edge.Type.IsReference() {
			continue
		}
		src, ok := idx.Symbol(edge.Src)
		if !ok {
			continue
		}
		dst, ok := idx.Symbol(edge.Dst)
		if !ok {
			continue
		}
		out = append(out, Reference{Edge: edge, Src: src, Dst: dst})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// ImpactFromDiff finds the symbols declared in the files a patch touches and
// the files one call or import edge away from them.
func (e *Engine) ImpactFromDiff(patch string) (res *Impact, err error) {
	defer func(start time.Time) { observe("impact_from_diff", start, err) }(time.Now())

	snap, err := e.Current()
	if err != nil {
		return nil, err
	}
	idx := snap.Index

	res = &Impact{
		ChangedFiles:   git.ChangedFiles(patch),
		ChangedSymbols: []SymbolSummary{},
		ImpactedFiles:  []string{},
	}
	if len(res.ChangedFiles) == 0 {
		return res, nil
	}

	// 1. Symbols declared in changed files, in graph order
	var changed []graph.Symbol
	for _, f := range res.ChangedFiles {
		for _, id := range idx.IDsByFile(f) {
			if s, ok := idx.Symbol(id); ok {
				changed = append(changed, s)
			}
		}
	}
	sort.SliceStable(changed, func(i, j int) bool {
		return idx.Position(changed[i].ID) < idx.Position(changed[j].ID)
	})
	changedIDs := make([]string, 0, len(changed))
	for _, s := range changed {
		res.ChangedSymbols = append(res.ChangedSymbols, SymbolSummary{ID: s.ID, Name: s.Name, Kind: s.Kind, File: s.File})
		changedIDs = append(changedIDs, s.ID)
	}

	// 2. Endpoints of every call/import edge touching them
	impacted := make(map[string]bool)
	for _, id := range changedIDs {
		for _, list := range [][]graph.Edge{idx.Outbound(id), idx.Inbound(id)} {
			for _, edge := range list {
				if edge.Type.IsReference() {
					impacted[edge.Src] = true
					impacted[edge.Dst] = true
				}
			}
		}
	}

	// 3. Owning files
	files := make(map[string]bool)
	for id := range impacted {
		if s, ok := idx.Symbol(id); ok && s.File != "" {
			files[s.File] = true
		}
	}
	for f := range files {
		res.ImpactedFiles = append(res.ImpactedFiles, f)
	}
	sort.Strings(res.ImpactedFiles)
	return res, nil
}
