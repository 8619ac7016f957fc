package analysis

import (
	"sync/atomic"
	"time"

	"codegraph/internal/graph"
	"codegraph/internal/metrics"
)

// Snapshot is one loaded graph index and where it came from.
type Snapshot struct {
	Index    *graph.Index
	Source   string
	LoadedAt time.Time
}

// Engine answers graph queries against the most recently loaded index.
// Loading builds a new index off to the side and swaps it in atomically, so
// a query sees either the old or the new index for its whole duration.
type Engine struct {
	current atomic.Pointer[Snapshot]
}

func NewEngine() *Engine {
	return &Engine{}
}

// Load indexes g and makes it the graph every later query reads.
func (e *Engine) Load(g *graph.Graph, source string) graph.Stats {
	snap := &Snapshot{
		Index:    graph.NewIndex(g),
		Source:   source,
		LoadedAt: time.Now(),
	}
	e.current.Store(snap)

	stats := snap.Index.Stats()
	metrics.GraphSymbols.Set(float64(stats.Symbols))
	metrics.GraphEdges.Set(float64(stats.Edges))
	return stats
}

// Current returns the loaded snapshot or ErrNoGraph.
func (e *Engine) Current() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNoGraph
	}
	return snap, nil
}

// Status describes the loaded graph.
type Status struct {
	Loaded   bool        `json:"loaded"`
	Source   string      `json:"source,omitempty"`
	LoadedAt time.Time   `json:"loadedAt,omitempty"`
	Stats    graph.Stats `json:"stats"`
}

func (e *Engine) Status() Status {
	snap := e.current.Load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Loaded:   true,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Stats:    snap.Index.Stats(),
	}
}

func observe(op string, start time.Time, err error) {
	metrics.QueryTotal.WithLabelValues(op, string(Code(err))).Inc()
	metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
