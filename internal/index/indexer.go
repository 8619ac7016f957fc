package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"codegraph/internal/extractor"
	"codegraph/internal/graph"
	"codegraph/internal/metrics"
	"codegraph/internal/resolver"
)

// Indexer runs extractor sources and merges their output into one graph.
type Indexer struct {
	sources      []Source
	maxLineBytes int
	logger       *slog.Logger
}

// NewIndexer creates an indexer over sources. Merge order follows the order
// given here.
func NewIndexer(sources []Source, maxLineBytes int, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		sources:      sources,
		maxLineBytes: maxLineBytes,
		logger:       logger,
	}
}

// SourceReport summarizes what one source contributed.
type SourceReport struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
	Symbols int    `json:"symbols"`
	Edges   int    `json:"edges"`
	Calls   int    `json:"calls"`
}

// Report describes one ingestion run.
type Report struct {
	RunID          string                `json:"runId"`
	Sources        []SourceReport        `json:"sources"`
	Resolve        resolver.ResolveStats `json:"resolve"`
	DroppedSymbols int                   `json:"droppedSymbols"`
	DroppedEdges   int                   `json:"droppedEdges"`
	Symbols        int                   `json:"symbols"`
	Edges          int                   `json:"edges"`
	Duration       time.Duration         `json:"duration"`
}

// BuildGraph drains every source concurrently, then merges sequentially.
// Any source failure fails the whole run and no graph is returned.
func (i *Indexer) BuildGraph(ctx context.Context) (*graph.Graph, *Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := i.logger.With(slog.String("run_id", report.RunID))

	outputs := make([]*extractor.Output, len(i.sources))
	g, gctx := errgroup.WithContext(ctx)
	for n, src := range i.sources {
		g.Go(func() error {
			out, err := drain(gctx, src, i.maxLineBytes)
			if err != nil {
				return err
			}
			outputs[n] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		log.Error("ingestion failed", slog.Any("error", err))
		return nil, nil, fmt.Errorf("ingest: %w", err)
	}

	for _, out := range outputs {
		report.Sources = append(report.Sources, SourceReport{
			Name:    out.Source,
			Records: out.Records,
			Skipped: out.Skipped,
			Symbols: len(out.Symbols),
			Edges:   len(out.Edges),
			Calls:   len(out.Calls),
		})
		metrics.IngestRecords.WithLabelValues(out.Source).Add(float64(out.Records))
		metrics.IngestSkipped.WithLabelValues(out.Source).Add(float64(out.Skipped))
		if out.Skipped > 0 {
			log.Warn("skipped malformed extractor lines",
				slog.String("source", out.Source),
				slog.Int("skipped", out.Skipped))
		}
	}

	res := Merge(outputs...)
	report.Resolve = res.Resolve
	report.DroppedSymbols = res.DroppedSymbols
	report.DroppedEdges = res.DroppedEdges
	report.Symbols = len(res.Graph.Symbols)
	report.Edges = len(res.Graph.Edges)
	report.Duration = time.Since(start)

	for reason, n := range res.Resolve.ByReason {
		metrics.CallResolutions.WithLabelValues(string(reason)).Add(float64(n))
	}
	metrics.IngestRuns.WithLabelValues("success").Inc()
	metrics.IngestDuration.Observe(report.Duration.Seconds())

	log.Info("ingestion finished",
		slog.Int("symbols", report.Symbols),
		slog.Int("edges", report.Edges),
		slog.Int("calls_resolved", res.Resolve.Resolved),
		slog.Int("calls_unresolved", res.Resolve.Unresolved),
		slog.Duration("duration", report.Duration))

	return res.Graph, report, nil
}

// drain reads a source to the end and then waits for it. Decode errors close
// the stream first so the producer cannot block on a full pipe.
func drain(ctx context.Context, src Source, maxLineBytes int) (*extractor.Output, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}

	var opts []extractor.DecoderOption
	if c, ok := src.(checkedSource); ok && c.CheckRecords() {
		opts = append(opts, extractor.WithSchemaCheck())
	}
	out, readErr := extractor.ReadAll(src.Name(), rc, maxLineBytes, opts...)
	rc.Close()
	waitErr := src.Wait()

	if readErr != nil {
		return nil, fmt.Errorf("%s: read: %w", src.Name(), readErr)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("%s: extractor terminated abnormally: %w", src.Name(), waitErr)
	}
	return out, nil
}

// MergeResult is the outcome of Merge.
type MergeResult struct {
	Graph          *graph.Graph
	Resolve        resolver.ResolveStats
	DroppedSymbols int
	DroppedEdges   int
}

// Merge concatenates extractor outputs in order, resolves every call
// reference against the name index of all symbols and deduplicates.
func Merge(outputs ...*extractor.Output) MergeResult {
	g := graph.NewGraph()
	var calls []extractor.CallRef
	for _, out := range outputs {
		if out == nil {
			continue
		}
		g.Symbols = append(g.Symbols, out.Symbols...)
		g.Edges = append(g.Edges, out.Edges...)
		calls = append(calls, out.Calls...)
	}

	r := resolver.NewHeuristicResolver(resolver.NewNameIndex(g.Symbols))
	callEdges, stats := r.Resolve(calls)
	g.Edges = append(g.Edges, callEdges...)

	ds, de := g.Dedup()
	return MergeResult{Graph: g, Resolve: stats, DroppedSymbols: ds, DroppedEdges: de}
}
