package server

import (
	"context"
	"fmt"

	"codegraph/internal/analysis"
	"codegraph/internal/graph"
	"codegraph/internal/snippet"
)

// Tool arguments. The jsonschema tag is the field description; fields
// without omitempty are required by the inferred schema.

type ResolveSymbolArgs struct {
	Query string `json:"query" jsonschema:"symbol name or fragment, matched case-insensitively" validate:"max=1024"`
}

type ReferencesArgs struct {
	ID string `json:"id" jsonschema:"symbol id whose inbound call and import edges are returned" validate:"required,max=128"`
}

type RelatedArgs struct {
	ID string `json:"id" jsonschema:"symbol id" validate:"required,max=128"`
	K  int    `json:"k,omitempty" jsonschema:"maximum number of edges, 1 to 100 (default 10)" validate:"gte=0,lte=100"`
}

type ImpactArgs struct {
	Patch string `json:"patch" jsonschema:"unified diff text, at most 100 KB"`
}

type GraphStatusArgs struct{}

type ReloadArgs struct{}

type ReadSnippetArgs struct {
	Path  string `json:"path" jsonschema:"file path relative to the project root" validate:"required"`
	Start int    `json:"start" jsonschema:"first line, 1-based" validate:"gte=1"`
	End   int    `json:"end" jsonschema:"last line, inclusive; at most 500 lines after start" validate:"gte=1"`
}

type ReloadResult struct {
	Reloaded bool        `json:"reloaded"`
	Stats    graph.Stats `json:"stats"`
}

func (s *Server) resolveSymbol(args ResolveSymbolArgs) ([]analysis.ScoredSymbol, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, err
	}
	return s.engine.ResolveSymbol(args.Query)
}

func (s *Server) references(args ReferencesArgs) ([]analysis.Reference, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, err
	}
	return s.engine.References(args.ID)
}

func (s *Server) related(args RelatedArgs) ([]analysis.Reference, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, err
	}
	return s.engine.Related(args.ID, args.K)
}

func (s *Server) impact(args ImpactArgs) (*analysis.Impact, error) {
	if len(args.Patch) > s.maxDiffBytes {
		return nil, fmt.Errorf("%w: diff is %d bytes, limit is %d", analysis.ErrInputTooLarge, len(args.Patch), s.maxDiffBytes)
	}
	return s.engine.ImpactFromDiff(args.Patch)
}

func (s *Server) status() analysis.Status {
	return s.engine.Status()
}

func (s *Server) reload(ctx context.Context, trigger string) (*ReloadResult, error) {
	stats, err := s.Reload(ctx, trigger)
	if err != nil {
		return nil, err
	}
	return &ReloadResult{Reloaded: true, Stats: stats}, nil
}

func (s *Server) readSnippet(args ReadSnippetArgs) (*snippet.Snippet, error) {
	if s.snippets == nil {
		return nil, fmt.Errorf("%w: snippet root not configured", analysis.ErrNotFound)
	}
	if err := s.checkArgs(args); err != nil {
		return nil, err
	}
	return s.snippets.Read(args.Path, args.Start, args.End)
}
