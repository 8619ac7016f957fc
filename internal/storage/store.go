package storage

import (
	"context"

	"codegraph/internal/graph"
)

// GraphStore persists a finished graph and reads it back.
type GraphStore interface {
	// SaveGraph replaces the stored graph. A failed save leaves the previous
	// graph in place.
	SaveGraph(ctx context.Context, g *graph.Graph) error

	// LoadGraph returns the stored graph after validating it.
	LoadGraph(ctx context.Context) (*graph.Graph, error)

	// Location describes where the graph lives, for logs and status output.
	Location() string
}
