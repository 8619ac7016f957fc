package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"codegraph/internal/graph"
)

// ErrNoSnapshot is returned by LoadGraph when nothing has been saved yet.
var ErrNoSnapshot = errors.New("snapshot not found")

// SnapshotStore keeps the graph as a single JSON document on disk. Paths
// ending in ".zst" are zstd-compressed.
type SnapshotStore struct {
	path string
}

var _ GraphStore = (*SnapshotStore)(nil)

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Location() string {
	return s.path
}

func (s *SnapshotStore) compressed() bool {
	return strings.HasSuffix(s.path, ".zst")
}

// SaveGraph writes to a temp file in the target directory and renames it over
// the snapshot, so readers never see a partial document.
func (s *SnapshotStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	if g == nil {
		return errors.New("save snapshot: nil graph")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := s.encode(tmp, g); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	committed = true
	return nil
}

func (s *SnapshotStore) encode(w io.Writer, g *graph.Graph) error {
	if !s.compressed() {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(g); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// LoadGraph reads and validates the snapshot.
func (s *SnapshotStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrNoSnapshot)
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if s.compressed() {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed snapshot: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	g := graph.NewGraph()
	if err := json.NewDecoder(r).Decode(g); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if g.Symbols == nil {
		g.Symbols = []graph.Symbol{}
	}
	if g.Edges == nil {
		g.Edges = []graph.Edge{}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", s.path, err)
	}
	return g, nil
}
