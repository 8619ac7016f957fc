package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"codegraph/internal/analysis"
	"codegraph/internal/graph"
	"codegraph/internal/metrics"
	"codegraph/internal/snippet"
	"codegraph/internal/storage"
)

const (
	Name    = "codegraph"
	Version = "0.1.0"

	DefaultMaxDiffBytes = 100 * 1024
)

// Options tunes a Server. Zero values select defaults.
type Options struct {
	MaxDiffBytes int
	Logger       *slog.Logger
}

// Server exposes the query engine over MCP and HTTP and owns reloads.
type Server struct {
	engine       *analysis.Engine
	store        storage.GraphStore
	snippets     *snippet.Reader
	maxDiffBytes int
	logger       *slog.Logger
	validate     *validator.Validate

	mcpServer *mcp.Server
	reloadMu  sync.Mutex
}

func New(engine *analysis.Engine, store storage.GraphStore, snippets *snippet.Reader, opts Options) *Server {
	if opts.MaxDiffBytes <= 0 {
		opts.MaxDiffBytes = DefaultMaxDiffBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		engine:       engine,
		store:        store,
		snippets:     snippets,
		maxDiffBytes: opts.MaxDiffBytes,
		logger:       opts.Logger,
		validate:     validator.New(),
	}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	s.registerTools()
	s.registerResources()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcpServer
}

// RunStdio serves MCP over stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Reload reads the stored graph and swaps it in. On failure the previous
// graph stays loaded.
func (s *Server) Reload(ctx context.Context, trigger string) (graph.Stats, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	g, err := s.store.LoadGraph(ctx)
	if err != nil {
		metrics.Reloads.WithLabelValues(trigger, "error").Inc()
		s.logger.Error("reload failed",
			slog.String("trigger", trigger),
			slog.String("snapshot", s.store.Location()),
			slog.Any("error", err))
		if errors.Is(err, storage.ErrNoSnapshot) {
			return graph.Stats{}, fmt.Errorf("%w: %v", analysis.ErrNoGraph, err)
		}
		return graph.Stats{}, err
	}

	stats := s.engine.Load(g, s.store.Location())
	metrics.Reloads.WithLabelValues(trigger, "success").Inc()
	s.logger.Info("graph loaded",
		slog.String("trigger", trigger),
		slog.String("snapshot", s.store.Location()),
		slog.Int("symbols", stats.Symbols),
		slog.Int("edges", stats.Edges))
	return stats, nil
}

// errorBody is the JSON payload of every failed call.
type errorBody struct {
	Code    analysis.ErrorCode `json:"code"`
	Message string             `json:"message"`
}

func newErrorBody(err error) errorBody {
	return errorBody{Code: analysis.Code(err), Message: err.Error()}
}

func (s *Server) checkArgs(args any) error {
	if err := s.validate.Struct(args); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err)
	}
	return nil
}

func marshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"code":%q,"message":%q}`, analysis.CodeInternal, err.Error())
	}
	return string(b)
}
