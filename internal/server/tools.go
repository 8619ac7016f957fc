package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_symbol",
		Description: "Fuzzy symbol lookup by name: exact, prefix, then substring matches, top 20",
	}, s.handleResolveSymbol)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "references",
		Description: "Inbound call and import edges of a symbol, with both endpoints resolved",
	}, s.handleReferences)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "related",
		Description: "Outbound then inbound call and import edges of a symbol, truncated to k",
	}, s.handleRelated)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "impact_from_diff",
		Description: "Changed files, changed symbols and one-hop impacted files for a unified diff",
	}, s.handleImpact)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "graph_status",
		Description: "Whether a graph is loaded, where it came from and its size",
	}, s.handleGraphStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reload",
		Description: "Reload the graph snapshot from disk and swap it in",
	}, s.handleReload)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "read_snippet",
		Description: "Read up to 500 lines of a source file under the project root",
	}, s.handleReadSnippet)
}

func (s *Server) handleResolveSymbol(ctx context.Context, req *mcp.CallToolRequest, args ResolveSymbolArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.resolveSymbol(args)
	return toolResult(res, err)
}

func (s *Server) handleReferences(ctx context.Context, req *mcp.CallToolRequest, args ReferencesArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.references(args)
	return toolResult(res, err)
}

func (s *Server) handleRelated(ctx context.Context, req *mcp.CallToolRequest, args RelatedArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.related(args)
	return toolResult(res, err)
}

func (s *Server) handleImpact(ctx context.Context, req *mcp.CallToolRequest, args ImpactArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.impact(args)
	return toolResult(res, err)
}

func (s *Server) handleGraphStatus(ctx context.Context, req *mcp.CallToolRequest, args GraphStatusArgs) (*mcp.CallToolResult, any, error) {
	return toolResult(s.status(), nil)
}

func (s *Server) handleReload(ctx context.Context, req *mcp.CallToolRequest, args ReloadArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.reload(ctx, "tool")
	return toolResult(res, err)
}

func (s *Server) handleReadSnippet(ctx context.Context, req *mcp.CallToolRequest, args ReadSnippetArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.readSnippet(args)
	return toolResult(res, err)
}

// toolResult renders v as JSON text. Errors become IsError results carrying
// {code, message}, never protocol errors.
func toolResult(v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: marshal(newErrorBody(err))}},
			IsError: true,
		}, nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: marshal(v)}},
	}, nil, nil
}
