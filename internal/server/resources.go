package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"codegraph/internal/analysis"
)

const (
	snippetScheme = "codegraph://snippet/"
	schemaScheme  = "codegraph://schemas/"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: snippetScheme + "{+path}{?start,end}",
		Name:        "Source Snippet",
		Description: "Lines start..end of a file under the project root, at most 500 lines",
		MIMEType:    "text/plain",
	}, s.handleSnippetResource)

	schemas := buildSchemaMap()
	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: schemaScheme + "{tool}",
		Name:        "Tool Schema",
		Description: "JSON schema for the named tool's arguments",
		MIMEType:    "application/schema+json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		tool := strings.TrimPrefix(uri, schemaScheme)
		schemaJSON, ok := schemas[tool]
		if !ok {
			return nil, fmt.Errorf("unknown tool schema: %q", tool)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      uri,
				MIMEType: "application/schema+json",
				Text:     schemaJSON,
			}},
		}, nil
	})
}

func (s *Server) handleSnippetResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	args, err := parseSnippetURI(uri)
	if err != nil {
		return nil, err
	}
	snip, err := s.readSnippet(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", analysis.Code(err), err.Error())
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     snip.Text(),
		}},
	}, nil
}

// parseSnippetURI splits codegraph://snippet/<path>?start=N&end=M.
func parseSnippetURI(uri string) (ReadSnippetArgs, error) {
	if !strings.HasPrefix(uri, snippetScheme) {
		return ReadSnippetArgs{}, fmt.Errorf("%w: not a snippet uri: %s", analysis.ErrInvalidArgument, uri)
	}
	rest := strings.TrimPrefix(uri, snippetScheme)
	rawPath, rawQuery, _ := strings.Cut(rest, "?")

	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return ReadSnippetArgs{}, fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err)
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ReadSnippetArgs{}, fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err)
	}

	args := ReadSnippetArgs{Path: path}
	if args.Start, err = intParam(q, "start", 1); err != nil {
		return ReadSnippetArgs{}, err
	}
	if args.End, err = intParam(q, "end", args.Start); err != nil {
		return ReadSnippetArgs{}, err
	}
	return args, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", analysis.ErrInvalidArgument, key)
	}
	return n, nil
}

// buildSchemaMap infers each tool's argument schema from its args struct.
func buildSchemaMap() map[string]string {
	m := make(map[string]string)
	addSchema[ResolveSymbolArgs](m, "resolve_symbol")
	addSchema[ReferencesArgs](m, "references")
	addSchema[RelatedArgs](m, "related")
	addSchema[ImpactArgs](m, "impact_from_diff")
	addSchema[GraphStatusArgs](m, "graph_status")
	addSchema[ReloadArgs](m, "reload")
	addSchema[ReadSnippetArgs](m, "read_snippet")
	return m
}

func addSchema[T any](m map[string]string, name string) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return
	}
	m[name] = string(schemaJSON)
}
