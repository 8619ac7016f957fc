package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"codegraph/internal/analysis"
	"codegraph/internal/metrics"
)

// Router builds the HTTP surface: the graph API under /v1/graph plus
// /healthz and /metrics.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.HandleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	RegisterRoutes(r.Group("/v1"), s)
	return r
}

// RegisterRoutes registers the /graph endpoints on rg.
//
//	GET  /graph/status
//	POST /graph/reload
//	GET  /graph/resolve?query=
//	GET  /graph/symbols/:id/references
//	GET  /graph/symbols/:id/related?k=
//	POST /graph/impact            (raw diff, or JSON {"patch": ...})
//	GET  /graph/snippet?path=&start=&end=
func RegisterRoutes(rg *gin.RouterGroup, s *Server) {
	g := rg.Group("/graph")
	{
		g.GET("/status", s.HandleStatus)
		g.POST("/reload", s.HandleReload)
		g.GET("/resolve", s.HandleResolve)
		g.GET("/symbols/:id/references", s.HandleReferences)
		g.GET("/symbols/:id/related", s.HandleRelated)
		g.POST("/impact", s.HandleImpact)
		g.GET("/snippet", s.HandleSnippet)
	}
}

func httpStatus(code analysis.ErrorCode) int {
	switch code {
	case analysis.CodeNoGraph:
		return http.StatusServiceUnavailable
	case analysis.CodeEmptyQuery, analysis.CodeInvalidArgument, analysis.CodeRangeTooLarge:
		return http.StatusBadRequest
	case analysis.CodeAccessDenied:
		return http.StatusForbidden
	case analysis.CodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case analysis.CodeNotFound:
		return http.StatusNotFound
	case analysis.CodeOK:
		return http.StatusOK
	case analysis.CodeInternal:
	}
	return http.StatusInternalServerError
}

func (s *Server) respond(c *gin.Context, v any, err error) {
	if err != nil {
		body := newErrorBody(err)
		if body.Code == analysis.CodeInternal {
			s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		}
		c.JSON(httpStatus(body.Code), body)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "graphLoaded": s.engine.Status().Loaded})
}

func (s *Server) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

func (s *Server) HandleReload(c *gin.Context) {
	res, err := s.reload(c.Request.Context(), "http")
	s.respond(c, res, err)
}

func (s *Server) HandleResolve(c *gin.Context) {
	res, err := s.resolveSymbol(ResolveSymbolArgs{Query: c.Query("query")})
	s.respond(c, res, err)
}

func (s *Server) HandleReferences(c *gin.Context) {
	res, err := s.references(ReferencesArgs{ID: c.Param("id")})
	s.respond(c, res, err)
}

func (s *Server) HandleRelated(c *gin.Context) {
	k, err := queryInt(c, "k", 0)
	if err != nil {
		s.respond(c, nil, err)
		return
	}
	res, err := s.related(RelatedArgs{ID: c.Param("id"), K: k})
	s.respond(c, res, err)
}

func (s *Server) HandleImpact(c *gin.Context) {
	// Allow for JSON framing around a patch at the size limit.
	limit := int64(s.maxDiffBytes)*2 + 1024
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		s.respond(c, nil, fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err))
		return
	}
	if int64(len(raw)) > limit {
		s.respond(c, nil, fmt.Errorf("%w: request body exceeds %d bytes", analysis.ErrInputTooLarge, limit))
		return
	}

	args := ImpactArgs{Patch: string(raw)}
	if strings.HasPrefix(c.ContentType(), "application/json") {
		args = ImpactArgs{}
		if err := json.Unmarshal(raw, &args); err != nil {
			s.respond(c, nil, fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err))
			return
		}
	}
	res, err := s.impact(args)
	s.respond(c, res, err)
}

func (s *Server) HandleSnippet(c *gin.Context) {
	start, err := queryInt(c, "start", 1)
	if err != nil {
		s.respond(c, nil, err)
		return
	}
	end, err := queryInt(c, "end", start)
	if err != nil {
		s.respond(c, nil, err)
		return
	}
	res, err := s.readSnippet(ReadSnippetArgs{Path: c.Query("path"), Start: start, End: end})
	s.respond(c, res, err)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", analysis.ErrInvalidArgument, key)
	}
	return n, nil
}
