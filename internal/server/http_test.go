package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/analysis"
)

func doRequest(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	f := newFixture(t, true)

	t.Run("Health", func(t *testing.T) {
		rec := doRequest(t, f.srv, http.MethodGet, "/healthz", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"graphLoaded":true`)
	})

	t.Run("Metrics", func(t *testing.T) {
		rec := doRequest(t, f.srv, http.MethodGet, "/metrics", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "codegraph_graph_symbols")
	})

	t.Run("Resolve", func(t *testing.T) {
		rec := doRequest(t, f.srv, http.MethodGet, "/v1/graph/resolve?query=run", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got []analysis.ScoredSymbol
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, 100, got[0].Score)

		rec = doRequest(t, f.srv, http.MethodGet, "/v1/graph/resolve", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(analysis.CodeEmptyQuery))
	})

	t.Run("References and related", func(t *testing.T) {
		rec := doRequest(t, f.srv, http.MethodGet, "/v1/graph/symbols/getUser/references", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var refs []analysis.Reference
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
		assert.Len(t, refs, 1)

		rec = doRequest(t, f.srv, http.MethodGet, "/v1/graph/symbols/run/related?k=abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Impact raw and JSON", func(t *testing.T) {
		patch := "diff --git a/src/x.ts b/src/x.ts\n"
		rec := doRequest(t, f.srv, http.MethodPost, "/v1/graph/impact", "text/plain", patch)
		require.Equal(t, http.StatusOK, rec.Code)
		var got analysis.Impact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, []string{"src/x.ts"}, got.ChangedFiles)

		body, _ := json.Marshal(ImpactArgs{Patch: patch})
		rec = doRequest(t, f.srv, http.MethodPost, "/v1/graph/impact", "application/json", string(body))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, f.srv, http.MethodPost, "/v1/graph/impact", "text/plain", strings.Repeat("+", 2000))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("Snippet", func(t *testing.T) {
		rec := doRequest(t, f.srv, http.MethodGet, "/v1/graph/snippet?path=src/x.ts&start=1&end=3", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, f.srv, http.MethodGet, "/v1/graph/snippet?path=../../etc/passwd&start=1&end=2", "", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), string(analysis.CodeAccessDenied))
	})

	t.Run("Status and reload", func(t *testing.T) {
		rec := doRequest(t, f.srv, http.MethodGet, "/v1/graph/status", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = doRequest(t, f.srv, http.MethodPost, "/v1/graph/reload", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouter_NoGraph(t *testing.T) {
	f := newFixture(t, false)
	rec := doRequest(t, f.srv, http.MethodGet, "/v1/graph/resolve?query=run", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), string(analysis.CodeNoGraph))
}
