package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"bookmarked_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) *OpenLibraryClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenLibraryClient(&config.Config{
		OpenLibrarySearchURL: srv.URL + "/search.json",
		CatalogTimeout:       2 * time.Second,
	})
}

func TestOpenLibraryClient_RelaysQueryAndBody(t *testing.T) {
	var gotQuery url.Values
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"key":"/works/OL1W","title":"The Dispossessed"}]}`))
	})

	body, err := client.Search(context.Background(), url.Values{"q": {"dispossessed"}, "limit": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, "dispossessed", gotQuery.Get("q"))
	assert.Equal(t, "5", gotQuery.Get("limit"))
	assert.JSONEq(t, `{"numFound":1,"docs":[{"key":"/works/OL1W","title":"The Dispossessed"}]}`, string(body))
}

func TestOpenLibraryClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"not json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>maintenance</html>")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newUpstream(t, tt.handler).Search(context.Background(), url.Values{"q": {"x"}})
			var upstream *UpstreamError
			assert.True(t, errors.As(err, &upstream), "got %v", err)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewOpenLibraryClient(&config.Config{OpenLibrarySearchURL: srv.URL, CatalogTimeout: time.Second})
		_, err := client.Search(context.Background(), url.Values{"q": {"x"}})
		var upstream *UpstreamError
		assert.True(t, errors.As(err, &upstream))
	})
}

// stubSearcher records the query it was asked and returns canned results.
type stubSearcher struct {
	body  json.RawMessage
	err   error
	calls int
}

func (s *stubSearcher) Search(context.Context, url.Values) (json.RawMessage, error) {
	s.calls++
	return s.body, s.err
}

func serveSearch(searcher Searcher, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(searcher, zap.NewNop()).RegisterRoutes(router.Group("/api"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandler_SearchBooks(t *testing.T) {
	t.Run("relays upstream body", func(t *testing.T) {
		stub := &stubSearcher{body: json.RawMessage(`{"docs":[]}`)}
		w := serveSearch(stub, "/api/search-books?q=tolkien")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"docs":[]}`, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("missing query", func(t *testing.T) {
		stub := &stubSearcher{}
		for _, target := range []string{"/api/search-books", "/api/search-books?q=%20%20"} {
			w := serveSearch(stub, target)
			assert.Equal(t, http.StatusBadRequest, w.Code, target)
		}
		assert.Zero(t, stub.calls)
	})

	t.Run("upstream down", func(t *testing.T) {
		stub := &stubSearcher{err: &UpstreamError{StatusCode: http.StatusBadGateway}}
		w := serveSearch(stub, "/api/search-books?q=tolkien")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
