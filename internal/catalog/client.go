// File: internal/catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"bookmarked_backend/internal/config"
)

const maxResponseBytes = 5 << 20

// UpstreamError reports a failed call to the catalog.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog upstream: %v", e.Err)
	}
	return fmt.Sprintf("catalog upstream: status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Searcher looks books up in an external catalog.
type Searcher interface {
	Search(ctx context.Context, query url.Values) (json.RawMessage, error)
}

// OpenLibraryClient forwards searches to the Open Library search API.
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenLibraryClient creates a client for OPEN_LIBRARY_SEARCH_URL.
func NewOpenLibraryClient(cfg *config.Config) *OpenLibraryClient {
	return &OpenLibraryClient{
		baseURL:    cfg.OpenLibrarySearchURL,
		httpClient: &http.Client{Timeout: cfg.CatalogTimeout},
	}
}

// Search relays query unchanged and returns the upstream JSON body.
func (c *OpenLibraryClient) Search(ctx context.Context, query url.Values) (json.RawMessage, error) {
	target := c.baseURL
	if encoded := query.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response is not JSON")}
	}
	return json.RawMessage(body), nil
}
