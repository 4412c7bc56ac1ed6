package benefits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/memberportal/planinfo/internal/domain/coverage"
)

// BookletFetcher retrieves booklet content from the benefit-document service.
type BookletFetcher interface {
	Fetch(ctx context.Context, kind Kind, req *coverage.BookletRequest) (string, error)
}

// FetcherOption configures an HTTPBookletFetcher.
type FetcherOption func(*HTTPBookletFetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPBookletFetcher) { f.httpClient = c }
}

// HTTPBookletFetcher posts booklet requests to <baseURL>/<kind>.
type HTTPBookletFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBookletFetcher creates a fetcher with a 30 second client timeout.
func NewHTTPBookletFetcher(baseURL string, opts ...FetcherOption) *HTTPBookletFetcher {
	f := &HTTPBookletFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

type bookletResponse struct {
	Base64EncodedPDF string `json:"base64EncodedPDF"`
}

// Fetch returns the base64 PDF payload for kind. An empty payload is not an
// error; the caller treats it as "not present".
func (f *HTTPBookletFetcher) Fetch(ctx context.Context, kind Kind, br *coverage.BookletRequest) (string, error) {
	payload, err := json.Marshal(br)
	if err != nil {
		return "", fmt.Errorf("encode booklet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/"+string(kind), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s booklet: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("fetch %s booklet: non-2xx response: %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out bookletResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode %s booklet: %w", kind, err)
	}
	return out.Base64EncodedPDF, nil
}
