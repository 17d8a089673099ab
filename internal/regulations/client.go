// Package regulations talks to the external retrieval service that indexes
// product terms and lending regulations.
package regulations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultResults matches the retrieval service's similarity search depth.
const DefaultResults = 4

// ErrEmptyQuery is returned before any request is made.
var ErrEmptyQuery = errors.New("regulations: empty query")

// Passage is one retrieved chunk of regulatory or product text.
type Passage struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Passage, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResponse struct {
	Data []Passage `json:"data"`
}

func (c *HTTPClient) Search(ctx context.Context, query string, limit int) ([]Passage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultResults
	}

	payload, err := json.Marshal(searchRequest{Query: query, K: limit})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-ID", "underwriter")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("regulations: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("regulations: %d %s", resp.StatusCode, string(body))
	}

	var wrapper searchResponse
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("regulations: decode: %w", err)
	}
	if len(wrapper.Data) > limit {
		wrapper.Data = wrapper.Data[:limit]
	}
	return wrapper.Data, nil
}

// Format joins passages into a single citation-prefixed text block.
func Format(passages []Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		source := p.Source
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[source: %s]\n%s", source, p.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
