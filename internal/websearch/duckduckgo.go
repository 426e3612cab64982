// Package websearch provides the web fallback stage: a narrow client to
// the DuckDuckGo Instant Answer API.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// DuckDuckGo answers queries with instant-answer abstracts.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
}

var _ domain.WebSearcher = (*DuckDuckGo)(nil)

// NewDuckDuckGo creates a client. baseURL defaults to the public API.
func NewDuckDuckGo(baseURL string, timeout time.Duration) *DuckDuckGo {
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Search returns the best available snippet for the query, or an empty
// string when the API has no abstract.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1", d.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("duckduckgo returned %s", resp.Status)
	}
	var out struct {
		AbstractText  string `json:"AbstractText"`
		Answer        string `json:"Answer"`
		RelatedTopics []struct {
			Text string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding duckduckgo response: %w", err)
	}
	switch {
	case out.Answer != "":
		return out.Answer, nil
	case out.AbstractText != "":
		return out.AbstractText, nil
	case len(out.RelatedTopics) > 0:
		return out.RelatedTopics[0].Text, nil
	default:
		return "", nil
	}
}
