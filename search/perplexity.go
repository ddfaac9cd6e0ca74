package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clinref/medguide/patient"
)

// medicalDomains is the allow-list sent with every search request.
var medicalDomains = []string{
	"guidelines.gov", "nih.gov", "cdc.gov", "who.int",
	"diabetes.org", "heart.org", "medscape.com", "mayoclinic.org",
	"aafp.org", "nejm.org", "jamanetwork.com", "thelancet.com",
}

type perplexityClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type perplexitySearchRequest struct {
	Query        string                 `json:"query"`
	SourceFilter perplexitySourceFilter `json:"source_filter"`
	Highlight    bool                   `json:"highlight"`
	MaxResults   int                    `json:"max_results"`
}

type perplexitySourceFilter struct {
	Domains []string `json:"domains"`
}

type perplexitySearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

func NewPerplexityClient(apiKey, baseURL string) Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.perplexity.ai"
	}

	return &perplexityClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *perplexityClient) Search(ctx context.Context, query string, p patient.Context, maxResults int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if p.Diagnosis != "" {
		query += fmt.Sprintf(" for patient with %s", p.Diagnosis)
	}

	body, err := json.Marshal(perplexitySearchRequest{
		Query:        query,
		SourceFilter: perplexitySourceFilter{Domains: medicalDomains},
		Highlight:    true,
		MaxResults:   maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sonar/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		if readErr == nil && len(data) > 0 {
			return nil, fmt.Errorf("search API error: %s", string(data))
		}
		return nil, fmt.Errorf("search API returned status %s", resp.Status)
	}

	var raw []perplexitySearchResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(raw))
	for _, item := range raw {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.URL,
			Source:  HostOf(item.URL),
		})
	}
	return results, nil
}

var _ Client = (*perplexityClient)(nil)
