// Package search provides the web search collaborator used to look up
// guideline material outside the local corpus.
package search

import (
	"context"
	"fmt"
	"net/url"

	"github.com/clinref/medguide/config"
	"github.com/clinref/medguide/patient"
)

// Result is a single web search hit. Source is the host of the result URL.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Client searches the web for medical guideline material. The patient context
// is optional and only sharpens the query; implementations must return results
// in relevance order and never partial records on failure.
type Client interface {
	Search(ctx context.Context, query string, p patient.Context, maxResults int) ([]Result, error)
}

func NewClient(cfg config.Config) (Client, error) {
	switch cfg.Search.Provider {
	case config.ProviderFixture:
		return NewFixtureClient(), nil
	case "perplexity":
		if cfg.PerplexityAPIKey == "" {
			return nil, fmt.Errorf("perplexity provider selected but PERPLEXITY_API_KEY not set")
		}
		return NewPerplexityClient(cfg.PerplexityAPIKey, cfg.PerplexityBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Search.Provider)
	}
}

// HostOf derives the source label for a result URL. Unparseable URLs fall back
// to the raw string so the caller always has something to display.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
