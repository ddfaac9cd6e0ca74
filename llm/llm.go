// Package llm abstracts the model backend behind a single capability
// interface. Implementations are selected by configuration, never by sentinel
// key values at call sites.
package llm

import (
	"context"
	"fmt"

	"github.com/clinref/medguide/config"
	"github.com/clinref/medguide/patient"
)

const RoleUser = "user"

type Message struct {
	Role    string
	Content string
}

// GuidelineQuery asks the backend for guideline recommendations relevant to a
// patient. DocumentText optionally scopes the query to specific document text.
type GuidelineQuery struct {
	Query        string
	Patient      patient.Context
	DocumentText string
}

// NoteRequest asks the backend for a clinical note body for a patient and a
// condition category.
type NoteRequest struct {
	Patient   patient.Context
	Condition string
}

// Backend is the model capability surface the engines depend on. Both methods
// return the raw model text; parsing and salvage are the caller's concern.
type Backend interface {
	QueryGuidelines(ctx context.Context, q GuidelineQuery) (string, error)
	GenerateNote(ctx context.Context, r NoteRequest) (string, error)
}

type Options struct {
	Provider string
	Model    string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewBackend(cfg config.Config) (Backend, error) {
	opts := Options{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderFixture:
		return NewFixtureBackend(), nil
	case config.ProviderOllama:
		return NewOllamaBackend(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIBackend(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}
