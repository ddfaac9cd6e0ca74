// Package retrieval produces ranked guideline recommendations with provenance
// for a patient and a free-text query.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/clinref/medguide/guidelines"
	"github.com/clinref/medguide/llm"
	"github.com/clinref/medguide/patient"
)

const defaultTimeout = 30 * time.Second

// ErrUnavailable reports that the guideline backend could not be reached.
// Callers receive it alongside an empty result set so "no guidance found"
// (nil error) stays distinguishable from a retrieval failure.
var ErrUnavailable = errors.New("guideline backend unavailable")

// Recommendation is a single guideline excerpt with provenance. Page is 0 when
// the source does not carry a page reference. Confidence is always in [0, 1].
type Recommendation struct {
	Text        string  `json:"text"`
	Explanation string  `json:"explanation"`
	Page        int     `json:"page"`
	Source      string  `json:"source"`
	Confidence  float64 `json:"confidence"`
}

type Engine struct {
	backend llm.Backend
	timeout time.Duration
	logger  *log.Logger
}

func NewEngine(backend llm.Backend, timeout time.Duration, logger *log.Logger) *Engine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		backend: backend,
		timeout: timeout,
		logger:  logger,
	}
}

// Query returns recommendations for the query and patient, ranked descending
// by confidence with stable ties. documentText optionally scopes the query to
// specific document content. An unreachable or timed-out backend yields an
// empty slice and ErrUnavailable; malformed replies are salvaged, never fatal.
func (e *Engine) Query(ctx context.Context, query string, p patient.Context, documentText string) ([]Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if e.backend == nil {
		return nil, fmt.Errorf("backend is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.backend.QueryGuidelines(ctx, llm.GuidelineQuery{
		Query:        query,
		Patient:      p,
		DocumentText: documentText,
	})
	if err != nil {
		e.logger.Printf("guideline query failed: %v", err)
		return []Recommendation{}, ErrUnavailable
	}

	recommendations := ParseRecommendations(raw)
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence > recommendations[j].Confidence
	})
	return recommendations, nil
}

// QueryDocuments scopes a query to the referenced documents, concatenating
// their text as backend context. Unknown ids surface guidelines.ErrNotFound.
func (e *Engine) QueryDocuments(ctx context.Context, query string, p patient.Context, store guidelines.Store, docIDs []string) ([]Recommendation, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is not configured")
	}

	var sb strings.Builder
	for _, id := range docIDs {
		doc, err := store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load document %s: %w", id, err)
		}
		sb.WriteString(doc.FullText())
		sb.WriteString("\n\n")
	}

	return e.Query(ctx, query, p, sb.String())
}
