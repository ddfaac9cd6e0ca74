package retrieval_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clinref/medguide/guidelines"
	"github.com/clinref/medguide/llm"
	"github.com/clinref/medguide/patient"
	"github.com/clinref/medguide/retrieval"
)

type stubBackend struct {
	reply string
	err   error
}

func (s stubBackend) QueryGuidelines(_ context.Context, _ llm.GuidelineQuery) (string, error) {
	return s.reply, s.err
}

func (s stubBackend) GenerateNote(_ context.Context, _ llm.NoteRequest) (string, error) {
	return s.reply, s.err
}

var _ llm.Backend = stubBackend{}

func TestQueryDiabetesPatient(t *testing.T) {
	engine := retrieval.NewEngine(llm.NewFixtureBackend(), time.Second, nil)

	recs, err := engine.Query(context.Background(), "What do guidelines say about medication adjustment?", patient.Sample("diabetes"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}

	top := recs[0]
	if !strings.Contains(top.Source, "ADA") {
		t.Fatalf("expected ADA source first, got %q", top.Source)
	}
	if top.Page != 42 {
		t.Fatalf("expected page 42, got %d", top.Page)
	}
	if !strings.Contains(top.Explanation, "8.2%") {
		t.Fatalf("expected HbA1c interpolated into explanation, got %q", top.Explanation)
	}
}

func TestQueryRankedByConfidence(t *testing.T) {
	engine := retrieval.NewEngine(stubBackend{reply: `{"recommendations": [
		{"text": "Low.", "confidence": 0.2},
		{"text": "High.", "confidence": 0.9},
		{"text": "Mid.", "confidence": 0.5}
	]}`}, time.Second, nil)

	recs, err := engine.Query(context.Background(), "ranking", patient.Context{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Confidence > recs[i-1].Confidence {
			t.Fatalf("recommendations not sorted descending at index %d", i)
		}
	}
	if recs[0].Text != "High." {
		t.Fatalf("expected highest confidence first, got %q", recs[0].Text)
	}
}

func TestQueryBackendFailure(t *testing.T) {
	engine := retrieval.NewEngine(stubBackend{err: errors.New("connection refused")}, time.Second, nil)

	recs, err := engine.Query(context.Background(), "anything", patient.Context{}, "")
	if !errors.Is(err, retrieval.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestQueryEmptyQuery(t *testing.T) {
	engine := retrieval.NewEngine(llm.NewFixtureBackend(), time.Second, nil)

	if _, err := engine.Query(context.Background(), "   ", patient.Context{}, ""); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestQueryDocumentsUnknownID(t *testing.T) {
	engine := retrieval.NewEngine(llm.NewFixtureBackend(), time.Second, nil)
	store := guidelines.NewMemoryStore()

	_, err := engine.QueryDocuments(context.Background(), "dosing", patient.Context{}, store, []string{"missing"})
	if !errors.Is(err, guidelines.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryDocumentsPassesDocumentText(t *testing.T) {
	var captured llm.GuidelineQuery
	backend := captureBackend{captured: &captured}
	engine := retrieval.NewEngine(backend, time.Second, nil)

	store := guidelines.NewMemoryStore()
	doc := guidelines.Document{ID: "d1", Title: "Dosing", Pages: []string{"Page one text.", "Page two text."}}
	if err := store.Put(context.Background(), doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := engine.QueryDocuments(context.Background(), "dosing", patient.Context{}, store, []string{"d1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(captured.DocumentText, "Page one text.") || !strings.Contains(captured.DocumentText, "Page two text.") {
		t.Fatalf("expected document text forwarded to backend, got %q", captured.DocumentText)
	}
}

type captureBackend struct {
	captured *llm.GuidelineQuery
}

func (c captureBackend) QueryGuidelines(_ context.Context, q llm.GuidelineQuery) (string, error) {
	*c.captured = q
	return "{\"recommendations\": [{\"text\": \"ok\", \"confidence\": 0.5}]}", nil
}

func (c captureBackend) GenerateNote(_ context.Context, _ llm.NoteRequest) (string, error) {
	return "", nil
}

var _ llm.Backend = captureBackend{}
