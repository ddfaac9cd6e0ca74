package conversation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clinref/medguide/conversation"
	"github.com/clinref/medguide/llm"
	"github.com/clinref/medguide/notes"
	"github.com/clinref/medguide/patient"
	"github.com/clinref/medguide/retrieval"
)

type failingBackend struct{}

func (failingBackend) QueryGuidelines(_ context.Context, _ llm.GuidelineQuery) (string, error) {
	return "", errors.New("backend down")
}

func (failingBackend) GenerateNote(_ context.Context, _ llm.NoteRequest) (string, error) {
	return "", errors.New("backend down")
}

var _ llm.Backend = failingBackend{}

func newFixtureController() *conversation.Controller {
	backend := llm.NewFixtureBackend()
	return conversation.NewController(
		retrieval.NewEngine(backend, time.Second, nil),
		notes.NewEngine(backend, time.Second, nil),
		nil,
	)
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	controller := newFixtureController()
	session := controller.NewSessionFor(patient.Sample("diabetes"))

	turns := session.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Role != conversation.RoleSystem {
		t.Fatalf("expected system greeting first, got role %q", turns[0].Role)
	}
	if session.State() != conversation.StateIdle {
		t.Fatalf("expected StateIdle, got %v", session.State())
	}
}

func TestSubmitGuidelineQuery(t *testing.T) {
	controller := newFixtureController()
	session := controller.NewSessionFor(patient.Sample("diabetes"))

	delta, err := controller.Submit(context.Background(), session, "What BP targets should I use?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delta) != 2 {
		t.Fatalf("expected user turn plus reply, got %d turns", len(delta))
	}

	reply := delta[1]
	if reply.Role != conversation.RoleAssistant {
		t.Fatalf("expected assistant reply, got role %q", reply.Role)
	}
	if !strings.Contains(reply.SourceCitation, "page 42") {
		t.Fatalf("expected top recommendation citation, got %q", reply.SourceCitation)
	}
	if session.State() != conversation.StateReady {
		t.Fatalf("expected StateReady after submit, got %v", session.State())
	}
}

func TestSubmitNoteRequest(t *testing.T) {
	controller := newFixtureController()
	session := controller.NewSessionFor(patient.Sample("her2"))

	delta, err := controller.Submit(context.Background(), session, "Generate a succinct assessment and plan for my note")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply := delta[1]
	if reply.Note == nil {
		t.Fatal("expected reply to carry a note")
	}
	if reply.Note.Title != "Assessment & Plan for HER2" {
		t.Fatalf("unexpected note title: %q", reply.Note.Title)
	}
	if !strings.Contains(reply.Note.Content, "NCCN") {
		t.Fatal("expected HER2 note content")
	}
}

func TestSubmitBackendFailureApologizes(t *testing.T) {
	backend := failingBackend{}
	controller := conversation.NewController(
		retrieval.NewEngine(backend, time.Second, nil),
		notes.NewEngine(backend, time.Second, nil),
		nil,
	)
	session := controller.NewSessionFor(patient.Sample("diabetes"))

	delta, err := controller.Submit(context.Background(), session, "What BP targets should I use?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply := delta[1]
	if !strings.Contains(reply.Content, "couldn't find specific guideline recommendations") {
		t.Fatalf("expected apology reply, got %q", reply.Content)
	}
	if session.State() != conversation.StateReady {
		t.Fatalf("expected StateReady even after backend failure, got %v", session.State())
	}
}

func TestSubmitEmptyUtterance(t *testing.T) {
	controller := newFixtureController()
	session := controller.NewSessionFor(patient.Sample("diabetes"))

	if _, err := controller.Submit(context.Background(), session, "   "); err == nil {
		t.Fatal("expected error for empty utterance")
	}
}

func TestSubmitAppendsToTurnLog(t *testing.T) {
	controller := newFixtureController()
	session := controller.NewSessionFor(patient.Sample("diabetes"))

	if _, err := controller.Submit(context.Background(), session, "What BP targets should I use?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := controller.Submit(context.Background(), session, "Generate a succinct assessment and plan for my note"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := session.Turns()
	if len(turns) != 5 {
		t.Fatalf("expected greeting plus two exchanges, got %d turns", len(turns))
	}
	for i, turn := range turns[1:] {
		wantUser := i%2 == 0
		if wantUser && turn.Role != conversation.RoleUser {
			t.Fatalf("turn %d: expected user role, got %q", i+1, turn.Role)
		}
		if !wantUser && turn.Role != conversation.RoleAssistant {
			t.Fatalf("turn %d: expected assistant role, got %q", i+1, turn.Role)
		}
	}
}

func TestFormatCitation(t *testing.T) {
	cases := []struct {
		rec  retrieval.Recommendation
		want string
	}{
		{retrieval.Recommendation{Source: "ADA Guidelines 2024", Page: 42}, "ADA Guidelines 2024, page 42"},
		{retrieval.Recommendation{Source: "Medical Guidelines"}, "Medical Guidelines"},
		{retrieval.Recommendation{}, ""},
	}

	for _, tc := range cases {
		if got := conversation.FormatCitation(tc.rec); got != tc.want {
			t.Errorf("FormatCitation(%#v) = %q, want %q", tc.rec, got, tc.want)
		}
	}
}
