// Package conversation maintains per-session dialogue state and dispatches
// each user turn to the retrieval or note assembly engine.
package conversation

import (
	"github.com/google/uuid"

	"github.com/clinref/medguide/notes"
	"github.com/clinref/medguide/patient"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const greeting = "I can help you find relevant guidelines and recommendations for your patient. What would you like to know?"

// Turn is one message in a chat session. A note-bearing assistant turn carries
// Note; a guideline-bearing one carries SourceCitation.
type Turn struct {
	Role           string              `json:"role"`
	Content        string              `json:"content"`
	Note           *notes.ClinicalNote `json:"note,omitempty"`
	SourceCitation string              `json:"sourceCitation,omitempty"`
}

// State tracks where a session is within the current turn.
type State int

const (
	StateIdle State = iota
	StateAwaitingBackend
	StateReady
)

// Session owns the turn log and patient for one chat. It is created on patient
// selection and destroyed on reset; sessions are never shared, and the
// controller processes one utterance at a time per session.
type Session struct {
	ID      string
	Patient patient.Context

	turns []Turn
	state State
}

func NewSession(p patient.Context) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Patient: p,
		state:   StateIdle,
	}
	s.turns = append(s.turns, Turn{Role: RoleSystem, Content: greeting})
	return s
}

// Turns returns a copy of the append-only turn log in order.
func (s *Session) Turns() []Turn {
	return append([]Turn(nil), s.turns...)
}

func (s *Session) State() State {
	return s.state
}
