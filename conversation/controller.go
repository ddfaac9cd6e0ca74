package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/clinref/medguide/notes"
	"github.com/clinref/medguide/patient"
	"github.com/clinref/medguide/retrieval"
)

const (
	notePreamble = "I've prepared an assessment and plan based on this patient's information and relevant guidelines:"
	apology      = "I couldn't find specific guideline recommendations for your query. Please try asking a different question or provide more context."
)

type Controller struct {
	retrieval *retrieval.Engine
	notes     *notes.Engine
	logger    *log.Logger
}

func NewController(retrievalEngine *retrieval.Engine, noteEngine *notes.Engine, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		retrieval: retrievalEngine,
		notes:     noteEngine,
		logger:    logger,
	}
}

// NewSessionFor starts a fresh session for the given patient. Switching
// patients means starting a new session; prior turn logs are not carried over.
func (c *Controller) NewSessionFor(p patient.Context) *Session {
	return NewSession(p)
}

// Submit processes one user utterance to completion and returns the turn
// delta: the appended user turn followed by exactly one terminal assistant
// turn. Backend failures degrade into the fixed apology or error note; the
// session is always left in StateReady.
func (c *Controller) Submit(ctx context.Context, session *Session, utterance string) ([]Turn, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, fmt.Errorf("utterance cannot be empty")
	}

	session.state = StateAwaitingBackend
	userTurn := Turn{Role: RoleUser, Content: utterance}
	session.turns = append(session.turns, userTurn)

	var reply Turn
	if ClassifyIntent(utterance) == IntentNoteRequest {
		reply = c.noteReply(ctx, session)
	} else {
		reply = c.guidelineReply(ctx, session, utterance)
	}

	session.turns = append(session.turns, reply)
	session.state = StateReady

	return []Turn{userTurn, reply}, nil
}

func (c *Controller) noteReply(ctx context.Context, session *Session) Turn {
	category := CategoryForDiagnosis(session.Patient.Diagnosis)
	note := c.notes.Generate(ctx, session.Patient, category)
	return Turn{
		Role:    RoleAssistant,
		Content: notePreamble,
		Note:    &note,
	}
}

func (c *Controller) guidelineReply(ctx context.Context, session *Session, utterance string) Turn {
	recommendations, err := c.retrieval.Query(ctx, utterance, session.Patient, "")
	if err != nil {
		if !errors.Is(err, retrieval.ErrUnavailable) {
			c.logger.Printf("retrieval error: %v", err)
		}
		return Turn{Role: RoleAssistant, Content: apology}
	}
	if len(recommendations) == 0 {
		return Turn{Role: RoleAssistant, Content: apology}
	}

	top := recommendations[0]
	return Turn{
		Role:           RoleAssistant,
		Content:        fmt.Sprintf("%s\n\n\"%s\"", top.Explanation, top.Text),
		SourceCitation: FormatCitation(top),
	}
}

// FormatCitation renders a recommendation's provenance as shown to the
// clinician, e.g. "ADA Guidelines 2024, page 42". Missing fields are omitted.
func FormatCitation(rec retrieval.Recommendation) string {
	if rec.Source == "" {
		return ""
	}
	if rec.Page > 0 {
		return fmt.Sprintf("%s, page %d", rec.Source, rec.Page)
	}
	return rec.Source
}
