// Package notes assembles structured clinical notes (ASSESSMENT + PLAN) for a
// patient and a condition category.
package notes

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/clinref/medguide/llm"
	"github.com/clinref/medguide/patient"
)

const (
	defaultTimeout = 30 * time.Second

	errorNoteTitle   = "Error Generating Note"
	errorNoteContent = "Unable to generate a clinical note at this time."
)

// ClinicalNote is a generated note. Content is opaque text once handed to the
// caller; user edits in the UI layer are never re-validated here.
type ClinicalNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
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

// Generate produces a note for the patient and condition category. It never
// fails: an unreachable backend yields the fixed error note so the caller
// always has something renderable, and missing patient fields render
// documented defaults. With a deterministic backend, identical input produces
// an identical note.
func (e *Engine) Generate(ctx context.Context, p patient.Context, category string) ClinicalNote {
	if e.backend == nil {
		e.logger.Printf("note generation skipped: backend is not configured")
		return ClinicalNote{Title: errorNoteTitle, Content: errorNoteContent}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, err := e.backend.GenerateNote(ctx, llm.NoteRequest{
		Patient:   p,
		Condition: category,
	})
	if err != nil {
		e.logger.Printf("note generation failed: %v", err)
		return ClinicalNote{Title: errorNoteTitle, Content: errorNoteContent}
	}

	return ClinicalNote{
		Title:   "Assessment & Plan for " + strings.ToUpper(category),
		Content: strings.TrimSpace(body),
	}
}
