// Package api exposes the assistant core to the UI shell over HTTP JSON. The
// shell owns rendering and navigation; this surface only wraps the core
// operations: session start, utterance submission, note generation, document
// access, and web search.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/clinref/medguide/config"
	"github.com/clinref/medguide/conversation"
	"github.com/clinref/medguide/guidelines"
	"github.com/clinref/medguide/ingestion"
	"github.com/clinref/medguide/llm"
	"github.com/clinref/medguide/notes"
	"github.com/clinref/medguide/patient"
	"github.com/clinref/medguide/retrieval"
	"github.com/clinref/medguide/search"
)

// Server exposes HTTP handlers for the core assistant workflows.
type Server struct {
	cfg     config.Config
	logger  *log.Logger
	handler http.Handler

	store      guidelines.Store
	controller *conversation.Controller
	retrieval  *retrieval.Engine
	notes      *notes.Engine
	search     search.Client

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// sessionEntry serializes utterance processing per session; distinct sessions
// never share state.
type sessionEntry struct {
	mu      sync.Mutex
	session *conversation.Session
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type patientSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Diagnosis string `json:"diagnosis"`
	Stage     string `json:"stage,omitempty"`
}

type sessionRequest struct {
	PatientID string `json:"patientId"`
}

type sessionResponse struct {
	SessionID string              `json:"sessionId"`
	Patient   patientSummary      `json:"patient"`
	Turns     []conversation.Turn `json:"turns"`
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Utterance string `json:"utterance"`
}

type chatResponse struct {
	Turns []conversation.Turn `json:"turns"`
}

type noteRequest struct {
	SessionID string `json:"sessionId"`
	Category  string `json:"category"`
}

type documentSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	UploadedBy  string `json:"uploadedBy,omitempty"`
	LastUpdated string `json:"lastUpdated"`
	PageCount   int    `json:"pageCount"`
	Flagged     bool   `json:"flagged,omitempty"`
}

type documentResponse struct {
	documentSummary
	Pages []string `json:"pages"`
}

type uploadRequest struct {
	Title      string `json:"title"`
	Source     string `json:"source"`
	UploadedBy string `json:"uploadedBy"`
	Data       string `json:"data"`
}

type uploadResponse struct {
	Document documentSummary `json:"document"`
	Flagged  bool            `json:"flagged"`
}

type recommendationsRequest struct {
	SessionID   string   `json:"sessionId"`
	Query       string   `json:"query"`
	DocumentIDs []string `json:"documentIds"`
}

type recommendationsResponse struct {
	Recommendations []retrieval.Recommendation `json:"recommendations"`
	Unavailable     bool                       `json:"unavailable,omitempty"`
}

type searchRequest struct {
	SessionID  string `json:"sessionId"`
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

type searchResponse struct {
	Results []search.Result `json:"results"`
}

// New constructs a Server over the provided document store, building the
// configured backends once at startup.
func New(cfg config.Config, store guidelines.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	backend, err := llm.NewBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm setup: %w", err)
	}

	searchClient, err := search.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("search setup: %w", err)
	}

	retrievalEngine := retrieval.NewEngine(backend, cfg.RequestTimeout, logger)
	noteEngine := notes.NewEngine(backend, cfg.RequestTimeout, logger)

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		controller: conversation.NewController(retrievalEngine, noteEngine, logger),
		retrieval:  retrievalEngine,
		notes:      noteEngine,
		search:     searchClient,
		sessions:   make(map[string]*sessionEntry),
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/patients", s.handlePatients)
	mux.HandleFunc("/v1/sessions", s.handleSessions)
	mux.HandleFunc("/v1/chat", s.handleChat)
	mux.HandleFunc("/v1/notes", s.handleNotes)
	mux.HandleFunc("/v1/documents", s.handleDocuments)
	mux.HandleFunc("/v1/recommendations", s.handleRecommendations)
	mux.HandleFunc("/v1/search", s.handleSearch)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	summaries := make([]patientSummary, 0, len(patient.SampleIDs()))
	for _, id := range patient.SampleIDs() {
		p, ok := patient.SampleByID(id)
		if !ok {
			continue
		}
		summaries = append(summaries, toPatientSummary(p))
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	p, ok := patient.SampleByID(strings.TrimSpace(req.PatientID))
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown patient id: %s", req.PatientID))
		return
	}

	session := s.controller.NewSessionFor(p)

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		Patient:   toPatientSummary(p),
		Turns:     session.Turns(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.Utterance) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("utterance is required"))
		return
	}

	entry, ok := s.sessionEntry(req.SessionID)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown session id: %s", req.SessionID))
		return
	}

	entry.mu.Lock()
	delta, err := s.controller.Submit(r.Context(), entry.session, req.Utterance)
	entry.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("submit utterance: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{Turns: delta})
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	entry, ok := s.sessionEntry(req.SessionID)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown session id: %s", req.SessionID))
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = conversation.CategoryForDiagnosis(entry.session.Patient.Diagnosis)
	}

	note := s.notes.Generate(r.Context(), entry.session.Patient, category)
	s.writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetDocuments(w, r)
	case http.MethodPost:
		s.handleUploadDocument(w, r)
	default:
		s.methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		doc, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, guidelines.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, err)
				return
			}
			s.writeError(w, http.StatusInternalServerError, fmt.Errorf("load document: %w", err))
			return
		}
		s.writeJSON(w, http.StatusOK, documentResponse{
			documentSummary: toDocumentSummary(doc),
			Pages:           doc.Pages,
		})
		return
	}

	docs, err := s.store.List(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list documents: %w", err))
		return
	}

	summaries := make([]documentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = toDocumentSummary(doc)
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode document payload: %w", err))
		return
	}

	doc, ingestErr := guidelines.IngestUpload(r.Context(), s.store, raw, guidelines.UploadMeta{
		Title:      req.Title,
		Source:     req.Source,
		UploadedBy: req.UploadedBy,
	}, s.logger)
	if ingestErr != nil && !errors.Is(ingestErr, ingestion.ErrExtraction) {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("ingest upload: %w", ingestErr))
		return
	}

	// Extraction failure is a degraded success: the document is stored empty
	// and flagged for the shell to surface.
	s.writeJSON(w, http.StatusOK, uploadResponse{
		Document: toDocumentSummary(doc),
		Flagged:  doc.Flagged,
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req recommendationsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	entry, ok := s.sessionEntry(req.SessionID)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown session id: %s", req.SessionID))
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = "guideline recommendations for this patient"
	}

	recommendations, err := s.retrieval.QueryDocuments(r.Context(), query, entry.session.Patient, s.store, req.DocumentIDs)
	if err != nil {
		if errors.Is(err, guidelines.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		if errors.Is(err, retrieval.ErrUnavailable) {
			s.writeJSON(w, http.StatusOK, recommendationsResponse{
				Recommendations: []retrieval.Recommendation{},
				Unavailable:     true,
			})
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("query recommendations: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recommendations})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}

	var p patient.Context
	if req.SessionID != "" {
		if entry, ok := s.sessionEntry(req.SessionID); ok {
			p = entry.session.Patient
		}
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.Search.MaxResults
	}

	results, err := s.search.Search(r.Context(), req.Query, p, maxResults)
	if err != nil {
		// A failed search degrades to an empty result list for the shell.
		s.logger.Printf("search failed: %v", err)
		results = []search.Result{}
	}

	s.writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) sessionEntry(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	return entry, ok
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}

func toPatientSummary(p patient.Context) patientSummary {
	return patientSummary{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Gender:    p.Gender,
		Diagnosis: p.Diagnosis,
		Stage:     p.Stage,
	}
}

func toDocumentSummary(doc guidelines.Document) documentSummary {
	return documentSummary{
		ID:          doc.ID,
		Title:       doc.Title,
		Source:      doc.Source,
		UploadedBy:  doc.UploadedBy,
		LastUpdated: doc.LastUpdated,
		PageCount:   doc.PageCount(),
		Flagged:     doc.Flagged,
	}
}
