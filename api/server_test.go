package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clinref/medguide/api"
	"github.com/clinref/medguide/config"
	"github.com/clinref/medguide/guidelines"
)

func fixtureConfig() config.Config {
	return config.Config{
		LLM:            config.LLMConfig{Provider: config.ProviderFixture},
		Search:         config.SearchConfig{Provider: config.ProviderFixture, MaxResults: 5},
		RequestTimeout: time.Second,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server, err := api.New(fixtureConfig(), guidelines.NewCuratedStore(), nil)
	if err != nil {
		t.Fatalf("server setup: %v", err)
	}

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func startSession(t *testing.T, ts *httptest.Server, patientID string) string {
	t.Helper()

	resp := postJSON(t, ts.URL+"/v1/sessions", map[string]string{"patientId": patientID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session start returned %d", resp.StatusCode)
	}

	var session struct {
		SessionID string `json:"sessionId"`
		Turns     []struct {
			Role string `json:"role"`
		} `json:"turns"`
	}
	decodeBody(t, resp, &session)

	if session.SessionID == "" {
		t.Fatal("expected session id")
	}
	if len(session.Turns) != 1 || session.Turns[0].Role != "system" {
		t.Fatalf("expected single system greeting, got %#v", session.Turns)
	}
	return session.SessionID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health returned %d", resp.StatusCode)
	}
}

func TestListPatients(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/patients")
	if err != nil {
		t.Fatalf("get patients: %v", err)
	}

	var patients []struct {
		ID        string `json:"id"`
		Diagnosis string `json:"diagnosis"`
	}
	decodeBody(t, resp, &patients)

	if len(patients) != 2 {
		t.Fatalf("expected 2 demo patients, got %d", len(patients))
	}
	if patients[0].ID != "p001" || patients[1].ID != "p002" {
		t.Fatalf("unexpected patient order: %#v", patients)
	}
}

func TestSessionUnknownPatient(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/sessions", map[string]string{"patientId": "p999"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestChatNoteRequest(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startSession(t, ts, "p001")

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{
		"sessionId": sessionID,
		"utterance": "Generate a succinct assessment and plan for my note",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat returned %d", resp.StatusCode)
	}

	var chat struct {
		Turns []struct {
			Role string `json:"role"`
			Note *struct {
				Title   string `json:"title"`
				Content string `json:"content"`
			} `json:"note"`
		} `json:"turns"`
	}
	decodeBody(t, resp, &chat)

	if len(chat.Turns) != 2 {
		t.Fatalf("expected user turn plus reply, got %d", len(chat.Turns))
	}
	reply := chat.Turns[1]
	if reply.Note == nil {
		t.Fatal("expected reply to carry a note")
	}
	if reply.Note.Title != "Assessment & Plan for DIABETES" {
		t.Fatalf("unexpected note title: %q", reply.Note.Title)
	}
}

func TestChatGuidelineQuery(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startSession(t, ts, "p001")

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{
		"sessionId": sessionID,
		"utterance": "What BP targets should I use?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat returned %d", resp.StatusCode)
	}

	var chat struct {
		Turns []struct {
			Role           string `json:"role"`
			SourceCitation string `json:"sourceCitation"`
		} `json:"turns"`
	}
	decodeBody(t, resp, &chat)

	if !strings.Contains(chat.Turns[1].SourceCitation, "page 42") {
		t.Fatalf("expected top recommendation citation, got %q", chat.Turns[1].SourceCitation)
	}
}

func TestChatUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{
		"sessionId": "nope",
		"utterance": "anything",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestNotesDefaultsCategoryFromDiagnosis(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startSession(t, ts, "p002")

	resp := postJSON(t, ts.URL+"/v1/notes", map[string]string{"sessionId": sessionID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("notes returned %d", resp.StatusCode)
	}

	var note struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	decodeBody(t, resp, &note)

	if note.Title != "Assessment & Plan for HER2" {
		t.Fatalf("unexpected title: %q", note.Title)
	}
}

func TestDocumentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/documents")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	var docs []struct {
		ID        string `json:"id"`
		PageCount int    `json:"pageCount"`
	}
	decodeBody(t, resp, &docs)
	if len(docs) != 6 {
		t.Fatalf("expected 6 curated documents, got %d", len(docs))
	}

	resp, err = http.Get(ts.URL + "/v1/documents?id=1")
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	var doc struct {
		Title string   `json:"title"`
		Pages []string `json:"pages"`
	}
	decodeBody(t, resp, &doc)
	if len(doc.Pages) == 0 {
		t.Fatal("expected document pages")
	}

	resp, err = http.Get(ts.URL + "/v1/documents?id=missing")
	if err != nil {
		t.Fatalf("get missing document: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUploadExtractionFailureIsDegradedSuccess(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/documents", map[string]string{
		"title": "Broken PDF",
		"data":  base64.StdEncoding.EncodeToString([]byte("not a pdf")),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload returned %d", resp.StatusCode)
	}

	var upload struct {
		Document struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Flagged bool   `json:"flagged"`
		} `json:"document"`
		Flagged bool `json:"flagged"`
	}
	decodeBody(t, resp, &upload)

	if !upload.Flagged || !upload.Document.Flagged {
		t.Fatal("expected flagged upload")
	}
	if upload.Document.Title != "Broken PDF" {
		t.Fatalf("unexpected title: %q", upload.Document.Title)
	}
}

func TestRecommendationsScopedToDocuments(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startSession(t, ts, "p001")

	resp := postJSON(t, ts.URL+"/v1/recommendations", map[string]any{
		"sessionId":   sessionID,
		"query":       "glycemic targets",
		"documentIds": []string{"1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommendations returned %d", resp.StatusCode)
	}

	var recs struct {
		Recommendations []struct {
			Source     string  `json:"source"`
			Confidence float64 `json:"confidence"`
		} `json:"recommendations"`
		Unavailable bool `json:"unavailable"`
	}
	decodeBody(t, resp, &recs)

	if recs.Unavailable {
		t.Fatal("fixture backend should be available")
	}
	if len(recs.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, rec := range recs.Recommendations {
		if rec.Confidence < 0 || rec.Confidence > 1 {
			t.Fatalf("confidence %f outside [0, 1]", rec.Confidence)
		}
	}
}

func TestRecommendationsUnknownDocument(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startSession(t, ts, "p001")

	resp := postJSON(t, ts.URL+"/v1/recommendations", map[string]any{
		"sessionId":   sessionID,
		"documentIds": []string{"missing"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startSession(t, ts, "p001")

	resp := postJSON(t, ts.URL+"/v1/search", map[string]any{
		"sessionId": sessionID,
		"query":     "diabetes treatment",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search returned %d", resp.StatusCode)
	}

	var result struct {
		Results []struct {
			Title  string `json:"title"`
			Source string `json:"source"`
		} `json:"results"`
	}
	decodeBody(t, resp, &result)

	if len(result.Results) == 0 {
		t.Fatal("expected search results")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/chat")
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
