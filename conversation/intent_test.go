package conversation_test

import (
	"testing"

	"github.com/clinref/medguide/conversation"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		utterance string
		want      conversation.Intent
	}{
		{"Generate a succinct assessment and plan for my note", conversation.IntentNoteRequest},
		{"What BP targets should I use?", conversation.IntentGuidelineQuery},
		{"Write an ASSESSMENT and PLAN note for this patient", conversation.IntentNoteRequest},
		{"What does the assessment guideline say?", conversation.IntentGuidelineQuery},
		{"plan a note", conversation.IntentGuidelineQuery},
		{"", conversation.IntentGuidelineQuery},
	}

	for _, tc := range cases {
		if got := conversation.ClassifyIntent(tc.utterance); got != tc.want {
			t.Errorf("ClassifyIntent(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}

func TestCategoryForDiagnosis(t *testing.T) {
	cases := []struct {
		diagnosis string
		want      string
	}{
		{"Type 2 Diabetes, Hypertension", "diabetes"},
		{"Invasive Ductal Carcinoma, HER2+", "her2"},
		{"Breast cancer, triple negative", "her2"},
		{"Chronic kidney disease", "general"},
		{"", "general"},
	}

	for _, tc := range cases {
		if got := conversation.CategoryForDiagnosis(tc.diagnosis); got != tc.want {
			t.Errorf("CategoryForDiagnosis(%q) = %q, want %q", tc.diagnosis, got, tc.want)
		}
	}
}
