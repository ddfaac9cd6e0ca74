package conversation

import "strings"

// Intent classifies a user utterance. The classification is a keyword
// heuristic, kept in one table so it can be swapped for a real classifier
// without touching the controller.
type Intent int

const (
	IntentGuidelineQuery Intent = iota
	IntentNoteRequest
)

// noteTriggers must all appear in an utterance for it to count as a note
// request. Note intent is checked before the guideline-query fallback, so an
// ambiguous utterance containing every trigger always routes to note
// generation.
var noteTriggers = []string{"assessment", "plan", "note"}

func ClassifyIntent(utterance string) Intent {
	lowered := strings.ToLower(utterance)
	for _, trigger := range noteTriggers {
		if !strings.Contains(lowered, trigger) {
			return IntentGuidelineQuery
		}
	}
	return IntentNoteRequest
}

// CategoryGeneral is the condition category for diagnoses matching no rule.
const CategoryGeneral = "general"

type categoryRule struct {
	keyword  string
	category string
}

// categoryRules maps diagnosis keywords to condition categories in precedence
// order. Matching is a case-insensitive substring check.
var categoryRules = []categoryRule{
	{keyword: "diabetes", category: "diabetes"},
	{keyword: "her2", category: "her2"},
	{keyword: "breast", category: "her2"},
}

func CategoryForDiagnosis(diagnosis string) string {
	lowered := strings.ToLower(diagnosis)
	for _, rule := range categoryRules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.category
		}
	}
	return CategoryGeneral
}
