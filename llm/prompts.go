package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildGuidelinePrompt prepares the recommendation request sent to network
// backends. The response contract (a JSON recommendations object, possibly
// embedded in prose) is what the retrieval engine's salvage parser expects.
func buildGuidelinePrompt(q GuidelineQuery) string {
	patientJSON, err := json.MarshalIndent(q.Patient, "", "  ")
	if err != nil {
		patientJSON = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Patient Context:\n")
	sb.Write(patientJSON)
	sb.WriteString("\n\nQuery: ")
	sb.WriteString(q.Query)
	sb.WriteString("\n")

	if strings.TrimSpace(q.DocumentText) != "" {
		sb.WriteString("\nDocument Text:\n")
		sb.WriteString(q.DocumentText)
		sb.WriteString("\n")
	}

	sb.WriteString(`
Please identify specific guideline recommendations relevant to this patient.
Return the response in JSON format with page numbers and exact text excerpts.
Format your response as a JSON object with the following structure:
{
    "recommendations": [
        {
            "text": "The relevant recommendation text",
            "explanation": "Why this is relevant for this patient",
            "page": 42,
            "source": "ADA Guidelines 2024",
            "confidence": 0.95
        }
    ]
}`)

	return sb.String()
}

func buildNotePrompt(r NoteRequest) string {
	patientJSON, err := json.MarshalIndent(r.Patient, "", "  ")
	if err != nil {
		patientJSON = []byte("{}")
	}

	return fmt.Sprintf(`Generate a succinct assessment and plan for a clinical note based on the following:

Patient Context:
%s

Condition: %s

Requirements:
1. Create a structured assessment summarizing patient's current status
2. Provide a plan organized by problem
3. Include specific guideline references with page numbers
4. Keep it concise and formatted for direct inclusion in EHR

Format the note with clear sections for ASSESSMENT and PLAN.
The note should be ready to copy and paste into an EHR system.`, patientJSON, r.Condition)
}
