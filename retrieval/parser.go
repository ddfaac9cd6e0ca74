package retrieval

import (
	"encoding/json"
	"strings"
)

const unparseableText = "Unable to parse response"

type wireRecommendation struct {
	Text        string   `json:"text"`
	Explanation string   `json:"explanation"`
	Page        *int     `json:"page"`
	Source      string   `json:"source"`
	Confidence  *float64 `json:"confidence"`
}

// ParseRecommendations salvages recommendations from raw backend output.
// The reply may be a JSON recommendations object, that object embedded in
// surrounding prose, or plain free text. Free text becomes a single
// 0.7-confidence recommendation; a reply that parses to nothing usable becomes
// a single zero-confidence placeholder. Malformed list entries are discarded
// individually, and confidences are clamped to [0, 1].
func ParseRecommendations(raw string) []Recommendation {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return []Recommendation{{Text: unparseableText}}
		}
		return []Recommendation{{Text: trimmed, Confidence: 0.7}}
	}

	var envelope struct {
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &envelope); err != nil {
		return []Recommendation{{Text: unparseableText}}
	}

	recommendations := make([]Recommendation, 0, len(envelope.Recommendations))
	for _, fragment := range envelope.Recommendations {
		var wire wireRecommendation
		if err := json.Unmarshal(fragment, &wire); err != nil {
			continue
		}
		if strings.TrimSpace(wire.Text) == "" {
			continue
		}

		rec := Recommendation{
			Text:        strings.TrimSpace(wire.Text),
			Explanation: strings.TrimSpace(wire.Explanation),
			Source:      strings.TrimSpace(wire.Source),
		}
		if wire.Page != nil && *wire.Page > 0 {
			rec.Page = *wire.Page
		}
		if wire.Confidence != nil {
			rec.Confidence = clamp01(*wire.Confidence)
		}
		recommendations = append(recommendations, rec)
	}

	if len(recommendations) == 0 {
		return []Recommendation{{Text: unparseableText}}
	}
	return recommendations
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
