package search

import (
	"context"
	"strings"

	"github.com/clinref/medguide/patient"
)

// fixtureClient is the deterministic search client used in tests and keyless
// demo runs.
type fixtureClient struct{}

func NewFixtureClient() Client {
	return fixtureClient{}
}

func (fixtureClient) Search(_ context.Context, query string, p patient.Context, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	loweredQuery := strings.ToLower(query)
	loweredDiagnosis := strings.ToLower(p.Diagnosis)

	var results []Result
	switch {
	case strings.Contains(loweredQuery, "diabetes") || strings.Contains(loweredDiagnosis, "diabetes"):
		results = []Result{
			{
				Title:   "Standards of Medical Care in Diabetes—2024",
				Snippet: "The American Diabetes Association's Standards of Medical Care in Diabetes provides clinicians with evidence-based recommendations for managing patients with diabetes and prediabetes.",
				URL:     "https://diabetesjournals.org/care/issue/47/Supplement_1",
				Source:  "diabetesjournals.org",
			},
			{
				Title:   "Treatment Intensification for Patients with Type 2 Diabetes",
				Snippet: "For patients with HbA1c levels > 8.0%, clinicians should consider adding additional pharmacologic agents or intensifying therapy.",
				URL:     "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC7861057/",
				Source:  "www.ncbi.nlm.nih.gov",
			},
			{
				Title:   "Guidelines for Hypertension Management in Diabetic Patients",
				Snippet: "Current recommendations suggest a target blood pressure of <140/90 mmHg for most patients with diabetes, with consideration of lower targets for certain high-risk populations.",
				URL:     "https://www.ahajournals.org/doi/10.1161/HYP.0000000000000065",
				Source:  "www.ahajournals.org",
			},
		}
	case strings.Contains(loweredQuery, "her2") || strings.Contains(loweredQuery, "breast cancer"):
		results = []Result{
			{
				Title:   "NCCN Clinical Practice Guidelines in Oncology: Breast Cancer",
				Snippet: "Current NCCN guidelines recommend dose-dense AC followed by paclitaxel with HER2-targeted therapy for HER2-positive breast cancer in the neoadjuvant setting.",
				URL:     "https://www.nccn.org/guidelines/guidelines-detail?category=1&id=1419",
				Source:  "www.nccn.org",
			},
			{
				Title:   "Dual HER2 Blockade in Neoadjuvant Treatment of Breast Cancer",
				Snippet: "The addition of pertuzumab to trastuzumab-based regimens has been shown to increase the rate of pathologic complete response in neoadjuvant studies.",
				URL:     "https://www.nejm.org/doi/full/10.1056/NEJMoa1306801",
				Source:  "www.nejm.org",
			},
		}
	default:
		results = []Result{
			{
				Title:   "Medical Guideline Search Results",
				Snippet: "Search results for medical guidelines would appear here based on your query.",
				URL:     "https://example.com/guidelines",
				Source:  "example.com",
			},
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

var _ Client = fixtureClient{}
