// Package patient models the patient record the guideline engines consume.
// A Context is selected once per session by the caller and read-only afterwards.
package patient

type Context struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Age            int               `json:"age"`
	Gender         string            `json:"gender"`
	Diagnosis      string            `json:"diagnosis"`
	Stage          string            `json:"stage,omitempty"`
	ReceptorStatus map[string]string `json:"receptorStatus,omitempty"`
	RecentLabs     map[string]string `json:"recentLabs,omitempty"`
}

// Lab returns the named lab value, or fallback when the chart does not carry
// it. Lab names are opaque label strings ("HbA1c", "BP", ...); the engines do
// nothing with them beyond string matching.
func (c Context) Lab(name, fallback string) string {
	if value, ok := c.RecentLabs[name]; ok && value != "" {
		return value
	}
	return fallback
}

// Receptor returns the named receptor marker value, or fallback when absent.
func (c Context) Receptor(name, fallback string) string {
	if value, ok := c.ReceptorStatus[name]; ok && value != "" {
		return value
	}
	return fallback
}

// StageOr returns the staging string, or fallback for unstaged charts.
func (c Context) StageOr(fallback string) string {
	if c.Stage != "" {
		return c.Stage
	}
	return fallback
}

// AgeOr returns the recorded age, or fallback when the chart has none.
func (c Context) AgeOr(fallback int) int {
	if c.Age > 0 {
		return c.Age
	}
	return fallback
}

// GenderOr returns the recorded gender, or fallback when the chart has none.
func (c Context) GenderOr(fallback string) string {
	if c.Gender != "" {
		return c.Gender
	}
	return fallback
}
