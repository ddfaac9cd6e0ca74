package patient

// Sample returns a demo patient for the given condition type. Unknown types
// fall back to the diabetes patient, matching the curated demo data set.
func Sample(conditionType string) Context {
	if conditionType == "her2" {
		return Context{
			ID:        "p002",
			Name:      "Sarah Johnson",
			Age:       47,
			Gender:    "female",
			Diagnosis: "Invasive Ductal Carcinoma, HER2+",
			Stage:     "cT2N1M0 stage IIB",
			ReceptorStatus: map[string]string{
				"ER":   "15%",
				"PR":   "5%",
				"HER2": "3+ by IHC (confirmed by FISH with HER2/CEP17 ratio 5.2)",
			},
			RecentLabs: map[string]string{
				"CBC":  "WNL",
				"CMP":  "WNL",
				"LVEF": "62%",
			},
		}
	}

	return Context{
		ID:        "p001",
		Name:      "James Wilson",
		Age:       54,
		Gender:    "male",
		Diagnosis: "Type 2 Diabetes, Hypertension",
		RecentLabs: map[string]string{
			"HbA1c": "8.2%",
			"BP":    "142/88",
			"LDL":   "138mg/dL",
		},
	}
}

// SampleIDs lists the ids of the demo patients in stable order.
func SampleIDs() []string {
	return []string{"p001", "p002"}
}

// SampleByID resolves a demo patient by id.
func SampleByID(id string) (Context, bool) {
	switch id {
	case "p001":
		return Sample("diabetes"), true
	case "p002":
		return Sample("her2"), true
	default:
		return Context{}, false
	}
}
