package guidelines

import "context"

// NewCuratedStore returns a MemoryStore seeded with the curated guideline set
// and the sample uploaded internal documents.
func NewCuratedStore() *MemoryStore {
	store := NewMemoryStore()
	for _, doc := range CuratedDocuments() {
		// Put on a fresh MemoryStore cannot fail for well-formed seed docs.
		_ = store.Put(context.Background(), doc)
	}
	return store
}

// CuratedDocuments returns the curated guideline corpus in display order.
func CuratedDocuments() []Document {
	return []Document{
		{
			ID:          "1",
			Title:       "Diabetes Management - ADA 2024",
			Source:      "American Diabetes Association",
			LastUpdated: "Jan 2024",
			Pages:       []string{adaGlycemicTargets},
		},
		{
			ID:          "2",
			Title:       "Hypertension Guidelines - JNC 8",
			Source:      "Journal of the American Medical Association",
			LastUpdated: "Dec 2023",
			Pages:       []string{jnc8Recommendations},
		},
		{
			ID:          "3",
			Title:       "Lipid Management in Cardiovascular Disease",
			Source:      "American Heart Association",
			LastUpdated: "Mar 2024",
			Pages:       []string{placeholderContent},
		},
		{
			ID:          "4",
			Title:       "HER2+ Breast Cancer - NCCN Guidelines",
			Source:      "National Comprehensive Cancer Network",
			LastUpdated: "Feb 2024",
			Pages:       []string{nccnHER2Regimens},
		},
		{
			ID:          "uploaded_1",
			Title:       "Hospital Diabetes Protocol",
			Source:      "Internal Document",
			UploadedBy:  "Dr. Sarah Chen",
			LastUpdated: "Feb 15, 2024",
			Pages:       []string{placeholderContent},
		},
		{
			ID:          "uploaded_2",
			Title:       "Cardiology Department BP Management",
			Source:      "Internal Document",
			UploadedBy:  "Dr. Michael Johnson",
			LastUpdated: "Jan 22, 2024",
			Pages:       []string{placeholderContent},
		},
	}
}

const adaGlycemicTargets = `# Glycemic Targets and Management Guidelines

Regular monitoring of glycemia in patients with diabetes is crucial to assess treatment efficacy and reduce risk of hypoglycemia and hyperglycemia. The advent of continuous glucose monitoring (CGM) technology has revolutionized this aspect of diabetes care.

## Recommendations

8.1 Most patients with diabetes should be assessed using glycated hemoglobin (HbA1c) testing at least twice per year. (Grade A)

8.2 When glycemic targets are not being met, quarterly assessments using HbA1c testing are recommended. (Grade B)

All adult patients with diabetes should have an individualized glycemic target based on their duration of diabetes, age/life expectancy, comorbid conditions, known cardiovascular disease or advanced microvascular complications, hypoglycemia unawareness, and individual patient considerations.

8.5 For patients with Type 2 diabetes with HbA1c levels > 8.0%, clinicians should consider intensifying pharmacologic therapy, adding additional agents, or referral to a specialist. (Grade A)`

const jnc8Recommendations = `# Hypertension Guidelines - JNC 8

## Recommendations

1. In the general population >=60 years of age, initiate pharmacologic treatment to lower BP at systolic blood pressure (SBP) >=150 mm Hg or diastolic blood pressure (DBP) >=90 mm Hg and treat to a goal SBP <150 mm Hg and goal DBP <90 mm Hg. (Grade A)

2. In the general population <60 years of age, initiate pharmacologic treatment to lower BP at DBP >=90 mm Hg and treat to a goal DBP <90 mm Hg. (Grade A)

3. In the general population <60 years of age, initiate pharmacologic treatment to lower BP at SBP >=140 mm Hg and treat to a goal SBP <140 mm Hg. (Grade E)

4. In the population aged >=18 years with chronic kidney disease (CKD), initiate pharmacologic treatment to lower BP at SBP >=140 mm Hg or DBP >=90 mm Hg and treat to goal SBP <140 mm Hg and goal DBP <90 mm Hg. (Grade E)

5. In the population aged >=18 years with diabetes, initiate pharmacologic treatment to lower BP at SBP >=140 mm Hg or DBP >=90 mm Hg and treat to a goal SBP <140 mm Hg and goal DBP <90 mm Hg. (Grade E)`

const nccnHER2Regimens = `# NCCN Guidelines for HER2-Positive Breast Cancer

## Neoadjuvant/Adjuvant Therapy Recommendations

Preferred regimens for HER2-positive disease include:

1. Doxorubicin/cyclophosphamide (AC) followed by paclitaxel + trastuzumab +/- pertuzumab
   - AC: Doxorubicin 60 mg/m2 IV + Cyclophosphamide 600 mg/m2 IV q2-3wks x 4 cycles
   - Followed by: Paclitaxel 80 mg/m2 IV weekly x 12 weeks
   - With: Trastuzumab 4 mg/kg IV loading dose, then 2 mg/kg IV weekly
   - And: Pertuzumab 840 mg IV loading dose, then 420 mg IV q3wks (optional)

2. Docetaxel/carboplatin/trastuzumab + pertuzumab (TCH+P)
   - Docetaxel 75 mg/m2 IV + Carboplatin AUC 6 IV day 1 q3wks x 6 cycles
   - With: Trastuzumab 8 mg/kg IV loading dose, then 6 mg/kg IV q3wks
   - And: Pertuzumab 840 mg IV loading dose, then 420 mg IV q3wks

The addition of pertuzumab to trastuzumab-based regimens has been shown to increase the rate of pCR in neoadjuvant studies.

Cardiac monitoring:
- LVEF assessment at baseline and q3mo during HER2-targeted therapy
- Hold HER2-targeted therapy for >16% absolute decrease in LVEF from baseline, or LVEF <50%`

const placeholderContent = `# Medical Guideline Content

This is a placeholder for guideline content. In a real application, this would contain the actual text from the selected guideline document.

## Recommendations

1. Recommendation one would appear here.
2. Recommendation two would appear here.
3. Recommendation three would appear here.`
