package ai

// ViabilityReport is the eligibility assessment of a client against the call bases.
type ViabilityReport struct {
	Score           int                     `json:"score"`
	Eligible        bool                    `json:"eligible"`
	Summary         string                  `json:"summary"`
	Requirements    []RequirementAssessment `json:"requirements"`
	Risks           []string                `json:"risks"`
	Recommendations []string                `json:"recommendations"`
}

type RequirementAssessment struct {
	Requirement string `json:"requirement"`
	Met         bool   `json:"met"`
	Comment     string `json:"comment"`
}

// ReviewReport is the drafting-quality review of the memoria técnica.
type ReviewReport struct {
	OverallScore int                 `json:"overall_score"`
	Strengths    []string            `json:"strengths"`
	Weaknesses   []string            `json:"weaknesses"`
	Suggestions  []SectionSuggestion `json:"suggestions"`
}

type SectionSuggestion struct {
	Section    string `json:"section"`
	Suggestion string `json:"suggestion"`
}

// SectionDraft is one generated section of the memoria técnica.
type SectionDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SectionPlan wraps the generated sections; JSON mode requires an object at the top level.
type SectionPlan struct {
	Sections []SectionDraft `json:"sections"`
}

// ClampScore keeps model-provided scores inside 0..100.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
