package models

import (
	"github.com/google/uuid"
)

const StatusSuccess = "success"

// MatchReport is the JSON shape the analysis prompt asks the model for.
type MatchReport struct {
	OverallMatchPercentage    string `json:"overall_match_percentage"`
	KeySkillsMatch            string `json:"key_skills_match"`
	ExperienceRelevance       string `json:"experience_relevance"`
	MissingQualifications     string `json:"missing_qualifications"`
	SuggestionsForImprovement string `json:"suggestions_for_improvement"`
}

// Analysis is the match analyzer output. Text is always set; Report only when
// the model answered with decodable JSON.
type Analysis struct {
	Text   string
	Report *MatchReport
}

type AnalysisResult struct {
	Status        string       `json:"status"`
	ExtractedText string       `json:"extracted_text"`
	Analysis      string       `json:"analysis"`
	MatchReport   *MatchReport `json:"match_report,omitempty"`
	RunID         uuid.UUID    `json:"run_id"`
	PageCount     int          `json:"page_count"`
}
