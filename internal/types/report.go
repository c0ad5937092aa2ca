package types

import (
	"sort"
	"time"
)

// Report is the final scorecard of one interview.
type Report struct {
	CandidateName         string             `json:"candidate_name,omitempty"`
	TemplateLabel         string             `json:"template_label,omitempty"`
	DurationMinutes       int                `json:"duration_minutes,omitempty"`
	OverallScore          float64            `json:"overall_score"`
	CompetencyScores      map[string]float64 `json:"competency_scores"`
	Strengths             []string           `json:"strengths"`
	Improvements          []string           `json:"improvements"`
	MatchedSkills         []string           `json:"matched_skills"`
	MissingRequiredSkills []string           `json:"missing_required_skills"`
	ResumeSkills          []string           `json:"resume_skills"`
	TotalAnswers          int                `json:"total_answers"`
	Summary               string             `json:"summary,omitempty"`
	EndReason             string             `json:"end_reason,omitempty"`
	GeneratedAt           time.Time          `json:"generated_at"`
}

// CompetencyScore is one row of the per-competency breakdown.
type CompetencyScore struct {
	Competency string  `json:"competency"`
	Average    float64 `json:"average"`
}

// SortedCompetencies returns the competency scores ordered by name.
func (r *Report) SortedCompetencies() []CompetencyScore {
	out := make([]CompetencyScore, 0, len(r.CompetencyScores))
	for name, avg := range r.CompetencyScores {
		out = append(out, CompetencyScore{Competency: name, Average: avg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Competency < out[j].Competency })
	return out
}

// PartialReport holds the narrative fields the advisory oracle may contribute.
type PartialReport struct {
	OverallScore     *float64           `json:"overall_score,omitempty"`
	CompetencyScores map[string]float64 `json:"competency_scores,omitempty"`
	Strengths        []string           `json:"strengths,omitempty"`
	Improvements     []string           `json:"improvements,omitempty"`
	Summary          string             `json:"summary,omitempty"`
}
