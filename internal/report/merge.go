package report

import (
	"math"

	"github.com/jonathan/interview-agent/internal/types"
)

// Merge overlays the oracle's narrative fields on a local report. Non-empty
// oracle fields win; the overall score is clamped to 1-5 and rounded; skill
// coverage and counts always stay local. A nil partial returns local unchanged.
func Merge(local *types.Report, partial *types.PartialReport) *types.Report {
	if partial == nil {
		return local
	}
	out := *local

	if partial.OverallScore != nil && local.TotalAnswers > 0 && !math.IsNaN(*partial.OverallScore) {
		out.OverallScore = Round1(math.Max(types.MinScore, math.Min(types.MaxScore, *partial.OverallScore)))
	}
	if len(partial.Strengths) > 0 {
		out.Strengths = append([]string(nil), partial.Strengths...)
	}
	if len(partial.Improvements) > 0 {
		out.Improvements = append([]string(nil), partial.Improvements...)
	}
	if partial.Summary != "" {
		out.Summary = partial.Summary
	}
	if len(partial.CompetencyScores) > 0 {
		merged := make(map[string]float64, len(local.CompetencyScores))
		for k, v := range local.CompetencyScores {
			merged[k] = v
		}
		for k, v := range partial.CompetencyScores {
			// only competencies that were actually scored locally
			if _, ok := merged[k]; ok && !math.IsNaN(v) {
				merged[k] = Round1(math.Max(types.MinScore, math.Min(types.MaxScore, v)))
			}
		}
		out.CompetencyScores = merged
	}
	return &out
}
