// Package report aggregates a finished transcript into the final scorecard.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/interview-agent/internal/skills"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	maxStrengths           = 3
	maxLowScoreEntries     = 2
	maxMissingSkillEntries = 3
	lowScoreThreshold      = 3
)

// Defaults used when the transcript gives nothing to say.
const (
	DefaultStrength    = "Your answers were consistent; focus on adding stronger metrics."
	DefaultImprovement = "Increase specificity with metrics and concrete decision trade-offs."
)

// Meta describes the session a report belongs to.
type Meta struct {
	CandidateName   string
	TemplateLabel   string
	DurationMinutes int
	EndReason       string
	Now             func() time.Time
}

// Build computes the local report. Skipped entries stay in the transcript but
// are left out of every score. It never fails: an empty transcript yields a
// neutral overall score and default advice.
func Build(transcript *types.Transcript, candidate types.CandidateProfile, role types.RoleProfile, meta Meta) *types.Report {
	answered := transcript.Answered()

	scores := make([]int, 0, len(answered))
	byCompetency := make(map[string][]int)
	var mentionText strings.Builder
	for _, e := range answered {
		scores = append(scores, e.Verdict.Score)
		key := string(e.Competency.OrGeneral())
		byCompetency[key] = append(byCompetency[key], e.Verdict.Score)
		mentionText.WriteString(e.Prompt)
		mentionText.WriteString(" ")
		mentionText.WriteString(e.Answer)
		mentionText.WriteString("\n")
	}

	overall := float64(types.NeutralScore)
	if len(scores) > 0 {
		overall = Average(scores)
	}

	competencyScores := make(map[string]float64, len(byCompetency))
	for key, list := range byCompetency {
		competencyScores[key] = Average(list)
	}

	mentioned := skills.FindMentioned(mentionText.String())
	required := normalized(role.RequiredSkills)
	matched := skills.Shared(required, mentioned)
	missing := skills.Missing(mentioned, required)

	now := time.Now
	if meta.Now != nil {
		now = meta.Now
	}

	return &types.Report{
		CandidateName:         meta.CandidateName,
		TemplateLabel:         meta.TemplateLabel,
		DurationMinutes:       meta.DurationMinutes,
		OverallScore:          overall,
		CompetencyScores:      competencyScores,
		Strengths:             orDefault(strengths(answered), DefaultStrength),
		Improvements:          orDefault(improvements(answered, missing), DefaultImprovement),
		MatchedSkills:         matched,
		MissingRequiredSkills: missing,
		ResumeSkills:          nonNil(candidate.Skills),
		TotalAnswers:          len(answered),
		EndReason:             meta.EndReason,
		GeneratedAt:           now(),
	}
}

// Average returns the mean rounded to one decimal, or 0 for an empty list.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return Round1(float64(total) / float64(len(scores)))
}

// Round1 rounds half up to one decimal.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// strengths lists the top entries by score, ties in transcript order.
func strengths(answered []types.TurnRecord) []string {
	sorted := make([]types.TurnRecord, len(answered))
	copy(sorted, answered)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Verdict.Score > sorted[j].Verdict.Score
	})

	out := make([]string, 0, maxStrengths)
	for _, e := range sorted {
		if len(out) == maxStrengths {
			break
		}
		out = append(out, fmt.Sprintf("Strong %s response: \"%s\"", e.Competency.OrGeneral(), e.Prompt))
	}
	return out
}

// improvements lists the lowest scored entries, then missing required skills.
func improvements(answered []types.TurnRecord, missing []string) []string {
	var low []types.TurnRecord
	for _, e := range answered {
		if e.Verdict.Score <= lowScoreThreshold {
			low = append(low, e)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		return low[i].Verdict.Score < low[j].Verdict.Score
	})

	var out []string
	for i, e := range low {
		if i == maxLowScoreEntries {
			break
		}
		out = append(out, fmt.Sprintf("Improve depth for: \"%s\"", e.Prompt))
	}
	for i, skill := range missing {
		if i == maxMissingSkillEntries {
			break
		}
		out = append(out, fmt.Sprintf("Practice role-specific examples for \"%s\".", skill))
	}
	return out
}

func normalized(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if n := skills.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return skills.Unique(out)
}

func orDefault(list []string, def string) []string {
	if len(list) == 0 {
		return []string{def}
	}
	return list
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
