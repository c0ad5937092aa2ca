package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/types"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func turn(prompt, answer string, competency types.Competency, score int) types.TurnRecord {
	return types.TurnRecord{
		QuestionID: prompt,
		Prompt:     prompt,
		Answer:     answer,
		Competency: competency,
		Kind:       types.KindMain,
		Verdict:    types.Verdict{Score: score, IsRelevant: true},
	}
}

func TestBuild_AveragesScores(t *testing.T) {
	transcript := types.NewTranscript(
		turn("Q1", "a", types.CompetencyTechnical, 2),
		turn("Q2", "b", types.CompetencyTechnical, 4),
		turn("Q3", "c", types.CompetencyBehavioral, 3),
	)

	r := Build(transcript, types.CandidateProfile{}, types.RoleProfile{}, Meta{Now: fixedNow})

	assert.Equal(t, 3.0, r.OverallScore)
	assert.Equal(t, map[string]float64{"technical": 3.0, "behavioral": 3.0}, r.CompetencyScores)
	assert.Equal(t, 3, r.TotalAnswers)
	assert.Equal(t, fixedNow(), r.GeneratedAt)
}

func TestBuild_RoundsToOneDecimal(t *testing.T) {
	transcript := types.NewTranscript(
		turn("Q1", "a", "", 4),
		turn("Q2", "b", "", 4),
		turn("Q3", "c", "", 5),
	)
	r := Build(transcript, types.CandidateProfile{}, types.RoleProfile{}, Meta{})

	assert.Equal(t, 4.3, r.OverallScore)
	assert.Equal(t, map[string]float64{"general": 4.3}, r.CompetencyScores)
}

func TestBuild_SkippedEntriesExcluded(t *testing.T) {
	skipped := types.TurnRecord{Prompt: "Q2", Skipped: true, Verdict: types.SkippedVerdict(), Competency: types.CompetencyTechnical}
	transcript := types.NewTranscript(turn("Q1", "a", types.CompetencyBehavioral, 5), skipped)

	r := Build(transcript, types.CandidateProfile{}, types.RoleProfile{}, Meta{})

	assert.Equal(t, 5.0, r.OverallScore)
	assert.Equal(t, 1, r.TotalAnswers)
	assert.NotContains(t, r.CompetencyScores, "technical")
	assert.Equal(t, 2, transcript.Len())
}

func TestBuild_EmptyTranscript(t *testing.T) {
	for _, transcript := range []*types.Transcript{nil, types.NewTranscript()} {
		r := Build(transcript, types.CandidateProfile{}, types.RoleProfile{RequiredSkills: []string{"react"}}, Meta{})

		require.NotNil(t, r)
		assert.Equal(t, 3.0, r.OverallScore)
		assert.Equal(t, 0, r.TotalAnswers)
		assert.Empty(t, r.CompetencyScores)
		assert.Equal(t, []string{DefaultStrength}, r.Strengths)
		assert.Equal(t, []string{`Practice role-specific examples for "react".`}, r.Improvements)
		assert.Equal(t, []string{"react"}, r.MissingRequiredSkills)
		assert.Empty(t, r.MatchedSkills)
		assert.NotNil(t, r.ResumeSkills)
	}
}

func TestBuild_NoRoleNoAnswersUsesDefaults(t *testing.T) {
	r := Build(types.NewTranscript(), types.CandidateProfile{}, types.RoleProfile{}, Meta{})
	assert.Equal(t, []string{DefaultImprovement}, r.Improvements)
}

func TestBuild_SkillCoverage(t *testing.T) {
	transcript := types.NewTranscript(
		turn("Your resume and JD both emphasize React. Tell me about a project.", "We shipped a dashboard", types.CompetencyTechnical, 4),
		turn("How do you deploy?", "We run everything on Kubernetes with Helm", types.CompetencyTechnical, 3),
	)
	role := types.RoleProfile{RequiredSkills: []string{"react", "kubernetes", "graphql", "aws", "terraform", "python"}}
	candidate := types.CandidateProfile{Skills: []string{"react", "typescript"}}

	r := Build(transcript, candidate, role, Meta{})

	assert.Equal(t, []string{"react", "kubernetes"}, r.MatchedSkills)
	assert.Equal(t, []string{"graphql", "aws", "terraform", "python"}, r.MissingRequiredSkills)
	assert.Equal(t, []string{"react", "typescript"}, r.ResumeSkills)

	assert.Equal(t, []string{
		`Improve depth for: "How do you deploy?"`,
		`Practice role-specific examples for "graphql".`,
		`Practice role-specific examples for "aws".`,
		`Practice role-specific examples for "terraform".`,
	}, r.Improvements)
}

func TestBuild_StrengthsAndImprovementsOrdering(t *testing.T) {
	transcript := types.NewTranscript(
		turn("Q1", "a", types.CompetencyCommunication, 3),
		turn("Q2", "b", types.CompetencyTechnical, 5),
		turn("Q3", "c", types.CompetencyTechnical, 2),
		turn("Q4", "d", types.CompetencyBehavioral, 4),
		turn("Q5", "e", types.CompetencyBehavioral, 1),
	)

	r := Build(transcript, types.CandidateProfile{}, types.RoleProfile{}, Meta{})

	assert.Equal(t, []string{
		`Strong technical response: "Q2"`,
		`Strong behavioral response: "Q4"`,
		`Strong communication response: "Q1"`,
	}, r.Strengths)
	assert.Equal(t, []string{
		`Improve depth for: "Q5"`,
		`Improve depth for: "Q3"`,
	}, r.Improvements)
}

func TestBuild_CarriesMeta(t *testing.T) {
	r := Build(types.NewTranscript(), types.CandidateProfile{}, types.RoleProfile{}, Meta{
		CandidateName:   "Asha",
		TemplateLabel:   "Backend Engineer",
		DurationMinutes: 20,
		EndReason:       "completed",
	})
	assert.Equal(t, "Asha", r.CandidateName)
	assert.Equal(t, "Backend Engineer", r.TemplateLabel)
	assert.Equal(t, 20, r.DurationMinutes)
	assert.Equal(t, "completed", r.EndReason)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 3.3, Round1(10.0/3))
	assert.Equal(t, 4.0, Round1(3.96))
	assert.Equal(t, 0.0, Average(nil))
}
