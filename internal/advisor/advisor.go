// Package advisor adapts the remote advisory oracle: question planning, answer
// evaluation, intent classification and report narrative. Every call is fallible
// and callers are expected to apply their own fail-closed defaults.
package advisor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/interview-agent/internal/types"
)

// MaxInputChars caps the combined resume and job description sent for planning
const MaxInputChars = 18000

// Advisor is the advisory oracle.
type Advisor interface {
	PlanQuestions(ctx context.Context, req PlanRequest) (*PlanResponse, error)
	EvaluateAnswer(ctx context.Context, req EvaluateRequest) (types.Verdict, error)
	ClassifyResponse(ctx context.Context, req ClassifyRequest) (types.Classification, error)
	ClassifyTimeout(ctx context.Context, req TimeoutRequest) (types.Classification, error)
	BuildReport(ctx context.Context, req ReportRequest) (*types.PartialReport, error)
}

// PlanRequest asks for a personalized question plan.
type PlanRequest struct {
	CandidateName   string
	Domain          string
	YearsExperience int
	DurationMinutes int
	ResumeText      string
	JobText         string
	// QuestionCount is the number of main questions wanted, introduction excluded
	QuestionCount int
	FocusSkills   []string
}

// PlanResponse is the oracle's plan, nested the way it was requested.
type PlanResponse struct {
	Introduction string            `json:"introduction"`
	Questions    []PlannedQuestion `json:"questions"`
}

// PlannedQuestion is one main question with its planned follow-ups.
type PlannedQuestion struct {
	ID         string            `json:"id"`
	Prompt     string            `json:"prompt"`
	Competency types.Competency  `json:"competency"`
	FollowUps  []PlannedFollowUp `json:"follow_ups"`
}

// PlannedFollowUp is a follow-up attached to a planned question.
type PlannedFollowUp struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// EvaluateRequest asks for a verdict on one answer.
type EvaluateRequest struct {
	Question string
	Answer   string
	Context  []types.TurnRecord
}

// ClassifyRequest asks for the intent of a finalized utterance.
type ClassifyRequest struct {
	Utterance       string
	Question        string
	YearsExperience int
	Context         []types.TurnRecord
}

// TimeoutRequest asks how to react to a silence.
type TimeoutRequest struct {
	Cue             types.TimeoutCue
	Question        string
	YearsExperience int
}

// ReportRequest asks for the narrative report fields.
type ReportRequest struct {
	Transcript      []types.TurnRecord
	CandidateName   string
	Domain          string
	YearsExperience int
	AverageScore    float64
}

var genericFollowUpPattern = regexp.MustCompile(`(?i)(overcome|tackle|handle)\s+(hurdles|challenges|difficulties)|how\s+did\s+you\s+(overcome|tackle|handle)`)

// IsGenericFollowUp reports whether a follow-up uses boilerplate phrasing such as
// "how did you overcome challenges".
func IsGenericFollowUp(question string) bool {
	return genericFollowUpPattern.MatchString(question)
}

// NormalizeVerdict clamps an oracle verdict and applies the follow-up policy: a
// follow-up is kept only for irrelevant answers or answers that need elaboration,
// and boilerplate follow-ups are dropped.
func NormalizeVerdict(v types.Verdict) types.Verdict {
	out := v
	out.FollowUpQuestion = strings.TrimSpace(out.FollowUpQuestion)

	switch {
	case out.FollowUpQuestion == "":
		out.NeedsFollowUp = false
	case !out.IsRelevant || out.NeedsElaboration:
		out.NeedsFollowUp = true
	default:
		out.NeedsFollowUp = false
	}
	if out.NeedsFollowUp && IsGenericFollowUp(out.FollowUpQuestion) {
		out.NeedsFollowUp = false
	}
	return out.Clamp()
}

// ToneFor returns how the interviewer should sound for a level of experience.
func ToneFor(years int) string {
	switch {
	case years <= 0:
		return "patient and encouraging"
	case years == 1:
		return "encouraging"
	case years == 2:
		return "balanced"
	case years < 5:
		return "professional"
	case years < 10:
		return "direct but respectful"
	default:
		return "concise and professional"
	}
}

// TruncateInputs shortens resume and job description proportionally so that
// together they fit in limit characters. Short inputs are returned unchanged.
func TruncateInputs(resume, job string, limit int) (string, string) {
	r, j := []rune(resume), []rune(job)
	total := len(r) + len(j)
	if limit <= 0 || total <= limit {
		return resume, job
	}
	rLimit := limit * len(r) / total
	jLimit := limit * len(j) / total
	return string(r[:rLimit]), string(j[:jLimit])
}

// FormatContext renders recent turns as question/answer pairs for a prompt.
func FormatContext(turns []types.TurnRecord) string {
	if len(turns) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		answer := t.Answer
		if t.Skipped {
			answer = "(skipped)"
		}
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", orNA(t.Prompt), orNA(answer)))
	}
	return strings.Join(lines, "\n")
}

// formatTranscript renders the whole interview for the report prompt.
func formatTranscript(turns []types.TurnRecord) string {
	if len(turns) == 0 {
		return "(no answers were recorded)"
	}
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Q%d [%s]: %s\n", i+1, t.Competency.OrGeneral(), orNA(t.Prompt))
		if t.Skipped {
			sb.WriteString("A: (skipped)")
			continue
		}
		fmt.Fprintf(&sb, "A: %s\nScore: %d", orNA(t.Answer), t.Verdict.Score)
	}
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
