package types

import "strings"

const (
	// MinScore is the lowest score a verdict can carry
	MinScore = 1
	// MaxScore is the highest score a verdict can carry
	MaxScore = 5
	// NeutralScore is used whenever an answer could not be judged
	NeutralScore = 3
)

// Verdict is the structured judgment of one answer.
type Verdict struct {
	Score            int      `json:"score"`
	Feedback         []string `json:"feedback"`
	IsRelevant       bool     `json:"is_relevant"`
	NeedsElaboration bool     `json:"needs_elaboration"`
	NeedsFollowUp    bool     `json:"needs_follow_up"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
}

// NeutralVerdict is the fail-closed verdict used when evaluation is unavailable.
func NeutralVerdict() Verdict {
	return Verdict{
		Score:      NeutralScore,
		Feedback:   []string{"Answer recorded. Detailed evaluation was unavailable."},
		IsRelevant: true,
	}
}

// SkippedVerdict is attached to questions the candidate chose to skip.
func SkippedVerdict() Verdict {
	return Verdict{
		Score:    MinScore,
		Feedback: []string{"Question skipped"},
	}
}

// WantsFollowUp reports whether the verdict asks for a concrete follow-up question.
func (v Verdict) WantsFollowUp() bool {
	return v.NeedsFollowUp && strings.TrimSpace(v.FollowUpQuestion) != ""
}

// Clamp returns a copy with the score forced into [MinScore, MaxScore] and the
// follow-up fields made consistent with each other.
func (v Verdict) Clamp() Verdict {
	out := v
	switch {
	case out.Score < MinScore:
		out.Score = MinScore
	case out.Score > MaxScore:
		out.Score = MaxScore
	}
	out.FollowUpQuestion = strings.TrimSpace(out.FollowUpQuestion)
	if out.FollowUpQuestion == "" {
		out.NeedsFollowUp = false
	}
	if !out.NeedsFollowUp {
		out.FollowUpQuestion = ""
	}
	feedback := make([]string, 0, len(out.Feedback))
	for _, f := range out.Feedback {
		if f = strings.TrimSpace(f); f != "" {
			feedback = append(feedback, f)
		}
	}
	out.Feedback = feedback
	return out
}
