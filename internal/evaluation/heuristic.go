package evaluation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/interview-agent/internal/skills"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	depthWords      = 25
	elaborateWords  = 15
	followUpDepthAt = 30
	excerptWords    = 6
)

// Rubric signals.
var (
	metricPattern   = regexp.MustCompile(`\b\d+(\.\d+)?%?\b`)
	contextPattern  = regexp.MustCompile(`(?i)(when|while|during|at|project|team|customer)`)
	tradeOffPattern = regexp.MustCompile(`(?i)(trade[\s-]?off|because|decided|alternative|constraint)`)
	actionPattern   = regexp.MustCompile(`(?i)(built|improved|implemented|designed|fixed|led)`)
	depthPattern    = regexp.MustCompile(`(?i)(because|trade[\s-]?off|challenge|decision|first|second|finally|impact)`)
	refusalPattern  = regexp.MustCompile(`(?i)^\W*(i\s+don'?t\s+know|i\s+do\s+not\s+know|no\s+idea|not\s+sure|i'?m\s+not\s+sure|skip|pass|no\s+comment)\b`)
)

var fillerWords = map[string]bool{
	"ok": true, "okay": true, "great": true, "alright": true, "fine": true, "good": true,
	"sure": true, "yes": true, "yeah": true, "yep": true, "no": true, "nope": true,
	"cool": true, "right": true, "thanks": true, "nice": true,
}

// Feedback strings.
const (
	FeedbackDepth    = "Add more depth and structure in your explanation."
	FeedbackMetric   = "Include at least one measurable outcome."
	FeedbackTradeOff = "Mention trade-offs or why you chose one approach over another."
	FeedbackFiller   = "Give a complete answer rather than a one-word reply."
	FeedbackRefusal  = "It is fine not to know everything; walk through how you would find out."
	FeedbackOffTopic = "Your answer drifted away from the question that was asked."
)

// Follow-up prompts for questions with nothing to anchor on. The anchored
// forms lead with the question's skill or an excerpt of its prompt.
const (
	FollowUpDepth        = "Could you go one level deeper and walk through your exact approach step by step?"
	FollowUpMetric       = "What measurable outcome did this produce (latency, revenue, quality, speed, or user impact)?"
	FollowUpAlternatives = "What alternatives did you evaluate, and why did you reject them?"

	followUpDepthOn        = "On %s, could you go one level deeper and walk through your exact approach step by step?"
	followUpMetricOn       = "On %s, what measurable outcome did your work produce (latency, revenue, quality, speed, or user impact)?"
	followUpAlternativesOn = "On %s, what alternatives did you evaluate, and why did you reject them?"
)

// Heuristic scores answers with word-count and keyword rules.
type Heuristic struct {
	role types.RoleProfile
}

// NewHeuristic creates a heuristic evaluator. The role's required skills drive
// the scaling follow-up for skill-tagged questions.
func NewHeuristic(role types.RoleProfile) *Heuristic {
	return &Heuristic{role: role}
}

// Evaluate applies the rubric: one point for each of length, context, action,
// and a metric or trade-off, on top of a base of one. Filler and refusals score
// one; answers under fifteen words score at most two.
func (h *Heuristic) Evaluate(_ context.Context, question types.QuestionRecord, answer string, _ []types.TurnRecord) types.Verdict {
	clean := strings.TrimSpace(answer)
	if clean == "" {
		return emptyVerdict(question)
	}
	words := wordCount(clean)

	if refusalPattern.MatchString(clean) && words <= 8 {
		return types.Verdict{
			Score:            types.MinScore,
			Feedback:         []string{FeedbackRefusal},
			IsRelevant:       false,
			NeedsElaboration: true,
			NeedsFollowUp:    true,
			FollowUpQuestion: stayOnTopic(question),
		}.Clamp()
	}

	if isFiller(clean) {
		return types.Verdict{
			Score:            types.MinScore,
			Feedback:         []string{FeedbackFiller},
			IsRelevant:       true,
			NeedsElaboration: true,
			NeedsFollowUp:    true,
			FollowUpQuestion: anchored(question, followUpDepthOn, FollowUpDepth),
		}.Clamp()
	}

	hasMetric := metricPattern.MatchString(clean)
	hasTradeOff := tradeOffPattern.MatchString(clean)

	score := types.MinScore
	if words >= depthWords {
		score++
	}
	if contextPattern.MatchString(clean) {
		score++
	}
	if actionPattern.MatchString(clean) {
		score++
	}
	if hasMetric || hasTradeOff {
		score++
	}

	var feedback []string
	if words < depthWords {
		feedback = append(feedback, FeedbackDepth)
	}
	if !hasMetric {
		feedback = append(feedback, FeedbackMetric)
	}
	if !hasTradeOff && question.Competency == types.CompetencyTechnical {
		feedback = append(feedback, FeedbackTradeOff)
	}

	v := types.Verdict{
		Score:      score,
		Feedback:   feedback,
		IsRelevant: true,
	}
	if words < elaborateWords {
		v.Score = min(v.Score, 2)
		v.NeedsElaboration = true
	}
	if v.Score <= 2 {
		v.NeedsElaboration = true
	}

	if words < depthWords && !actionPattern.MatchString(clean) && offTopic(question.Prompt, clean) {
		v.IsRelevant = false
		v.Score = types.MinScore
		v.Feedback = append([]string{FeedbackOffTopic}, v.Feedback...)
		v.NeedsFollowUp = true
		v.FollowUpQuestion = stayOnTopic(question)
		return v.Clamp()
	}

	if v.NeedsElaboration {
		if q := h.FollowUp(question, clean); q != "" {
			v.NeedsFollowUp = true
			v.FollowUpQuestion = q
		}
	}
	return v.Clamp()
}

// FollowUp picks a deterministic follow-up from the answer's weakest signal: depth,
// then metrics, then trade-offs for technical questions, then scale for questions
// tagged with a required skill. It returns "" when nothing is missing.
func (h *Heuristic) FollowUp(question types.QuestionRecord, answer string) string {
	switch {
	case wordCount(answer) < followUpDepthAt:
		return anchored(question, followUpDepthOn, FollowUpDepth)
	case !metricPattern.MatchString(answer):
		return anchored(question, followUpMetricOn, FollowUpMetric)
	case !depthPattern.MatchString(answer) && question.Competency == types.CompetencyTechnical:
		return anchored(question, followUpAlternativesOn, FollowUpAlternatives)
	case question.SkillTag != "" && h.role.IsRequired(question.SkillTag):
		return fmt.Sprintf("If the team scales traffic by 3x, what would you change first in your %s approach?", skills.DisplayName(question.SkillTag))
	default:
		return ""
	}
}

func isFiller(answer string) bool {
	words := strings.Fields(strings.ToLower(answer))
	if len(words) == 0 || len(words) > 2 {
		return false
	}
	for _, w := range words {
		if !fillerWords[strings.Trim(w, ".,!?;:'\"")] {
			return false
		}
	}
	return true
}

// offTopic reports whether the question names skills and the answer talks only
// about different ones.
func offTopic(prompt, answer string) bool {
	asked := skills.FindMentioned(prompt)
	if len(asked) == 0 {
		return false
	}
	mentioned := skills.FindMentioned(answer)
	return len(mentioned) > 0 && len(skills.Shared(mentioned, asked)) == 0
}

func stayOnTopic(question types.QuestionRecord) string {
	if skill := focusSkill(question); skill != "" {
		return fmt.Sprintf("Let's stay on %s: what did you personally do with it, even on a small project?", skill)
	}
	return "Could you take a first pass at the question, even a rough one, and talk me through how you would approach it?"
}

// anchored fills format with the question's skill, or a quoted excerpt of its
// prompt, falling back to the plain prompt when the question has neither.
func anchored(question types.QuestionRecord, format, plain string) string {
	if skill := focusSkill(question); skill != "" {
		return fmt.Sprintf(format, skill)
	}
	if excerpt := promptExcerpt(question.Prompt); excerpt != "" {
		return fmt.Sprintf(format, `"`+excerpt+`"`)
	}
	return plain
}

func focusSkill(question types.QuestionRecord) string {
	if asked := skills.FindMentioned(question.Prompt); len(asked) > 0 {
		return skills.DisplayName(asked[0])
	}
	if question.SkillTag != "" {
		return skills.DisplayName(question.SkillTag)
	}
	return ""
}

func promptExcerpt(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) == 0 {
		return ""
	}
	if len(words) <= excerptWords {
		return strings.TrimRight(strings.Join(words, " "), ".?!,;:")
	}
	return strings.TrimRight(strings.Join(words[:excerptWords], " "), ".?!,;:") + "..."
}
