// Package intent reads what a candidate's utterance means for the turn: an answer,
// a request for time, a request to hear the question again, and so on. It holds the
// rule-based classifier used when no advisory oracle is configured.
package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/types"
)

// DefaultExtraTimeSeconds is the extra wait granted to a thinking candidate
const DefaultExtraTimeSeconds = 20

// Default spoken lines.
const (
	LineThinking     = "Take your time. I'll wait while you think."
	LineClarify      = "Let me put it another way."
	LineRepeat       = "Sure, here it is again."
	LineEmpty        = "I didn't catch that. Could you please answer?"
	LineOfferOptions = "Would you like me to repeat the question, or would you prefer to skip this one and continue?"
	LineMoreTime     = "Take your time. I'm here when you're ready."
	LineTimeout      = "Would you like more time to think, or should I repeat the question?"
	LineMoveOn       = "Let's leave that one for now and move on to the next question."
)

// Classifier reads utterances and silences.
type Classifier interface {
	ClassifyResponse(ctx context.Context, req advisor.ClassifyRequest) (types.Classification, error)
	ClassifyTimeout(ctx context.Context, req advisor.TimeoutRequest) (types.Classification, error)
}

var (
	fillerPattern   = regexp.MustCompile(`(?i)\b(u+m+|uhm+|hm+|uh+|er|ah+)\b[,.]?`)
	spacePattern    = regexp.MustCompile(`\s+`)
	repeatPattern   = regexp.MustCompile(`(?i)\b(repeat|say\s+(that|it)\s+again|one\s+more\s+time|pardon|come\s+again|didn'?t\s+(catch|hear))\b`)
	clarifyPattern  = regexp.MustCompile(`(?i)\b(what\s+do\s+you\s+mean|can\s+you\s+(explain|clarify|rephrase)|could\s+you\s+(explain|clarify|rephrase)|clarify|rephrase|not\s+sure\s+what\s+you'?re\s+asking|what\s+does\s+that\s+mean)\b`)
	thinkingPattern = regexp.MustCompile(`(?i)\b(let\s+me\s+think|give\s+me\s+a\s+(moment|second|minute|sec)|good\s+question|hold\s+on|one\s+(moment|second|sec)|thinking)\b|^\W*(hmm+|umm+|uh+)\W*$`)
	readyPattern    = regexp.MustCompile(`(?i)^\W*(ok(ay)?|ready|sure|alright|all\s+right|yes|yeah|yep|go\s+ahead|i'?m\s+ready)\W*$`)
)

// Clean strips hesitation sounds ("umm", "uh", "hmm") from a finalized
// utterance and collapses whitespace.
func Clean(utterance string) string {
	cleaned := fillerPattern.ReplaceAllString(utterance, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(cleaned, " "))
}

// Classify maps an utterance to an intent with rules. Long utterances are
// answers even when they contain a thinking phrase.
func Classify(utterance string) types.Classification {
	text := strings.TrimSpace(utterance)
	words := len(strings.Fields(text))

	switch {
	case Clean(text) == "" && !thinkingPattern.MatchString(text):
		return types.Classification{Intent: types.IntentEmpty, Response: LineEmpty}
	case words <= 12 && repeatPattern.MatchString(text):
		return types.Classification{Intent: types.IntentRepeat, Response: LineRepeat}
	case words <= 15 && clarifyPattern.MatchString(text):
		return types.Classification{Intent: types.IntentClarify, Response: LineClarify}
	case words <= 10 && thinkingPattern.MatchString(text):
		return types.Classification{Intent: types.IntentThinking, Response: LineThinking, ExtraTimeSeconds: DefaultExtraTimeSeconds}
	case readyPattern.MatchString(text):
		return types.Classification{Intent: types.IntentReady}
	default:
		return types.Classification{Intent: types.IntentAnswer}
	}
}

// ClassifyTimeout maps a silence cue to a reaction: after a long thinking pause
// the candidate is offered to repeat or skip, after a short silence they get more
// time.
func ClassifyTimeout(cue types.TimeoutCue) types.Classification {
	if cue == types.CueLongThinking {
		return types.Classification{Intent: types.IntentOfferOptions, Response: LineOfferOptions}
	}
	return types.Classification{Intent: types.IntentGiveMoreTime, Response: LineMoreTime, ExtraTimeSeconds: DefaultExtraTimeSeconds}
}

// Local implements Classifier with the rules above. It never fails.
type Local struct{}

// ClassifyResponse classifies req.Utterance with Classify.
func (Local) ClassifyResponse(_ context.Context, req advisor.ClassifyRequest) (types.Classification, error) {
	return Classify(req.Utterance), nil
}

// ClassifyTimeout classifies req.Cue with ClassifyTimeout.
func (Local) ClassifyTimeout(_ context.Context, req advisor.TimeoutRequest) (types.Classification, error) {
	return ClassifyTimeout(req.Cue), nil
}
