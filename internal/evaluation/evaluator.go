// Package evaluation scores answers. Evaluators never return errors: when a
// judgment cannot be made they fall back to a neutral verdict so a single
// failure never stops an interview.
package evaluation

import (
	"context"
	"strings"

	"github.com/jonathan/interview-agent/internal/types"
)

// ContextWindow is the number of recent turns handed to an evaluator
const ContextWindow = 2

// Evaluator judges one answer to one question.
type Evaluator interface {
	Evaluate(ctx context.Context, question types.QuestionRecord, answer string, recent []types.TurnRecord) types.Verdict
}

// Func adapts a function to the Evaluator interface.
type Func func(ctx context.Context, question types.QuestionRecord, answer string, recent []types.TurnRecord) types.Verdict

// Evaluate calls f.
func (f Func) Evaluate(ctx context.Context, question types.QuestionRecord, answer string, recent []types.TurnRecord) types.Verdict {
	return f(ctx, question, answer, recent)
}

func lastN(turns []types.TurnRecord, n int) []types.TurnRecord {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// emptyVerdict is used for blank answers without consulting anyone.
func emptyVerdict(question types.QuestionRecord) types.Verdict {
	return types.Verdict{
		Score:            types.MinScore,
		Feedback:         []string{"No answer was given."},
		IsRelevant:       false,
		NeedsElaboration: true,
		NeedsFollowUp:    true,
		FollowUpQuestion: stayOnTopic(question),
	}.Clamp()
}
