package evaluation

import (
	"context"
	"strings"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/metrics"
	"github.com/jonathan/interview-agent/internal/types"
)

// Answerer is the part of the advisory oracle that judges answers.
type Answerer interface {
	EvaluateAnswer(ctx context.Context, req advisor.EvaluateRequest) (types.Verdict, error)
}

// AdvisorBacked delegates judgment to the advisory oracle and fails closed.
type AdvisorBacked struct {
	oracle   Answerer
	fallback Evaluator
	logger   logging.Logger
	metrics  *metrics.Recorder
}

// Option configures an AdvisorBacked evaluator.
type Option func(*AdvisorBacked)

// WithFallback evaluates locally when the oracle fails, instead of returning the
// neutral verdict.
func WithFallback(e Evaluator) Option {
	return func(a *AdvisorBacked) { a.fallback = e }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *AdvisorBacked) { a.logger = logging.OrNop(l) }
}

// WithMetrics counts fallbacks.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *AdvisorBacked) { a.metrics = r }
}

// NewAdvisorBacked creates an evaluator backed by oracle.
func NewAdvisorBacked(oracle Answerer, opts ...Option) *AdvisorBacked {
	a := &AdvisorBacked{oracle: oracle, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate asks the oracle with the last ContextWindow turns as context. Blank
// answers are judged locally. Oracle failures yield the fallback evaluator's
// verdict or NeutralVerdict.
func (a *AdvisorBacked) Evaluate(ctx context.Context, question types.QuestionRecord, answer string, recent []types.TurnRecord) types.Verdict {
	clean := strings.TrimSpace(answer)
	if clean == "" {
		return emptyVerdict(question)
	}

	v, err := a.oracle.EvaluateAnswer(ctx, advisor.EvaluateRequest{
		Question: question.Prompt,
		Answer:   clean,
		Context:  lastN(recent, ContextWindow),
	})
	if err != nil {
		a.logger.Warn("answer evaluation unavailable for %s: %v", question.ID, err)
		a.metrics.AdvisorFallback(advisor.OpEvaluate)
		if a.fallback != nil {
			return a.fallback.Evaluate(ctx, question, clean, recent)
		}
		return types.NeutralVerdict()
	}
	return advisor.NormalizeVerdict(v)
}
