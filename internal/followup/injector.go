// Package followup splices dynamic probing questions into a running plan.
package followup

import (
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/types"
)

// Injector enforces the per-session follow-up budget. It is owned by a single
// session and is not safe for concurrent use.
type Injector struct {
	budget int
	used   int
}

// NewInjector creates an injector allowing at most budget insertions.
func NewInjector(budget int) *Injector {
	if budget < 0 {
		budget = 0
	}
	return &Injector{budget: budget}
}

// Budget returns the maximum number of insertions.
func (in *Injector) Budget() int { return in.budget }

// Used returns the number of insertions made so far.
func (in *Injector) Used() int { return in.used }

// Remaining returns how many insertions are still allowed.
func (in *Injector) Remaining() int { return in.budget - in.used }

// Inject places a dynamic follow-up right after cursor when the verdict asks for
// one, budget remains, and the current question is not itself a follow-up. It
// returns the inserted record, or nil when the plan was left unchanged.
func (in *Injector) Inject(v types.Verdict, current types.QuestionRecord, cursor int, p *plan.Plan) *types.QuestionRecord {
	if !v.WantsFollowUp() || in.used >= in.budget || current.Kind.IsFollowUp() {
		return nil
	}

	rec := types.QuestionRecord{
		ID:           plan.NewQuestionID(),
		Prompt:       v.FollowUpQuestion,
		Competency:   current.Competency,
		Kind:         types.KindDynamicFollowUp,
		Source:       types.SourceFollowUp,
		ParentPrompt: current.Prompt,
		SkillTag:     current.SkillTag,
	}
	if err := p.InsertAfter(cursor, rec); err != nil {
		return nil
	}
	in.used++
	return &rec
}
