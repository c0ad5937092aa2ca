package followup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/types"
)

func newPlan(prompts ...string) *plan.Plan {
	records := make([]types.QuestionRecord, len(prompts))
	for i, p := range prompts {
		records[i] = types.QuestionRecord{ID: plan.NewQuestionID(), Prompt: p, Kind: types.KindMain, Competency: types.CompetencyTechnical}
	}
	return plan.New(records...)
}

func wantsFollowUp(q string) types.Verdict {
	return types.Verdict{Score: 2, IsRelevant: true, NeedsElaboration: true, NeedsFollowUp: true, FollowUpQuestion: q}
}

func TestInject_SplicesAfterCursor(t *testing.T) {
	p := newPlan("Q1", "Q2", "Q3")
	in := NewInjector(2)
	current, err := p.At(1)
	require.NoError(t, err)

	rec := in.Inject(wantsFollowUp("Which index did you add?"), current, 1, p)

	require.NotNil(t, rec)
	assert.Equal(t, types.KindDynamicFollowUp, rec.Kind)
	assert.Equal(t, "Q2", rec.ParentPrompt)
	assert.Equal(t, types.CompetencyTechnical, rec.Competency)
	assert.Equal(t, types.SourceFollowUp, rec.Source)
	assert.Equal(t, 1, in.Used())
	assert.Equal(t, 1, in.Remaining())

	next, err := p.At(2)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, next.ID)
	assert.Equal(t, 4, p.Len())
}

func TestInject_LeavesPlanUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		verdict types.Verdict
		kind    types.QuestionKind
		budget  int
	}{
		{name: "no follow-up needed", verdict: types.Verdict{Score: 4, IsRelevant: true}, kind: types.KindMain, budget: 2},
		{name: "needs follow-up without question", verdict: types.Verdict{Score: 2, NeedsFollowUp: true}, kind: types.KindMain, budget: 2},
		{name: "blank question", verdict: wantsFollowUp("   "), kind: types.KindMain, budget: 2},
		{name: "question without flag", verdict: types.Verdict{Score: 2, FollowUpQuestion: "Why?"}, kind: types.KindMain, budget: 2},
		{name: "current is planned follow-up", verdict: wantsFollowUp("Why?"), kind: types.KindFollowUp, budget: 2},
		{name: "current is dynamic follow-up", verdict: wantsFollowUp("Why?"), kind: types.KindDynamicFollowUp, budget: 2},
		{name: "zero budget", verdict: wantsFollowUp("Why?"), kind: types.KindMain, budget: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlan("Q1", "Q2")
			before := p.Records()
			in := NewInjector(tt.budget)

			rec := in.Inject(tt.verdict, types.QuestionRecord{Prompt: "Q1", Kind: tt.kind}, 0, p)

			assert.Nil(t, rec)
			assert.Equal(t, before, p.Records())
			assert.Equal(t, 0, in.Used())
		})
	}
}

func TestInject_NeverExceedsBudget(t *testing.T) {
	p := newPlan("Q1", "Q2", "Q3", "Q4", "Q5", "Q6")
	in := NewInjector(2)

	inserted := 0
	for cursor := 0; cursor < p.Len(); cursor++ {
		current, err := p.At(cursor)
		require.NoError(t, err)
		if in.Inject(wantsFollowUp("Follow-up for "+current.Prompt+"?"), current, cursor, p) != nil {
			inserted++
		}
	}

	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, in.Used())
	assert.Equal(t, 8, p.Len())

	// the spliced records directly follow their parents and are never chained
	records := p.Records()
	assert.Equal(t, types.KindDynamicFollowUp, records[1].Kind)
	assert.Equal(t, "Q1", records[1].ParentPrompt)
	assert.Equal(t, types.KindDynamicFollowUp, records[3].Kind)
	assert.Equal(t, "Q2", records[3].ParentPrompt)
}

func TestInject_CursorOutOfRange(t *testing.T) {
	p := newPlan("Q1")
	in := NewInjector(3)
	assert.Nil(t, in.Inject(wantsFollowUp("Why?"), types.QuestionRecord{Prompt: "Q1"}, 5, p))
	assert.Equal(t, 0, in.Used())
}

func TestNewInjector_NegativeBudget(t *testing.T) {
	assert.Equal(t, 0, NewInjector(-1).Budget())
}
