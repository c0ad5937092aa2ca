package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/metrics"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/schemas"
	"github.com/jonathan/interview-agent/internal/types"
)

const tracerName = "github.com/jonathan/interview-agent/internal/advisor"

// DefaultTimeout bounds a single oracle call
const DefaultTimeout = 20 * time.Second

// Operation names used in logs, spans and metrics.
const (
	OpPlan             = "plan_questions"
	OpEvaluate         = "evaluate_answer"
	OpClassifyResponse = "classify_response"
	OpClassifyTimeout  = "classify_timeout"
	OpReport           = "build_report"
)

// LLMAdvisor implements Advisor on top of an llm.Client.
type LLMAdvisor struct {
	client  llm.Client
	timeout time.Duration
	logger  logging.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// Option configures an LLMAdvisor.
type Option func(*LLMAdvisor)

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(a *LLMAdvisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *LLMAdvisor) { a.logger = logging.OrNop(l) }
}

// WithMetrics records call outcomes and latency.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *LLMAdvisor) { a.metrics = r }
}

// WithTracerProvider traces each call with the given provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *LLMAdvisor) {
		if tp != nil {
			a.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewLLMAdvisor creates an advisor backed by client.
func NewLLMAdvisor(client llm.Client, opts ...Option) *LLMAdvisor {
	a := &LLMAdvisor{
		client:  client,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PlanQuestions asks the oracle for a personalized plan. Resume and job
// description are truncated to MaxInputChars combined.
func (a *LLMAdvisor) PlanQuestions(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	resume, job := req.ResumeText, req.JobText
	if strings.TrimSpace(resume) == "" {
		resume = "No resume"
	}
	if strings.TrimSpace(job) == "" {
		job = "No job description"
	}
	resume, job = TruncateInputs(resume, job, MaxInputChars)

	name := strings.TrimSpace(req.CandidateName)
	if name == "" {
		name = "Candidate"
	}
	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		domain = "software"
	}
	count := req.QuestionCount
	if count <= 0 {
		count = 5
	}
	focus := strings.Join(req.FocusSkills, ", ")
	if focus == "" {
		focus = "Not specified"
	}

	var resp PlanResponse
	err := a.call(ctx, OpPlan, llm.TierAdvanced, prompts.KeyPlanQuestions, map[string]string{
		"CandidateName":   name,
		"Domain":          domain,
		"YearsExperience": strconv.Itoa(req.YearsExperience),
		"DurationMinutes": strconv.Itoa(req.DurationMinutes),
		"FocusSkills":     focus,
		"QuestionCount":   strconv.Itoa(count),
		"ResumeText":      resume,
		"JobText":         job,
	}, schemas.Plan, &resp)
	if err != nil {
		return nil, err
	}

	resp.Introduction = strings.TrimSpace(resp.Introduction)
	questions := make([]PlannedQuestion, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		q.Prompt = strings.TrimSpace(q.Prompt)
		if q.Prompt == "" {
			continue
		}
		followUps := make([]PlannedFollowUp, 0, len(q.FollowUps))
		for _, f := range q.FollowUps {
			if f.Prompt = strings.TrimSpace(f.Prompt); f.Prompt != "" {
				followUps = append(followUps, f)
			}
		}
		q.FollowUps = followUps
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &ValidationError{Operation: OpPlan, Problems: []string{"no usable questions"}}
	}
	resp.Questions = questions
	return &resp, nil
}

type verdictPayload struct {
	Score            float64  `json:"score"`
	Feedback         []string `json:"feedback"`
	IsRelevant       bool     `json:"is_relevant"`
	NeedsElaboration bool     `json:"needs_elaboration"`
	NeedsFollowUp    bool     `json:"needs_follow_up"`
	FollowUpQuestion *string  `json:"follow_up_question"`
}

// EvaluateAnswer asks the oracle to judge one answer. The verdict is clamped to
// the 1-5 rubric and passed through NormalizeVerdict.
func (a *LLMAdvisor) EvaluateAnswer(ctx context.Context, req EvaluateRequest) (types.Verdict, error) {
	var payload verdictPayload
	err := a.call(ctx, OpEvaluate, llm.TierStandard, prompts.KeyEvaluateAnswer, map[string]string{
		"Question": orNA(req.Question),
		"Answer":   orNA(req.Answer),
		"Context":  FormatContext(req.Context),
	}, schemas.Verdict, &payload)
	if err != nil {
		return types.Verdict{}, err
	}
	if math.IsNaN(payload.Score) {
		return types.Verdict{}, &ValidationError{Operation: OpEvaluate, Problems: []string{"score is not a number"}}
	}

	v := types.Verdict{
		Score:            int(math.Round(payload.Score)),
		Feedback:         payload.Feedback,
		IsRelevant:       payload.IsRelevant,
		NeedsElaboration: payload.NeedsElaboration,
		NeedsFollowUp:    payload.NeedsFollowUp,
	}
	if payload.FollowUpQuestion != nil {
		v.FollowUpQuestion = *payload.FollowUpQuestion
	}
	return NormalizeVerdict(v), nil
}

type classificationPayload struct {
	Intent        string   `json:"intent"`
	Response      string   `json:"response"`
	ExtraTime     *float64 `json:"extra_time"`
	ShouldProceed *bool    `json:"should_proceed"`
}

func (p classificationPayload) toClassification() types.Classification {
	c := types.Classification{
		Intent:        types.ParseIntent(p.Intent),
		Response:      strings.TrimSpace(p.Response),
		ShouldProceed: p.ShouldProceed,
	}
	if p.ExtraTime != nil && *p.ExtraTime > 0 {
		c.ExtraTimeSeconds = int(math.Round(*p.ExtraTime))
	}
	return c
}

// ClassifyResponse asks the oracle what a finalized utterance means. Unknown
// intents are normalized to answer.
func (a *LLMAdvisor) ClassifyResponse(ctx context.Context, req ClassifyRequest) (types.Classification, error) {
	var payload classificationPayload
	err := a.call(ctx, OpClassifyResponse, llm.TierLite, prompts.KeyClassifyResponse, map[string]string{
		"Utterance":       req.Utterance,
		"Question":        orNA(req.Question),
		"YearsExperience": strconv.Itoa(req.YearsExperience),
		"Tone":            ToneFor(req.YearsExperience),
		"Context":         FormatContext(req.Context),
	}, schemas.Classification, &payload)
	if err != nil {
		return types.Classification{}, err
	}
	return payload.toClassification(), nil
}

// ClassifyTimeout asks the oracle how to react to a silence. Only offer_options
// and give_more_time are meaningful; anything else becomes offer_options.
func (a *LLMAdvisor) ClassifyTimeout(ctx context.Context, req TimeoutRequest) (types.Classification, error) {
	situation := "the candidate stayed silent after the question"
	if req.Cue == types.CueLongThinking {
		situation = "the candidate asked for time to think and has been silent for a while"
	}

	var payload classificationPayload
	err := a.call(ctx, OpClassifyTimeout, llm.TierLite, prompts.KeyClassifyTimeout, map[string]string{
		"Cue":       string(req.Cue),
		"Situation": situation,
		"Question":  orNA(req.Question),
		"Tone":      ToneFor(req.YearsExperience),
	}, schemas.Classification, &payload)
	if err != nil {
		return types.Classification{}, err
	}

	c := payload.toClassification()
	if c.Intent != types.IntentGiveMoreTime {
		c.Intent = types.IntentOfferOptions
	}
	return c, nil
}

// BuildReport asks the oracle for the narrative report fields. The overall score
// is clamped to 1-5 and empty strings are dropped.
func (a *LLMAdvisor) BuildReport(ctx context.Context, req ReportRequest) (*types.PartialReport, error) {
	name := strings.TrimSpace(req.CandidateName)
	if name == "" {
		name = "the candidate"
	}

	var partial types.PartialReport
	err := a.call(ctx, OpReport, llm.TierAdvanced, prompts.KeyBuildReport, map[string]string{
		"CandidateName":   name,
		"Domain":          orNA(req.Domain),
		"YearsExperience": strconv.Itoa(req.YearsExperience),
		"AverageScore":    strconv.FormatFloat(req.AverageScore, 'f', 1, 64),
		"Transcript":      formatTranscript(req.Transcript),
	}, schemas.Report, &partial)
	if err != nil {
		return nil, err
	}

	if partial.OverallScore != nil {
		score := math.Max(types.MinScore, math.Min(types.MaxScore, *partial.OverallScore))
		partial.OverallScore = &score
	}
	partial.Strengths = nonEmpty(partial.Strengths)
	partial.Improvements = nonEmpty(partial.Improvements)
	partial.Summary = strings.TrimSpace(partial.Summary)
	return &partial, nil
}

// call renders a prompt, sends it, then cleans, validates and decodes the JSON
// reply into out.
func (a *LLMAdvisor) call(ctx context.Context, op string, tier llm.ModelTier, key string, data map[string]string, schema string, out any) (err error) {
	ctx, span := a.tracer.Start(ctx, "advisor."+op, trace.WithAttributes(
		attribute.String("advisor.operation", op),
		attribute.String("llm.tier", string(tier)),
	))
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
			var ve *ValidationError
			var pe *ParseError
			if errors.As(err, &ve) || errors.As(err, &pe) {
				outcome = metrics.OutcomeInvalid
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			a.logger.Warn("advisor %s failed: %v", op, err)
		}
		span.SetAttributes(attribute.String("advisor.outcome", outcome))
		span.End()
		a.metrics.AdvisorCall(op, outcome, time.Since(start))
	}()

	if a.client == nil {
		return &APICallError{Operation: op, Message: "no LLM client configured"}
	}

	prompt, err := prompts.Render(prompts.AdvisorFile, key, data)
	if err != nil {
		return fmt.Errorf("failed to build %s prompt: %w", op, err)
	}
	span.SetAttributes(attribute.String("llm.model", a.client.GetModel(tier)))

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.client.GenerateJSON(callCtx, prompt, tier)
	if err != nil {
		return &APICallError{Operation: op, Message: "LLM generation failed", Cause: err}
	}
	a.logger.Debug("advisor %s replied with %d bytes", op, len(raw))

	cleaned := llm.CleanJSONBlock(raw)
	if !json.Valid([]byte(cleaned)) {
		return &ParseError{Operation: op, Message: fmt.Sprintf("response is not JSON (content: %s)", truncateForLog(raw))}
	}
	if err := schemas.Validate(schema, cleaned); err != nil {
		var sve *schemas.ValidationError
		if errors.As(err, &sve) {
			problems := make([]string, 0, len(sve.Errors))
			for _, fe := range sve.Errors {
				problems = append(problems, fe.Field+": "+fe.Message)
			}
			return &ValidationError{Operation: op, Problems: problems, Cause: err}
		}
		return &ValidationError{Operation: op, Cause: err}
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &ParseError{Operation: op, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func nonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncateForLog(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
