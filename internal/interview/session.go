// Package interview runs one mock interview. A Session sequences the speaking,
// listening and processing phases, owns the response and thinking timers, and
// turns finalized utterances into transcript entries and plan changes.
//
// All session state is owned by the goroutine running Run. Primitive callbacks,
// timer fires, oracle completions and external requests are posted to one
// mailbox and executed there in order. Every asynchronous completion carries the
// token that was current when it was issued and is dropped if the session has
// moved on since.
package interview

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/followup"
	"github.com/jonathan/interview-agent/internal/intent"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/metrics"
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/report"
	"github.com/jonathan/interview-agent/internal/templates"
	"github.com/jonathan/interview-agent/internal/types"
)

// End reasons.
const (
	EndCompleted = "completed"
	EndTurnLimit = "turn_limit"
	EndRequested = "ended_early"
	EndCanceled  = "canceled"
	EndInvariant = "invariant_violation"
)

const (
	contextWindow = 2
	// a thinking pause longer than this is reported as a long pause
	longThinkingThreshold = 5 * time.Second
)

var acknowledgments = []string{"Okay.", "Great.", "Got it.", "Thanks.", "Good.", "Alright.", "Understood.", "Perfect."}

// Reporter drafts the narrative report fields.
type Reporter interface {
	BuildReport(ctx context.Context, req advisor.ReportRequest) (*types.PartialReport, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClassifier replaces the rule-based intent classifier.
func WithClassifier(c intent.Classifier) Option {
	return func(s *Session) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithReporter merges oracle narrative into the final report.
func WithReporter(r Reporter) Option {
	return func(s *Session) { s.reporter = r }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = logging.OrNop(l) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Session) { s.metrics = r }
}

// WithObserver registers the event callback.
func WithObserver(fn func(Event)) Option {
	return func(s *Session) { s.observer = fn }
}

// Session is one interview.
type Session struct {
	id        string
	opts      Options
	plan      *plan.Plan
	limits    plan.Limits
	template  templates.Template
	candidate types.CandidateProfile
	role      types.RoleProfile

	listener   Listener
	speaker    Speaker
	evaluator  evaluation.Evaluator
	classifier intent.Classifier
	reporter   Reporter
	clock      Clock
	logger     logging.Logger
	metrics    *metrics.Recorder
	observer   func(Event)

	box         *mailbox
	done        chan struct{}
	running     atomic.Bool
	snapshot    atomic.Pointer[Snapshot]
	final       atomic.Pointer[types.Transcript]
	finalReport atomic.Pointer[types.Report]

	// owned by the Run goroutine
	ctx           context.Context
	phase         types.Phase
	token         uint64
	cursor        int
	transcript    *types.Transcript
	injector      *followup.Injector
	timer         Timer
	timerSeq      uint64
	thinkingUsed  time.Duration
	thinkingSince time.Time
	silences      int
	local         *types.Report
	finished      bool
}

// New creates a session over a built plan. The plan is owned by the session
// from here on: dynamic follow-ups are spliced into it.
func New(result *plan.Result, listener Listener, speaker Speaker, evaluator evaluation.Evaluator, opts Options, options ...Option) (*Session, error) {
	if result == nil || result.Plan == nil || result.Plan.Len() == 0 {
		return nil, errors.New("interview: plan is empty")
	}
	if listener == nil || speaker == nil {
		return nil, errors.New("interview: listen and speak primitives are required")
	}
	if evaluator == nil {
		return nil, errors.New("interview: evaluator is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("interview: invalid options: %w", err)
	}

	s := &Session{
		id:         uuid.NewString(),
		opts:       opts,
		plan:       result.Plan,
		limits:     result.Limits,
		template:   result.Template,
		candidate:  result.Candidate,
		role:       result.Role,
		listener:   listener,
		speaker:    speaker,
		evaluator:  evaluator,
		classifier: intent.Local{},
		clock:      RealClock{},
		logger:     logging.NewNop(),
		box:        newMailbox(),
		done:       make(chan struct{}),
		phase:      types.PhaseReady,
		transcript: types.NewTranscript(),
		injector:   followup.NewInjector(result.Limits.FollowUpBudget),
	}
	for _, o := range options {
		o(s)
	}
	s.publish()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the latest published view of the session.
func (s *Session) Snapshot() Snapshot { return *s.snapshot.Load() }

// Transcript returns the final transcript, or nil while the session is running.
func (s *Session) Transcript() *types.Transcript { return s.final.Load() }

// Report returns the final report, or nil while the session is running.
func (s *Session) Report() *types.Report { return s.finalReport.Load() }

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run executes the session loop until the session ends and returns its report.
// Cancelling ctx ends the session with the locally computed report.
func (s *Session) Run(ctx context.Context) (*types.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer close(s.done)
	s.ctx = ctx

	for !s.finished {
		select {
		case <-ctx.Done():
			s.end(EndCanceled)
			if !s.finished {
				s.finish(s.local)
			}
		case <-s.box.signal:
			for _, fn := range s.box.drain() {
				fn()
				if s.finished {
					break
				}
			}
		}
	}
	return s.finalReport.Load(), nil
}

// Start asks the first question.
func (s *Session) Start() error {
	return s.do(func() error {
		if s.phase != types.PhaseReady {
			return ErrAlreadyStarted
		}
		s.metrics.SessionStarted()
		s.logger.Info("session %s started: %d questions, follow-up budget %d", s.id, s.plan.Len(), s.injector.Budget())
		s.askCurrent()
		return nil
	})
}

// SubmitText answers the active question with typed text. It is accepted while
// listening and in the error phase, so a candidate without a microphone can go on.
func (s *Session) SubmitText(text string) error {
	return s.do(func() error {
		if s.phase != types.PhaseListening && s.phase != types.PhaseError {
			return ErrNotListening
		}
		q, ok := s.current()
		if !ok {
			return ErrSessionEnded
		}
		s.enter(types.PhaseProcessing)
		answer := intent.Clean(text)
		if answer == "" {
			s.speak(intent.LineEmpty, s.startListening)
			return nil
		}
		s.evaluate(q, answer, types.InputText)
		return nil
	})
}

// Skip resolves the active question as skipped and moves on.
func (s *Session) Skip() error {
	return s.do(func() error {
		switch s.phase {
		case types.PhaseReady:
			return ErrNotListening
		case types.PhaseEnding:
			return ErrSessionEnded
		}
		q, ok := s.current()
		if !ok {
			return ErrSessionEnded
		}
		s.enter(types.PhaseProcessing)
		s.recordSkip(q, types.InputText)
		s.advance(false)
		return nil
	})
}

func (s *Session) recordSkip(q types.QuestionRecord, mode types.InputMode) {
	s.appendTurn(types.TurnRecord{
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Competency: q.Competency,
		Kind:       q.Kind,
		SkillTag:   q.SkillTag,
		InputMode:  mode,
		Verdict:    types.SkippedVerdict(),
		Skipped:    true,
		AnsweredAt: s.clock.Now(),
	})
}

// Resume re-enters listening after a primitive failure.
func (s *Session) Resume() error {
	return s.do(func() error {
		if s.phase != types.PhaseError {
			return ErrNotInError
		}
		if _, ok := s.current(); !ok {
			return ErrSessionEnded
		}
		s.startListening()
		return nil
	})
}

// EndNow ends the session from any phase and produces the report from the
// transcript so far. Ending twice is a no-op.
func (s *Session) EndNow() error {
	return s.do(func() error {
		s.end(EndRequested)
		return nil
	})
}

// do runs fn on the session goroutine and waits for its result.
func (s *Session) do(fn func() error) error {
	select {
	case <-s.done:
		return ErrSessionEnded
	default:
	}
	reply := make(chan error, 1)
	s.box.push(func() {
		reply <- fn()
		s.publish()
	})
	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrSessionEnded
		}
	}
}

// post schedules a completion issued under tok. It is dropped when stale.
func (s *Session) post(tok uint64, fn func()) {
	s.box.push(func() {
		if s.finished || tok != s.token {
			return
		}
		fn()
		s.publish()
	})
}

// enter switches phase. It invalidates outstanding completions and timers and
// stops the listener when leaving listening.
func (s *Session) enter(phase types.Phase) {
	prev := s.phase
	s.token++
	s.disarm()
	if prev == types.PhaseListening && phase != types.PhaseListening {
		s.listener.Stop()
	}
	s.phase = phase
	s.logger.Debug("session %s: %s -> %s", s.id, prev, phase)
	s.metrics.PhaseEntered(phase)
	s.emit(Event{Kind: EventPhase, Phase: phase})
}

func (s *Session) emit(e Event) {
	if s.observer != nil {
		s.observer(e)
	}
}

func (s *Session) publish() {
	snap := Snapshot{
		ID:            s.id,
		Phase:         s.phase,
		Cursor:        s.cursor,
		PlanLength:    s.plan.Len(),
		Turns:         s.transcript.Len(),
		FollowUpsUsed: s.injector.Used(),
		Ended:         s.finished,
	}
	if q, err := s.plan.At(s.cursor); err == nil {
		snap.Question = q.Prompt
	}
	s.snapshot.Store(&snap)
}

// current returns the active question. A cursor outside the plan ends the session.
func (s *Session) current() (types.QuestionRecord, bool) {
	q, err := s.plan.At(s.cursor)
	if err != nil {
		s.logger.Error("session %s: no question at %d: %v", s.id, s.cursor, err)
		s.end(EndInvariant)
		return types.QuestionRecord{}, false
	}
	return q, true
}

func (s *Session) end(reason string) {
	if s.phase == types.PhaseEnding || s.finished {
		return
	}
	s.enter(types.PhaseEnding)
	s.speaker.Cancel()
	s.listener.Stop()
	s.metrics.SessionEnded(reason)
	s.logger.Info("session %s ended (%s) after %d turns", s.id, reason, s.transcript.Len())

	local := report.Build(s.transcript, s.candidate, s.role, report.Meta{
		CandidateName:   s.opts.CandidateName,
		TemplateLabel:   s.template.Label,
		DurationMinutes: s.opts.DurationMinutes,
		EndReason:       reason,
		Now:             s.clock.Now,
	})
	s.local = local
	if s.reporter == nil || local.TotalAnswers == 0 || s.ctx.Err() != nil {
		s.finish(local)
		return
	}

	tok := s.token
	req := advisor.ReportRequest{
		Transcript:      s.transcript.Entries(),
		CandidateName:   s.opts.CandidateName,
		Domain:          s.template.ID,
		YearsExperience: s.opts.YearsExperience,
		AverageScore:    local.OverallScore,
	}
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.AdvisorTimeout)
		defer cancel()
		partial, err := s.reporter.BuildReport(ctx, req)
		s.post(tok, func() {
			if err != nil {
				s.logger.Warn("session %s: report narrative unavailable, using local report: %v", s.id, err)
				s.metrics.AdvisorFallback(advisor.OpReport)
				s.finish(local)
				return
			}
			s.finish(report.Merge(local, partial))
		})
	}()
}

func (s *Session) finish(rep *types.Report) {
	s.finished = true
	s.final.Store(types.NewTranscript(s.transcript.Entries()...))
	s.finalReport.Store(rep)
	s.emit(Event{Kind: EventReport, Phase: types.PhaseEnding, Report: rep})
	s.publish()
}

func (s *Session) fail(err error) {
	s.logger.Error("session %s: %v", s.id, err)
	s.enter(types.PhaseError)
	s.speaker.Cancel()
	s.emit(Event{Kind: EventError, Phase: types.PhaseError, Text: userMessage(err), Err: err})
}
