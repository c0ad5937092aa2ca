package interview

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/intent"
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/templates"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

const (
	promptIntro    = "Tell me about yourself."
	promptDesign   = "How would you design a rate limiter?"
	promptConflict = "Describe a conflict with a teammate."

	solidAnswer = "I built a rate limiter with Redis token buckets that handled five thousand requests per second."
)

func testPlan() *plan.Result {
	return &plan.Result{
		Plan: plan.New(
			types.QuestionRecord{ID: "q1", Prompt: promptIntro, Competency: types.CompetencyCommunication, Kind: types.KindMain, Source: types.SourceIntro},
			types.QuestionRecord{ID: "q2", Prompt: promptDesign, Competency: types.CompetencyTechnical, Kind: types.KindMain, Source: types.SourceTemplate},
			types.QuestionRecord{ID: "q3", Prompt: promptConflict, Competency: types.CompetencyBehavioral, Kind: types.KindMain, Source: types.SourceTemplate},
		),
		Limits:   plan.Limits{MaxMainQuestions: 4, FollowUpBudget: 2, TotalTurnsLimit: 8},
		Template: templates.Lookup("backend"),
		Role:     types.RoleProfile{RequiredSkills: []string{"redis", "kafka"}},
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.CandidateName = "Asha"
	opts.YearsExperience = 3
	opts.DurationMinutes = 10
	return opts
}

func solidVerdict() types.Verdict {
	return types.Verdict{Score: 4, Feedback: []string{"Clear example."}, IsRelevant: true}
}

type harness struct {
	t        *testing.T
	session  *Session
	clock    *FakeClock
	listener *fakeListener
	speaker  *fakeSpeaker
	events   *eventLog
	opts     Options
	cancel   context.CancelFunc
	reports  chan *types.Report
}

type harnessConfig struct {
	result    *plan.Result
	opts      Options
	evaluator evaluation.Evaluator
	extra     []Option
}

func newHarness(t *testing.T, mods ...func(*harnessConfig)) *harness {
	t.Helper()
	cfg := &harnessConfig{
		result: testPlan(),
		opts:   testOptions(),
		evaluator: evaluation.Func(func(context.Context, types.QuestionRecord, string, []types.TurnRecord) types.Verdict {
			return solidVerdict()
		}),
	}
	for _, m := range mods {
		m(cfg)
	}

	h := &harness{
		t:        t,
		clock:    NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		listener: &fakeListener{},
		speaker:  &fakeSpeaker{},
		events:   &eventLog{},
		opts:     cfg.opts,
		reports:  make(chan *types.Report, 1),
	}
	options := append([]Option{WithClock(h.clock), WithObserver(h.events.observe)}, cfg.extra...)
	s, err := New(cfg.result, h.listener, h.speaker, cfg.evaluator, cfg.opts, options...)
	require.NoError(t, err)
	h.session = s

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	t.Cleanup(cancel)
	go func() {
		rep, _ := s.Run(ctx)
		h.reports <- rep
	}()
	return h
}

func (h *harness) start() {
	h.t.Helper()
	require.NoError(h.t, h.session.Start())
	h.waitListening(0)
}

func (h *harness) waitListening(cursor int) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		snap := h.session.Snapshot()
		return snap.Phase == types.PhaseListening && snap.Cursor == cursor && h.listener.listening() && h.clock.Pending() == 1
	}, waitFor, tick)
}

func (h *harness) waitPhase(phase types.Phase) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.session.Snapshot().Phase == phase }, waitFor, tick)
}

func (h *harness) say(text string) {
	h.t.Helper()
	require.True(h.t, h.listener.say(text), "listener is not active")
}

// answer says text and waits until the question at next is being listened for.
func (h *harness) answer(text string, next int) {
	h.t.Helper()
	h.say(text)
	h.pace()
	h.waitListening(next)
}

// pace releases the pause between the acknowledgment and the next question.
func (h *harness) pace() {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return h.session.Snapshot().Phase == types.PhaseSpeaking && h.clock.Pending() == 1
	}, waitFor, tick)
	h.clock.Advance(h.opts.PacingDelay)
}

func (h *harness) report() *types.Report {
	h.t.Helper()
	select {
	case rep := <-h.reports:
		return rep
	case <-time.After(waitFor):
		h.t.Fatal("session did not end")
		return nil
	}
}

func TestSession_CompletesInterview(t *testing.T) {
	h := newHarness(t)
	h.start()

	assert.Equal(t, "en-US", h.listener.lastOpts.Language)
	assert.True(t, h.listener.lastOpts.Continuous)

	h.answer(solidAnswer, 1)
	h.answer(solidAnswer, 2)
	h.say(solidAnswer)

	rep := h.report()
	require.NotNil(t, rep)
	assert.Equal(t, 4.0, rep.OverallScore)
	assert.Equal(t, 3, rep.TotalAnswers)
	assert.Equal(t, EndCompleted, rep.EndReason)
	assert.Equal(t, "Asha", rep.CandidateName)
	assert.Equal(t, []string{"redis"}, rep.MatchedSkills)
	assert.Equal(t, []string{"kafka"}, rep.MissingRequiredSkills)

	assert.Equal(t, []string{promptIntro, "Okay.", promptDesign, "Great.", promptConflict}, h.speaker.lines())
	assert.Equal(t, 1, h.events.count(EventReport))
	assert.Equal(t, 3, h.events.count(EventTurn))
	assert.Equal(t, 0, h.clock.Pending())
	assert.False(t, h.listener.listening())

	snap := h.session.Snapshot()
	assert.Equal(t, types.PhaseEnding, snap.Phase)
	assert.True(t, snap.Ended)

	transcript := h.session.Transcript()
	require.NotNil(t, transcript)
	entries := transcript.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "q1", entries[0].QuestionID)
	assert.Equal(t, types.InputVoice, entries[0].InputMode)
	assert.Equal(t, solidAnswer, entries[2].Answer)
	assert.Same(t, rep, h.session.Report())
}

func TestSession_NonAnswerIntentsDoNotConsumeQuestion(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.say("Could you repeat the question?")
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineRepeat+" "+promptIntro }, waitFor, tick)
	h.waitListening(0)

	h.say("What do you mean?")
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineClarify+" "+promptIntro }, waitFor, tick)
	h.waitListening(0)

	h.say("")
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineEmpty }, waitFor, tick)
	h.waitListening(0)

	h.say("okay")
	require.Eventually(t, func() bool {
		return h.session.Snapshot().Phase == types.PhaseProcessing && h.clock.Pending() == 1
	}, waitFor, tick)
	h.clock.Advance(h.opts.AcknowledgmentDelay)
	h.waitListening(0)

	snap := h.session.Snapshot()
	assert.Equal(t, 0, snap.Turns)
	assert.Equal(t, 3, snap.PlanLength)
	assert.Equal(t, promptIntro, snap.Question)
}

func TestSession_FilledPausesAreStrippedFromAnswers(t *testing.T) {
	var got atomic.Value
	h := newHarness(t, func(c *harnessConfig) {
		c.evaluator = evaluation.Func(func(_ context.Context, _ types.QuestionRecord, answer string, _ []types.TurnRecord) types.Verdict {
			got.Store(answer)
			return solidVerdict()
		})
	})
	h.start()

	h.answer("Umm, I led the migration to Kafka, uh, over two quarters with zero downtime.", 1)
	assert.Equal(t, "I led the migration to Kafka, over two quarters with zero downtime.", got.Load())
}

func TestSession_ThinkingGetsExtraTimeThenOptions(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.say("let me think")
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineThinking }, waitFor, tick)
	h.waitListening(0)

	h.clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineOfferOptions }, waitFor, tick)
	h.waitListening(0)
	assert.Equal(t, 0, h.session.Snapshot().Turns)
}

func TestSession_SilenceIsNeverLeftHanging(t *testing.T) {
	h := newHarness(t)
	h.start()

	// response timer, then the grace period, silently
	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.clock.Pending() == 1 }, waitFor, tick)
	assert.Equal(t, types.PhaseListening, h.session.Snapshot().Phase)
	assert.Equal(t, []string{promptIntro}, h.speaker.lines())

	h.clock.Advance(h.opts.ThinkingGrace)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 1 }, waitFor, tick)
	h.waitListening(0)

	h.clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 2 }, waitFor, tick)
	h.waitListening(0)

	// the thinking allowance for this question is used up
	h.clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineOfferOptions }, waitFor, tick)
	h.waitListening(0)

	assert.Equal(t, 0, h.session.Snapshot().Turns)
}

func TestSession_SilentCandidateIsSkippedAfterRepeatedOffers(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.clock.Pending() == 1 }, waitFor, tick)
	h.clock.Advance(h.opts.ThinkingGrace)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 1 }, waitFor, tick)
	h.waitListening(0)
	h.clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 2 }, waitFor, tick)
	h.waitListening(0)
	h.clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineOfferOptions }, waitFor, tick)
	h.waitListening(0)

	// third unanswered offer: the question is dropped instead of offered again
	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoveOn) == 1 }, waitFor, tick)
	h.pace()
	h.waitListening(1)

	assert.Equal(t, promptDesign, h.speaker.last())
	assert.Equal(t, 1, h.speaker.count(intent.LineOfferOptions))
	assert.Equal(t, 1, h.session.Snapshot().Turns)
	ev, ok := h.events.lastOf(EventTurn)
	require.True(t, ok)
	assert.True(t, ev.Turn.Skipped)
	assert.Equal(t, promptIntro, ev.Turn.Prompt)
	assert.Equal(t, types.InputVoice, ev.Turn.InputMode)
	assert.Equal(t, types.SkippedVerdict().Score, ev.Turn.Verdict.Score)

	// the next question starts with a fresh allowance
	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.clock.Pending() == 1 }, waitFor, tick)
	h.clock.Advance(h.opts.ThinkingGrace)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 3 }, waitFor, tick)
	h.waitListening(1)
	assert.Equal(t, 1, h.session.Snapshot().Turns)
}

func TestSession_UtteranceResetsSilenceCount(t *testing.T) {
	h := newHarness(t, func(c *harnessConfig) {
		c.opts.ThinkingGrace = 0
		c.opts.MaxSilentPrompts = 1
	})
	h.start()

	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 1 }, waitFor, tick)
	h.waitListening(0)

	h.say("could you repeat that")
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineRepeat+" "+promptIntro }, waitFor, tick)
	h.waitListening(0)

	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 2 }, waitFor, tick)
	h.waitListening(0)
	assert.Equal(t, 0, h.speaker.count(intent.LineMoveOn))
	assert.Equal(t, 0, h.session.Snapshot().Turns)

	h.clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoveOn) == 1 }, waitFor, tick)
	h.pace()
	h.waitListening(1)
	assert.Equal(t, 1, h.session.Snapshot().Turns)
}

func TestSession_ZeroMaxSilentPromptsNeverSkips(t *testing.T) {
	h := newHarness(t, func(c *harnessConfig) {
		c.opts.ThinkingGrace = 0
		c.opts.MaxThinking = 0
		c.opts.MaxSilentPrompts = 0
	})
	h.start()

	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == 1 }, waitFor, tick)
	h.waitListening(0)
	for i := 2; i <= 6; i++ {
		h.clock.Advance(20 * time.Second)
		want := i
		require.Eventually(t, func() bool { return h.speaker.count(intent.LineMoreTime) == want }, waitFor, tick)
		h.waitListening(0)
	}

	assert.Equal(t, 0, h.speaker.count(intent.LineMoveOn))
	assert.Equal(t, 0, h.session.Snapshot().Turns)
}

func TestSession_TimeoutClassificationFailure(t *testing.T) {
	classifier := &MockClassifier{
		ClassifyTimeoutFunc: func(context.Context, advisor.TimeoutRequest) (types.Classification, error) {
			return types.Classification{}, errors.New("oracle down")
		},
	}
	h := newHarness(t, func(c *harnessConfig) {
		c.opts.ThinkingGrace = 0
		c.extra = append(c.extra, WithClassifier(classifier))
	})
	h.start()

	h.clock.Advance(h.opts.ResponseTimeout)
	require.Eventually(t, func() bool { return h.speaker.last() == intent.LineTimeout }, waitFor, tick)
	h.waitListening(0)
}

func TestSession_InjectsFollowUpWithinBudget(t *testing.T) {
	const followUp = "Which metric told you the limiter worked?"
	h := newHarness(t, func(c *harnessConfig) {
		c.result.Limits.FollowUpBudget = 1
		c.evaluator = evaluation.Func(func(context.Context, types.QuestionRecord, string, []types.TurnRecord) types.Verdict {
			return types.Verdict{Score: 2, IsRelevant: true, NeedsElaboration: true, NeedsFollowUp: true, FollowUpQuestion: followUp}
		})
	})
	h.start()

	h.answer("I used Redis.", 1)
	snap := h.session.Snapshot()
	assert.Equal(t, 4, snap.PlanLength)
	assert.Equal(t, followUp, snap.Question)
	assert.Equal(t, 1, snap.FollowUpsUsed)

	// a follow-up never gets its own follow-up
	h.answer("Latency.", 2)
	assert.Equal(t, 4, h.session.Snapshot().PlanLength)
	assert.Equal(t, promptDesign, h.session.Snapshot().Question)

	// budget exhausted
	h.answer("Token buckets.", 3)
	assert.Equal(t, 4, h.session.Snapshot().PlanLength)

	h.say("We talked it through.")
	rep := h.report()
	assert.Equal(t, 4, rep.TotalAnswers)
	assert.Equal(t, 1, h.events.count(EventFollowUp))

	entries := h.session.Transcript().Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, types.KindDynamicFollowUp, entries[1].Kind)
	assert.Equal(t, followUp, entries[1].Prompt)
	assert.Equal(t, promptDesign, entries[2].Prompt)
}

func TestSession_NoFollowUpPlanUnchanged(t *testing.T) {
	h := newHarness(t, func(c *harnessConfig) {
		c.evaluator = evaluation.Func(func(context.Context, types.QuestionRecord, string, []types.TurnRecord) types.Verdict {
			return types.Verdict{Score: 3, IsRelevant: true, NeedsFollowUp: true}
		})
	})
	h.start()

	h.answer(solidAnswer, 1)
	assert.Equal(t, 3, h.session.Snapshot().PlanLength)
	assert.Equal(t, 0, h.events.count(EventFollowUp))
}

func TestSession_EndNowWhileListening(t *testing.T) {
	h := newHarness(t)
	h.start()

	require.NoError(t, h.session.EndNow())

	rep := h.report()
	require.NotNil(t, rep)
	assert.Equal(t, EndRequested, rep.EndReason)
	assert.Equal(t, 0, rep.TotalAnswers)
	assert.Equal(t, 3.0, rep.OverallScore)
	assert.Equal(t, 0, h.clock.Pending())
	assert.False(t, h.listener.listening())
	assert.Equal(t, 1, h.events.count(EventReport))

	phases := 0
	h.events.mu.Lock()
	for _, e := range h.events.events {
		if e.Kind == EventPhase && e.Phase == types.PhaseEnding {
			phases++
		}
	}
	h.events.mu.Unlock()
	assert.Equal(t, 1, phases)

	assert.ErrorIs(t, h.session.EndNow(), ErrSessionEnded)
	assert.ErrorIs(t, h.session.Skip(), ErrSessionEnded)
	assert.Equal(t, 1, h.events.count(EventReport))
}

func TestSession_StaleEvaluationIsDropped(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	h := newHarness(t, func(c *harnessConfig) {
		c.evaluator = evaluation.Func(func(context.Context, types.QuestionRecord, string, []types.TurnRecord) types.Verdict {
			calls.Add(1)
			<-release
			return solidVerdict()
		})
	})
	h.start()

	h.say(solidAnswer)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)

	require.NoError(t, h.session.Skip())
	h.waitListening(1)
	close(release)

	require.Never(t, func() bool { return h.session.Snapshot().Turns != 1 }, 100*time.Millisecond, tick)
	assert.Equal(t, 1, h.session.Snapshot().Cursor)

	require.NoError(t, h.session.EndNow())
	rep := h.report()
	assert.Equal(t, 0, rep.TotalAnswers)

	entries := h.session.Transcript().Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Skipped)
	assert.Equal(t, types.SkippedVerdict().Feedback, entries[0].Verdict.Feedback)
}

func TestSession_SkipExcludedFromScores(t *testing.T) {
	h := newHarness(t)
	h.start()

	require.NoError(t, h.session.Skip())
	h.waitListening(1)
	h.answer(solidAnswer, 2)
	h.say(solidAnswer)

	rep := h.report()
	assert.Equal(t, 2, rep.TotalAnswers)
	assert.Equal(t, 4.0, rep.OverallScore)
	assert.NotContains(t, rep.CompetencyScores, "communication")
	assert.Equal(t, 3, h.session.Transcript().Len())
}

func TestSession_TypedAnswer(t *testing.T) {
	h := newHarness(t)
	h.start()

	require.NoError(t, h.session.SubmitText("  "+solidAnswer+"  "))
	h.pace()
	h.waitListening(1)

	require.NoError(t, h.session.EndNow())
	h.report()
	entries := h.session.Transcript().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, types.InputText, entries[0].InputMode)
	assert.Equal(t, solidAnswer, entries[0].Answer)
}

func TestSession_RequestsOutOfPhase(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.session.SubmitText(solidAnswer), ErrNotListening)
	assert.ErrorIs(t, h.session.Skip(), ErrNotListening)
	assert.ErrorIs(t, h.session.Resume(), ErrNotInError)

	h.start()
	assert.ErrorIs(t, h.session.Start(), ErrAlreadyStarted)

	_, err := h.session.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSession_ListenerErrorAndResume(t *testing.T) {
	h := newHarness(t)
	h.start()

	require.True(t, h.listener.fail(&ListenError{Kind: ListenErrNotAllowed}))
	h.waitPhase(types.PhaseError)
	assert.False(t, h.listener.listening())
	assert.Equal(t, 0, h.clock.Pending())

	ev, ok := h.events.lastOf(EventError)
	require.True(t, ok)
	assert.Contains(t, ev.Text, "Microphone access was denied")

	require.NoError(t, h.session.Resume())
	h.waitListening(0)
	h.answer(solidAnswer, 1)
	assert.Equal(t, 1, h.session.Snapshot().Turns)
}

func TestSession_SilentListenErrorHasNoMessage(t *testing.T) {
	h := newHarness(t)
	h.start()

	require.True(t, h.listener.fail(&ListenError{Kind: ListenErrNoSpeech}))
	h.waitPhase(types.PhaseError)

	ev, ok := h.events.lastOf(EventError)
	require.True(t, ok)
	assert.Empty(t, ev.Text)
}

func TestSession_ListenerAlreadyStartedIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.listener.startErr = ErrAlreadyStarted

	require.NoError(t, h.session.Start())
	require.Eventually(t, func() bool {
		return h.session.Snapshot().Phase == types.PhaseListening && h.clock.Pending() == 1
	}, waitFor, tick)
	assert.Equal(t, 0, h.events.count(EventError))
}

func TestSession_SpeakFailureAllowsTypedAnswer(t *testing.T) {
	h := newHarness(t)
	h.speaker.failNext = errors.New("no audio device")

	require.NoError(t, h.session.Start())
	h.waitPhase(types.PhaseError)

	ev, ok := h.events.lastOf(EventError)
	require.True(t, ok)
	var speakErr *SpeakError
	assert.True(t, errors.As(ev.Err, &speakErr))

	require.NoError(t, h.session.SubmitText(solidAnswer))
	h.pace()
	h.waitListening(1)
	assert.Equal(t, 1, h.session.Snapshot().Turns)
}

func TestSession_ClassifierFailureTreatsUtteranceAsAnswer(t *testing.T) {
	classifier := &MockClassifier{
		ClassifyResponseFunc: func(context.Context, advisor.ClassifyRequest) (types.Classification, error) {
			return types.Classification{}, errors.New("timeout")
		},
	}
	h := newHarness(t, func(c *harnessConfig) {
		c.extra = append(c.extra, WithClassifier(classifier))
	})
	h.start()

	h.answer("repeat", 1)
	assert.Equal(t, 1, h.session.Snapshot().Turns)
}

func TestSession_ClassifierSeesRawUtteranceAndContext(t *testing.T) {
	var last atomic.Value
	classifier := &MockClassifier{
		ClassifyResponseFunc: func(_ context.Context, req advisor.ClassifyRequest) (types.Classification, error) {
			last.Store(req)
			return types.Classification{Intent: types.IntentAnswer}, nil
		},
	}
	h := newHarness(t, func(c *harnessConfig) {
		c.extra = append(c.extra, WithClassifier(classifier))
	})
	h.start()

	h.answer("umm "+solidAnswer, 1)
	h.answer(solidAnswer, 2)

	req := last.Load().(advisor.ClassifyRequest)
	assert.Equal(t, solidAnswer, req.Utterance)
	assert.Equal(t, promptDesign, req.Question)
	assert.Equal(t, 3, req.YearsExperience)
	require.Len(t, req.Context, 1)
	assert.Equal(t, promptIntro, req.Context[0].Prompt)
}

func TestSession_TurnLimitEndsSession(t *testing.T) {
	h := newHarness(t, func(c *harnessConfig) {
		c.result.Limits.TotalTurnsLimit = 2
	})
	h.start()

	h.answer(solidAnswer, 1)
	h.say(solidAnswer)

	rep := h.report()
	assert.Equal(t, EndTurnLimit, rep.EndReason)
	assert.Equal(t, 2, rep.TotalAnswers)
}

func TestSession_MergesOracleReport(t *testing.T) {
	var got atomic.Value
	reporter := &MockReporter{
		BuildReportFunc: func(_ context.Context, req advisor.ReportRequest) (*types.PartialReport, error) {
			got.Store(req)
			return &types.PartialReport{Summary: "Strong fundamentals.", Strengths: []string{"Clear trade-offs."}}, nil
		},
	}
	h := newHarness(t, func(c *harnessConfig) {
		c.extra = append(c.extra, WithReporter(reporter))
	})
	h.start()
	h.answer(solidAnswer, 1)
	require.NoError(t, h.session.EndNow())

	rep := h.report()
	assert.Equal(t, "Strong fundamentals.", rep.Summary)
	assert.Equal(t, []string{"Clear trade-offs."}, rep.Strengths)
	assert.Equal(t, 4.0, rep.OverallScore)

	req := got.Load().(advisor.ReportRequest)
	assert.Equal(t, "Asha", req.CandidateName)
	assert.Equal(t, "backend", req.Domain)
	assert.Len(t, req.Transcript, 1)
	assert.Equal(t, 4.0, req.AverageScore)
}

func TestSession_OracleReportFailureKeepsLocal(t *testing.T) {
	reporter := &MockReporter{
		BuildReportFunc: func(context.Context, advisor.ReportRequest) (*types.PartialReport, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	h := newHarness(t, func(c *harnessConfig) {
		c.extra = append(c.extra, WithReporter(reporter))
	})
	h.start()
	h.answer(solidAnswer, 1)
	require.NoError(t, h.session.EndNow())

	rep := h.report()
	assert.Empty(t, rep.Summary)
	assert.Equal(t, 1, rep.TotalAnswers)
	assert.True(t, strings.HasPrefix(rep.Strengths[0], "Strong communication response"))
}

func TestSession_ContextCancelEndsWithReport(t *testing.T) {
	h := newHarness(t)
	h.start()
	h.answer(solidAnswer, 1)

	h.cancel()
	rep := h.report()
	require.NotNil(t, rep)
	assert.Equal(t, EndCanceled, rep.EndReason)
	assert.Equal(t, 1, rep.TotalAnswers)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestNew_Validation(t *testing.T) {
	eval := evaluation.Func(func(context.Context, types.QuestionRecord, string, []types.TurnRecord) types.Verdict {
		return solidVerdict()
	})

	_, err := New(nil, &fakeListener{}, &fakeSpeaker{}, eval, testOptions())
	assert.Error(t, err)

	_, err = New(&plan.Result{Plan: plan.New()}, &fakeListener{}, &fakeSpeaker{}, eval, testOptions())
	assert.Error(t, err)

	_, err = New(testPlan(), nil, &fakeSpeaker{}, eval, testOptions())
	assert.Error(t, err)

	_, err = New(testPlan(), &fakeListener{}, &fakeSpeaker{}, nil, testOptions())
	assert.Error(t, err)

	bad := testOptions()
	bad.ResponseTimeout = 0
	_, err = New(testPlan(), &fakeListener{}, &fakeSpeaker{}, eval, bad)
	assert.Error(t, err)

	s, err := New(testPlan(), &fakeListener{}, &fakeSpeaker{}, eval, testOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, types.PhaseReady, s.Snapshot().Phase)
	assert.Equal(t, promptIntro, s.Snapshot().Question)
	assert.Nil(t, s.Transcript())
}
