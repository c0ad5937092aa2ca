package interview

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/intent"
	"github.com/jonathan/interview-agent/internal/types"
)

func (s *Session) askCurrent() {
	q, ok := s.current()
	if !ok {
		return
	}
	s.speak(q.Prompt, s.startListening)
}

// speak hands text to the speak primitive and runs next once playback ends.
func (s *Session) speak(text string, next func()) {
	s.enter(types.PhaseSpeaking)
	s.emit(Event{Kind: EventSpeak, Phase: types.PhaseSpeaking, Text: text})
	tok := s.token
	s.speaker.Cancel()
	if err := s.speaker.Speak(text, func() { s.post(tok, next) }); err != nil {
		s.fail(&SpeakError{Cause: err})
	}
}

func (s *Session) startListening() {
	s.listen(s.opts.ResponseTimeout, s.onResponseTimeout)
}

// listen starts the listen primitive and arms a timer that runs onTimeout if
// no utterance is finalized within wait.
func (s *Session) listen(wait time.Duration, onTimeout func()) {
	s.enter(types.PhaseListening)
	tok := s.token
	s.listener.ResetBuffer()
	opts := ListenOptions{Continuous: true, InterimResults: true, Language: s.opts.Language}
	err := s.listener.Start(opts,
		func(text string) { s.post(tok, func() { s.handleUtterance(text) }) },
		func(err error) { s.post(tok, func() { s.fail(err) }) },
	)
	if err != nil && !errors.Is(err, ErrAlreadyStarted) {
		var le *ListenError
		if !errors.As(err, &le) {
			err = &ListenError{Kind: ListenErrCapture, Cause: err}
		}
		s.fail(err)
		return
	}
	s.arm(wait, onTimeout)
}

// arm replaces the session timer. A fire is dropped if the phase changed or the
// timer was re-armed in the meantime.
func (s *Session) arm(d time.Duration, fn func()) {
	s.disarm()
	s.timerSeq++
	seq := s.timerSeq
	tok := s.token
	s.timer = s.clock.AfterFunc(d, func() {
		s.post(tok, func() {
			if seq != s.timerSeq {
				return
			}
			s.timer = nil
			fn()
		})
	})
}

func (s *Session) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// extend grants up to d of extra waiting on the active question, bounded by
// MaxThinking, and returns what was granted.
func (s *Session) extend(d time.Duration) time.Duration {
	if s.opts.MaxThinking > 0 {
		if remaining := s.opts.MaxThinking - s.thinkingUsed; d > remaining {
			d = remaining
		}
	}
	if d < 0 {
		d = 0
	}
	s.thinkingUsed += d
	return d
}

func (s *Session) onResponseTimeout() {
	grace := s.extend(s.opts.ThinkingGrace)
	if grace <= 0 {
		s.onSilence()
		return
	}
	s.logger.Debug("session %s: no answer yet, waiting %s more", s.id, grace)
	s.arm(grace, s.onSilence)
}

// onSilence asks the classifier how to react to a silence that outlasted every
// wait granted so far. Once the question has been re-offered MaxSilentPrompts
// times without a word, it is skipped instead.
func (s *Session) onSilence() {
	q, ok := s.current()
	if !ok {
		return
	}
	if s.opts.MaxSilentPrompts > 0 && s.silences >= s.opts.MaxSilentPrompts {
		s.logger.Info("session %s: no reply after %d prompts, skipping %q", s.id, s.silences, q.Prompt)
		s.enter(types.PhaseProcessing)
		s.recordSkip(q, types.InputVoice)
		s.advanceWith(intent.LineMoveOn)
		return
	}
	s.silences++
	cue := types.CueShortTimeout
	if !s.thinkingSince.IsZero() && s.clock.Now().Sub(s.thinkingSince) > longThinkingThreshold {
		cue = types.CueLongThinking
	}
	s.enter(types.PhaseProcessing)
	tok := s.token
	req := advisor.TimeoutRequest{Cue: cue, Question: q.Prompt, YearsExperience: s.opts.YearsExperience}
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.AdvisorTimeout)
		defer cancel()
		c, err := s.classifier.ClassifyTimeout(ctx, req)
		s.post(tok, func() { s.handleTimeout(c, err) })
	}()
}

func (s *Session) handleTimeout(c types.Classification, err error) {
	if err != nil {
		s.logger.Warn("session %s: timeout classification failed: %v", s.id, err)
		s.metrics.AdvisorFallback(advisor.OpClassifyTimeout)
		s.speak(intent.LineTimeout, s.startListening)
		return
	}
	switch c.Intent {
	case types.IntentGiveMoreTime:
		extra := s.extend(c.ExtraTime(intent.DefaultExtraTimeSeconds * time.Second))
		if extra <= 0 {
			s.speak(intent.LineOfferOptions, s.startListening)
			return
		}
		s.speak(orLine(c.Response, intent.LineMoreTime), func() { s.listen(extra, s.onSilence) })
	case types.IntentOfferOptions:
		s.speak(orLine(c.Response, intent.LineOfferOptions), s.startListening)
	default:
		s.speak(intent.LineTimeout, s.startListening)
	}
}

// handleUtterance classifies a finalized utterance before anything else happens.
func (s *Session) handleUtterance(raw string) {
	q, ok := s.current()
	if !ok {
		return
	}
	s.silences = 0
	s.enter(types.PhaseProcessing)
	tok := s.token
	cleaned := intent.Clean(raw)
	req := advisor.ClassifyRequest{
		Utterance:       raw,
		Question:        q.Prompt,
		YearsExperience: s.opts.YearsExperience,
		Context:         s.transcript.Recent(contextWindow),
	}
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.AdvisorTimeout)
		defer cancel()
		c, err := s.classifier.ClassifyResponse(ctx, req)
		s.post(tok, func() { s.handleIntent(q, c, err, cleaned) })
	}()
}

// handleIntent reacts to a classified utterance. Only an answer consumes the
// active question.
func (s *Session) handleIntent(q types.QuestionRecord, c types.Classification, err error, cleaned string) {
	if err != nil {
		s.logger.Warn("session %s: intent classification failed, treating as answer: %v", s.id, err)
		s.metrics.AdvisorFallback(advisor.OpClassifyResponse)
		c = types.Classification{Intent: types.IntentAnswer}
	}

	switch c.Intent {
	case types.IntentThinking:
		if s.thinkingSince.IsZero() {
			s.thinkingSince = s.clock.Now()
		}
		extra := s.extend(c.ExtraTime(intent.DefaultExtraTimeSeconds * time.Second))
		if extra <= 0 {
			s.speak(intent.LineOfferOptions, s.startListening)
			return
		}
		s.speak(orLine(c.Response, intent.LineThinking), func() { s.listen(extra, s.onSilence) })
	case types.IntentClarify:
		line := c.Response
		if line == "" || line == intent.LineClarify {
			line = intent.LineClarify + " " + q.Prompt
		}
		s.speak(line, s.startListening)
	case types.IntentRepeat:
		s.speak(orLine(c.Response, intent.LineRepeat)+" "+q.Prompt, s.startListening)
	case types.IntentReady:
		if c.Response != "" {
			s.speak(c.Response, s.startListening)
			return
		}
		s.arm(s.opts.AcknowledgmentDelay, s.startListening)
	case types.IntentEmpty:
		s.speak(orLine(c.Response, intent.LineEmpty), s.startListening)
	default:
		if cleaned == "" {
			s.speak(intent.LineEmpty, s.startListening)
			return
		}
		s.evaluate(q, cleaned, types.InputVoice)
	}
}

func (s *Session) evaluate(q types.QuestionRecord, answer string, mode types.InputMode) {
	tok := s.token
	recent := s.transcript.Recent(contextWindow)
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.AdvisorTimeout)
		defer cancel()
		v := s.evaluator.Evaluate(ctx, q, answer, recent)
		s.post(tok, func() { s.record(q, answer, mode, v) })
	}()
}

// record appends the scored answer, lets the injector splice a follow-up after
// it and advances to the next question.
func (s *Session) record(q types.QuestionRecord, answer string, mode types.InputMode, v types.Verdict) {
	v = v.Clamp()
	s.appendTurn(types.TurnRecord{
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Answer:     answer,
		Competency: q.Competency,
		Kind:       q.Kind,
		SkillTag:   q.SkillTag,
		InputMode:  mode,
		Verdict:    v,
		AnsweredAt: s.clock.Now(),
	})
	if inserted := s.injector.Inject(v, q, s.cursor, s.plan); inserted != nil {
		s.logger.Debug("session %s: follow-up %d/%d after %q", s.id, s.injector.Used(), s.injector.Budget(), q.Prompt)
		s.metrics.FollowUpInjected()
		s.emit(Event{Kind: EventFollowUp, Phase: s.phase, Question: inserted})
	}
	s.advance(true)
}

func (s *Session) appendTurn(rec types.TurnRecord) {
	s.transcript.Append(rec)
	s.metrics.TurnRecorded(rec.Kind, rec.Skipped, rec.Verdict.Score)
	s.emit(Event{Kind: EventTurn, Phase: s.phase, Turn: &rec})
}

// advance moves the cursor by exactly one and either ends the session or asks
// the next question, after a short acknowledgment when ack is set.
func (s *Session) advance(ack bool) {
	line := ""
	if ack {
		line = s.acknowledgment()
	}
	s.advanceWith(line)
}

// advanceWith is advance with an explicit bridging line; "" asks the next
// question straight away.
func (s *Session) advanceWith(line string) {
	s.cursor++
	s.thinkingUsed = 0
	s.thinkingSince = time.Time{}
	s.silences = 0

	switch {
	case s.cursor >= s.plan.Len():
		s.end(EndCompleted)
	case s.limits.TotalTurnsLimit > 0 && s.transcript.Len() >= s.limits.TotalTurnsLimit:
		s.end(EndTurnLimit)
	case line != "":
		s.speak(line, func() { s.arm(s.opts.PacingDelay, s.askCurrent) })
	default:
		s.askCurrent()
	}
}

// acknowledgment rotates through the phrases by turn count.
func (s *Session) acknowledgment() string {
	return acknowledgments[(s.transcript.Len()-1+len(acknowledgments))%len(acknowledgments)]
}

func orLine(line, fallback string) string {
	if line == "" {
		return fallback
	}
	return line
}
