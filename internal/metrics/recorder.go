// Package metrics provides the Prometheus instrumentation for interview sessions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/interview-agent/internal/types"
)

const namespace = "interview"

// Advisor call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeInvalid  = "invalid"
	OutcomeFallback = "fallback"
)

// Recorder owns a private registry and the session metrics. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted  prometheus.Counter
	sessionsEnded    *prometheus.CounterVec
	turns            *prometheus.CounterVec
	followUps        prometheus.Counter
	advisorCalls     *prometheus.CounterVec
	advisorDuration  *prometheus.HistogramVec
	answerScores     prometheus.Histogram
	phaseTransitions *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry, including Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Interview sessions started.",
		}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Interview sessions ended, by reason.",
		}, []string{"reason"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Resolved questions, by kind and whether they were skipped.",
		}, []string{"kind", "skipped"}),
		followUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dynamic_followups_total",
			Help:      "Dynamic follow-up questions spliced into plans.",
		}),
		advisorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisor_calls_total",
			Help:      "Advisory oracle calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		advisorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "advisor_call_duration_seconds",
			Help:      "Advisory oracle call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"operation"}),
		answerScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_score",
			Help:      "Scores given to answered questions.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Orchestrator phase transitions, by entered phase.",
		}, []string{"phase"}),
	}

	r.registry.MustRegister(
		r.sessionsStarted,
		r.sessionsEnded,
		r.turns,
		r.followUps,
		r.advisorCalls,
		r.advisorDuration,
		r.answerScores,
		r.phaseTransitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an http.Handler serving the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// SessionStarted counts a new session.
func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	r.sessionsStarted.Inc()
}

// SessionEnded counts a finished session.
func (r *Recorder) SessionEnded(reason string) {
	if r == nil {
		return
	}
	r.sessionsEnded.WithLabelValues(reason).Inc()
}

// TurnRecorded counts a resolved question and observes its score when answered.
func (r *Recorder) TurnRecorded(kind types.QuestionKind, skipped bool, score int) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(string(kind), strconv.FormatBool(skipped)).Inc()
	if !skipped {
		r.answerScores.Observe(float64(score))
	}
}

// FollowUpInjected counts a spliced follow-up.
func (r *Recorder) FollowUpInjected() {
	if r == nil {
		return
	}
	r.followUps.Inc()
}

// AdvisorCall records one oracle call.
func (r *Recorder) AdvisorCall(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.advisorCalls.WithLabelValues(operation, outcome).Inc()
	r.advisorDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AdvisorFallback counts a caller falling back to a local default after an
// oracle failure.
func (r *Recorder) AdvisorFallback(operation string) {
	if r == nil {
		return
	}
	r.advisorCalls.WithLabelValues(operation, OutcomeFallback).Inc()
}

// PhaseEntered counts a phase transition.
func (r *Recorder) PhaseEntered(phase types.Phase) {
	if r == nil {
		return
	}
	r.phaseTransitions.WithLabelValues(string(phase)).Inc()
}
