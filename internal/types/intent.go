package types

import (
	"strings"
	"time"
)

// Intent is the classification of a finalized utterance or of a timeout.
type Intent string

// Utterance intents.
const (
	IntentAnswer   Intent = "answer"
	IntentThinking Intent = "thinking"
	IntentClarify  Intent = "clarify"
	IntentRepeat   Intent = "repeat"
	IntentReady    Intent = "ready"
	IntentEmpty    Intent = "empty"
)

// Timeout intents.
const (
	IntentOfferOptions Intent = "offer_options"
	IntentGiveMoreTime Intent = "give_more_time"
)

var knownIntents = map[Intent]bool{
	IntentAnswer:       true,
	IntentThinking:     true,
	IntentClarify:      true,
	IntentRepeat:       true,
	IntentReady:        true,
	IntentEmpty:        true,
	IntentOfferOptions: true,
	IntentGiveMoreTime: true,
}

// ParseIntent normalizes a raw tag. Unknown tags become IntentAnswer.
func ParseIntent(raw string) Intent {
	tag := Intent(strings.ToLower(strings.TrimSpace(raw)))
	tag = Intent(strings.ReplaceAll(string(tag), "-", "_"))
	if knownIntents[tag] {
		return tag
	}
	return IntentAnswer
}

// Consumes reports whether the intent resolves the active question.
func (i Intent) Consumes() bool {
	return i == IntentAnswer
}

// TimeoutCue describes the silence that triggered a timeout classification.
type TimeoutCue string

const (
	// CueLongThinking follows a thinking grace period longer than a few seconds
	CueLongThinking TimeoutCue = "long_thinking_timeout"
	// CueShortTimeout follows a short silence
	CueShortTimeout TimeoutCue = "short_timeout"
)

// Classification is the oracle's reading of an utterance or timeout.
type Classification struct {
	Intent           Intent `json:"intent"`
	Response         string `json:"response,omitempty"`
	ExtraTimeSeconds int    `json:"extra_time,omitempty"`
	ShouldProceed    *bool  `json:"should_proceed,omitempty"`
}

// ExtraTime returns the suggested extra wait, or def when none was suggested.
func (c Classification) ExtraTime(def time.Duration) time.Duration {
	if c.ExtraTimeSeconds <= 0 {
		return def
	}
	return time.Duration(c.ExtraTimeSeconds) * time.Second
}
