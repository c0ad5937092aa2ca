package interview

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Options tunes one session.
type Options struct {
	CandidateName   string `validate:"max=120"`
	YearsExperience int    `validate:"gte=0"`
	DurationMinutes int    `validate:"gte=0"`
	Language        string

	ResponseTimeout     time.Duration `validate:"gt=0"`
	ThinkingGrace       time.Duration `validate:"gte=0"`
	MaxThinking         time.Duration `validate:"gte=0"` // zero means unlimited
	PacingDelay         time.Duration `validate:"gte=0"`
	AcknowledgmentDelay time.Duration `validate:"gte=0"`
	AdvisorTimeout      time.Duration `validate:"gt=0"`

	// MaxSilentPrompts caps how often one question is re-offered to a silent
	// candidate before it is skipped. Zero means never skip.
	MaxSilentPrompts int `validate:"gte=0"`
}

// DefaultOptions returns the conversational timings used by the CLI.
func DefaultOptions() Options {
	return Options{
		Language:            "en-US",
		ResponseTimeout:     12 * time.Second,
		ThinkingGrace:       20 * time.Second,
		MaxThinking:         60 * time.Second,
		PacingDelay:         1200 * time.Millisecond,
		AcknowledgmentDelay: time.Second,
		AdvisorTimeout:      20 * time.Second,
		MaxSilentPrompts:    3,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	return validator.New().Struct(o)
}
