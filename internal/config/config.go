// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by MergeWithDefaults when a field is left unset.
const (
	DefaultDomain                = "frontend"
	DefaultDurationMinutes       = 20
	DefaultResponseTimeout       = 12
	DefaultThinkingGrace         = 20
	DefaultMaxThinking           = 60
	DefaultPacingDelayMS         = 1200
	DefaultAcknowledgmentDelayMS = 1000
	DefaultAdvisorTimeout        = 20
	DefaultMaxSilentPrompts      = 3
	DefaultLanguage              = "en-US"
	DefaultLogLevel              = "info"
)

// Environment variables consulted when no API key is configured.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Candidate
	CandidateName   string `json:"candidate_name,omitempty" validate:"max=120"`
	Domain          string `json:"domain,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty" validate:"gte=0,lte=60"`
	DurationMinutes int    `json:"duration_minutes,omitempty" validate:"gte=0,lte=180"`

	// Paths
	Resume string `json:"resume,omitempty"` // Path to resume text file
	Job    string `json:"job,omitempty"`    // Path to job description text file

	// Advisor
	APIKey         string            `json:"api_key,omitempty"`
	Provider       string            `json:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	Models         map[string]string `json:"models,omitempty"` // tier -> model override
	BaseURL        string            `json:"base_url,omitempty" validate:"omitempty,url"`
	UseAdvisorPlan bool              `json:"use_advisor_plan,omitempty"`

	// Observability
	LogLevel      string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error none off"`
	MetricsAddr   string `json:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`
	TraceEndpoint string `json:"trace_endpoint,omitempty" validate:"omitempty,url"` // OTLP/HTTP traces URL

	// Timing
	ResponseTimeoutSeconds int `json:"response_timeout_seconds,omitempty" validate:"gte=0"`
	ThinkingGraceSeconds   int `json:"thinking_grace_seconds,omitempty" validate:"gte=0"`
	MaxThinkingSeconds     int `json:"max_thinking_seconds,omitempty" validate:"gte=0"`
	PacingDelayMS          int `json:"pacing_delay_ms,omitempty" validate:"gte=0"`
	AcknowledgmentDelayMS  int `json:"acknowledgment_delay_ms,omitempty" validate:"gte=0"`
	AdvisorTimeoutSeconds  int `json:"advisor_timeout_seconds,omitempty" validate:"gte=0"`
	MaxSilentPrompts       int `json:"max_silent_prompts,omitempty" validate:"gte=0,lte=20"` // re-offers before a silent question is skipped

	Language string `json:"language,omitempty"`
}

// Timings holds the orchestrator delays derived from a Config.
type Timings struct {
	ResponseTimeout     time.Duration
	ThinkingGrace       time.Duration
	MaxThinking         time.Duration
	PacingDelay         time.Duration
	AcknowledgmentDelay time.Duration
	AdvisorTimeout      time.Duration
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return newValidationError(fieldErrs)
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.MaxThinkingSeconds > 0 && c.ThinkingGraceSeconds > c.MaxThinkingSeconds {
		return &ValidationError{Problems: []string{"'thinking_grace_seconds' must not exceed 'max_thinking_seconds'"}}
	}

	// Validate file paths exist (if specified)
	for name, path := range map[string]string{"resume": c.Resume, "job": c.Job} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the built-in defaults. Bool fields cannot distinguish unset from false,
// so they are not merged (CLI flags always win for bools).
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	result.CandidateName = firstString(result.CandidateName, defaults.CandidateName)
	result.Domain = firstString(result.Domain, defaults.Domain, DefaultDomain)
	result.Resume = firstString(result.Resume, defaults.Resume)
	result.Job = firstString(result.Job, defaults.Job)
	result.APIKey = firstString(result.APIKey, defaults.APIKey)
	result.Provider = firstString(result.Provider, defaults.Provider)
	result.BaseURL = firstString(result.BaseURL, defaults.BaseURL)
	result.LogLevel = firstString(result.LogLevel, defaults.LogLevel, DefaultLogLevel)
	result.MetricsAddr = firstString(result.MetricsAddr, defaults.MetricsAddr)
	result.TraceEndpoint = firstString(result.TraceEndpoint, defaults.TraceEndpoint)
	result.Language = firstString(result.Language, defaults.Language, DefaultLanguage)

	result.YearsExperience = firstInt(result.YearsExperience, defaults.YearsExperience)
	result.DurationMinutes = firstInt(result.DurationMinutes, defaults.DurationMinutes, DefaultDurationMinutes)
	result.ResponseTimeoutSeconds = firstInt(result.ResponseTimeoutSeconds, defaults.ResponseTimeoutSeconds, DefaultResponseTimeout)
	result.ThinkingGraceSeconds = firstInt(result.ThinkingGraceSeconds, defaults.ThinkingGraceSeconds, DefaultThinkingGrace)
	result.MaxThinkingSeconds = firstInt(result.MaxThinkingSeconds, defaults.MaxThinkingSeconds, DefaultMaxThinking)
	result.PacingDelayMS = firstInt(result.PacingDelayMS, defaults.PacingDelayMS, DefaultPacingDelayMS)
	result.AcknowledgmentDelayMS = firstInt(result.AcknowledgmentDelayMS, defaults.AcknowledgmentDelayMS, DefaultAcknowledgmentDelayMS)
	result.AdvisorTimeoutSeconds = firstInt(result.AdvisorTimeoutSeconds, defaults.AdvisorTimeoutSeconds, DefaultAdvisorTimeout)
	result.MaxSilentPrompts = firstInt(result.MaxSilentPrompts, defaults.MaxSilentPrompts, DefaultMaxSilentPrompts)

	if len(result.Models) == 0 && len(defaults.Models) > 0 {
		result.Models = make(map[string]string, len(defaults.Models))
		for k, v := range defaults.Models {
			result.Models[k] = v
		}
	}

	return result
}

// ResolveAPIKey returns the configured key, or the provider's environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if strings.EqualFold(c.Provider, "openai") {
		return os.Getenv(EnvOpenAIAPIKey)
	}
	return os.Getenv(EnvGeminiAPIKey)
}

// Timings converts the timing fields to durations. Zero fields fall back to defaults.
func (c *Config) Timings() Timings {
	return Timings{
		ResponseTimeout:     seconds(c.ResponseTimeoutSeconds, DefaultResponseTimeout),
		ThinkingGrace:       seconds(c.ThinkingGraceSeconds, DefaultThinkingGrace),
		MaxThinking:         seconds(c.MaxThinkingSeconds, DefaultMaxThinking),
		PacingDelay:         millis(c.PacingDelayMS, DefaultPacingDelayMS),
		AcknowledgmentDelay: millis(c.AcknowledgmentDelayMS, DefaultAcknowledgmentDelayMS),
		AdvisorTimeout:      seconds(c.AdvisorTimeoutSeconds, DefaultAdvisorTimeout),
	}
}

// newValidator reports fields by their JSON keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

func millis(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Millisecond
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
