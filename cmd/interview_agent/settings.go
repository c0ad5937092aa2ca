package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/metrics"
	"github.com/jonathan/interview-agent/internal/telemetry"
)

// sessionFlags are the flags shared by every command that needs candidate and
// role inputs.
type sessionFlags struct {
	configPath string
	resume     string
	job        string
	name       string
	domain     string
	years      int
	duration   int
	apiKey     string
	provider   string
	useAdvisor bool
	logLevel   string
	traceURL   string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "Path to resume text file")
	cmd.Flags().StringVarP(&f.job, "job", "j", "", "Path to job description text file")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Candidate name")
	cmd.Flags().StringVarP(&f.domain, "domain", "d", "", "Interview domain (frontend, backend, fullstack, devops, qa, sre, dsa, behavioral)")
	cmd.Flags().IntVar(&f.years, "years", 0, "Years of experience (overrides the value parsed from the resume)")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Interview length in minutes")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Advisor API key (optional, defaults to GEMINI_API_KEY or OPENAI_API_KEY)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Advisor provider: gemini or openai")
	cmd.Flags().BoolVar(&f.useAdvisor, "advisor", false, "Use the LLM advisor (requires an API key)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	cmd.Flags().StringVar(&f.traceURL, "trace-endpoint", "", "OTLP/HTTP endpoint for advisor traces (for example http://localhost:4318/v1/traces)")
}

// resolve loads the config file, applies explicitly set flags on top of it and
// fills defaults.
func (f *sessionFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("resume") {
		cfg.Resume = f.resume
	}
	if flags.Changed("job") {
		cfg.Job = f.job
	}
	if flags.Changed("name") {
		cfg.CandidateName = f.name
	}
	if flags.Changed("domain") {
		cfg.Domain = f.domain
	}
	if flags.Changed("years") {
		cfg.YearsExperience = f.years
	}
	if flags.Changed("duration") {
		cfg.DurationMinutes = f.duration
	}
	if flags.Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if flags.Changed("provider") {
		cfg.Provider = f.provider
	}
	if flags.Changed("advisor") {
		cfg.UseAdvisorPlan = f.useAdvisor
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("trace-endpoint") {
		cfg.TraceEndpoint = f.traceURL
	}

	cfg = cfg.MergeWithDefaults(config.Config{})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// readInputs reads the resume and job description files concurrently. Empty
// paths yield empty texts.
func readInputs(resumePath, jobPath string) (string, string, error) {
	var resumeText, jobText string
	var g errgroup.Group
	g.Go(func() error {
		text, err := readOptional(resumePath)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		resumeText = text
		return nil
	})
	g.Go(func() error {
		text, err := readOptional(jobPath)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		jobText = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return resumeText, jobText, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newLogger(cfg config.Config) (*logging.GologLogger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level, os.Stderr), nil
}

// llmConfig builds the provider configuration with the configured model overrides.
func llmConfig(cfg config.Config) (*llm.Config, error) {
	provider, ok := llm.ParseProvider(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	lc := llm.ConfigFor(provider)
	for tier, model := range cfg.Models {
		lc = lc.WithModel(llm.ModelTier(tier), model)
	}
	if cfg.BaseURL != "" {
		lc.BaseURL = cfg.BaseURL
	}
	return lc, nil
}

// newAdvisor connects to the configured provider. The returned close func
// releases the client.
func newAdvisor(ctx context.Context, cfg config.Config, logger logging.Logger, recorder *metrics.Recorder, extra ...advisor.Option) (*advisor.LLMAdvisor, func(), error) {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return nil, nil, fmt.Errorf("advisor requires an API key (set %s or %s, or use --api-key)", config.EnvGeminiAPIKey, config.EnvOpenAIAPIKey)
	}
	lc, err := llmConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(ctx, lc, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	opts := []advisor.Option{
		advisor.WithTimeout(cfg.Timings().AdvisorTimeout),
		advisor.WithLogger(logger),
		advisor.WithMetrics(recorder),
	}
	a := advisor.NewLLMAdvisor(client, append(opts, extra...)...)
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close LLM client: %v", err)
		}
	}
	return a, closeFn, nil
}

// setupTracing exports advisor spans to cfg.TraceEndpoint. Without an endpoint
// it returns no options and a no-op shutdown.
func setupTracing(ctx context.Context, cfg config.Config, logger logging.Logger) ([]advisor.Option, func(), error) {
	if cfg.TraceEndpoint == "" {
		return nil, func() {}, nil
	}
	tp, err := telemetry.NewTracerProvider(ctx, cfg.TraceEndpoint, telemetry.ServiceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces: %v", err)
		}
	}
	logger.Info("exporting advisor traces to %s", cfg.TraceEndpoint)
	return []advisor.Option{advisor.WithTracerProvider(tp)}, shutdown, nil
}
