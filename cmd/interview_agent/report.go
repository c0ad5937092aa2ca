package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/report"
	"github.com/jonathan/interview-agent/internal/schemas"
	"github.com/jonathan/interview-agent/internal/templates"
	"github.com/jonathan/interview-agent/internal/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rebuild the interview report from a saved transcript",
	Long: `Validates a transcript saved by "run --transcript-out" and recomputes the report: averages, competency scores, strengths, improvements and skill coverage against the resume and job description.

With --advisor the LLM advisor contributes the narrative fields; skill coverage is always computed locally.`,
	RunE: runReport,
}

var (
	reportFlags      sessionFlags
	reportTranscript string
	reportOutput     string
)

func init() {
	reportFlags.register(reportCmd)
	reportCmd.Flags().StringVarP(&reportTranscript, "transcript", "t", "", "Path to transcript JSON (required)")
	reportCmd.Flags().StringVarP(&reportOutput, "out", "o", "", "Output file for the report JSON (prints a summary when omitted)")

	if err := reportCmd.MarkFlagRequired("transcript"); err != nil {
		panic(fmt.Sprintf("failed to mark transcript flag as required: %v", err))
	}

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := reportFlags.resolve(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	transcript, err := loadTranscript(reportTranscript)
	if err != nil {
		return err
	}

	rep, err := rebuildReport(ctx, cfg, transcript, logger)
	if err != nil {
		return err
	}

	if reportOutput == "" {
		observability.NewPrinter(os.Stdout).PrintReport(rep)
		return nil
	}
	return writeJSON(reportOutput, rep)
}

// loadTranscript reads a saved transcript and checks it against the transcript schema.
func loadTranscript(path string) (*types.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	if err := schemas.Validate(schemas.Transcript, string(data)); err != nil {
		return nil, fmt.Errorf("invalid transcript: %w", err)
	}
	var transcript types.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return &transcript, nil
}

// rebuildReport aggregates the transcript and, when the advisor is enabled,
// merges its narrative. Advisor failures keep the local report.
func rebuildReport(ctx context.Context, cfg config.Config, transcript *types.Transcript, logger logging.Logger) (*types.Report, error) {
	resumeText, jobText, err := readInputs(cfg.Resume, cfg.Job)
	if err != nil {
		return nil, err
	}
	candidate, role := plan.ParseProfiles(resumeText, jobText)
	if cfg.YearsExperience > 0 {
		candidate.YearsExperience = cfg.YearsExperience
	}

	local := report.Build(transcript, candidate, role, report.Meta{
		CandidateName:   cfg.CandidateName,
		TemplateLabel:   templates.Lookup(cfg.Domain).Label,
		DurationMinutes: cfg.DurationMinutes,
		Now:             time.Now,
	})
	if !cfg.UseAdvisorPlan || local.TotalAnswers == 0 {
		return local, nil
	}

	a, closeFn, err := newAdvisor(ctx, cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	partial, err := a.BuildReport(ctx, advisor.ReportRequest{
		Transcript:      transcript.Entries(),
		CandidateName:   cfg.CandidateName,
		Domain:          cfg.Domain,
		YearsExperience: candidate.YearsExperience,
		AverageScore:    local.OverallScore,
	})
	if err != nil {
		logger.Warn("using local report: %v", err)
		return local, nil
	}
	return report.Merge(local, partial), nil
}
