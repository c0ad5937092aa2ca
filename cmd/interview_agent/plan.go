package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the question plan for an interview",
	Long: `Builds the ordered question plan from a resume, a job description and the chosen domain.

With --advisor the LLM advisor proposes a personalized plan; any advisor failure falls back to the local plan.`,
	RunE: runPlan,
}

var (
	planFlags  sessionFlags
	planOutput string
)

func init() {
	planFlags.register(planCmd)
	planCmd.Flags().StringVarP(&planOutput, "out", "o", "", "Output file for the plan JSON (prints a summary when omitted)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := planFlags.resolve(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	result, err := buildPlan(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if planOutput == "" {
		observability.NewPrinter(os.Stdout).PrintPlan(result)
		return nil
	}
	return writeJSON(planOutput, result.Plan)
}

// buildPlan reads the inputs and runs the planner, with the advisor when enabled.
func buildPlan(ctx context.Context, cfg config.Config, logger logging.Logger) (*plan.Result, error) {
	resumeText, jobText, err := readInputs(cfg.Resume, cfg.Job)
	if err != nil {
		return nil, err
	}

	var oracle plan.Oracle
	if cfg.UseAdvisorPlan {
		a, closeFn, err := newAdvisor(ctx, cfg, logger, nil)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		oracle = a
	}

	planner := plan.NewPlanner(oracle, logger, nil)
	return planner.Plan(ctx, plan.Input{
		CandidateName:   cfg.CandidateName,
		Domain:          cfg.Domain,
		DurationMinutes: cfg.DurationMinutes,
		YearsExperience: cfg.YearsExperience,
		ResumeText:      resumeText,
		JobText:         jobText,
	}), nil
}
