package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/parsing"
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a single answer to an interview question",
	Long: `Scores one answer on the 1-5 rubric and reports feedback and an optional follow-up question.

The rule-based evaluator is used by default. With --advisor the LLM advisor judges the answer; if it fails the rule-based verdict is returned.`,
	RunE: runEvaluate,
}

var (
	evalFlags      sessionFlags
	evalQuestion   string
	evalAnswer     string
	evalCompetency string
	evalOutput     string
	evalVerbose    bool
)

func init() {
	evalFlags.register(evaluateCmd)
	evaluateCmd.Flags().StringVarP(&evalQuestion, "question", "q", "", "Question prompt (required)")
	evaluateCmd.Flags().StringVarP(&evalAnswer, "answer", "a", "", "Candidate answer (required)")
	evaluateCmd.Flags().StringVar(&evalCompetency, "competency", string(types.CompetencyGeneral), "Competency the question is scored under")
	evaluateCmd.Flags().StringVarP(&evalOutput, "out", "o", "", "Output file for the verdict JSON (defaults to stdout)")
	evaluateCmd.Flags().BoolVarP(&evalVerbose, "verbose", "v", false, "Print a readable summary")

	if err := evaluateCmd.MarkFlagRequired("question"); err != nil {
		panic(fmt.Sprintf("failed to mark question flag as required: %v", err))
	}
	if err := evaluateCmd.MarkFlagRequired("answer"); err != nil {
		panic(fmt.Sprintf("failed to mark answer flag as required: %v", err))
	}

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := evalFlags.resolve(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	_, jobText, err := readInputs("", cfg.Job)
	if err != nil {
		return err
	}
	role := parsing.ParseJobDescription(jobText)

	evaluator, closeFn, err := newEvaluator(ctx, cfg, role, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	question := types.QuestionRecord{
		ID:         plan.NewQuestionID(),
		Prompt:     evalQuestion,
		Competency: types.Competency(evalCompetency).OrGeneral(),
		Kind:       types.KindMain,
	}
	verdict := evaluator.Evaluate(ctx, question, evalAnswer, nil).Clamp()

	if evalVerbose {
		observability.NewPrinter(os.Stderr).PrintVerdict(verdict)
	}
	return writeJSON(evalOutput, verdict)
}

// newEvaluator returns the rule-based evaluator, or the advisor-backed one with
// the rule-based evaluator as its fallback when the advisor is enabled.
func newEvaluator(ctx context.Context, cfg config.Config, role types.RoleProfile, logger logging.Logger) (evaluation.Evaluator, func(), error) {
	heuristic := evaluation.NewHeuristic(role)
	if !cfg.UseAdvisorPlan {
		return heuristic, func() {}, nil
	}

	a, closeFn, err := newAdvisor(ctx, cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return evaluation.NewAdvisorBacked(a,
		evaluation.WithFallback(heuristic),
		evaluation.WithLogger(logger),
	), closeFn, nil
}
