package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/console"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/metrics"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run a mock interview in the terminal",
	Long: `Plans the interview, then asks each question on stdout and reads answers from stdin, one line per answer.

Lines starting with a slash are commands: /skip skips the current question, /type <answer> submits a typed answer, /resume recovers from an input error and /end finishes early. The report is printed when the interview ends.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runInterviewCmd,
}

var (
	runFlags         sessionFlags
	runMetricsAddr   string
	runWordDelay     time.Duration
	runTranscriptOut string
	runReportOut     string
)

func init() {
	runFlags.register(runCommand)
	runCommand.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (for example :9090)")
	runCommand.Flags().DurationVar(&runWordDelay, "word-delay", 0, "Simulated speaking time per word")
	runCommand.Flags().StringVar(&runTranscriptOut, "transcript-out", "", "Save the transcript JSON to this file")
	runCommand.Flags().StringVar(&runReportOut, "report-out", "", "Save the report JSON to this file")

	rootCmd.AddCommand(runCommand)
}

func runInterviewCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := runFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = runMetricsAddr
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		exporter := metrics.NewExporter(cfg.MetricsAddr, recorder)
		go func() {
			if err := exporter.Start(); err != nil {
				logger.Error("metrics exporter stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = exporter.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics on %s", cfg.MetricsAddr)
	}

	resumeText, jobText, err := readInputs(cfg.Resume, cfg.Job)
	if err != nil {
		return err
	}

	var sessionOpts []interview.Option
	var oracle plan.Oracle
	var evaluator evaluation.Evaluator
	if cfg.UseAdvisorPlan {
		tracing, shutdownTracing, err := setupTracing(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer shutdownTracing()

		a, closeFn, err := newAdvisor(ctx, cfg, logger, recorder, tracing...)
		if err != nil {
			return err
		}
		defer closeFn()
		oracle = a
		evaluator = evaluation.NewAdvisorBacked(a, evaluation.WithLogger(logger), evaluation.WithMetrics(recorder))
		sessionOpts = append(sessionOpts, interview.WithClassifier(a), interview.WithReporter(a))
	}

	result := plan.NewPlanner(oracle, logger, recorder).Plan(ctx, plan.Input{
		CandidateName:   cfg.CandidateName,
		Domain:          cfg.Domain,
		DurationMinutes: cfg.DurationMinutes,
		YearsExperience: cfg.YearsExperience,
		ResumeText:      resumeText,
		JobText:         jobText,
	})
	if evaluator == nil {
		evaluator = evaluation.NewHeuristic(result.Role)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintPlan(result)

	input, pipe := io.Pipe()
	listener := console.NewListener(input)
	speaker := console.NewSpeaker(os.Stdout, console.WithWordDelay(runWordDelay))

	sessionOpts = append(sessionOpts,
		interview.WithLogger(logger),
		interview.WithMetrics(recorder),
		interview.WithObserver(observer(printer)),
	)
	session, err := interview.New(result, listener, speaker, evaluator, sessionOptions(cfg, result), sessionOpts...)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	go forwardInput(os.Stdin, pipe, session, logger)
	go func() {
		select {
		case <-listener.Done():
			if err := session.EndNow(); err != nil && !errors.Is(err, interview.ErrSessionEnded) {
				logger.Warn("failed to end session: %v", err)
			}
		case <-session.Done():
		}
	}()
	go func() {
		if err := session.Start(); err != nil {
			logger.Error("failed to start session: %v", err)
		}
	}()

	rep, err := session.Run(ctx)
	if err != nil {
		return err
	}
	printer.PrintReport(rep)

	if runTranscriptOut != "" {
		if err := writeJSON(runTranscriptOut, session.Transcript()); err != nil {
			return err
		}
	}
	if runReportOut != "" {
		if err := writeJSON(runReportOut, rep); err != nil {
			return err
		}
	}
	return nil
}

// sessionOptions maps the configured timings onto the session options.
func sessionOptions(cfg config.Config, result *plan.Result) interview.Options {
	timings := cfg.Timings()
	opts := interview.DefaultOptions()
	opts.CandidateName = cfg.CandidateName
	opts.YearsExperience = result.Candidate.YearsExperience
	opts.DurationMinutes = cfg.DurationMinutes
	opts.Language = cfg.Language
	opts.ResponseTimeout = timings.ResponseTimeout
	opts.ThinkingGrace = timings.ThinkingGrace
	opts.MaxThinking = timings.MaxThinking
	opts.PacingDelay = timings.PacingDelay
	opts.AcknowledgmentDelay = timings.AcknowledgmentDelay
	opts.AdvisorTimeout = timings.AdvisorTimeout
	if cfg.MaxSilentPrompts > 0 {
		opts.MaxSilentPrompts = cfg.MaxSilentPrompts
	}
	return opts
}

// observer prints scored turns and status notes as the interview progresses.
func observer(printer *observability.Printer) func(interview.Event) {
	return func(e interview.Event) {
		switch e.Kind {
		case interview.EventTurn:
			printer.PrintTurn(*e.Turn)
		case interview.EventFollowUp:
			printer.PrintNote("(follow-up added)")
		case interview.EventError:
			printer.PrintNote(e.Text)
			if e.Text != "" {
				printer.PrintNote("Type /resume to continue, /type <answer> to answer in text, or /end to finish.")
			}
		case interview.EventPhase:
			if e.Phase == types.PhaseEnding {
				printer.PrintNote("Wrapping up...")
			}
		}
	}
}
