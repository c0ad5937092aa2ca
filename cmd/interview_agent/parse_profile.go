package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/types"
)

var parseProfileCmd = &cobra.Command{
	Use:   "parse-profile",
	Short: "Extract candidate and role profiles from a resume and job description",
	Long:  "Runs the rule-based profile extractor over a resume and a job description and prints the skills, experience, projects and requirements it finds as JSON.",
	RunE:  runParseProfile,
}

var (
	parseResume  string
	parseJob     string
	parseOutput  string
	parseVerbose bool
)

// profilesOutput is the JSON document written by parse-profile.
type profilesOutput struct {
	Candidate types.CandidateProfile `json:"candidate"`
	Role      types.RoleProfile      `json:"role"`
}

func init() {
	parseProfileCmd.Flags().StringVarP(&parseResume, "resume", "r", "", "Path to resume text file")
	parseProfileCmd.Flags().StringVarP(&parseJob, "job", "j", "", "Path to job description text file")
	parseProfileCmd.Flags().StringVarP(&parseOutput, "out", "o", "", "Output file for the profiles JSON (defaults to stdout)")
	parseProfileCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a readable summary")

	rootCmd.AddCommand(parseProfileCmd)
}

func runParseProfile(_ *cobra.Command, _ []string) error {
	if parseResume == "" && parseJob == "" {
		return fmt.Errorf("at least one of --resume or --job is required")
	}

	resumeText, jobText, err := readInputs(parseResume, parseJob)
	if err != nil {
		return err
	}

	candidate, role := plan.ParseProfiles(resumeText, jobText)
	if parseVerbose {
		observability.NewPrinter(os.Stderr).PrintProfiles(candidate, role)
	}

	return writeJSON(parseOutput, profilesOutput{Candidate: candidate, Role: role})
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
