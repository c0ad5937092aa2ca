// Package observability provides formatted output utilities for the CLI: profile,
// plan, verdict and report summaries, and the live transcript of a console interview.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/interview-agent/internal/plan"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fairStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	poorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noteStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out   io.Writer
	plain bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewPlainPrinter creates a Printer that never styles its output.
func NewPlainPrinter(out io.Writer) *Printer {
	return &Printer{out: out, plain: true}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p *Printer) scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 4:
		return goodStyle
	case score >= 3:
		return fairStyle
	default:
		return poorStyle
	}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeList(sb *strings.Builder, title string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for i, item := range items {
		if i == limit {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
			break
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	sb.WriteString("\n")
}

// PrintProfiles outputs the rule-based candidate and role profiles.
func (p *Printer) PrintProfiles(candidate types.CandidateProfile, role types.RoleProfile) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Experience: %d years\n\n", candidate.YearsExperience))
	writeList(&sb, "Resume skills", candidate.Skills, maxItemsToShow*2)
	writeList(&sb, "Projects", candidate.ProjectMentions, 3)
	writeList(&sb, "Required", role.RequiredSkills, maxItemsToShow*2)
	writeList(&sb, "Nice-to-haves", role.NiceToHaveSkills, maxItemsToShow)
	writeList(&sb, "Responsibilities", role.Responsibilities, 3)
	p.printBox("PARSED PROFILES", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintPlan outputs the question plan and the session caps.
func (p *Printer) PrintPlan(result *plan.Result) {
	if result == nil || result.Plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template: %s (%s plan)\n", result.Template.Label, result.Source))
	sb.WriteString(fmt.Sprintf("Main questions: %d  Follow-up budget: %d  Turn cap: %d\n\n",
		result.Limits.MaxMainQuestions, result.Limits.FollowUpBudget, result.Limits.TotalTurnsLimit))

	for i, q := range result.Plan.Records() {
		marker := fmt.Sprintf("%d.", i+1)
		if q.Kind.IsFollowUp() {
			marker = "   ↳"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, q.Prompt))
		tags := []string{string(q.Competency.OrGeneral())}
		if q.Source != "" {
			tags = append(tags, string(q.Source))
		}
		if q.SkillTag != "" {
			tags = append(tags, q.SkillTag)
		}
		sb.WriteString(fmt.Sprintf("   [%s]\n", strings.Join(tags, ", ")))
	}

	p.printBox("INTERVIEW PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerdict outputs the judgment of a single answer.
func (p *Printer) PrintVerdict(v types.Verdict) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %d/5\n", v.Score))
	sb.WriteString(fmt.Sprintf("Relevant: %t\n", v.IsRelevant))
	sb.WriteString(fmt.Sprintf("Elaborate: %t\n", v.NeedsElaboration))
	if len(v.Feedback) > 0 {
		sb.WriteString("\n")
		writeList(&sb, "Feedback", v.Feedback, maxItemsToShow)
	}
	if v.WantsFollowUp() {
		sb.WriteString(fmt.Sprintf("Follow-up: %s\n", v.FollowUpQuestion))
	}
	p.printBox("ANSWER VERDICT", strings.TrimRight(sb.String(), "\n"))
}

// PrintReport outputs the final scorecard.
func (p *Printer) PrintReport(rep *types.Report) {
	if rep == nil {
		return
	}

	var sb strings.Builder
	if rep.CandidateName != "" {
		sb.WriteString(fmt.Sprintf("Candidate: %s\n", rep.CandidateName))
	}
	if rep.TemplateLabel != "" {
		sb.WriteString(fmt.Sprintf("Interview: %s\n", rep.TemplateLabel))
	}
	sb.WriteString(fmt.Sprintf("Overall:   %.1f/5 over %d answers\n", rep.OverallScore, rep.TotalAnswers))
	if rep.EndReason != "" {
		sb.WriteString(fmt.Sprintf("Ended:     %s\n", rep.EndReason))
	}
	sb.WriteString("\n")

	if scores := rep.SortedCompetencies(); len(scores) > 0 {
		sb.WriteString("Competencies:\n")
		for _, c := range scores {
			sb.WriteString(fmt.Sprintf("  %-16s %.1f\n", c.Competency, c.Average))
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Strengths", rep.Strengths, maxItemsToShow)
	writeList(&sb, "Improvements", rep.Improvements, maxItemsToShow)
	writeList(&sb, "Matched skills", rep.MatchedSkills, maxItemsToShow*2)
	writeList(&sb, "Missing required skills", rep.MissingRequiredSkills, maxItemsToShow*2)
	if rep.Summary != "" {
		sb.WriteString(rep.Summary)
	}

	p.printBox("INTERVIEW REPORT", strings.TrimRight(sb.String(), "\n"))
}

// PrintTurn outputs a resolved question with its score.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTurn(rec types.TurnRecord) {
	if rec.Skipped {
		fmt.Fprintf(p.out, "%s\n", p.style(noteStyle, "  (skipped)"))
		return
	}
	score := fmt.Sprintf("%d/5", rec.Verdict.Score)
	fmt.Fprintf(p.out, "  %s %s\n", p.style(labelStyle, "Score:"), p.style(p.scoreStyle(float64(rec.Verdict.Score)), score))
	for _, f := range rec.Verdict.Feedback {
		fmt.Fprintf(p.out, "  %s\n", p.style(noteStyle, f))
	}
}

// PrintNote outputs a dimmed status line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintNote(text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(p.out, "%s\n", p.style(noteStyle, text))
}
