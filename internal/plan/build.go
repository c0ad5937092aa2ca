package plan

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-agent/internal/skills"
	"github.com/jonathan/interview-agent/internal/templates"
	"github.com/jonathan/interview-agent/internal/types"
)

// Plan sources.
const (
	SourceLocal   = "local"
	SourceAdvisor = "advisor"
)

const maxPersonalizedPerKind = 2

// Request holds everything the local builder needs.
type Request struct {
	CandidateName   string
	Domain          string
	DurationMinutes int
	Candidate       types.CandidateProfile
	Role            types.RoleProfile
}

// Result is a built plan with the context it was built from.
type Result struct {
	Plan      *Plan
	Limits    Limits
	Template  templates.Template
	Candidate types.CandidateProfile
	Role      types.RoleProfile
	Source    string
}

// Build assembles the introduction, the domain bank and the personalized
// questions, pads with the domain's reserve questions, drops repeated prompts
// and truncates to the duration's main question cap. It never fails: missing
// signals yield a generic plan of the same length.
func Build(req Request) *Result {
	tmpl := templates.Lookup(req.Domain)
	limits := LimitsFor(req.DurationMinutes)

	candidates := make([]types.QuestionRecord, 0, 1+len(tmpl.Questions)+5+len(tmpl.Reserve))
	candidates = append(candidates, Introduction(req.CandidateName))
	candidates = appendBank(candidates, tmpl.Questions)
	candidates = append(candidates, Personalized(req.Candidate, req.Role)...)
	candidates = appendBank(candidates, tmpl.Reserve)

	records := dedupeByPrompt(candidates)
	if len(records) > limits.MaxMainQuestions {
		records = records[:limits.MaxMainQuestions]
	}

	return &Result{
		Plan:      New(records...),
		Limits:    limits,
		Template:  tmpl,
		Candidate: req.Candidate,
		Role:      req.Role,
		Source:    SourceLocal,
	}
}

func appendBank(dst []types.QuestionRecord, bank []templates.BankQuestion) []types.QuestionRecord {
	for _, q := range bank {
		dst = append(dst, types.QuestionRecord{
			ID:         NewQuestionID(),
			Prompt:     q.Prompt,
			Competency: q.Competency.OrGeneral(),
			Kind:       types.KindMain,
			Source:     types.SourceTemplate,
		})
	}
	return dst
}

// Introduction returns the opening question.
func Introduction(candidateName string) types.QuestionRecord {
	return introductionRecord(fmt.Sprintf("Hi %s. Give me a 60-second introduction tailored to this role.", displayName(candidateName)))
}

func introductionRecord(prompt string) types.QuestionRecord {
	return types.QuestionRecord{
		ID:         NewQuestionID(),
		Prompt:     prompt,
		Competency: types.CompetencyCommunication,
		Kind:       types.KindMain,
		Source:     types.SourceIntro,
	}
}

// Personalized derives questions from the two profiles: up to two skills both
// sides share, up to two required skills the resume lacks, and the first project
// mention.
func Personalized(candidate types.CandidateProfile, role types.RoleProfile) []types.QuestionRecord {
	var out []types.QuestionRecord

	matched := skills.Shared(candidate.Skills, role.RequiredSkills)
	for _, skill := range firstN(matched, maxPersonalizedPerKind) {
		out = append(out, types.QuestionRecord{
			ID:         NewQuestionID(),
			Prompt:     fmt.Sprintf("Your resume and JD both emphasize %s. Tell me about a real project where you used it and explain one trade-off you handled.", skills.DisplayName(skill)),
			Competency: types.CompetencyTechnical,
			Kind:       types.KindMain,
			Source:     types.SourceResumeJD,
			SkillTag:   skill,
		})
	}

	gaps := skills.Missing(candidate.Skills, role.RequiredSkills)
	for _, skill := range firstN(gaps, maxPersonalizedPerKind) {
		out = append(out, types.QuestionRecord{
			ID:         NewQuestionID(),
			Prompt:     fmt.Sprintf("This role requires %s, but it is less visible in your resume. How would you ramp up fast and deliver in your first 30 days?", skills.DisplayName(skill)),
			Competency: types.CompetencyAdaptability,
			Kind:       types.KindMain,
			Source:     types.SourceJDGap,
			SkillTag:   skill,
		})
	}

	if len(candidate.ProjectMentions) > 0 {
		out = append(out, types.QuestionRecord{
			ID:         NewQuestionID(),
			Prompt:     fmt.Sprintf("Walk me through this resume claim: \"%s\". What was the problem, solution, and measurable impact?", candidate.ProjectMentions[0]),
			Competency: types.CompetencyCommunication,
			Kind:       types.KindMain,
			Source:     types.SourceResumeProject,
		})
	}
	return out
}

func dedupeByPrompt(records []types.QuestionRecord) []types.QuestionRecord {
	seen := make(map[string]bool, len(records))
	out := make([]types.QuestionRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Prompt] {
			continue
		}
		seen[r.Prompt] = true
		out = append(out, r)
	}
	return out
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "there"
	}
	return name
}
