package plan

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-agent/internal/advisor"
	"github.com/jonathan/interview-agent/internal/logging"
	"github.com/jonathan/interview-agent/internal/metrics"
	"github.com/jonathan/interview-agent/internal/parsing"
	"github.com/jonathan/interview-agent/internal/skills"
	"github.com/jonathan/interview-agent/internal/templates"
	"github.com/jonathan/interview-agent/internal/types"
)

const maxFocusSkills = 6

// Oracle proposes personalized plans.
type Oracle interface {
	PlanQuestions(ctx context.Context, req advisor.PlanRequest) (*advisor.PlanResponse, error)
}

// Input is the raw material of a session plan.
type Input struct {
	CandidateName   string
	Domain          string
	DurationMinutes int
	// YearsExperience overrides the value parsed from the resume when positive
	YearsExperience int
	ResumeText      string
	JobText         string
}

// Planner builds plans, asking the oracle for a personalized one when configured
// and falling back to the local builder otherwise.
type Planner struct {
	oracle  Oracle
	logger  logging.Logger
	metrics *metrics.Recorder
}

// NewPlanner creates a planner. A nil oracle means local plans only.
func NewPlanner(oracle Oracle, logger logging.Logger, recorder *metrics.Recorder) *Planner {
	return &Planner{oracle: oracle, logger: logging.OrNop(logger), metrics: recorder}
}

// Plan parses both texts, then builds the local plan and requests the oracle plan
// in parallel. The oracle plan wins when it is usable. Plan never fails.
func (p *Planner) Plan(ctx context.Context, in Input) *Result {
	candidate, role := ParseProfiles(in.ResumeText, in.JobText)
	if in.YearsExperience > 0 {
		candidate.YearsExperience = in.YearsExperience
	}

	req := Request{
		CandidateName:   in.CandidateName,
		Domain:          in.Domain,
		DurationMinutes: in.DurationMinutes,
		Candidate:       candidate,
		Role:            role,
	}

	var g errgroup.Group
	var local *Result
	var proposed *advisor.PlanResponse
	var mu sync.Mutex

	g.Go(func() error {
		result := Build(req)
		mu.Lock()
		local = result
		mu.Unlock()
		return nil
	})

	if p.oracle != nil {
		limits := LimitsFor(in.DurationMinutes)
		g.Go(func() error {
			resp, err := p.oracle.PlanQuestions(ctx, advisor.PlanRequest{
				CandidateName:   in.CandidateName,
				Domain:          in.Domain,
				YearsExperience: candidate.YearsExperience,
				DurationMinutes: in.DurationMinutes,
				ResumeText:      in.ResumeText,
				JobText:         in.JobText,
				QuestionCount:   limits.MaxMainQuestions - 1,
				FocusSkills:     FocusSkills(role, candidate),
			})
			if err != nil {
				return fmt.Errorf("advisor plan failed: %w", err)
			}
			mu.Lock()
			proposed = resp
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Warn("using local plan: %v", err)
		p.metrics.AdvisorFallback(advisor.OpPlan)
	}
	if proposed == nil {
		p.logger.Debug("built local plan with %d questions", local.Plan.Len())
		return local
	}

	result := FromAdvisor(req, proposed)
	if result.Plan.MainCount() < 2 {
		p.logger.Warn("advisor plan has too few questions, using local plan")
		p.metrics.AdvisorFallback(advisor.OpPlan)
		return local
	}
	p.logger.Debug("built advisor plan with %d questions", result.Plan.Len())
	return result
}

// ParseProfiles extracts both profiles concurrently.
func ParseProfiles(resumeText, jobText string) (types.CandidateProfile, types.RoleProfile) {
	var candidate types.CandidateProfile
	var role types.RoleProfile

	var g errgroup.Group
	g.Go(func() error {
		candidate = parsing.ParseResume(resumeText)
		return nil
	})
	g.Go(func() error {
		role = parsing.ParseJobDescription(jobText)
		return nil
	})
	_ = g.Wait()
	return candidate, role
}

// FocusSkills lists the role skills worth probing, strongest first.
func FocusSkills(role types.RoleProfile, candidate types.CandidateProfile) []string {
	targets := skills.BuildTargets(role, candidate)
	out := make([]string, 0, maxFocusSkills)
	for _, t := range targets {
		if len(out) == maxFocusSkills {
			break
		}
		out = append(out, skills.DisplayName(t.Name))
	}
	return out
}

// FromAdvisor flattens an oracle plan: the introduction first, then each main
// question followed by its planned follow-ups. Main questions, introduction
// included, are capped at the duration's limit.
func FromAdvisor(req Request, resp *advisor.PlanResponse) *Result {
	limits := LimitsFor(req.DurationMinutes)

	intro := Introduction(req.CandidateName)
	if text := strings.TrimSpace(resp.Introduction); text != "" {
		intro = introductionRecord(text)
	}

	records := []types.QuestionRecord{intro}
	mains := 1
	for _, q := range resp.Questions {
		if mains >= limits.MaxMainQuestions {
			break
		}
		prompt := strings.TrimSpace(q.Prompt)
		if prompt == "" {
			continue
		}
		competency := normalizeCompetency(q.Competency)
		records = append(records, types.QuestionRecord{
			ID:         NewQuestionID(),
			Prompt:     prompt,
			Competency: competency,
			Kind:       types.KindMain,
			Source:     types.SourceAdvisor,
		})
		mains++
		for _, f := range q.FollowUps {
			text := strings.TrimSpace(f.Prompt)
			if text == "" {
				continue
			}
			records = append(records, types.QuestionRecord{
				ID:           NewQuestionID(),
				Prompt:       text,
				Competency:   competency,
				Kind:         types.KindFollowUp,
				Source:       types.SourceAdvisor,
				ParentPrompt: prompt,
			})
		}
	}

	records = dedupeByPrompt(records)
	planned := New(records...)
	// planned follow-ups must not starve the main questions
	if extra := planned.Len() - planned.MainCount(); extra > 0 {
		limits.TotalTurnsLimit += extra
	}

	return &Result{
		Plan:      planned,
		Limits:    limits,
		Template:  templates.Lookup(req.Domain),
		Candidate: req.Candidate,
		Role:      req.Role,
		Source:    SourceAdvisor,
	}
}

func normalizeCompetency(c types.Competency) types.Competency {
	tag := strings.ToLower(strings.TrimSpace(string(c)))
	tag = strings.Join(strings.Fields(tag), "-")
	return types.Competency(tag).OrGeneral()
}
