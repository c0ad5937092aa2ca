// Package types provides type definitions for the data exchanged between the interview
// planner, the turn orchestrator, the evaluators and the report aggregator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CandidateProfile is the rule-based view of a resume.
type CandidateProfile struct {
	Skills          []string `json:"skills"`
	YearsExperience int      `json:"years_experience"`
	ProjectMentions []string `json:"project_mentions"`
}

// HasSkill reports whether the candidate lists the given skill (case-insensitive).
func (p CandidateProfile) HasSkill(skill string) bool {
	return containsFold(p.Skills, skill)
}

// RoleProfile is the rule-based view of a job description.
type RoleProfile struct {
	RequiredSkills   []string `json:"required_skills"`
	NiceToHaveSkills []string `json:"nice_to_have_skills"`
	Responsibilities []string `json:"responsibilities"`
}

// IsRequired reports whether the role requires the given skill (case-insensitive).
func (p RoleProfile) IsRequired(skill string) bool {
	return containsFold(p.RequiredSkills, skill)
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
